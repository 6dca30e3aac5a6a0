package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/entcal/internal/helpers"
	"github.com/joshua-takyi/entcal/internal/interaction"
	"github.com/joshua-takyi/entcal/internal/middleware"
	"github.com/joshua-takyi/entcal/internal/models"
	"github.com/joshua-takyi/entcal/internal/services"
	"github.com/supabase-community/gotrue-go/types"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func ptr[T any](v T) *T { return &v }

const (
	adminID     = "0d6f6f36-0b39-4b1c-9a55-3c1a4a1f0a01"
	organizerID = "5a0e8f0e-6a1c-4c53-8f0a-9b2b7d1d2c02"
	memberID    = "7c9d4f2a-1e3b-4a5c-b6d7-e8f9a0b1c203"
)

// memoryStore is an in-memory EventSource, EventWriter and UserRepo.
type memoryStore struct {
	mu     sync.Mutex
	events []models.Event
	genres []models.Genre
	users  map[string]models.User
	nextID int
}

func (m *memoryStore) ListEvents(ctx context.Context, q models.EventQuery) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Event{}
	for _, ev := range m.events {
		if len(q.Statuses) > 0 {
			match := false
			for _, s := range q.Statuses {
				match = match || s == ev.Status
			}
			if !match {
				continue
			}
		}
		if q.FromDate != "" && ev.EventDate < q.FromDate {
			continue
		}
		if q.OrganizerID != "" && !ev.IsOrganizedBy(q.OrganizerID) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func (m *memoryStore) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ev := range m.events {
		if ev.ID == id {
			ev := ev
			return &ev, nil
		}
	}
	return nil, models.ErrEventNotFound
}

func (m *memoryStore) ListGenres(ctx context.Context) ([]models.Genre, error) {
	return m.genres, nil
}

func (m *memoryStore) CreateEvent(ctx context.Context, row map[string]interface{}, genreIDs []string, accessToken string) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	ev := models.Event{
		ID:        fmt.Sprintf("new-%d", m.nextID),
		Title:     fmt.Sprint(row["title"]),
		EventDate: fmt.Sprint(row["event_date"]),
		City:      fmt.Sprint(row["city"]),
		State:     fmt.Sprint(row["state"]),
		Status:    row["status"].(models.EventStatus),
	}
	if org, ok := row["organizer_id"].(string); ok {
		ev.OrganizerID = &org
	}
	m.events = append(m.events, ev)
	return &ev, nil
}

func (m *memoryStore) UpdateEvent(ctx context.Context, id string, row map[string]interface{}, genreIDs []string, accessToken string) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.events {
		if m.events[i].ID != id {
			continue
		}
		ev := &m.events[i]
		ev.Title = fmt.Sprint(row["title"])
		ev.EventDate = fmt.Sprint(row["event_date"])
		ev.City = fmt.Sprint(row["city"])
		ev.State = fmt.Sprint(row["state"])
		if status, ok := row["status"].(models.EventStatus); ok {
			ev.Status = status
		}
		ev.Genres = nil
		for _, g := range genreIDs {
			ev.Genres = append(ev.Genres, models.Genre{ID: g})
		}
		out := *ev
		return &out, nil
	}
	return nil, models.ErrEventNotFound
}

func (m *memoryStore) DeleteEvent(ctx context.Context, id string, accessToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.events {
		if m.events[i].ID == id {
			m.events = append(m.events[:i], m.events[i+1:]...)
			return nil
		}
	}
	return models.ErrEventNotFound
}

func (m *memoryStore) UpdateEventStatus(ctx context.Context, id string, status models.EventStatus, accessToken string) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.events {
		if m.events[i].ID == id {
			m.events[i].Status = status
			ev := m.events[i]
			return &ev, nil
		}
	}
	return nil, models.ErrEventNotFound
}

func (m *memoryStore) RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	return nil, fmt.Errorf("not supported")
}

func (m *memoryStore) GetUser(ctx context.Context, id string, accessToken string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrProfileNotFound
	}
	return &u, nil
}

func (m *memoryStore) ListUsers(ctx context.Context, accessToken string) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memoryStore) UpdateUser(ctx context.Context, id string, fields map[string]interface{}, accessToken string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrProfileNotFound
	}
	if v, ok := fields["full_name"].(string); ok {
		u.FullName = &v
	}
	switch v := fields["role"].(type) {
	case models.Role:
		u.Role = v
	case string:
		u.Role = models.Role(v)
	}
	if v, ok := fields["subscription_tier"].(string); ok {
		u.SubscriptionTier = v
	}
	m.users[id] = u
	return &u, nil
}

type memoryPreferences struct {
	mu    sync.Mutex
	prefs map[string]models.Preferences
}

func (m *memoryPreferences) GetPreferences(ctx context.Context, userID string) (*models.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.prefs[userID]; ok {
		return &p, nil
	}
	d := models.DefaultPreferences(userID)
	return &d, nil
}

func (m *memoryPreferences) SavePreferences(ctx context.Context, prefs *models.Preferences) (*models.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.prefs == nil {
		m.prefs = map[string]models.Preferences{}
	}
	m.prefs[prefs.UserID] = *prefs
	saved := *prefs
	return &saved, nil
}

type memoryFavorites struct {
	mu   sync.Mutex
	favs map[string]*models.Favorites
}

func (m *memoryFavorites) AddFavorite(ctx context.Context, userID, eventID string) (*models.Favorites, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.favs == nil {
		m.favs = map[string]*models.Favorites{}
	}
	f, ok := m.favs[userID]
	if !ok {
		f = &models.Favorites{UserID: userID, Items: map[string]models.FavoriteItem{}}
		m.favs[userID] = f
	}
	f.Items[eventID] = models.FavoriteItem{EventID: eventID, AddedAt: time.Now()}
	return f, nil
}

func (m *memoryFavorites) RemoveFavorite(ctx context.Context, userID, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.favs[userID]; ok {
		delete(f.Items, eventID)
	}
	return nil
}

func (m *memoryFavorites) GetFavorites(ctx context.Context, userID string) (*models.Favorites, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.favs[userID]; ok {
		return f, nil
	}
	return &models.Favorites{UserID: userID, Items: map[string]models.FavoriteItem{}}, nil
}

type memoryViews struct {
	mu    sync.Mutex
	views []models.EventView
}

func (m *memoryViews) TrackEventView(ctx context.Context, view *models.EventView) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.views {
		if v.EventID == view.EventID && v.SessionID == view.SessionID {
			return false, nil
		}
	}
	m.views = append(m.views, *view)
	return true, nil
}

func (m *memoryViews) GetEventViewStats(ctx context.Context, eventID string, now time.Time) (*models.EventViewStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &models.EventViewStats{EventID: eventID}
	for _, v := range m.views {
		if v.EventID == eventID {
			stats.TotalViews++
		}
	}
	return stats, nil
}

func (m *memoryViews) EnsureViewIndexes(ctx context.Context) error { return nil }

// fixture events sit far in the future so they stay upcoming.
func fixtureEvents() []models.Event {
	jazz := models.Genre{ID: "g-jazz", Name: "Jazz", Slug: "jazz"}
	rock := models.Genre{ID: "g-rock", Name: "Rock", Slug: "rock"}
	return []models.Event{
		{ID: "past", Title: "Old Show", EventDate: "2001-06-01", City: "Nashville", State: "TN", Status: models.StatusApproved},
		{ID: "jazz", Title: "Jazz Night", EventDate: "2099-06-12", EventTime: ptr("19:00"), VenueName: ptr("Blue Room"), City: "Nashville", State: "TN", Status: models.StatusApproved, Price: ptr(20.0), Genres: []models.Genre{jazz}, OrganizerID: ptr(organizerID)},
		{ID: "rock", Title: "Rock Fest", EventDate: "2099-06-20", City: "Austin", State: "TX", Status: models.StatusApproved, Genres: []models.Genre{rock}},
		{ID: "pending", Title: "Pending Gig", EventDate: "2099-06-15", City: "Nashville", State: "TN", Status: models.StatusPending, OrganizerID: ptr(organizerID)},
	}
}

type fixture struct {
	store  *memoryStore
	prefs  *memoryPreferences
	favs   *memoryFavorites
	views  *memoryViews
	router *gin.Engine
}

// testAuth stands in for the JWT middleware: X-Test-User and X-Test-Role
// become the caller's claims.
func testAuth(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			c.Set(middleware.ClaimsKey, &helpers.EnhancedClaims{
				UserID:      id,
				Role:        models.Role(c.GetHeader("X-Test-Role")),
				AccessToken: "token-" + id,
			})
		} else if required {
			c.AbortWithStatusJSON(http.StatusUnauthorized, helpers.ErrorResponse("authentication required"))
			return
		}
		c.Next()
	}
}

func newFixture() *fixture {
	gin.SetMode(gin.TestMode)

	f := &fixture{
		store: &memoryStore{
			events: fixtureEvents(),
			genres: []models.Genre{{ID: "g-jazz", Name: "Jazz"}, {ID: "g-rock", Name: "Rock"}},
			users: map[string]models.User{
				adminID:     {ID: adminID, Email: "admin@example.com", Role: models.RoleAdmin},
				organizerID: {ID: organizerID, Email: "org@example.com", Role: models.RoleOrganizer},
				memberID:    {ID: memberID, Email: "fan@example.com", Role: models.RolePublic},
			},
		},
		prefs: &memoryPreferences{},
		favs:  &memoryFavorites{},
		views: &memoryViews{},
	}

	loc, _ := time.LoadLocation("America/Chicago")
	es := services.NewEventService(services.EventServiceConfig{
		Source:   f.store,
		Writer:   f.store,
		Logger:   discardLogger,
		Location: loc,
	})
	ps := services.NewPreferencesService(f.prefs, interaction.Config{
		HoverOpenDelay:      2 * time.Second,
		PreviewDismissDelay: 500 * time.Millisecond,
	})
	us := services.NewUserService(f.store)
	fs := services.NewFavoritesService(f.favs, es)
	vs := services.NewViewService(f.views, es)

	r := gin.New()
	r.Use(middleware.ErrorHandler(discardLogger))
	optional := r.Group("/", testAuth(false), ResolveViewer(ps))
	optional.GET("/genres", ListGenres(es))
	optional.GET("/events", ListEvents(es))
	optional.GET("/events/:id", GetEvent(es))
	optional.GET("/events/:id/ical", ExportEventICS(es))
	optional.POST("/events/:id/views", TrackView(vs))
	optional.GET("/calendar/week", WeekCalendar(es))
	optional.GET("/calendar/month", MonthCalendar(es))
	optional.GET("/calendar/rolling", RollingCalendar(es))

	required := r.Group("/", testAuth(true), ResolveViewer(ps))
	required.GET("/preferences", GetPreferences(ps))
	required.PUT("/preferences", UpdatePreferences(ps))
	required.GET("/favorites", GetFavorites(fs))
	required.POST("/favorites/:event_id", AddToFavorites(fs))
	required.DELETE("/favorites/:event_id", RemoveFromFavorites(fs))
	required.GET("/me", GetMe(us))
	required.PATCH("/me", UpdateMe(us))
	required.POST("/me/become-organizer", BecomeOrganizer(us))
	required.POST("/events", middleware.OrganizerOnly(), CreateEvent(es))
	required.GET("/events/mine", middleware.OrganizerOnly(), ListManagedEvents(es))
	required.PUT("/events/:id", middleware.OrganizerOnly(), UpdateEvent(es))
	required.DELETE("/events/:id", middleware.OrganizerOnly(), DeleteEvent(es))
	required.GET("/events/:id/views/stats", ViewStats(vs))

	admin := r.Group("/admin", testAuth(true), middleware.AdminOnly(), ResolveViewer(ps))
	admin.PATCH("/events/:id/status", UpdateEventStatus(es))
	admin.POST("/events/import", ImportEvents(es))
	admin.GET("/users", ListUsers(us))
	admin.PATCH("/users/:id", UpdateUser(us))

	f.router = r
	return f
}
