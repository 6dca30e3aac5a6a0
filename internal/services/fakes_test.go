package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/joshua-takyi/entcal/internal/models"
	"github.com/stretchr/testify/mock"
	"github.com/supabase-community/gotrue-go/types"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func ptr[T any](v T) *T { return &v }

// memorySource is an EventSource over a fixed slice that records queries.
type memorySource struct {
	mu      sync.Mutex
	events  []models.Event
	genres  []models.Genre
	queries []models.EventQuery
	err     error
}

func (m *memorySource) ListEvents(ctx context.Context, q models.EventQuery) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, q)
	if m.err != nil {
		return nil, m.err
	}
	out := []models.Event{}
	for _, ev := range m.events {
		if len(q.Statuses) > 0 && !containsStatus(q.Statuses, ev.Status) {
			continue
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

func (m *memorySource) GetEvent(ctx context.Context, id string) (*models.Event, error) {
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

func (m *memorySource) ListGenres(ctx context.Context) ([]models.Genre, error) {
	return m.genres, m.err
}

func (m *memorySource) queryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queries)
}

func (m *memorySource) lastQuery() models.EventQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queries[len(m.queries)-1]
}

func containsStatus(list []models.EventStatus, s models.EventStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) CreateEvent(ctx context.Context, row map[string]interface{}, genreIDs []string, accessToken string) (*models.Event, error) {
	args := m.Called(ctx, row, genreIDs, accessToken)
	ev, _ := args.Get(0).(*models.Event)
	return ev, args.Error(1)
}

func (m *mockWriter) UpdateEventStatus(ctx context.Context, id string, status models.EventStatus, accessToken string) (*models.Event, error) {
	args := m.Called(ctx, id, status, accessToken)
	ev, _ := args.Get(0).(*models.Event)
	return ev, args.Error(1)
}

func (m *mockWriter) UpdateEvent(ctx context.Context, id string, row map[string]interface{}, genreIDs []string, accessToken string) (*models.Event, error) {
	args := m.Called(ctx, id, row, genreIDs, accessToken)
	ev, _ := args.Get(0).(*models.Event)
	return ev, args.Error(1)
}

func (m *mockWriter) DeleteEvent(ctx context.Context, id string, accessToken string) error {
	return m.Called(ctx, id, accessToken).Error(0)
}

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) Upload(ctx context.Context, source, folder string) (string, string, error) {
	args := m.Called(ctx, source, folder)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockUploader) Destroy(ctx context.Context, publicID string) error {
	return m.Called(ctx, publicID).Error(0)
}

type published struct {
	topic string
	event any
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *recordingPublisher) Publish(ctx context.Context, topic string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{topic: topic, event: event})
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.msgs))
	for _, m := range p.msgs {
		out = append(out, m.topic)
	}
	return out
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	args := m.Called(ctx, refreshToken)
	resp, _ := args.Get(0).(*types.TokenResponse)
	return resp, args.Error(1)
}

func (m *mockUserRepo) GetUser(ctx context.Context, id string, accessToken string) (*models.User, error) {
	args := m.Called(ctx, id, accessToken)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) ListUsers(ctx context.Context, accessToken string) ([]models.User, error) {
	args := m.Called(ctx, accessToken)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *mockUserRepo) UpdateUser(ctx context.Context, id string, fields map[string]interface{}, accessToken string) (*models.User, error) {
	args := m.Called(ctx, id, fields, accessToken)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
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
	saved := *prefs
	saved.UpdatedAt = time.Now()
	m.prefs[prefs.UserID] = saved
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
	f.Items[eventID] = models.FavoriteItem{EventID: eventID, AddedAt: time.Now().Add(time.Duration(len(f.Items)) * time.Second)}
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
	sessions := map[string]bool{}
	for _, v := range m.views {
		if v.EventID == eventID {
			stats.TotalViews++
			sessions[v.SessionID] = true
		}
	}
	stats.UniqueViews = int64(len(sessions))
	return stats, nil
}

func (m *memoryViews) EnsureViewIndexes(ctx context.Context) error { return nil }

// fixture dates are relative to 2024-06-10 in America/Chicago.
var testNow = time.Date(2024, time.June, 10, 15, 0, 0, 0, time.UTC)

func testEvents() []models.Event {
	jazz := models.Genre{ID: "g-jazz", Name: "Jazz", Slug: "jazz"}
	rock := models.Genre{ID: "g-rock", Name: "Rock", Slug: "rock"}
	return []models.Event{
		{ID: "past", Title: "Old Show", EventDate: "2024-06-01", City: "Nashville", State: "TN", Status: models.StatusApproved, Genres: []models.Genre{rock}},
		{ID: "jazz", Title: "Jazz Night", EventDate: "2024-06-12", EventTime: ptr("19:00"), City: "Nashville", State: "TN", Status: models.StatusApproved, Price: ptr(20.0), Genres: []models.Genre{jazz}, OrganizerID: ptr("org-1")},
		{ID: "rock", Title: "Rock Fest", EventDate: "2024-06-20", City: "Austin", State: "TX", Status: models.StatusApproved, Genres: []models.Genre{rock}},
		{ID: "pending", Title: "Pending Gig", EventDate: "2024-06-15", City: "Nashville", State: "TN", Status: models.StatusPending, OrganizerID: ptr("org-1")},
		{ID: "rejected", Title: "Rejected Gig", EventDate: "2024-06-16", City: "Austin", State: "TX", Status: models.StatusRejected, OrganizerID: ptr("org-2")},
	}
}

func testLocation() *time.Location {
	loc, err := time.LoadLocation("America/Chicago")
	if err != nil {
		panic(err)
	}
	return loc
}

type serviceFixture struct {
	source    *memorySource
	writer    *mockWriter
	uploader  *mockUploader
	publisher *recordingPublisher
	svc       *EventService
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		source:    &memorySource{events: testEvents(), genres: []models.Genre{{ID: "g-jazz", Name: "Jazz"}}},
		writer:    &mockWriter{},
		uploader:  &mockUploader{},
		publisher: &recordingPublisher{},
	}
	loc := testLocation()
	snap := NewEventSnapshot(f.source, loc, nil, discardLogger)
	snap.now = func() time.Time { return testNow }
	f.svc = NewEventService(EventServiceConfig{
		Source:    f.source,
		Writer:    f.writer,
		Snapshot:  snap,
		Uploader:  f.uploader,
		Publisher: f.publisher,
		Logger:    discardLogger,
		Location:  loc,
	})
	f.svc.now = func() time.Time { return testNow }
	return f
}

func ids(events []models.Event) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.ID)
	}
	return out
}
