package models

import (
	"context"
	"strings"
	"time"
)

const (
	EventsTable      = "events"
	GenresTable      = "genres"
	EventGenresTable = "event_genres"
	UsersTable       = "users"

	// DateLayout is the canonical form of event_date and every bucket key.
	DateLayout = "2006-01-02"
)

type EventStatus string

const (
	StatusPending  EventStatus = "pending"
	StatusApproved EventStatus = "approved"
	StatusRejected EventStatus = "rejected"
)

func (s EventStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type Genre struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`               // e.g., "Jazz"
	Slug        string    `db:"slug" json:"slug"`               // e.g., "jazz"
	IconName    *string   `db:"icon_name" json:"icon_name"`     // lucide icon name
	Color       string    `db:"color" json:"color"`             // badge colour, e.g., "#7c3aed"
	Description *string   `db:"description" json:"description"` // optional
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Event is a read-only snapshot of an events row with its genres embedded.
// Distance is only set by a geo filter and is never persisted.
type Event struct {
	ID          string      `db:"id" json:"id"`
	Title       string      `db:"title" json:"title"`
	Description *string     `db:"description" json:"description"`
	EventDate   string      `db:"event_date" json:"event_date"` // YYYY-MM-DD
	EventTime   *string     `db:"event_time" json:"event_time"` // HH:MM or HH:MM:SS
	EndDate     *string     `db:"end_date" json:"end_date"`
	EndTime     *string     `db:"end_time" json:"end_time"`
	VenueName   *string     `db:"venue_name" json:"venue_name"`
	Address     string      `db:"address" json:"address"`
	City        string      `db:"city" json:"city"`
	State       string      `db:"state" json:"state"` // two letter code
	ZipCode     *string     `db:"zip_code" json:"zip_code"`
	Latitude    *float64    `db:"latitude" json:"latitude"`
	Longitude   *float64    `db:"longitude" json:"longitude"`
	Price       *float64    `db:"price" json:"price"` // nil is unknown, not free
	DressCode   *string     `db:"dress_code" json:"dress_code"`
	AgeLimit    *string     `db:"age_limit" json:"age_limit"` // e.g., "21+"
	PhoneNumber *string     `db:"phone_number" json:"phone_number"`
	ImageURL    *string     `db:"image_url" json:"image_url"`
	OrganizerID *string     `db:"organizer_id" json:"organizer_id"`
	Status      EventStatus `db:"status" json:"status"`
	Featured    bool        `db:"featured" json:"featured"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
	Genres      []Genre     `json:"genres"`
	Distance    *float64    `json:"distance,omitempty"`
}

func (e Event) HasCoordinates() bool {
	return e.Latitude != nil && e.Longitude != nil
}

// PriceOrZero treats a missing price as free. Only range filtering relies on it.
func (e Event) PriceOrZero() float64 {
	if e.Price == nil {
		return 0
	}
	return *e.Price
}

func (e Event) HasGenre(id string) bool {
	for _, g := range e.Genres {
		if g.ID == id {
			return true
		}
	}
	return false
}

func (e Event) IsOrganizedBy(userID string) bool {
	return e.OrganizerID != nil && userID != "" && *e.OrganizerID == userID
}

// Location joins venue, address, city and state, skipping blanks.
func (e Event) Location() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{deref(e.VenueName), e.Address, e.City, e.State} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// EventInput is the body an organizer submits. Status and featured are not
// accepted from clients.
type EventInput struct {
	Title       string   `json:"title" validate:"required,min=2,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	EventDate   string   `json:"event_date" validate:"required,datetime=2006-01-02"`
	EventTime   *string  `json:"event_time" validate:"omitempty,datetime=15:04"`
	EndDate     *string  `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	EndTime     *string  `json:"end_time" validate:"omitempty,datetime=15:04"`
	VenueName   *string  `json:"venue_name" validate:"omitempty,max=200"`
	Address     string   `json:"address" validate:"max=300"`
	City        string   `json:"city" validate:"required"`
	State       string   `json:"state" validate:"required,len=2"`
	ZipCode     *string  `json:"zip_code" validate:"omitempty,max=10"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	DressCode   *string  `json:"dress_code" validate:"omitempty,max=100"`
	AgeLimit    *string  `json:"age_limit" validate:"omitempty,max=20"`
	PhoneNumber *string  `json:"phone_number" validate:"omitempty,max=30"`
	ImageURL    *string  `json:"image_url"`
	Image       string   `json:"image,omitempty"` // data URI or remote URL, uploaded on create
	GenreIDs    []string `json:"genre_ids" validate:"omitempty,dive,required"`
}

// Record converts the input into an insertable row owned by organizerID.
func (in EventInput) Record(organizerID string) map[string]interface{} {
	row := in.baseRow()
	row["status"] = StatusPending
	row["featured"] = false
	row["organizer_id"] = organizerID
	for k, v := range in.optionalRow() {
		if v != nil {
			row[k] = v
		}
	}
	return row
}

// Changes converts the input into an update of an existing row. Optional
// fields left empty are cleared. Edits by anyone but an admin send the event
// back to review.
func (in EventInput) Changes(byAdmin bool) map[string]interface{} {
	row := in.baseRow()
	for k, v := range in.optionalRow() {
		row[k] = v
	}
	if !byAdmin {
		row["status"] = StatusPending
		row["featured"] = false
	}
	return row
}

func (in EventInput) baseRow() map[string]interface{} {
	return map[string]interface{}{
		"title":      strings.TrimSpace(in.Title),
		"event_date": in.EventDate,
		"address":    in.Address,
		"city":       strings.TrimSpace(in.City),
		"state":      strings.ToUpper(strings.TrimSpace(in.State)),
	}
}

// optionalRow maps each nullable column to its value, or nil when unset.
func (in EventInput) optionalRow() map[string]interface{} {
	return map[string]interface{}{
		"description":  optionalValue(in.Description),
		"event_time":   optionalValue(in.EventTime),
		"end_date":     optionalValue(in.EndDate),
		"end_time":     optionalValue(in.EndTime),
		"venue_name":   optionalValue(in.VenueName),
		"zip_code":     optionalValue(in.ZipCode),
		"latitude":     optionalValue(in.Latitude),
		"longitude":    optionalValue(in.Longitude),
		"price":        optionalValue(in.Price),
		"dress_code":   optionalValue(in.DressCode),
		"age_limit":    optionalValue(in.AgeLimit),
		"phone_number": optionalValue(in.PhoneNumber),
		"image_url":    optionalValue(in.ImageURL),
	}
}

func optionalValue(v interface{}) interface{} {
	switch val := v.(type) {
	case *string:
		if val != nil {
			return *val
		}
	case *float64:
		if val != nil {
			return *val
		}
	}
	return nil
}

type StatusUpdate struct {
	Status EventStatus `json:"status" validate:"required,oneof=pending approved rejected"`
}

// EventQuery describes the snapshot requested from an event source.
type EventQuery struct {
	// Statuses restricts rows to the listed statuses; empty means any.
	Statuses []EventStatus
	// FromDate drops events before this YYYY-MM-DD date; empty keeps past events.
	FromDate    string
	OrganizerID string
}

// EventSource supplies event snapshots ordered by event_date.
type EventSource interface {
	ListEvents(ctx context.Context, q EventQuery) ([]Event, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	ListGenres(ctx context.Context) ([]Genre, error)
}

// EventWriter persists organizer submissions, edits and moderation
// decisions. UpdateEvent replaces the event's genre links with genreIDs.
type EventWriter interface {
	CreateEvent(ctx context.Context, row map[string]interface{}, genreIDs []string, accessToken string) (*Event, error)
	UpdateEvent(ctx context.Context, id string, row map[string]interface{}, genreIDs []string, accessToken string) (*Event, error)
	UpdateEventStatus(ctx context.Context, id string, status EventStatus, accessToken string) (*Event, error)
	DeleteEvent(ctx context.Context, id string, accessToken string) error
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
