package bus

import (
	"context"

	"github.com/joshua-takyi/entcal/internal/models"
)

const (
	TopicEventCreated       = "entcal.event.created"
	TopicEventUpdated       = "entcal.event.updated"
	TopicEventDeleted       = "entcal.event.deleted"
	TopicEventStatusChanged = "entcal.event.status_changed"
	TopicEventsImported     = "entcal.events.imported"
)

// Publisher sends lifecycle notifications. Callers treat failures as
// non-fatal.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

type EventCreated struct {
	Event *models.Event `json:"event"`
}

type EventUpdated struct {
	Event     *models.Event `json:"event"`
	UpdatedBy string        `json:"updated_by,omitempty"`
}

type EventDeleted struct {
	EventID   string `json:"event_id"`
	DeletedBy string `json:"deleted_by,omitempty"`
}

type EventStatusChanged struct {
	EventID   string             `json:"event_id"`
	Status    models.EventStatus `json:"status"`
	ChangedBy string             `json:"changed_by,omitempty"`
}

type EventsImported struct {
	OrganizerID string `json:"organizer_id"`
	Added       int    `json:"added"`
	Failed      int    `json:"failed"`
}
