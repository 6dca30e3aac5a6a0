package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/joshua-takyi/entcal/internal/bus"
	"github.com/joshua-takyi/entcal/internal/calendar"
	"github.com/joshua-takyi/entcal/internal/helpers"
	"github.com/joshua-takyi/entcal/internal/metrics"
	"github.com/joshua-takyi/entcal/internal/models"
)

// Viewer is whoever a query runs on behalf of. The zero value is an
// anonymous public visitor.
type Viewer struct {
	UserID      string
	Role        models.Role
	AccessToken string
	ShowPast    bool
}

func (v Viewer) IsAdmin() bool {
	return v.Role == models.RoleAdmin
}

func (v Viewer) CanSubmit() bool {
	return v.UserID != "" && (v.Role == models.RoleOrganizer || v.Role == models.RoleAdmin)
}

// canSee hides unapproved events from everyone but admins and their organizer.
func (v Viewer) canSee(ev *models.Event) bool {
	return ev.Status == models.StatusApproved || v.IsAdmin() || ev.IsOrganizedBy(v.UserID)
}

type EventService struct {
	source    models.EventSource
	writer    models.EventWriter
	snapshot  *EventSnapshot
	uploader  helpers.ImageUploader
	publisher bus.Publisher
	exporter  *calendar.Exporter
	metrics   *metrics.Metrics
	logger    *slog.Logger
	loc       *time.Location
	now       func() time.Time
}

type EventServiceConfig struct {
	Source    models.EventSource
	Writer    models.EventWriter
	Snapshot  *EventSnapshot
	Uploader  helpers.ImageUploader
	Publisher bus.Publisher
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
	Location  *time.Location
}

func NewEventService(cfg EventServiceConfig) *EventService {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = &bus.NoopPublisher{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	snapshot := cfg.Snapshot
	if snapshot == nil {
		snapshot = NewEventSnapshot(cfg.Source, loc, cfg.Metrics, logger)
	}
	return &EventService{
		source:    cfg.Source,
		writer:    cfg.Writer,
		snapshot:  snapshot,
		uploader:  cfg.Uploader,
		publisher: publisher,
		exporter:  calendar.NewExporter(loc),
		metrics:   cfg.Metrics,
		logger:    logger,
		loc:       loc,
		now:       time.Now,
	}
}

func (es *EventService) Location() *time.Location {
	return es.loc
}

// Today is the current instant in the calendar timezone.
func (es *EventService) Today() time.Time {
	return es.now().In(es.loc)
}

func (es *EventService) Snapshot() *EventSnapshot {
	return es.snapshot
}

// ListEvents returns the viewer's visible events with filters applied.
// statuses is honored for admins only.
func (es *EventService) ListEvents(ctx context.Context, viewer Viewer, filters models.EventFilters, statuses ...models.EventStatus) ([]models.Event, error) {
	filters = filters.Normalized()
	if err := filters.Validate(); err != nil {
		return nil, err
	}
	for _, s := range statuses {
		if !s.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", models.ErrInvalidInput, s)
		}
	}

	base, err := es.baseEvents(ctx, viewer, statuses)
	if err != nil {
		return nil, err
	}
	out := calendar.Apply(base, filters)
	es.metrics.ObserveFilter(len(out))
	return out, nil
}

func (es *EventService) baseEvents(ctx context.Context, viewer Viewer, statuses []models.EventStatus) ([]models.Event, error) {
	if !viewer.IsAdmin() && !viewer.ShowPast {
		return es.snapshot.Events(ctx)
	}

	q := models.EventQuery{Statuses: []models.EventStatus{models.StatusApproved}}
	if viewer.IsAdmin() {
		q.Statuses = statuses
	}
	if !viewer.ShowPast {
		q.FromDate = calendar.DateKey(es.Today())
	}
	events, err := es.source.ListEvents(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (es *EventService) GetEvent(ctx context.Context, viewer Viewer, id string) (*models.Event, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: event id is required", models.ErrInvalidInput)
	}
	ev, err := es.source.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.canSee(ev) {
		return nil, models.ErrEventNotFound
	}
	return ev, nil
}

func (es *EventService) ListGenres(ctx context.Context) ([]models.Genre, error) {
	genres, err := es.source.ListGenres(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	return genres, nil
}

// CreateEvent stores an organizer submission as pending. An uploaded image
// is removed again when the insert fails.
func (es *EventService) CreateEvent(ctx context.Context, viewer Viewer, input models.EventInput) (*models.Event, error) {
	if !viewer.CanSubmit() {
		return nil, fmt.Errorf("%w: only organizers can submit events", models.ErrForbidden)
	}
	if err := models.Validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	publicID, err := es.uploadImage(ctx, &input)
	if err != nil {
		return nil, err
	}

	ev, err := es.writer.CreateEvent(ctx, input.Record(viewer.UserID), input.GenreIDs, viewer.AccessToken)
	if err != nil {
		es.discardImage(ctx, publicID)
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	es.logger.Info("Event created", "event_id", ev.ID, "organizer_id", viewer.UserID)
	es.publish(ctx, bus.TopicEventCreated, bus.EventCreated{Event: ev})
	es.snapshot.Invalidate()
	return ev, nil
}

// ListManaged returns the events viewer manages, newest first. Organizers
// get their own events and admins get every event, in any status and
// including past dates.
func (es *EventService) ListManaged(ctx context.Context, viewer Viewer) ([]models.Event, error) {
	if !viewer.CanSubmit() {
		return nil, fmt.Errorf("%w: only organizers can manage events", models.ErrForbidden)
	}

	var q models.EventQuery
	if !viewer.IsAdmin() {
		q.OrganizerID = viewer.UserID
	}
	events, err := es.source.ListEvents(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list managed events: %w", err)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].EventDate > events[j].EventDate
	})
	return events, nil
}

// UpdateEvent replaces an event's fields and genres. Organizer edits put the
// event back into review.
func (es *EventService) UpdateEvent(ctx context.Context, viewer Viewer, id string, input models.EventInput) (*models.Event, error) {
	if _, err := es.managedEvent(ctx, viewer, id); err != nil {
		return nil, err
	}
	if err := models.Validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	publicID, err := es.uploadImage(ctx, &input)
	if err != nil {
		return nil, err
	}

	ev, err := es.writer.UpdateEvent(ctx, id, input.Changes(viewer.IsAdmin()), input.GenreIDs, viewer.AccessToken)
	if err != nil {
		es.discardImage(ctx, publicID)
		if errors.Is(err, models.ErrEventNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	es.logger.Info("Event updated", "event_id", id, "user_id", viewer.UserID)
	es.publish(ctx, bus.TopicEventUpdated, bus.EventUpdated{Event: ev, UpdatedBy: viewer.UserID})
	es.snapshot.Invalidate()
	return ev, nil
}

func (es *EventService) DeleteEvent(ctx context.Context, viewer Viewer, id string) error {
	if _, err := es.managedEvent(ctx, viewer, id); err != nil {
		return err
	}

	if err := es.writer.DeleteEvent(ctx, id, viewer.AccessToken); err != nil {
		if errors.Is(err, models.ErrEventNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete event: %w", err)
	}

	es.logger.Info("Event deleted", "event_id", id, "user_id", viewer.UserID)
	es.publish(ctx, bus.TopicEventDeleted, bus.EventDeleted{EventID: id, DeletedBy: viewer.UserID})
	es.snapshot.Invalidate()
	return nil
}

// managedEvent loads id and checks that viewer organizes it or is an admin.
func (es *EventService) managedEvent(ctx context.Context, viewer Viewer, id string) (*models.Event, error) {
	if !viewer.CanSubmit() {
		return nil, fmt.Errorf("%w: only organizers can manage events", models.ErrForbidden)
	}
	if id == "" {
		return nil, fmt.Errorf("%w: event id is required", models.ErrInvalidInput)
	}
	ev, err := es.source.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.IsAdmin() && !ev.IsOrganizedBy(viewer.UserID) {
		return nil, fmt.Errorf("%w: you can only manage your own events", models.ErrForbidden)
	}
	return ev, nil
}

// uploadImage stores input.Image and points ImageURL at it. It returns the
// public id for cleanup, or "" when there was nothing to upload.
func (es *EventService) uploadImage(ctx context.Context, input *models.EventInput) (string, error) {
	if input.Image == "" {
		return "", nil
	}
	if es.uploader == nil {
		return "", fmt.Errorf("%w: image upload is not configured", models.ErrInvalidInput)
	}
	url, id, err := es.uploader.Upload(ctx, input.Image, helpers.EventsFolder)
	if err != nil {
		return "", err
	}
	input.ImageURL = &url
	return id, nil
}

func (es *EventService) discardImage(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	if err := es.uploader.Destroy(ctx, publicID); err != nil {
		es.logger.Warn("Failed to clean up event image", "public_id", publicID, "error", err)
	}
}

func (es *EventService) UpdateStatus(ctx context.Context, viewer Viewer, id string, update models.StatusUpdate) (*models.Event, error) {
	if !viewer.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", models.ErrForbidden)
	}
	if err := models.Validate.Struct(update); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	ev, err := es.writer.UpdateEventStatus(ctx, id, update.Status, viewer.AccessToken)
	if err != nil {
		if errors.Is(err, models.ErrEventNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update event status: %w", err)
	}

	es.logger.Info("Event status changed", "event_id", id, "status", update.Status, "admin_id", viewer.UserID)
	es.publish(ctx, bus.TopicEventStatusChanged, bus.EventStatusChanged{
		EventID:   id,
		Status:    update.Status,
		ChangedBy: viewer.UserID,
	})
	es.snapshot.Invalidate()
	return ev, nil
}

// ExportICS writes the visible event's iCalendar document to sink.
func (es *EventService) ExportICS(ctx context.Context, viewer Viewer, id string, sink calendar.DownloadSink) error {
	ev, err := es.GetEvent(ctx, viewer, id)
	if err != nil {
		return err
	}
	if err := es.exporter.Export(*ev, sink); err != nil {
		return fmt.Errorf("failed to export event %s: %w", id, err)
	}
	es.metrics.IncICalExport()
	return nil
}

func (es *EventService) WeekGrid(ctx context.Context, viewer Viewer, anchor time.Time, filters models.EventFilters) (calendar.Grid, error) {
	events, err := es.ListEvents(ctx, viewer, filters)
	if err != nil {
		return calendar.Grid{}, err
	}
	return calendar.WeekView(anchor.In(es.loc), events), nil
}

func (es *EventService) MonthGrid(ctx context.Context, viewer Viewer, year int, month time.Month, filters models.EventFilters) (calendar.Grid, error) {
	if month < time.January || month > time.December {
		return calendar.Grid{}, fmt.Errorf("%w: month must be 1-12", models.ErrInvalidInput)
	}
	events, err := es.ListEvents(ctx, viewer, filters)
	if err != nil {
		return calendar.Grid{}, err
	}
	return calendar.MonthView(year, month, es.loc, events), nil
}

func (es *EventService) RollingGrid(ctx context.Context, viewer Viewer, anchor time.Time, filters models.EventFilters) (calendar.Grid, error) {
	events, err := es.ListEvents(ctx, viewer, filters)
	if err != nil {
		return calendar.Grid{}, err
	}
	return calendar.RollingView(anchor.In(es.loc), events), nil
}

func (es *EventService) publish(ctx context.Context, topic string, event any) {
	if err := es.publisher.Publish(ctx, topic, event); err != nil {
		es.logger.Warn("Failed to publish notification", "topic", topic, "error", err)
	}
}
