package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joshua-takyi/entcal/internal/calendar"
	"github.com/joshua-takyi/entcal/internal/metrics"
	"github.com/joshua-takyi/entcal/internal/models"
	"github.com/robfig/cron/v3"
)

const snapshotRefreshTimeout = 30 * time.Second

// EventSnapshot caches the approved upcoming events that every public
// query starts from. It reloads on a cron schedule, after Invalidate, and
// when the calendar day rolls over.
type EventSnapshot struct {
	source  models.EventSource
	loc     *time.Location
	now     func() time.Time
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu       sync.RWMutex
	events   []models.Event
	loadedOn string
	stale    bool
	// version counts invalidations. A load only installs its rows if no
	// invalidation happened while it was querying.
	version uint64

	cron *cron.Cron
}

func NewEventSnapshot(source models.EventSource, loc *time.Location, m *metrics.Metrics, logger *slog.Logger) *EventSnapshot {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EventSnapshot{
		source:  source,
		loc:     loc,
		now:     time.Now,
		metrics: m,
		logger:  logger,
		stale:   true,
	}
}

// Events returns a copy of the cached list, loading it first if needed.
func (s *EventSnapshot) Events(ctx context.Context) ([]models.Event, error) {
	today := s.today()

	s.mu.RLock()
	fresh := !s.stale && s.loadedOn == today
	events := s.events
	s.mu.RUnlock()

	if !fresh {
		var err error
		if events, err = s.load(ctx, today); err != nil {
			return nil, err
		}
	}
	return append([]models.Event(nil), events...), nil
}

func (s *EventSnapshot) Refresh(ctx context.Context) error {
	_, err := s.load(ctx, s.today())
	return err
}

// Invalidate marks the cache stale so the next read reloads it.
func (s *EventSnapshot) Invalidate() {
	s.mu.Lock()
	s.stale = true
	s.version++
	s.mu.Unlock()
}

func (s *EventSnapshot) load(ctx context.Context, today string) ([]models.Event, error) {
	s.mu.RLock()
	version := s.version
	s.mu.RUnlock()

	events, err := s.source.ListEvents(ctx, models.EventQuery{
		Statuses: []models.EventStatus{models.StatusApproved},
		FromDate: today,
	})
	s.metrics.IncSnapshotRefresh(err)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh event snapshot: %w", err)
	}

	s.mu.Lock()
	current := s.version == version
	if current {
		s.events = events
		s.loadedOn = today
		s.stale = false
	}
	s.mu.Unlock()

	if !current {
		s.logger.Debug("Discarded event snapshot invalidated during load", "from_date", today)
		return events, nil
	}
	s.logger.Info("Event snapshot refreshed", "events", len(events), "from_date", today)
	return events, nil
}

// Start schedules background refreshes with a standard cron spec or a
// descriptor such as "@every 5m".
func (s *EventSnapshot) Start(spec string) error {
	c := cron.New(cron.WithLocation(s.loc))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), snapshotRefreshTimeout)
		defer cancel()
		if err := s.Refresh(ctx); err != nil {
			s.logger.Warn("Scheduled snapshot refresh failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid snapshot schedule %q: %w", spec, err)
	}
	s.cron = c
	c.Start()
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (s *EventSnapshot) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

func (s *EventSnapshot) today() string {
	return calendar.DateKey(s.now().In(s.loc))
}
