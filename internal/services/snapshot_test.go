package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/joshua-takyi/entcal/internal/metrics"
	"github.com/joshua-takyi/entcal/internal/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventSnapshot_ReloadsOnDayChange(t *testing.T) {
	t.Parallel()

	src := &memorySource{events: testEvents()}
	m := metrics.New()
	snap := NewEventSnapshot(src, testLocation(), m, discardLogger)
	now := testNow
	snap.now = func() time.Time { return now }

	ctx := context.Background()
	events, err := snap.Events(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"jazz", "rock"}, ids(events))
	assert.Equal(t, models.EventQuery{Statuses: []models.EventStatus{models.StatusApproved}, FromDate: "2024-06-10"}, src.lastQuery())

	events[0].Title = "mutated"
	again, err := snap.Events(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Jazz Night", again[0].Title)
	assert.Equal(t, 1, src.queryCount())

	now = testNow.Add(3 * 24 * time.Hour)
	events, err = snap.Events(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"rock"}, ids(events))
	assert.Equal(t, 2, src.queryCount())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SnapshotRefresh.WithLabelValues("ok")))
}

func TestEventSnapshot_RefreshError(t *testing.T) {
	t.Parallel()

	src := &memorySource{err: errors.New("db down")}
	m := metrics.New()
	snap := NewEventSnapshot(src, testLocation(), m, discardLogger)

	_, err := snap.Events(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotRefresh.WithLabelValues("error")))
}

func TestEventSnapshot_Schedule(t *testing.T) {
	t.Parallel()

	src := &memorySource{events: testEvents()}
	snap := NewEventSnapshot(src, testLocation(), nil, discardLogger)

	assert.Error(t, snap.Start("not a schedule"))

	require.NoError(t, snap.Start("@every 1s"))
	defer snap.Stop()

	assert.Eventually(t, func() bool { return src.queryCount() > 0 }, 5*time.Second, 50*time.Millisecond)
}

// gatedSource blocks the first ListEvents until release is closed.
type gatedSource struct {
	*memorySource
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedSource) ListEvents(ctx context.Context, q models.EventQuery) ([]models.Event, error) {
	g.mu.Lock()
	snapshot := append([]models.Event(nil), g.events...)
	g.mu.Unlock()

	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.started)
		<-g.release
		src := &memorySource{events: snapshot}
		return src.ListEvents(ctx, q)
	}
	return g.memorySource.ListEvents(ctx, q)
}

func TestEventSnapshot_InvalidateDuringLoad(t *testing.T) {
	t.Parallel()

	src := &gatedSource{
		memorySource: &memorySource{},
		started:      make(chan struct{}),
		release:      make(chan struct{}),
	}
	snap := NewEventSnapshot(src, testLocation(), nil, discardLogger)
	snap.now = func() time.Time { return testNow }
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- snap.Refresh(ctx) }()
	<-src.started

	src.mu.Lock()
	src.events = append(src.events, models.Event{ID: "new", Title: "New Show", EventDate: "2024-06-15", Status: models.StatusApproved})
	src.mu.Unlock()
	snap.Invalidate()

	close(src.release)
	require.NoError(t, <-done)

	events, err := snap.Events(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, ids(events))

	again, err := snap.Events(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, ids(again))
	assert.Equal(t, 1, src.queryCount())
}
