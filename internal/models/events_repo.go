package models

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
)

// eventSelect embeds each event's genres through the event_genres join table.
const eventSelect = "*, genres:event_genres(genre:genres(*))"

// eventRow mirrors the nested PostgREST shape before flattening.
type eventRow struct {
	Event
	Genres []struct {
		Genre *Genre `json:"genre"`
	} `json:"genres"`
}

func (r eventRow) flatten() Event {
	ev := r.Event
	ev.Genres = make([]Genre, 0, len(r.Genres))
	for _, g := range r.Genres {
		if g.Genre != nil {
			ev.Genres = append(ev.Genres, *g.Genre)
		}
	}
	return ev
}

func decodeEvents(raw []byte) ([]Event, error) {
	var rows []eventRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event rows: %w", err)
	}
	events := make([]Event, 0, len(rows))
	for _, r := range rows {
		events = append(events, r.flatten())
	}
	return events, nil
}

func (su *SupabaseRepo) ListEvents(ctx context.Context, q EventQuery) ([]Event, error) {
	fb := su.supabaseClient.From(EventsTable).Select(eventSelect, "", false)

	switch len(q.Statuses) {
	case 0:
	case 1:
		fb = fb.Eq("status", string(q.Statuses[0]))
	default:
		statuses := make([]string, 0, len(q.Statuses))
		for _, s := range q.Statuses {
			statuses = append(statuses, string(s))
		}
		fb = fb.In("status", statuses)
	}
	if q.FromDate != "" {
		fb = fb.Gte("event_date", q.FromDate)
	}
	if q.OrganizerID != "" {
		fb = fb.Eq("organizer_id", q.OrganizerID)
	}

	raw, status, err := fb.Order("event_date", &postgrest.OrderOpts{Ascending: true}).Execute()
	if err != nil {
		if status != 0 {
			return nil, fmt.Errorf("postgrest error: status=%d body=%s err=%w", status, string(raw), err)
		}
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return decodeEvents(raw)
}

func (su *SupabaseRepo) GetEvent(ctx context.Context, id string) (*Event, error) {
	return su.getEvent(su.supabaseClient, id)
}

func (su *SupabaseRepo) getEvent(client *supabase.Client, id string) (*Event, error) {
	raw, _, err := client.From(EventsTable).
		Select(eventSelect, "", false).
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get event %s: %w", id, err)
	}
	events, err := decodeEvents(raw)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrEventNotFound
	}
	return &events[0], nil
}

func (su *SupabaseRepo) ListGenres(ctx context.Context) ([]Genre, error) {
	raw, _, err := su.supabaseClient.From(GenresTable).
		Select("*", "", false).
		Order("name", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	var genres []Genre
	if err := json.Unmarshal(raw, &genres); err != nil {
		return nil, fmt.Errorf("failed to unmarshal genres: %w", err)
	}
	return genres, nil
}

// CreateEvent inserts the row, links its genres and reads it back with the
// caller's token so a pending event stays visible to its organizer.
func (su *SupabaseRepo) CreateEvent(ctx context.Context, row map[string]interface{}, genreIDs []string, accessToken string) (*Event, error) {
	client, err := su.clientFor(accessToken)
	if err != nil {
		return nil, err
	}

	raw, _, err := client.From(EventsTable).Insert(row, false, "", "representation", "").Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}
	var inserted []Event
	if err := json.Unmarshal(raw, &inserted); err != nil {
		return nil, fmt.Errorf("failed to unmarshal inserted event: %w", err)
	}
	if len(inserted) == 0 {
		return nil, fmt.Errorf("no event returned after insert")
	}
	id := inserted[0].ID

	if err := linkGenres(client, id, genreIDs); err != nil {
		return nil, err
	}
	return su.getEvent(client, id)
}

// UpdateEvent rewrites the row and replaces its genre links.
func (su *SupabaseRepo) UpdateEvent(ctx context.Context, id string, row map[string]interface{}, genreIDs []string, accessToken string) (*Event, error) {
	client, err := su.clientFor(accessToken)
	if err != nil {
		return nil, err
	}

	_, count, err := client.From(EventsTable).
		Update(row, "", "exact").
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to update event %s: %w", id, err)
	}
	if count == 0 {
		return nil, ErrEventNotFound
	}

	if _, _, err := client.From(EventGenresTable).Delete("minimal", "").Eq("event_id", id).Execute(); err != nil {
		return nil, fmt.Errorf("failed to unlink genres from event %s: %w", id, err)
	}
	if err := linkGenres(client, id, genreIDs); err != nil {
		return nil, err
	}
	return su.getEvent(client, id)
}

func (su *SupabaseRepo) DeleteEvent(ctx context.Context, id string, accessToken string) error {
	client, err := su.clientFor(accessToken)
	if err != nil {
		return err
	}

	_, count, err := client.From(EventsTable).
		Delete("minimal", "exact").
		Eq("id", id).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}
	if count == 0 {
		return ErrEventNotFound
	}
	return nil
}

func linkGenres(client *supabase.Client, eventID string, genreIDs []string) error {
	if len(genreIDs) == 0 {
		return nil
	}
	links := make([]map[string]string, 0, len(genreIDs))
	for _, g := range genreIDs {
		links = append(links, map[string]string{"event_id": eventID, "genre_id": g})
	}
	if _, _, err := client.From(EventGenresTable).Insert(links, false, "", "minimal", "").Execute(); err != nil {
		return fmt.Errorf("failed to link genres to event %s: %w", eventID, err)
	}
	return nil
}

func (su *SupabaseRepo) UpdateEventStatus(ctx context.Context, id string, status EventStatus, accessToken string) (*Event, error) {
	client, err := su.clientFor(accessToken)
	if err != nil {
		return nil, err
	}

	_, count, err := client.From(EventsTable).
		Update(map[string]interface{}{"status": status}, "", "exact").
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to update event status: %w", err)
	}
	if count == 0 {
		return nil, ErrEventNotFound
	}
	return su.getEvent(client, id)
}
