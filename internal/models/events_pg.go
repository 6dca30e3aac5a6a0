package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// PgxQuerier is the subset of pgxpool.Pool used by PostgresRepo.
type PgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepo reads events straight from the database behind Supabase.
// Writes still go through SupabaseRepo.
type PostgresRepo struct {
	db PgxQuerier
}

func NewPostgresRepo(db PgxQuerier) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const pgEventColumns = `e.id::text, e.title, e.description, e.event_date::text, e.event_time::text,
	e.end_date::text, e.end_time::text, e.venue_name, e.address, e.city, e.state, e.zip_code,
	e.latitude::float8, e.longitude::float8, e.price::float8, e.dress_code, e.age_limit,
	e.phone_number, e.image_url, e.organizer_id::text, e.status, e.featured, e.created_at, e.updated_at,
	COALESCE((
		SELECT json_agg(json_build_object(
			'id', g.id, 'name', g.name, 'slug', g.slug, 'icon_name', g.icon_name,
			'color', g.color, 'description', g.description, 'created_at', g.created_at
		) ORDER BY g.name)
		FROM event_genres eg JOIN genres g ON g.id = eg.genre_id
		WHERE eg.event_id = e.id
	), '[]')::text`

func (r *PostgresRepo) ListEvents(ctx context.Context, q EventQuery) ([]Event, error) {
	var (
		where []string
		args  []any
	)
	if len(q.Statuses) > 0 {
		statuses := make([]string, 0, len(q.Statuses))
		for _, s := range q.Statuses {
			statuses = append(statuses, string(s))
		}
		args = append(args, statuses)
		where = append(where, fmt.Sprintf("e.status = ANY($%d)", len(args)))
	}
	if q.FromDate != "" {
		args = append(args, q.FromDate)
		where = append(where, fmt.Sprintf("e.event_date >= $%d::date", len(args)))
	}
	if q.OrganizerID != "" {
		args = append(args, q.OrganizerID)
		where = append(where, fmt.Sprintf("e.organizer_id = $%d::uuid", len(args)))
	}

	sql := "SELECT " + pgEventColumns + " FROM events e"
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	sql += " ORDER BY e.event_date ASC"

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}

func (r *PostgresRepo) GetEvent(ctx context.Context, id string) (*Event, error) {
	row := r.db.QueryRow(ctx, "SELECT "+pgEventColumns+" FROM events e WHERE e.id = $1::uuid", id)
	ev, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *PostgresRepo) ListGenres(ctx context.Context) ([]Genre, error) {
	rows, err := r.db.Query(ctx, "SELECT id::text, name, slug, icon_name, color, description, created_at FROM genres ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query genres: %w", err)
	}
	defer rows.Close()

	genres := make([]Genre, 0)
	for rows.Next() {
		var g Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.Slug, &g.IconName, &g.Color, &g.Description, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate genres: %w", err)
	}
	return genres, nil
}

func scanEvent(row pgx.Row) (Event, error) {
	var (
		ev         Event
		status     string
		genresJSON string
	)
	err := row.Scan(
		&ev.ID, &ev.Title, &ev.Description, &ev.EventDate, &ev.EventTime,
		&ev.EndDate, &ev.EndTime, &ev.VenueName, &ev.Address, &ev.City, &ev.State, &ev.ZipCode,
		&ev.Latitude, &ev.Longitude, &ev.Price, &ev.DressCode, &ev.AgeLimit,
		&ev.PhoneNumber, &ev.ImageURL, &ev.OrganizerID, &status, &ev.Featured, &ev.CreatedAt, &ev.UpdatedAt,
		&genresJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Event{}, err
		}
		return Event{}, fmt.Errorf("failed to scan event: %w", err)
	}
	ev.Status = EventStatus(status)
	ev.Genres = []Genre{}
	if err := json.Unmarshal([]byte(genresJSON), &ev.Genres); err != nil {
		return Event{}, fmt.Errorf("failed to decode genres for event %s: %w", ev.ID, err)
	}
	return ev, nil
}
