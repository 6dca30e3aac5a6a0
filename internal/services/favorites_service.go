package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/joshua-takyi/entcal/internal/models"
)

type FavoritesService struct {
	repo   models.FavoritesRepo
	events *EventService
}

func NewFavoritesService(repo models.FavoritesRepo, events *EventService) *FavoritesService {
	return &FavoritesService{repo: repo, events: events}
}

type FavoritesView struct {
	EventIDs []string       `json:"event_ids"`
	Events   []models.Event `json:"events"`
}

func (fs *FavoritesService) Add(ctx context.Context, viewer Viewer, eventID string) error {
	if viewer.UserID == "" {
		return fmt.Errorf("%w: sign in to save favorites", models.ErrForbidden)
	}
	if _, err := fs.events.GetEvent(ctx, viewer, eventID); err != nil {
		return err
	}
	if _, err := fs.repo.AddFavorite(ctx, viewer.UserID, eventID); err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

func (fs *FavoritesService) Remove(ctx context.Context, viewer Viewer, eventID string) error {
	if viewer.UserID == "" {
		return fmt.Errorf("%w: sign in to manage favorites", models.ErrForbidden)
	}
	if eventID == "" {
		return fmt.Errorf("%w: event id is required", models.ErrInvalidInput)
	}
	if err := fs.repo.RemoveFavorite(ctx, viewer.UserID, eventID); err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

// List resolves starred ids to events, skipping ones that are gone or no
// longer visible.
func (fs *FavoritesService) List(ctx context.Context, viewer Viewer) (*FavoritesView, error) {
	if viewer.UserID == "" {
		return nil, fmt.Errorf("%w: sign in to view favorites", models.ErrForbidden)
	}
	fav, err := fs.repo.GetFavorites(ctx, viewer.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}

	view := &FavoritesView{EventIDs: fav.EventIDs(), Events: []models.Event{}}
	for _, id := range view.EventIDs {
		ev, err := fs.events.GetEvent(ctx, viewer, id)
		if errors.Is(err, models.ErrEventNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		view.Events = append(view.Events, *ev)
	}
	return view, nil
}
