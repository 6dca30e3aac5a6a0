package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/entcal/internal/models"
)

type ViewService struct {
	repo   models.EventViewsRepo
	events *EventService
}

func NewViewService(repo models.EventViewsRepo, events *EventService) *ViewService {
	return &ViewService{repo: repo, events: events}
}

type ViewRequest struct {
	EventID   string
	SessionID string
	IPAddress string
	UserAgent string
}

// Track records a detail open and returns the session id used, generating
// one when the client sent none.
func (vs *ViewService) Track(ctx context.Context, viewer Viewer, req ViewRequest) (string, bool, error) {
	ev, err := vs.events.GetEvent(ctx, viewer, req.EventID)
	if err != nil {
		return "", false, err
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	view := &models.EventView{
		EventID:   ev.ID,
		SessionID: sessionID,
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
	}
	if ev.OrganizerID != nil {
		view.OrganizerID = *ev.OrganizerID
	}
	if viewer.UserID != "" {
		uid := viewer.UserID
		view.UserID = &uid
	}

	recorded, err := vs.repo.TrackEventView(ctx, view)
	if err != nil {
		return sessionID, false, fmt.Errorf("failed to track view: %w", err)
	}
	return sessionID, recorded, nil
}

// Stats is limited to admins and the event's organizer.
func (vs *ViewService) Stats(ctx context.Context, viewer Viewer, eventID string) (*models.EventViewStats, error) {
	ev, err := vs.events.GetEvent(ctx, viewer, eventID)
	if err != nil {
		return nil, err
	}
	if !viewer.IsAdmin() && !ev.IsOrganizedBy(viewer.UserID) {
		return nil, fmt.Errorf("%w: only the organizer can view statistics", models.ErrForbidden)
	}
	stats, err := vs.repo.GetEventViewStats(ctx, ev.ID, time.Now().In(vs.events.Location()))
	if err != nil {
		return nil, fmt.Errorf("failed to load view stats: %w", err)
	}
	return stats, nil
}
