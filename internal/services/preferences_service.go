package services

import (
	"context"
	"fmt"

	"github.com/joshua-takyi/entcal/internal/interaction"
	"github.com/joshua-takyi/entcal/internal/models"
)

// InteractionTiming is the derived, read-only timing a client applies to
// event tiles.
type InteractionTiming struct {
	Mode                  interaction.Mode `json:"mode"`
	HoverOpenDelayMs      int64            `json:"hover_open_delay_ms"`
	PreviewDismissDelayMs int64            `json:"preview_dismiss_delay_ms"`
}

type PreferencesView struct {
	*models.Preferences
	Interaction InteractionTiming `json:"interaction"`
}

type PreferencesService struct {
	repo   models.PreferencesRepo
	timing interaction.Config
}

// NewPreferencesService takes the configured delays; the mode always comes
// from the stored preferences.
func NewPreferencesService(repo models.PreferencesRepo, timing interaction.Config) *PreferencesService {
	return &PreferencesService{repo: repo, timing: timing}
}

func (ps *PreferencesService) Get(ctx context.Context, userID string) (*models.Preferences, error) {
	if userID == "" {
		d := models.DefaultPreferences("")
		return &d, nil
	}
	prefs, err := ps.repo.GetPreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	return prefs, nil
}

func (ps *PreferencesService) Save(ctx context.Context, userID string, prefs models.Preferences) (*models.Preferences, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", models.ErrInvalidInput)
	}
	prefs.UserID = userID
	if err := models.Validate.Struct(prefs); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	saved, err := ps.repo.SavePreferences(ctx, &prefs)
	if err != nil {
		return nil, fmt.Errorf("failed to save preferences: %w", err)
	}
	return saved, nil
}

// Config derives the interaction config for prefs using the service delays.
func (ps *PreferencesService) Config(prefs models.Preferences) interaction.Config {
	cfg := interaction.ConfigFromPreferences(prefs)
	if ps.timing.HoverOpenDelay > 0 {
		cfg.HoverOpenDelay = ps.timing.HoverOpenDelay
	}
	if ps.timing.PreviewDismissDelay > 0 {
		cfg.PreviewDismissDelay = ps.timing.PreviewDismissDelay
	}
	return cfg
}

func (ps *PreferencesService) View(prefs *models.Preferences) PreferencesView {
	cfg := ps.Config(*prefs)
	return PreferencesView{
		Preferences: prefs,
		Interaction: InteractionTiming{
			Mode:                  cfg.Mode,
			HoverOpenDelayMs:      cfg.HoverOpenDelay.Milliseconds(),
			PreviewDismissDelayMs: cfg.PreviewDismissDelay.Milliseconds(),
		},
	}
}
