package interaction

import (
	"time"

	"github.com/joshua-takyi/entcal/internal/models"
)

type Mode string

const (
	ModeClick Mode = "click"
	ModeHover Mode = "hover"
)

const (
	DefaultHoverOpenDelay      = 3000 * time.Millisecond
	DefaultPreviewDismissDelay = 1000 * time.Millisecond
)

// Config is a read-only snapshot handed to every Item and Page.
type Config struct {
	Mode                Mode          `json:"mode"`
	HoverOpenDelay      time.Duration `json:"-"`
	PreviewDismissDelay time.Duration `json:"-"`
	Clock               Clock         `json:"-"`
}

func DefaultConfig() Config {
	return Config{
		Mode:                ModeClick,
		HoverOpenDelay:      DefaultHoverOpenDelay,
		PreviewDismissDelay: DefaultPreviewDismissDelay,
		Clock:               SystemClock,
	}
}

// ConfigFromPreferences derives the interaction config from stored
// preferences. Unknown modes fall back to click.
func ConfigFromPreferences(p models.Preferences) Config {
	cfg := DefaultConfig()
	if Mode(p.EventInteractionMode) == ModeHover {
		cfg.Mode = ModeHover
	}
	return cfg
}

func (c Config) withDefaults() Config {
	if c.Mode != ModeHover {
		c.Mode = ModeClick
	}
	if c.HoverOpenDelay <= 0 {
		c.HoverOpenDelay = DefaultHoverOpenDelay
	}
	if c.PreviewDismissDelay <= 0 {
		c.PreviewDismissDelay = DefaultPreviewDismissDelay
	}
	if c.Clock == nil {
		c.Clock = SystemClock
	}
	return c
}
