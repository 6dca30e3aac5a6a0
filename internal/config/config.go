package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	SourceSupabase = "supabase"
	SourcePostgres = "postgres"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	SupabaseURL     string
	SupabaseAnonKey string

	MongoDBURI      string
	MongoDBPassword string
	MongoDBDatabase string

	EventSource string
	DatabaseURL string

	NATSURL string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	CalendarTimezone string
	SnapshotRefresh  string
	CORSOrigins      []string

	HoverOpenDelay      time.Duration
	PreviewDismissDelay time.Duration
}

// LoadEnvFiles loads .env.local then .env when present. Values already in
// the environment win.
func LoadEnvFiles() {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MONGODB_DATABASE", "entcal")
	v.SetDefault("EVENT_SOURCE", SourceSupabase)
	v.SetDefault("CALENDAR_TIMEZONE", "Local")
	v.SetDefault("SNAPSHOT_REFRESH", "@every 5m")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("HOVER_OPEN_DELAY", "3s")
	v.SetDefault("PREVIEW_DISMISS_DELAY", "1s")
}

// LoadConfig reads the environment, plus the file named by CONFIG_FILE when
// set, and validates what the API server needs.
func LoadConfig() (*Config, error) {
	cfg, err := Read(viper.New())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read fills a Config from v without validating it.
func Read(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		Port:                v.GetString("PORT"),
		Environment:         v.GetString("ENVIRONMENT"),
		LogLevel:            strings.ToLower(v.GetString("LOG_LEVEL")),
		SupabaseURL:         v.GetString("SUPABASE_URL"),
		SupabaseAnonKey:     v.GetString("SUPABASE_ANON_KEY"),
		MongoDBURI:          v.GetString("MONGODB_URI"),
		MongoDBPassword:     v.GetString("MONGODB_PASSWORD"),
		MongoDBDatabase:     v.GetString("MONGODB_DATABASE"),
		EventSource:         strings.ToLower(v.GetString("EVENT_SOURCE")),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		NATSURL:             v.GetString("NATS_URL"),
		CloudinaryCloudName: v.GetString("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    v.GetString("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: v.GetString("CLOUDINARY_API_SECRET"),
		CalendarTimezone:    v.GetString("CALENDAR_TIMEZONE"),
		SnapshotRefresh:     v.GetString("SNAPSHOT_REFRESH"),
		CORSOrigins:         splitList(v.GetString("CORS_ORIGINS")),
		HoverOpenDelay:      v.GetDuration("HOVER_OPEN_DELAY"),
		PreviewDismissDelay: v.GetDuration("PREVIEW_DISMISS_DELAY"),
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.SupabaseURL == "" {
		errs = append(errs, errors.New("SUPABASE_URL is required"))
	}
	if c.SupabaseAnonKey == "" {
		errs = append(errs, errors.New("SUPABASE_ANON_KEY is required"))
	}
	if c.MongoDBURI == "" {
		errs = append(errs, errors.New("MONGODB_URI is required"))
	}
	switch c.EventSource {
	case SourceSupabase:
	case SourcePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when EVENT_SOURCE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("EVENT_SOURCE must be %s or %s, got %q", SourceSupabase, SourcePostgres, c.EventSource))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location resolves CALENDAR_TIMEZONE; "Local" and empty mean time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.CalendarTimezone == "" || strings.EqualFold(c.CalendarTimezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.CalendarTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid CALENDAR_TIMEZONE %q: %w", c.CalendarTimezone, err)
	}
	return loc, nil
}

func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
