package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joshua-takyi/entcal/internal/bus"
	"github.com/joshua-takyi/entcal/internal/config"
	"github.com/joshua-takyi/entcal/internal/helpers"
	"github.com/joshua-takyi/entcal/internal/interaction"
	"github.com/joshua-takyi/entcal/internal/metrics"
	"github.com/joshua-takyi/entcal/internal/middleware"
	"github.com/joshua-takyi/entcal/internal/models"
	"github.com/joshua-takyi/entcal/internal/services"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
)

// Clients are the connections opened in main. Postgres and Cloudinary are
// optional.
type Clients struct {
	Supabase   *supabase.Client
	MongoDB    *mongo.Client
	Postgres   *pgxpool.Pool
	Cloudinary *cloudinary.Cloudinary
	Publisher  bus.Publisher
	Validator  helpers.TokenValidator
}

// Container holds all application dependencies
type Container struct {
	Logger  *slog.Logger
	Config  *config.Config
	Metrics *metrics.Metrics
	Clients Clients

	Auth      *middleware.Auth
	ViewsRepo models.EventViewsRepo

	EventService       *services.EventService
	PreferencesService *services.PreferencesService
	FavoritesService   *services.FavoritesService
	ViewService        *services.ViewService
	UserService        *services.UserService
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config, logger *slog.Logger, clients Clients) (*Container, error) {
	m := metrics.New()

	eventService, err := NewEventService(cfg, logger, m, clients)
	if err != nil {
		return nil, err
	}

	supa := models.SupabaseNewRepo(clients.Supabase, cfg.SupabaseURL, cfg.SupabaseAnonKey)
	mongoRepo := models.MongodbNewRepo(clients.MongoDB, cfg.MongoDBDatabase)

	userService := services.NewUserService(supa)
	preferencesService := services.NewPreferencesService(mongoRepo, interaction.Config{
		HoverOpenDelay:      cfg.HoverOpenDelay,
		PreviewDismissDelay: cfg.PreviewDismissDelay,
	})

	return &Container{
		Logger:             logger,
		Config:             cfg,
		Metrics:            m,
		Clients:            clients,
		Auth:               middleware.NewAuth(clients.Validator, userService, logger, cfg.IsProduction()),
		ViewsRepo:          mongoRepo,
		EventService:       eventService,
		PreferencesService: preferencesService,
		FavoritesService:   services.NewFavoritesService(mongoRepo, eventService),
		ViewService:        services.NewViewService(mongoRepo, eventService),
		UserService:        userService,
	}, nil
}

// NewEventService wires the event read path chosen by EVENT_SOURCE. Writes
// always go through Supabase so row level security applies. The CLI calls
// this directly without MongoDB.
func NewEventService(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics, clients Clients) (*services.EventService, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	supa := models.SupabaseNewRepo(clients.Supabase, cfg.SupabaseURL, cfg.SupabaseAnonKey)
	var source models.EventSource = supa
	if cfg.EventSource == config.SourcePostgres && clients.Postgres != nil {
		source = models.NewPostgresRepo(clients.Postgres)
	}

	var uploader helpers.ImageUploader
	if clients.Cloudinary != nil {
		uploader = helpers.NewCloudinaryUploader(clients.Cloudinary)
	}

	return services.NewEventService(services.EventServiceConfig{
		Source:    source,
		Writer:    supa,
		Uploader:  uploader,
		Publisher: clients.Publisher,
		Metrics:   m,
		Logger:    logger,
		Location:  loc,
	}), nil
}
