package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joshua-takyi/entcal/internal/config"
	"github.com/joshua-takyi/entcal/internal/connect"
	"github.com/joshua-takyi/entcal/internal/container"
	"github.com/joshua-takyi/entcal/internal/helpers"
	"github.com/joshua-takyi/entcal/internal/routes"
)

func main() {
	config.LoadEnvFiles()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)
	logger.Info("Starting entertainment calendar API", "environment", cfg.Environment, "event_source", cfg.EventSource)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server exited")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	supaClient, err := connect.InitSupabase(cfg)
	if err != nil {
		return err
	}
	logger.Info("Connected to Supabase successfully")

	mongoClient, err := connect.MongoDBConnect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := connect.MongoDBDisconnect(mongoClient); err != nil {
			logger.Error("Error disconnecting from MongoDB", "error", err)
		}
	}()
	logger.Info("Connected to MongoDB successfully")

	clients := container.Clients{Supabase: supaClient, MongoDB: mongoClient}

	if cfg.EventSource == config.SourcePostgres {
		pool, err := connect.PostgresConnect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		clients.Postgres = pool
		logger.Info("Connected to Postgres event source")
	}

	if clients.Cloudinary, err = connect.CloudinaryCredentials(cfg); err != nil {
		return err
	}
	if clients.Cloudinary == nil {
		logger.Info("Cloudinary not configured, event image upload disabled")
	}

	publisher, err := connect.Publisher(cfg, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()
	clients.Publisher = publisher

	validator, err := helpers.NewJWKSValidator(cfg.SupabaseURL, logger)
	if err != nil {
		return err
	}
	defer validator.Close()
	clients.Validator = validator

	appContainer, err := container.NewContainer(cfg, logger, clients)
	if err != nil {
		return err
	}

	if err := appContainer.ViewsRepo.EnsureViewIndexes(ctx); err != nil {
		logger.Warn("Failed to ensure event view indexes", "error", err)
	}

	snapshot := appContainer.EventService.Snapshot()
	if err := snapshot.Start(cfg.SnapshotRefresh); err != nil {
		return err
	}
	defer snapshot.Stop()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      routes.SetupRoutes(appContainer),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}

	logger.Info("Server is shutting down...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	return nil
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	if cfg.IsProduction() {
		// JSON logging for production
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.SlogLevel(),
		})
	} else {
		// Human-readable logging for development
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.SlogLevel(),
		})
	}

	return slog.New(handler)
}
