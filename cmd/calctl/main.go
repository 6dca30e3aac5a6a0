package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joshua-takyi/entcal/internal/config"
	"github.com/joshua-takyi/entcal/internal/connect"
	"github.com/joshua-takyi/entcal/internal/container"
	"github.com/joshua-takyi/entcal/internal/services"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	jsonOutput bool
	showPast   bool
	verbose    bool

	eventService *services.EventService
	cleanup      []func()
)

var rootCmd = &cobra.Command{
	Use:           "calctl <command>",
	Short:         "Command line access to the entertainment calendar",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if eventService != nil {
			return nil
		}
		return connectEventService(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
		cleanup = nil
	},
}

// connectEventService opens Supabase, and Postgres when EVENT_SOURCE asks
// for it. MongoDB is not needed by any command.
func connectEventService(ctx context.Context) error {
	config.LoadEnvFiles()
	cfg, err := config.Read(viper.New())
	if err != nil {
		return err
	}
	if cfg.SupabaseURL == "" || cfg.SupabaseAnonKey == "" {
		return fmt.Errorf("SUPABASE_URL and SUPABASE_ANON_KEY must be set")
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	supaClient, err := connect.InitSupabase(cfg)
	if err != nil {
		return err
	}
	clients := container.Clients{Supabase: supaClient}

	if cfg.EventSource == config.SourcePostgres {
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when EVENT_SOURCE=postgres")
		}
		pool, err := connect.PostgresConnect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		cleanup = append(cleanup, pool.Close)
		clients.Postgres = pool
	}

	publisher, err := connect.Publisher(cfg, logger)
	if err != nil {
		return err
	}
	cleanup = append(cleanup, func() { _ = publisher.Close() })
	clients.Publisher = publisher

	eventService, err = container.NewEventService(cfg, logger, nil, clients)
	return err
}

func viewer() services.Viewer {
	return services.Viewer{ShowPast: showPast}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&showPast, "past", false, "include events that already happened")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")

	rootCmd.AddCommand(icsCmd)
	rootCmd.AddCommand(monthCmd)
	rootCmd.AddCommand(rollingCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(genresCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
