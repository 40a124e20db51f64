// Package cmd provides the CLI commands of noteapp.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/noteapp/client/internal/app"
	"github.com/noteapp/client/internal/infrastructure/backend"
	"github.com/noteapp/client/internal/infrastructure/config"
	"github.com/noteapp/client/pkg/logger"
)

var (
	logLevel string
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "noteapp",
	Short: "NoteApp client core",
	Long: `noteapp keeps the member and admin sessions of the NoteApp knowledge
sharing platform, gates navigation on them and mirrors post interactions.

Configuration is read from the environment:
  API_BASE_URL      backend base URL (default http://localhost:5000)
  STORAGE_DRIVER    sqlite, redis, mongo or memory (default sqlite)
  SQLITE_PATH       local database file (default noteapp.db)
  PORT              gateway port for "serve" (default 8080)

Commands:
  serve     Start the local gateway
  login     Log in and persist the session
  logout    Clear a persisted session
  status    Show both sessions`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cmd.Context())
		if err != nil {
			return err
		}
		if logLevel != "" {
			loaded.LogLevel = logLevel
		}
		cfg = loaded
		logger.Init(logger.Options{
			Level:   cfg.LogLevel,
			Pretty:  loaded.IsDevelopment() || cmd.Name() != "serve",
			Service: "noteapp",
		})
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (trace, debug, info, warn, error)")
}

// openApp wires storage, the backend client and the services from cfg.
func openApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app.App, error) {
	store, err := app.OpenStore(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	client := backend.NewClient(backend.Config{
		BaseURL:     cfg.API.BaseURL,
		Timeout:     cfg.API.Timeout,
		TokenHeader: cfg.API.TokenHeader,
	}, log.With().Str("component", "backend").Logger())

	return app.New(store, client, log, app.Options{CheckExpiry: cfg.Session.CheckExpiry}), nil
}
