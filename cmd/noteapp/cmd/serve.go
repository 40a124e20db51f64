package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/noteapp/client/internal/api"
	"github.com/noteapp/client/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local gateway",
	Long: `Start the local gateway on PORT.

Sessions are hydrated from storage in the background; screens requested
before that finishes answer with the pending treatment (204, or a loading
placeholder on anonymous-only screens).

Examples:
  # Serve on the default port with the local SQLite store
  noteapp serve

  # Keep state in Redis instead
  STORAGE_DRIVER=redis REDIS_ADDR=localhost:6379 noteapp serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Get()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn().Err(err).Msg("close storage")
		}
	}()

	a.HydrateAsync(ctx)

	e := api.NewRouter(a, log, api.Options{})
	addr := ":" + cfg.Port

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", addr).
			Str("storage", cfg.Storage.Driver).
			Str("backend", cfg.API.BaseURL).
			Msg("gateway listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
