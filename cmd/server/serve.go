package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hongminglow/santuario-be/internal/config"
	"github.com/hongminglow/santuario-be/internal/server"
	"github.com/hongminglow/santuario-be/internal/storage/postgres"
)

const shutdownTimeout = 15 * time.Second

type serveOptions struct {
	skipMigrations bool
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long: `Run the HTTP server. Pending migrations are applied first unless
--skip-migrations is set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.skipMigrations, "skip-migrations", false, "do not apply pending migrations on start")
	return cmd
}

func runServe(parent context.Context, opts *serveOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var migrate func(context.Context) error
	if !opts.skipMigrations {
		migrate = func(ctx context.Context) error {
			return migrateUp(ctx, cfg.DatabaseURL, logger)
		}
	}
	store, err := bootDatabase(ctx, func(ctx context.Context) (*postgres.Store, error) {
		return postgres.New(ctx, cfg.DatabaseURL, int(cfg.DBConnectRetries))
	}, migrate)
	if err != nil {
		logger.Error().Err(err).Msg("init database")
		return err
	}
	defer store.Close()

	srv, err := server.New(cfg, store, store, logger)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Msg("santuario backend listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server error")
			return err
		}
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
		return err
	}
	return nil
}

// bootDatabase connects first, waiting out a database that is still starting, and
// only then applies migrations. migrate may be nil.
func bootDatabase(
	ctx context.Context,
	connect func(context.Context) (*postgres.Store, error),
	migrate func(context.Context) error,
) (*postgres.Store, error) {
	store, err := connect(ctx)
	if err != nil {
		return nil, err
	}
	if migrate == nil {
		return store, nil
	}
	if err := migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
