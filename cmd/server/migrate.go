package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hongminglow/santuario-be/internal/config"
	"github.com/hongminglow/santuario-be/internal/storage/postgres"
)

// NewMigrateCmd creates the migrate command with its subcommands.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long:  `Apply, roll back, or inspect the embedded schema migrations.`,
	}
	cmd.AddCommand(newMigrateUpCmd())
	cmd.AddCommand(newMigrateDownCmd())
	cmd.AddCommand(newMigrateStatusCmd())
	return cmd
}

func newMigrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *postgres.Migrator) error {
				if err := m.Up(ctx); err != nil {
					return err
				}
				return printVersion(ctx, cmd, m)
			})
		},
	}
}

func newMigrateDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *postgres.Migrator) error {
				if err := m.Down(ctx); err != nil {
					return err
				}
				return printVersion(ctx, cmd, m)
			})
		},
	}
}

func newMigrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *postgres.Migrator) error {
				return m.Status(ctx)
			})
		},
	}
}

func withMigrator(cmd *cobra.Command, fn func(context.Context, *postgres.Migrator) error) error {
	cfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	m, err := postgres.NewMigrator(cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(cmd.Context(), m)
}

func printVersion(ctx context.Context, cmd *cobra.Command, m *postgres.Migrator) error {
	v, err := m.Version(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("schema version: %d\n", v)
	return nil
}

func migrateUp(ctx context.Context, databaseURL string, logger zerolog.Logger) error {
	m, err := postgres.NewMigrator(databaseURL, logger)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(ctx); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}
