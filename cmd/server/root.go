package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hongminglow/santuario-be/internal/logging"
)

// envFile is the optional dotenv file loaded before any subcommand runs.
var envFile string

// NewRootCmd creates the root command for the santuario CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "santuario",
		Short:        "El Santuario backend",
		Long:         `El Santuario serves the creature sanctuary pages and JSON API backed by PostgreSQL.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadLocalEnv(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load if present")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

func loadLocalEnv(cmd *cobra.Command) error {
	if envFile == "" {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cmd.PrintErrln("no .env file found; relying on existing environment")
			return nil
		}
		return err
	}
	return nil
}

func newLogger(level, format string) (zerolog.Logger, error) {
	return logging.New(level, format, os.Stdout)
}
