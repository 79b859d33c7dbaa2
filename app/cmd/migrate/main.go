package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"planora/app/config"
	"planora/app/utils/database"
	"planora/app/utils/logger"
	"planora/app/utils/migration"
)

const migrateTimeout = 5 * time.Minute

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Could not load .env file", "error", err)
	}

	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply or roll back the Planora database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")

	// withMigrator opens a connection for one command and closes it afterwards
	withMigrator := func(fn func(ctx context.Context, m *migration.Migrator, log *slog.Logger) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				slog.Error("Failed to load configuration", "error", err)
				return err
			}

			level := cfg.LogLevel
			if verbose {
				level = "debug"
			}
			appLogger, err := logger.New(level)
			if err != nil {
				slog.Error("Failed to initialize logger", "error", err)
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), migrateTimeout)
			defer cancel()

			dbConn, err := database.NewConnection(ctx, database.ConfigFrom(cfg), appLogger)
			if err != nil {
				appLogger.Error("Failed to create database connection", "error", err)
				return err
			}
			defer dbConn.Close()

			if err := fn(ctx, migration.NewMigrator(dbConn.DB(), appLogger, migration.Schema), appLogger); err != nil {
				appLogger.Error("Migration failed", "command", cmd.Name(), "error", err)
				return err
			}
			return nil
		}
	}

	root.AddCommand(
		newUpCommand(withMigrator),
		newDownCommand(withMigrator),
		newStatusCommand(withMigrator),
	)
	return root
}

type migratorRunner func(fn func(ctx context.Context, m *migration.Migrator, log *slog.Logger) error) func(*cobra.Command, []string) error

func newUpCommand(run migratorRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, m *migration.Migrator, log *slog.Logger) error {
			if err := m.Up(ctx); err != nil {
				return err
			}
			log.Info("All migrations applied successfully")
			return nil
		}),
	}
}

func newDownCommand(run migratorRunner) *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		Args:  cobra.NoArgs,
		PreRunE: func(*cobra.Command, []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1, got %d", steps)
			}
			return nil
		},
		RunE: run(func(ctx context.Context, m *migration.Migrator, log *slog.Logger) error {
			for i := 0; i < steps; i++ {
				if err := m.Down(ctx); err != nil {
					return fmt.Errorf("step %d: %w", i+1, err)
				}
			}
			log.Info("Migrations rolled back successfully", "steps", steps)
			return nil
		}),
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")
	return cmd
}

func newStatusCommand(run migratorRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, m *migration.Migrator, log *slog.Logger) error {
			statuses, err := m.Status(ctx)
			if err != nil {
				return err
			}
			for _, st := range statuses {
				if !st.Applied {
					log.Info("Migration pending", "version", st.Version, "name", st.Name)
					continue
				}
				log.Info("Migration applied",
					"version", st.Version,
					"name", st.Name,
					"applied_at", st.AppliedAt.Format(time.RFC3339),
					"drifted", st.Drifted)
			}
			return nil
		}),
	}
}
