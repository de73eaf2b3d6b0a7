package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Philos250/TransactiTrack/internal/storage"
)

func (a *app) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

This command ensures the ledger database has every table, bucket and index
the application needs.`,
		RunE: a.runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func (a *app) runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")
	out := cmd.OutOrStdout()
	db := a.cfg.Database

	slog.Info("Starting database migration",
		"backend", db.Backend,
		"database", db.Path,
		"status_only", status)

	store, err := a.openStorage()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()

	sqlite, versioned := store.(*storage.SQLiteStorage)
	if status {
		if !versioned {
			writef(out, "%s database at %s (buckets are created on migrate)\n", db.Backend, db.Path)
			return nil
		}
		current, err := sqlite.SchemaVersion(ctx)
		if err != nil {
			return err
		}
		writef(out, "Database: %s\nCurrent version: %d\nLatest version: %d\n", sqlite.Path(), current, storage.ExpectedSchemaVersion)
		return nil
	}

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if versioned {
		current, err := sqlite.SchemaVersion(ctx)
		if err != nil {
			return err
		}
		writef(out, "Database migrated to version %d: %s\n", current, db.Path)
		return nil
	}

	writef(out, "Database migrated: %s\n", db.Path)
	return nil
}
