package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/prefstore/internal/config"
	"github.com/jmylchreest/prefstore/internal/database"
	"github.com/jmylchreest/prefstore/internal/database/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database backend schema",
	Long: `Inspect and change the schema used by the database storage backend.

The server applies pending migrations on startup; these commands exist for
upgrades that need to be run ahead of time or rolled back.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: withMigrator(func(cmd *cobra.Command, m *migrations.Migrator) error {
		if err := m.Up(cmd.Context()); err != nil {
			return err
		}
		return printMigrations(cmd, m)
	}),
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert the most recent migration",
	RunE: withMigrator(func(cmd *cobra.Command, m *migrations.Migrator) error {
		v, err := m.Down(cmd.Context())
		if err != nil {
			return err
		}
		if v == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "nothing to revert")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "reverted %s\n", v)
		return nil
	}),
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List migrations and whether they are applied",
	RunE: withMigrator(func(cmd *cobra.Command, m *migrations.Migrator) error {
		return printMigrations(cmd, m)
	}),
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}

// withMigrator opens the configured database for the duration of fn. It
// refuses to run against any other backend.
func withMigrator(fn func(*cobra.Command, *migrations.Migrator) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Storage.Backend != config.BackendDatabase {
			return fmt.Errorf("storage backend is %q; migrations apply to %q only", cfg.Storage.Backend, config.BackendDatabase)
		}

		db, err := database.New(cfg.Database, slog.Default())
		if err != nil {
			return err
		}
		defer db.Close()

		if cmd.Context() == nil {
			cmd.SetContext(context.Background())
		}
		return fn(cmd, db.SchemaMigrator())
	}
}

func printMigrations(cmd *cobra.Command, m *migrations.Migrator) error {
	statuses, err := m.Status(cmd.Context())
	if err != nil {
		return err
	}
	return writeMigrations(cmd.OutOrStdout(), statuses)
}

func writeMigrations(w io.Writer, statuses []migrations.MigrationStatus) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tAPPLIED\tDESCRIPTION")
	for _, s := range statuses {
		applied := "pending"
		if s.Applied() {
			applied = s.AppliedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Version, applied, s.Description)
	}
	return tw.Flush()
}
