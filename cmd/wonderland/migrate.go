package main

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/migrations"
)

func newMigrateCommand(a *app) *cobra.Command {
	var status bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the hub database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.RequireDatabase(); err != nil {
				return err
			}
			ctx := cmd.Context()

			db, err := sql.Open("pgx", a.cfg.Hub.DatabaseURL)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
			if err != nil {
				return fmt.Errorf("create goose provider: %w", err)
			}

			if status {
				states, err := provider.Status(ctx)
				if err != nil {
					return fmt.Errorf("migration status: %w", err)
				}
				for _, st := range states {
					fmt.Fprintf(cmd.OutOrStdout(), "%-6d %-8s %s\n", st.Source.Version, st.State, st.Source.Path)
				}
				return nil
			}

			results, err := provider.Up(ctx)
			if err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			for _, res := range results {
				a.log.Info("migration applied", "version", res.Source.Version, "duration", res.Duration)
			}
			if len(results) == 0 {
				a.log.Info("database schema is up to date")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "print the migration status instead of applying")
	return cmd
}
