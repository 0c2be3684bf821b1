package main

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/handler"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/middleware"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/repo"
)

func newHubCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hub",
		Short: "Run the shared sync endpoint",
		Long: `Run the shared sync endpoint devices push to and pull from.
Records are kept in Postgres; run "wonderland migrate" first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.RequireDatabase(); err != nil {
				return err
			}
			ctx := cmd.Context()

			// pgxpool manages a pool of Postgres connections.
			// New() does not open connections immediately; the first query does.
			pool, err := pgxpool.New(ctx, a.cfg.Hub.DatabaseURL)
			if err != nil {
				return fmt.Errorf("create database pool: %w", err)
			}
			defer pool.Close()

			// Verify the DB is reachable before accepting traffic.
			if err := pool.Ping(ctx); err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			a.log.Info("database connection established")

			hub := handler.NewHub(repo.NewSnapshotRepo(pool), a.cfg.Sync.Location(), a.log)

			r := newRouter(a.log)
			// Devices push from the browser, so the hub answers every origin.
			r.Use(middleware.NewCORSHandler([]string{"*"}))
			r.Use(middleware.NewMaxBodySizeHandler(a.cfg.BodyLimit() * 16))
			r.Mount("/", hub.Routes())

			return listenAndServe(ctx, a.log, ":"+a.cfg.Hub.Port, r, 30*time.Second)
		},
	}
}
