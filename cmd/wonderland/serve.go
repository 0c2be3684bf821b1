package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/handler"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/middleware"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the device HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			dev, err := openDevice(ctx, a.cfg, a.log)
			if err != nil {
				return err
			}
			defer func() {
				if err := dev.Close(); err != nil {
					a.log.Error("close device database", "error", err)
				}
			}()

			if err := dev.sync.Start(ctx, a.cfg.Sync.URL, a.cfg.Sync.Auto); err != nil {
				a.log.Warn("startup sync not started", "error", err)
			}

			srv := handler.NewServer(handler.Deps{
				Records:              dev.records,
				Admin:                dev.admin,
				Reports:              dev.reports,
				Exports:              dev.exports,
				Sync:                 dev.sync,
				Insight:              dev.insight,
				Logger:               a.log,
				InsightRatePerMinute: a.cfg.Insight.RatePerMinute,
			})

			r := newRouter(a.log)
			r.Use(middleware.NewCORSHandler(a.cfg.Server.CORSOrigins))
			r.Use(middleware.NewMaxBodySizeHandler(a.cfg.BodyLimit()))
			r.Mount("/", srv.Routes())

			// Insight and sync calls can outlast the default write timeout.
			writeTimeout := max(a.cfg.Insight.Timeout, 45*time.Second) + 5*time.Second
			return listenAndServe(ctx, a.log, ":"+a.cfg.Server.Port, r, writeTimeout)
		},
	}
}
