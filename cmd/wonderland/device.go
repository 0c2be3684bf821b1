package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/config"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/insight"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/metrics"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/repo"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/service"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/store"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/syncer"
)

// device is the wired device-side object graph shared by serve, stats,
// export and sync.
type device struct {
	db         *badger.DB
	store      *store.Store
	settings   repo.SettingsRepo
	reconciler *syncer.Reconciler

	admin   *service.AdminService
	records *service.RecordService
	reports *service.ReportService
	exports *service.ExportService
	sync    *service.SyncService
	insight *service.InsightService
}

// openDevice opens the badger database in the configured data directory,
// loads the persisted records and builds the services.
func openDevice(ctx context.Context, cfg config.Config, log *slog.Logger) (*device, error) {
	db, err := repo.OpenBadger(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}

	st := store.New(repo.NewBadgerRecordRepo(db), log)
	if err := st.Load(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load records: %w", err)
	}
	metrics.Records.Set(float64(len(st.Records())))
	settings := repo.NewBadgerSettingsRepo(db)

	reconciler := syncer.NewReconciler(st, settings,
		syncer.HTTPEndpointFactory(syncer.EndpointOptions{
			Timeout:  cfg.Sync.Timeout,
			Location: cfg.Sync.Location(),
			Logger:   log,
		}),
		syncer.Options{Logger: log},
	)

	analyzer, err := insight.New(ctx, insight.Config{
		APIKey:  cfg.Insight.APIKey,
		Model:   cfg.Insight.Model,
		Timeout: cfg.Insight.Timeout,
	}, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if !analyzer.Configured() {
		log.Info("insight disabled, GEMINI_API_KEY is not set")
	}

	admin := service.NewAdminService(settings, cfg.Admin.Password, cfg.Admin.DeletePIN)
	return &device{
		db:         db,
		store:      st,
		settings:   settings,
		reconciler: reconciler,
		admin:      admin,
		records:    service.NewRecordService(st, settings, reconciler, admin, log, time.Now),
		reports:    service.NewReportService(st),
		exports:    service.NewExportService(st, time.Now),
		sync:       service.NewSyncService(settings, reconciler, log),
		insight:    service.NewInsightService(st, analyzer, log),
	}, nil
}

// Close waits for background syncs, then closes the database.
func (d *device) Close() error {
	d.reconciler.Wait()
	return d.db.Close()
}
