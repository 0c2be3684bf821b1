package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/repo"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/syncer"
)

// SyncService manages the sync settings and runs on-demand syncs.
type SyncService struct {
	settings repo.SettingsRepo
	sync     Syncer
	log      *slog.Logger
}

// NewSyncService constructs a SyncService.
func NewSyncService(settings repo.SettingsRepo, sync Syncer, log *slog.Logger) *SyncService {
	if log == nil {
		log = slog.Default()
	}
	return &SyncService{settings: settings, sync: sync, log: log}
}

// Settings returns the persisted settings.
func (s *SyncService) Settings(ctx context.Context) (domain.Settings, error) {
	settings, err := s.settings.LoadSettings(ctx)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("service.SyncService.Settings: %w", err)
	}
	return settings, nil
}

// UpdateSettings stores the endpoint URL and the auto-sync flag. An empty
// URL disables sync. The admin flag and last sync time are kept.
func (s *SyncService) UpdateSettings(ctx context.Context, syncURL string, autoSync bool) (domain.Settings, error) {
	syncURL = strings.TrimSpace(syncURL)
	if syncURL != "" {
		if _, err := syncer.ParseEndpointURL(syncURL); err != nil {
			return domain.Settings{}, &domain.ValidationError{Field: "sync_url", Reason: "must be an absolute http or https URL"}
		}
	}

	if err := s.settings.SaveSyncEndpoint(ctx, syncURL, autoSync); err != nil {
		return domain.Settings{}, fmt.Errorf("service.SyncService.UpdateSettings: %w", err)
	}
	settings, err := s.settings.LoadSettings(ctx)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("service.SyncService.UpdateSettings: %w", err)
	}
	return settings, nil
}

// Sync runs one push-then-pull round and returns the merged records.
func (s *SyncService) Sync(ctx context.Context) (syncer.Result, error) {
	res, err := s.sync.Sync(ctx)
	if err != nil {
		return syncer.Result{}, fmt.Errorf("service.SyncService.Sync: %w", err)
	}
	return res, nil
}

// Seed saves the configured endpoint when the device has none yet and
// returns the resulting settings. It does not start a sync.
func (s *SyncService) Seed(ctx context.Context, configURL string, configAuto bool) (domain.Settings, error) {
	settings, err := s.settings.LoadSettings(ctx)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("service.SyncService.Seed: %w", err)
	}
	if settings.SyncURL != "" || configURL == "" {
		return settings, nil
	}
	settings.SyncURL = configURL
	settings.AutoSync = settings.AutoSync || configAuto
	if err := s.settings.SaveSyncEndpoint(ctx, settings.SyncURL, settings.AutoSync); err != nil {
		return domain.Settings{}, fmt.Errorf("service.SyncService.Seed: %w", err)
	}
	s.log.Info("sync endpoint seeded from configuration")
	return settings, nil
}

// Start seeds the settings like Seed, then starts the startup sync if an
// endpoint is configured.
func (s *SyncService) Start(ctx context.Context, configURL string, configAuto bool) error {
	settings, err := s.Seed(ctx, configURL, configAuto)
	if err != nil {
		return err
	}
	if settings.SyncURL != "" {
		s.sync.SyncInBackground("startup")
	}
	return nil
}
