package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/metrics"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/repo"
)

// RecordService implements record entry, listing and deletion.
type RecordService struct {
	store    RecordStore
	settings repo.SettingsRepo
	sync     Syncer
	admin    *AdminService
	log      *slog.Logger
	now      func() time.Time
}

// NewRecordService constructs a RecordService. now may be nil.
func NewRecordService(st RecordStore, settings repo.SettingsRepo, sync Syncer, admin *AdminService, log *slog.Logger, now func() time.Time) *RecordService {
	if log == nil {
		log = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &RecordService{store: st, settings: settings, sync: sync, admin: admin, log: log, now: now}
}

// Create assigns an id and creation time, validates and stores record.
// With auto-sync on and an endpoint configured, a sync starts in the
// background; its outcome does not affect the result.
func (s *RecordService) Create(ctx context.Context, record domain.TourRecord) (domain.TourRecord, error) {
	if record.ID == "" {
		record.ID = domain.NewID()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now().UTC()
	}
	record.Guide = strings.TrimSpace(record.Guide)
	if d, err := domain.NormalizeDate(record.Date); err == nil {
		record.Date = d
	}

	snap, err := s.store.Add(ctx, record)
	if err != nil {
		return domain.TourRecord{}, fmt.Errorf("service.RecordService.Create: %w", err)
	}
	metrics.Records.Set(float64(len(snap.Records)))

	settings, err := s.settings.LoadSettings(ctx)
	if err != nil {
		s.log.Warn("could not read sync settings after add", "error", err)
		return record, nil
	}
	if settings.AutoSync && settings.SyncURL != "" {
		s.sync.SyncInBackground("add")
	}
	return record, nil
}

// List returns one page of records, newest first, and the total count.
func (s *RecordService) List(_ context.Context, page domain.PaginationParams) ([]domain.TourRecord, int) {
	records := s.store.Records()
	slices.SortStableFunc(records, domain.NewestFirst)
	start, end := page.Window(len(records))
	return records[start:end], len(records)
}

// Delete removes the record with id after checking pin. Deleting an id
// that does not exist succeeds. When an endpoint is configured a sync
// starts in the background so the deletion reaches the remote.
func (s *RecordService) Delete(ctx context.Context, id, pin string) error {
	if err := s.admin.CheckDeletePIN(pin); err != nil {
		return fmt.Errorf("service.RecordService.Delete: %w", err)
	}

	snap, err := s.store.Remove(ctx, id)
	if err != nil {
		return fmt.Errorf("service.RecordService.Delete: %w", err)
	}
	metrics.Records.Set(float64(len(snap.Records)))

	settings, err := s.settings.LoadSettings(ctx)
	if err != nil {
		s.log.Warn("could not read sync settings after delete", "error", err)
		return nil
	}
	if settings.SyncURL != "" {
		s.sync.SyncInBackground("delete")
	}
	return nil
}
