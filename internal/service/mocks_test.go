package service_test

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/repo"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/service"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/syncer"
)

// ---- mock repos ------------------------------------------------------------

// mockRecordRepo is a hand-written test double for repo.RecordRepo.
type mockRecordRepo struct {
	records []domain.TourRecord
}

func (m *mockRecordRepo) LoadRecords(_ context.Context) ([]domain.TourRecord, error) {
	return slices.Clone(m.records), nil
}

func (m *mockRecordRepo) SaveRecords(_ context.Context, records []domain.TourRecord) error {
	m.records = slices.Clone(records)
	return nil
}

// mockSettingsRepo keeps settings in memory. Set loadErr to make reads fail.
type mockSettingsRepo struct {
	settings domain.Settings
	loadErr  error
	saveErr  error
}

func (m *mockSettingsRepo) LoadSettings(_ context.Context) (domain.Settings, error) {
	if m.loadErr != nil {
		return domain.Settings{}, m.loadErr
	}
	return m.settings, nil
}

func (m *mockSettingsRepo) SaveSyncEndpoint(_ context.Context, url string, auto bool) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.settings.SyncURL, m.settings.AutoSync = url, auto
	return nil
}

func (m *mockSettingsRepo) SaveLastSync(_ context.Context, at time.Time) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.settings.LastSyncAt = &at
	return nil
}

func (m *mockSettingsRepo) SaveAdminAuthenticated(_ context.Context, ok bool) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.settings.AdminAuthenticated = ok
	return nil
}

var (
	_ repo.RecordRepo   = (*mockRecordRepo)(nil)
	_ repo.SettingsRepo = (*mockSettingsRepo)(nil)
)

// ---- mock syncer -----------------------------------------------------------

// mockSyncer records background triggers. sync may be nil when a test does
// not call Sync.
type mockSyncer struct {
	mu      sync.Mutex
	reasons []string
	sync    func(ctx context.Context) (syncer.Result, error)
}

func (m *mockSyncer) Sync(ctx context.Context) (syncer.Result, error) {
	return m.sync(ctx)
}

func (m *mockSyncer) SyncInBackground(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reasons = append(m.reasons, reason)
}

func (m *mockSyncer) triggered() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.reasons)
}

var _ service.Syncer = (*mockSyncer)(nil)

// ---- mock analyzer ---------------------------------------------------------

type mockAnalyzer struct {
	analyze func(ctx context.Context, records []domain.TourRecord, lang domain.Language) (string, error)
}

func (m *mockAnalyzer) Analyze(ctx context.Context, records []domain.TourRecord, lang domain.Language) (string, error) {
	return m.analyze(ctx, records, lang)
}

var _ service.Analyzer = (*mockAnalyzer)(nil)

// ---- mock reader -----------------------------------------------------------

type staticRecords []domain.TourRecord

func (s staticRecords) Records() []domain.TourRecord { return slices.Clone([]domain.TourRecord(s)) }

// ---- fixtures --------------------------------------------------------------

var fixedNow = time.Date(2025, 10, 14, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func rec(id, date string, typ domain.TourType, revenue int64, guests int) domain.TourRecord {
	return domain.TourRecord{
		ID:        id,
		Date:      date,
		Type:      typ,
		Guide:     "Alvaro",
		Revenue:   revenue,
		Guests:    guests,
		Duration:  2.5,
		CreatedAt: fixedNow,
	}
}
