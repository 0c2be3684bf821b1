package syncer_test

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/repo"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/syncer"
)

// ---- mock repos ------------------------------------------------------------

type memRecordRepo struct {
	mu      sync.Mutex
	records []domain.TourRecord
}

func (m *memRecordRepo) LoadRecords(_ context.Context) ([]domain.TourRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.records), nil
}

func (m *memRecordRepo) SaveRecords(_ context.Context, records []domain.TourRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = slices.Clone(records)
	return nil
}

type memSettingsRepo struct {
	mu sync.Mutex
	s  domain.Settings
}

func (m *memSettingsRepo) LoadSettings(_ context.Context) (domain.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s, nil
}

func (m *memSettingsRepo) SaveSyncEndpoint(_ context.Context, url string, auto bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s.SyncURL, m.s.AutoSync = url, auto
	return nil
}

func (m *memSettingsRepo) SaveLastSync(_ context.Context, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s.LastSyncAt = &at
	return nil
}

func (m *memSettingsRepo) SaveAdminAuthenticated(_ context.Context, ok bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s.AdminAuthenticated = ok
	return nil
}

var (
	_ repo.RecordRepo   = (*memRecordRepo)(nil)
	_ repo.SettingsRepo = (*memSettingsRepo)(nil)
)

// ---- fake endpoint ---------------------------------------------------------

// fakeEndpoint keeps a remote collection in memory. A push overwrites it,
// like the real script endpoint does.
type fakeEndpoint struct {
	mu       sync.Mutex
	remote   []domain.TourRecord
	pushes   int
	pushErr  error
	fetchErr error
	// onFetch runs before Fetch returns, outside the lock.
	onFetch func()
	// keepRemote stops pushes from overwriting the remote collection.
	keepRemote bool
}

func (f *fakeEndpoint) PushUnverified(_ context.Context, records []domain.TourRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pushErr != nil {
		return f.pushErr
	}
	f.pushes++
	if !f.keepRemote {
		f.remote = slices.Clone(records)
	}
	return nil
}

func (f *fakeEndpoint) Fetch(_ context.Context) ([]domain.TourRecord, int, error) {
	if f.onFetch != nil {
		f.onFetch()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, 0, f.fetchErr
	}
	return slices.Clone(f.remote), 0, nil
}

var _ syncer.Endpoint = (*fakeEndpoint)(nil)

// ---- fixtures --------------------------------------------------------------

var baseTime = time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)

func rec(id, date string, revenue int64) domain.TourRecord {
	return domain.TourRecord{
		ID:        id,
		Date:      date,
		Type:      domain.KyotoFood,
		Guide:     "Momoko",
		Revenue:   revenue,
		Guests:    3,
		Duration:  3.5,
		CreatedAt: baseTime,
	}
}

func ids(records []domain.TourRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
