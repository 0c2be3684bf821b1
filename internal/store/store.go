// Package store holds the authoritative, ordered collection of tour records
// for the device. Every successful mutation is written through to the
// injected repo.RecordRepo before it becomes visible.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/repo"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/validation"
)

// Snapshot is a point-in-time copy of the store.
type Snapshot struct {
	Records []domain.TourRecord
	// Version increases with every successful mutation.
	Version uint64
}

// Store is the RecordStore. Methods are safe for concurrent use; each call
// is atomic with respect to the others.
type Store struct {
	repo repo.RecordRepo
	log  *slog.Logger

	mu      sync.Mutex
	records []domain.TourRecord
	version uint64
	// localVersion is the version of the last Add, Remove or ReplaceAll.
	// Sync merges do not move it.
	localVersion uint64
	// tombstones maps ids removed locally to the version of their removal.
	// The sync path uses them so a stale remote copy cannot resurrect a record.
	tombstones map[string]uint64
}

// New constructs an empty Store. Call Load to read the persisted snapshot.
func New(r repo.RecordRepo, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{repo: r, log: log, records: []domain.TourRecord{}, tombstones: map[string]uint64{}}
}

// Load reads the persisted snapshot once at startup. Persisted records are
// kept as they are, including ones whose dates no longer parse; aggregation
// skips those.
func (s *Store) Load(ctx context.Context) error {
	records, err := s.repo.LoadRecords(ctx)
	if err != nil {
		return fmt.Errorf("store.Store.Load: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	return nil
}

// Snapshot returns a copy of the current records, newest first.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Records: slices.Clone(s.records), Version: s.version}
}

// Records returns a copy of the current records.
func (s *Store) Records() []domain.TourRecord {
	return s.Snapshot().Records
}

// ChangedSince reports whether a local mutation committed after version v.
// A sync round that pushed the snapshot at v has not sent those changes.
func (s *Store) ChangedSince(v uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.localVersion > v
}

// Add validates record and prepends it. On a validation failure it returns
// a *domain.ValidationError and the collection is unchanged.
func (s *Store) Add(ctx context.Context, record domain.TourRecord) (Snapshot, error) {
	if err := validation.Record(record); err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.ContainsFunc(s.records, func(r domain.TourRecord) bool { return r.ID == record.ID }) {
		return Snapshot{}, &domain.ValidationError{Field: "id", Reason: "already exists"}
	}

	next := make([]domain.TourRecord, 0, len(s.records)+1)
	next = append(next, record)
	next = append(next, s.records...)
	if err := s.commit(ctx, next); err != nil {
		return Snapshot{}, fmt.Errorf("store.Store.Add: %w", err)
	}
	s.localVersion = s.version
	delete(s.tombstones, record.ID)
	return s.snapshotLocked(), nil
}

// Remove deletes the record with id. Removing an absent id is a no-op and
// returns the unchanged snapshot.
func (s *Store) Remove(ctx context.Context, id string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.records, func(r domain.TourRecord) bool { return r.ID == id })
	if idx < 0 {
		return s.snapshotLocked(), nil
	}

	next := slices.Delete(slices.Clone(s.records), idx, idx+1)
	if err := s.commit(ctx, next); err != nil {
		return Snapshot{}, fmt.Errorf("store.Store.Remove: %w", err)
	}
	s.localVersion = s.version
	s.tombstones[id] = s.version
	return s.snapshotLocked(), nil
}

// ReplaceAll swaps the whole collection. Invalid records and repeated ids
// are dropped, never fatal. It returns the new snapshot and how many
// records were dropped.
func (s *Store) ReplaceAll(ctx context.Context, records []domain.TourRecord) (Snapshot, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, dropped := s.sanitize(records)
	if err := s.commit(ctx, next); err != nil {
		return Snapshot{}, 0, fmt.Errorf("store.Store.ReplaceAll: %w", err)
	}
	s.localVersion = s.version
	return s.snapshotLocked(), dropped, nil
}

// Reconcile applies a sync result under the store lock. merge receives the
// current records (not the pushed snapshot, so records added while a sync
// was in flight survive) and the remote records minus locally deleted ids.
// Tombstones up to pushedVersion are cleared afterwards.
func (s *Store) Reconcile(
	ctx context.Context,
	remote []domain.TourRecord,
	pushedVersion uint64,
	merge func(local, remote []domain.TourRecord) []domain.TourRecord,
) (Snapshot, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := make([]domain.TourRecord, 0, len(remote))
	for _, r := range remote {
		if _, deleted := s.tombstones[r.ID]; deleted {
			continue
		}
		live = append(live, r)
	}

	next, dropped := s.sanitize(merge(s.records, live))
	if err := s.commit(ctx, next); err != nil {
		return Snapshot{}, 0, fmt.Errorf("store.Store.Reconcile: %w", err)
	}
	for id, v := range s.tombstones {
		if v <= pushedVersion {
			delete(s.tombstones, id)
		}
	}
	return s.snapshotLocked(), dropped, nil
}

// sanitize keeps valid records with first-seen ids, preserving order.
func (s *Store) sanitize(records []domain.TourRecord) ([]domain.TourRecord, int) {
	out, dropped := validation.Sanitize(records)
	if dropped > 0 {
		s.log.Debug("dropped invalid or duplicate records", "count", dropped)
	}
	return out, dropped
}

// commit persists next and only then makes it current. Callers hold mu.
func (s *Store) commit(ctx context.Context, next []domain.TourRecord) error {
	if err := s.repo.SaveRecords(ctx, next); err != nil {
		return err
	}
	s.records = next
	s.version++
	return nil
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{Records: slices.Clone(s.records), Version: s.version}
}
