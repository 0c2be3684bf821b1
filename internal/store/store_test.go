package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/repo"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/store"
)

// ---- mock repo -------------------------------------------------------------

// mockRecordRepo is a hand-written test double for repo.RecordRepo.
// It remembers the last saved snapshot and can be told to fail.
type mockRecordRepo struct {
	saved   []domain.TourRecord
	saves   int
	loaded  []domain.TourRecord
	saveErr error
}

func (m *mockRecordRepo) LoadRecords(_ context.Context) ([]domain.TourRecord, error) {
	return m.loaded, nil
}

func (m *mockRecordRepo) SaveRecords(_ context.Context, records []domain.TourRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.saved = append([]domain.TourRecord(nil), records...)
	return nil
}

// compile-time check: mockRecordRepo must satisfy repo.RecordRepo.
var _ repo.RecordRepo = (*mockRecordRepo)(nil)

// ---- helpers ---------------------------------------------------------------

func rec(id, date string, revenue int64) domain.TourRecord {
	return domain.TourRecord{
		ID:        id,
		Date:      date,
		Type:      domain.GionWalk,
		Guide:     "Alvaro",
		Revenue:   revenue,
		Guests:    2,
		Duration:  3,
		CreatedAt: time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC),
	}
}

func ids(records []domain.TourRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func newStore(t *testing.T) (*store.Store, *mockRecordRepo) {
	t.Helper()
	m := &mockRecordRepo{}
	return store.New(m, nil), m
}

// ---- Add -------------------------------------------------------------------

func TestStore_Add_PrependsAndPersists(t *testing.T) {
	s, m := newStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, rec("a", "2025-09-01", 100))
	require.NoError(t, err)
	snap, err := s.Add(ctx, rec("b", "2025-09-02", 200))
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a"}, ids(snap.Records))
	assert.Equal(t, []string{"b", "a"}, ids(m.saved))
	assert.Equal(t, uint64(2), snap.Version)
}

func TestStore_Add_ValidationLeavesStoreUnchanged(t *testing.T) {
	s, m := newStore(t)
	ctx := context.Background()
	_, err := s.Add(ctx, rec("a", "2025-09-01", 100))
	require.NoError(t, err)

	bad := rec("b", "2025-09-02", -5)
	_, err = s.Add(ctx, bad)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "revenue", ve.Field)
	assert.Equal(t, []string{"a"}, ids(s.Records()))
	assert.Equal(t, 1, m.saves)
}

func TestStore_Add_DuplicateID(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	_, err := s.Add(ctx, rec("a", "2025-09-01", 100))
	require.NoError(t, err)

	_, err = s.Add(ctx, rec("a", "2025-09-03", 300))

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Len(t, s.Records(), 1)
}

func TestStore_Add_PersistFailureLeavesStoreUnchanged(t *testing.T) {
	s, m := newStore(t)
	m.saveErr = errors.New("disk full")

	_, err := s.Add(context.Background(), rec("a", "2025-09-01", 100))

	assert.ErrorIs(t, err, m.saveErr)
	assert.Empty(t, s.Records())
	assert.Equal(t, uint64(0), s.Snapshot().Version)
}

// ---- Remove ----------------------------------------------------------------

func TestStore_Remove(t *testing.T) {
	s, m := newStore(t)
	ctx := context.Background()
	_, _ = s.Add(ctx, rec("a", "2025-09-01", 100))
	_, _ = s.Add(ctx, rec("b", "2025-09-02", 200))

	snap, err := s.Remove(ctx, "a")

	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(snap.Records))
	assert.Equal(t, []string{"b"}, ids(m.saved))
}

func TestStore_Remove_MissingIsNoop(t *testing.T) {
	s, m := newStore(t)
	ctx := context.Background()
	_, _ = s.Add(ctx, rec("a", "2025-09-01", 100))

	snap, err := s.Remove(ctx, "nope")
	require.NoError(t, err)
	snap2, err := s.Remove(ctx, "nope")
	require.NoError(t, err)

	assert.Equal(t, snap, snap2)
	assert.Equal(t, 1, m.saves, "a no-op remove must not write")
}

// ---- ReplaceAll ------------------------------------------------------------

func TestStore_ReplaceAll_DropsInvalidAndDuplicates(t *testing.T) {
	s, m := newStore(t)
	incoming := []domain.TourRecord{
		rec("a", "2025-09-01", 100),
		rec("bad-date", "someday", 100),
		rec("bad-rev", "2025-09-02", -1),
		rec("a", "2025-09-09", 999),
		rec("b", "2025-09-03", 300),
	}

	snap, dropped, err := s.ReplaceAll(context.Background(), incoming)

	require.NoError(t, err)
	assert.Equal(t, 3, dropped)
	assert.Equal(t, []string{"a", "b"}, ids(snap.Records))
	assert.Equal(t, int64(100), snap.Records[0].Revenue, "first occurrence of a duplicate id wins")
	assert.Equal(t, []string{"a", "b"}, ids(m.saved))
}

// ---- Reconcile -------------------------------------------------------------

func TestStore_Reconcile_TombstonesBlockResurrection(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	_, _ = s.Add(ctx, rec("a", "2025-09-01", 100))
	_, _ = s.Add(ctx, rec("b", "2025-09-02", 200))
	_, err := s.Remove(ctx, "b")
	require.NoError(t, err)
	pushed := s.Snapshot()

	// The remote still has a stale b.
	remote := []domain.TourRecord{rec("a", "2025-09-01", 100), rec("b", "2025-09-02", 200)}
	union := func(local, remote []domain.TourRecord) []domain.TourRecord {
		return append(append([]domain.TourRecord{}, remote...), local...)
	}

	snap, _, err := s.Reconcile(ctx, remote, pushed.Version, union)

	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(snap.Records))
}

func TestStore_Reconcile_KeepsRecordsAddedInFlight(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	_, _ = s.Add(ctx, rec("a", "2025-09-01", 100))
	pushed := s.Snapshot()

	// Added after the push snapshot was taken.
	_, _ = s.Add(ctx, rec("c", "2025-09-05", 500))

	localWins := func(local, remote []domain.TourRecord) []domain.TourRecord {
		return append(append([]domain.TourRecord{}, local...), remote...)
	}
	snap, _, err := s.Reconcile(ctx, []domain.TourRecord{rec("a", "2025-09-01", 100)}, pushed.Version, localWins)

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"c", "a"}, ids(snap.Records))
}

func TestStore_Load(t *testing.T) {
	m := &mockRecordRepo{loaded: []domain.TourRecord{rec("x", "2025-09-01", 1), rec("legacy", "??", 1)}}
	s := store.New(m, nil)

	require.NoError(t, s.Load(context.Background()))

	assert.Equal(t, []string{"x", "legacy"}, ids(s.Records()), "Load keeps raw persisted records")
}

func TestStore_ChangedSince(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	_, _ = s.Add(ctx, rec("a", "2025-09-01", 100))
	pushed := s.Snapshot()
	assert.False(t, s.ChangedSince(pushed.Version))

	// A merge is not a local change.
	snap, _, err := s.Reconcile(ctx, nil, pushed.Version, func(local, _ []domain.TourRecord) []domain.TourRecord { return local })
	require.NoError(t, err)
	assert.Greater(t, snap.Version, pushed.Version)
	assert.False(t, s.ChangedSince(pushed.Version))

	_, err = s.Remove(ctx, "a")
	require.NoError(t, err)
	assert.True(t, s.ChangedSince(pushed.Version))
	assert.False(t, s.ChangedSince(s.Snapshot().Version))
}
