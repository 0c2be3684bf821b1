package syncer_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/store"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/syncer"
)

type fixture struct {
	store     *store.Store
	settings  *memSettingsRepo
	ep        *fakeEndpoint
	factories int
	rec       *syncer.Reconciler
}

func newFixture(t *testing.T, local ...domain.TourRecord) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		store:    store.New(&memRecordRepo{records: local}, nil),
		settings: &memSettingsRepo{s: domain.Settings{SyncURL: "https://script.example.com/exec"}},
		ep:       &fakeEndpoint{},
	}
	require.NoError(t, f.store.Load(ctx))

	factory := func(string) (syncer.Endpoint, error) {
		f.factories++
		return f.ep, nil
	}
	f.rec = syncer.NewReconciler(f.store, f.settings, factory, syncer.Options{
		Now: func() time.Time { return baseTime.Add(time.Hour) },
	})
	return f
}

// ---- PushThenPull ----------------------------------------------------------

func TestPushThenPull_MergesRemote(t *testing.T) {
	f := newFixture(t, rec("a", "2025-09-01", 100))
	f.ep.keepRemote = true
	f.ep.remote = []domain.TourRecord{rec("b", "2025-09-05", 200)}

	res, err := f.rec.PushThenPull(context.Background(), f.ep)
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a"}, ids(res.Records))
	assert.Equal(t, []string{"b", "a"}, ids(f.store.Records()))
	assert.Equal(t, 1, f.ep.pushes)
	assert.False(t, res.Stale)
}

func TestPushThenPull_DropsMalformedRemote(t *testing.T) {
	f := newFixture(t, rec("a", "2025-09-01", 100))
	bad := rec("bad", "not-a-date", 100)
	f.ep.keepRemote = true
	f.ep.remote = []domain.TourRecord{bad, rec("b", "2025-09-05", 200)}

	res, err := f.rec.PushThenPull(context.Background(), f.ep)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, []string{"b", "a"}, ids(res.Records))
}

func TestPushThenPull_FetchFailureLeavesStoreUnchanged(t *testing.T) {
	f := newFixture(t, rec("a", "2025-09-01", 100))
	f.ep.fetchErr = errors.New("network down")
	before := f.store.Snapshot()

	_, err := f.rec.PushThenPull(context.Background(), f.ep)

	var failure *domain.SyncFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "fetch", failure.Op)
	assert.ErrorIs(t, err, domain.ErrSync)
	assert.Equal(t, before, f.store.Snapshot())

	settings, _ := f.settings.LoadSettings(context.Background())
	assert.Nil(t, settings.LastSyncAt)
}

func TestPushThenPull_PushFailureSkipsFetch(t *testing.T) {
	f := newFixture(t, rec("a", "2025-09-01", 100))
	f.ep.pushErr = errors.New("dns")
	fetched := false
	f.ep.onFetch = func() { fetched = true }

	_, err := f.rec.PushThenPull(context.Background(), f.ep)

	var failure *domain.SyncFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "push", failure.Op)
	assert.False(t, fetched)
}

func TestPushThenPull_DeleteThenSyncIsPermanent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, rec("a", "2025-09-01", 100), rec("b", "2025-09-02", 100))

	_, err := f.rec.PushThenPull(ctx, f.ep)
	require.NoError(t, err)

	_, err = f.store.Remove(ctx, "a")
	require.NoError(t, err)

	for range 2 {
		res, err := f.rec.PushThenPull(ctx, f.ep)
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, ids(res.Records))
	}
}

func TestPushThenPull_DeleteDuringRoundIsNotResurrected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, rec("a", "2025-09-01", 100), rec("b", "2025-09-02", 100))

	// The push carries "a"; it is removed locally before the pull returns.
	f.ep.onFetch = func() {
		_, err := f.store.Remove(ctx, "a")
		require.NoError(t, err)
	}
	res, err := f.rec.PushThenPull(ctx, f.ep)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(res.Records))

	// The next round pushes the collection without "a".
	f.ep.onFetch = nil
	res, err = f.rec.PushThenPull(ctx, f.ep)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(res.Records))
}

func TestPushThenPull_AddDuringRoundSurvives(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, rec("a", "2025-09-01", 100))

	f.ep.onFetch = func() {
		_, err := f.store.Add(ctx, rec("c", "2025-09-03", 100))
		require.NoError(t, err)
	}
	res, err := f.rec.PushThenPull(ctx, f.ep)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a", "c"}, ids(res.Records))
}

func TestPushThenPull_StaleRoundIsDiscarded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, rec("a", "2025-09-01", 100))

	entered := make(chan struct{})
	release := make(chan struct{})
	slow := &fakeEndpoint{
		keepRemote: true,
		remote:     []domain.TourRecord{rec("old", "2025-08-01", 1)},
		onFetch: func() {
			close(entered)
			<-release
		},
	}
	fast := &fakeEndpoint{keepRemote: true, remote: []domain.TourRecord{rec("new", "2025-09-09", 1)}}

	type out struct {
		res syncer.Result
		err error
	}
	done := make(chan out, 1)
	go func() {
		res, err := f.rec.PushThenPull(ctx, slow)
		done <- out{res, err}
	}()

	<-entered
	_, err := f.rec.PushThenPull(ctx, fast)
	require.NoError(t, err)
	close(release)

	first := <-done
	require.NoError(t, first.err)
	assert.True(t, first.res.Stale)
	assert.NotContains(t, ids(f.store.Records()), "old")
	assert.Contains(t, ids(f.store.Records()), "new")
}

// ---- Sync ------------------------------------------------------------------

func TestSync_RecordsLastSyncTime(t *testing.T) {
	f := newFixture(t, rec("a", "2025-09-01", 100))

	res, err := f.rec.Sync(context.Background())
	require.NoError(t, err)

	settings, _ := f.settings.LoadSettings(context.Background())
	require.NotNil(t, settings.LastSyncAt)
	assert.Equal(t, res.At, *settings.LastSyncAt)
}

func TestSync_LastSyncTimeKeepsOtherSettings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, rec("a", "2025-09-01", 100))
	f.ep.onFetch = func() {
		require.NoError(t, f.settings.SaveAdminAuthenticated(ctx, true))
		require.NoError(t, f.settings.SaveSyncEndpoint(ctx, "https://script.example.com/exec", true))
	}

	_, err := f.rec.Sync(ctx)
	require.NoError(t, err)

	settings, _ := f.settings.LoadSettings(ctx)
	assert.True(t, settings.AdminAuthenticated)
	assert.True(t, settings.AutoSync)
	assert.NotNil(t, settings.LastSyncAt)
}

func TestSync_WithoutURL(t *testing.T) {
	f := newFixture(t)
	f.settings.s.SyncURL = ""

	_, err := f.rec.Sync(context.Background())

	assert.ErrorIs(t, err, domain.ErrSync)
	assert.True(t, syncer.IsNotConfigured(err))
	assert.Zero(t, f.ep.pushes)
}

func TestSync_ReusesEndpointUntilURLChanges(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.rec.Sync(ctx)
	require.NoError(t, err)
	_, err = f.rec.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.factories)

	f.settings.s.SyncURL = "https://other.example.com/exec"
	_, err = f.rec.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, f.factories)
}

func TestSync_IgnoresCallerCancellation(t *testing.T) {
	f := newFixture(t, rec("a", "2025-09-01", 100))
	ctx, cancel := context.WithCancel(context.Background())
	f.ep.onFetch = cancel

	_, err := f.rec.Sync(ctx)
	assert.NoError(t, err)
}

func TestSync_DeleteDuringSharedRoundIsPushed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, rec("a", "2025-09-01", 100), rec("b", "2025-09-02", 100))

	// The delete lands after the in-flight round pushed "b"; its own
	// background sync joins that round instead of starting a fresh one.
	var once sync.Once
	f.ep.onFetch = func() {
		once.Do(func() {
			_, err := f.store.Remove(ctx, "b")
			require.NoError(t, err)
			f.rec.SyncInBackground("delete")
		})
	}

	res, err := f.rec.Sync(ctx)
	require.NoError(t, err)
	f.rec.Wait()

	assert.Equal(t, []string{"a"}, ids(res.Records))
	assert.Equal(t, []string{"a"}, ids(f.store.Records()))
	f.ep.mu.Lock()
	defer f.ep.mu.Unlock()
	assert.Equal(t, []string{"a"}, ids(f.ep.remote))
	assert.GreaterOrEqual(t, f.ep.pushes, 2)
}

func TestSyncInBackground_Wait(t *testing.T) {
	f := newFixture(t, rec("a", "2025-09-01", 100))

	f.rec.SyncInBackground("test")
	f.rec.Wait()

	assert.Equal(t, 1, f.ep.pushes)
}
