package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/metrics"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/repo"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/store"
)

// EndpointFactory builds the Endpoint for a configured URL.
type EndpointFactory func(rawURL string) (Endpoint, error)

// HTTPEndpointFactory returns a factory producing HTTPEndpoints with opts.
func HTTPEndpointFactory(opts EndpointOptions) EndpointFactory {
	return func(rawURL string) (Endpoint, error) {
		return NewHTTPEndpoint(rawURL, opts)
	}
}

// Result describes a completed sync round.
type Result struct {
	Records []domain.TourRecord
	// Dropped counts remote records discarded as malformed or duplicated.
	Dropped int
	// Stale is set when a newer round finished first and this round's
	// remote snapshot was discarded.
	Stale bool
	At    time.Time
	// Pushed is the store version of the snapshot this round pushed.
	Pushed uint64
}

// maxCatchUpRounds bounds the extra rounds Sync runs for local changes
// that missed the push of a shared round.
const maxCatchUpRounds = 3

// Options configures a Reconciler.
type Options struct {
	// RoundTimeout bounds a whole push-then-pull round.
	RoundTimeout time.Duration
	Logger       *slog.Logger
	Now          func() time.Time
}

// Reconciler runs push-then-pull rounds against the configured endpoint.
// Concurrent Sync calls share one in-flight round.
type Reconciler struct {
	store       *store.Store
	settings    repo.SettingsRepo
	newEndpoint EndpointFactory
	timeout     time.Duration
	log         *slog.Logger
	now         func() time.Time

	group singleflight.Group
	seq   atomic.Uint64
	bg    sync.WaitGroup

	mu       sync.Mutex
	applied  uint64
	endpoint Endpoint
	url      string
}

// NewReconciler wires a Reconciler.
func NewReconciler(s *store.Store, settings repo.SettingsRepo, factory EndpointFactory, opts Options) *Reconciler {
	if opts.RoundTimeout <= 0 {
		opts.RoundTimeout = 45 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Reconciler{
		store:       s,
		settings:    settings,
		newEndpoint: factory,
		timeout:     opts.RoundTimeout,
		log:         opts.Logger,
		now:         opts.Now,
	}
}

// Sync runs a round against the URL stored in settings. A caller arriving
// while a round is in flight waits for that round and shares its result.
// When the store changed locally after that round took its snapshot, Sync
// runs another round so the change reaches the endpoint.
// Rounds are not cancelled when ctx is; they run to completion or timeout.
func (r *Reconciler) Sync(ctx context.Context) (Result, error) {
	res, err := r.round(ctx)
	for i := 0; err == nil && i < maxCatchUpRounds && r.store.ChangedSince(res.Pushed); i++ {
		r.log.Debug("local changes missed the push, syncing again", "pushed", res.Pushed)
		res, err = r.round(ctx)
	}
	return res, err
}

func (r *Reconciler) round(ctx context.Context) (Result, error) {
	v, err, _ := r.group.Do("sync", func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		ep, err := r.resolve(ctx)
		if err != nil {
			metrics.SyncRounds.WithLabelValues("config_failed").Inc()
			return Result{}, &domain.SyncFailure{Op: "config", Err: err}
		}
		return r.PushThenPull(ctx, ep)
	})
	if err != nil {
		return Result{}, err
	}
	return v.(Result), nil
}

// SyncInBackground starts a round without waiting for it. Failures are
// logged. Wait blocks until every background round has returned.
func (r *Reconciler) SyncInBackground(reason string) {
	r.bg.Add(1)
	go func() {
		defer r.bg.Done()
		res, err := r.Sync(context.Background())
		if err != nil {
			r.log.Warn("background sync failed", "reason", reason, "error", err)
			return
		}
		r.log.Info("background sync done", "reason", reason, "records", len(res.Records), "dropped", res.Dropped)
	}()
}

// Wait blocks until all rounds started by SyncInBackground have finished.
func (r *Reconciler) Wait() { r.bg.Wait() }

// PushThenPull pushes the current snapshot to ep, fetches the remote
// snapshot and merges it into the store. On any failure the store is left
// as it was and a *domain.SyncFailure is returned.
func (r *Reconciler) PushThenPull(ctx context.Context, ep Endpoint) (Result, error) {
	start := r.now()
	seq := r.seq.Add(1)
	defer func() { metrics.SyncDuration.Observe(time.Since(start).Seconds()) }()

	snap := r.store.Snapshot()

	if err := ep.PushUnverified(ctx, snap.Records); err != nil {
		metrics.SyncRounds.WithLabelValues("push_failed").Inc()
		return Result{}, &domain.SyncFailure{Op: "push", Err: err}
	}

	remote, skipped, err := ep.Fetch(ctx)
	if err != nil {
		metrics.SyncRounds.WithLabelValues("fetch_failed").Inc()
		return Result{}, &domain.SyncFailure{Op: "fetch", Err: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if seq < r.applied {
		metrics.SyncRounds.WithLabelValues("stale").Inc()
		r.log.Info("discarding stale sync response", "round", seq, "applied", r.applied)
		return Result{Records: r.store.Records(), Stale: true, At: start, Pushed: snap.Version}, nil
	}

	next, dropped, err := r.store.Reconcile(ctx, remote, snap.Version, Merge)
	if err != nil {
		metrics.SyncRounds.WithLabelValues("store_failed").Inc()
		return Result{}, &domain.SyncFailure{Op: "apply", Err: err}
	}
	r.applied = seq

	dropped += skipped
	if dropped > 0 {
		metrics.SyncDroppedRecords.Add(float64(dropped))
		r.log.Warn("dropped malformed remote records", "count", dropped)
	}
	metrics.SyncRounds.WithLabelValues("ok").Inc()
	metrics.Records.Set(float64(len(next.Records)))

	at := r.now()
	r.markSynced(ctx, at)
	return Result{Records: next.Records, Dropped: dropped, At: at, Pushed: snap.Version}, nil
}

// resolve returns the endpoint for the configured URL, reusing the previous
// one while the URL is unchanged so its circuit breaker state carries over.
func (r *Reconciler) resolve(ctx context.Context) (Endpoint, error) {
	settings, err := r.settings.LoadSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if settings.SyncURL == "" {
		return nil, ErrNoEndpoint
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.endpoint != nil && r.url == settings.SyncURL {
		return r.endpoint, nil
	}
	ep, err := r.newEndpoint(settings.SyncURL)
	if err != nil {
		return nil, err
	}
	r.endpoint, r.url = ep, settings.SyncURL
	return ep, nil
}

func (r *Reconciler) markSynced(ctx context.Context, at time.Time) {
	if err := r.settings.SaveLastSync(ctx, at); err != nil {
		r.log.Warn("could not record last sync time", "error", err)
	}
}

// IsNotConfigured reports whether err came from a sync attempt without an
// endpoint URL.
func IsNotConfigured(err error) bool {
	return errors.Is(err, ErrNoEndpoint)
}
