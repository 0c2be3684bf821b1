// Package service contains the use cases of the tour log: record entry and
// deletion, the admin gate, dashboard numbers, exports, sync and insight.
// Services enforce business rules and orchestrate the store, repos and
// clients; they depend on interfaces so each can be tested with mocks.
package service

import (
	"context"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/store"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/syncer"
)

// RecordStore is the slice of *store.Store the services use.
type RecordStore interface {
	Add(ctx context.Context, record domain.TourRecord) (store.Snapshot, error)
	Remove(ctx context.Context, id string) (store.Snapshot, error)
	Records() []domain.TourRecord
}

// RecordReader is the read-only view used by reporting services.
type RecordReader interface {
	Records() []domain.TourRecord
}

// Syncer runs sync rounds. *syncer.Reconciler satisfies it.
type Syncer interface {
	Sync(ctx context.Context) (syncer.Result, error)
	SyncInBackground(reason string)
}

var (
	_ RecordStore = (*store.Store)(nil)
	_ Syncer      = (*syncer.Reconciler)(nil)
)
