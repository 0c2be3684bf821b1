// Package repo contains the persistence ports of the tour log and their
// implementations: badger for the device-local store and Postgres for the
// shared sync hub. No business logic lives here, only storage and mapping.
package repo

import (
	"context"
	"time"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
)

// RecordRepo persists the device's whole record collection as one snapshot.
// The store depends on this interface, which allows it to be unit-tested
// with a mock.
type RecordRepo interface {
	// LoadRecords returns the persisted snapshot, or an empty slice when
	// nothing has been saved yet.
	LoadRecords(ctx context.Context) ([]domain.TourRecord, error)

	// SaveRecords overwrites the persisted snapshot.
	SaveRecords(ctx context.Context, records []domain.TourRecord) error
}

// SettingsRepo persists the scalar device settings under separate keys.
// Each setter writes only its own keys, so concurrent writers of different
// settings cannot overwrite each other.
type SettingsRepo interface {
	LoadSettings(ctx context.Context) (domain.Settings, error)

	// SaveSyncEndpoint writes the endpoint URL and the auto-sync flag.
	SaveSyncEndpoint(ctx context.Context, url string, auto bool) error

	// SaveLastSync records the time of the last successful sync.
	SaveLastSync(ctx context.Context, at time.Time) error

	// SaveAdminAuthenticated sets or clears the admin flag.
	SaveAdminAuthenticated(ctx context.Context, ok bool) error
}

// SnapshotRepo is the hub's shared record collection.
type SnapshotRepo interface {
	// List returns every record ordered by date descending, then created_at descending.
	List(ctx context.Context) ([]domain.TourRecord, error)

	// Replace overwrites the whole collection atomically.
	Replace(ctx context.Context, records []domain.TourRecord) error
}
