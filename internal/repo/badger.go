package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
)

// Keys under which the device state is stored.
const (
	keyRecords  = "tour_records"
	keySyncURL  = "cloud_sync_url"
	keyAutoSync = "auto_sync"
	keyLastSync = "last_sync_at"
	keyIsAdmin  = "is_admin"
)

// OpenBadger opens (or creates) the device database in dir.
// An empty dir opens an in-memory database, which tests use.
func OpenBadger(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("repo.OpenBadger: %w", err)
	}
	return db, nil
}

// badgerRepo implements RecordRepo and SettingsRepo on one badger database.
type badgerRepo struct {
	db *badger.DB
}

// NewBadgerRecordRepo constructs a RecordRepo backed by db.
func NewBadgerRecordRepo(db *badger.DB) RecordRepo {
	return &badgerRepo{db: db}
}

// NewBadgerSettingsRepo constructs a SettingsRepo backed by db.
func NewBadgerSettingsRepo(db *badger.DB) SettingsRepo {
	return &badgerRepo{db: db}
}

// LoadRecords reads the record snapshot.
func (r *badgerRepo) LoadRecords(_ context.Context) ([]domain.TourRecord, error) {
	records := []domain.TourRecord{}
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyRecords))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &records)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("repo.RecordRepo.LoadRecords: %w", err)
	}
	return records, nil
}

// SaveRecords overwrites the record snapshot.
func (r *badgerRepo) SaveRecords(_ context.Context, records []domain.TourRecord) error {
	if records == nil {
		records = []domain.TourRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("repo.RecordRepo.SaveRecords: marshal: %w", err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyRecords), data)
	})
	if err != nil {
		return fmt.Errorf("repo.RecordRepo.SaveRecords: %w", err)
	}
	return nil
}

// LoadSettings reads each setting key; absent keys keep their zero value.
func (r *badgerRepo) LoadSettings(_ context.Context) (domain.Settings, error) {
	var s domain.Settings
	err := r.db.View(func(txn *badger.Txn) error {
		if v, ok, err := getString(txn, keySyncURL); err != nil {
			return err
		} else if ok {
			s.SyncURL = v
		}
		if v, ok, err := getString(txn, keyAutoSync); err != nil {
			return err
		} else if ok {
			s.AutoSync = v == "true"
		}
		if v, ok, err := getString(txn, keyIsAdmin); err != nil {
			return err
		} else if ok {
			s.AdminAuthenticated = v == "true"
		}
		if v, ok, err := getString(txn, keyLastSync); err != nil {
			return err
		} else if ok {
			ts, err := time.Parse(time.RFC3339Nano, v)
			if err != nil {
				return fmt.Errorf("parse %s: %w", keyLastSync, err)
			}
			s.LastSyncAt = &ts
		}
		return nil
	})
	if err != nil {
		return domain.Settings{}, fmt.Errorf("repo.SettingsRepo.LoadSettings: %w", err)
	}
	return s, nil
}

// SaveSyncEndpoint writes the endpoint URL and the auto-sync flag in one
// transaction. Empty or false values delete their key, mirroring
// localStorage.removeItem. Other settings are not touched.
func (r *badgerRepo) SaveSyncEndpoint(_ context.Context, url string, auto bool) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		if err := setOrDelete(txn, keySyncURL, url); err != nil {
			return err
		}
		return setOrDelete(txn, keyAutoSync, boolString(auto))
	})
	if err != nil {
		return fmt.Errorf("repo.SettingsRepo.SaveSyncEndpoint: %w", err)
	}
	return nil
}

// SaveLastSync records the time of the last successful sync.
func (r *badgerRepo) SaveLastSync(_ context.Context, at time.Time) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		return setOrDelete(txn, keyLastSync, at.UTC().Format(time.RFC3339Nano))
	})
	if err != nil {
		return fmt.Errorf("repo.SettingsRepo.SaveLastSync: %w", err)
	}
	return nil
}

// SaveAdminAuthenticated sets or clears the admin flag.
func (r *badgerRepo) SaveAdminAuthenticated(_ context.Context, ok bool) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		return setOrDelete(txn, keyIsAdmin, boolString(ok))
	})
	if err != nil {
		return fmt.Errorf("repo.SettingsRepo.SaveAdminAuthenticated: %w", err)
	}
	return nil
}

func getString(txn *badger.Txn, key string) (string, bool, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return "", false, err
	}
	return string(val), true, nil
}

func setOrDelete(txn *badger.Txn, key, value string) error {
	if value == "" {
		return txn.Delete([]byte(key))
	}
	return txn.Set([]byte(key), []byte(value))
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return ""
}
