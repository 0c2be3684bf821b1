package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, *pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test; Begin on a
// pgx.Tx opens a savepoint, so Replace still runs atomically.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// recordColumns is the column order used by Replace's COPY and by scanRecord.
var recordColumns = []string{"id", "date", "type", "guide", "revenue", "guests", "duration", "notes", "created_at"}

// pgSnapshotRepo is the Postgres implementation of SnapshotRepo.
type pgSnapshotRepo struct {
	db db
}

// NewSnapshotRepo constructs a SnapshotRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewSnapshotRepo(db db) SnapshotRepo {
	return &pgSnapshotRepo{db: db}
}

// List returns every stored record, most recent date first.
func (r *pgSnapshotRepo) List(ctx context.Context) ([]domain.TourRecord, error) {
	const q = `
		SELECT id, date, type, guide, revenue, guests, duration, notes, created_at
		FROM tour_records
		ORDER BY date DESC, created_at DESC, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.SnapshotRepo.List: %w", err)
	}
	defer rows.Close()

	records := []domain.TourRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.SnapshotRepo.List: scan: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.SnapshotRepo.List: rows: %w", err)
	}
	return records, nil
}

// Replace deletes every row and copies records in within one transaction.
// Records are expected to be validated by the caller.
func (r *pgSnapshotRepo) Replace(ctx context.Context, records []domain.TourRecord) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.SnapshotRepo.Replace: begin: %w", err)
	}
	// Rollback after Commit is a no-op.
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM tour_records`); err != nil {
		return fmt.Errorf("repo.SnapshotRepo.Replace: delete: %w", err)
	}

	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		day, ok := rec.Day()
		if !ok {
			return fmt.Errorf("repo.SnapshotRepo.Replace: record %s: %w: date", rec.ID, domain.ErrValidation)
		}
		rows = append(rows, []any{
			rec.ID,
			pgtype.Date{Time: day, Valid: true},
			rec.Type.String(),
			rec.Guide,
			rec.Revenue,
			rec.Guests,
			rec.Duration,
			rec.Notes,
			rec.CreatedAt,
		})
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"tour_records"}, recordColumns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("repo.SnapshotRepo.Replace: copy: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.SnapshotRepo.Replace: commit: %w", err)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanRecord maps a single database row into a domain.TourRecord.
func scanRecord(s scanner) (domain.TourRecord, error) {
	var (
		rec      domain.TourRecord
		date     pgtype.Date
		typeCode string
	)
	err := s.Scan(&rec.ID, &date, &typeCode, &rec.Guide, &rec.Revenue, &rec.Guests, &rec.Duration, &rec.Notes, &rec.CreatedAt)
	if err != nil {
		return domain.TourRecord{}, err
	}

	rec.Date = date.Time.Format(domain.DateLayout)
	rec.Type, err = domain.ParseTourType(typeCode)
	if err != nil {
		return domain.TourRecord{}, err
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, nil
}
