package postgres

import (
	"context"
	"fmt"

	"github.com/kirinyoku/cinebook/internal/repository"
)

const saveAttempts = 3

const createLedgerEntries = `
CREATE TABLE IF NOT EXISTS ledger_entries (
	key        TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// LedgerRepo stores the ledger entries as rows of a key/value table.
type LedgerRepo struct {
	store *Store
}

// Migrate creates the ledger_entries table when it does not exist.
func (r *LedgerRepo) Migrate(ctx context.Context) error {
	const op = "postgres.LedgerRepo.Migrate"

	if _, err := r.store.pool.Exec(ctx, createLedgerEntries); err != nil {
		return fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	return nil
}

// Load reads both entries in one statement.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//
// Returns:
//   - repository.Snapshot: raw entries, nil for rows that do not exist.
//   - error: repository.ErrUnavailable if the database cannot be reached.
func (r *LedgerRepo) Load(ctx context.Context) (repository.Snapshot, error) {
	const op = "postgres.LedgerRepo.Load"

	rows, err := r.store.pool.Query(ctx,
		`SELECT key, value::text
		 FROM ledger_entries
		 WHERE key = ANY($1)`,
		[]string{repository.EntryBookings, repository.EntryBookedSeats},
	)
	if err != nil {
		return repository.Snapshot{}, fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	defer rows.Close()

	var snap repository.Snapshot
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return repository.Snapshot{}, fmt.Errorf("%s: %w", op, translateDBErr(err))
		}

		switch key {
		case repository.EntryBookings:
			snap.Bookings = []byte(value)
		case repository.EntryBookedSeats:
			snap.BookedSeats = []byte(value)
		}
	}
	if err := rows.Err(); err != nil {
		return repository.Snapshot{}, fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	return snap, nil
}

// Save upserts both entries in one serializable transaction, retrying on
// serialization failures.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - snap: entries to write; a nil entry deletes its row.
//
// Returns:
//   - error: repository.ErrUnavailable if the database cannot be reached.
func (r *LedgerRepo) Save(ctx context.Context, snap repository.Snapshot) error {
	const op = "postgres.LedgerRepo.Save"

	var err error
	for attempt := 0; attempt < saveAttempts; attempt++ {
		err = r.store.RunTx(ctx, nil, func(ctx context.Context, tx DB) error {
			return r.saveCore(ctx, tx, snap)
		})
		if err == nil || !IsRetryable(err) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	return nil
}

func (r *LedgerRepo) saveCore(ctx context.Context, db DB, snap repository.Snapshot) error {
	const op = "postgres.LedgerRepo.saveCore"

	entries := []struct {
		key   string
		value []byte
	}{
		{repository.EntryBookings, snap.Bookings},
		{repository.EntryBookedSeats, snap.BookedSeats},
	}

	for _, e := range entries {
		if e.value == nil {
			if _, err := db.Exec(ctx, `DELETE FROM ledger_entries WHERE key = $1`, e.key); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
			continue
		}

		if _, err := db.Exec(ctx,
			`INSERT INTO ledger_entries(key, value, updated_at)
			 VALUES ($1, $2::jsonb, now())
			 ON CONFLICT (key) DO UPDATE
			 SET value = EXCLUDED.value, updated_at = now()`,
			e.key, string(e.value),
		); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}
