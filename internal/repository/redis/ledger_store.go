package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/kirinyoku/cinebook/internal/repository"
)

// LedgerStore persists the two ledger entries as plain string keys.
type LedgerStore struct {
	rdb redis.UniversalClient
}

func NewLedgerStore(rdb redis.UniversalClient) *LedgerStore {
	return &LedgerStore{rdb: rdb}
}

// Load reads both entries with a single MGET so they come from the same
// point in time.
//
// Parameters:
//   - ctx: request-scoped context.
//
// Returns:
//   - repository.Snapshot: raw entries, nil for keys that do not exist.
//   - error: repository.ErrUnavailable wrapped with the driver error.
func (s *LedgerStore) Load(ctx context.Context) (repository.Snapshot, error) {
	const op = "redis.LedgerStore.Load"

	vals, err := s.rdb.MGet(ctx, KeyBookings(), KeyBookedSeats()).Result()
	if err != nil {
		return repository.Snapshot{}, fmt.Errorf("%s: %w: %w", op, repository.ErrUnavailable, err)
	}

	if len(vals) != 2 {
		return repository.Snapshot{}, fmt.Errorf("%s: unexpected MGET reply of %d values", op, len(vals))
	}

	bookings, err := entryBytes(vals[0])
	if err != nil {
		return repository.Snapshot{}, fmt.Errorf("%s: %s: %w", op, KeyBookings(), err)
	}

	bookedSeats, err := entryBytes(vals[1])
	if err != nil {
		return repository.Snapshot{}, fmt.Errorf("%s: %s: %w", op, KeyBookedSeats(), err)
	}

	return repository.Snapshot{Bookings: bookings, BookedSeats: bookedSeats}, nil
}

// Save writes both entries inside MULTI/EXEC, so a reader never sees a new
// bookings list next to an old seat index.
//
// Parameters:
//   - ctx: request-scoped context.
//   - snap: entries to write; a nil entry deletes the key.
//
// Returns:
//   - error: repository.ErrUnavailable wrapped with the driver error.
func (s *LedgerStore) Save(ctx context.Context, snap repository.Snapshot) error {
	const op = "redis.LedgerStore.Save"

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		writeEntry(ctx, pipe, KeyBookings(), snap.Bookings)
		writeEntry(ctx, pipe, KeyBookedSeats(), snap.BookedSeats)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, repository.ErrUnavailable, err)
	}

	return nil
}

func writeEntry(ctx context.Context, pipe redis.Pipeliner, key string, val []byte) {
	if val == nil {
		pipe.Del(ctx, key)
		return
	}
	pipe.Set(ctx, key, val, 0)
}

func entryBytes(v any) ([]byte, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(t), nil
	case []byte:
		return t, nil
	default:
		return nil, fmt.Errorf("unexpected value type %T", v)
	}
}
