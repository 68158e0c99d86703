package memory

import (
	"context"
	"sync"

	"github.com/kirinyoku/cinebook/internal/repository"
)

// Store keeps the ledger entries in process memory. Nothing survives a
// restart, which makes it suitable for tests and throwaway local runs.
type Store struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func New() *Store {
	return &Store{entries: make(map[string][]byte)}
}

func (s *Store) Load(ctx context.Context) (repository.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return repository.Snapshot{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return repository.Snapshot{
		Bookings:    clone(s.entries[repository.EntryBookings]),
		BookedSeats: clone(s.entries[repository.EntryBookedSeats]),
	}, nil
}

func (s *Store) Save(ctx context.Context, snap repository.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[repository.EntryBookings] = clone(snap.Bookings)
	s.entries[repository.EntryBookedSeats] = clone(snap.BookedSeats)

	return nil
}

// Put overwrites a single raw entry.
func (s *Store) Put(name string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[name] = clone(raw)
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
