package ledger

import (
	"errors"
	"fmt"

	"github.com/kirinyoku/cinebook/internal/domain"
)

var (
	ErrCorruptState   = errors.New("corrupt ledger state")
	ErrInvalidBooking = errors.New("invalid booking")
	ErrSeatConflict   = errors.New("seats already booked")
	ErrPersistence    = errors.New("ledger could not be persisted")
	ErrClosed         = errors.New("ledger is closed")
)

// CorruptStateError is returned by Load when a persisted entry is present
// but cannot be trusted. The ledger is left empty; Reset discards the
// stored data.
type CorruptStateError struct {
	Entry string
	Err   error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("corrupt ledger entry %q: %v", e.Entry, e.Err)
}

func (e *CorruptStateError) Unwrap() []error {
	return []error{ErrCorruptState, e.Err}
}

type InvalidBookingError struct {
	BookingID string
	Reason    string
}

func (e *InvalidBookingError) Error() string {
	if e.BookingID == "" {
		return fmt.Sprintf("invalid booking: %s", e.Reason)
	}
	return fmt.Sprintf("invalid booking %s: %s", e.BookingID, e.Reason)
}

func (e *InvalidBookingError) Unwrap() error {
	return ErrInvalidBooking
}

type SeatConflictError struct {
	Key     domain.ShowtimeKey
	SeatIDs []int
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seats already booked for showtime %s: %v", e.Key, e.SeatIDs)
}

func (e *SeatConflictError) Unwrap() error {
	return ErrSeatConflict
}

// PersistenceError means the durable copy could not be read or written.
// The in-memory ledger already reflects the operation.
//
// Loaded is set by Load when the stored bookings were read and applied but
// the repaired seat index could not be written back. The ledger is usable
// and a later Flush retries the write.
type PersistenceError struct {
	Op     string
	Err    error
	Loaded bool
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: ledger could not be persisted: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}
