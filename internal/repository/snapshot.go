package repository

// Names of the two persisted ledger entries.
const (
	EntryBookings    = "bookings"
	EntryBookedSeats = "bookedSeats"
)

// Snapshot is the raw persisted form of the ledger. A nil field means the
// entry is absent from the store.
type Snapshot struct {
	Bookings    []byte
	BookedSeats []byte
}

// Empty reports whether neither entry holds any data.
func (s Snapshot) Empty() bool {
	return len(s.Bookings) == 0 && len(s.BookedSeats) == 0
}
