package ledger

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/lib/logger/sl"
	"github.com/kirinyoku/cinebook/internal/repository"
)

const writeTimeout = 5 * time.Second

// Store is the durable home of the ledger. Save must write both entries of
// the snapshot atomically.
type Store interface {
	Load(ctx context.Context) (repository.Snapshot, error)
	Save(ctx context.Context, snap repository.Snapshot) error
}

// ChangeHook is called after a mutation changed the seats of a showtime.
// Hooks run synchronously, outside the writer lock.
type ChangeHook func(ctx context.Context, key domain.ShowtimeKey)

// state is an immutable snapshot of the ledger. A mutation builds a new
// state and publishes it with a single pointer swap.
type state struct {
	bookings []domain.Booking
	byID     map[string]int
	index    seatIndex
}

func emptyState() *state {
	return &state{byID: map[string]int{}, index: seatIndex{}}
}

// Ledger is the authoritative, persisted set of bookings and the index of
// seats they hold. Mutations are serialized by one writer lock; reads work
// on the last published snapshot and never wait for I/O.
type Ledger struct {
	store    Store
	logger   *slog.Logger
	validate *validator.Validate
	newID    func() string

	mu     sync.Mutex
	hooks  []ChangeHook
	dirty  bool
	closed bool

	current atomic.Pointer[state]
}

func New(store Store, logger *slog.Logger) *Ledger {
	l := &Ledger{
		store:    store,
		logger:   logger.With(slog.String("component", "ledger")),
		validate: newValidator(),
		newID:    uuid.NewString,
	}
	l.current.Store(emptyState())

	return l
}

// OnChange registers a hook. Hooks must not call mutating ledger methods.
func (l *Ledger) OnChange(h ChangeHook) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.hooks = append(l.hooks, h)
}

// Load restores the ledger from the store.
//
// Parameters:
//   - ctx: request-scoped context.
//
// Returns:
//   - error: *PersistenceError if the store could not be read.
//   - error: *CorruptStateError if stored data is malformed; the ledger is
//     left empty and Reset should be called to discard the stored data.
//   - error: *PersistenceError with Loaded set if a repaired seat index
//     could not be written back; the loaded state is kept.
func (l *Ledger) Load(ctx context.Context) error {
	const op = "ledger.Ledger.Load"

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}

	l.current.Store(emptyState())
	l.dirty = false

	snap, err := l.store.Load(ctx)
	if err != nil {
		return &PersistenceError{Op: op, Err: err}
	}

	if snap.Empty() {
		l.logger.Info("no stored ledger, starting empty")
		return nil
	}

	bookings, err := decodeBookings(snap.Bookings)
	if err != nil {
		return err
	}

	stored, err := decodeBookedSeats(snap.BookedSeats)
	if err != nil {
		return err
	}

	st, err := l.buildState(bookings)
	if err != nil {
		return err
	}

	l.current.Store(st)

	if !stored.equal(st.index) {
		l.logger.Warn("stored seat index disagrees with bookings, rebuilding it from bookings",
			slog.Int("bookings", len(st.bookings)))

		if err := l.persist(ctx, op, st); err != nil {
			var pe *PersistenceError
			if errors.As(err, &pe) {
				pe.Loaded = true
			}
			return err
		}
	}

	l.logger.Info("ledger loaded", slog.Int("bookings", len(st.bookings)))

	return nil
}

// Reset discards all bookings and persists the empty ledger. It is the
// recovery path after Load reported a CorruptStateError.
//
// Returns:
//   - error: *PersistenceError if the empty state could not be written.
func (l *Ledger) Reset(ctx context.Context) error {
	const op = "ledger.Ledger.Reset"

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}

	st := emptyState()
	l.current.Store(st)

	return l.persist(ctx, op, st)
}

// AddBooking validates b, reserves its seats and appends it to the ledger.
// An empty b.ID is replaced by a fresh unique id.
//
// Parameters:
//   - ctx: request-scoped context.
//   - b: the candidate booking. Its total price is trusted as given.
//
// Returns:
//   - domain.Booking: the stored booking, also returned alongside a
//     *PersistenceError.
//   - error: *InvalidBookingError for a malformed candidate or duplicate id.
//   - error: *SeatConflictError if any seat is already held for the showtime.
//   - error: *PersistenceError if the booking is live in memory but was not
//     written to the store.
//   - error: ErrClosed after Close.
func (l *Ledger) AddBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	const op = "ledger.Ledger.AddBooking"

	b = b.Clone()

	l.mu.Lock()

	if l.closed {
		l.mu.Unlock()
		return domain.Booking{}, ErrClosed
	}

	cur := l.current.Load()

	if b.ID == "" {
		b.ID = l.uniqueID(cur)
	}

	if err := validateBooking(l.validate, b); err != nil {
		l.mu.Unlock()
		return domain.Booking{}, err
	}

	if _, exists := cur.byID[b.ID]; exists {
		l.mu.Unlock()
		return domain.Booking{}, &InvalidBookingError{BookingID: b.ID, Reason: "booking id already exists"}
	}

	key := b.Key()
	if clash := cur.index.conflicts(key, b.SelectedSeats); len(clash) > 0 {
		l.mu.Unlock()
		return domain.Booking{}, &SeatConflictError{Key: key, SeatIDs: clash}
	}

	next := cur.withBooking(b)
	l.current.Store(next)

	// the change is live; the write and hooks outlive the caller's context
	ctx, cancel := detach(ctx)
	defer cancel()

	err := l.persist(ctx, op, next)
	hooks := slices.Clone(l.hooks)
	l.mu.Unlock()

	l.logger.Info("booking added",
		slog.String("booking_id", b.ID),
		slog.String("showtime", key.String()),
		slog.Any("seats", b.SelectedSeats))

	notify(ctx, hooks, key)

	return b.Clone(), err
}

// CancelBooking removes the booking with the given id and frees its seats.
// Cancelling an unknown id is a no-op.
//
// Returns:
//   - bool: whether a booking was removed.
//   - error: *PersistenceError if the removal is live in memory but was not
//     written to the store.
//   - error: ErrClosed after Close.
func (l *Ledger) CancelBooking(ctx context.Context, id string) (bool, error) {
	const op = "ledger.Ledger.CancelBooking"

	l.mu.Lock()

	if l.closed {
		l.mu.Unlock()
		return false, ErrClosed
	}

	cur := l.current.Load()

	pos, ok := cur.byID[id]
	if !ok {
		l.mu.Unlock()
		return false, nil
	}

	b := cur.bookings[pos]
	next := cur.withoutBooking(pos)
	l.current.Store(next)

	ctx, cancel := detach(ctx)
	defer cancel()

	err := l.persist(ctx, op, next)
	hooks := slices.Clone(l.hooks)
	l.mu.Unlock()

	l.logger.Info("booking cancelled",
		slog.String("booking_id", id),
		slog.String("showtime", b.Key().String()))

	notify(ctx, hooks, b.Key())

	return true, err
}

// IsSeatBooked reports whether seatID is held by a live booking for key.
// Seats preseeded by the catalog are not tracked here.
func (l *Ledger) IsSeatBooked(key domain.ShowtimeKey, seatID int) bool {
	return l.current.Load().index.has(key, seatID)
}

// BookedSeats returns the seats held by live bookings for key, ascending.
func (l *Ledger) BookedSeats(key domain.ShowtimeKey) []int {
	return l.current.Load().index.seats(key)
}

// ListBookings returns all live bookings, oldest first.
func (l *Ledger) ListBookings() []domain.Booking {
	st := l.current.Load()

	out := make([]domain.Booking, 0, len(st.bookings))
	for _, b := range st.bookings {
		out = append(out, b.Clone())
	}

	return out
}

func (l *Ledger) Booking(id string) (domain.Booking, bool) {
	st := l.current.Load()

	pos, ok := st.byID[id]
	if !ok {
		return domain.Booking{}, false
	}

	return st.bookings[pos].Clone(), true
}

// NewBookingID returns an id not used by any live booking.
func (l *Ledger) NewBookingID() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.uniqueID(l.current.Load())
}

// Flush writes the current state if the last write failed.
func (l *Ledger) Flush(ctx context.Context) error {
	const op = "ledger.Ledger.Flush"

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.dirty {
		return nil
	}

	return l.persist(ctx, op, l.current.Load())
}

// Close flushes pending state and rejects further mutations. Reads keep
// working on the final snapshot.
func (l *Ledger) Close(ctx context.Context) error {
	const op = "ledger.Ledger.Close"

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	if !l.dirty {
		return nil
	}

	return l.persist(ctx, op, l.current.Load())
}

// persist writes st to the store. Callers must hold l.mu.
func (l *Ledger) persist(ctx context.Context, op string, st *state) error {
	snap, err := encodeState(st)
	if err == nil {
		err = l.store.Save(ctx, snap)
	}

	if err != nil {
		l.dirty = true
		l.logger.Error("failed to persist ledger", slog.String("op", op), sl.Err(err))
		return &PersistenceError{Op: op, Err: err}
	}

	l.dirty = false

	return nil
}

func (l *Ledger) uniqueID(st *state) string {
	for {
		id := l.newID()
		if _, taken := st.byID[id]; !taken && id != "" {
			return id
		}
	}
}

// buildState checks persisted bookings and derives their index.
func (l *Ledger) buildState(bookings []domain.Booking) (*state, error) {
	st := &state{
		bookings: bookings,
		byID:     make(map[string]int, len(bookings)),
	}

	for i, b := range bookings {
		if err := validateBooking(l.validate, b); err != nil {
			return nil, &CorruptStateError{Entry: repository.EntryBookings, Err: err}
		}

		if _, dup := st.byID[b.ID]; dup {
			return nil, &CorruptStateError{
				Entry: repository.EntryBookings,
				Err:   errors.New("duplicate booking id " + b.ID),
			}
		}
		st.byID[b.ID] = i
	}

	index, err := buildIndex(bookings)
	if err != nil {
		return nil, &CorruptStateError{Entry: repository.EntryBookings, Err: err}
	}
	st.index = index

	return st, nil
}

func (st *state) withBooking(b domain.Booking) *state {
	bookings := make([]domain.Booking, len(st.bookings), len(st.bookings)+1)
	copy(bookings, st.bookings)
	bookings = append(bookings, b)

	byID := make(map[string]int, len(st.byID)+1)
	for id, pos := range st.byID {
		byID[id] = pos
	}
	byID[b.ID] = len(bookings) - 1

	return &state{
		bookings: bookings,
		byID:     byID,
		index:    st.index.with(b.Key(), b.SelectedSeats),
	}
}

func (st *state) withoutBooking(pos int) *state {
	b := st.bookings[pos]

	bookings := make([]domain.Booking, 0, len(st.bookings)-1)
	bookings = append(bookings, st.bookings[:pos]...)
	bookings = append(bookings, st.bookings[pos+1:]...)

	byID := make(map[string]int, len(bookings))
	for i, kept := range bookings {
		byID[kept.ID] = i
	}

	return &state{
		bookings: bookings,
		byID:     byID,
		index:    st.index.without(b.Key(), b.SelectedSeats),
	}
}

// detach keeps ctx values but drops its cancellation, bounding the
// follow-up work by writeTimeout instead.
func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
}

func notify(ctx context.Context, hooks []ChangeHook, key domain.ShowtimeKey) {
	for _, h := range hooks {
		h(ctx, key)
	}
}
