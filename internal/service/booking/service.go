package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/ledger"
	"github.com/kirinyoku/cinebook/internal/seatmap"
	"github.com/kirinyoku/cinebook/internal/service/showtimes"
)

type Service struct {
	showtimes *showtimes.Service
	ledger    *ledger.Ledger
	logger    *slog.Logger
}

func New(st *showtimes.Service, led *ledger.Ledger, logger *slog.Logger) *Service {
	return &Service{
		showtimes: st,
		ledger:    led,
		logger:    logger,
	}
}

// Book reserves seats for a showtime.
//
// Parameters:
//   - ctx: request-scoped context.
//   - movieID, showtimeID: the showtime to book.
//   - seatIDs: seats to reserve, in selection order.
//
// Returns:
//   - domain.Booking: the created booking. It is also returned together
//     with a ledger.ErrPersistence error, in which case the booking is live
//     but may not survive a restart.
//   - error: booking.ErrNoSeatsSelected if seatIDs is empty.
//   - error: showtimes.ErrMovieNotFound or showtimes.ErrShowtimeNotFound.
//   - error: showtimes.ErrInvalidSeats for seats outside the layout.
//   - error: showtimes.ErrSeatsUnavailable if any seat is taken.
//   - error: ledger.ErrInvalidBooking for duplicate seats or a zero total.
func (s *Service) Book(ctx context.Context, movieID, showtimeID int64, seatIDs []int) (domain.Booking, error) {
	const op = "service.booking.Book"

	if len(seatIDs) == 0 {
		return domain.Booking{}, fmt.Errorf("%s: %w", op, ErrNoSeatsSelected)
	}

	m, st, err := s.showtimes.CheckSeats(ctx, movieID, showtimeID, seatIDs)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	b, err := s.ledger.AddBooking(ctx, domain.Booking{
		MovieID:       m.ID,
		ShowtimeID:    st.ID,
		MovieTitle:    m.Title,
		Showtime:      st.Time,
		SelectedSeats: seatIDs,
		TotalPrice:    seatmap.Total(st.Price, len(seatIDs)),
	})
	if err != nil {
		var conflict *ledger.SeatConflictError
		if errors.As(err, &conflict) {
			return domain.Booking{}, fmt.Errorf("%s: %w: %w", op,
				showtimes.SeatsUnavailableError{SeatIDs: conflict.SeatIDs}, err)
		}

		if errors.Is(err, ledger.ErrPersistence) {
			s.logger.Warn("booking kept in memory only", slog.String("booking_id", b.ID))
			return b, fmt.Errorf("%s: %w", op, err)
		}

		return domain.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	return b, nil
}

// Cancel cancels a booking. Unknown ids are not an error.
//
// Returns:
//   - bool: whether a booking was cancelled.
//   - error: ledger.ErrPersistence if the cancellation was not persisted.
func (s *Service) Cancel(ctx context.Context, id string) (bool, error) {
	const op = "service.booking.Cancel"

	cancelled, err := s.ledger.CancelBooking(ctx, id)
	if err != nil {
		return cancelled, fmt.Errorf("%s: %w", op, err)
	}

	return cancelled, nil
}

// List returns all live bookings, oldest first.
func (s *Service) List(ctx context.Context) []domain.Booking {
	return s.ledger.ListBookings()
}

// Get returns one booking.
//
// Returns:
//   - error: booking.ErrBookingNotFound if no live booking has the id.
func (s *Service) Get(ctx context.Context, id string) (domain.Booking, error) {
	const op = "service.booking.Get"

	b, ok := s.ledger.Booking(id)
	if !ok {
		return domain.Booking{}, fmt.Errorf("%s: %w", op, ErrBookingNotFound)
	}

	return b, nil
}
