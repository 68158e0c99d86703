package booking

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/kirinyoku/cinebook/internal/catalog"
	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/ledger"
	"github.com/kirinyoku/cinebook/internal/lib/logger/handlers/slogdiscard"
	"github.com/kirinyoku/cinebook/internal/repository"
	"github.com/kirinyoku/cinebook/internal/repository/memory"
	"github.com/kirinyoku/cinebook/internal/service/showtimes"
)

// brokenStore loads an empty ledger and refuses every write.
type brokenStore struct{}

func (brokenStore) Load(context.Context) (repository.Snapshot, error) {
	return repository.Snapshot{}, nil
}

func (brokenStore) Save(context.Context, repository.Snapshot) error {
	return repository.ErrUnavailable
}

type BookingTestSuite struct {
	suite.Suite
	ledger *ledger.Ledger
	svc    *Service
}

func TestBookingSuite(t *testing.T) {
	suite.Run(t, new(BookingTestSuite))
}

func (s *BookingTestSuite) SetupTest() {
	s.svc, s.ledger = s.newService(memory.New())
}

func (s *BookingTestSuite) newService(store ledger.Store) (*Service, *ledger.Ledger) {
	cat, err := catalog.Default()
	s.Require().NoError(err)

	logger := slogdiscard.NewDiscardLogger()

	led := ledger.New(store, logger)
	s.Require().NoError(led.Load(context.Background()))

	return New(showtimes.New(cat, led, nil, showtimes.Config{}), led, logger), led
}

func (s *BookingTestSuite) TestBook() {
	b, err := s.svc.Book(context.Background(), 2, 6, []int{8, 9})
	s.Require().NoError(err)

	s.NotEmpty(b.ID)
	s.Equal("Orbitfall", b.MovieTitle)
	s.Equal("09:30 PM", b.Showtime)
	s.Equal([]int{8, 9}, b.SelectedSeats)
	s.True(b.TotalPrice.Equal(decimal.RequireFromString("501")), "total %s", b.TotalPrice)

	got, err := s.svc.Get(context.Background(), b.ID)
	s.Require().NoError(err)
	s.Equal(b.ID, got.ID)

	s.Len(s.svc.List(context.Background()), 1)
}

func (s *BookingTestSuite) TestBook_Errors() {
	ctx := context.Background()

	_, err := s.svc.Book(ctx, 1, 1, []int{40})
	s.Require().NoError(err)

	tests := []struct {
		name       string
		movieID    int64
		showtimeID int64
		seats      []int
		wantErr    error
	}{
		{name: "no seats", movieID: 1, showtimeID: 1, wantErr: ErrNoSeatsSelected},
		{name: "unknown movie", movieID: 99, showtimeID: 1, seats: []int{1}, wantErr: showtimes.ErrMovieNotFound},
		{name: "showtime of another movie", movieID: 1, showtimeID: 5, seats: []int{1}, wantErr: showtimes.ErrShowtimeNotFound},
		{name: "seat outside layout", movieID: 1, showtimeID: 1, seats: []int{81}, wantErr: showtimes.ErrInvalidSeats},
		{name: "preseeded seat", movieID: 1, showtimeID: 1, seats: []int{1, 3}, wantErr: showtimes.ErrSeatsUnavailable},
		{name: "seat already booked", movieID: 1, showtimeID: 1, seats: []int{39, 40}, wantErr: showtimes.ErrSeatsUnavailable},
		{name: "duplicate seats", movieID: 1, showtimeID: 1, seats: []int{5, 5}, wantErr: ledger.ErrInvalidBooking},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.svc.Book(ctx, tt.movieID, tt.showtimeID, tt.seats)
			s.ErrorIs(err, tt.wantErr)
		})
	}

	s.Len(s.svc.List(ctx), 1)
	s.False(s.ledger.IsSeatBooked(keyOf(1, 1), 39))
}

func (s *BookingTestSuite) TestBook_ConflictReportsSeats() {
	ctx := context.Background()

	_, err := s.svc.Book(ctx, 1, 2, []int{5, 6, 7})
	s.Require().NoError(err)

	_, err = s.svc.Book(ctx, 1, 2, []int{7, 8})
	s.Require().Error(err)
	s.ErrorIs(err, ledger.ErrSeatConflict)

	var unavailable showtimes.SeatsUnavailableError
	s.Require().ErrorAs(err, &unavailable)
	s.Equal([]int{7}, unavailable.SeatIDs)
}

func (s *BookingTestSuite) TestCancel() {
	ctx := context.Background()

	b, err := s.svc.Book(ctx, 1, 3, []int{1, 2})
	s.Require().NoError(err)

	cancelled, err := s.svc.Cancel(ctx, b.ID)
	s.Require().NoError(err)
	s.True(cancelled)

	_, err = s.svc.Get(ctx, b.ID)
	s.ErrorIs(err, ErrBookingNotFound)

	cancelled, err = s.svc.Cancel(ctx, b.ID)
	s.Require().NoError(err)
	s.False(cancelled)

	// the freed seats can be booked again
	_, err = s.svc.Book(ctx, 1, 3, []int{1, 2})
	s.NoError(err)
}

func (s *BookingTestSuite) TestBook_PersistenceFailure() {
	svc, led := s.newService(brokenStore{})

	b, err := svc.Book(context.Background(), 1, 3, []int{4})
	s.Require().Error(err)
	s.ErrorIs(err, ledger.ErrPersistence)
	s.NotEmpty(b.ID)
	s.True(led.IsSeatBooked(keyOf(1, 3), 4))

	cancelled, err := svc.Cancel(context.Background(), b.ID)
	s.True(cancelled)
	s.ErrorIs(err, ledger.ErrPersistence)
}

func keyOf(movieID, showtimeID int64) domain.ShowtimeKey {
	return domain.ShowtimeKey{MovieID: movieID, ShowtimeID: showtimeID}
}
