package showtimes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kirinyoku/cinebook/internal/catalog"
	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/ledger"
	redisrepo "github.com/kirinyoku/cinebook/internal/repository/redis"
	"github.com/kirinyoku/cinebook/internal/seatmap"
)

type Config struct {
	SeatMapTTL time.Duration
}

// SeatMap is the rendered seat grid of one showtime.
type SeatMap struct {
	MovieID    int64
	ShowtimeID int64
	MovieTitle string
	Time       string
	Price      decimal.Decimal
	Layout     domain.SeatLayout
	Available  int
	Seats      []domain.Seat
}

func (sm SeatMap) grid() seatmap.Grid {
	return seatmap.Grid{Layout: sm.Layout, Seats: sm.Seats}
}

// Quote is the priced result of a seat selection.
type Quote struct {
	MovieID      int64
	ShowtimeID   int64
	Seats        []int
	PricePerSeat decimal.Decimal
	Total        decimal.Decimal
}

type Service struct {
	catalog *catalog.Catalog
	ledger  *ledger.Ledger
	cache   *redisrepo.Cache
	cfg     Config
}

// New builds the service. cache may be nil, in which case seat maps are
// computed on every call.
func New(cat *catalog.Catalog, led *ledger.Ledger, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.SeatMapTTL <= 0 {
		cfg.SeatMapTTL = 15 * time.Second
	}

	return &Service{
		catalog: cat,
		ledger:  led,
		cache:   cache,
		cfg:     cfg,
	}
}

func (s *Service) ListMovies(ctx context.Context) []domain.Movie {
	return s.catalog.Movies()
}

// GetMovie returns a movie with its showtimes.
//
// Returns:
//   - error: showtimes.ErrMovieNotFound if the movie is not in the catalog.
func (s *Service) GetMovie(ctx context.Context, id int64) (domain.Movie, error) {
	const op = "service.showtimes.GetMovie"

	m, err := s.catalog.Movie(id)
	if err != nil {
		return domain.Movie{}, fmt.Errorf("%s: %w", op, translateCatalogErr(err))
	}

	return m, nil
}

// Showtime resolves a showtime and its movie.
//
// Returns:
//   - error: showtimes.ErrMovieNotFound or showtimes.ErrShowtimeNotFound.
func (s *Service) Showtime(ctx context.Context, movieID, showtimeID int64) (domain.Movie, domain.Showtime, error) {
	const op = "service.showtimes.Showtime"

	m, st, err := s.catalog.Showtime(movieID, showtimeID)
	if err != nil {
		return domain.Movie{}, domain.Showtime{}, fmt.Errorf("%s: %w", op, translateCatalogErr(err))
	}

	return m, st, nil
}

// SeatMap returns the seat grid of a showtime with every seat marked booked
// if the catalog preseeded it or a live booking holds it. The result is
// cached when a cache is configured; ledger change hooks invalidate it, and
// a cached grid that disagrees with the ledger is rebuilt.
//
// Parameters:
//   - ctx: request-scoped context.
//   - movieID, showtimeID: the showtime to render.
//
// Returns:
//   - *SeatMap: the rendered grid.
//   - error: showtimes.ErrMovieNotFound or showtimes.ErrShowtimeNotFound.
func (s *Service) SeatMap(ctx context.Context, movieID, showtimeID int64) (*SeatMap, error) {
	m, st, err := s.Showtime(ctx, movieID, showtimeID)
	if err != nil {
		return nil, err
	}

	key := showtimeKey(m, st)
	booked := s.ledger.BookedSeats(key)

	load := func(ctx context.Context) (SeatMap, error) {
		return s.buildSeatMap(m, st, booked), nil
	}

	if s.cache == nil {
		sm, _ := load(ctx)
		return &sm, nil
	}

	cacheKey := redisrepo.KeySeatMap(key)

	sm, err := redisrepo.GetOrSetJSON(ctx, s.cache, cacheKey, s.cfg.SeatMapTTL, load)
	switch {
	case err != nil:
		// cache errors fall back to a freshly built map
		sm, _ = load(ctx)
	case !sm.grid().Matches(st.Preseeded, booked):
		// a fill raced an invalidation and stored an older grid
		sm, _ = load(ctx)
		_ = redisrepo.SetJSON(ctx, s.cache, cacheKey, sm, s.cfg.SeatMapTTL)
	}

	return &sm, nil
}

// Quote replays seat toggles against the current grid and prices the
// resulting selection. Toggling a seat twice deselects it.
//
// Parameters:
//   - ctx: request-scoped context.
//   - movieID, showtimeID: the showtime being booked.
//   - toggles: seat ids in the order they were tapped.
//
// Returns:
//   - *Quote: the selection and its total.
//   - error: showtimes.SeatsNotFoundError for seats outside the layout.
//   - error: showtimes.SeatsUnavailableError for booked seats.
func (s *Service) Quote(ctx context.Context, movieID, showtimeID int64, toggles []int) (*Quote, error) {
	const op = "service.showtimes.Quote"

	m, st, err := s.Showtime(ctx, movieID, showtimeID)
	if err != nil {
		return nil, err
	}

	grid := seatmap.Build(st.Layout, st.Preseeded, s.ledger.BookedSeats(showtimeKey(m, st)))
	sel := seatmap.NewSelection(grid)

	if err := applySeats(sel.Toggle, toggles); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Quote{
		MovieID:      m.ID,
		ShowtimeID:   st.ID,
		Seats:        sel.Seats(),
		PricePerSeat: st.Price,
		Total:        sel.Total(st.Price),
	}, nil
}

// CheckSeats verifies that every seat exists in the layout and is not
// preseeded by the catalog. Seats held by bookings are left to the
// ledger's own conflict check.
//
// Returns:
//   - domain.Movie, domain.Showtime: the resolved showtime.
//   - error: showtimes.ErrMovieNotFound or showtimes.ErrShowtimeNotFound.
//   - error: showtimes.SeatsNotFoundError or showtimes.SeatsUnavailableError.
func (s *Service) CheckSeats(ctx context.Context, movieID, showtimeID int64, seatIDs []int) (domain.Movie, domain.Showtime, error) {
	const op = "service.showtimes.CheckSeats"

	m, st, err := s.Showtime(ctx, movieID, showtimeID)
	if err != nil {
		return domain.Movie{}, domain.Showtime{}, err
	}

	sel := seatmap.NewSelection(seatmap.Build(st.Layout, st.Preseeded, nil))
	if err := applySeats(sel.Select, seatIDs); err != nil {
		return domain.Movie{}, domain.Showtime{}, fmt.Errorf("%s: %w", op, err)
	}

	return m, st, nil
}

// InvalidateSeatMap drops the cached seat map of a showtime.
func (s *Service) InvalidateSeatMap(ctx context.Context, key domain.ShowtimeKey) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.InvalidateShowtime(ctx, key)
}

func (s *Service) buildSeatMap(m domain.Movie, st domain.Showtime, booked []int) SeatMap {
	grid := seatmap.Build(st.Layout, st.Preseeded, booked)

	return SeatMap{
		MovieID:    m.ID,
		ShowtimeID: st.ID,
		MovieTitle: m.Title,
		Time:       st.Time,
		Price:      st.Price,
		Layout:     st.Layout,
		Available:  grid.Available(),
		Seats:      grid.Seats,
	}
}

// applySeats feeds every seat to apply and collects the failures by kind.
func applySeats(apply func(int) error, seatIDs []int) error {
	var missing, booked []int

	for _, id := range seatIDs {
		err := apply(id)
		switch {
		case err == nil:
		case errors.Is(err, seatmap.ErrSeatOutOfRange):
			missing = append(missing, id)
		case errors.Is(err, seatmap.ErrSeatBooked):
			booked = append(booked, id)
		default:
			return err
		}
	}

	if len(missing) > 0 {
		return SeatsNotFoundError{SeatIDs: missing}
	}

	if len(booked) > 0 {
		return SeatsUnavailableError{SeatIDs: booked}
	}

	return nil
}

func showtimeKey(m domain.Movie, st domain.Showtime) domain.ShowtimeKey {
	return domain.ShowtimeKey{MovieID: m.ID, ShowtimeID: st.ID}
}

func translateCatalogErr(err error) error {
	switch {
	case errors.Is(err, catalog.ErrMovieNotFound):
		return ErrMovieNotFound
	case errors.Is(err, catalog.ErrShowtimeNotFound):
		return ErrShowtimeNotFound
	default:
		return err
	}
}
