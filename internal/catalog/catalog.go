package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/kirinyoku/cinebook/internal/domain"
)

//go:embed movies.json
var defaultMovies []byte

var (
	ErrMovieNotFound    = errors.New("movie not found")
	ErrShowtimeNotFound = errors.New("showtime not found")
)

type catalogFile struct {
	Movies []movieRecord `json:"movies"`
}

type movieRecord struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Genre       string           `json:"genre"`
	Duration    string           `json:"duration"`
	Rating      string           `json:"rating"`
	Description string           `json:"description"`
	Poster      string           `json:"poster"`
	Showtimes   []showtimeRecord `json:"showtimes"`
}

type showtimeRecord struct {
	ID    int64           `json:"id"`
	Time  string          `json:"time"`
	Price decimal.Decimal `json:"price"`
	Seats struct {
		Layout struct {
			Rows    int `json:"rows"`
			Columns int `json:"columns"`
		} `json:"layout"`
		Booked []int `json:"booked"`
	} `json:"seats"`
}

// Catalog is the immutable movie and showtime reference data. Every
// accessor returns copies, so callers cannot change what others read.
type Catalog struct {
	movies []domain.Movie
	byID   map[int64]int
}

// Default returns the catalog shipped with the binary.
func Default() (*Catalog, error) {
	const op = "catalog.Default"

	c, err := parse(defaultMovies)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return c, nil
}

func LoadFile(path string) (*Catalog, error) {
	const op = "catalog.LoadFile"

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, path, err)
	}

	return c, nil
}

func Load(r io.Reader) (*Catalog, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return parse(raw)
}

func parse(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{
		movies: make([]domain.Movie, 0, len(file.Movies)),
		byID:   make(map[int64]int, len(file.Movies)),
	}

	for _, mr := range file.Movies {
		if mr.ID < 0 {
			return nil, fmt.Errorf("negative movie id %d", mr.ID)
		}
		if _, dup := c.byID[mr.ID]; dup {
			return nil, fmt.Errorf("duplicate movie id %d", mr.ID)
		}

		m := domain.Movie{
			ID:          mr.ID,
			Title:       mr.Title,
			Genre:       mr.Genre,
			Duration:    mr.Duration,
			Rating:      mr.Rating,
			Description: mr.Description,
			Poster:      mr.Poster,
			Showtimes:   make([]domain.Showtime, 0, len(mr.Showtimes)),
		}

		seen := make(map[int64]struct{}, len(mr.Showtimes))
		for _, sr := range mr.Showtimes {
			if sr.ID < 0 {
				return nil, fmt.Errorf("movie %d: negative showtime id %d", mr.ID, sr.ID)
			}
			if _, dup := seen[sr.ID]; dup {
				return nil, fmt.Errorf("movie %d: duplicate showtime id %d", mr.ID, sr.ID)
			}
			seen[sr.ID] = struct{}{}

			st := domain.Showtime{
				ID:    sr.ID,
				Time:  sr.Time,
				Price: sr.Price,
				Layout: domain.SeatLayout{
					Rows:    sr.Seats.Layout.Rows,
					Columns: sr.Seats.Layout.Columns,
				},
				Preseeded: slices.Clone(sr.Seats.Booked),
			}

			if err := checkShowtime(st); err != nil {
				return nil, fmt.Errorf("movie %d showtime %d: %w", mr.ID, sr.ID, err)
			}

			m.Showtimes = append(m.Showtimes, st)
		}

		c.byID[m.ID] = len(c.movies)
		c.movies = append(c.movies, m)
	}

	return c, nil
}

func checkShowtime(st domain.Showtime) error {
	if st.Layout.Rows <= 0 || st.Layout.Columns <= 0 {
		return fmt.Errorf("invalid seat layout %dx%d", st.Layout.Rows, st.Layout.Columns)
	}

	if !st.Price.IsPositive() {
		return fmt.Errorf("price %s must be positive", st.Price)
	}

	capacity := st.Layout.Capacity()
	for _, seat := range st.Preseeded {
		if seat < 1 || seat > capacity {
			return fmt.Errorf("preseeded seat %d outside 1..%d", seat, capacity)
		}
	}

	return nil
}

func (c *Catalog) Movies() []domain.Movie {
	out := make([]domain.Movie, 0, len(c.movies))
	for _, m := range c.movies {
		out = append(out, cloneMovie(m))
	}
	return out
}

func (c *Catalog) Movie(id int64) (domain.Movie, error) {
	pos, ok := c.byID[id]
	if !ok {
		return domain.Movie{}, ErrMovieNotFound
	}

	return cloneMovie(c.movies[pos]), nil
}

// Showtime resolves a showtime together with the movie it belongs to.
func (c *Catalog) Showtime(movieID, showtimeID int64) (domain.Movie, domain.Showtime, error) {
	m, err := c.Movie(movieID)
	if err != nil {
		return domain.Movie{}, domain.Showtime{}, err
	}

	for _, st := range m.Showtimes {
		if st.ID == showtimeID {
			return m, st, nil
		}
	}

	return domain.Movie{}, domain.Showtime{}, ErrShowtimeNotFound
}

func cloneMovie(m domain.Movie) domain.Movie {
	cp := m
	cp.Showtimes = make([]domain.Showtime, len(m.Showtimes))
	for i, st := range m.Showtimes {
		st.Preseeded = slices.Clone(st.Preseeded)
		cp.Showtimes[i] = st
	}
	return cp
}
