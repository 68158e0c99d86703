package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/cinebook/internal/domain"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	movies := c.Movies()
	require.Len(t, movies, 4)

	for _, m := range movies {
		assert.NotEmpty(t, m.Title)
		assert.NotEmpty(t, m.Showtimes)
	}

	m, st, err := c.Showtime(1, 1)
	require.NoError(t, err)
	assert.Equal(t, "The Last Projectionist", m.Title)
	assert.Equal(t, domain.SeatLayout{Rows: 8, Columns: 10}, st.Layout)
	assert.Equal(t, []int{3, 4, 15, 16, 27}, st.Preseeded)
	assert.True(t, st.Price.Equal(decimal.NewFromInt(150)))

	_, st, err = c.Showtime(2, 6)
	require.NoError(t, err)
	assert.True(t, st.Price.Equal(decimal.RequireFromString("250.5")))
}

func TestCatalog_NotFound(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	_, err = c.Movie(99)
	assert.ErrorIs(t, err, ErrMovieNotFound)

	_, _, err = c.Showtime(99, 1)
	assert.ErrorIs(t, err, ErrMovieNotFound)

	// showtime 4 belongs to movie 2
	_, _, err = c.Showtime(1, 4)
	assert.ErrorIs(t, err, ErrShowtimeNotFound)
}

func TestCatalog_ReturnsCopies(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	m, err := c.Movie(1)
	require.NoError(t, err)
	m.Title = "changed"
	m.Showtimes[0].Preseeded[0] = 80

	again, err := c.Movie(1)
	require.NoError(t, err)
	assert.Equal(t, "The Last Projectionist", again.Title)
	assert.Equal(t, 3, again.Showtimes[0].Preseeded[0])
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{
			name:    "not json",
			raw:     `{`,
			wantErr: "decode catalog",
		},
		{
			name:    "duplicate movie",
			raw:     `{"movies":[{"id":1},{"id":1}]}`,
			wantErr: "duplicate movie id 1",
		},
		{
			name: "duplicate showtime",
			raw: `{"movies":[{"id":1,"showtimes":[
				{"id":1,"price":1,"seats":{"layout":{"rows":1,"columns":1}}},
				{"id":1,"price":1,"seats":{"layout":{"rows":1,"columns":1}}}]}]}`,
			wantErr: "duplicate showtime id 1",
		},
		{
			name:    "empty layout",
			raw:     `{"movies":[{"id":1,"showtimes":[{"id":1,"price":1,"seats":{"layout":{"rows":0,"columns":5}}}]}]}`,
			wantErr: "invalid seat layout",
		},
		{
			name:    "negative price",
			raw:     `{"movies":[{"id":1,"showtimes":[{"id":1,"price":-1,"seats":{"layout":{"rows":1,"columns":5}}}]}]}`,
			wantErr: "must be positive",
		},
		{
			name:    "free showtime",
			raw:     `{"movies":[{"id":1,"showtimes":[{"id":1,"price":0,"seats":{"layout":{"rows":1,"columns":5}}}]}]}`,
			wantErr: "must be positive",
		},
		{
			name:    "negative movie id",
			raw:     `{"movies":[{"id":-1,"showtimes":[]}]}`,
			wantErr: "negative movie id",
		},
		{
			name:    "negative showtime id",
			raw:     `{"movies":[{"id":1,"showtimes":[{"id":-2,"price":1,"seats":{"layout":{"rows":1,"columns":5}}}]}]}`,
			wantErr: "negative showtime id",
		},
		{
			name:    "preseeded seat outside layout",
			raw:     `{"movies":[{"id":1,"showtimes":[{"id":1,"price":1,"seats":{"layout":{"rows":1,"columns":5},"booked":[6]}}]}]}`,
			wantErr: "outside 1..5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.raw))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.json")
	raw := `{"movies":[{"id":7,"title":"Short","showtimes":[{"id":70,"time":"6:00 PM","price":"9.99","seats":{"layout":{"rows":2,"columns":3},"booked":[1]}}]}]}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)

	m, st, err := c.Showtime(7, 70)
	require.NoError(t, err)
	assert.Equal(t, "Short", m.Title)
	assert.True(t, st.Price.Equal(decimal.RequireFromString("9.99")))
	assert.Equal(t, 6, st.Layout.Capacity())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
