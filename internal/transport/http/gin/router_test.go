package httpgin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/cinebook/internal/catalog"
	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/ledger"
	"github.com/kirinyoku/cinebook/internal/lib/logger/handlers/slogdiscard"
	"github.com/kirinyoku/cinebook/internal/repository"
	"github.com/kirinyoku/cinebook/internal/repository/memory"
	redisrepo "github.com/kirinyoku/cinebook/internal/repository/redis"
	"github.com/kirinyoku/cinebook/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type readOnlyStore struct{}

func (readOnlyStore) Load(context.Context) (repository.Snapshot, error) {
	return repository.Snapshot{}, nil
}

func (readOnlyStore) Save(context.Context, repository.Snapshot) error {
	return repository.ErrUnavailable
}

// oneShotSubscriber delivers its changes and ends the stream.
type oneShotSubscriber struct {
	changes []redisrepo.ShowtimeChange
}

func (s oneShotSubscriber) Subscribe(ctx context.Context, handler func(ctx context.Context, change redisrepo.ShowtimeChange)) error {
	for _, c := range s.changes {
		handler(ctx, c)
	}
	return nil
}

type testServer struct {
	router *gin.Engine
	ledger *ledger.Ledger
}

func newTestServer(t *testing.T, store ledger.Store, idem *redisrepo.IdempotencyStore, events ChangeSubscriber) *testServer {
	t.Helper()

	cat, err := catalog.Default()
	require.NoError(t, err)

	return newTestServerWithCatalog(t, cat, store, idem, events)
}

func newTestServerWithCatalog(
	t *testing.T,
	cat *catalog.Catalog,
	store ledger.Store,
	idem *redisrepo.IdempotencyStore,
	events ChangeSubscriber,
) *testServer {
	t.Helper()

	logger := slogdiscard.NewDiscardLogger()

	led := ledger.New(store, logger)
	require.NoError(t, led.Load(context.Background()))

	svcs := service.NewServices(cat, led, nil, logger, service.Config{})

	return &testServer{
		router: NewRouter(svcs, idem, events, logger),
		ledger: led,
	}
}

func (s *testServer) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t, memory.New(), nil, nil)

	w := s.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_Movies(t *testing.T) {
	s := newTestServer(t, memory.New(), nil, nil)

	w := s.do(http.MethodGet, "/movies", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	movies := decode[[]MovieResponse](t, w)
	assert.Len(t, movies, 4)
	assert.Empty(t, movies[0].Showtimes)

	tag := w.Header().Get("ETag")
	require.NotEmpty(t, tag)

	w = s.do(http.MethodGet, "/movies", "", map[string]string{"If-None-Match": tag})
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.String())

	w = s.do(http.MethodGet, "/movies/2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	movie := decode[MovieResponse](t, w)
	assert.Equal(t, "Orbitfall", movie.Title)
	assert.Len(t, movie.Showtimes, 3)

	tests := []struct {
		path string
		code int
	}{
		{path: "/movies/abc", code: http.StatusBadRequest},
		{path: "/movies/-1", code: http.StatusBadRequest},
		{path: "/movies/99", code: http.StatusNotFound},
		{path: "/movies/1/showtimes/4/seats", code: http.StatusNotFound},
		{path: "/movies/1/showtimes/x/seats", code: http.StatusBadRequest},
	}
	for _, tt := range tests {
		w := s.do(http.MethodGet, tt.path, "", nil)
		assert.Equal(t, tt.code, w.Code, tt.path)
	}
}

func TestRouter_SeatMapAndQuote(t *testing.T) {
	s := newTestServer(t, memory.New(), nil, nil)

	w := s.do(http.MethodGet, "/movies/1/showtimes/1/seats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))

	sm := decode[SeatMapResponse](t, w)
	require.Len(t, sm.Rows, 8)
	assert.Len(t, sm.Rows[0], 10)
	assert.Equal(t, 75, sm.Available)
	assert.Equal(t, 13, sm.Rows[1][2].ID)

	w = s.do(http.MethodPost, "/movies/1/showtimes/1/quote", `{"seats":[1,2,1,5]}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	q := decode[QuoteResponse](t, w)
	assert.Equal(t, []int{2, 5}, q.Seats)
	assert.True(t, q.Total.Equal(decimal.NewFromInt(300)), "total %s", q.Total)

	w = s.do(http.MethodPost, "/movies/1/showtimes/1/quote", `{"seats":[3]}`, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, []int{3}, decode[ErrorResponse](t, w).SeatIDs)

	w = s.do(http.MethodPost, "/movies/1/showtimes/1/quote", `{"seats":[81]}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_BookingLifecycle(t *testing.T) {
	s := newTestServer(t, memory.New(), nil, nil)

	before := s.do(http.MethodGet, "/movies/1/showtimes/3/seats", "", nil)
	require.Equal(t, http.StatusOK, before.Code)

	w := s.do(http.MethodPost, "/bookings", `{"movie_id":1,"showtime_id":3,"seats":[11,12]}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode[CreateBookingResponse](t, w)
	assert.True(t, created.Persisted)
	assert.Empty(t, created.Warning)
	assert.NotEmpty(t, created.Booking.BookingID)
	assert.Equal(t, "The Last Projectionist", created.Booking.MovieTitle)
	assert.True(t, created.Booking.TotalPrice.Equal(decimal.NewFromInt(440)))

	after := s.do(http.MethodGet, "/movies/1/showtimes/3/seats", "", map[string]string{
		"If-None-Match": before.Header().Get("ETag"),
	})
	require.Equal(t, http.StatusOK, after.Code, "seat map changed, etag must not match")
	assert.Equal(t, 78, decode[SeatMapResponse](t, after).Available)

	w = s.do(http.MethodPost, "/bookings", `{"movie_id":1,"showtime_id":3,"seats":[12,13]}`, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, []int{12}, decode[ErrorResponse](t, w).SeatIDs)

	w = s.do(http.MethodGet, "/bookings", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]BookingResponse](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, []int{11, 12}, list[0].SelectedSeats)

	id := created.Booking.BookingID

	w = s.do(http.MethodGet, "/bookings/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, decode[BookingResponse](t, w).BookingID)

	w = s.do(http.MethodDelete, "/bookings/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"cancelled":true,"persisted":true}`, w.Body.String())

	w = s.do(http.MethodDelete, "/bookings/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"cancelled":false,"persisted":true}`, w.Body.String())

	w = s.do(http.MethodGet, "/bookings/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_CreateBookingValidation(t *testing.T) {
	s := newTestServer(t, memory.New(), nil, nil)

	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "not json", body: `{`, code: http.StatusBadRequest},
		{name: "missing seats", body: `{"movie_id":1,"showtime_id":1}`, code: http.StatusBadRequest},
		{name: "missing movie id", body: `{"showtime_id":1,"seats":[5]}`, code: http.StatusBadRequest},
		{name: "negative showtime id", body: `{"movie_id":1,"showtime_id":-1,"seats":[5]}`, code: http.StatusBadRequest},
		{name: "movie id zero not in catalog", body: `{"movie_id":0,"showtime_id":1,"seats":[5]}`, code: http.StatusNotFound},
		{name: "empty seats", body: `{"movie_id":1,"showtime_id":1,"seats":[]}`, code: http.StatusBadRequest},
		{name: "zero seat", body: `{"movie_id":1,"showtime_id":1,"seats":[0]}`, code: http.StatusBadRequest},
		{name: "duplicate seats", body: `{"movie_id":1,"showtime_id":1,"seats":[5,5]}`, code: http.StatusBadRequest},
		{name: "unknown movie", body: `{"movie_id":9,"showtime_id":1,"seats":[5]}`, code: http.StatusNotFound},
		{name: "preseeded seat", body: `{"movie_id":1,"showtime_id":1,"seats":[3]}`, code: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/bookings", tt.body, nil)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
		})
	}

	assert.Empty(t, s.ledger.ListBookings())
}

func TestRouter_CreateBookingWithZeroIDs(t *testing.T) {
	cat, err := catalog.Load(strings.NewReader(
		`{"movies":[{"id":0,"title":"Zero","showtimes":[{"id":0,"time":"9:00 AM","price":10,"seats":{"layout":{"rows":1,"columns":4}}}]}]}`))
	require.NoError(t, err)

	s := newTestServerWithCatalog(t, cat, memory.New(), nil, nil)

	w := s.do(http.MethodGet, "/movies/0/showtimes/0/seats", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/bookings", `{"movie_id":0,"showtime_id":0,"seats":[2,3]}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode[CreateBookingResponse](t, w)
	assert.Equal(t, int64(0), resp.Booking.MovieID)
	assert.Equal(t, "20", resp.Booking.TotalPrice.String())
	assert.True(t, s.ledger.IsSeatBooked(domain.ShowtimeKey{}, 3))
}

func TestRouter_IdempotentCreate(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	s := newTestServer(t, memory.New(), redisrepo.NewIdempotencyStore(rdb, time.Hour), nil)
	headers := map[string]string{"Idempotency-Key": "req-1"}
	body := `{"movie_id":2,"showtime_id":4,"seats":[1]}`

	first := s.do(http.MethodPost, "/bookings", body, headers)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	assert.Equal(t, "req-1", first.Header().Get("Idempotency-Key"))

	second := s.do(http.MethodPost, "/bookings", body, headers)
	require.Equal(t, http.StatusCreated, second.Code, second.Body.String())
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	assert.Len(t, s.ledger.ListBookings(), 1)

	// a failed attempt releases its key
	conflict := s.do(http.MethodPost, "/bookings", body, map[string]string{"Idempotency-Key": "req-2"})
	require.Equal(t, http.StatusConflict, conflict.Code)
	assert.False(t, mr.Exists(redisrepo.KeyIdemBooking("req-2")))
}

func TestRouter_PersistenceFailureIsAWarning(t *testing.T) {
	s := newTestServer(t, readOnlyStore{}, nil, nil)

	w := s.do(http.MethodPost, "/bookings", `{"movie_id":1,"showtime_id":3,"seats":[1]}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode[CreateBookingResponse](t, w)
	assert.False(t, created.Persisted)
	assert.NotEmpty(t, created.Warning)

	w = s.do(http.MethodDelete, "/bookings/"+created.Booking.BookingID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	cancelled := decode[CancelBookingResponse](t, w)
	assert.True(t, cancelled.Cancelled)
	assert.False(t, cancelled.Persisted)
}

func TestRouter_Events(t *testing.T) {
	s := newTestServer(t, memory.New(), nil, nil)

	w := s.do(http.MethodGet, "/events", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	s = newTestServer(t, memory.New(), nil, oneShotSubscriber{changes: []redisrepo.ShowtimeChange{
		{Type: "showtime_changed", MovieID: 1, ShowtimeID: 2, TsUnix: 1},
	}})

	w = s.do(http.MethodGet, "/events", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "event:showtime_changed")
	assert.Contains(t, w.Body.String(), `"showtime_id":2`)
}

func TestETagMatches(t *testing.T) {
	tag := `W/"abc"`

	assert.True(t, etagMatches(`W/"abc"`, tag))
	assert.True(t, etagMatches(`"abc"`, tag))
	assert.True(t, etagMatches(`"x", W/"abc"`, tag))
	assert.True(t, etagMatches(`*`, tag))
	assert.False(t, etagMatches(`"abd"`, tag))
	assert.False(t, etagMatches(``, tag))
}
