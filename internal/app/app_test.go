package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/cinebook/internal/config"
	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/ledger"
	"github.com/kirinyoku/cinebook/internal/lib/logger/handlers/slogdiscard"
	"github.com/kirinyoku/cinebook/internal/repository"
	"github.com/kirinyoku/cinebook/internal/repository/memory"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Env:         config.EnvLocal,
		StoreDriver: config.StoreMemory,
		Server:      config.ServerConfig{Host: "localhost", Port: 0},
	}
}

func TestNew_MemoryStore(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), slogdiscard.NewDiscardLogger())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	a.httpServer.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/movies/1/showtimes/1/seats", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNew_BadCatalogPath(t *testing.T) {
	cfg := memoryConfig()
	cfg.CatalogPath = t.TempDir() + "/missing.json"

	_, err := New(context.Background(), cfg, slogdiscard.NewDiscardLogger())
	require.Error(t, err)
}

func TestLoadLedger_ResetsCorruptState(t *testing.T) {
	ctx := context.Background()
	logger := slogdiscard.NewDiscardLogger()

	store := memory.New()
	store.Put(repository.EntryBookings, []byte(`{broken`))
	store.Put(repository.EntryBookedSeats, []byte(`{}`))

	led := ledger.New(store, logger)
	require.NoError(t, loadLedger(ctx, led, logger))
	assert.Empty(t, led.ListBookings())

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(snap.Bookings))
}

type unreachableStore struct{}

func (unreachableStore) Load(context.Context) (repository.Snapshot, error) {
	return repository.Snapshot{}, repository.ErrUnavailable
}

func (unreachableStore) Save(context.Context, repository.Snapshot) error {
	return repository.ErrUnavailable
}

func TestLoadLedger_FailsWhenStoreIsDown(t *testing.T) {
	logger := slogdiscard.NewDiscardLogger()
	led := ledger.New(unreachableStore{}, logger)

	err := loadLedger(context.Background(), led, logger)
	assert.ErrorIs(t, err, ledger.ErrPersistence)
}

// readOnlyStore serves stored entries but rejects every write.
type readOnlyStore struct {
	*memory.Store
}

func (readOnlyStore) Save(context.Context, repository.Snapshot) error {
	return repository.ErrUnavailable
}

func TestLoadLedger_KeepsLedgerWhenIndexRepairIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	logger := slogdiscard.NewDiscardLogger()

	store := readOnlyStore{Store: memory.New()}
	store.Put(repository.EntryBookings, []byte(
		`[{"bookingId":"a","movieId":1,"showtimeId":1,"selectedSeats":[3,4],"totalPrice":20,"movieTitle":"M","showtime":"1:00 PM"}]`))
	store.Put(repository.EntryBookedSeats, []byte(`{"1-1":[3]}`))

	led := ledger.New(store, logger)
	require.NoError(t, loadLedger(ctx, led, logger))

	assert.Len(t, led.ListBookings(), 1)
	assert.True(t, led.IsSeatBooked(domain.ShowtimeKey{MovieID: 1, ShowtimeID: 1}, 4))

	err := led.Flush(ctx)
	assert.ErrorIs(t, err, ledger.ErrPersistence, "the repaired index is still pending")
}
