package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/kirinyoku/cinebook/internal/catalog"
	"github.com/kirinyoku/cinebook/internal/config"
	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/ledger"
	"github.com/kirinyoku/cinebook/internal/lib/logger/sl"
	"github.com/kirinyoku/cinebook/internal/postgres"
	"github.com/kirinyoku/cinebook/internal/redis"
	"github.com/kirinyoku/cinebook/internal/repository/memory"
	postgresrepo "github.com/kirinyoku/cinebook/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/cinebook/internal/repository/redis"
	"github.com/kirinyoku/cinebook/internal/service"
	"github.com/kirinyoku/cinebook/internal/service/showtimes"
	httpgin "github.com/kirinyoku/cinebook/internal/transport/http/gin"
)

const (
	flushInterval   = 30 * time.Second
	shutdownTimeout = 5 * time.Second
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	ledger     *ledger.Ledger
	httpServer *http.Server
	closers    []func()
}

// backend is the set of storage-side components selected by STORE_DRIVER.
// Only the redis driver provides a cache, idempotency and change events.
type backend struct {
	store   ledger.Store
	cache   *redisrepo.Cache
	idem    *redisrepo.IdempotencyStore
	pubsub  *redisrepo.ShowtimesPubSub
	closers []func()
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.New"

	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	be, err := newBackend(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	led := ledger.New(be.store, logger)
	if err := loadLedger(ctx, led, logger); err != nil {
		closeAll(be.closers)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	services := service.NewServices(cat, led, be.cache, logger, service.Config{
		Showtimes: showtimes.Config{SeatMapTTL: cfg.SeatMapTTL},
	})

	led.OnChange(func(ctx context.Context, key domain.ShowtimeKey) {
		if err := services.Showtimes.InvalidateSeatMap(ctx, key); err != nil {
			logger.Warn("failed to invalidate seat map", slog.String("showtime", key.String()), sl.Err(err))
		}
	})

	var events httpgin.ChangeSubscriber
	if be.pubsub != nil {
		pubsub := be.pubsub
		led.OnChange(func(ctx context.Context, key domain.ShowtimeKey) {
			if err := pubsub.PublishShowtimeChanged(ctx, key); err != nil {
				logger.Warn("failed to publish showtime change", slog.String("showtime", key.String()), sl.Err(err))
			}
		})
		events = pubsub
	}

	if cfg.Env == config.EnvProd {
		gin.SetMode(gin.ReleaseMode)
	}

	router := httpgin.NewRouter(services, be.idem, events, logger)

	return &App{
		cfg:     cfg,
		logger:  logger,
		ledger:  led,
		closers: be.closers,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	defer closeAll(a.closers)

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Retry writes that failed while serving requests
	g.Go(func() error {
		ticker := time.NewTicker(flushInterval)
		defer ticker.Stop()

		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				if err := a.ledger.Flush(gCtx); err != nil {
					a.logger.Warn("ledger flush failed", sl.Err(err))
				}
			}
		}
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		shutdownErr := a.httpServer.Shutdown(ctx)

		if err := a.ledger.Close(ctx); err != nil {
			a.logger.Error("ledger was not persisted on shutdown", sl.Err(err))
			return errors.Join(shutdownErr, err)
		}

		return shutdownErr
	})

	return g.Wait()
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}

func newBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return &backend{store: memory.New()}, nil

	case config.StorePostgres:
		pool, err := postgres.New(ctx, postgres.Config{DSN: cfg.Postgres.DSN()})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}

		repo := postgresrepo.NewStore(pool).Ledger()
		if err := repo.Migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to migrate postgres: %w", err)
		}

		return &backend{store: repo, closers: []func(){pool.Close}}, nil

	default:
		rdb, err := redis.New(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}

		return &backend{
			store:   redisrepo.NewLedgerStore(rdb),
			cache:   redisrepo.NewCache(rdb),
			idem:    redisrepo.NewIdempotencyStore(rdb, cfg.IdemTTL),
			pubsub:  redisrepo.NewShowtimesPubSub(rdb),
			closers: []func(){func() { _ = rdb.Close() }},
		}, nil
	}
}

// loadLedger restores the ledger. Corrupt stored data is discarded so the
// app starts with an empty ledger instead of refusing to run. A repaired
// index that could not be written back is left for the flush loop.
func loadLedger(ctx context.Context, led *ledger.Ledger, logger *slog.Logger) error {
	err := led.Load(ctx)
	if err == nil {
		return nil
	}

	var pe *ledger.PersistenceError
	if errors.As(err, &pe) && pe.Loaded {
		logger.Warn("ledger loaded but its repaired index was not persisted, will retry", sl.Err(err))
		return nil
	}

	if !errors.Is(err, ledger.ErrCorruptState) {
		return err
	}

	logger.Error("stored bookings are corrupt, starting with an empty ledger", sl.Err(err))

	return led.Reset(ctx)
}

func closeAll(closers []func()) {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}
