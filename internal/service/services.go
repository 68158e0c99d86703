package service

import (
	"log/slog"

	"github.com/kirinyoku/cinebook/internal/catalog"
	"github.com/kirinyoku/cinebook/internal/ledger"
	redis "github.com/kirinyoku/cinebook/internal/repository/redis"
	"github.com/kirinyoku/cinebook/internal/service/booking"
	"github.com/kirinyoku/cinebook/internal/service/showtimes"
)

type Services struct {
	Showtimes *showtimes.Service
	Booking   *booking.Service
}

type Config struct {
	Showtimes showtimes.Config
}

// NewServices wires the services. cache may be nil.
func NewServices(
	cat *catalog.Catalog,
	led *ledger.Ledger,
	cache *redis.Cache,
	logger *slog.Logger,
	cfg Config,
) *Services {
	st := showtimes.New(cat, led, cache, cfg.Showtimes)

	return &Services{
		Showtimes: st,
		Booking:   booking.New(st, led, logger),
	}
}
