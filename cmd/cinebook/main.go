package main

import (
	"context"
	"log/slog"
	"os"

	_ "github.com/kirinyoku/cinebook/docs"
	"github.com/kirinyoku/cinebook/internal/app"
	"github.com/kirinyoku/cinebook/internal/config"
	"github.com/kirinyoku/cinebook/internal/lib/logger/handlers/slogpretty"
	"github.com/kirinyoku/cinebook/internal/lib/logger/sl"
)

// @title CineBook API
// @version 1.0
// @description Movie catalog, seat maps and a persisted booking ledger.
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.New()
	if err != nil {
		slog.Error("failed to load config", sl.Err(err))
		os.Exit(1)
	}

	logger := setupLogger(cfg.Env)
	logger.Info("starting cinebook", slog.String("env", cfg.Env), slog.String("store", cfg.StoreDriver))
	logger.Debug("debug messages are enabled")

	ctx := context.Background()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to create application", sl.Err(err))
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("application finished with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("application stopped")
}

func setupLogger(env string) *slog.Logger {
	var logger *slog.Logger

	switch env {
	case config.EnvLocal:
		logger = setupPrettySlog()
	case config.EnvDev:
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return logger
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	h := opts.NewPrettyHandler(os.Stdout)

	return slog.New(h)
}
