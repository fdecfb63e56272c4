package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hongminglow/holonet-be/internal/auth"
	"github.com/hongminglow/holonet-be/internal/bootstrap"
	"github.com/hongminglow/holonet-be/internal/config"
	"github.com/hongminglow/holonet-be/internal/logging"
	"github.com/hongminglow/holonet-be/internal/observability"
	"github.com/hongminglow/holonet-be/internal/server"
	postgres "github.com/hongminglow/holonet-be/internal/storage/postgres"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Info("no .env file found; relying on existing environment")
	}

	ctx := context.Background()
	store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("init database", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	if cfg.AdminEmail != "" {
		admin, err := bootstrap.EnsureAdmin(ctx, store, auth.NewPasswordHasher(cfg.BcryptCost), cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			logger.Error("bootstrap admin", "err", err)
			os.Exit(1)
		}
		logger.Info("bootstrap admin ready", "user_id", admin.ID, "email", admin.Email)
	}

	srv, err := server.New(cfg, server.Deps{
		Users:   store,
		Films:   store,
		DB:      store,
		Logger:  logger,
		Metrics: observability.NewMetrics(),
	})
	if err != nil {
		// A missing signing secret ends up here and is fatal at start.
		logger.Error("init server", "err", err)
		os.Exit(1)
	}

	go func() {
		logger.Info("holonet backend listening", "addr", cfg.HTTPAddress())
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "err", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("graceful shutdown error", "err", err)
	}
}
