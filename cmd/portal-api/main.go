// @title        Rental Portal API
// @version      1.0
// @description  Accounts, sessions and role-gated views for the rental marketplace.
// @BasePath     /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/elobenin/rental-portal/internal/api"
	"github.com/elobenin/rental-portal/internal/api/handler"
	"github.com/elobenin/rental-portal/internal/core/service"
	mongodb "github.com/elobenin/rental-portal/internal/infrastructure/db/mongo"
	redisdb "github.com/elobenin/rental-portal/internal/infrastructure/db/redis"
	"github.com/elobenin/rental-portal/internal/pkg/config"
	"github.com/elobenin/rental-portal/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Service: "portal-api"})
		boot.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "portal-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	accountsRepo := mongodb.NewAccountRepository(db)
	if err := accountsRepo.EnsureIndexes(ctx); err != nil {
		return err
	}

	accounts := service.NewAccountService(
		accountsRepo,
		redisdb.NewRevocationList(rdb),
		service.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		logger.Component("accounts"),
	)

	e := api.NewRouter(api.Dependencies{
		Accounts: accounts,
		Checks: map[string]handler.PingFunc{
			"mongodb": func(ctx context.Context) error { return mongodb.Ping(ctx, mongoClient) },
			"redis":   func(ctx context.Context) error { return redisdb.Ping(ctx, rdb) },
		},
		Log:           logger.Component("http"),
		AuthRateLimit: cfg.AuthRateLimit,
	})

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("portal api listening")
	return serve(ctx, e, ":"+cfg.Port, log)
}

// serve runs e on addr until ctx ends, then shuts it down gracefully.
func serve(ctx context.Context, e *echo.Echo, addr string, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
