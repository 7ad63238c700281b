// Command portal is a command-line client for the rental portal. It keeps
// the signed-in session between invocations and prints what the current
// role can see.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/elobenin/rental-portal/internal/core/domain"
	"github.com/elobenin/rental-portal/internal/core/ports"
	"github.com/elobenin/rental-portal/internal/core/service"
	"github.com/elobenin/rental-portal/internal/infrastructure/backend"
	redisdb "github.com/elobenin/rental-portal/internal/infrastructure/db/redis"
	"github.com/elobenin/rental-portal/internal/infrastructure/kv"
	"github.com/elobenin/rental-portal/internal/pkg/config"
	"github.com/elobenin/rental-portal/pkg/logger"
)

const usage = `usage: portal <command> [flags]

commands:
  register      create an account and sign in
  login         sign in
  logout        sign out and forget the stored session
  whoami        print the current session
  nav           print the navigation for the current session
  capabilities  list what the current role unlocks
  profile       update profile fields
  role          switch role (owner, tenant, none)
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cfg, err := config.LoadClient(ctx)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Output: stderr, NoCaller: true})

	lifecycle, cleanup, err := newLifecycle(ctx, cfg, log)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer cleanup()

	if err := lifecycle.Start(ctx); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	cli := &cli{lifecycle: lifecycle, out: stdout}
	if err := cli.dispatch(ctx, args[0], args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(stderr, usage)
			return 2
		}
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

// newLifecycle wires the configured store and backend.
func newLifecycle(ctx context.Context, cfg *config.ClientConfig, log zerolog.Logger) (*service.SessionLifecycle, func(), error) {
	cleanup := func() {}

	var medium ports.KeyValueStore
	switch cfg.Store {
	case "memory":
		medium = kv.NewMemory()
	case "redis":
		client, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() { _ = client.Close() }
		medium = redisdb.NewStorage(client, cfg.Profile, 0)
	default:
		file, err := kv.NewFile(cfg.File, logger.Component("storage"))
		if err != nil {
			return nil, nil, err
		}
		log.Debug().Str("path", file.Path()).Msg("using session file")
		medium = file
	}

	var auth ports.AuthBackend
	switch cfg.Backend {
	case "http":
		auth = backend.NewHTTP(cfg.APIURL, nil)
	default:
		auth = backend.NewSimulated(service.NewTokenIssuer(cfg.JWTSecret, 0), backend.SimulatedOptions{
			AuthDelay:   cfg.AuthDelay,
			UpdateDelay: cfg.UpdateDelay,
		})
	}

	store := service.NewSessionStore(medium, cfg.Key, logger.Component("store"))
	lifecycle := service.NewSessionLifecycle(store, auth, logger.Component("session"), service.LifecycleOptions{
		OperationTimeout:  cfg.OperationTimeout,
		RevalidateOnStart: cfg.Revalidate,
		OnTransition: func(from, to domain.LifecycleState) {
			log.Debug().Str("from", string(from)).Str("to", string(to)).Msg("session transition")
		},
	})
	return lifecycle, cleanup, nil
}
