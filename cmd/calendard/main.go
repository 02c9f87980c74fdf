package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AyushSGithub24/Custom-Event-Calendar/internal/gsync"
	"github.com/AyushSGithub24/Custom-Event-Calendar/internal/httpapi"
	"github.com/AyushSGithub24/Custom-Event-Calendar/internal/recurrence"
	"github.com/AyushSGithub24/Custom-Event-Calendar/internal/scheduler"
	"github.com/AyushSGithub24/Custom-Event-Calendar/internal/storage"
	"github.com/AyushSGithub24/Custom-Event-Calendar/internal/storage/memory"
	"github.com/AyushSGithub24/Custom-Event-Calendar/internal/storage/postgres"
)

func main() {
	addr := flag.String("addr", envOr("LISTEN_ADDR", ":8080"), "listen address")
	storeKind := flag.String("store", envOr("STORE", "memory"), "event store backend (memory or postgres)")
	logLevel := flag.String("log-level", envOr("LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
	flag.Parse()

	logger := newLogger(*logLevel)

	if err := run(*addr, *storeKind, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(addr, storeKind string, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := openStore(ctx, storeKind, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	engine := recurrence.NewEngine()
	defer engine.Close()

	opts := scheduler.Options{Engine: engine, Logger: logger}
	if mirror, err := openMirror(ctx, logger); err != nil {
		return err
	} else if mirror != nil {
		opts.Mirror = mirror
	}

	svc := scheduler.NewService(store, opts)

	server := &http.Server{
		Addr:              addr,
		Handler:           httpapi.NewRouter(svc, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr, "store", storeKind)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, kind string, logger *slog.Logger) (storage.Store, func(), error) {
	switch kind {
	case "memory":
		return memory.New(), func() {}, nil
	case "postgres":
		pool, err := postgres.NewPool(ctx, postgres.ConfigFromEnv())
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if _, err := pool.Exec(ctx, postgres.Schema); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("apply schema: %w", err)
		}
		logger.Info("connected to postgres")
		return postgres.New(pool), pool.Close, nil
	default:
		return nil, nil, errors.New("unknown store backend: " + kind)
	}
}

// openMirror builds the Google Calendar mirror when OAuth credentials are
// present in the environment, and returns nil otherwise.
func openMirror(ctx context.Context, logger *slog.Logger) (*gsync.Mirror, error) {
	creds := gsync.Credentials{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RefreshToken: os.Getenv("GOOGLE_REFRESH_TOKEN"),
	}
	if creds.ClientID == "" || creds.ClientSecret == "" || creds.RefreshToken == "" {
		return nil, nil
	}
	mirror, err := gsync.NewMirror(ctx, gsync.NewAuthenticatedClient(ctx, creds))
	if err != nil {
		return nil, fmt.Errorf("google calendar client: %w", err)
	}
	logger.Info("google calendar mirroring enabled")
	return mirror, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
