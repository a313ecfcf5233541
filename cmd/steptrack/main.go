package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"steptrack/internal/config"
	"steptrack/internal/core"
	"steptrack/internal/events"
	apphttp "steptrack/internal/http"
	applog "steptrack/internal/log"
	"steptrack/internal/storage"
	"steptrack/internal/tracker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig()).WithComponent("steptrack")
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	var (
		store storage.Store
		err   error
	)
	switch cfg.DataBackend {
	case "sqlite":
		store, err = storage.NewSQLiteStore(cfg.SQLiteDBPath)
	case "file":
		store, err = storage.NewFileStore(cfg.DataFilePath)
	default:
		store = storage.NewMemoryStore()
	}
	if err != nil {
		logger.Error("Failed to initialize store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("Initialized data backend", "backend", cfg.DataBackend)

	// Event publishing is optional: without a broker the tracker works
	// exactly the same, it just emits no audit events.
	var publisher tracker.Publisher
	if cfg.AMQPURL != "" {
		client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Event publishing disabled", "error", err)
		} else {
			defer client.Close()
			publisher = client
			logger.Info("Event publishing enabled", "exchange", cfg.AMQPExchange)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tr, err := tracker.New(ctx, tracker.Config{
		Store:     store,
		Publisher: publisher,
		Rules: core.Rules{
			TargetSteps: cfg.TargetSteps,
			Penalty:     core.Money{Units: cfg.PenaltyAmount},
		},
		Roster: cfg.Participants,
	})
	if err != nil {
		logger.Error("Failed to initialize tracker", "error", err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, tr, apphttp.Options{
		CurrencySymbol: cfg.CurrencySymbol,
		AdminPassword:  cfg.AdminPassword,
		SessionSecret:  cfg.SessionSecret,
		SessionTTL:     cfg.SessionTTL,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting steptrack server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
