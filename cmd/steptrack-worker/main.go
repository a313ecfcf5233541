package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"steptrack/internal/audit"
	"steptrack/internal/config"
	"steptrack/internal/events"
	applog "steptrack/internal/log"
)

// steptrack-worker consumes tracker events from the broker and appends
// them to a JSONL audit log, so there is a durable trail of every
// mutation independent of the app's own state snapshot.
func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig()).WithComponent("steptrack-worker")
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	auditLog, err := audit.Open(cfg.AuditLogPath)
	if err != nil {
		logger.Error("Failed to open audit log", "error", err, "path", cfg.AuditLogPath)
		os.Exit(1)
	}
	defer auditLog.Close()

	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Consuming tracker events", "queue", cfg.AMQPQueue, "audit_log", cfg.AuditLogPath)
		return client.Consume(gctx, func(event events.Event) error {
			if err := auditLog.Append(event); err != nil {
				logger.Error("Failed to append audit record", "error", err, "kind", event.Kind)
				return err
			}
			logger.Debug("Audit record written", "kind", event.Kind, "participant", event.Participant)
			return nil
		})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
