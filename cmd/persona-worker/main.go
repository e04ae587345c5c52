package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"finpersona/internal/amqp"
	"finpersona/internal/config"
	applog "finpersona/internal/log"
	"finpersona/internal/services"
	"finpersona/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	logger.Info("Starting persona-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var publisher services.AuditPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("AMQP audit publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP audit publishing disabled - no AMQP_URL provided")
	}

	personaSvc := services.NewPersonaService(repo, publisher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runBatch := func() {
		start := time.Now()
		outcomes, err := personaSvc.ClassifyAll(ctx)
		if err != nil {
			logger.Error("Batch classification failed", "error", err)
			return
		}
		var classified, unmatched, failed int
		for _, outcome := range outcomes {
			switch {
			case outcome.Err != nil:
				failed++
			case outcome.Result == nil:
				unmatched++
			default:
				classified++
			}
		}
		logger.Info("Batch classification complete",
			"users", len(outcomes),
			"classified", classified,
			"unmatched", unmatched,
			"failed", failed,
			"duration_ms", time.Since(start).Milliseconds())
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.BatchCronSpec, runBatch); err != nil {
		logger.Error("Invalid batch cron spec", "error", err, "spec", cfg.BatchCronSpec)
		os.Exit(1)
	}
	scheduler.Start()
	logger.Info("Batch scheduler started", "spec", cfg.BatchCronSpec)

	// One pass at startup so a fresh deployment has personas before the
	// first scheduled run.
	runBatch()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()

	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
		logger.Info("Worker shutdown complete")
	case <-time.After(30 * time.Second):
		logger.Warn("Shutdown timeout reached")
	}
}
