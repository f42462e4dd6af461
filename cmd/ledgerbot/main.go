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
	"golang.org/x/sync/errgroup"

	"ledgerbot/internal/bot"
	"ledgerbot/internal/config"
	"ledgerbot/internal/events"
	apphttp "ledgerbot/internal/http"
	"ledgerbot/internal/ledger"
	gsheet "ledgerbot/internal/ledger/google"
	mem "ledgerbot/internal/ledger/memory"
	"ledgerbot/internal/ledger/sqlite"
	"ledgerbot/internal/session"
	"ledgerbot/internal/vision"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store ledger.Store
	switch cfg.DataBackend {
	case "sheets":
		cli, err := gsheet.NewFromEnv(ctx, cfg.StoreTimeout)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		store = cli
		logger.Info("Initialized Google Sheets backend")
	case "sqlite":
		repo, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite store", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer repo.Close()
		store = repo
		logger.Info("Initialized SQLite backend", "path", cfg.SQLiteDBPath)
	default:
		store = mem.New()
		logger.Info("Initialized memory backend")
	}

	// Events are optional: without an AMQP URL the bot simply skips publishing.
	var publisher bot.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		logger.Info("Event publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Event publishing disabled - no AMQP_URL provided")
	}

	var classifier vision.Classifier
	if cfg.VisionEndpoint != "" {
		classifier = vision.NewHTTPClassifier(cfg.VisionEndpoint)
		logger.Info("Vision classifier enabled", "endpoint", cfg.VisionEndpoint)
	} else {
		logger.Info("Vision classifier disabled - no VISION_ENDPOINT provided")
	}

	machine := bot.New(session.NewStore(), store, publisher, classifier)
	replier := apphttp.NewReplyClient(cfg.ReplyEndpoint, cfg.ChannelAccessToken)
	srv := apphttp.NewServer(":"+cfg.Port, cfg.ChannelSecret, machine, replier)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting ledgerbot server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

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
