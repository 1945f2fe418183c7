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

	"innkeep/internal/app/booking"
	appoutbox "innkeep/internal/app/outbox"
	"innkeep/internal/domain/pricing"
	"innkeep/internal/infra/broker/kafka"
	"innkeep/internal/infra/config"
	"innkeep/internal/infra/db/mongo"
	ginserver "innkeep/internal/infra/http/gin"
	"innkeep/internal/infra/obs"
	infraoutbox "innkeep/internal/infra/outbox"
	"innkeep/internal/infra/storage/memory"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	engine, err := pricing.NewEngine(cfg.PricingConfig())
	if err != nil {
		logger.Error("pricing configuration invalid", "error", err)
		os.Exit(1)
	}

	store, err := memory.NewCalendarStore(cfg.TotalCapacity)
	if err != nil {
		logger.Error("calendar store init failed", "error", err)
		os.Exit(1)
	}

	box, queue, ready := buildOutbox(ctx, cfg, logger)
	processor := &booking.Processor{
		Store:  store,
		Rates:  engine,
		Outbox: box,
		Logger: logger,
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			logger.Error("kafka producer init failed", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		worker := &infraoutbox.Worker{
			Queue:       queue,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
			Logger:      logger,
		}
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	} else {
		logger.Warn("KAFKA_BROKERS not set, events stay in the outbox")
	}

	handlers := ginserver.Handlers{
		Availability: ginserver.AvailabilityHandler{Processor: processor},
		Reservations: ginserver.ReservationHandler{
			Processor:              processor,
			DefaultDepositFraction: cfg.DepositFraction,
		},
		Idempotency: ginserver.Idempotency(memory.NewIdempotencyStore()),
	}
	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Ready: ready}, handlers)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "capacity", cfg.TotalCapacity, "currency", cfg.Currency)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

// buildOutbox selects the configured outbox backend. The readiness probe
// depends on the backend: mongo readiness pings the database.
func buildOutbox(ctx context.Context, cfg config.Config, logger *slog.Logger) (appoutbox.Outbox, infraoutbox.Queue, func() error) {
	if cfg.OutboxBackend == "mongo" {
		client, err := mongo.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			logger.Error("mongo connect failed", "error", err)
			os.Exit(1)
		}
		store := infraoutbox.NewStore(client.DB)
		return store, store, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(ctx)
		}
	}
	box := memory.NewOutbox()
	return box, box, func() error { return nil }
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
