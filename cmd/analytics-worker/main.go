package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/forkful/forkful-backend/internal/analytics/router"
	"github.com/forkful/forkful-backend/internal/analytics/worker"
	"github.com/forkful/forkful-backend/internal/analytics/writer"
	"github.com/forkful/forkful-backend/pkg/bigquery"
	"github.com/forkful/forkful-backend/pkg/config"
	"github.com/forkful/forkful-backend/pkg/logger"
	"github.com/forkful/forkful-backend/pkg/outbox/idempotency"
	"github.com/forkful/forkful-backend/pkg/pubsub"
	"github.com/forkful/forkful-backend/pkg/redis"
)

const idempotencyTTL = 72 * time.Hour

func main() {
	logg := logger.New(logger.Options{ServiceName: "analytics-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "analytics-worker"

	logg = logger.New(logger.Options{
		ServiceName: "analytics-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	bigqueryClient, err := bigquery.NewClient(context.Background(), cfg.GCP, cfg.BigQuery, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap bigquery", err)
		os.Exit(1)
	}
	defer func() {
		if err := bigqueryClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing bigquery client", err)
		}
	}()

	eventWriter, err := writer.New(bigqueryClient, writer.Config{
		DispatchEventsTable: cfg.BigQuery.DispatchEventsTable,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create bigquery writer", err)
		os.Exit(1)
	}

	eventRouter, err := router.NewRouter(eventWriter, logg, nil)
	if err != nil {
		logg.Error(context.Background(), "failed to create analytics router", err)
		os.Exit(1)
	}

	manager, err := idempotency.NewManager(redisClient, idempotencyTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create idempotency manager", err)
		os.Exit(1)
	}

	service, err := worker.NewService(pubsubClient.AnalyticsSubscription(), eventRouter, manager, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create analytics worker", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting analytics worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "analytics worker stopped unexpectedly", err)
		os.Exit(1)
	}

	if err := eventWriter.Flush(ctx); err != nil {
		logg.Error(ctx, "failed to flush buffered analytics rows", err)
	}

	logg.Info(ctx, "analytics worker shutting down gracefully")
}
