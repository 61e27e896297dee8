package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/forkful/forkful-backend/api/controllers"
	"github.com/forkful/forkful-backend/api/routes"
	"github.com/forkful/forkful-backend/internal/catalog"
	"github.com/forkful/forkful-backend/internal/dispatch"
	"github.com/forkful/forkful-backend/internal/notifications"
	"github.com/forkful/forkful-backend/internal/schedules"
	"github.com/forkful/forkful-backend/pkg/config"
	"github.com/forkful/forkful-backend/pkg/db"
	"github.com/forkful/forkful-backend/pkg/logger"
	"github.com/forkful/forkful-backend/pkg/metrics"
	"github.com/forkful/forkful-backend/pkg/migrate"
	"github.com/forkful/forkful-backend/pkg/outbox"
	"github.com/forkful/forkful-backend/pkg/pubsub"
	"github.com/forkful/forkful-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

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

	schedulesRepo := schedules.NewRepository(dbClient.DB())
	schedulesService, err := schedules.NewService(schedulesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create schedules service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	catalogCache, err := catalog.NewCache(redisClient, catalog.NewRepository(dbClient.DB()), logg, cfg.Catalog.CacheTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog cache", err)
		os.Exit(1)
	}

	notifier, err := dispatch.NewPubSubNotifier(pubsubClient.VendorPublisher())
	if err != nil {
		logg.Error(context.Background(), "failed to create vendor notifier", err)
		os.Exit(1)
	}

	location, err := cfg.Dispatch.Location()
	if err != nil {
		logg.Error(context.Background(), "failed to resolve dispatch timezone", err)
		os.Exit(1)
	}

	dispatchService, err := dispatch.NewService(dispatch.Params{
		Repo:              schedulesRepo,
		Tx:                dbClient,
		Outbox:            outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
		Notifier:          notifier,
		Logger:            logg,
		Metrics:           metrics.NewDispatchMetrics(prometheus.DefaultRegisterer),
		Location:          location,
		NotifyConcurrency: cfg.Dispatch.NotifyConcurrency,
		NotifyTimeout:     cfg.Dispatch.NotifyTimeout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatch service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	deps := map[string]controllers.Pinger{
		"database": dbClient,
		"redis":    redisClient,
		"pubsub":   pubsubClient,
	}

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, deps, schedulesService, notificationsService, dispatchService, catalogCache),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
