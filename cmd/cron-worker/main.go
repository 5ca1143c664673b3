package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchproof/couchproof-backend/internal/activities"
	"github.com/couchproof/couchproof-backend/internal/aigen"
	"github.com/couchproof/couchproof-backend/internal/cron"
	"github.com/couchproof/couchproof-backend/internal/gear"
	"github.com/couchproof/couchproof-backend/internal/stats"
	syncsvc "github.com/couchproof/couchproof-backend/internal/sync"
	"github.com/couchproof/couchproof-backend/internal/users"
	"github.com/couchproof/couchproof-backend/pkg/config"
	"github.com/couchproof/couchproof-backend/pkg/db"
	"github.com/couchproof/couchproof-backend/pkg/logger"
	"github.com/couchproof/couchproof-backend/pkg/metrics"
	"github.com/couchproof/couchproof-backend/pkg/migrate"
	"github.com/couchproof/couchproof-backend/pkg/redis"
	"github.com/couchproof/couchproof-backend/pkg/strava"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stravaClient, err := strava.NewClient(cfg.Strava, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create strava client", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	activityRepo := activities.NewRepository(dbClient.DB())
	statsRepo := stats.NewRepository(dbClient.DB())
	gearRepo := gear.NewRepository(dbClient.DB())
	aigenRepo := aigen.NewRepository(dbClient.DB())

	syncMetrics := metrics.NewSyncMetrics(prometheus.DefaultRegisterer)
	syncService := syncsvc.NewService(
		userRepo,
		activityRepo,
		statsRepo,
		gearRepo,
		stravaClient,
		redisClient,
		syncMetrics,
		logg,
		cfg.Sync,
		cfg.Strava,
	)

	staleSyncJob, err := cron.NewStaleSyncJob(cron.StaleSyncJobParams{
		Logger: logg,
		Users:  userRepo,
		Syncer: syncService,
		MaxAge: cfg.Cron.StaleSyncAge,
		Batch:  cfg.Cron.StaleSyncBatch,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create stale sync job", err)
		os.Exit(1)
	}

	retentionJob, err := cron.NewAigenRetentionJob(cron.AigenRetentionJobParams{
		Logger:    logg,
		Repo:      aigenRepo,
		Retention: cfg.AI.RetentionDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create aigen retention job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron-worker"), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(staleSyncJob, retentionJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
