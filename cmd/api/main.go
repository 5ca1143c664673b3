package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchproof/couchproof-backend/api/routes"
	"github.com/couchproof/couchproof-backend/internal/achievements"
	"github.com/couchproof/couchproof-backend/internal/activities"
	"github.com/couchproof/couchproof-backend/internal/aigen"
	"github.com/couchproof/couchproof-backend/internal/gear"
	"github.com/couchproof/couchproof-backend/internal/stats"
	syncsvc "github.com/couchproof/couchproof-backend/internal/sync"
	"github.com/couchproof/couchproof-backend/internal/users"
	"github.com/couchproof/couchproof-backend/internal/webhooks"
	"github.com/couchproof/couchproof-backend/pkg/auth/session"
	"github.com/couchproof/couchproof-backend/pkg/config"
	"github.com/couchproof/couchproof-backend/pkg/db"
	"github.com/couchproof/couchproof-backend/pkg/logger"
	"github.com/couchproof/couchproof-backend/pkg/metrics"
	"github.com/couchproof/couchproof-backend/pkg/migrate"
	"github.com/couchproof/couchproof-backend/pkg/openai"
	"github.com/couchproof/couchproof-backend/pkg/redis"
	"github.com/couchproof/couchproof-backend/pkg/strava"
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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	stravaClient, err := strava.NewClient(cfg.Strava, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create strava client", err)
		os.Exit(1)
	}

	openaiClient, err := openai.NewClient(cfg.OpenAI)
	if err != nil {
		logg.Error(context.Background(), "failed to create openai client", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	activityRepo := activities.NewRepository(dbClient.DB())
	statsRepo := stats.NewRepository(dbClient.DB())
	gearRepo := gear.NewRepository(dbClient.DB())
	achievementRepo := achievements.NewRepository(dbClient.DB())
	aigenRepo := aigen.NewRepository(dbClient.DB())

	userService := users.NewService(userRepo, stravaClient, logg)
	activityService := activities.NewService(activityRepo, logg)
	statsService := stats.NewService(statsRepo, activityRepo, logg, cfg.Sync.MaxActivities)
	achievementService := achievements.NewService(achievementRepo, statsService, activityRepo, dbClient, logg)
	aigenService := aigen.NewService(aigenRepo, activityRepo, statsService, openaiClient, logg, cfg.AI)

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
	webhookService := webhooks.NewService(userRepo, activityRepo, syncService, redisClient, logg)

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

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:       cfg,
			Logger:       logg,
			DB:           dbClient,
			Redis:        redisClient,
			Sessions:     sessionManager,
			Users:        userService,
			Activities:   activityService,
			Stats:        statsService,
			Achievements: achievementService,
			AIGen:        aigenService,
			Sync:         syncService,
			Webhooks:     webhookService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
