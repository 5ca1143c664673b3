package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchproof/couchproof-backend/api/controllers"
	"github.com/couchproof/couchproof-backend/api/middleware"
	"github.com/couchproof/couchproof-backend/internal/achievements"
	"github.com/couchproof/couchproof-backend/internal/activities"
	"github.com/couchproof/couchproof-backend/internal/aigen"
	"github.com/couchproof/couchproof-backend/internal/stats"
	syncsvc "github.com/couchproof/couchproof-backend/internal/sync"
	"github.com/couchproof/couchproof-backend/internal/users"
	"github.com/couchproof/couchproof-backend/internal/webhooks"
	"github.com/couchproof/couchproof-backend/pkg/config"
	"github.com/couchproof/couchproof-backend/pkg/db/models"
	"github.com/couchproof/couchproof-backend/pkg/logger"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           controllers.Pinger
	Redis        controllers.Pinger
	Sessions     middleware.SessionChecker
	Users        *users.Service
	Activities   *activities.Service
	Stats        *stats.Service
	Achievements *achievements.Service
	AIGen        *aigen.Service
	Sync         *syncsvc.Service
	Webhooks     *webhooks.Service
}

// NewRouter wires the full HTTP surface.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.FrontendURL),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(d.DB, d.Redis, logg))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Provider-facing endpoints: no bearer auth, Strava calls these.
	r.Route("/api/v1/webhooks/strava", func(r chi.Router) {
		r.Get("/", controllers.StravaWebhookVerify(cfg.Strava.VerifyToken, logg))
		r.Post("/", controllers.StravaWebhookEvent(d.Webhooks, logg))
	})
	r.Get("/api/v1/strava/callback", controllers.StravaCallback(d.Users, cfg.JWT, cfg.App, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))

		r.Get("/me", controllers.Me(d.Users, logg))

		r.Route("/strava", func(r chi.Router) {
			r.Get("/auth", controllers.StravaAuthURL(d.Users, cfg.JWT, logg))
			r.Post("/disconnect", controllers.StravaDisconnect(d.Users, logg))
			r.Post("/sync", controllers.StravaSync(d.Sync, logg))
			r.Post("/sync/full", controllers.StravaSyncFull(d.Sync, logg))
		})

		r.Route("/activities", func(r chi.Router) {
			r.Get("/", controllers.ActivitiesList(d.Activities, logg))
			r.Post("/", controllers.ActivityCreate(d.Activities, logg))
			r.Get("/{id}", controllers.ActivityGet(d.Activities, logg))
		})

		r.Get("/stats", controllers.StatsGet(d.Stats, logg))

		r.Route("/achievements", func(r chi.Router) {
			r.Get("/", controllers.AchievementsList(d.Achievements, logg))
			r.Post("/check", controllers.AchievementsCheck(d.Achievements, logg))
		})

		r.Route("/ai", func(r chi.Router) {
			r.Post("/roast", controllers.AIGenerate(d.AIGen, models.AIGenerationRoast, logg))
			r.Post("/hype", controllers.AIGenerate(d.AIGen, models.AIGenerationHype, logg))
			r.Post("/personality", controllers.AIGenerate(d.AIGen, models.AIGenerationPersonality, logg))
			r.Post("/activities/{id}/summary", controllers.AIActivitySummary(d.AIGen, logg))
		})
	})

	return r
}
