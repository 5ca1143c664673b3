package controllers

import (
	"net/http"
	"time"

	"github.com/couchproof/couchproof-backend/api/middleware"
	"github.com/couchproof/couchproof-backend/api/responses"
	"github.com/couchproof/couchproof-backend/internal/achievements"
	"github.com/couchproof/couchproof-backend/pkg/logger"
)

// AchievementsList returns the catalog with unlock state and progress.
func AchievementsList(svc *achievements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := middleware.UserUUIDFromContext(ctx)

		list, err := svc.List(ctx, userID, time.Now().UTC())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"achievements": list})
	}
}

// AchievementsCheck evaluates the catalog and returns newly unlocked entries.
func AchievementsCheck(svc *achievements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := middleware.UserUUIDFromContext(ctx)

		result, err := svc.Check(ctx, userID, time.Now().UTC())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
