package controllers

import (
	"net/http"
	"time"

	"github.com/couchproof/couchproof-backend/api/middleware"
	"github.com/couchproof/couchproof-backend/api/responses"
	"github.com/couchproof/couchproof-backend/internal/stats"
	"github.com/couchproof/couchproof-backend/pkg/logger"
)

// StatsGet returns the aggregated summary for the authenticated user.
func StatsGet(svc *stats.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := middleware.UserUUIDFromContext(ctx)

		summary, err := svc.Summary(ctx, userID, time.Now().UTC())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}
