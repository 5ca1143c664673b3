package controllers

import (
	"net/http"
	"time"

	"github.com/couchproof/couchproof-backend/api/middleware"
	"github.com/couchproof/couchproof-backend/api/responses"
	"github.com/couchproof/couchproof-backend/internal/aigen"
	pkgerrors "github.com/couchproof/couchproof-backend/pkg/errors"
	"github.com/couchproof/couchproof-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// AIGenerate produces text of the given type (roast, hype, personality) from
// the user's current stats.
func AIGenerate(svc *aigen.Service, genType string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := middleware.UserUUIDFromContext(ctx)

		out, err := svc.Generate(ctx, userID, genType, time.Now().UTC())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, out)
	}
}

// AIActivitySummary returns the cached per-activity summary, generating it on
// first request.
func AIActivitySummary(svc *aigen.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := middleware.UserUUIDFromContext(ctx)

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid activity id"))
			return
		}

		out, err := svc.ActivitySummary(ctx, userID, id, time.Now().UTC())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, out)
	}
}
