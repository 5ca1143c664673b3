package controllers

import (
	"net/http"

	"github.com/couchproof/couchproof-backend/api/middleware"
	"github.com/couchproof/couchproof-backend/api/responses"
	"github.com/couchproof/couchproof-backend/internal/users"
	pkgerrors "github.com/couchproof/couchproof-backend/pkg/errors"
	"github.com/couchproof/couchproof-backend/pkg/logger"
	"github.com/google/uuid"
)

// Me returns the authenticated user's profile.
func Me(svc *users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID := middleware.UserUUIDFromContext(ctx)
		if userID == uuid.Nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user identity"))
			return
		}

		profile, err := svc.Profile(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}
