package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/couchproof/couchproof-backend/api/middleware"
	"github.com/couchproof/couchproof-backend/api/responses"
	syncsvc "github.com/couchproof/couchproof-backend/internal/sync"
	"github.com/couchproof/couchproof-backend/internal/users"
	"github.com/couchproof/couchproof-backend/pkg/auth"
	"github.com/couchproof/couchproof-backend/pkg/config"
	pkgerrors "github.com/couchproof/couchproof-backend/pkg/errors"
	"github.com/couchproof/couchproof-backend/pkg/logger"
	"github.com/google/uuid"
)

// StravaAuthURL returns the provider consent URL. The state parameter is a
// short-lived signed token carrying the requesting user id.
func StravaAuthURL(svc *users.Service, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := middleware.UserUUIDFromContext(ctx)

		state, err := auth.MintStateToken(jwtCfg, time.Now(), userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting state token"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"url": svc.AuthorizeURL(state)})
	}
}

// StravaCallback finishes the OAuth dance and redirects back to the app.
// Strava calls this directly, so errors land on the frontend as a query flag
// rather than a JSON body.
func StravaCallback(svc *users.Service, jwtCfg config.JWTConfig, appCfg config.AppConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		query := r.URL.Query()

		redirect := func(status string) {
			http.Redirect(w, r, appCfg.FrontendURL+"/settings?strava="+status, http.StatusFound)
		}

		if query.Get("error") != "" {
			// The athlete declined on Strava's consent screen.
			redirect("denied")
			return
		}

		userID, err := auth.ParseStateToken(jwtCfg, query.Get("state"))
		if err != nil {
			logg.Warn(ctx, "strava callback with invalid state")
			redirect("error")
			return
		}
		code := query.Get("code")
		if code == "" {
			redirect("error")
			return
		}

		if err := svc.Connect(ctx, userID, code); err != nil {
			logg.Error(logg.WithUserID(ctx, userID.String()), "strava connect failed", err)
			redirect("error")
			return
		}

		redirect("connected")
	}
}

// StravaDisconnect revokes the grant and clears tokens.
func StravaDisconnect(svc *users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := middleware.UserUUIDFromContext(ctx)

		if err := svc.Disconnect(ctx, userID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "disconnected"})
	}
}

// StravaSync runs an incremental sync pass for the authenticated user.
func StravaSync(svc *syncsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return syncHandler(svc.Incremental, logg)
}

// StravaSyncFull runs one capped batch of the long-lookback import. The
// client re-invokes while has_more is true.
func StravaSyncFull(svc *syncsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return syncHandler(svc.Full, logg)
}

func syncHandler(run func(ctx context.Context, userID uuid.UUID) (*syncsvc.ResultDTO, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := middleware.UserUUIDFromContext(ctx)

		result, err := run(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
