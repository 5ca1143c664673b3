package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/couchproof/couchproof-backend/api/responses"
	pkgerrors "github.com/couchproof/couchproof-backend/pkg/errors"
	"github.com/couchproof/couchproof-backend/pkg/logger"
	"github.com/couchproof/couchproof-backend/pkg/strava"
)

// WebhookProcessor handles decoded provider events.
type WebhookProcessor interface {
	HandleEvent(ctx context.Context, event *strava.WebhookEvent) error
}

// StravaWebhookVerify answers the subscription handshake: Strava sends
// hub.mode=subscribe with the configured verify token and expects the
// challenge echoed back.
func StravaWebhookVerify(verifyToken string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		query := r.URL.Query()

		if query.Get("hub.mode") != "subscribe" || query.Get("hub.verify_token") != verifyToken {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "webhook verification failed"))
			return
		}

		logg.Info(ctx, "strava webhook subscription verified")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"hub.challenge": query.Get("hub.challenge"),
		})
	}
}

// StravaWebhookEvent ingests one event delivery. The response is always 200:
// Strava disables subscriptions whose callbacks keep failing, so processing
// errors are logged and swallowed.
func StravaWebhookEvent(svc WebhookProcessor, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var event strava.WebhookEvent
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			logg.Warn(ctx, "undecodable webhook payload")
			w.WriteHeader(http.StatusOK)
			return
		}

		if err := svc.HandleEvent(ctx, &event); err != nil {
			logg.Error(logg.WithField(ctx, "object_id", event.ObjectID), "webhook processing failed", err)
		}

		w.WriteHeader(http.StatusOK)
	}
}
