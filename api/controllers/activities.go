package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/couchproof/couchproof-backend/api/middleware"
	"github.com/couchproof/couchproof-backend/api/responses"
	"github.com/couchproof/couchproof-backend/api/validators"
	"github.com/couchproof/couchproof-backend/internal/activities"
	pkgerrors "github.com/couchproof/couchproof-backend/pkg/errors"
	"github.com/couchproof/couchproof-backend/pkg/logger"
	"github.com/couchproof/couchproof-backend/pkg/pagination"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ActivitiesList returns one cursor page of the user's activities, with
// optional sport and date filters.
func ActivitiesList(svc *activities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := middleware.UserUUIDFromContext(ctx)

		query := r.URL.Query()
		filter := activities.ListFilter{
			SportType: strings.TrimSpace(query.Get("sport_type")),
		}

		after, err := activities.ParseDateFilter(query.Get("after"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid after filter"))
			return
		}
		before, err := activities.ParseDateFilter(query.Get("before"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid before filter"))
			return
		}
		filter.After, filter.Before = after, before

		limit := 0
		if raw := query.Get("limit"); raw != "" {
			limit, err = strconv.Atoi(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be an integer"))
				return
			}
		}

		page, err := svc.List(ctx, userID, filter, pagination.Params{
			Limit:  limit,
			Cursor: query.Get("cursor"),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// ActivityGet returns one activity owned by the user.
func ActivityGet(svc *activities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := middleware.UserUUIDFromContext(ctx)

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid activity id"))
			return
		}

		activity, err := svc.Get(ctx, userID, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, activity)
	}
}

// ActivityCreate logs a manual activity.
func ActivityCreate(svc *activities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := middleware.UserUUIDFromContext(ctx)

		var payload activities.CreateManualDTO
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		created, err := svc.CreateManual(ctx, userID, payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}
