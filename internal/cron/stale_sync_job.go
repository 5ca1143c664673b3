package cron

import (
	"context"
	"fmt"
	"time"

	syncsvc "github.com/couchproof/couchproof-backend/internal/sync"
	"github.com/couchproof/couchproof-backend/pkg/db/models"
	"github.com/couchproof/couchproof-backend/pkg/logger"
	"github.com/google/uuid"
)

const (
	defaultStaleSyncAge   = 24 * time.Hour
	defaultStaleSyncBatch = 20
)

type staleSyncUserSource interface {
	ListStaleSyncUsers(ctx context.Context, cutoff time.Time, limit int) ([]models.User, error)
}

type incrementalSyncer interface {
	Incremental(ctx context.Context, userID uuid.UUID) (*syncsvc.ResultDTO, error)
}

// StaleSyncJobParams configure the background refresh job.
type StaleSyncJobParams struct {
	Logger *logger.Logger
	Users  staleSyncUserSource
	Syncer incrementalSyncer
	MaxAge time.Duration
	Batch  int
}

// NewStaleSyncJob builds the job that re-syncs connected users whose
// watermark has gone stale, a bounded number per cycle.
func NewStaleSyncJob(params StaleSyncJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user source required")
	}
	if params.Syncer == nil {
		return nil, fmt.Errorf("syncer required")
	}
	maxAge := params.MaxAge
	if maxAge <= 0 {
		maxAge = defaultStaleSyncAge
	}
	batch := params.Batch
	if batch <= 0 {
		batch = defaultStaleSyncBatch
	}
	return &staleSyncJob{
		logg:   params.Logger,
		users:  params.Users,
		syncer: params.Syncer,
		maxAge: maxAge,
		batch:  batch,
		now:    time.Now,
	}, nil
}

type staleSyncJob struct {
	logg   *logger.Logger
	users  staleSyncUserSource
	syncer incrementalSyncer
	maxAge time.Duration
	batch  int
	now    func() time.Time
}

func (j *staleSyncJob) Name() string { return "stale-sync-refresh" }

func (j *staleSyncJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.maxAge)
	stale, err := j.users.ListStaleSyncUsers(ctx, cutoff, j.batch)
	if err != nil {
		return fmt.Errorf("listing stale users: %w", err)
	}

	var failed int
	for i := range stale {
		user := &stale[i]
		userCtx := j.logg.WithUserID(ctx, user.ID.String())
		result, err := j.syncer.Incremental(userCtx, user.ID)
		if err != nil {
			// One dead grant must not starve the rest of the batch.
			failed++
			j.logg.Error(userCtx, "stale sync failed", err)
			continue
		}
		j.logg.Info(j.logg.WithFields(userCtx, map[string]any{
			"synced":       result.Synced,
			"rate_limited": result.RateLimited,
		}), "stale user re-synced")

		if result.RateLimited {
			j.logg.Warn(ctx, "provider rate limited; stopping stale sync batch")
			break
		}
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"candidates": len(stale),
		"failed":     failed,
	}), "stale sync pass done")
	return nil
}
