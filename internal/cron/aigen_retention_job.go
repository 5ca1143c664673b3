package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/couchproof/couchproof-backend/pkg/logger"
)

const defaultAigenRetentionDays = 90

type aigenRetentionRepo interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// AigenRetentionJobParams configure the generation history cleanup job.
type AigenRetentionJobParams struct {
	Logger    *logger.Logger
	Repo      aigenRetentionRepo
	Retention int
}

// NewAigenRetentionJob builds the job that prunes old roast/hype/personality
// rows. Activity summaries are exempt; they back a permanent cache.
func NewAigenRetentionJob(params AigenRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("aigen repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultAigenRetentionDays
	}
	return &aigenRetentionJob{
		logg:      params.Logger,
		repo:      params.Repo,
		retention: retention,
		now:       time.Now,
	}, nil
}

type aigenRetentionJob struct {
	logg      *logger.Logger
	repo      aigenRetentionRepo
	retention int
	now       func() time.Time
}

func (j *aigenRetentionJob) Name() string { return "aigen-retention" }

func (j *aigenRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	deleted, err := j.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("aigen retention: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "deleted", deleted), "aigen retention pass done")
	return nil
}
