package cron

import (
	"context"
	"fmt"
	"testing"
	"time"

	syncsvc "github.com/couchproof/couchproof-backend/internal/sync"
	"github.com/couchproof/couchproof-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserSource struct {
	users  []models.User
	cutoff time.Time
	limit  int
}

func (f *fakeUserSource) ListStaleSyncUsers(_ context.Context, cutoff time.Time, limit int) ([]models.User, error) {
	f.cutoff = cutoff
	f.limit = limit
	return f.users, nil
}

type fakeSyncer struct {
	results map[uuid.UUID]*syncsvc.ResultDTO
	errs    map[uuid.UUID]error
	calls   []uuid.UUID
}

func (f *fakeSyncer) Incremental(_ context.Context, userID uuid.UUID) (*syncsvc.ResultDTO, error) {
	f.calls = append(f.calls, userID)
	if err, ok := f.errs[userID]; ok {
		return nil, err
	}
	if r, ok := f.results[userID]; ok {
		return r, nil
	}
	return &syncsvc.ResultDTO{}, nil
}

func staleUser() models.User {
	return models.User{ID: uuid.New(), Email: uuid.NewString() + "@test", Name: "u"}
}

func TestStaleSyncJobSyncsEachCandidate(t *testing.T) {
	u1, u2 := staleUser(), staleUser()
	source := &fakeUserSource{users: []models.User{u1, u2}}
	syncer := &fakeSyncer{}

	job, err := NewStaleSyncJob(StaleSyncJobParams{
		Logger: testLogger(),
		Users:  source,
		Syncer: syncer,
		MaxAge: 24 * time.Hour,
		Batch:  20,
	})
	require.NoError(t, err)

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, []uuid.UUID{u1.ID, u2.ID}, syncer.calls)
	assert.Equal(t, 20, source.limit)
}

func TestStaleSyncJobContinuesPastFailures(t *testing.T) {
	u1, u2 := staleUser(), staleUser()
	source := &fakeUserSource{users: []models.User{u1, u2}}
	syncer := &fakeSyncer{errs: map[uuid.UUID]error{u1.ID: fmt.Errorf("reconnect required")}}

	job, err := NewStaleSyncJob(StaleSyncJobParams{
		Logger: testLogger(),
		Users:  source,
		Syncer: syncer,
	})
	require.NoError(t, err)

	require.NoError(t, job.Run(context.Background()))
	assert.Len(t, syncer.calls, 2, "dead grant does not starve the batch")
}

func TestStaleSyncJobStopsOnRateLimit(t *testing.T) {
	u1, u2 := staleUser(), staleUser()
	source := &fakeUserSource{users: []models.User{u1, u2}}
	syncer := &fakeSyncer{results: map[uuid.UUID]*syncsvc.ResultDTO{
		u1.ID: {RateLimited: true},
	}}

	job, err := NewStaleSyncJob(StaleSyncJobParams{
		Logger: testLogger(),
		Users:  source,
		Syncer: syncer,
	})
	require.NoError(t, err)

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, []uuid.UUID{u1.ID}, syncer.calls, "batch stops once the provider pushes back")
}

type fakeRetentionRepo struct {
	cutoff  time.Time
	deleted int64
	err     error
}

func (f *fakeRetentionRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.deleted, f.err
}

func TestAigenRetentionJobUsesConfiguredWindow(t *testing.T) {
	repo := &fakeRetentionRepo{deleted: 7}
	job, err := NewAigenRetentionJob(AigenRetentionJobParams{
		Logger:    testLogger(),
		Repo:      repo,
		Retention: 30,
	})
	require.NoError(t, err)

	require.NoError(t, job.Run(context.Background()))
	expected := time.Now().UTC().Add(-30 * 24 * time.Hour)
	assert.WithinDuration(t, expected, repo.cutoff, time.Minute)
}

func TestAigenRetentionJobPropagatesError(t *testing.T) {
	job, err := NewAigenRetentionJob(AigenRetentionJobParams{
		Logger: testLogger(),
		Repo:   &fakeRetentionRepo{err: fmt.Errorf("db down")},
	})
	require.NoError(t, err)

	require.Error(t, job.Run(context.Background()))
}
