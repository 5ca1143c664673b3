package aigen

import (
	"context"
	"testing"
	"time"

	"github.com/couchproof/couchproof-backend/internal/activities"
	"github.com/couchproof/couchproof-backend/internal/stats"
	"github.com/couchproof/couchproof-backend/pkg/config"
	"github.com/couchproof/couchproof-backend/pkg/db/models"
	"github.com/couchproof/couchproof-backend/pkg/logger"
	"github.com/couchproof/couchproof-backend/pkg/openai"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type scriptedCompleter struct {
	outputs []string
	calls   int
}

func (c *scriptedCompleter) Complete(_ context.Context, _ []openai.ChatMessage) (string, error) {
	out := c.outputs[c.calls%len(c.outputs)]
	c.calls++
	return out, nil
}

func (c *scriptedCompleter) Model() string { return "test-model" }

func setupAigenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS activities (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  source TEXT NOT NULL,
  external_id TEXT NOT NULL,
  name TEXT NOT NULL,
  sport_type TEXT NOT NULL,
  start_date DATETIME NOT NULL,
  start_date_local DATETIME NOT NULL,
  timezone TEXT,
  distance_m REAL NOT NULL DEFAULT 0,
  moving_time_s INTEGER NOT NULL DEFAULT 0,
  elapsed_time_s INTEGER NOT NULL DEFAULT 0,
  elevation_gain REAL NOT NULL DEFAULT 0,
  average_speed REAL, max_speed REAL, average_hr REAL, max_hr REAL,
  average_watts REAL, max_watts REAL, calories REAL, suffer_score REAL,
  kudos_count INTEGER NOT NULL DEFAULT 0,
  comment_count INTEGER NOT NULL DEFAULT 0,
  achievement_count INTEGER NOT NULL DEFAULT 0,
  pr_count INTEGER NOT NULL DEFAULT 0,
  trainer INTEGER NOT NULL DEFAULT 0,
  commute INTEGER NOT NULL DEFAULT 0,
  manual INTEGER NOT NULL DEFAULT 0,
  gear_id TEXT, map_polyline TEXT,
  start_lat REAL, start_lng REAL, end_lat REAL, end_lng REAL,
  laps TEXT, splits_metric TEXT, segment_efforts TEXT, streams TEXT,
  ai_summary TEXT,
  created_at DATETIME, updated_at DATETIME,
  CONSTRAINT idx_activities_user_source_external UNIQUE (user_id, source, external_id)
);`,
		`CREATE TABLE IF NOT EXISTS athlete_stats (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  recent_ride_count INTEGER NOT NULL DEFAULT 0,
  recent_ride_distance REAL NOT NULL DEFAULT 0,
  recent_run_count INTEGER NOT NULL DEFAULT 0,
  recent_run_distance REAL NOT NULL DEFAULT 0,
  recent_swim_count INTEGER NOT NULL DEFAULT 0,
  recent_swim_distance REAL NOT NULL DEFAULT 0,
  ytd_ride_count INTEGER NOT NULL DEFAULT 0,
  ytd_ride_distance REAL NOT NULL DEFAULT 0,
  ytd_run_count INTEGER NOT NULL DEFAULT 0,
  ytd_run_distance REAL NOT NULL DEFAULT 0,
  ytd_swim_count INTEGER NOT NULL DEFAULT 0,
  ytd_swim_distance REAL NOT NULL DEFAULT 0,
  all_ride_count INTEGER NOT NULL DEFAULT 0,
  all_ride_distance REAL NOT NULL DEFAULT 0,
  all_run_count INTEGER NOT NULL DEFAULT 0,
  all_run_distance REAL NOT NULL DEFAULT 0,
  all_swim_count INTEGER NOT NULL DEFAULT 0,
  all_swim_distance REAL NOT NULL DEFAULT 0,
  biggest_ride_distance REAL NOT NULL DEFAULT 0,
  biggest_climb REAL NOT NULL DEFAULT 0,
  created_at DATETIME, updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS ai_generations (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL,
  activity_id TEXT,
  prompt TEXT NOT NULL,
  content TEXT NOT NULL,
  model TEXT NOT NULL,
  created_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func newAigenService(db *gorm.DB, completer Completer) *Service {
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled})
	activityRepo := activities.NewRepository(db)
	statsService := stats.NewService(stats.NewRepository(db), activityRepo, logg, 1000)
	cfg := config.AIConfig{
		SimilarityThreshold: 0.75,
		AvoidanceWindow:     10,
		MaxRegenerations:    2,
		RetentionDays:       90,
	}
	return NewService(NewRepository(db), activityRepo, statsService, completer, logg, cfg)
}

func seedRun(t *testing.T, db *gorm.DB, userID uuid.UUID, externalID string, start time.Time, distance float64) *models.Activity {
	t.Helper()

	row := &models.Activity{
		ID:             uuid.New(),
		UserID:         userID,
		Source:         models.ActivitySourceStrava,
		ExternalID:     externalID,
		Name:           "Morning Run",
		SportType:      "Run",
		StartDate:      start,
		StartDateLocal: start,
		DistanceM:      distance,
		MovingTimeS:    1800,
	}
	require.NoError(t, db.Create(row).Error)
	return row
}

func TestGeneratePersistsAndReturns(t *testing.T) {
	db := setupAigenTestDB(t)
	completer := &scriptedCompleter{outputs: []string{"Fifteen kilometers and you still call that a week?"}}
	svc := newAigenService(db, completer)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	seedRun(t, db, userID, "1", now.AddDate(0, 0, -1), 15000)

	out, err := svc.Generate(ctx, userID, models.AIGenerationRoast, now)
	require.NoError(t, err)
	assert.Equal(t, models.AIGenerationRoast, out.Type)
	assert.Equal(t, "Fifteen kilometers and you still call that a week?", out.Content)
	assert.Equal(t, "test-model", out.Model)
	assert.Equal(t, 1, completer.calls)

	var count int64
	require.NoError(t, db.Model(&models.AIGeneration{}).Where("type = ?", models.AIGenerationRoast).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGenerateRegeneratesOnRepetition(t *testing.T) {
	db := setupAigenTestDB(t)
	repeat := "Another week, another excuse, another fifteen kilometers of regret."
	fresh := "Your bike is filing a missing persons report, it has not seen you since Tuesday."
	completer := &scriptedCompleter{outputs: []string{repeat, fresh}}
	svc := newAigenService(db, completer)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	seedRun(t, db, userID, "1", now.AddDate(0, 0, -1), 15000)

	// Seed history with the text the first candidate will duplicate.
	require.NoError(t, db.Create(&models.AIGeneration{
		ID:      uuid.New(),
		UserID:  userID,
		Type:    models.AIGenerationRoast,
		Prompt:  "p",
		Content: repeat,
		Model:   "test-model",
	}).Error)

	out, err := svc.Generate(ctx, userID, models.AIGenerationRoast, now)
	require.NoError(t, err)
	assert.Equal(t, fresh, out.Content, "repetitive candidate is rejected")
	assert.Equal(t, 2, completer.calls)
}

func TestGenerateAcceptsAfterMaxRegenerations(t *testing.T) {
	db := setupAigenTestDB(t)
	repeat := "Another week, another excuse, another fifteen kilometers of regret."
	completer := &scriptedCompleter{outputs: []string{repeat}}
	svc := newAigenService(db, completer)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	seedRun(t, db, userID, "1", now.AddDate(0, 0, -1), 15000)
	require.NoError(t, db.Create(&models.AIGeneration{
		ID:      uuid.New(),
		UserID:  userID,
		Type:    models.AIGenerationRoast,
		Prompt:  "p",
		Content: repeat,
		Model:   "test-model",
	}).Error)

	out, err := svc.Generate(ctx, userID, models.AIGenerationRoast, now)
	require.NoError(t, err)
	assert.Equal(t, repeat, out.Content, "final candidate is accepted despite similarity")
	assert.Equal(t, 3, completer.calls, "initial attempt plus two regenerations")
}

func TestGenerateRejectsUnknownType(t *testing.T) {
	db := setupAigenTestDB(t)
	svc := newAigenService(db, &scriptedCompleter{outputs: []string{"x"}})

	_, err := svc.Generate(context.Background(), uuid.New(), "sonnet", time.Now())
	require.Error(t, err)
}

func TestGenerateRequiresActivities(t *testing.T) {
	db := setupAigenTestDB(t)
	svc := newAigenService(db, &scriptedCompleter{outputs: []string{"x"}})

	_, err := svc.Generate(context.Background(), uuid.New(), models.AIGenerationRoast, time.Now())
	require.Error(t, err)
}

func TestActivitySummaryCachedPermanently(t *testing.T) {
	db := setupAigenTestDB(t)
	completer := &scriptedCompleter{outputs: []string{"Solid 15k before most people hit snooze."}}
	svc := newAigenService(db, completer)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	activity := seedRun(t, db, userID, "1", now.AddDate(0, 0, -1), 15000)

	first, err := svc.ActivitySummary(ctx, userID, activity.ID, now)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 1, completer.calls)

	second, err := svc.ActivitySummary(ctx, userID, activity.ID, now)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Content, second.Content)
	assert.Equal(t, 1, completer.calls, "summary is never regenerated")
}

func TestDeleteOlderThanKeepsSummaries(t *testing.T) {
	db := setupAigenTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	old := time.Now().AddDate(0, 0, -120)

	for _, genType := range []string{models.AIGenerationRoast, models.AIGenerationSummary} {
		require.NoError(t, db.Create(&models.AIGeneration{
			ID:        uuid.New(),
			UserID:    userID,
			Type:      genType,
			Prompt:    "p",
			Content:   "c",
			Model:     "m",
			CreatedAt: old,
		}).Error)
	}

	deleted, err := repo.DeleteOlderThan(ctx, time.Now().AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining []models.AIGeneration
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, models.AIGenerationSummary, remaining[0].Type)
}
