package activities

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/couchproof/couchproof-backend/pkg/db/models"
	"github.com/couchproof/couchproof-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupActivitiesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	activities := `
CREATE TABLE IF NOT EXISTS activities (
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
  average_speed REAL,
  max_speed REAL,
  average_hr REAL,
  max_hr REAL,
  average_watts REAL,
  max_watts REAL,
  calories REAL,
  suffer_score REAL,
  kudos_count INTEGER NOT NULL DEFAULT 0,
  comment_count INTEGER NOT NULL DEFAULT 0,
  achievement_count INTEGER NOT NULL DEFAULT 0,
  pr_count INTEGER NOT NULL DEFAULT 0,
  trainer INTEGER NOT NULL DEFAULT 0,
  commute INTEGER NOT NULL DEFAULT 0,
  manual INTEGER NOT NULL DEFAULT 0,
  gear_id TEXT,
  map_polyline TEXT,
  start_lat REAL,
  start_lng REAL,
  end_lat REAL,
  end_lng REAL,
  laps TEXT,
  splits_metric TEXT,
  segment_efforts TEXT,
  streams TEXT,
  ai_summary TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  CONSTRAINT idx_activities_user_source_external UNIQUE (user_id, source, external_id)
);`
	require.NoError(t, db.Exec(activities).Error)
	return db
}

func newActivity(t *testing.T, db *gorm.DB, userID uuid.UUID, externalID string, start time.Time, distance float64) *models.Activity {
	t.Helper()

	row := &models.Activity{
		ID:             uuid.New(),
		UserID:         userID,
		Source:         models.ActivitySourceStrava,
		ExternalID:     externalID,
		Name:           "Morning Run " + externalID,
		SportType:      "Run",
		StartDate:      start,
		StartDateLocal: start,
		DistanceM:      distance,
		MovingTimeS:    1800,
		ElapsedTimeS:   1900,
	}
	require.NoError(t, db.Create(row).Error)
	return row
}

func TestUpsertIdempotent(t *testing.T) {
	db := setupActivitiesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	start := time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC)

	first := &models.Activity{
		ID:             uuid.New(),
		UserID:         userID,
		Source:         models.ActivitySourceStrava,
		ExternalID:     "9001",
		Name:           "Lunch Ride",
		SportType:      "Ride",
		StartDate:      start,
		StartDateLocal: start,
		DistanceM:      25000,
	}
	require.NoError(t, repo.Upsert(ctx, first))

	// Second pass for the same provider activity carries refreshed fields.
	second := &models.Activity{
		ID:             uuid.New(),
		UserID:         userID,
		Source:         models.ActivitySourceStrava,
		ExternalID:     "9001",
		Name:           "Lunch Ride (renamed)",
		SportType:      "Ride",
		StartDate:      start,
		StartDateLocal: start,
		DistanceM:      25500,
	}
	require.NoError(t, repo.Upsert(ctx, second))

	var count int64
	require.NoError(t, db.Model(&models.Activity{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	stored, err := repo.GetByExternalID(ctx, userID, models.ActivitySourceStrava, "9001")
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID, "row id survives re-sync")
	assert.Equal(t, "Lunch Ride (renamed)", stored.Name)
	assert.InDelta(t, 25500, stored.DistanceM, 0.001)
}

func TestDeleteByExternalIDRemovesExactlyOne(t *testing.T) {
	db := setupActivitiesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	otherUser := uuid.New()
	start := time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC)

	newActivity(t, db, userID, "100", start, 5000)
	newActivity(t, db, userID, "101", start.Add(time.Hour), 6000)
	newActivity(t, db, otherUser, "100", start, 7000)

	affected, err := repo.DeleteByExternalID(ctx, userID, models.ActivitySourceStrava, "100")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	var count int64
	require.NoError(t, db.Model(&models.Activity{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	// Unknown id is a no-op.
	affected, err = repo.DeleteByExternalID(ctx, userID, models.ActivitySourceStrava, "999")
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestListPaginatesNewestFirst(t *testing.T) {
	db := setupActivitiesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		newActivity(t, db, userID, fmt.Sprintf("a%d", i), base.AddDate(0, 0, i), 5000)
	}

	page, err := repo.List(ctx, userID, ListFilter{}, 3, nil)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, "a4", page[0].ExternalID)
	assert.Equal(t, "a2", page[2].ExternalID)

	cursor := &pagination.Cursor{StartDate: page[2].StartDate, ID: page[2].ID}
	rest, err := repo.List(ctx, userID, ListFilter{}, 3, cursor)
	require.NoError(t, err)
	require.Len(t, rest, 2)
	assert.Equal(t, "a1", rest[0].ExternalID)
	assert.Equal(t, "a0", rest[1].ExternalID)
}

func TestListFiltersBySportAndDate(t *testing.T) {
	db := setupActivitiesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	run := newActivity(t, db, userID, "r1", base, 5000)
	ride := newActivity(t, db, userID, "b1", base.AddDate(0, 0, 2), 20000)
	require.NoError(t, db.Model(ride).UpdateColumn("sport_type", "Ride").Error)

	rows, err := repo.List(ctx, userID, ListFilter{SportType: "Run"}, 10, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, run.ExternalID, rows[0].ExternalID)

	after := base.AddDate(0, 0, 1)
	rows, err = repo.List(ctx, userID, ListFilter{After: &after}, 10, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "b1", rows[0].ExternalID)
}

func TestListAllCapDropsOldestHistory(t *testing.T) {
	db := setupActivitiesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	// Four activities spanning two years; with cap 3 the 2024 row must be
	// the one excluded so windows and streaks still see today's training.
	newActivity(t, db, userID, "ancient", base, 5000)
	newActivity(t, db, userID, "old", base.AddDate(1, 0, 0), 6000)
	newActivity(t, db, userID, "recent", base.AddDate(2, 0, 0), 7000)
	newActivity(t, db, userID, "today", base.AddDate(2, 0, 1), 8000)

	rows, err := repo.ListAll(ctx, userID, 3)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	got := map[string]bool{}
	for _, row := range rows {
		got[row.ExternalID] = true
	}
	assert.True(t, got["today"])
	assert.True(t, got["recent"])
	assert.True(t, got["old"])
	assert.False(t, got["ancient"], "cap keeps the most recent rows")
}

func TestSetAISummary(t *testing.T) {
	db := setupActivitiesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	row := newActivity(t, db, userID, "s1", time.Date(2026, 4, 1, 6, 30, 0, 0, time.UTC), 8000)
	require.NoError(t, repo.SetAISummary(ctx, row.ID, "A brisk 8k before breakfast."))

	stored, err := repo.GetByID(ctx, userID, row.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AISummary)
	assert.Equal(t, "A brisk 8k before breakfast.", *stored.AISummary)
}
