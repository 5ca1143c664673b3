package activities

import (
	"context"
	"time"

	"github.com/couchproof/couchproof-backend/pkg/db/models"
	"github.com/couchproof/couchproof-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository holds activity persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an activities repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert inserts the activity, or updates the existing row when the
// (user_id, source, external_id) tuple already exists. The row id and
// created_at are preserved on conflict.
func (r *Repository) Upsert(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "source"},
				{Name: "external_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "sport_type", "start_date", "start_date_local", "timezone",
				"distance_m", "moving_time_s", "elapsed_time_s", "elevation_gain",
				"average_speed", "max_speed", "average_hr", "max_hr",
				"average_watts", "max_watts", "calories", "suffer_score",
				"kudos_count", "comment_count", "achievement_count", "pr_count",
				"trainer", "commute", "manual",
				"gear_id", "map_polyline", "start_lat", "start_lng", "end_lat", "end_lng",
				"laps", "splits_metric", "segment_efforts", "streams",
				"updated_at",
			}),
		}).
		Create(activity).Error
}

// Create inserts a manually logged activity without conflict handling.
func (r *Repository) Create(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

// GetByID loads one activity owned by the user.
func (r *Repository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Activity, error) {
	var activity models.Activity
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&activity).Error
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

// GetByExternalID resolves a synced row by its provider id.
func (r *Repository) GetByExternalID(ctx context.Context, userID uuid.UUID, source, externalID string) (*models.Activity, error) {
	var activity models.Activity
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND source = ? AND external_id = ?", userID, source, externalID).
		First(&activity).Error
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

// DeleteByExternalID removes the single row matching the provider id, if any.
// Rows for other users or other providers are untouched.
func (r *Repository) DeleteByExternalID(ctx context.Context, userID uuid.UUID, source, externalID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND source = ? AND external_id = ?", userID, source, externalID).
		Delete(&models.Activity{})
	return res.RowsAffected, res.Error
}

// ListFilter narrows activity pages.
type ListFilter struct {
	SportType string
	After     *time.Time
	Before    *time.Time
}

// List returns a page of the user's activities ordered by start date
// descending, id as the tiebreaker. One extra row is fetched to detect
// whether a next page exists.
func (r *Repository) List(ctx context.Context, userID uuid.UUID, filter ListFilter, limit int, cursor *pagination.Cursor) ([]models.Activity, error) {
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_date DESC, id DESC").
		Limit(limit)

	if filter.SportType != "" {
		q = q.Where("sport_type = ?", filter.SportType)
	}
	if filter.After != nil {
		q = q.Where("start_date >= ?", *filter.After)
	}
	if filter.Before != nil {
		q = q.Where("start_date < ?", *filter.Before)
	}
	if cursor != nil {
		q = q.Where("(start_date, id) < (?, ?)", cursor.StartDate, cursor.ID)
	}

	var out []models.Activity
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListAll loads the user's activities for the aggregation and achievement
// passes, capped. Newest first, so the cap drops the oldest history rather
// than the rows the current windows and streaks are computed from.
func (r *Repository) ListAll(ctx context.Context, userID uuid.UUID, cap int) ([]models.Activity, error) {
	var out []models.Activity
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_date DESC, id DESC").
		Limit(cap).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListRecent loads the n most recent activities, newest first.
func (r *Repository) ListRecent(ctx context.Context, userID uuid.UUID, n int) ([]models.Activity, error) {
	var out []models.Activity
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_date DESC, id DESC").
		Limit(n).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MostRecentAtLeastDistance finds the newest activity covering at least the
// given distance, for attributing single-activity unlocks.
func (r *Repository) MostRecentAtLeastDistance(ctx context.Context, userID uuid.UUID, minDistanceM float64) (*models.Activity, error) {
	var out models.Activity
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND distance_m >= ?", userID, minDistanceM).
		Order("start_date DESC, id DESC").
		First(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SetAISummary caches the generated summary text on the activity row.
func (r *Repository) SetAISummary(ctx context.Context, id uuid.UUID, summary string) error {
	return r.db.WithContext(ctx).
		Model(&models.Activity{}).
		Where("id = ?", id).
		UpdateColumn("ai_summary", summary).Error
}
