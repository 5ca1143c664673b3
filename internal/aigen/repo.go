package aigen

import (
	"context"
	"time"

	"github.com/couchproof/couchproof-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists generation history.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs the aigen repo.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create stores one generation row.
func (r *Repository) Create(ctx context.Context, row *models.AIGeneration) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// ListRecentContent returns the content of the user's last n generations of
// the given type, newest first. Feeds the repetition check.
func (r *Repository) ListRecentContent(ctx context.Context, userID uuid.UUID, genType string, n int) ([]string, error) {
	var out []string
	err := r.db.WithContext(ctx).
		Model(&models.AIGeneration{}).
		Where("user_id = ? AND type = ?", userID, genType).
		Order("created_at DESC").
		Limit(n).
		Pluck("content", &out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteOlderThan removes generation rows created before the cutoff. Activity
// summaries are kept: those rows back a permanent cache.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("created_at < ? AND type <> ?", cutoff, models.AIGenerationSummary).
		Delete(&models.AIGeneration{})
	return res.RowsAffected, res.Error
}
