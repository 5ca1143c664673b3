package stats

import (
	"context"

	"github.com/couchproof/couchproof-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists the provider-computed athlete stats snapshot.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs the stats repo.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Replace fully overwrites the user's snapshot, inserting on first sync.
func (r *Repository) Replace(ctx context.Context, row *models.AthleteStats) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(row).Error
}

// GetByUserID loads the snapshot, or a not-found error before first sync.
func (r *Repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.AthleteStats, error) {
	var row models.AthleteStats
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
