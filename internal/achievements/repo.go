package achievements

import (
	"context"

	"github.com/couchproof/couchproof-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository holds catalog reads and unlock persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs the achievements repo.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListCatalog returns all achievements ordered by category then tier.
func (r *Repository) ListCatalog(ctx context.Context) ([]models.Achievement, error) {
	var out []models.Achievement
	err := r.db.WithContext(ctx).
		Order("category ASC, tier ASC, requirement ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListUnlocks returns every unlock row for the user.
func (r *Repository) ListUnlocks(ctx context.Context, userID uuid.UUID) ([]models.UserAchievement, error) {
	var out []models.UserAchievement
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Unlock inserts the unlock row if absent. Returns true when a new row was
// written; existing unlocks are never touched.
func (r *Repository) Unlock(ctx context.Context, row *models.UserAchievement) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "achievement_id"},
			},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
