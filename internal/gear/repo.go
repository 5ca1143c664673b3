package gear

import (
	"context"

	"github.com/couchproof/couchproof-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists provider gear.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs the gear repo.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert inserts or refreshes a gear row keyed by (user_id, external_id).
func (r *Repository) Upsert(ctx context.Context, row *models.Gear) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "external_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "type", "distance_m", "is_primary", "retired", "updated_at",
			}),
		}).
		Create(row).Error
}

// ListByUser returns the user's gear, primary items first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Gear, error) {
	var out []models.Gear
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_primary DESC, name ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
