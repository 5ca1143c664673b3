package models

import (
	"time"

	"github.com/google/uuid"
)

// Gear is a bike or pair of shoes tracked by the provider, upserted by
// external gear id.
type Gear struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_gear_user_external,priority:1"`
	ExternalID string    `gorm:"column:external_id;not null;uniqueIndex:idx_gear_user_external,priority:2"`

	Name      string  `gorm:"column:name;not null"`
	Type      string  `gorm:"column:type;not null"`
	DistanceM float64 `gorm:"column:distance_m;not null;default:0"`
	Primary   bool    `gorm:"column:is_primary;not null;default:false"`
	Retired   bool    `gorm:"column:retired;not null;default:false"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Gear) TableName() string {
	return "gear"
}
