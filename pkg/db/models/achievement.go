package models

import (
	"time"

	"github.com/google/uuid"
)

// Achievement categories determine which aggregated metric the requirement is
// compared against.
const (
	AchievementCategoryDistance  = "distance"
	AchievementCategoryCount     = "count"
	AchievementCategoryStreak    = "streak"
	AchievementCategoryElevation = "elevation"
	AchievementCategorySingle    = "single_distance"
)

// Achievement is a static catalog entry seeded by migration.
type Achievement struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Code        string    `gorm:"column:code;not null;uniqueIndex"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description;not null"`
	Category    string    `gorm:"column:category;not null;index"`
	Tier        int       `gorm:"column:tier;not null;default:1"`
	Requirement float64   `gorm:"column:requirement;not null"`
	Icon        string    `gorm:"column:icon"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

// UserAchievement records an unlock. Append-only: rows are never deleted or
// re-locked.
type UserAchievement struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_user_achievements_user_achievement,priority:1"`
	AchievementID uuid.UUID  `gorm:"column:achievement_id;type:uuid;not null;uniqueIndex:idx_user_achievements_user_achievement,priority:2"`
	ActivityID    *uuid.UUID `gorm:"column:activity_id;type:uuid"`
	UnlockedAt    time.Time  `gorm:"column:unlocked_at;not null"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
}
