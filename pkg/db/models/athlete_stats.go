package models

import (
	"time"

	"github.com/google/uuid"
)

// AthleteStats is the provider-computed aggregate snapshot, one row per user,
// fully replaced on each sync pass.
type AthleteStats struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`

	RecentRideCount    int     `gorm:"column:recent_ride_count;not null;default:0"`
	RecentRideDistance float64 `gorm:"column:recent_ride_distance;not null;default:0"`
	RecentRunCount     int     `gorm:"column:recent_run_count;not null;default:0"`
	RecentRunDistance  float64 `gorm:"column:recent_run_distance;not null;default:0"`
	RecentSwimCount    int     `gorm:"column:recent_swim_count;not null;default:0"`
	RecentSwimDistance float64 `gorm:"column:recent_swim_distance;not null;default:0"`

	YTDRideCount    int     `gorm:"column:ytd_ride_count;not null;default:0"`
	YTDRideDistance float64 `gorm:"column:ytd_ride_distance;not null;default:0"`
	YTDRunCount     int     `gorm:"column:ytd_run_count;not null;default:0"`
	YTDRunDistance  float64 `gorm:"column:ytd_run_distance;not null;default:0"`
	YTDSwimCount    int     `gorm:"column:ytd_swim_count;not null;default:0"`
	YTDSwimDistance float64 `gorm:"column:ytd_swim_distance;not null;default:0"`

	AllRideCount    int     `gorm:"column:all_ride_count;not null;default:0"`
	AllRideDistance float64 `gorm:"column:all_ride_distance;not null;default:0"`
	AllRunCount     int     `gorm:"column:all_run_count;not null;default:0"`
	AllRunDistance  float64 `gorm:"column:all_run_distance;not null;default:0"`
	AllSwimCount    int     `gorm:"column:all_swim_count;not null;default:0"`
	AllSwimDistance float64 `gorm:"column:all_swim_distance;not null;default:0"`

	BiggestRideDistance float64 `gorm:"column:biggest_ride_distance;not null;default:0"`
	BiggestClimb        float64 `gorm:"column:biggest_climb;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (AthleteStats) TableName() string {
	return "athlete_stats"
}
