package models

import (
	"time"

	dbtypes "github.com/couchproof/couchproof-backend/pkg/db/types"
	"github.com/google/uuid"
)

// ActivitySourceStrava marks rows imported from the Strava API. Manual entries
// use ActivitySourceManual with a generated external id.
const (
	ActivitySourceStrava = "strava"
	ActivitySourceManual = "manual"
)

// Activity is one workout record. The (user_id, source, external_id) tuple is
// unique so re-syncs update in place rather than duplicating.
type Activity struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_activities_user_source_external,priority:1;index"`
	Source     string    `gorm:"column:source;not null;uniqueIndex:idx_activities_user_source_external,priority:2"`
	ExternalID string    `gorm:"column:external_id;not null;uniqueIndex:idx_activities_user_source_external,priority:3"`

	Name           string    `gorm:"column:name;not null"`
	SportType      string    `gorm:"column:sport_type;not null;index"`
	StartDate      time.Time `gorm:"column:start_date;not null;index"`
	StartDateLocal time.Time `gorm:"column:start_date_local;not null"`
	Timezone       string    `gorm:"column:timezone"`

	DistanceM     float64 `gorm:"column:distance_m;not null;default:0"`
	MovingTimeS   int     `gorm:"column:moving_time_s;not null;default:0"`
	ElapsedTimeS  int     `gorm:"column:elapsed_time_s;not null;default:0"`
	ElevationGain float64 `gorm:"column:elevation_gain;not null;default:0"`

	AverageSpeed *float64 `gorm:"column:average_speed"`
	MaxSpeed     *float64 `gorm:"column:max_speed"`
	AverageHR    *float64 `gorm:"column:average_hr"`
	MaxHR        *float64 `gorm:"column:max_hr"`
	AverageWatts *float64 `gorm:"column:average_watts"`
	MaxWatts     *float64 `gorm:"column:max_watts"`
	Calories     *float64 `gorm:"column:calories"`
	SufferScore  *float64 `gorm:"column:suffer_score"`

	KudosCount       int `gorm:"column:kudos_count;not null;default:0"`
	CommentCount     int `gorm:"column:comment_count;not null;default:0"`
	AchievementCount int `gorm:"column:achievement_count;not null;default:0"`
	PRCount          int `gorm:"column:pr_count;not null;default:0"`

	Trainer bool `gorm:"column:trainer;not null;default:false"`
	Commute bool `gorm:"column:commute;not null;default:false"`
	Manual  bool `gorm:"column:manual;not null;default:false"`

	GearID      *string  `gorm:"column:gear_id"`
	MapPolyline *string  `gorm:"column:map_polyline"`
	StartLat    *float64 `gorm:"column:start_lat"`
	StartLng    *float64 `gorm:"column:start_lng"`
	EndLat      *float64 `gorm:"column:end_lat"`
	EndLng      *float64 `gorm:"column:end_lng"`

	Laps           dbtypes.JSON `gorm:"column:laps;type:jsonb"`
	SplitsMetric   dbtypes.JSON `gorm:"column:splits_metric;type:jsonb"`
	SegmentEfforts dbtypes.JSON `gorm:"column:segment_efforts;type:jsonb"`
	Streams        dbtypes.JSON `gorm:"column:streams;type:jsonb"`

	// AISummary caches the generated per-activity summary permanently.
	AISummary *string `gorm:"column:ai_summary"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Complete reports whether the locally stored row already carries the
// expensive detail fields; complete rows are skipped during sync.
func (a *Activity) Complete() bool {
	return a != nil && a.Calories != nil && len(a.Streams) > 0
}
