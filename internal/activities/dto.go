package activities

import (
	"time"

	"github.com/couchproof/couchproof-backend/pkg/db/models"
)

// ActivityDTO is the list/detail API representation of one workout.
type ActivityDTO struct {
	ID             string    `json:"id"`
	Source         string    `json:"source"`
	ExternalID     string    `json:"external_id"`
	Name           string    `json:"name"`
	SportType      string    `json:"sport_type"`
	StartDate      time.Time `json:"start_date"`
	StartDateLocal time.Time `json:"start_date_local"`
	Timezone       string    `json:"timezone,omitempty"`

	DistanceM     float64 `json:"distance_m"`
	MovingTimeS   int     `json:"moving_time_s"`
	ElapsedTimeS  int     `json:"elapsed_time_s"`
	ElevationGain float64 `json:"elevation_gain"`

	AverageSpeed *float64 `json:"average_speed,omitempty"`
	MaxSpeed     *float64 `json:"max_speed,omitempty"`
	AverageHR    *float64 `json:"average_hr,omitempty"`
	MaxHR        *float64 `json:"max_hr,omitempty"`
	AverageWatts *float64 `json:"average_watts,omitempty"`
	MaxWatts     *float64 `json:"max_watts,omitempty"`
	Calories     *float64 `json:"calories,omitempty"`
	SufferScore  *float64 `json:"suffer_score,omitempty"`

	KudosCount       int `json:"kudos_count"`
	CommentCount     int `json:"comment_count"`
	AchievementCount int `json:"achievement_count"`
	PRCount          int `json:"pr_count"`

	Trainer bool `json:"trainer"`
	Commute bool `json:"commute"`
	Manual  bool `json:"manual"`

	GearID      *string  `json:"gear_id,omitempty"`
	MapPolyline *string  `json:"map_polyline,omitempty"`
	StartLat    *float64 `json:"start_lat,omitempty"`
	StartLng    *float64 `json:"start_lng,omitempty"`

	AISummary *string `json:"ai_summary,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// ListResponseDTO is one cursor page of activities.
type ListResponseDTO struct {
	Activities []ActivityDTO `json:"activities"`
	NextCursor *string       `json:"next_cursor,omitempty"`
}

// CreateManualDTO is the request body for logging an activity by hand.
type CreateManualDTO struct {
	Name          string    `json:"name" validate:"required,min=1,max=200"`
	SportType     string    `json:"sport_type" validate:"required,min=1,max=50"`
	StartDate     time.Time `json:"start_date" validate:"required"`
	DistanceM     float64   `json:"distance_m" validate:"gte=0"`
	MovingTimeS   int       `json:"moving_time_s" validate:"gte=0"`
	ElapsedTimeS  int       `json:"elapsed_time_s" validate:"gte=0"`
	ElevationGain float64   `json:"elevation_gain" validate:"gte=0"`
}

// ToActivityDTO maps a row to its API representation. Raw stream and lap
// payloads are intentionally excluded from list responses.
func ToActivityDTO(a *models.Activity) ActivityDTO {
	return ActivityDTO{
		ID:               a.ID.String(),
		Source:           a.Source,
		ExternalID:       a.ExternalID,
		Name:             a.Name,
		SportType:        a.SportType,
		StartDate:        a.StartDate,
		StartDateLocal:   a.StartDateLocal,
		Timezone:         a.Timezone,
		DistanceM:        a.DistanceM,
		MovingTimeS:      a.MovingTimeS,
		ElapsedTimeS:     a.ElapsedTimeS,
		ElevationGain:    a.ElevationGain,
		AverageSpeed:     a.AverageSpeed,
		MaxSpeed:         a.MaxSpeed,
		AverageHR:        a.AverageHR,
		MaxHR:            a.MaxHR,
		AverageWatts:     a.AverageWatts,
		MaxWatts:         a.MaxWatts,
		Calories:         a.Calories,
		SufferScore:      a.SufferScore,
		KudosCount:       a.KudosCount,
		CommentCount:     a.CommentCount,
		AchievementCount: a.AchievementCount,
		PRCount:          a.PRCount,
		Trainer:          a.Trainer,
		Commute:          a.Commute,
		Manual:           a.Manual,
		GearID:           a.GearID,
		MapPolyline:      a.MapPolyline,
		StartLat:         a.StartLat,
		StartLng:         a.StartLng,
		AISummary:        a.AISummary,
		CreatedAt:        a.CreatedAt,
	}
}

// ToActivityDTOs maps a slice of rows.
func ToActivityDTOs(rows []models.Activity) []ActivityDTO {
	out := make([]ActivityDTO, 0, len(rows))
	for i := range rows {
		out = append(out, ToActivityDTO(&rows[i]))
	}
	return out
}
