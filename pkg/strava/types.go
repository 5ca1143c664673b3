package strava

import (
	"encoding/json"
	"time"
)

// Athlete is the provider's profile shape, trimmed to the fields we cache.
type Athlete struct {
	ID            int64    `json:"id"`
	Username      string   `json:"username"`
	FirstName     string   `json:"firstname"`
	LastName      string   `json:"lastname"`
	City          string   `json:"city"`
	Country       string   `json:"country"`
	Profile       string   `json:"profile"`
	Weight        float64  `json:"weight"`
	FTP           *int     `json:"ftp"`
	FollowerCount int      `json:"follower_count"`
	FriendCount   int      `json:"friend_count"`
}

// SummaryActivity is one entry from the paginated athlete activities listing.
type SummaryActivity struct {
	ID                 int64     `json:"id"`
	ExternalID         string    `json:"external_id"`
	Name               string    `json:"name"`
	SportType          string    `json:"sport_type"`
	StartDate          time.Time `json:"start_date"`
	StartDateLocal     time.Time `json:"start_date_local"`
	Timezone           string    `json:"timezone"`
	Distance           float64   `json:"distance"`
	MovingTime         int       `json:"moving_time"`
	ElapsedTime        int       `json:"elapsed_time"`
	TotalElevationGain float64   `json:"total_elevation_gain"`
	AverageSpeed       float64   `json:"average_speed"`
	MaxSpeed           float64   `json:"max_speed"`
	AverageHeartrate   *float64  `json:"average_heartrate"`
	MaxHeartrate       *float64  `json:"max_heartrate"`
	AverageWatts       *float64  `json:"average_watts"`
	MaxWatts           *float64  `json:"max_watts"`
	SufferScore        *float64  `json:"suffer_score"`
	KudosCount         int       `json:"kudos_count"`
	CommentCount       int       `json:"comment_count"`
	AchievementCount   int       `json:"achievement_count"`
	PRCount            int       `json:"pr_count"`
	Trainer            bool      `json:"trainer"`
	Commute            bool      `json:"commute"`
	Manual             bool      `json:"manual"`
	GearID             string    `json:"gear_id"`
	StartLatlng        []float64 `json:"start_latlng"`
	EndLatlng          []float64 `json:"end_latlng"`
	Map                struct {
		SummaryPolyline string `json:"summary_polyline"`
	} `json:"map"`
}

// DetailedActivity extends the summary with the expensive detail fields
// returned only by the single-activity endpoint.
type DetailedActivity struct {
	SummaryActivity
	Calories       *float64        `json:"calories"`
	Laps           json.RawMessage `json:"laps"`
	SplitsMetric   json.RawMessage `json:"splits_metric"`
	SegmentEfforts json.RawMessage `json:"segment_efforts"`
}

// StreamSet is the keyed time-series payload from the streams endpoint,
// stored opaquely.
type StreamSet map[string]json.RawMessage

// Gear is a bike or pair of shoes from the gear endpoint.
type Gear struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
	Primary  bool    `json:"primary"`
	Retired  bool    `json:"retired"`
}

// ActivityTotals is one bucket of the provider-computed aggregate stats.
type ActivityTotals struct {
	Count         int     `json:"count"`
	Distance      float64 `json:"distance"`
	MovingTime    int     `json:"moving_time"`
	ElapsedTime   int     `json:"elapsed_time"`
	ElevationGain float64 `json:"elevation_gain"`
}

// AthleteStats is the provider's aggregate snapshot for an athlete.
type AthleteStats struct {
	BiggestRideDistance  float64        `json:"biggest_ride_distance"`
	BiggestClimbElevGain float64        `json:"biggest_climb_elevation_gain"`
	RecentRideTotals     ActivityTotals `json:"recent_ride_totals"`
	RecentRunTotals      ActivityTotals `json:"recent_run_totals"`
	RecentSwimTotals     ActivityTotals `json:"recent_swim_totals"`
	YTDRideTotals        ActivityTotals `json:"ytd_ride_totals"`
	YTDRunTotals         ActivityTotals `json:"ytd_run_totals"`
	YTDSwimTotals        ActivityTotals `json:"ytd_swim_totals"`
	AllRideTotals        ActivityTotals `json:"all_ride_totals"`
	AllRunTotals         ActivityTotals `json:"all_run_totals"`
	AllSwimTotals        ActivityTotals `json:"all_swim_totals"`
}

// WebhookEvent is the push payload documented by Strava.
type WebhookEvent struct {
	ObjectType     string            `json:"object_type"`
	ObjectID       int64             `json:"object_id"`
	AspectType     string            `json:"aspect_type"`
	OwnerID        int64             `json:"owner_id"`
	SubscriptionID int64             `json:"subscription_id"`
	EventTime      int64             `json:"event_time"`
	Updates        map[string]string `json:"updates,omitempty"`
}

// Webhook object/aspect values used by the ingestion path.
const (
	ObjectTypeActivity = "activity"
	ObjectTypeAthlete  = "athlete"
	AspectCreate       = "create"
	AspectUpdate       = "update"
	AspectDelete       = "delete"
)
