package users

import (
	"time"

	"github.com/couchproof/couchproof-backend/pkg/db/models"
)

// StravaLinkDTO carries everything learned about the athlete during the
// OAuth exchange.
type StravaLinkDTO struct {
	AthleteID     int64
	AccessToken   string
	RefreshToken  string
	ExpiresAt     time.Time
	AvatarURL     *string
	WeightKG      *float64
	FTP           *int
	FollowerCount *int
	FriendCount   *int
	City          *string
	Country       *string
}

// ProfileDTO is the authenticated user's own profile view.
type ProfileDTO struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Name            string     `json:"name"`
	AvatarURL       *string    `json:"avatar_url,omitempty"`
	StravaConnected bool       `json:"strava_connected"`
	StravaAthleteID *int64     `json:"strava_athlete_id,omitempty"`
	WeightKG        *float64   `json:"weight_kg,omitempty"`
	FTP             *int       `json:"ftp,omitempty"`
	FollowerCount   *int       `json:"follower_count,omitempty"`
	FriendCount     *int       `json:"friend_count,omitempty"`
	City            *string    `json:"city,omitempty"`
	Country         *string    `json:"country,omitempty"`
	LastSyncAt      *time.Time `json:"last_sync_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ToProfileDTO maps a user row to its API representation. Tokens never leave
// the database layer.
func ToProfileDTO(u *models.User) ProfileDTO {
	return ProfileDTO{
		ID:              u.ID.String(),
		Email:           u.Email,
		Name:            u.Name,
		AvatarURL:       u.AvatarURL,
		StravaConnected: u.StravaConnected(),
		StravaAthleteID: u.StravaAthleteID,
		WeightKG:        u.WeightKG,
		FTP:             u.FTP,
		FollowerCount:   u.FollowerCount,
		FriendCount:     u.FriendCount,
		City:            u.City,
		Country:         u.Country,
		LastSyncAt:      u.LastSyncAt,
		CreatedAt:       u.CreatedAt,
	}
}
