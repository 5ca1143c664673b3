package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the Couchproof account, holding the linked Strava identity and the
// OAuth token pair used for API calls on the athlete's behalf.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string    `gorm:"type:text;not null;uniqueIndex"`
	Name      string    `gorm:"column:name;not null"`
	AvatarURL *string   `gorm:"column:avatar_url"`

	StravaAthleteID *int64     `gorm:"column:strava_athlete_id;uniqueIndex"`
	AccessToken     *string    `gorm:"column:access_token"`
	RefreshToken    *string    `gorm:"column:refresh_token"`
	TokenExpiresAt  *time.Time `gorm:"column:token_expires_at"`

	// Cached profile attributes refreshed on sync.
	WeightKG      *float64 `gorm:"column:weight_kg"`
	FTP           *int     `gorm:"column:ftp"`
	FollowerCount *int     `gorm:"column:follower_count"`
	FriendCount   *int     `gorm:"column:friend_count"`
	City          *string  `gorm:"column:city"`
	Country       *string  `gorm:"column:country"`

	LastSyncAt *time.Time `gorm:"column:last_sync_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// StravaConnected reports whether the user currently holds a usable token pair.
func (u *User) StravaConnected() bool {
	return u != nil && u.StravaAthleteID != nil && u.AccessToken != nil && u.RefreshToken != nil
}
