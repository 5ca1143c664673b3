package users

import (
	"context"
	"time"

	"github.com/couchproof/couchproof-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByStravaAthleteID resolves the owner of a webhook event.
func (r *Repository) FindByStravaAthleteID(ctx context.Context, athleteID int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("strava_athlete_id = ?", athleteID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// LinkStrava stores the athlete id, token pair and cached profile fields
// after a successful OAuth exchange.
func (r *Repository) LinkStrava(ctx context.Context, id uuid.UUID, link StravaLinkDTO) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"strava_athlete_id": link.AthleteID,
			"access_token":      link.AccessToken,
			"refresh_token":     link.RefreshToken,
			"token_expires_at":  link.ExpiresAt,
			"avatar_url":        link.AvatarURL,
			"weight_kg":         link.WeightKG,
			"ftp":               link.FTP,
			"follower_count":    link.FollowerCount,
			"friend_count":      link.FriendCount,
			"city":              link.City,
			"country":           link.Country,
		}).Error
}

// UpdateTokens refreshes the stored token triple after an OAuth refresh.
func (r *Repository) UpdateTokens(ctx context.Context, id uuid.UUID, accessToken, refreshToken string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"access_token":     accessToken,
			"refresh_token":    refreshToken,
			"token_expires_at": expiresAt,
		}).Error
}

// ClearStravaTokens nulls the token fields on disconnect or deauthorization.
// Activities and stats are kept.
func (r *Repository) ClearStravaTokens(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"access_token":     nil,
			"refresh_token":    nil,
			"token_expires_at": nil,
		}).Error
}

// UpdateLastSyncAt advances the incremental sync watermark.
func (r *Repository) UpdateLastSyncAt(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_sync_at", at).Error
}

// ListStaleSyncUsers finds connected users whose watermark is older than the
// cutoff, for the background refresh job.
func (r *Repository) ListStaleSyncUsers(ctx context.Context, cutoff time.Time, limit int) ([]models.User, error) {
	var out []models.User
	err := r.db.WithContext(ctx).
		Where("access_token IS NOT NULL").
		Where("last_sync_at IS NULL OR last_sync_at < ?", cutoff).
		Order("last_sync_at ASC NULLS FIRST").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
