package stats

import (
	"context"
	"time"

	"github.com/couchproof/couchproof-backend/internal/activities"
	"github.com/couchproof/couchproof-backend/pkg/db"
	"github.com/couchproof/couchproof-backend/pkg/db/models"
	"github.com/couchproof/couchproof-backend/pkg/errors"
	"github.com/couchproof/couchproof-backend/pkg/logger"
	"github.com/google/uuid"
)

// ProviderStatsDTO is the Strava-computed snapshot exposed alongside the
// locally aggregated summary.
type ProviderStatsDTO struct {
	RecentRideCount    int     `json:"recent_ride_count"`
	RecentRideDistance float64 `json:"recent_ride_distance"`
	RecentRunCount     int     `json:"recent_run_count"`
	RecentRunDistance  float64 `json:"recent_run_distance"`
	RecentSwimCount    int     `json:"recent_swim_count"`
	RecentSwimDistance float64 `json:"recent_swim_distance"`

	YTDRideCount    int     `json:"ytd_ride_count"`
	YTDRideDistance float64 `json:"ytd_ride_distance"`
	YTDRunCount     int     `json:"ytd_run_count"`
	YTDRunDistance  float64 `json:"ytd_run_distance"`
	YTDSwimCount    int     `json:"ytd_swim_count"`
	YTDSwimDistance float64 `json:"ytd_swim_distance"`

	AllRideCount    int     `json:"all_ride_count"`
	AllRideDistance float64 `json:"all_ride_distance"`
	AllRunCount     int     `json:"all_run_count"`
	AllRunDistance  float64 `json:"all_run_distance"`
	AllSwimCount    int     `json:"all_swim_count"`
	AllSwimDistance float64 `json:"all_swim_distance"`

	BiggestRideDistance float64 `json:"biggest_ride_distance"`
	BiggestClimb        float64 `json:"biggest_climb"`
}

// SummaryDTO is the /stats response: local aggregation plus the provider
// snapshot when one has been synced.
type SummaryDTO struct {
	Summary
	Provider *ProviderStatsDTO `json:"provider,omitempty"`
}

// Service computes the stats summary for a user.
type Service struct {
	repo          *Repository
	activityRepo  *activities.Repository
	logger        *logger.Logger
	maxActivities int
}

// NewService constructs the stats service. maxActivities caps how many rows
// a single aggregation pass reads.
func NewService(repo *Repository, activityRepo *activities.Repository, logg *logger.Logger, maxActivities int) *Service {
	return &Service{repo: repo, activityRepo: activityRepo, logger: logg, maxActivities: maxActivities}
}

// Summary aggregates the user's activities as of now.
func (s *Service) Summary(ctx context.Context, userID uuid.UUID, now time.Time) (*SummaryDTO, error) {
	rows, err := s.activityRepo.ListAll(ctx, userID, s.maxActivities)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading activities for aggregation")
	}

	out := &SummaryDTO{Summary: Compute(rows, now)}

	provider, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if !db.IsNotFound(err) {
			return nil, errors.Wrap(errors.CodeInternal, err, "loading provider stats")
		}
	} else {
		out.Provider = toProviderDTO(provider)
	}
	return out, nil
}

func toProviderDTO(row *models.AthleteStats) *ProviderStatsDTO {
	return &ProviderStatsDTO{
		RecentRideCount:     row.RecentRideCount,
		RecentRideDistance:  row.RecentRideDistance,
		RecentRunCount:      row.RecentRunCount,
		RecentRunDistance:   row.RecentRunDistance,
		RecentSwimCount:     row.RecentSwimCount,
		RecentSwimDistance:  row.RecentSwimDistance,
		YTDRideCount:        row.YTDRideCount,
		YTDRideDistance:     row.YTDRideDistance,
		YTDRunCount:         row.YTDRunCount,
		YTDRunDistance:      row.YTDRunDistance,
		YTDSwimCount:        row.YTDSwimCount,
		YTDSwimDistance:     row.YTDSwimDistance,
		AllRideCount:        row.AllRideCount,
		AllRideDistance:     row.AllRideDistance,
		AllRunCount:         row.AllRunCount,
		AllRunDistance:      row.AllRunDistance,
		AllSwimCount:        row.AllSwimCount,
		AllSwimDistance:     row.AllSwimDistance,
		BiggestRideDistance: row.BiggestRideDistance,
		BiggestClimb:        row.BiggestClimb,
	}
}
