package achievements

import (
	"context"
	"time"

	"github.com/couchproof/couchproof-backend/internal/activities"
	"github.com/couchproof/couchproof-backend/internal/stats"
	"github.com/couchproof/couchproof-backend/pkg/db/models"
	"github.com/couchproof/couchproof-backend/pkg/errors"
	"github.com/couchproof/couchproof-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AchievementDTO is one catalog entry joined with the user's unlock state.
type AchievementDTO struct {
	ID          string     `json:"id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Tier        int        `json:"tier"`
	Requirement float64    `json:"requirement"`
	Icon        string     `json:"icon,omitempty"`
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
	Progress    float64    `json:"progress"`
}

// CheckResultDTO lists achievements newly unlocked by an evaluation pass.
type CheckResultDTO struct {
	NewlyUnlocked []AchievementDTO `json:"newly_unlocked"`
}

// Service evaluates the catalog against a user's stats summary.
type Service struct {
	repo       *Repository
	stats      *stats.Service
	activities *activities.Repository
	tx         txRunner
	logger     *logger.Logger
}

// NewService constructs the achievements service.
func NewService(repo *Repository, statsService *stats.Service, activityRepo *activities.Repository, tx txRunner, logg *logger.Logger) *Service {
	return &Service{repo: repo, stats: statsService, activities: activityRepo, tx: tx, logger: logg}
}

// List returns the full catalog with unlock state and progress for the user.
func (s *Service) List(ctx context.Context, userID uuid.UUID, now time.Time) ([]AchievementDTO, error) {
	catalog, err := s.repo.ListCatalog(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading achievement catalog")
	}
	unlocks, err := s.repo.ListUnlocks(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading unlocks")
	}
	summary, err := s.stats.Summary(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	unlockedAt := map[uuid.UUID]time.Time{}
	for _, u := range unlocks {
		unlockedAt[u.AchievementID] = u.UnlockedAt
	}

	out := make([]AchievementDTO, 0, len(catalog))
	for i := range catalog {
		a := &catalog[i]
		dto := toDTO(a, currentValue(a.Category, &summary.Summary))
		if at, ok := unlockedAt[a.ID]; ok {
			dto.Unlocked = true
			at := at
			dto.UnlockedAt = &at
		}
		out = append(out, dto)
	}
	return out, nil
}

// Check evaluates the catalog and persists any newly crossed unlocks. Rows
// are append-only: a regression in stats never re-locks anything.
func (s *Service) Check(ctx context.Context, userID uuid.UUID, now time.Time) (*CheckResultDTO, error) {
	catalog, err := s.repo.ListCatalog(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading achievement catalog")
	}
	summary, err := s.stats.Summary(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	latest := s.latestActivityID(ctx, userID)

	type candidate struct {
		achievement *models.Achievement
		current     float64
		row         *models.UserAchievement
	}
	var candidates []candidate
	for i := range catalog {
		a := &catalog[i]
		current := currentValue(a.Category, &summary.Summary)
		if current < a.Requirement {
			continue
		}
		candidates = append(candidates, candidate{
			achievement: a,
			current:     current,
			row: &models.UserAchievement{
				ID:            uuid.New(),
				UserID:        userID,
				AchievementID: a.ID,
				ActivityID:    s.crossingActivity(ctx, userID, a, latest),
				UnlockedAt:    now.UTC(),
			},
		})
	}

	result := &CheckResultDTO{NewlyUnlocked: []AchievementDTO{}}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for _, c := range candidates {
			a, current, row := c.achievement, c.current, c.row
			inserted, err := repo.Unlock(ctx, row)
			if err != nil {
				return err
			}
			if !inserted {
				continue
			}

			dto := toDTO(a, current)
			dto.Unlocked = true
			dto.UnlockedAt = &row.UnlockedAt
			result.NewlyUnlocked = append(result.NewlyUnlocked, dto)

			s.logger.Info(s.logger.WithFields(ctx, map[string]any{
				"achievement": a.Code,
				"category":    a.Category,
			}), "achievement unlocked")
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "persisting unlocks")
	}
	return result, nil
}

// latestActivityID resolves the user's newest activity, best effort.
func (s *Service) latestActivityID(ctx context.Context, userID uuid.UUID) *uuid.UUID {
	rows, err := s.activities.ListRecent(ctx, userID, 1)
	if err != nil || len(rows) == 0 {
		return nil
	}
	id := rows[0].ID
	return &id
}

// crossingActivity attributes an unlock to an activity. Single-activity
// categories record the newest activity meeting the bar; cumulative
// categories record the newest activity, the one that tipped the metric.
func (s *Service) crossingActivity(ctx context.Context, userID uuid.UUID, a *models.Achievement, latest *uuid.UUID) *uuid.UUID {
	if a.Category != models.AchievementCategorySingle {
		return latest
	}
	row, err := s.activities.MostRecentAtLeastDistance(ctx, userID, a.Requirement)
	if err != nil {
		return nil
	}
	id := row.ID
	return &id
}

// currentValue resolves the metric an achievement category is measured
// against from the stats summary.
func currentValue(category string, summary *stats.Summary) float64 {
	switch category {
	case models.AchievementCategoryDistance:
		return summary.Totals.DistanceM
	case models.AchievementCategoryCount:
		return float64(summary.Totals.Count)
	case models.AchievementCategoryStreak:
		return float64(summary.LongestStreakDays)
	case models.AchievementCategoryElevation:
		return summary.Totals.ElevationGain
	case models.AchievementCategorySingle:
		return summary.BiggestActivityM
	default:
		return 0
	}
}

// Progress converts a current/target pair to a percentage clamped to [0, 100].
func Progress(current, target float64) float64 {
	if target <= 0 {
		return 100
	}
	pct := current / target * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

func toDTO(a *models.Achievement, current float64) AchievementDTO {
	return AchievementDTO{
		ID:          a.ID.String(),
		Code:        a.Code,
		Name:        a.Name,
		Description: a.Description,
		Category:    a.Category,
		Tier:        a.Tier,
		Requirement: a.Requirement,
		Icon:        a.Icon,
		Progress:    Progress(current, a.Requirement),
	}
}
