package sync

import (
	"context"
	stderrors "errors"
	"strconv"
	"time"

	"github.com/couchproof/couchproof-backend/internal/activities"
	"github.com/couchproof/couchproof-backend/internal/gear"
	"github.com/couchproof/couchproof-backend/internal/stats"
	"github.com/couchproof/couchproof-backend/internal/users"
	"github.com/couchproof/couchproof-backend/pkg/config"
	"github.com/couchproof/couchproof-backend/pkg/db"
	"github.com/couchproof/couchproof-backend/pkg/db/models"
	"github.com/couchproof/couchproof-backend/pkg/errors"
	"github.com/couchproof/couchproof-backend/pkg/logger"
	"github.com/couchproof/couchproof-backend/pkg/metrics"
	redisclient "github.com/couchproof/couchproof-backend/pkg/redis"
	"github.com/couchproof/couchproof-backend/pkg/strava"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// Sync modes used for logging and metric labels.
const (
	ModeIncremental = "incremental"
	ModeFull        = "full"
)

// ProviderClient is the slice of the Strava client the sync engine needs.
// Narrowed to an interface so tests can script provider behavior.
type ProviderClient interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
	GetAthleteStats(ctx context.Context, accessToken string, athleteID int64) (*strava.AthleteStats, error)
	ListActivities(ctx context.Context, accessToken string, after time.Time, page, perPage int) ([]strava.SummaryActivity, error)
	GetActivity(ctx context.Context, accessToken string, id int64) (*strava.DetailedActivity, error)
	GetActivityStreams(ctx context.Context, accessToken string, id int64) (strava.StreamSet, error)
	GetGear(ctx context.Context, accessToken, gearID string) (*strava.Gear, error)
}

// ResultDTO reports one sync pass.
type ResultDTO struct {
	Synced      int  `json:"synced"`
	Skipped     int  `json:"skipped"`
	Failed      int  `json:"failed"`
	RateLimited bool `json:"rate_limited"`
	HasMore     bool `json:"has_more"`
}

// Service imports provider activities into the local store.
type Service struct {
	users      *users.Repository
	activities *activities.Repository
	stats      *stats.Repository
	gear       *gear.Repository
	provider   ProviderClient
	redis      *redisclient.Client
	metrics    *metrics.SyncMetrics
	logger     *logger.Logger
	cfg        config.SyncConfig
	delay      time.Duration
	buffer     time.Duration
	now        func() time.Time
	sleep      func(time.Duration)
}

// NewService constructs the sync service.
func NewService(
	userRepo *users.Repository,
	activityRepo *activities.Repository,
	statsRepo *stats.Repository,
	gearRepo *gear.Repository,
	provider ProviderClient,
	redisClient *redisclient.Client,
	syncMetrics *metrics.SyncMetrics,
	logg *logger.Logger,
	cfg config.SyncConfig,
	stravaCfg config.StravaConfig,
) *Service {
	return &Service{
		users:      userRepo,
		activities: activityRepo,
		stats:      statsRepo,
		gear:       gearRepo,
		provider:   provider,
		redis:      redisClient,
		metrics:    syncMetrics,
		logger:     logg,
		cfg:        cfg,
		delay:      stravaCfg.RequestDelay,
		buffer:     stravaCfg.RefreshBuffer,
		now:        time.Now,
		sleep:      time.Sleep,
	}
}

// Incremental imports activities newer than the user's watermark, then
// refreshes the provider stats snapshot and gear, then advances the
// watermark. Re-runs with identical upstream data change nothing.
func (s *Service) Incremental(ctx context.Context, userID uuid.UUID) (*ResultDTO, error) {
	started := s.now()
	user, token, err := s.loadConnectedUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	after := started.Add(-s.cfg.IncrementalWindow)
	if user.LastSyncAt != nil {
		after = *user.LastSyncAt
	}

	ctx = s.logger.WithAthleteID(s.logger.WithUserID(ctx, userID.String()), *user.StravaAthleteID)
	result := &ResultDTO{}

	for page := 1; ; page++ {
		batch, err := s.provider.ListActivities(ctx, token, after, page, s.cfg.PageSize)
		if err != nil {
			if stderrors.Is(err, strava.ErrRateLimited) {
				result.RateLimited = true
				result.HasMore = true
				break
			}
			return nil, errors.Wrap(errors.CodeDependency, err, "listing activities")
		}
		s.metrics.IncPage(ModeIncremental)

		if stop := s.processBatch(ctx, ModeIncremental, userID, token, batch, result, nil); stop {
			break
		}
		if len(batch) < s.cfg.PageSize {
			break
		}
	}

	s.refreshAncillary(ctx, user, token)

	if !result.RateLimited {
		if err := s.users.UpdateLastSyncAt(ctx, userID, started); err != nil {
			s.logger.Error(ctx, "updating sync watermark", err)
		}
	}

	s.metrics.ObserveDuration(ModeIncremental, s.now().Sub(started))
	s.logSummary(ctx, ModeIncremental, result)
	return result, nil
}

// Full walks the long lookback window in capped batches so one invocation
// stays inside the provider's rate budget. The page cursor is kept in Redis
// so the next invocation resumes where this one stopped; re-processing a
// partially handled page is safe because complete rows are skipped.
func (s *Service) Full(ctx context.Context, userID uuid.UUID) (*ResultDTO, error) {
	started := s.now()
	user, token, err := s.loadConnectedUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	after := started.Add(-s.cfg.FullLookback)
	ctx = s.logger.WithAthleteID(s.logger.WithUserID(ctx, userID.String()), *user.StravaAthleteID)

	page := s.resumePage(ctx, userID)
	budget := s.cfg.FullBatchCap
	result := &ResultDTO{}

	for ; ; page++ {
		batch, err := s.provider.ListActivities(ctx, token, after, page, s.cfg.PageSize)
		if err != nil {
			if stderrors.Is(err, strava.ErrRateLimited) {
				result.RateLimited = true
				result.HasMore = true
				s.storeResumePage(ctx, userID, page)
				break
			}
			return nil, errors.Wrap(errors.CodeDependency, err, "listing activities")
		}
		s.metrics.IncPage(ModeFull)

		stop := s.processBatch(ctx, ModeFull, userID, token, batch, result, &budget)
		if stop {
			result.HasMore = true
			s.storeResumePage(ctx, userID, page)
			break
		}
		if len(batch) < s.cfg.PageSize {
			s.clearResumePage(ctx, userID)
			break
		}
	}

	if !result.HasMore {
		s.refreshAncillary(ctx, user, token)
		if err := s.users.UpdateLastSyncAt(ctx, userID, started); err != nil {
			s.logger.Error(ctx, "updating sync watermark", err)
		}
	}

	s.metrics.ObserveDuration(ModeFull, s.now().Sub(started))
	s.logSummary(ctx, ModeFull, result)
	return result, nil
}

// processBatch imports one listing page. Per-activity failures are counted
// and skipped so the loop always advances. Returns true when the pass must
// stop, either on rate limit or an exhausted detail budget.
func (s *Service) processBatch(ctx context.Context, mode string, userID uuid.UUID, token string, batch []strava.SummaryActivity, result *ResultDTO, budget *int) bool {
	for i := range batch {
		summary := &batch[i]

		if budget != nil && *budget <= 0 {
			return true
		}

		outcome, err := s.importActivity(ctx, userID, token, summary, false)
		if err != nil {
			if stderrors.Is(err, strava.ErrRateLimited) {
				result.RateLimited = true
				result.HasMore = true
				return true
			}
			result.Failed++
			s.metrics.IncActivity(mode, "failed")
			s.logger.Error(s.logger.WithField(ctx, "activity_id", summary.ID), "importing activity", err)
			continue
		}

		switch outcome {
		case "synced":
			result.Synced++
			if budget != nil {
				*budget--
			}
			s.sleep(s.delay)
		case "skipped":
			result.Skipped++
		}
		s.metrics.IncActivity(mode, outcome)
	}
	return false
}

// ImportOne fetches and upserts a single provider activity, refreshing the
// row even when it is already complete. Used by the webhook ingestion path.
func (s *Service) ImportOne(ctx context.Context, userID uuid.UUID, stravaActivityID int64) error {
	_, token, err := s.loadConnectedUser(ctx, userID)
	if err != nil {
		return err
	}
	_, err = s.importActivity(ctx, userID, token, &strava.SummaryActivity{ID: stravaActivityID}, true)
	return err
}

// importActivity fetches detail and streams for one listed activity and
// upserts it through the shared mapping. Unless forced, rows already
// complete locally are not refetched.
func (s *Service) importActivity(ctx context.Context, userID uuid.UUID, token string, summary *strava.SummaryActivity, force bool) (string, error) {
	externalID := strconv.FormatInt(summary.ID, 10)
	existing, err := s.activities.GetByExternalID(ctx, userID, models.ActivitySourceStrava, externalID)
	if err != nil && !db.IsNotFound(err) {
		return "", err
	}
	if !force && existing.Complete() {
		return "skipped", nil
	}

	detail, err := s.provider.GetActivity(ctx, token, summary.ID)
	if err != nil {
		return "", err
	}
	streams, err := s.provider.GetActivityStreams(ctx, token, summary.ID)
	if err != nil && !stderrors.Is(err, strava.ErrRateLimited) {
		// Streams are best effort: some activity types have none.
		s.logger.Warn(s.logger.WithField(ctx, "activity_id", summary.ID), "fetching streams failed")
		streams = nil
		err = nil
	}
	if err != nil {
		return "", err
	}

	row := MapActivity(userID, &detail.SummaryActivity)
	ApplyDetail(row, detail)
	ApplyStreams(row, streams)

	if err := s.activities.Upsert(ctx, row); err != nil {
		return "", err
	}
	return "synced", nil
}

// refreshAncillary replaces the provider stats snapshot and upserts gear.
// Failures here never fail the sync pass.
func (s *Service) refreshAncillary(ctx context.Context, user *models.User, token string) {
	snapshot, err := s.provider.GetAthleteStats(ctx, token, *user.StravaAthleteID)
	if err != nil {
		s.logger.Warn(s.logger.WithField(ctx, "reason", err.Error()), "refreshing athlete stats failed")
	} else if err := s.stats.Replace(ctx, MapAthleteStats(user.ID, snapshot)); err != nil {
		s.logger.Error(ctx, "storing athlete stats", err)
	}

	gearIDs, err := s.distinctGearIDs(ctx, user.ID)
	if err != nil {
		s.logger.Error(ctx, "loading gear ids", err)
		return
	}
	for _, id := range gearIDs {
		item, err := s.provider.GetGear(ctx, token, id)
		if err != nil {
			s.logger.Warn(s.logger.WithField(ctx, "gear_id", id), "fetching gear failed")
			continue
		}
		if err := s.gear.Upsert(ctx, MapGear(user.ID, item)); err != nil {
			s.logger.Error(s.logger.WithField(ctx, "gear_id", id), "storing gear", err)
		}
	}
}

func (s *Service) distinctGearIDs(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := s.activities.ListRecent(ctx, userID, 200)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	var out []string
	for i := range rows {
		if rows[i].GearID == nil {
			continue
		}
		if _, ok := seen[*rows[i].GearID]; ok {
			continue
		}
		seen[*rows[i].GearID] = struct{}{}
		out = append(out, *rows[i].GearID)
	}
	return out, nil
}

// loadConnectedUser resolves the user and a fresh access token, refreshing
// when expiry is inside the buffer. A failed refresh means the stored grant
// is dead and the user must reconnect.
func (s *Service) loadConnectedUser(ctx context.Context, userID uuid.UUID) (*models.User, string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, "", errors.New(errors.CodeNotFound, "user not found")
		}
		return nil, "", errors.Wrap(errors.CodeInternal, err, "loading user")
	}
	if !user.StravaConnected() {
		return nil, "", errors.New(errors.CodeValidation, "strava account not connected")
	}

	if user.TokenExpiresAt != nil && s.now().Add(s.buffer).Before(*user.TokenExpiresAt) {
		return user, *user.AccessToken, nil
	}

	refreshed, err := s.provider.Refresh(ctx, *user.RefreshToken)
	if err != nil {
		return nil, "", errors.Wrap(errors.CodeUnauthorized, err, "strava token refresh failed, reconnect required")
	}
	if err := s.users.UpdateTokens(ctx, userID, refreshed.AccessToken, refreshed.RefreshToken, refreshed.Expiry); err != nil {
		return nil, "", errors.Wrap(errors.CodeInternal, err, "storing refreshed tokens")
	}
	user.AccessToken = &refreshed.AccessToken
	user.RefreshToken = &refreshed.RefreshToken
	user.TokenExpiresAt = &refreshed.Expiry
	return user, refreshed.AccessToken, nil
}

func (s *Service) resumePage(ctx context.Context, userID uuid.UUID) int {
	value, err := s.redis.Get(ctx, s.redis.SyncResumeKey(userID.String()))
	if err != nil || value == "" {
		return 1
	}
	page, err := strconv.Atoi(value)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func (s *Service) storeResumePage(ctx context.Context, userID uuid.UUID, page int) {
	if err := s.redis.Set(ctx, s.redis.SyncResumeKey(userID.String()), page, s.cfg.ResumeTTL); err != nil {
		s.logger.Error(ctx, "storing sync resume cursor", err)
	}
}

func (s *Service) clearResumePage(ctx context.Context, userID uuid.UUID) {
	if err := s.redis.Del(ctx, s.redis.SyncResumeKey(userID.String())); err != nil {
		s.logger.Error(ctx, "clearing sync resume cursor", err)
	}
}

func (s *Service) logSummary(ctx context.Context, mode string, result *ResultDTO) {
	s.logger.Info(s.logger.WithFields(ctx, map[string]any{
		"mode":         mode,
		"synced":       result.Synced,
		"skipped":      result.Skipped,
		"failed":       result.Failed,
		"rate_limited": result.RateLimited,
		"has_more":     result.HasMore,
	}), "sync pass finished")
}
