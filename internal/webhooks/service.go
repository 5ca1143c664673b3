package webhooks

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/couchproof/couchproof-backend/internal/activities"
	syncsvc "github.com/couchproof/couchproof-backend/internal/sync"
	"github.com/couchproof/couchproof-backend/internal/users"
	"github.com/couchproof/couchproof-backend/pkg/db"
	"github.com/couchproof/couchproof-backend/pkg/db/models"
	"github.com/couchproof/couchproof-backend/pkg/logger"
	redisclient "github.com/couchproof/couchproof-backend/pkg/redis"
	"github.com/couchproof/couchproof-backend/pkg/strava"
)

// dedupTTL bounds how long an event delivery is remembered. Strava retries
// failed deliveries for well under a day.
const dedupTTL = 24 * time.Hour

// Service processes provider push events. Processing errors are returned for
// logging but the HTTP layer always answers 200; Strava disables
// subscriptions that keep failing.
type Service struct {
	users      *users.Repository
	activities *activities.Repository
	sync       *syncsvc.Service
	redis      *redisclient.Client
	logger     *logger.Logger
}

// NewService constructs the webhook service.
func NewService(userRepo *users.Repository, activityRepo *activities.Repository, syncService *syncsvc.Service, redisClient *redisclient.Client, logg *logger.Logger) *Service {
	return &Service{
		users:      userRepo,
		activities: activityRepo,
		sync:       syncService,
		redis:      redisClient,
		logger:     logg,
	}
}

// HandleEvent routes one event delivery. Duplicate deliveries (same object,
// aspect and event time) are dropped via a Redis guard.
func (s *Service) HandleEvent(ctx context.Context, event *strava.WebhookEvent) error {
	key := s.redis.WebhookKey(
		strconv.FormatInt(event.ObjectID, 10),
		event.AspectType,
		strconv.FormatInt(event.EventTime, 10),
	)
	fresh, err := s.redis.SetNX(ctx, key, 1, dedupTTL)
	if err != nil {
		// A broken guard only risks reprocessing, which is idempotent.
		s.logger.Warn(ctx, "webhook dedup guard unavailable")
	} else if !fresh {
		s.logger.Info(s.logger.WithField(ctx, "object_id", event.ObjectID), "duplicate webhook delivery dropped")
		return nil
	}

	user, err := s.users.FindByStravaAthleteID(ctx, event.OwnerID)
	if err != nil {
		if db.IsNotFound(err) {
			s.logger.Warn(s.logger.WithAthleteID(ctx, event.OwnerID), "webhook for unknown athlete")
			return nil
		}
		return fmt.Errorf("resolving event owner: %w", err)
	}

	ctx = s.logger.WithAthleteID(s.logger.WithUserID(ctx, user.ID.String()), event.OwnerID)

	switch event.ObjectType {
	case strava.ObjectTypeActivity:
		return s.handleActivityEvent(ctx, user, event)
	case strava.ObjectTypeAthlete:
		return s.handleAthleteEvent(ctx, user, event)
	default:
		s.logger.Warn(s.logger.WithField(ctx, "object_type", event.ObjectType), "unhandled webhook object type")
		return nil
	}
}

func (s *Service) handleActivityEvent(ctx context.Context, user *models.User, event *strava.WebhookEvent) error {
	switch event.AspectType {
	case strava.AspectCreate, strava.AspectUpdate:
		if err := s.sync.ImportOne(ctx, user.ID, event.ObjectID); err != nil {
			return fmt.Errorf("importing activity %d: %w", event.ObjectID, err)
		}
		s.logger.Info(s.logger.WithField(ctx, "activity_id", event.ObjectID), "webhook activity imported")
		return nil

	case strava.AspectDelete:
		externalID := strconv.FormatInt(event.ObjectID, 10)
		affected, err := s.activities.DeleteByExternalID(ctx, user.ID, models.ActivitySourceStrava, externalID)
		if err != nil {
			return fmt.Errorf("deleting activity %d: %w", event.ObjectID, err)
		}
		s.logger.Info(s.logger.WithFields(ctx, map[string]any{
			"activity_id": event.ObjectID,
			"deleted":     affected,
		}), "webhook activity delete processed")
		return nil

	default:
		s.logger.Warn(s.logger.WithField(ctx, "aspect_type", event.AspectType), "unhandled activity aspect")
		return nil
	}
}

// handleAthleteEvent reacts to deauthorization pushes. Tokens are cleared
// but activities and stats stay.
func (s *Service) handleAthleteEvent(ctx context.Context, user *models.User, event *strava.WebhookEvent) error {
	if event.AspectType != strava.AspectUpdate {
		return nil
	}
	if event.Updates["authorized"] != "false" {
		return nil
	}
	if err := s.users.ClearStravaTokens(ctx, user.ID); err != nil {
		return fmt.Errorf("clearing tokens after deauthorization: %w", err)
	}
	s.logger.Info(ctx, "athlete deauthorized, tokens cleared")
	return nil
}
