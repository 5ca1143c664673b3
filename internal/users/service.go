package users

import (
	"context"

	"github.com/couchproof/couchproof-backend/pkg/db"
	"github.com/couchproof/couchproof-backend/pkg/errors"
	"github.com/couchproof/couchproof-backend/pkg/logger"
	"github.com/couchproof/couchproof-backend/pkg/strava"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// OAuthClient is the slice of the Strava client the account flow needs.
type OAuthClient interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	GetAthlete(ctx context.Context, accessToken string) (*strava.Athlete, error)
	Deauthorize(ctx context.Context, accessToken string) error
}

// Service handles profile reads and the Strava account link lifecycle.
type Service struct {
	repo   *Repository
	oauth  OAuthClient
	logger *logger.Logger
}

// NewService constructs the users service.
func NewService(repo *Repository, oauth OAuthClient, logg *logger.Logger) *Service {
	return &Service{repo: repo, oauth: oauth, logger: logg}
}

// Profile returns the user's own profile.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, errors.New(errors.CodeNotFound, "user not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "loading user")
	}
	dto := ToProfileDTO(user)
	return &dto, nil
}

// AuthorizeURL builds the provider consent URL carrying the signed state.
func (s *Service) AuthorizeURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// Connect exchanges the OAuth code, fetches the athlete profile and links it
// to the account. An athlete already linked elsewhere is a conflict.
func (s *Service) Connect(ctx context.Context, userID uuid.UUID, code string) error {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return errors.Wrap(errors.CodeDependency, err, "strava code exchange failed")
	}

	athlete, err := s.oauth.GetAthlete(ctx, token.AccessToken)
	if err != nil {
		return errors.Wrap(errors.CodeDependency, err, "fetching athlete profile")
	}

	if existing, err := s.repo.FindByStravaAthleteID(ctx, athlete.ID); err == nil && existing.ID != userID {
		return errors.New(errors.CodeConflict, "strava account already linked to another user")
	} else if err != nil && !db.IsNotFound(err) {
		return errors.Wrap(errors.CodeInternal, err, "checking athlete link")
	}

	link := StravaLinkDTO{
		AthleteID:    athlete.ID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}
	if athlete.Profile != "" {
		link.AvatarURL = &athlete.Profile
	}
	if athlete.Weight > 0 {
		link.WeightKG = &athlete.Weight
	}
	link.FTP = athlete.FTP
	link.FollowerCount = &athlete.FollowerCount
	link.FriendCount = &athlete.FriendCount
	if athlete.City != "" {
		link.City = &athlete.City
	}
	if athlete.Country != "" {
		link.Country = &athlete.Country
	}

	if err := s.repo.LinkStrava(ctx, userID, link); err != nil {
		// Two concurrent links of the same athlete can both pass the check
		// above; the loser hits the unique index instead.
		if db.IsUniqueViolation(err, "") {
			return errors.New(errors.CodeConflict, "strava account already linked to another user")
		}
		return errors.Wrap(errors.CodeInternal, err, "linking strava account")
	}

	s.logger.Info(s.logger.WithAthleteID(s.logger.WithUserID(ctx, userID.String()), athlete.ID), "strava account linked")
	return nil
}

// Disconnect revokes the provider grant and clears stored tokens. Synced
// activities and stats are kept.
func (s *Service) Disconnect(ctx context.Context, userID uuid.UUID) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return errors.New(errors.CodeNotFound, "user not found")
		}
		return errors.Wrap(errors.CodeInternal, err, "loading user")
	}
	if !user.StravaConnected() {
		return errors.New(errors.CodeValidation, "strava account not connected")
	}

	if err := s.oauth.Deauthorize(ctx, *user.AccessToken); err != nil {
		// Best effort: the local disconnect must proceed even when the
		// provider call fails.
		s.logger.Warn(s.logger.WithUserID(ctx, userID.String()), "provider deauthorize failed")
	}

	if err := s.repo.ClearStravaTokens(ctx, userID); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "clearing tokens")
	}

	s.logger.Info(s.logger.WithUserID(ctx, userID.String()), "strava account disconnected")
	return nil
}
