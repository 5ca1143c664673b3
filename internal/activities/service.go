package activities

import (
	"context"
	"fmt"
	"time"

	"github.com/couchproof/couchproof-backend/pkg/db"
	"github.com/couchproof/couchproof-backend/pkg/db/models"
	"github.com/couchproof/couchproof-backend/pkg/errors"
	"github.com/couchproof/couchproof-backend/pkg/logger"
	"github.com/couchproof/couchproof-backend/pkg/pagination"
	"github.com/google/uuid"
)

// Service wraps activity reads and manual entry creation.
type Service struct {
	repo   *Repository
	logger *logger.Logger
}

// NewService constructs the activities service.
func NewService(repo *Repository, logg *logger.Logger) *Service {
	return &Service{repo: repo, logger: logg}
}

// List returns one cursor page of the user's activities.
func (s *Service) List(ctx context.Context, userID uuid.UUID, filter ListFilter, params pagination.Params) (*ListResponseDTO, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.List(ctx, userID, filter, limit+1, cursor)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing activities")
	}

	resp := &ListResponseDTO{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next := pagination.EncodeCursor(pagination.Cursor{StartDate: last.StartDate, ID: last.ID})
		resp.NextCursor = &next
	}
	resp.Activities = ToActivityDTOs(rows)
	return resp, nil
}

// Get loads one activity owned by the user.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*ActivityDTO, error) {
	row, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, errors.New(errors.CodeNotFound, "activity not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "loading activity")
	}
	dto := ToActivityDTO(row)
	return &dto, nil
}

// CreateManual logs an activity entered by hand. Manual rows share the
// activities table with synced rows under the manual source, with a generated
// external id so the uniqueness tuple still holds.
func (s *Service) CreateManual(ctx context.Context, userID uuid.UUID, input CreateManualDTO) (*ActivityDTO, error) {
	if input.ElapsedTimeS < input.MovingTimeS {
		input.ElapsedTimeS = input.MovingTimeS
	}

	row := &models.Activity{
		ID:             uuid.New(),
		UserID:         userID,
		Source:         models.ActivitySourceManual,
		ExternalID:     fmt.Sprintf("manual-%s", uuid.NewString()),
		Name:           input.Name,
		SportType:      input.SportType,
		StartDate:      input.StartDate.UTC(),
		StartDateLocal: input.StartDate,
		DistanceM:      input.DistanceM,
		MovingTimeS:    input.MovingTimeS,
		ElapsedTimeS:   input.ElapsedTimeS,
		ElevationGain:  input.ElevationGain,
		Manual:         true,
	}

	if err := s.repo.Create(ctx, row); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "creating manual activity")
	}

	s.logger.Info(s.logger.WithFields(ctx, map[string]any{
		"activity_id": row.ID.String(),
		"sport_type":  row.SportType,
	}), "manual activity created")

	dto := ToActivityDTO(row)
	return &dto, nil
}

// ParseDateFilter converts optional RFC3339 or date-only query values into a
// list filter bound.
func ParseDateFilter(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("parsing date %q: %w", value, err)
	}
	return &t, nil
}
