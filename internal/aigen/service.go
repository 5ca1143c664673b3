package aigen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/couchproof/couchproof-backend/internal/activities"
	"github.com/couchproof/couchproof-backend/internal/stats"
	"github.com/couchproof/couchproof-backend/pkg/config"
	"github.com/couchproof/couchproof-backend/pkg/db"
	"github.com/couchproof/couchproof-backend/pkg/db/models"
	"github.com/couchproof/couchproof-backend/pkg/errors"
	"github.com/couchproof/couchproof-backend/pkg/logger"
	"github.com/couchproof/couchproof-backend/pkg/openai"
	"github.com/google/uuid"
)

// Completer is the slice of the OpenAI client the service needs.
type Completer interface {
	Complete(ctx context.Context, messages []openai.ChatMessage) (string, error)
	Model() string
}

// GenerationDTO is the response for all AI text endpoints.
type GenerationDTO struct {
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Model     string    `json:"model"`
	Cached    bool      `json:"cached"`
	CreatedAt time.Time `json:"created_at"`
}

// Service generates motivational text from the user's stats, avoiding
// repeats of recent outputs.
type Service struct {
	repo         *Repository
	activityRepo *activities.Repository
	stats        *stats.Service
	completer    Completer
	logger       *logger.Logger
	cfg          config.AIConfig
}

// NewService constructs the aigen service.
func NewService(repo *Repository, activityRepo *activities.Repository, statsService *stats.Service, completer Completer, logg *logger.Logger, cfg config.AIConfig) *Service {
	return &Service{
		repo:         repo,
		activityRepo: activityRepo,
		stats:        statsService,
		completer:    completer,
		logger:       logg,
		cfg:          cfg,
	}
}

var systemPrompts = map[string]string{
	models.AIGenerationRoast: "You are a merciless but affectionate fitness coach. " +
		"Roast the athlete based on their stats in 2-3 sentences. Be funny, specific to the numbers, never cruel about health.",
	models.AIGenerationHype: "You are an over-the-top hype man for an amateur athlete. " +
		"Celebrate their stats in 2-3 sentences of pure energy. Reference the actual numbers.",
	models.AIGenerationPersonality: "You are a sports psychologist with a sense of humor. " +
		"Describe this athlete's training personality in 3-4 sentences based on their trait scores and patterns.",
}

// Generate produces roast, hype, or personality text from the current stats.
// Candidates too close to any of the user's recent outputs of the same type
// trigger a bounded number of regenerations; the final candidate is always
// accepted and stored.
func (s *Service) Generate(ctx context.Context, userID uuid.UUID, genType string, now time.Time) (*GenerationDTO, error) {
	system, ok := systemPrompts[genType]
	if !ok {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("unsupported generation type %q", genType))
	}

	summary, err := s.stats.Summary(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if summary.Totals.Count == 0 {
		return nil, errors.New(errors.CodeValidation, "no activities to generate from")
	}

	prompt := statsPrompt(&summary.Summary)
	recent, err := s.repo.ListRecentContent(ctx, userID, genType, s.cfg.AvoidanceWindow)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading recent generations")
	}

	var content string
	for attempt := 0; ; attempt++ {
		content, err = s.complete(ctx, system, prompt)
		if err != nil {
			return nil, err
		}
		if !TooSimilar(content, recent, s.cfg.SimilarityThreshold) {
			break
		}
		if attempt >= s.cfg.MaxRegenerations {
			s.logger.Warn(s.logger.WithField(ctx, "type", genType), "accepting repetitive generation after max retries")
			break
		}
	}

	row := &models.AIGeneration{
		ID:      uuid.New(),
		UserID:  userID,
		Type:    genType,
		Prompt:  prompt,
		Content: content,
		Model:   s.completer.Model(),
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "storing generation")
	}

	return &GenerationDTO{
		Type:      genType,
		Content:   content,
		Model:     row.Model,
		CreatedAt: now,
	}, nil
}

// ActivitySummary returns the cached summary for an activity, generating and
// caching it on first request. Summaries are never regenerated.
func (s *Service) ActivitySummary(ctx context.Context, userID, activityID uuid.UUID, now time.Time) (*GenerationDTO, error) {
	activity, err := s.activityRepo.GetByID(ctx, userID, activityID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, errors.New(errors.CodeNotFound, "activity not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "loading activity")
	}

	if activity.AISummary != nil {
		return &GenerationDTO{
			Type:      models.AIGenerationSummary,
			Content:   *activity.AISummary,
			Cached:    true,
			CreatedAt: activity.UpdatedAt,
		}, nil
	}

	prompt := activityPrompt(activity)
	content, err := s.complete(ctx,
		"You are a fitness app writing one short, punchy summary of a single workout. Two sentences max, reference the numbers.",
		prompt)
	if err != nil {
		return nil, err
	}

	if err := s.activityRepo.SetAISummary(ctx, activityID, content); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "caching summary")
	}
	row := &models.AIGeneration{
		ID:         uuid.New(),
		UserID:     userID,
		Type:       models.AIGenerationSummary,
		ActivityID: &activityID,
		Prompt:     prompt,
		Content:    content,
		Model:      s.completer.Model(),
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "storing generation")
	}

	return &GenerationDTO{
		Type:      models.AIGenerationSummary,
		Content:   content,
		Model:     row.Model,
		CreatedAt: now,
	}, nil
}

func (s *Service) complete(ctx context.Context, system, prompt string) (string, error) {
	content, err := s.completer.Complete(ctx, []openai.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return "", errors.Wrap(errors.CodeDependency, err, "text generation failed")
	}
	return strings.TrimSpace(content), nil
}

// statsPrompt renders the aggregation summary as a compact block the model
// can reason over.
func statsPrompt(s *stats.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Athlete stats:\n")
	fmt.Fprintf(&b, "- activities: %d, total distance: %.1f km, moving time: %.1f h, elevation: %.0f m\n",
		s.Totals.Count, s.Totals.DistanceM/1000, float64(s.Totals.MovingTimeS)/3600, s.Totals.ElevationGain)
	fmt.Fprintf(&b, "- last 7 days: %d activities, %.1f km\n", s.Week.Count, s.Week.DistanceM/1000)
	fmt.Fprintf(&b, "- current streak: %d days, longest: %d days\n", s.CurrentStreakDays, s.LongestStreakDays)
	fmt.Fprintf(&b, "- traits (0-100): early_bird=%d night_owl=%d weekend_warrior=%d consistency=%d explorer=%d social=%d masochist=%d\n",
		s.Traits.EarlyBird, s.Traits.NightOwl, s.Traits.WeekendWarrior, s.Traits.Consistency,
		s.Traits.Explorer, s.Traits.Social, s.Traits.Masochist)

	for sport, totals := range s.BySport {
		fmt.Fprintf(&b, "- %s: %d activities, %.1f km\n", sport, totals.Count, totals.DistanceM/1000)
	}
	return b.String()
}

func activityPrompt(a *models.Activity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Workout: %s (%s)\n", a.Name, a.SportType)
	fmt.Fprintf(&b, "- distance: %.2f km, moving time: %d min, elevation: %.0f m\n",
		a.DistanceM/1000, a.MovingTimeS/60, a.ElevationGain)
	if a.AverageHR != nil {
		fmt.Fprintf(&b, "- avg heart rate: %.0f bpm\n", *a.AverageHR)
	}
	if a.AverageWatts != nil {
		fmt.Fprintf(&b, "- avg power: %.0f W\n", *a.AverageWatts)
	}
	if a.SufferScore != nil {
		fmt.Fprintf(&b, "- suffer score: %.0f\n", *a.SufferScore)
	}
	if a.KudosCount > 0 {
		fmt.Fprintf(&b, "- kudos: %d\n", a.KudosCount)
	}
	fmt.Fprintf(&b, "- started: %s local time\n", a.StartDateLocal.Format("Mon 15:04"))
	return b.String()
}
