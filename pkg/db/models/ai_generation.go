package models

import (
	"time"

	"github.com/google/uuid"
)

// Generation types supported by the AI text endpoints.
const (
	AIGenerationRoast       = "roast"
	AIGenerationHype        = "hype"
	AIGenerationSummary     = "summary"
	AIGenerationPersonality = "personality"
)

// AIGeneration stores past generated text per user/type so the avoidance
// check can compare fresh candidates against recent outputs.
type AIGeneration struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index:idx_ai_generations_user_type,priority:1"`
	Type       string     `gorm:"column:type;not null;index:idx_ai_generations_user_type,priority:2"`
	ActivityID *uuid.UUID `gorm:"column:activity_id;type:uuid"`

	Prompt  string `gorm:"column:prompt;not null"`
	Content string `gorm:"column:content;not null"`
	Model   string `gorm:"column:model;not null"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index"`
}
