package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ScenarioRun is one finished scenario: transcript, the participant's
// assessment, derived scoring fields, and (later) the secondary AI analysis.
// AIAnalysis stays NULL while the analysis is pending or has failed.
type ScenarioRun struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"session_id"`
	ParticipantID *uuid.UUID     `gorm:"type:uuid;index" json:"participant_id,omitempty"`
	ScenarioID    string         `gorm:"column:scenario_id;not null;index" json:"scenario_id"`
	Category      string         `gorm:"column:category;not null" json:"category"`
	ChatHistory   datatypes.JSON `gorm:"column:chat_history" json:"chat_history"`
	IsBiased      bool           `gorm:"column:is_biased;not null" json:"is_biased"`
	Confidence    int            `gorm:"column:confidence;not null" json:"confidence"`
	Reasoning     string         `gorm:"column:reasoning;not null" json:"reasoning"`
	IsCorrect     bool           `gorm:"column:is_correct;not null" json:"is_correct"`
	PointsEarned  int            `gorm:"column:points_earned;not null" json:"points_earned"`
	AIAnalysis    datatypes.JSON `gorm:"column:ai_analysis" json:"ai_analysis,omitempty"`
	CreatedAt     time.Time      `gorm:"not null;index" json:"created_at"`
}

func (ScenarioRun) TableName() string {
	return "scenario_run"
}
