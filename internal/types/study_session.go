package types

import (
	"time"

	"github.com/google/uuid"
)

// StudySession groups the scenario runs of one participant visit. TotalPoints
// and CompletedAt stay NULL until the session is completed.
type StudySession struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ParticipantID *uuid.UUID `gorm:"type:uuid;index" json:"participant_id,omitempty"`
	TotalPoints   *int       `gorm:"column:total_points" json:"total_points,omitempty"`
	StartedAt     time.Time  `gorm:"not null;index" json:"started_at"`
	CompletedAt   *time.Time `gorm:"column:completed_at;index" json:"completed_at,omitempty"`
}

func (StudySession) TableName() string {
	return "study_session"
}
