package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	AnalysisJobQueued    = "queued"
	AnalysisJobRunning   = "running"
	AnalysisJobSucceeded = "succeeded"
	AnalysisJobFailed    = "failed"
)

// AnalysisJob is one unit of background work for the post-hoc bias analysis.
// A job is claimed exactly once; failed rows remain as the dead-letter log.
type AnalysisJob struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RunID     uuid.UUID `gorm:"type:uuid;not null;index" json:"run_id"`
	Status    string    `gorm:"column:status;not null;index" json:"status"`
	Error     string    `gorm:"column:error" json:"error,omitempty"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (AnalysisJob) TableName() string {
	return "analysis_job"
}
