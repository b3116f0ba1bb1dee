package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/biasdetektiv/study-backend/internal/logger"
	"github.com/biasdetektiv/study-backend/internal/types"
)

type AnalysisJobRepo interface {
	Create(ctx context.Context, tx *gorm.DB, job *types.AnalysisJob) (*types.AnalysisJob, error)
	// ClaimNextQueued atomically flips the oldest queued job to running and
	// returns it, or (nil, nil) when the queue is empty.
	ClaimNextQueued(ctx context.Context, tx *gorm.DB) (*types.AnalysisJob, error)
	MarkSucceeded(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	MarkFailed(ctx context.Context, tx *gorm.DB, id uuid.UUID, jobErr string) error
}

type analysisJobRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnalysisJobRepo(db *gorm.DB, baseLog *logger.Logger) AnalysisJobRepo {
	return &analysisJobRepo{db: db, log: baseLog.With("repo", "AnalysisJobRepo")}
}

func (r *analysisJobRepo) Create(ctx context.Context, tx *gorm.DB, job *types.AnalysisJob) (*types.AnalysisJob, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(job).Error; err != nil {
		return nil, err
	}
	return job, nil
}

// The claim is optimistic: read the oldest queued row, then update it guarded
// by its current status and check the affected-row count. Works on both the
// Postgres store and the sqlite test database.
func (r *analysisJobRepo) ClaimNextQueued(ctx context.Context, tx *gorm.DB) (*types.AnalysisJob, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	for {
		var job types.AnalysisJob
		err := transaction.WithContext(ctx).
			Where("status = ?", types.AnalysisJobQueued).
			Order("created_at ASC").
			First(&job).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		res := transaction.WithContext(ctx).
			Model(&types.AnalysisJob{}).
			Where("id = ? AND status = ?", job.ID, types.AnalysisJobQueued).
			Updates(map[string]interface{}{
				"status":     types.AnalysisJobRunning,
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			// Another worker got there first; try the next queued row.
			continue
		}
		job.Status = types.AnalysisJobRunning
		return &job, nil
	}
}

func (r *analysisJobRepo) MarkSucceeded(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.markStatus(ctx, tx, id, types.AnalysisJobSucceeded, "")
}

func (r *analysisJobRepo) MarkFailed(ctx context.Context, tx *gorm.DB, id uuid.UUID, jobErr string) error {
	return r.markStatus(ctx, tx, id, types.AnalysisJobFailed, jobErr)
}

func (r *analysisJobRepo) markStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string, jobErr string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.AnalysisJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"error":      jobErr,
			"updated_at": time.Now().UTC(),
		}).Error
}
