package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/biasdetektiv/study-backend/internal/logger"
	"github.com/biasdetektiv/study-backend/internal/types"
)

type ScenarioRunRepo interface {
	Create(ctx context.Context, tx *gorm.DB, run *types.ScenarioRun) (*types.ScenarioRun, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ScenarioRun, error)
	ListBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.ScenarioRun, error)
	SumPointsBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (int, error)
	AttachAnalysis(ctx context.Context, tx *gorm.DB, id uuid.UUID, analysis datatypes.JSON) error
}

type scenarioRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScenarioRunRepo(db *gorm.DB, baseLog *logger.Logger) ScenarioRunRepo {
	return &scenarioRunRepo{db: db, log: baseLog.With("repo", "ScenarioRunRepo")}
}

func (r *scenarioRunRepo) Create(ctx context.Context, tx *gorm.DB, run *types.ScenarioRun) (*types.ScenarioRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (r *scenarioRunRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ScenarioRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.ScenarioRun
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *scenarioRunRepo) ListBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.ScenarioRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ScenarioRun
	if err := transaction.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *scenarioRunRepo) SumPointsBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var total int64
	if err := transaction.WithContext(ctx).
		Model(&types.ScenarioRun{}).
		Where("session_id = ?", sessionID).
		Select("COALESCE(SUM(points_earned), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return int(total), nil
}

func (r *scenarioRunRepo) AttachAnalysis(ctx context.Context, tx *gorm.DB, id uuid.UUID, analysis datatypes.JSON) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.ScenarioRun{}).
		Where("id = ?", id).
		Update("ai_analysis", analysis).Error
}
