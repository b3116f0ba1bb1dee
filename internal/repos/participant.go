package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/biasdetektiv/study-backend/internal/logger"
	"github.com/biasdetektiv/study-backend/internal/types"
)

type ParticipantRepo interface {
	Create(ctx context.Context, tx *gorm.DB, participant *types.Participant) (*types.Participant, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Participant, error)
	GetByExternalUserID(ctx context.Context, tx *gorm.DB, externalUserID string) (*types.Participant, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	ListSummaries(ctx context.Context, tx *gorm.DB) ([]types.ParticipantSummary, error)
}

type participantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewParticipantRepo(db *gorm.DB, baseLog *logger.Logger) ParticipantRepo {
	return &participantRepo{db: db, log: baseLog.With("repo", "ParticipantRepo")}
}

func (r *participantRepo) Create(ctx context.Context, tx *gorm.DB, participant *types.Participant) (*types.Participant, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(participant).Error; err != nil {
		return nil, err
	}
	return participant, nil
}

func (r *participantRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Participant, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.Participant
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// GetByExternalUserID returns (nil, nil) when no participant exists for the
// external identifier.
func (r *participantRepo) GetByExternalUserID(ctx context.Context, tx *gorm.DB, externalUserID string) (*types.Participant, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.Participant
	err := transaction.WithContext(ctx).
		Where("external_user_id = ?", externalUserID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *participantRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Participant{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ListSummaries aggregates session counts and point totals per participant for
// the admin overview.
func (r *participantRepo) ListSummaries(ctx context.Context, tx *gorm.DB) ([]types.ParticipantSummary, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []types.ParticipantSummary
	err := transaction.WithContext(ctx).
		Table("participant").
		Select(`participant.id AS id,
			participant.display_name AS display_name,
			COUNT(study_session.id) AS total_sessions,
			COALESCE(SUM(study_session.total_points), 0) AS total_points,
			MAX(study_session.started_at) AS last_active`).
		Joins("LEFT JOIN study_session ON study_session.participant_id = participant.id").
		Group("participant.id, participant.display_name, participant.created_at").
		Order("participant.created_at DESC").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
