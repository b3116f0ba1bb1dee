package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/biasdetektiv/study-backend/internal/logger"
	"github.com/biasdetektiv/study-backend/internal/types"
)

type SessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, session *types.StudySession) (*types.StudySession, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.StudySession, error)
	ListByParticipant(ctx context.Context, tx *gorm.DB, participantID uuid.UUID) ([]*types.StudySession, error)
	Complete(ctx context.Context, tx *gorm.DB, id uuid.UUID, totalPoints int, completedAt time.Time) error
	Leaderboard(ctx context.Context, tx *gorm.DB, limit int) ([]LeaderboardRow, error)
}

type LeaderboardRow struct {
	TotalPoints int
	DisplayName *string
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return &sessionRepo{db: db, log: baseLog.With("repo", "SessionRepo")}
}

func (r *sessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.StudySession) (*types.StudySession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (r *sessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.StudySession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.StudySession
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *sessionRepo) ListByParticipant(ctx context.Context, tx *gorm.DB, participantID uuid.UUID) ([]*types.StudySession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.StudySession
	if err := transaction.WithContext(ctx).
		Where("participant_id = ?", participantID).
		Order("started_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sessionRepo) Complete(ctx context.Context, tx *gorm.DB, id uuid.UUID, totalPoints int, completedAt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.StudySession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_points": totalPoints,
			"completed_at": completedAt,
		}).Error
}

// Leaderboard returns the top completed sessions by point total, joined with
// the owning participant's display name. Ranking itself happens in the
// service; ties keep a stable order via started_at.
func (r *sessionRepo) Leaderboard(ctx context.Context, tx *gorm.DB, limit int) ([]LeaderboardRow, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []LeaderboardRow
	err := transaction.WithContext(ctx).
		Table("study_session").
		Select("COALESCE(study_session.total_points, 0) AS total_points, participant.display_name AS display_name").
		Joins("LEFT JOIN participant ON participant.id = study_session.participant_id").
		Where("study_session.completed_at IS NOT NULL").
		Order("study_session.total_points DESC, study_session.started_at ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
