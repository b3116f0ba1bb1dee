package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/biasdetektiv/study-backend/internal/logger"
	"github.com/biasdetektiv/study-backend/internal/repos"
	"github.com/biasdetektiv/study-backend/internal/scenarios"
	"github.com/biasdetektiv/study-backend/internal/types"
)

type SubmitRunInput struct {
	SessionID     uuid.UUID
	ParticipantID *uuid.UUID
	ScenarioID    string
	ChatHistory   []types.ChatItem
	Assessment    types.Assessment
}

type StudyService interface {
	// EnsureParticipant upserts by external user id when one is given,
	// otherwise creates a fresh anonymous record.
	EnsureParticipant(ctx context.Context, externalUserID *string, age *int, displayName *string) (*types.Participant, error)
	StartSession(ctx context.Context, participantID *uuid.UUID) (*types.StudySession, error)
	// SubmitRun validates the assessment, scores it against the scenario's
	// ground truth, persists the run and enqueues the post-hoc analysis.
	SubmitRun(ctx context.Context, input SubmitRunInput) (*types.ScenarioRun, error)
	// CompleteSession recomputes the total from the persisted runs and marks
	// the session finished.
	CompleteSession(ctx context.Context, sessionID uuid.UUID) (*types.StudySession, error)
	// Leaderboard degrades to an empty slice on storage failure; the read
	// path is non-critical.
	Leaderboard(ctx context.Context, limit int) []types.LeaderboardEntry
	Results(ctx context.Context, sessionID uuid.UUID) (*types.StudyResults, error)
}

type studyService struct {
	db           *gorm.DB
	log          *logger.Logger
	participants repos.ParticipantRepo
	sessions     repos.SessionRepo
	runs         repos.ScenarioRunRepo
	jobs         repos.AnalysisJobRepo
}

func NewStudyService(
	db *gorm.DB,
	baseLog *logger.Logger,
	participantRepo repos.ParticipantRepo,
	sessionRepo repos.SessionRepo,
	runRepo repos.ScenarioRunRepo,
	jobRepo repos.AnalysisJobRepo,
) StudyService {
	return &studyService{
		db:           db,
		log:          baseLog.With("service", "StudyService"),
		participants: participantRepo,
		sessions:     sessionRepo,
		runs:         runRepo,
		jobs:         jobRepo,
	}
}

func (s *studyService) EnsureParticipant(ctx context.Context, externalUserID *string, age *int, displayName *string) (*types.Participant, error) {
	if externalUserID != nil && *externalUserID != "" {
		existing, err := s.participants.GetByExternalUserID(ctx, nil, *externalUserID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if displayName != nil && (existing.DisplayName == nil || *existing.DisplayName != *displayName) {
				if err := s.participants.UpdateFields(ctx, nil, existing.ID, map[string]interface{}{
					"display_name": *displayName,
					"updated_at":   time.Now().UTC(),
				}); err != nil {
					return nil, err
				}
				existing.DisplayName = displayName
			}
			return existing, nil
		}
	}

	now := time.Now().UTC()
	participant := &types.Participant{
		ID:          uuid.New(),
		DisplayName: displayName,
		Age:         age,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if externalUserID != nil && *externalUserID != "" {
		participant.ExternalUserID = externalUserID
	}
	return s.participants.Create(ctx, nil, participant)
}

func (s *studyService) StartSession(ctx context.Context, participantID *uuid.UUID) (*types.StudySession, error) {
	session := &types.StudySession{
		ID:            uuid.New(),
		ParticipantID: participantID,
		StartedAt:     time.Now().UTC(),
	}
	return s.sessions.Create(ctx, nil, session)
}

func (s *studyService) SubmitRun(ctx context.Context, input SubmitRunInput) (*types.ScenarioRun, error) {
	if err := input.Assessment.Validate(); err != nil {
		return nil, err
	}
	if err := types.ValidateChatHistory(input.ChatHistory); err != nil {
		return nil, err
	}

	scenario, ok := scenarios.ByID(input.ScenarioID)
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q", input.ScenarioID)
	}

	isCorrect, pointsEarned := Score(input.Assessment, scenario)

	historyJSON, err := json.Marshal(input.ChatHistory)
	if err != nil {
		return nil, fmt.Errorf("encode chat history: %w", err)
	}

	run := &types.ScenarioRun{
		ID:            uuid.New(),
		SessionID:     input.SessionID,
		ParticipantID: input.ParticipantID,
		ScenarioID:    scenario.ID,
		Category:      string(scenario.Category),
		ChatHistory:   datatypes.JSON(historyJSON),
		IsBiased:      input.Assessment.IsBiased,
		Confidence:    input.Assessment.Confidence,
		Reasoning:     input.Assessment.Reasoning,
		IsCorrect:     isCorrect,
		PointsEarned:  pointsEarned,
		CreatedAt:     time.Now().UTC(),
	}
	created, err := s.runs.Create(ctx, nil, run)
	if err != nil {
		return nil, err
	}

	// Fire-and-forget: a failed enqueue only costs the admin analysis, never
	// the participant flow.
	now := time.Now().UTC()
	if _, err := s.jobs.Create(ctx, nil, &types.AnalysisJob{
		ID:        uuid.New(),
		RunID:     created.ID,
		Status:    types.AnalysisJobQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		s.log.Warn("Could not enqueue analysis job", "run_id", created.ID, "error", err)
	}

	return created, nil
}

func (s *studyService) CompleteSession(ctx context.Context, sessionID uuid.UUID) (*types.StudySession, error) {
	session, err := s.sessions.GetByID(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}

	total, err := s.runs.SumPointsBySession(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}

	completedAt := time.Now().UTC()
	if err := s.sessions.Complete(ctx, nil, sessionID, total, completedAt); err != nil {
		return nil, err
	}

	session.TotalPoints = &total
	session.CompletedAt = &completedAt
	return session, nil
}

func (s *studyService) Leaderboard(ctx context.Context, limit int) []types.LeaderboardEntry {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.sessions.Leaderboard(ctx, nil, limit)
	if err != nil {
		s.log.Warn("Leaderboard query failed, returning empty result", "error", err)
		return []types.LeaderboardEntry{}
	}

	entries := make([]types.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		name := "Anonym"
		if row.DisplayName != nil && *row.DisplayName != "" {
			name = *row.DisplayName
		}
		entries = append(entries, types.LeaderboardEntry{
			Rank:        i + 1,
			DisplayName: name,
			TotalPoints: row.TotalPoints,
		})
	}
	return entries
}

func (s *studyService) Results(ctx context.Context, sessionID uuid.UUID) (*types.StudyResults, error) {
	session, err := s.sessions.GetByID(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}
	runs, err := s.runs.ListBySession(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}

	total := 0
	correct := 0
	for _, run := range runs {
		total += run.PointsEarned
		if run.IsCorrect {
			correct++
		}
	}

	results := &types.StudyResults{
		Session:            *session,
		TotalPoints:        total,
		CorrectCount:       correct,
		RunCount:           len(runs),
		OverallAccuracy:    OverallAccuracy(runs),
		AccuracyByCategory: AccuracyByCategory(runs),
		Rank:               RankFor(total),
		Badges:             BadgesFor(runs),
	}
	for _, run := range runs {
		results.Runs = append(results.Runs, *run)
	}
	return results, nil
}
