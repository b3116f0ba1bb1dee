package services

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/biasdetektiv/study-backend/internal/logger"
	"github.com/biasdetektiv/study-backend/internal/repos"
	"github.com/biasdetektiv/study-backend/internal/scenarios"
	"github.com/biasdetektiv/study-backend/internal/types"
)

var ErrWrongPassword = errors.New("wrong admin password")

// AdminService gates the read-only review surface behind the shared study
// secret. The issued token is stored client-side; this is intentionally not a
// security boundary, the data is non-sensitive research data.
type AdminService interface {
	Login(password string) (string, error)
	VerifyToken(token string) error
	ListParticipants(ctx context.Context) ([]types.ParticipantSummary, error)
	ParticipantSessions(ctx context.Context, participantID uuid.UUID) ([]types.SessionWithRuns, error)
}

type adminService struct {
	log          *logger.Logger
	participants repos.ParticipantRepo
	sessions     repos.SessionRepo
	runs         repos.ScenarioRunRepo

	adminPassword     string
	adminPasswordHash string
	jwtSecretKey      []byte
	tokenTTL          time.Duration
}

func NewAdminService(
	baseLog *logger.Logger,
	participantRepo repos.ParticipantRepo,
	sessionRepo repos.SessionRepo,
	runRepo repos.ScenarioRunRepo,
	adminPassword string,
	adminPasswordHash string,
	jwtSecretKey string,
	tokenTTL time.Duration,
) AdminService {
	return &adminService{
		log:               baseLog.With("service", "AdminService"),
		participants:      participantRepo,
		sessions:          sessionRepo,
		runs:              runRepo,
		adminPassword:     adminPassword,
		adminPasswordHash: adminPasswordHash,
		jwtSecretKey:      []byte(jwtSecretKey),
		tokenTTL:          tokenTTL,
	}
}

func (s *adminService) Login(password string) (string, error) {
	if !s.passwordMatches(password) {
		return "", ErrWrongPassword
	}

	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecretKey)
	if err != nil {
		return "", err
	}
	return signed, nil
}

func (s *adminService) passwordMatches(password string) bool {
	if s.adminPasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.adminPasswordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(s.adminPassword), []byte(password)) == 1
}

func (s *adminService) VerifyToken(tokenStr string) error {
	token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecretKey, nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return errors.New("invalid token")
	}
	return nil
}

func (s *adminService) ListParticipants(ctx context.Context) ([]types.ParticipantSummary, error) {
	return s.participants.ListSummaries(ctx, nil)
}

func (s *adminService) ParticipantSessions(ctx context.Context, participantID uuid.UUID) ([]types.SessionWithRuns, error) {
	sessions, err := s.sessions.ListByParticipant(ctx, nil, participantID)
	if err != nil {
		return nil, err
	}

	out := make([]types.SessionWithRuns, 0, len(sessions))
	for _, session := range sessions {
		runs, err := s.runs.ListBySession(ctx, nil, session.ID)
		if err != nil {
			return nil, err
		}
		withRuns := types.SessionWithRuns{Session: *session}
		for _, run := range runs {
			withRuns.Runs = append(withRuns.Runs, s.runDetail(run))
		}
		out = append(out, withRuns)
	}
	return out, nil
}

// runDetail decodes the JSON columns; a malformed or missing analysis simply
// shows up as nil (the pending/failed state in the review UI).
func (s *adminService) runDetail(run *types.ScenarioRun) types.RunDetail {
	detail := types.RunDetail{Run: *run}

	if scenario, ok := scenarios.ByID(run.ScenarioID); ok {
		detail.Scenario = &scenario
	}

	if len(run.ChatHistory) > 0 {
		if err := json.Unmarshal(run.ChatHistory, &detail.ChatHistory); err != nil {
			s.log.Warn("Could not decode chat history", "run_id", run.ID, "error", err)
		}
	}
	if len(run.AIAnalysis) > 0 {
		var analysis types.AnalysisResult
		if err := json.Unmarshal(run.AIAnalysis, &analysis); err != nil {
			s.log.Warn("Could not decode analysis result", "run_id", run.ID, "error", err)
		} else {
			detail.Analysis = &analysis
		}
	}
	return detail
}
