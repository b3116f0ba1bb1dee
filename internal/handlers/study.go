package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/biasdetektiv/study-backend/internal/logger"
	"github.com/biasdetektiv/study-backend/internal/scenarios"
	"github.com/biasdetektiv/study-backend/internal/services"
	"github.com/biasdetektiv/study-backend/internal/types"
)

type StudyHandler struct {
	log              *logger.Logger
	study            services.StudyService
	conversation     services.ConversationService
	leaderboardLimit int
}

func NewStudyHandler(baseLog *logger.Logger, study services.StudyService, conversation services.ConversationService, leaderboardLimit int) *StudyHandler {
	if leaderboardLimit <= 0 {
		leaderboardLimit = 10
	}
	return &StudyHandler{
		log:              baseLog.With("handler", "StudyHandler"),
		study:            study,
		conversation:     conversation,
		leaderboardLimit: leaderboardLimit,
	}
}

// ListScenarios returns the participant-facing catalog, shuffled per request.
// Persona prompts and ground-truth labels stay server-side.
func (h *StudyHandler) ListScenarios(c *gin.Context) {
	RespondOK(c, gin.H{"scenarios": scenarios.PublicRandomized()})
}

type ensureParticipantRequest struct {
	UserID   *string `json:"userId"`
	Age      *int    `json:"age"`
	Username *string `json:"username"`
}

func (h *StudyHandler) EnsureParticipant(c *gin.Context) {
	var req ensureParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	participant, err := h.study.EnsureParticipant(c.Request.Context(), req.UserID, req.Age, req.Username)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "participant_failed", err)
		return
	}
	RespondOK(c, gin.H{"participant": participant})
}

type startSessionRequest struct {
	ParticipantID *uuid.UUID `json:"participantId"`
	UserID        *string    `json:"userId"`
}

func (h *StudyHandler) StartSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	participantID := req.ParticipantID
	if participantID == nil && req.UserID != nil && *req.UserID != "" {
		participant, err := h.study.EnsureParticipant(c.Request.Context(), req.UserID, nil, nil)
		if err != nil {
			RespondError(c, http.StatusInternalServerError, "participant_failed", err)
			return
		}
		participantID = &participant.ID
	}

	session, err := h.study.StartSession(c.Request.Context(), participantID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "session_failed", err)
		return
	}
	RespondOK(c, gin.H{"session": session})
}

type chatRequest struct {
	ScenarioID string           `json:"scenarioId"`
	History    []types.ChatItem `json:"history"`
	Message    string           `json:"message"`
}

func (h *StudyHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	scenario, ok := scenarios.ByID(req.ScenarioID)
	if !ok {
		RespondError(c, http.StatusNotFound, "unknown_scenario", errors.New("unknown scenario"))
		return
	}

	history, err := h.conversation.Reply(c.Request.Context(), scenario, req.History, req.Message)
	if errors.Is(err, services.ErrEmptyMessage) {
		RespondError(c, http.StatusBadRequest, "empty_message", err)
		return
	}
	if err != nil {
		// The turn is abandoned; the participant keeps their transcript and
		// may retry with another message.
		RespondError(c, http.StatusBadGateway, "chat_failed", err)
		return
	}

	RespondOK(c, gin.H{
		"history":   history,
		"reply":     history[len(history)-1].Content,
		"canFinish": h.conversation.CanFinish(history),
	})
}

type submitRunRequest struct {
	SessionID     uuid.UUID        `json:"sessionId"`
	ParticipantID *uuid.UUID       `json:"participantId"`
	ScenarioID    string           `json:"scenarioId"`
	ChatHistory   []types.ChatItem `json:"chatHistory"`
	Assessment    types.Assessment `json:"assessment"`
}

func (h *StudyHandler) SubmitRun(c *gin.Context) {
	var req submitRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if req.SessionID == uuid.Nil {
		RespondError(c, http.StatusBadRequest, "missing_session", errors.New("sessionId is required"))
		return
	}

	run, err := h.study.SubmitRun(c.Request.Context(), services.SubmitRunInput{
		SessionID:     req.SessionID,
		ParticipantID: req.ParticipantID,
		ScenarioID:    req.ScenarioID,
		ChatHistory:   req.ChatHistory,
		Assessment:    req.Assessment,
	})
	if err != nil {
		RespondError(c, http.StatusBadRequest, "submit_failed", err)
		return
	}
	RespondOK(c, gin.H{"run": run})
}

func (h *StudyHandler) CompleteSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return
	}
	session, err := h.study.CompleteSession(c.Request.Context(), sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		RespondError(c, http.StatusNotFound, "session_not_found", err)
		return
	}
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "complete_failed", err)
		return
	}
	RespondOK(c, gin.H{"session": session})
}

func (h *StudyHandler) Results(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return
	}
	results, err := h.study.Results(c.Request.Context(), sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		RespondError(c, http.StatusNotFound, "session_not_found", err)
		return
	}
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "results_failed", err)
		return
	}
	RespondOK(c, gin.H{"results": results})
}

func (h *StudyHandler) Leaderboard(c *gin.Context) {
	limit := h.leaderboardLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := parsePositiveInt(raw); err == nil {
			limit = parsed
		}
	}
	RespondOK(c, gin.H{"leaderboard": h.study.Leaderboard(c.Request.Context(), limit)})
}
