package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/biasdetektiv/study-backend/internal/services"
)

type AdminHandler struct {
	admin services.AdminService
}

func NewAdminHandler(admin services.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

type adminLoginRequest struct {
	Password string `json:"password"`
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	token, err := h.admin.Login(req.Password)
	if errors.Is(err, services.ErrWrongPassword) {
		RespondError(c, http.StatusUnauthorized, "wrong_password", err)
		return
	}
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "login_failed", err)
		return
	}
	RespondOK(c, gin.H{"token": token})
}

func (h *AdminHandler) ListParticipants(c *gin.Context) {
	participants, err := h.admin.ListParticipants(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "participants_failed", err)
		return
	}
	RespondOK(c, gin.H{"participants": participants})
}

func (h *AdminHandler) ParticipantSessions(c *gin.Context) {
	participantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_participant_id", err)
		return
	}
	sessions, err := h.admin.ParticipantSessions(c.Request.Context(), participantID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "sessions_failed", err)
		return
	}
	RespondOK(c, gin.H{"sessions": sessions})
}
