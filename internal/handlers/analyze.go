package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	goopenai "github.com/sashabaranov/go-openai"

	"github.com/biasdetektiv/study-backend/internal/logger"
	"github.com/biasdetektiv/study-backend/internal/services"
	"github.com/biasdetektiv/study-backend/internal/types"
)

// AnalyzeHandler exposes the analysis boundary synchronously. The study flow
// itself goes through the background queue; this endpoint exists for
// operator tooling.
type AnalyzeHandler struct {
	log      *logger.Logger
	analysis services.AnalysisService
}

func NewAnalyzeHandler(baseLog *logger.Logger, analysis services.AnalysisService) *AnalyzeHandler {
	return &AnalyzeHandler{
		log:      baseLog.With("handler", "AnalyzeHandler"),
		analysis: analysis,
	}
}

func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req types.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	result, err := h.analysis.Evaluate(c.Request.Context(), req)
	if err != nil {
		h.log.Warn("Analysis request failed", "scenario", req.ScenarioID, "error", err)
		status := http.StatusInternalServerError
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
			// Mirror the upstream status so callers see the real failure.
			status = apiErr.HTTPStatusCode
		}
		RespondError(c, status, "analysis_failed", err)
		return
	}
	RespondOK(c, result)
}
