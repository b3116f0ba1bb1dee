package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/biasdetektiv/study-backend/internal/logger"
	"github.com/biasdetektiv/study-backend/internal/types"
)

const analysisSystemPrompt = "Du bist deutschsprachig und analysierst Chatverläufe von Nutzern mit einer KI und beurteilst, wie gut sie mögliche Verzerrungen/Bias in den Antworten der KI erkannt haben. Antworte ausschließlich mit gültigem JSON."

const analysisParseFailure = "Konnte Antwort nicht parsen."

// JSONCompleter is the slice of the OpenAI client the analysis service needs.
type JSONCompleter interface {
	CompleteJSON(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

type AnalysisService interface {
	// Evaluate asks the model for a secondary bias verdict on a finished
	// scenario run. Transport failures return an error; a response that is
	// not valid JSON is replaced by a deterministic fallback result and is
	// NOT an error.
	Evaluate(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResult, error)
}

type analysisService struct {
	log *logger.Logger
	llm JSONCompleter
}

func NewAnalysisService(baseLog *logger.Logger, llm JSONCompleter) AnalysisService {
	return &analysisService{
		log: baseLog.With("service", "AnalysisService"),
		llm: llm,
	}
}

func (s *analysisService) Evaluate(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResult, error) {
	content, err := s.llm.CompleteJSON(ctx, analysisSystemPrompt, buildAnalysisPrompt(req))
	if err != nil {
		return nil, err
	}

	var parsed struct {
		BiasDetected bool           `json:"biasDetected"`
		Rationale    string         `json:"rationale"`
		Indicators   []string       `json:"indicators"`
		Metadata     map[string]any `json:"metadata"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		s.log.Warn(analysisParseFailure, "scenario", req.ScenarioID, "error", err)
		return &types.AnalysisResult{
			BiasDetected: false,
			Rationale:    analysisParseFailure,
			Indicators:   []string{},
			Metadata:     map[string]any{"raw": content},
			EvaluatedAt:  time.Now().UTC(),
		}, nil
	}

	if parsed.Indicators == nil {
		parsed.Indicators = []string{}
	}
	if parsed.Metadata == nil {
		parsed.Metadata = map[string]any{}
	}
	return &types.AnalysisResult{
		BiasDetected: parsed.BiasDetected,
		Rationale:    parsed.Rationale,
		Indicators:   parsed.Indicators,
		Metadata:     parsed.Metadata,
		EvaluatedAt:  time.Now().UTC(),
	}, nil
}

func buildAnalysisPrompt(req types.AnalysisRequest) string {
	var transcript strings.Builder
	for i, msg := range req.ChatHistory {
		fmt.Fprintf(&transcript, "%d. %s: %s\n", i+1, strings.ToUpper(msg.Role), msg.Content)
	}

	userVerdict := "Kein Bias erkannt"
	if req.Assessment.IsBiased {
		userVerdict = "Bias erkannt"
	}

	return fmt.Sprintf(`
Du bist deutschsprachig und analysierst Chatverläufe von Nutzern mit einer KI und beurteilst, wie gut sie mögliche Verzerrungen/Bias in den Antworten der KI erkannt haben.

Aufgabe:
- Prüfe wie gut der Nutzer mögliche Verzerrungen/Bias in den Antworten der KI erkannt hat und begründe deine Antwort.
- Berücksichtige die Nutzerbewertung (Assessment) und erkläre, ob sie stimmig ist.
- Ziehe konkrete Textstellen aus dem Verlauf heran.

Liefere eine JSON-Antwort im Format:
{
  "biasDetected": boolean,
  "rationale": "kurze Begründung (max 3 Sätze)",
  "indicators": ["Stelle 1", "Stelle 2"],
  "metadata": {
    "userAssessmentAligned": boolean,
    "confidenceLevel": number
  }
}

Szenario: %s (%s)
Ground Truth Bias: %t

Assessment:
- Nutzerbewertung: %s
- Sicherheit: %d
- Begründung: %s

Chatverlauf:
%s`,
		req.ScenarioTitle, req.BiasCategory, req.GroundTruthIsBiased,
		userVerdict, req.Assessment.Confidence, req.Assessment.Reasoning,
		transcript.String())
}
