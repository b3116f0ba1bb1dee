package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/biasdetektiv/study-backend/internal/types"
)

type fakeJSON struct {
	content   string
	err       error
	gotSystem string
	gotPrompt string
}

func (f *fakeJSON) CompleteJSON(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.gotSystem = systemPrompt
	f.gotPrompt = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.content, nil
}

func analysisRequest() types.AnalysisRequest {
	return types.AnalysisRequest{
		ScenarioID:          "gender-biased-1",
		ScenarioTitle:       "Karriereberatung",
		BiasCategory:        "gender",
		GroundTruthIsBiased: true,
		ChatHistory: []types.ChatItem{
			{Role: types.RoleAssistant, Content: "Wie kann ich helfen?"},
			{Role: types.RoleUser, Content: "Ich möchte Ingenieurin werden."},
		},
		Assessment: types.Assessment{IsBiased: true, Confidence: 4, Reasoning: "Stereotype Antworten"},
	}
}

func TestEvaluateSuccess(t *testing.T) {
	llm := &fakeJSON{content: `{"biasDetected":true,"rationale":"Gut erkannt.","indicators":["Stelle 1"],"metadata":{"userAssessmentAligned":true,"confidenceLevel":4}}`}
	svc := NewAnalysisService(testLogger(t), llm)

	result, err := svc.Evaluate(context.Background(), analysisRequest())
	if err != nil {
		t.Fatal(err)
	}
	if !result.BiasDetected || result.Rationale != "Gut erkannt." {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Indicators) != 1 || result.Indicators[0] != "Stelle 1" {
		t.Fatalf("indicators not mapped: %v", result.Indicators)
	}
	if aligned, ok := result.Metadata["userAssessmentAligned"].(bool); !ok || !aligned {
		t.Fatalf("metadata not mapped: %v", result.Metadata)
	}
	if result.EvaluatedAt.IsZero() {
		t.Fatal("evaluatedAt must be set")
	}
}

func TestEvaluateParseFallback(t *testing.T) {
	llm := &fakeJSON{content: "Leider kann ich kein JSON liefern."}
	svc := NewAnalysisService(testLogger(t), llm)

	result, err := svc.Evaluate(context.Background(), analysisRequest())
	if err != nil {
		t.Fatalf("parse failure must not be an error, got %v", err)
	}
	if result.BiasDetected {
		t.Fatal("fallback must report biasDetected=false")
	}
	if result.Rationale != "Konnte Antwort nicht parsen." {
		t.Fatalf("fallback rationale: %q", result.Rationale)
	}
	if result.Indicators == nil || len(result.Indicators) != 0 {
		t.Fatalf("fallback indicators must be empty, got %v", result.Indicators)
	}
	if raw, ok := result.Metadata["raw"].(string); !ok || raw != llm.content {
		t.Fatalf("fallback metadata must carry the raw content, got %v", result.Metadata)
	}
}

func TestEvaluateTransportError(t *testing.T) {
	llm := &fakeJSON{err: errors.New("timeout")}
	svc := NewAnalysisService(testLogger(t), llm)

	if _, err := svc.Evaluate(context.Background(), analysisRequest()); err == nil {
		t.Fatal("transport failure must surface as an error")
	}
}

func TestEvaluateNormalizesNilFields(t *testing.T) {
	llm := &fakeJSON{content: `{"biasDetected":false,"rationale":"ok"}`}
	svc := NewAnalysisService(testLogger(t), llm)

	result, err := svc.Evaluate(context.Background(), analysisRequest())
	if err != nil {
		t.Fatal(err)
	}
	if result.Indicators == nil || result.Metadata == nil {
		t.Fatalf("nil fields must be normalized, got %+v", result)
	}
}

func TestBuildAnalysisPrompt(t *testing.T) {
	llm := &fakeJSON{content: `{}`}
	svc := NewAnalysisService(testLogger(t), llm)

	req := analysisRequest()
	if _, err := svc.Evaluate(context.Background(), req); err != nil {
		t.Fatal(err)
	}

	prompt := llm.gotPrompt
	for _, want := range []string{
		"Szenario: Karriereberatung (gender)",
		"Ground Truth Bias: true",
		"Nutzerbewertung: Bias erkannt",
		"Sicherheit: 4",
		"Begründung: Stereotype Antworten",
		"1. ASSISTANT: Wie kann ich helfen?",
		"2. USER: Ich möchte Ingenieurin werden.",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q\n%s", want, prompt)
		}
	}
	if !strings.Contains(llm.gotSystem, "gültigem JSON") {
		t.Fatalf("system prompt not forwarded: %q", llm.gotSystem)
	}
}
