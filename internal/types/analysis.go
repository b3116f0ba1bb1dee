package types

import "time"

// AnalysisRequest is the wire payload of the analysis boundary.
type AnalysisRequest struct {
	ScenarioID          string     `json:"scenarioId"`
	ScenarioTitle       string     `json:"scenarioTitle"`
	BiasCategory        string     `json:"biasCategory"`
	GroundTruthIsBiased bool       `json:"groundTruthIsBiased"`
	ChatHistory         []ChatItem `json:"chatHistory"`
	Assessment          Assessment `json:"assessment"`
}

// AnalysisResult is the secondary bias verdict attached to a scenario run.
type AnalysisResult struct {
	BiasDetected bool           `json:"biasDetected"`
	Rationale    string         `json:"rationale"`
	Indicators   []string       `json:"indicators"`
	Metadata     map[string]any `json:"metadata"`
	EvaluatedAt  time.Time      `json:"evaluatedAt"`
}
