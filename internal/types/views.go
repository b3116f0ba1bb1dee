package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/biasdetektiv/study-backend/internal/scenarios"
)

// Read models for the admin surface and the participant results view.
// None of these are tables; they are scanned from aggregate queries or
// assembled in the services.

type ParticipantSummary struct {
	ID            uuid.UUID  `json:"id"`
	DisplayName   *string    `json:"display_name,omitempty"`
	TotalSessions int        `json:"total_sessions"`
	TotalPoints   int        `json:"total_points"`
	LastActive    *time.Time `json:"last_active,omitempty"`
}

type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	DisplayName string `json:"display_name"`
	TotalPoints int    `json:"total_points"`
}

type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Earned      bool   `json:"earned"`
}

// RunDetail is the admin view of a run. Scenario carries the full definition
// including the ground-truth label; it never feeds the participant surface.
type RunDetail struct {
	Run         ScenarioRun         `json:"run"`
	Scenario    *scenarios.Scenario `json:"scenario,omitempty"`
	ChatHistory []ChatItem          `json:"chat_history"`
	Analysis    *AnalysisResult     `json:"analysis,omitempty"`
}

type SessionWithRuns struct {
	Session StudySession `json:"session"`
	Runs    []RunDetail  `json:"runs"`
}

type StudyResults struct {
	Session            StudySession   `json:"session"`
	TotalPoints        int            `json:"total_points"`
	CorrectCount       int            `json:"correct_count"`
	RunCount           int            `json:"run_count"`
	OverallAccuracy    float64        `json:"overall_accuracy"`
	AccuracyByCategory map[string]float64 `json:"accuracy_by_category"`
	Rank               string         `json:"rank"`
	Badges             []Badge        `json:"badges"`
	Runs               []ScenarioRun  `json:"runs"`
}
