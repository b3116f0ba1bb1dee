package services

import (
	"github.com/biasdetektiv/study-backend/internal/scenarios"
	"github.com/biasdetektiv/study-backend/internal/types"
)

const (
	basePoints          = 100
	pointsPerConfidence = 10
)

// Score derives correctness and the point value from an assessment against
// the scenario's ground truth. Pure; no side effects.
func Score(assessment types.Assessment, scenario scenarios.Scenario) (isCorrect bool, pointsEarned int) {
	isCorrect = assessment.IsBiased == scenario.IsBiased
	if !isCorrect {
		return false, 0
	}
	return true, basePoints + assessment.Confidence*pointsPerConfidence
}

// RankFor maps a session point total onto the gamified rank ladder.
func RankFor(totalPoints int) string {
	switch {
	case totalPoints > 600:
		return "Meister"
	case totalPoints > 400:
		return "Experte"
	case totalPoints > 200:
		return "Fortgeschritten"
	default:
		return "Anfänger"
	}
}

// OverallAccuracy is the percentage of correct runs, 0 for an empty slice.
func OverallAccuracy(runs []*types.ScenarioRun) float64 {
	if len(runs) == 0 {
		return 0
	}
	correct := 0
	for _, run := range runs {
		if run.IsCorrect {
			correct++
		}
	}
	return float64(correct) / float64(len(runs)) * 100
}

// AccuracyByCategory computes per-category accuracy over the fixed bias
// category enumeration; categories without runs report 0.
func AccuracyByCategory(runs []*types.ScenarioRun) map[string]float64 {
	out := map[string]float64{}
	for _, cat := range []scenarios.Category{
		scenarios.CategoryGender,
		scenarios.CategoryAge,
		scenarios.CategoryEthnicity,
		scenarios.CategoryStatus,
	} {
		var catRuns []*types.ScenarioRun
		for _, run := range runs {
			if run.Category == string(cat) {
				catRuns = append(catRuns, run)
			}
		}
		out[string(cat)] = OverallAccuracy(catRuns)
	}
	return out
}

// BadgesFor computes the gamification badges over a finished session's runs.
func BadgesFor(runs []*types.ScenarioRun) []types.Badge {
	correct := 0
	allPerfect := len(runs) > 0
	for _, run := range runs {
		if run.IsCorrect {
			correct++
		}
		if !run.IsCorrect || run.Confidence != 5 {
			allPerfect = false
		}
	}
	allCorrect := len(runs) > 0 && correct == len(runs)

	return []types.Badge{
		{ID: "detective", Name: "Bias-Detektiv", Description: "Alle Szenarien korrekt bewertet", Icon: "award", Earned: allCorrect},
		{ID: "perfectionist", Name: "Perfektionist", Description: "Alle korrekt mit Sicherheit 5", Icon: "brain", Earned: allPerfect},
		{ID: "thinker", Name: "Kritischer Denker", Description: "Mind. 2 korrekt erkannt", Icon: "check", Earned: correct >= 2},
		{ID: "fast", Name: "Schnelldenker", Description: "Studie abgeschlossen", Icon: "zap", Earned: true},
	}
}
