package services

import (
	"testing"

	"github.com/biasdetektiv/study-backend/internal/scenarios"
	"github.com/biasdetektiv/study-backend/internal/types"
)

func TestScorePoints(t *testing.T) {
	biased := scenarios.Scenario{ID: "gender-biased-1", IsBiased: true}

	wantPoints := map[int]int{1: 110, 2: 120, 3: 130, 4: 140, 5: 150}
	for confidence, want := range wantPoints {
		correct, points := Score(types.Assessment{IsBiased: true, Confidence: confidence, Reasoning: "x"}, biased)
		if !correct {
			t.Fatalf("confidence %d: expected correct", confidence)
		}
		if points != want {
			t.Fatalf("confidence %d: got %d points, want %d", confidence, points, want)
		}
	}

	for confidence := 1; confidence <= 5; confidence++ {
		correct, points := Score(types.Assessment{IsBiased: false, Confidence: confidence, Reasoning: "x"}, biased)
		if correct || points != 0 {
			t.Fatalf("wrong judgment must yield 0 points, got correct=%v points=%d", correct, points)
		}
	}
}

func TestScoreAgainstNeutralScenario(t *testing.T) {
	neutral, ok := scenarios.ByID("status-neutral-1")
	if !ok {
		t.Fatal("status-neutral-1 missing from catalog")
	}

	correct, points := Score(types.Assessment{IsBiased: false, Confidence: 3, Reasoning: "wirkte fair"}, neutral)
	if !correct || points != 130 {
		t.Fatalf("isBiased=false on neutral scenario: got correct=%v points=%d", correct, points)
	}

	for confidence := 1; confidence <= 5; confidence++ {
		correct, points := Score(types.Assessment{IsBiased: true, Confidence: confidence, Reasoning: "x"}, neutral)
		if correct || points != 0 {
			t.Fatalf("isBiased=true on neutral scenario must score 0, got correct=%v points=%d", correct, points)
		}
	}
}

func TestRankFor(t *testing.T) {
	cases := []struct {
		points int
		want   string
	}{
		{0, "Anfänger"},
		{200, "Anfänger"},
		{201, "Fortgeschritten"},
		{400, "Fortgeschritten"},
		{401, "Experte"},
		{600, "Experte"},
		{601, "Meister"},
	}
	for _, c := range cases {
		if got := RankFor(c.points); got != c.want {
			t.Fatalf("RankFor(%d)=%q, want %q", c.points, got, c.want)
		}
	}
}

func TestAccuracy(t *testing.T) {
	runs := []*types.ScenarioRun{
		{Category: "gender", IsCorrect: true},
		{Category: "gender", IsCorrect: false},
		{Category: "status", IsCorrect: true},
	}
	if got := OverallAccuracy(runs); got < 66.6 || got > 66.7 {
		t.Fatalf("OverallAccuracy=%f, want ~66.67", got)
	}
	if got := OverallAccuracy(nil); got != 0 {
		t.Fatalf("OverallAccuracy(nil)=%f, want 0", got)
	}

	byCat := AccuracyByCategory(runs)
	if byCat["gender"] != 50 {
		t.Fatalf("gender accuracy=%f, want 50", byCat["gender"])
	}
	if byCat["status"] != 100 {
		t.Fatalf("status accuracy=%f, want 100", byCat["status"])
	}
	if byCat["age"] != 0 || byCat["ethnicity"] != 0 {
		t.Fatalf("empty categories should report 0, got %v", byCat)
	}
}

func TestBadgesFor(t *testing.T) {
	allPerfect := []*types.ScenarioRun{
		{IsCorrect: true, Confidence: 5},
		{IsCorrect: true, Confidence: 5},
	}
	badges := badgeMap(BadgesFor(allPerfect))
	for _, id := range []string{"detective", "perfectionist", "thinker", "fast"} {
		if !badges[id] {
			t.Fatalf("badge %s should be earned for a perfect session", id)
		}
	}

	mixed := []*types.ScenarioRun{
		{IsCorrect: true, Confidence: 3},
		{IsCorrect: true, Confidence: 4},
		{IsCorrect: false, Confidence: 5},
	}
	badges = badgeMap(BadgesFor(mixed))
	if badges["detective"] || badges["perfectionist"] {
		t.Fatal("detective/perfectionist must not be earned with a wrong run")
	}
	if !badges["thinker"] || !badges["fast"] {
		t.Fatal("thinker and fast should be earned")
	}
}

func badgeMap(badges []types.Badge) map[string]bool {
	out := map[string]bool{}
	for _, b := range badges {
		out[b.ID] = b.Earned
	}
	return out
}
