package scenarios

import (
	_ "embed"
	"fmt"
	"math/rand"

	"gopkg.in/yaml.v3"
)

type Category string

const (
	CategoryGender    Category = "gender"
	CategoryAge       Category = "age"
	CategoryEthnicity Category = "ethnicity"
	CategoryStatus    Category = "status"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryGender, CategoryAge, CategoryEthnicity, CategoryStatus:
		return true
	}
	return false
}

// Scenario is a fixed role-play configuration. IsBiased is the ground-truth
// label the participant's assessment is scored against; it never leaves the
// server except through the admin surface.
type Scenario struct {
	ID              string   `yaml:"id" json:"id"`
	Category        Category `yaml:"category" json:"category"`
	Title           string   `yaml:"title" json:"title"`
	Description     string   `yaml:"description" json:"description"`
	SystemPrompt    string   `yaml:"systemPrompt" json:"system_prompt"`
	IsBiased        bool     `yaml:"isBiased" json:"is_biased"`
	OpeningQuestion string   `yaml:"openingQuestion,omitempty" json:"opening_question,omitempty"`
}

// PublicScenario is the participant-facing view: no persona prompt, no
// ground truth.
type PublicScenario struct {
	ID              string   `json:"id"`
	Category        Category `json:"category"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	OpeningQuestion string   `json:"opening_question,omitempty"`
}

//go:embed catalog.yaml
var catalogYAML []byte

var catalog = mustLoad()

type catalogFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

func mustLoad() []Scenario {
	var f catalogFile
	if err := yaml.Unmarshal(catalogYAML, &f); err != nil {
		panic(fmt.Sprintf("scenarios: invalid embedded catalog: %v", err))
	}
	seen := map[string]bool{}
	for _, sc := range f.Scenarios {
		if sc.ID == "" || seen[sc.ID] {
			panic(fmt.Sprintf("scenarios: missing or duplicate id %q", sc.ID))
		}
		if !sc.Category.Valid() {
			panic(fmt.Sprintf("scenarios: %s has unknown category %q", sc.ID, sc.Category))
		}
		seen[sc.ID] = true
	}
	return f.Scenarios
}

// All returns the catalog in definition order.
func All() []Scenario {
	out := make([]Scenario, len(catalog))
	copy(out, catalog)
	return out
}

// ByID looks up a scenario definition.
func ByID(id string) (Scenario, bool) {
	for _, sc := range catalog {
		if sc.ID == id {
			return sc, true
		}
	}
	return Scenario{}, false
}

// Randomized returns a shuffled copy of the catalog for one study pass.
func Randomized() []Scenario {
	out := All()
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

func (s Scenario) Public() PublicScenario {
	return PublicScenario{
		ID:              s.ID,
		Category:        s.Category,
		Title:           s.Title,
		Description:     s.Description,
		OpeningQuestion: s.OpeningQuestion,
	}
}

// PublicRandomized is the participant-facing listing, shuffled per request.
func PublicRandomized() []PublicScenario {
	shuffled := Randomized()
	out := make([]PublicScenario, 0, len(shuffled))
	for _, sc := range shuffled {
		out = append(out, sc.Public())
	}
	return out
}
