package types

import (
	"fmt"
	"strings"
)

// Assessment is the participant's self-reported bias judgment for one
// scenario run. Immutable once submitted.
type Assessment struct {
	IsBiased   bool   `json:"isBiased"`
	Confidence int    `json:"confidence"`
	Reasoning  string `json:"reasoning"`
}

func (a Assessment) Validate() error {
	if a.Confidence < 1 || a.Confidence > 5 {
		return fmt.Errorf("confidence must be between 1 and 5, got %d", a.Confidence)
	}
	if strings.TrimSpace(a.Reasoning) == "" {
		return fmt.Errorf("reasoning must not be empty")
	}
	return nil
}
