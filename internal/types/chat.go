package types

import (
	"fmt"
	"strings"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatItem is a single transcript entry. Ts is optional on the wire.
type ChatItem struct {
	Role    string     `json:"role"`
	Content string     `json:"content"`
	Ts      *time.Time `json:"ts,omitempty"`
}

// ValidateChatHistory checks the tagged shape of a transcript before it is
// persisted as a JSON column: known roles, non-empty content.
func ValidateChatHistory(history []ChatItem) error {
	for i, item := range history {
		if item.Role != RoleUser && item.Role != RoleAssistant {
			return fmt.Errorf("chat history item %d has unknown role %q", i, item.Role)
		}
		if strings.TrimSpace(item.Content) == "" {
			return fmt.Errorf("chat history item %d has empty content", i)
		}
	}
	return nil
}

// UserTurns counts participant-authored entries.
func UserTurns(history []ChatItem) int {
	n := 0
	for _, item := range history {
		if item.Role == RoleUser {
			n++
		}
	}
	return n
}
