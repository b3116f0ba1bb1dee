package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/biasdetektiv/study-backend/internal/logger"
	"github.com/biasdetektiv/study-backend/internal/scenarios"
	"github.com/biasdetektiv/study-backend/internal/types"
)

type fakeChat struct {
	reply         string
	err           error
	gotSystem     string
	gotTranscript []types.ChatItem
}

func (f *fakeChat) Chat(_ context.Context, systemPrompt string, history []types.ChatItem) (string, error) {
	f.gotSystem = systemPrompt
	f.gotTranscript = history
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestReplyEmptyMessage(t *testing.T) {
	svc := NewConversationService(testLogger(t), &fakeChat{}, 1)
	scenario := scenarios.Scenario{ID: "gender-biased-1", SystemPrompt: "sp"}

	_, err := svc.Reply(context.Background(), scenario, nil, "   ")
	if !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestReplySeedsOpeningOnce(t *testing.T) {
	llm := &fakeChat{reply: "Hallo!"}
	svc := NewConversationService(testLogger(t), llm, 1)
	scenario := scenarios.Scenario{
		ID:              "status-neutral-1",
		SystemPrompt:    "sp",
		OpeningQuestion: "Womit kann ich helfen?",
	}

	transcript, err := svc.Reply(context.Background(), scenario, nil, "Ich brauche Rat.")
	if err != nil {
		t.Fatal(err)
	}
	if len(transcript) != 3 {
		t.Fatalf("expected opening + user + assistant, got %d items", len(transcript))
	}
	if transcript[0].Role != types.RoleAssistant || transcript[0].Content != scenario.OpeningQuestion {
		t.Fatalf("transcript must start with the opening question, got %+v", transcript[0])
	}
	if transcript[1].Role != types.RoleUser || transcript[1].Content != "Ich brauche Rat." {
		t.Fatalf("second item must be the user turn, got %+v", transcript[1])
	}
	if transcript[2].Role != types.RoleAssistant || transcript[2].Content != "Hallo!" {
		t.Fatalf("third item must be the model reply, got %+v", transcript[2])
	}
	if llm.gotSystem != "sp" {
		t.Fatalf("system prompt not forwarded, got %q", llm.gotSystem)
	}

	// A second turn on the same transcript must not seed the opening again.
	transcript, err = svc.Reply(context.Background(), scenario, transcript, "Noch eine Frage.")
	if err != nil {
		t.Fatal(err)
	}
	if len(transcript) != 5 {
		t.Fatalf("expected 5 items after second turn, got %d", len(transcript))
	}
	count := 0
	for _, item := range transcript {
		if item.Content == scenario.OpeningQuestion {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("opening question seeded %d times, want 1", count)
	}
}

func TestReplyFailureLeavesNoAssistantTurn(t *testing.T) {
	llm := &fakeChat{err: errors.New("upstream down")}
	svc := NewConversationService(testLogger(t), llm, 1)
	scenario := scenarios.Scenario{ID: "gender-biased-1", SystemPrompt: "sp"}

	now := time.Now().UTC()
	history := []types.ChatItem{{Role: types.RoleAssistant, Content: "Hi", Ts: &now}}

	transcript, err := svc.Reply(context.Background(), scenario, history, "Hallo")
	if err == nil {
		t.Fatal("expected completion error")
	}
	if len(transcript) != 2 {
		t.Fatalf("expected history + user turn only, got %d items", len(transcript))
	}
	if transcript[len(transcript)-1].Role != types.RoleUser {
		t.Fatalf("last item must be the user turn, got %+v", transcript[len(transcript)-1])
	}
}

func TestCanFinish(t *testing.T) {
	svc := NewConversationService(testLogger(t), &fakeChat{}, 2)

	history := []types.ChatItem{
		{Role: types.RoleAssistant, Content: "a"},
		{Role: types.RoleUser, Content: "b"},
	}
	if svc.CanFinish(history) {
		t.Fatal("one user turn must not satisfy a minimum of two")
	}
	history = append(history,
		types.ChatItem{Role: types.RoleAssistant, Content: "c"},
		types.ChatItem{Role: types.RoleUser, Content: "d"},
	)
	if !svc.CanFinish(history) {
		t.Fatal("two user turns should satisfy a minimum of two")
	}

	// Constructor floors the minimum at one.
	floor := NewConversationService(testLogger(t), &fakeChat{}, 0)
	if floor.CanFinish(nil) {
		t.Fatal("empty transcript can never finish")
	}
	if !floor.CanFinish([]types.ChatItem{{Role: types.RoleUser, Content: "x"}}) {
		t.Fatal("single user turn should finish when floor applies")
	}
}
