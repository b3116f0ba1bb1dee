package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/biasdetektiv/study-backend/internal/logger"
	"github.com/biasdetektiv/study-backend/internal/scenarios"
	"github.com/biasdetektiv/study-backend/internal/types"
)

var ErrEmptyMessage = errors.New("message must not be empty")

// ChatCompleter is the slice of the OpenAI client the conversation driver
// needs; tests substitute a fake.
type ChatCompleter interface {
	Chat(ctx context.Context, systemPrompt string, history []types.ChatItem) (string, error)
}

type ConversationService interface {
	// Reply appends the participant's utterance to the transcript, asks the
	// role-played persona for a response and appends that too. On completion
	// failure the returned transcript contains the user turn but no
	// assistant turn, alongside the error; the participant may simply retry.
	Reply(ctx context.Context, scenario scenarios.Scenario, history []types.ChatItem, userText string) ([]types.ChatItem, error)

	// CanFinish reports whether the transcript has enough user turns for the
	// "finish conversation" action.
	CanFinish(history []types.ChatItem) bool
}

type conversationService struct {
	log          *logger.Logger
	llm          ChatCompleter
	minUserTurns int
}

func NewConversationService(baseLog *logger.Logger, llm ChatCompleter, minUserTurns int) ConversationService {
	if minUserTurns < 1 {
		minUserTurns = 1
	}
	return &conversationService{
		log:          baseLog.With("service", "ConversationService"),
		llm:          llm,
		minUserTurns: minUserTurns,
	}
}

func (s *conversationService) Reply(ctx context.Context, scenario scenarios.Scenario, history []types.ChatItem, userText string) ([]types.ChatItem, error) {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return history, ErrEmptyMessage
	}

	transcript := make([]types.ChatItem, 0, len(history)+2)

	// Seed the opening utterance exactly once: only when the transcript does
	// not already start with it.
	if scenario.OpeningQuestion != "" && !startsWithOpening(history, scenario.OpeningQuestion) {
		now := time.Now().UTC()
		transcript = append(transcript, types.ChatItem{
			Role:    types.RoleAssistant,
			Content: scenario.OpeningQuestion,
			Ts:      &now,
		})
	}
	transcript = append(transcript, history...)

	now := time.Now().UTC()
	transcript = append(transcript, types.ChatItem{
		Role:    types.RoleUser,
		Content: userText,
		Ts:      &now,
	})

	reply, err := s.llm.Chat(ctx, scenario.SystemPrompt, transcript)
	if err != nil {
		s.log.Warn("Chat completion failed, abandoning turn", "scenario", scenario.ID, "error", err)
		return transcript, err
	}

	replyTs := time.Now().UTC()
	transcript = append(transcript, types.ChatItem{
		Role:    types.RoleAssistant,
		Content: reply,
		Ts:      &replyTs,
	})
	return transcript, nil
}

func (s *conversationService) CanFinish(history []types.ChatItem) bool {
	return types.UserTurns(history) >= s.minUserTurns
}

func startsWithOpening(history []types.ChatItem, opening string) bool {
	if len(history) == 0 {
		return false
	}
	first := history[0]
	return first.Role == types.RoleAssistant && first.Content == opening
}
