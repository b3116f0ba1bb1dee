package openai

import (
	"context"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/biasdetektiv/study-backend/internal/logger"
	"github.com/biasdetektiv/study-backend/internal/types"
	"github.com/biasdetektiv/study-backend/internal/utils"
)

// Client wraps the chat-completion API for the two call sites of the study:
// the role-played conversation turns and the JSON-only post-hoc analysis.
type Client interface {
	Chat(ctx context.Context, systemPrompt string, history []types.ChatItem) (string, error)
	CompleteJSON(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

type client struct {
	log    *logger.Logger
	api    *goopenai.Client
	apiKey string
	model  string
}

func New(log *logger.Logger) Client {
	apiKey := utils.GetEnv("OPENAI_API_KEY", "", log)
	baseURL := utils.GetEnv("OPENAI_BASE_URL", "", log)
	model := utils.GetEnv("OPENAI_MODEL", goopenai.GPT4oMini, log)

	config := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &client{
		log:    log.With("client", "OpenAIClient"),
		api:    goopenai.NewClientWithConfig(config),
		apiKey: apiKey,
		model:  model,
	}
}

// Chat sends the persona instruction plus the ordered transcript and returns
// the assistant utterance.
func (c *client) Chat(ctx context.Context, systemPrompt string, history []types.ChatItem) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("missing OPENAI_API_KEY")
	}

	messages := make([]goopenai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, item := range history {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    item.Role,
			Content: item.Content,
		})
	}

	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// CompleteJSON runs a single system+user exchange with JSON-only output
// enforced via the response format.
func (c *client) CompleteJSON(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("missing OPENAI_API_KEY")
	}

	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.2,
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("json completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("json completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
