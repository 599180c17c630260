// Package llm holds the two external collaborators: the chat completion
// model and the speech-to-text endpoint. Both are OpenAI-compatible so the
// same base URL and key serve a hosted API or a local server.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"famisched/internal/models"
)

// callTimeout bounds a single completion call; when it fires the caller sees
// an ordinary transport failure.
const callTimeout = 30 * time.Second

type Client struct {
	llm llms.Model
}

func New(baseURL, token, model string) (*Client, error) {
	llm, err := openai.New(
		openai.WithToken(token),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, err
	}
	return &Client{llm: llm}, nil
}

// Chat sends the system prompt plus the verbatim turn window and returns the
// whole completion text. Non-streaming: one request, one string back.
func (c *Client) Chat(ctx context.Context, systemPrompt string, turns []models.ChatMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	content := make([]llms.MessageContent, 0, len(turns)+1)
	content = append(content, llms.TextParts(schema.ChatMessageTypeSystem, systemPrompt))
	for _, turn := range turns {
		role := schema.ChatMessageTypeHuman
		if turn.Role == models.RoleAssistant {
			role = schema.ChatMessageTypeAI
		}
		content = append(content, llms.TextParts(role, turn.Content))
	}

	resp, err := c.llm.GenerateContent(ctx, content)
	if err != nil {
		return "", fmt.Errorf("generate completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return resp.Choices[0].Content, nil
}
