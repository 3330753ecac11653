package llm

import (
	"context"
	"fmt"
	"net/http"
)

const (
	claudeEndpoint     = "https://api.anthropic.com/v1/messages"
	claudeDefaultModel = "claude-sonnet-4-20250514"
	claudeAPIVersion   = "2023-06-01"
)

type Claude struct {
	apiKey string
	model  string
	opts   options
}

func NewClaude(apiKey string, opts ...Option) *Claude {
	return NewClaudeWithModel(apiKey, claudeDefaultModel, opts...)
}

func NewClaudeWithModel(apiKey, model string, opts ...Option) *Claude {
	return &Claude{
		apiKey: apiKey,
		model:  model,
		opts:   buildOptions(claudeEndpoint, opts),
	}
}

func (c *Claude) Chat(ctx context.Context, prompt string) (string, error) {
	header := http.Header{}
	header.Set("x-api-key", c.apiKey)
	header.Set("anthropic-version", claudeAPIVersion)

	var reply struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := c.opts.completion(ctx, "Claude", c.model, prompt, header, &reply); err != nil {
		return "", err
	}
	if reply.Error.Message != "" {
		return "", fmt.Errorf("Claude API error: %s", reply.Error.Message)
	}
	if len(reply.Content) == 0 {
		return "", fmt.Errorf("empty response from Claude")
	}
	return reply.Content[0].Text, nil
}

// GetModel returns the model being used by this Claude client
func (c *Claude) GetModel() string {
	return c.model
}
