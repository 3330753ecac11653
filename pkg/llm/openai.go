package llm

import (
	"context"
	"fmt"
	"net/http"
)

const (
	openAIEndpoint     = "https://api.openai.com/v1/chat/completions"
	openAIDefaultModel = "gpt-4o"
)

type OpenAI struct {
	apiKey string
	model  string
	opts   options
}

func NewOpenAI(apiKey string, opts ...Option) *OpenAI {
	return NewOpenAIWithModel(apiKey, openAIDefaultModel, opts...)
}

func NewOpenAIWithModel(apiKey, model string, opts ...Option) *OpenAI {
	return &OpenAI{
		apiKey: apiKey,
		model:  model,
		opts:   buildOptions(openAIEndpoint, opts),
	}
}

func (o *OpenAI) Chat(ctx context.Context, prompt string) (string, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+o.apiKey)

	var reply struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := o.opts.completion(ctx, "OpenAI", o.model, prompt, header, &reply); err != nil {
		return "", err
	}
	if reply.Error.Message != "" {
		return "", fmt.Errorf("OpenAI API error: %s", reply.Error.Message)
	}
	if len(reply.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}
	return reply.Choices[0].Message.Content, nil
}

// GetModel returns the model being used by this OpenAI client
func (o *OpenAI) GetModel() string {
	return o.model
}
