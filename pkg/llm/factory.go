package llm

import (
	"fmt"
	"os"
	"strings"
)

// Provider represents the LLM provider type
type Provider string

const (
	ProviderClaude Provider = "claude"
	ProviderOpenAI Provider = "openai"
)

// ParseProvider maps a name to a Provider. Empty means Claude.
func ParseProvider(name string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "claude", "":
		return ProviderClaude, nil
	case "openai":
		return ProviderOpenAI, nil
	default:
		return "", fmt.Errorf("unsupported provider: %s (supported: claude, openai)", name)
	}
}

// Factory creates LLM instances based on provider
type Factory struct {
	opts   []Option
	getenv func(string) string
}

// NewFactory creates a new LLM factory. opts are passed to every client.
func NewFactory(opts ...Option) *Factory {
	return &Factory{opts: opts, getenv: os.Getenv}
}

// CreateLLM creates an LLM instance based on provider and configuration
func (f *Factory) CreateLLM(provider Provider, config map[string]string) (LLM, error) {
	switch provider {
	case ProviderClaude:
		apiKey := config["api_key"]
		if apiKey == "" {
			return nil, fmt.Errorf("Claude API key is required")
		}
		if model := config["model"]; model != "" {
			return NewClaudeWithModel(apiKey, model, f.opts...), nil
		}
		return NewClaude(apiKey, f.opts...), nil

	case ProviderOpenAI:
		apiKey := config["api_key"]
		if apiKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		if model := config["model"]; model != "" {
			return NewOpenAIWithModel(apiKey, model, f.opts...), nil
		}
		return NewOpenAI(apiKey, f.opts...), nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// CreateFromEnv creates an LLM instance from environment variables.
// providerOverride and modelOverride win over LLM_PROVIDER and the
// per-provider model variables.
func (f *Factory) CreateFromEnv(providerOverride, modelOverride string) (LLM, error) {
	name := providerOverride
	if name == "" {
		name = f.getenv("LLM_PROVIDER")
	}
	provider, err := ParseProvider(name)
	if err != nil {
		return nil, err
	}

	keyVar, modelVar := "ANTHROPIC_API_KEY", "CLAUDE_MODEL"
	if provider == ProviderOpenAI {
		keyVar, modelVar = "OPENAI_API_KEY", "OPENAI_MODEL"
	}
	apiKey := f.getenv(keyVar)
	if apiKey == "" {
		return nil, fmt.Errorf("%s environment variable not set", keyVar)
	}
	model := modelOverride
	if model == "" {
		model = f.getenv(modelVar)
	}
	return f.CreateLLM(provider, map[string]string{"api_key": apiKey, "model": model})
}

// GetAvailableProviders returns a list of available LLM providers
func (f *Factory) GetAvailableProviders() []Provider {
	return []Provider{ProviderClaude, ProviderOpenAI}
}
