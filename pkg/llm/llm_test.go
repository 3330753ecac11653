package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaudeChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "m", body["model"])
		w.Write([]byte(`{"content":[{"text":"hello"}]}`))
	}))
	defer srv.Close()

	c := NewClaudeWithModel("key", "m", WithEndpoint(srv.URL))
	out, err := c.Chat(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, "m", c.GetModel())
}

func TestClaudeErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"status", http.StatusUnauthorized, `{}`, "status 401"},
		{"api error", http.StatusOK, `{"error":{"message":"overloaded"}}`, "overloaded"},
		{"empty", http.StatusOK, `{"content":[]}`, "empty response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClaude("key", WithEndpoint(srv.URL)).Chat(context.Background(), "p")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestOpenAIChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"choices":[{"message":{"content":"hi"}}]}`))
	}))
	defer srv.Close()

	o := NewOpenAI("key", WithEndpoint(srv.URL))
	out, err := o.Chat(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "hi", out)
	assert.Equal(t, openAIDefaultModel, o.GetModel())
}

func TestFactoryCreateFromEnv(t *testing.T) {
	env := map[string]string{
		"ANTHROPIC_API_KEY": "a",
		"OPENAI_API_KEY":    "o",
		"OPENAI_MODEL":      "gpt-x",
	}
	f := NewFactory()
	f.getenv = func(k string) string { return env[k] }

	l, err := f.CreateFromEnv("", "")
	require.NoError(t, err)
	assert.IsType(t, &Claude{}, l)
	assert.Equal(t, claudeDefaultModel, l.GetModel())

	l, err = f.CreateFromEnv("openai", "")
	require.NoError(t, err)
	assert.Equal(t, "gpt-x", l.GetModel())

	l, err = f.CreateFromEnv("OpenAI", "override")
	require.NoError(t, err)
	assert.Equal(t, "override", l.GetModel())

	env["LLM_PROVIDER"] = "openai"
	l, err = f.CreateFromEnv("", "")
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, l)

	_, err = f.CreateFromEnv("gemini", "")
	assert.Error(t, err)

	delete(env, "ANTHROPIC_API_KEY")
	_, err = f.CreateFromEnv("claude", "")
	assert.ErrorContains(t, err, "ANTHROPIC_API_KEY")
}

func TestFactoryCreateLLM(t *testing.T) {
	f := NewFactory()
	_, err := f.CreateLLM(ProviderClaude, map[string]string{})
	assert.Error(t, err)
	l, err := f.CreateLLM(ProviderOpenAI, map[string]string{"api_key": "k"})
	require.NoError(t, err)
	assert.Equal(t, openAIDefaultModel, l.GetModel())
	assert.Len(t, f.GetAvailableProviders(), 2)
}

func TestOpenAIStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`rate limited`))
	}))
	defer srv.Close()

	_, err := NewOpenAI("key", WithEndpoint(srv.URL)).Chat(context.Background(), "p")
	assert.ErrorContains(t, err, "OpenAI API error (status 429): rate limited")
}
