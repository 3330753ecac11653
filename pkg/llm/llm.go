// Package llm holds the chat-completion clients used for quiz generation.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// LLM answers a single prompt.
type LLM interface {
	Chat(ctx context.Context, prompt string) (string, error)
	GetModel() string
}

const (
	defaultTimeout   = 60 * time.Second
	defaultMaxTokens = 4000
)

// Option configures a client.
type Option func(*options)

type options struct {
	endpoint string
	client   *http.Client
	log      *zap.Logger
}

// WithEndpoint overrides the API URL.
func WithEndpoint(url string) Option {
	return func(o *options) { o.endpoint = url }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

func buildOptions(endpoint string, opts []Option) options {
	o := options{
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultTimeout},
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// completion sends one user prompt and decodes the reply into out.
// provider names the API in error messages.
func (o options) completion(ctx context.Context, provider, model, prompt string, header http.Header, out any) error {
	body, err := json.Marshal(map[string]any{
		"model":       model,
		"messages":    []map[string]string{{"role": "user", "content": prompt}},
		"max_tokens":  defaultMaxTokens,
		"temperature": 0,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header = header
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	o.log.Debug("llm reply", zap.String("provider", provider), zap.String("model", model), zap.Int("status", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s API error (status %d): %s", provider, resp.StatusCode, string(raw))
	}
	return json.Unmarshal(raw, out)
}
