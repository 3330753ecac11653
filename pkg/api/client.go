// Package api is the HTTP transport for the loss review backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/helmcode/lossnote/pkg/form"
	"github.com/helmcode/lossnote/pkg/model"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 60 * time.Second

	analyzePath = "/v1/analyze"
	chatPath    = "/v1/chat"
	quizPath    = "/v1/quiz"

	// maxErrorBody bounds how much of a failed response is kept for messages.
	maxErrorBody = 512
)

// StatusError is a non-2xx response.
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: API error (status %d): %s", e.Path, e.StatusCode, e.Body)
}

// Client talks to the backend. Responses are returned undecoded; callers
// normalize them.
type Client struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithTimeout sets the request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.client = &http.Client{Timeout: d}
		}
	}
}

// NewClient returns a client for baseURL, or DefaultBaseURL when empty.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultTimeout},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// AnalyzeRequest is the body of POST /v1/analyze.
type AnalyzeRequest struct {
	Stock         string          `json:"layer1_stock"`
	BuyDate       string          `json:"layer2_buy_date"`
	SellDate      string          `json:"layer2_sell_date"`
	Status        model.Status    `json:"position_status,omitempty"`
	DecisionBasis string          `json:"layer3_decision_basis"`
	Metadata      AnalyzeMetadata `json:"metadata"`
}

type AnalyzeMetadata struct {
	Stocks []model.StockEntry `json:"stocks"`
}

// NewAnalyzeRequest builds the analyze body. The headline stock is the one
// added last; its dates come from its custom period when it has a decodable,
// correctly ordered one and are empty otherwise. An open range leaves the
// sell date empty.
func NewAnalyzeRequest(data model.FormData) AnalyzeRequest {
	data = data.Clone()
	req := AnalyzeRequest{
		DecisionBasis: strings.Join(data.DecisionBasis, ", "),
		Metadata:      AnalyzeMetadata{Stocks: data.Stocks},
	}
	if len(data.Stocks) == 0 {
		return req
	}
	last := data.Stocks[len(data.Stocks)-1]
	req.Stock = last.Name
	req.Status = last.Status
	if last.IsCustomPeriod() {
		if r, ok := form.DecodePeriod(last.CustomPeriod); ok {
			req.BuyDate, req.SellDate = r.Start, r.End
		}
	}
	return req
}

// Analyze posts the form and returns the raw analysis payload.
func (c *Client) Analyze(ctx context.Context, data model.FormData) ([]byte, error) {
	return c.post(ctx, analyzePath, NewAnalyzeRequest(data))
}

// ChatMessage is one history entry of a chat request.
type ChatMessage struct {
	Role    model.Role `json:"role"`
	Content string     `json:"content"`
}

type chatRequest struct {
	History []ChatMessage `json:"history"`
	Message string        `json:"message"`
}

// Chat sends the history and a new message and returns the raw reply.
func (c *Client) Chat(ctx context.Context, history []model.ChatTurn, message string) ([]byte, error) {
	req := chatRequest{History: make([]ChatMessage, 0, len(history)), Message: message}
	for _, turn := range history {
		req.History = append(req.History, ChatMessage{Role: turn.Role, Content: turn.Content})
	}
	return c.post(ctx, chatPath, req)
}

// Quiz asks the backend for a quiz set built from a pattern analysis and
// returns the raw reply.
func (c *Client) Quiz(ctx context.Context, analysis model.PatternAnalysis) ([]byte, error) {
	body := struct {
		LearningPatternAnalysis wirePattern `json:"learning_pattern_analysis"`
	}{LearningPatternAnalysis: toWirePattern(analysis)}
	return c.post(ctx, quizPath, body)
}

// wirePattern is the pattern analysis in the backend's field names.
type wirePattern struct {
	PatternSummary         string   `json:"pattern_summary"`
	PatternStrengths       []string `json:"pattern_strengths"`
	PatternWeaknesses      []string `json:"pattern_weaknesses"`
	LearningRecommendation struct {
		FocusArea         string   `json:"focus_area"`
		LearningReason    string   `json:"learning_reason"`
		LearningSteps     []string `json:"learning_steps"`
		RecommendedTopics []string `json:"recommended_topics"`
	} `json:"learning_recommendation"`
	UncertaintyLevel string `json:"uncertainty_level"`
}

func toWirePattern(pa model.PatternAnalysis) wirePattern {
	w := wirePattern{
		PatternSummary:    pa.Summary,
		PatternStrengths:  pa.Strengths,
		PatternWeaknesses: pa.Weaknesses,
		UncertaintyLevel:  pa.UncertaintyLevel,
	}
	w.LearningRecommendation.FocusArea = pa.Recommendation.FocusArea
	w.LearningRecommendation.LearningReason = pa.Recommendation.LearningReason
	w.LearningRecommendation.LearningSteps = pa.Recommendation.LearningSteps
	w.LearningRecommendation.RecommendedTopics = pa.Recommendation.RecommendedTopics
	return w
}

func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}
	c.log.Debug("backend call",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(respBytes)),
		zap.Duration("elapsed", time.Since(start)),
	)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := string(respBytes)
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return nil, &StatusError{Path: path, StatusCode: resp.StatusCode, Body: text}
	}
	return respBytes, nil
}
