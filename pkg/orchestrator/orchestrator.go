// Package orchestrator wraps the remote operations of a review session:
// analyze, chat and quiz generation. Each has its own in-flight flag, and
// every transport failure surfaces as ErrNetworkFailure.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/helmcode/lossnote/pkg/model"
	"github.com/helmcode/lossnote/pkg/normalize"
	"github.com/helmcode/lossnote/pkg/quiz"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrNetworkFailure covers timeouts, connection errors, non-2xx
	// responses and bodies that are not JSON at all.
	ErrNetworkFailure = errors.New("network failure")
	// ErrBusy is returned when an operation of the same kind is in flight.
	ErrBusy = errors.New("operation already in flight")
)

// Backend is the transport the orchestrator drives.
type Backend interface {
	Analyze(ctx context.Context, data model.FormData) ([]byte, error)
	Chat(ctx context.Context, history []model.ChatTurn, message string) ([]byte, error)
}

// ChatReply is a normalized chat answer.
type ChatReply struct {
	Content string
	Raw     *model.PatternAnalysis
}

// Loading is a snapshot of the in-flight flags.
type Loading struct {
	Analyze bool `json:"analyze"`
	Chat    bool `json:"chat"`
	Quiz    bool `json:"quiz"`
}

type Orchestrator struct {
	backend Backend
	quizGen quiz.Generator
	log     *zap.Logger

	analyzing atomic.Bool
	chatting  atomic.Bool
	quizzing  atomic.Int32

	group   singleflight.Group
	mu      sync.Mutex
	quizzes map[string]model.QuizSet
}

// New returns an orchestrator. quizGen may be nil, in which case quiz
// generation fails.
func New(backend Backend, quizGen quiz.Generator, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		backend: backend,
		quizGen: quizGen,
		log:     log,
		quizzes: map[string]model.QuizSet{},
	}
}

// Loading reports which operations are outstanding.
func (o *Orchestrator) Loading() Loading {
	return Loading{
		Analyze: o.analyzing.Load(),
		Chat:    o.chatting.Load(),
		Quiz:    o.quizzing.Load() > 0,
	}
}

// Analyze submits the form and normalizes the reply into a report with a
// fresh ID. No report is returned on failure.
func (o *Orchestrator) Analyze(ctx context.Context, data model.FormData) (model.Report, error) {
	if !o.analyzing.CompareAndSwap(false, true) {
		return model.Report{}, fmt.Errorf("analyze: %w", ErrBusy)
	}
	defer o.analyzing.Store(false)

	body, err := o.backend.Analyze(ctx, data)
	if err != nil {
		return model.Report{}, fmt.Errorf("analyze: %w: %w", ErrNetworkFailure, err)
	}
	payload, err := normalize.Decode(body)
	if err != nil {
		return model.Report{}, fmt.Errorf("analyze: decode reply: %w: %w", ErrNetworkFailure, err)
	}
	report := normalize.Analysis(payload)
	report.ID = uuid.NewString()
	o.log.Info("analysis received",
		zap.String("report_id", report.ID),
		zap.String("request_id", report.RequestID),
		zap.Int("root_causes", len(report.LossCause.RootCauses)),
		zap.Bool("legacy", payload.Legacy()),
	)
	return report, nil
}

// Chat sends one message with the history that precedes it.
func (o *Orchestrator) Chat(ctx context.Context, history []model.ChatTurn, message string) (ChatReply, error) {
	if !o.chatting.CompareAndSwap(false, true) {
		return ChatReply{}, fmt.Errorf("chat: %w", ErrBusy)
	}
	defer o.chatting.Store(false)

	body, err := o.backend.Chat(ctx, history, message)
	if err != nil {
		return ChatReply{}, fmt.Errorf("chat: %w: %w", ErrNetworkFailure, err)
	}
	content, raw, err := normalize.ChatReply(body)
	if err != nil {
		return ChatReply{}, fmt.Errorf("chat: decode reply: %w: %w", ErrNetworkFailure, err)
	}
	return ChatReply{Content: content, Raw: raw}, nil
}

// GenerateQuiz returns the quiz set of a report, generating it at most once
// per report ID. Concurrent callers share one request; failures are not
// cached.
func (o *Orchestrator) GenerateQuiz(ctx context.Context, report model.Report) (model.QuizSet, error) {
	if set, ok := o.cachedQuiz(report.ID); ok {
		return set, nil
	}
	if o.quizGen == nil {
		return model.QuizSet{}, fmt.Errorf("quiz: no generator configured")
	}

	v, err, shared := o.group.Do(report.ID, func() (interface{}, error) {
		if set, ok := o.cachedQuiz(report.ID); ok {
			return set, nil
		}
		o.quizzing.Add(1)
		defer o.quizzing.Add(-1)

		set, err := o.quizGen.Generate(ctx, report)
		if err != nil {
			return nil, fmt.Errorf("quiz: %w: %w", ErrNetworkFailure, err)
		}
		o.mu.Lock()
		o.quizzes[report.ID] = set
		o.mu.Unlock()
		return set, nil
	})
	if err != nil {
		return model.QuizSet{}, err
	}
	o.log.Debug("quiz ready", zap.String("report_id", report.ID), zap.Bool("shared", shared))
	return v.(model.QuizSet), nil
}

// ForgetQuiz drops the cached quiz of a report that is no longer shown.
func (o *Orchestrator) ForgetQuiz(reportID string) {
	o.mu.Lock()
	delete(o.quizzes, reportID)
	o.mu.Unlock()
	o.group.Forget(reportID)
}

func (o *Orchestrator) cachedQuiz(reportID string) (model.QuizSet, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	set, ok := o.quizzes[reportID]
	return set, ok
}
