// Package quiz generates review quizzes for a finished report.
package quiz

import (
	"context"
	"fmt"

	"github.com/helmcode/lossnote/pkg/llm"
	"github.com/helmcode/lossnote/pkg/model"
	"github.com/helmcode/lossnote/pkg/parser"
	"github.com/helmcode/lossnote/pkg/prompts"
	"go.uber.org/zap"
)

// Generator builds a quiz set from a report. An error means the generator
// could not be reached; malformed output is absorbed into the fallback set.
type Generator interface {
	Generate(ctx context.Context, report model.Report) (model.QuizSet, error)
}

// Backend is the part of the API client the remote generator needs.
type Backend interface {
	Quiz(ctx context.Context, analysis model.PatternAnalysis) ([]byte, error)
}

// Remote asks the backend's quiz endpoint.
type Remote struct {
	backend Backend
	log     *zap.Logger
}

func NewRemote(backend Backend, log *zap.Logger) *Remote {
	if log == nil {
		log = zap.NewNop()
	}
	return &Remote{backend: backend, log: log}
}

func (r *Remote) Generate(ctx context.Context, report model.Report) (model.QuizSet, error) {
	body, err := r.backend.Quiz(ctx, report.PatternAnalysis)
	if err != nil {
		return model.QuizSet{}, fmt.Errorf("quiz request: %w", err)
	}
	return parse(r.log, string(body), report.ID), nil
}

// LLM writes the quiz with a language model directly.
type LLM struct {
	client llm.LLM
	log    *zap.Logger
}

func NewLLM(client llm.LLM, log *zap.Logger) *LLM {
	if log == nil {
		log = zap.NewNop()
	}
	return &LLM{client: client, log: log}
}

func (g *LLM) Generate(ctx context.Context, report model.Report) (model.QuizSet, error) {
	prompt, err := prompts.BuildQuizPrompt(report)
	if err != nil {
		return model.QuizSet{}, err
	}
	reply, err := g.client.Chat(ctx, prompt)
	if err != nil {
		return model.QuizSet{}, fmt.Errorf("quiz generation with %s: %w", g.client.GetModel(), err)
	}
	return parse(g.log, reply, report.ID), nil
}

func parse(log *zap.Logger, raw, reportID string) model.QuizSet {
	res := parser.ParseQuizResponse(raw)
	if res.Fallback() {
		log.Warn("quiz output rejected, using fallback set",
			zap.String("report_id", reportID),
			zap.String("reason", res.Anomaly),
		)
	}
	return res.Set()
}
