package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/helmcode/lossnote/pkg/model"
)

// quizContext is the part of a report the quiz is written from.
type quizContext struct {
	Title           string                `json:"title"`
	LossCause       string                `json:"loss_cause"`
	RootCauses      []string              `json:"root_causes"`
	MarketContext   string                `json:"market_context"`
	PatternAnalysis model.PatternAnalysis `json:"learning_pattern_analysis"`
}

func BuildQuizPrompt(report model.Report) (string, error) {
	ctx := quizContext{
		Title:           report.Title,
		LossCause:       report.LossCause.Title,
		RootCauses:      make([]string, 0, len(report.LossCause.RootCauses)),
		MarketContext:   report.MarketContext.Summary,
		PatternAnalysis: report.PatternAnalysis,
	}
	for _, rc := range report.LossCause.RootCauses {
		ctx.RootCauses = append(ctx.RootCauses, fmt.Sprintf("[%s/%s] %s", rc.Category, rc.ImpactLevel, rc.Title))
	}
	ctxJSON, err := json.MarshalIndent(ctx, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal quiz context: %w", err)
	}

	return fmt.Sprintf(`You are an investment learning coach writing a short review quiz for a retail investor who just lost money.

Loss Review:
%s

Write exactly %d quiz items in Korean that help the investor reflect on this loss:
1. Two "multiple_choice" items about the loss causes and the market situation, each with one correct answer
2. One "reflection" item about what to change in the next trade, with a short solution for every option
3. Every item has exactly 4 options
4. Never recommend buying or selling a specific stock

Respond with JSON only, using this structure:
{
  "quiz_set": {
    "quiz_purpose": "one sentence",
    "quizzes": [
      {
        "quiz_id": "Q1",
        "quiz_type": "multiple_choice|reflection",
        "question": "question text",
        "options": [{"text": "option", "solution": "required for reflection items"}],
        "has_fixed_answer": true,
        "correct_answer_index": 0
      }
    ]
  }
}`, strings.TrimSpace(string(ctxJSON)), model.QuizSetSize), nil
}
