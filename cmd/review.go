package cmd

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/helmcode/lossnote/pkg/logger"
	"github.com/helmcode/lossnote/pkg/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewReviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Walk through a loss review interactively",
		Long: `Open the interactive review: fill in the form step by step, read the report,
ask the advisor follow-up questions and take the review quiz.

Examples:
  # Start a review against the configured backend
  lossnote review

  # Use a local backend and generate quizzes with an LLM
  lossnote review --api http://localhost:8000 --quiz-generator llm --provider openai`,
		Args: cobra.NoArgs,
		RunE: runReview,
	}
}

func runReview(cmd *cobra.Command, args []string) error {
	// The screen owns the terminal; log to a file or not at all.
	if cfg.Log.File != "" {
		l, err := logger.NewFile(cfg.Log.Level, verbose, cfg.Log.File)
		if err != nil {
			return err
		}
		log = l
	} else {
		log = zap.NewNop()
	}

	ctrl, err := newController()
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if cfg.Session.SplashDelay == 0 {
		ctrl.SkipSplash()
	} else {
		ctrl.Boot()
	}

	ctx := cmd.Context()
	p := tea.NewProgram(tui.New(ctx, ctrl), tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("review session failed: %w", err)
	}
	return nil
}
