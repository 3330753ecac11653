package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/helmcode/lossnote/pkg/form"
	"github.com/helmcode/lossnote/pkg/formatter"
	"github.com/helmcode/lossnote/pkg/model"
	"github.com/helmcode/lossnote/pkg/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	analyzeStocks   []string
	analyzeSold     []string
	analyzePeriods  []string
	analyzeCustom   []string
	analyzePatterns []string
	analyzeBasis    []string
	analyzeAsk      []string
	analyzeQuiz     bool
)

func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Review a losing trade in one shot",
		Long: `Fill in the review form from flags, request the analysis and print the report.

Examples:
  # Review one stock held for a month, bought on FOMO
  lossnote analyze --stock 삼성전자 --period "삼성전자=1개월 이내" \
    --pattern 삼성전자=물타기 --basis FOMO

  # Sold position with an exact holding period, plus follow-up questions
  lossnote analyze --stock 카카오 --sold 카카오 \
    --custom "카카오=2024-01-02~2024-03-05" --pattern "카카오=손절 지연" \
    --basis "뉴스/공시" --ask "비슷한 실수를 방지하려면?" --quiz

  # Machine-readable output
  lossnote analyze --stock A --pattern A=단타 --basis 직감 -o json`,
		Args: cobra.NoArgs,
		RunE: runAnalyze,
	}

	cmd.Flags().StringArrayVar(&analyzeStocks, "stock", nil, "Stock to review (repeatable)")
	cmd.Flags().StringArrayVar(&analyzeSold, "sold", nil, "Mark a stock as sold (repeatable)")
	cmd.Flags().StringArrayVar(&analyzePeriods, "period", nil, "Holding period as NAME=OPTION (repeatable)")
	cmd.Flags().StringArrayVar(&analyzeCustom, "custom", nil, "Exact holding period as NAME=YYYY-MM-DD~YYYY-MM-DD (repeatable)")
	cmd.Flags().StringArrayVar(&analyzePatterns, "pattern", nil, "Trading pattern as NAME=PATTERN (repeatable)")
	cmd.Flags().StringArrayVar(&analyzeBasis, "basis", nil, "Decision basis tag (repeatable)")
	cmd.Flags().StringArrayVar(&analyzeAsk, "ask", nil, "Follow-up question for the advisor (repeatable)")
	cmd.Flags().BoolVar(&analyzeQuiz, "quiz", false, "Generate a review quiz")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if len(analyzeStocks) == 0 {
		return fmt.Errorf("at least one --stock is required")
	}

	ctrl, err := newController()
	if err != nil {
		return err
	}
	defer ctrl.Close()
	ctrl.SkipSplash()

	printHeader("📉 Loss Review",
		fmt.Sprintf("📊 Stocks: %s", strings.Join(analyzeStocks, ", ")),
		fmt.Sprintf("🧠 Basis: %s", strings.Join(analyzeBasis, ", ")),
		fmt.Sprintf("🌐 Backend: %s", cfg.API.BaseURL),
	)

	if err := fillForm(ctrl); err != nil {
		return err
	}

	ctx := cmd.Context()
	s := newSpinner("Analyzing trades...")
	s.Start()
	err = ctrl.Generate(ctx)
	s.Stop()
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	printSuccess("Analysis complete")

	if err := followUp(ctx, ctrl); err != nil {
		return err
	}
	return formatter.DisplayResults(os.Stdout, ctrl.Snapshot(), outputFormat)
}

// fillForm walks the three form steps with the flag values.
func fillForm(ctrl *session.Controller) error {
	if err := ctrl.Start(); err != nil {
		return err
	}

	for _, name := range analyzeStocks {
		added, err := ctrl.AddStock(name)
		if err != nil {
			return err
		}
		if !added {
			printError(fmt.Sprintf("Skipping duplicate or blank stock %q", name))
		}
	}
	sold := model.StatusSold
	for _, name := range analyzeSold {
		if err := updateStock(ctrl, name, form.StockUpdate{Status: &sold}); err != nil {
			return err
		}
	}
	for _, v := range analyzePeriods {
		name, period, err := splitAssignment("period", v)
		if err != nil {
			return err
		}
		if err := updateStock(ctrl, name, form.StockUpdate{Period: &period}); err != nil {
			return err
		}
	}
	for _, v := range analyzeCustom {
		name, value, err := splitAssignment("custom", v)
		if err != nil {
			return err
		}
		r, ok := form.DecodePeriod(value)
		if !ok || !r.Valid() {
			return fmt.Errorf("--custom %s: invalid date range %q", name, value)
		}
		custom, encoded := model.PeriodCustom, form.EncodePeriod(r)
		if err := updateStock(ctrl, name, form.StockUpdate{Period: &custom, CustomPeriod: &encoded}); err != nil {
			return err
		}
	}
	if !ctrl.Next() {
		return fmt.Errorf("step 1 incomplete: add at least one stock")
	}

	for _, v := range analyzePatterns {
		name, pattern, err := splitAssignment("pattern", v)
		if err != nil {
			return err
		}
		i := ctrl.IndexOf(name)
		if i < 0 {
			return fmt.Errorf("--pattern: unknown stock %q", name)
		}
		if err := ctrl.TogglePattern(i, pattern); err != nil {
			return err
		}
	}
	if !ctrl.Next() {
		return fmt.Errorf("step 2 incomplete: every stock needs a --pattern (choices: %s)",
			strings.Join(model.TradePatterns, ", "))
	}

	for _, tag := range analyzeBasis {
		if err := ctrl.ToggleDecisionBasis(tag); err != nil {
			return err
		}
	}
	if !ctrl.CanAdvance() {
		return fmt.Errorf("step 3 incomplete: at least one --basis is required (choices: %s)",
			strings.Join(model.DecisionOptions, ", "))
	}
	return nil
}

func updateStock(ctrl *session.Controller, name string, u form.StockUpdate) error {
	i := ctrl.IndexOf(name)
	if i < 0 {
		return fmt.Errorf("unknown stock %q", name)
	}
	return ctrl.UpdateStock(i, u)
}

// followUp sends the questions in order while the quiz is generated
// alongside them.
func followUp(ctx context.Context, ctrl *session.Controller) error {
	if len(analyzeAsk) == 0 && !analyzeQuiz {
		return nil
	}
	s := newSpinner("Asking the advisor...")
	s.Start()
	defer s.Stop()

	g, gctx := errgroup.WithContext(ctx)
	if len(analyzeAsk) > 0 {
		g.Go(func() error {
			for _, q := range analyzeAsk {
				_, err := ctrl.SendChat(gctx, q)
				if errors.Is(err, session.ErrEmptyMessage) {
					continue
				}
				if err != nil {
					// The question stays in the transcript unanswered.
					log.Warn("chat failed", zap.String("question", q), zap.Error(err))
				}
			}
			return nil
		})
	}
	if analyzeQuiz {
		g.Go(func() error {
			if _, err := ctrl.Quiz(gctx); err != nil {
				return fmt.Errorf("quiz generation failed: %w", err)
			}
			return nil
		})
	}
	return g.Wait()
}
