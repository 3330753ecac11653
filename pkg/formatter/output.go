package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/helmcode/lossnote/pkg/model"
	"github.com/helmcode/lossnote/pkg/session"
	"gopkg.in/yaml.v3"
)

const lineWidth = 80

// DisplayResults renders a session view in the given format.
func DisplayResults(w io.Writer, view session.View, format string) error {
	switch format {
	case "json":
		return displayJSON(w, view)
	case "yaml":
		return displayYAML(w, view)
	case "human":
		fallthrough
	default:
		displayHuman(w, view)
	}
	return nil
}

func displayJSON(w io.Writer, view session.View) error {
	output, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(output))
	return nil
}

func displayYAML(w io.Writer, view session.View) error {
	output, err := yaml.Marshal(view)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(output))
	return nil
}

func displayHuman(w io.Writer, view session.View) {
	if view.Report == nil {
		fmt.Fprintf(w, "No report (screen: %s)\n", view.State)
		if view.Error != "" {
			color.New(color.FgRed, color.Bold).Fprintf(w, "❌ %s\n", view.Error)
		}
		return
	}
	r := view.Report

	fmt.Fprintln(w)
	color.New(color.FgWhite, color.Bold).Fprintf(w, "📄 %s\n", r.Title)
	fmt.Fprintln(w, wrapText(r.OverallSummary, lineWidth, "   "))
	fmt.Fprintln(w)

	for _, s := range session.Sections {
		if !view.SectionShown(s) {
			continue
		}
		expanded := view.SectionExpanded(s)
		switch s {
		case session.SectionLossCause:
			displayLossCause(w, r.LossCause, expanded)
		case session.SectionMarketContext:
			displayMarket(w, r.MarketContext, expanded)
		case session.SectionTechnical:
			displaySection(w, "📈 TECHNICAL", r.Technical, expanded)
		case session.SectionPattern:
			displayPattern(w, r.PatternAnalysis, expanded)
		case session.SectionLearningPath:
			displayLearningPath(w, r.LearningPath, expanded)
		}
	}

	color.New(color.FgCyan, color.Bold).Fprintln(w, "💬 ADVISOR:")
	fmt.Fprintln(w, wrapText(r.Advisor.Message, lineWidth, "   "))
	for _, q := range r.Advisor.SuggestedQuestions {
		fmt.Fprintf(w, "   • %s\n", color.HiBlackString("%s", q))
	}
	fmt.Fprintln(w)

	if len(view.Transcript) > 0 {
		DisplayTranscript(w, view)
	}
	if view.Quiz != nil {
		DisplayQuiz(w, *view.Quiz)
	}

	// Footer
	fmt.Fprintln(w, strings.Repeat("─", lineWidth))
	fmt.Fprintf(w, "💡 %s\n", color.HiBlackString("Run with -o json or -o yaml for machine-readable output"))
}

func header(w io.Writer, c *color.Color, title string, expanded bool) {
	marker := "▾"
	if !expanded {
		marker = "▸"
	}
	c.Fprintf(w, "%s %s\n", marker, title)
}

func displayLossCause(w io.Writer, lc model.LossCause, expanded bool) {
	header(w, color.New(color.FgRed, color.Bold), "💡 LOSS CAUSE: "+lc.Title, expanded)
	if !expanded {
		fmt.Fprintln(w)
		return
	}
	fmt.Fprintf(w, "   Loss: %s (%s)\n", lc.LossCheck, lc.LossAmountPct)
	fmt.Fprintf(w, "   Internal %d%% / External %d%%   Confidence: %s\n\n",
		lc.Breakdown.InternalRatio, lc.Breakdown.ExternalRatio, lc.ConfidenceLevel)

	for i, rc := range lc.RootCauses {
		fmt.Fprintf(w, "   %d. %s [%s] %s\n", i+1, getSeverityIcon(string(rc.ImpactLevel)), rc.ID, rc.Title)
		getSeverityColor(string(rc.ImpactLevel)).Fprintf(w, "      %s · %s · impact %d/10 (%s)\n",
			rc.Category, rc.Subcategory, rc.ImpactScore, strings.ToUpper(string(rc.ImpactLevel)))
		if rc.Description != rc.Title {
			fmt.Fprintln(w, wrapText(rc.Description, lineWidth, "      "))
		}
		for _, ev := range rc.Evidence {
			fmt.Fprintf(w, "      Evidence (%s): %s\n", ev.Source, color.YellowString("%s", ev.DataPoint))
			if ev.Interpretation != model.NoInfo {
				fmt.Fprintf(w, "        → %s\n", ev.Interpretation)
			}
		}
	}
	if lc.DetailedExplanation != model.NoInfo {
		fmt.Fprintln(w)
		fmt.Fprintln(w, wrapText(lc.DetailedExplanation, lineWidth, "   "))
	}
	fmt.Fprintln(w)
}

func displayMarket(w io.Writer, mc model.MarketContext, expanded bool) {
	header(w, color.New(color.FgYellow, color.Bold), "🌐 MARKET CONTEXT", expanded)
	fmt.Fprintln(w, wrapText(mc.Summary, lineWidth, "   "))
	if !expanded {
		fmt.Fprintln(w)
		return
	}
	if s := mc.Sentiment; s != nil {
		fmt.Fprintf(w, "   Sentiment: %s (%d) %s\n", s.Label, s.Index, s.Description)
	}
	for _, d := range mc.Details {
		fmt.Fprintf(w, "   • %s\n", d)
	}
	for i, n := range mc.News {
		fmt.Fprintf(w, "   %d. %s %s\n", i+1, n.Title, color.HiBlackString("%s", n.Date))
		if n.Summary != "" {
			fmt.Fprintln(w, wrapText(n.Summary, lineWidth, "      "))
		}
		if n.Link != "" {
			fmt.Fprintf(w, "      %s\n", color.CyanString("%s", n.Link))
		}
	}
	fmt.Fprintln(w)
}

func displaySection(w io.Writer, title string, s model.Section, expanded bool) {
	header(w, color.New(color.FgBlue, color.Bold), title, expanded)
	fmt.Fprintln(w, wrapText(s.Summary, lineWidth, "   "))
	if expanded {
		for _, d := range s.Details {
			fmt.Fprintf(w, "   • %s\n", d)
		}
	}
	fmt.Fprintln(w)
}

func displayPattern(w io.Writer, pa model.PatternAnalysis, expanded bool) {
	header(w, color.New(color.FgMagenta, color.Bold), "🧭 PATTERN", expanded)
	fmt.Fprintln(w, wrapText(pa.Summary, lineWidth, "   "))
	if expanded {
		displayPatternDetail(w, pa, "   ")
	}
	fmt.Fprintln(w)
}

func displayPatternDetail(w io.Writer, pa model.PatternAnalysis, indent string) {
	for _, s := range pa.Strengths {
		fmt.Fprintf(w, "%s+ %s\n", indent, color.GreenString("%s", s))
	}
	for _, s := range pa.Weaknesses {
		fmt.Fprintf(w, "%s- %s\n", indent, color.RedString("%s", s))
	}
	if rec := pa.Recommendation; informative(rec.FocusArea) {
		fmt.Fprintf(w, "%sFocus: %s\n", indent, rec.FocusArea)
	}
	for i, step := range pa.Recommendation.LearningSteps {
		fmt.Fprintf(w, "%s%d) %s\n", indent, i+1, step)
	}
}

func displayLearningPath(w io.Writer, lp model.LearningPath, expanded bool) {
	header(w, color.New(color.FgGreen, color.Bold), "🚀 LEARNING PATH", expanded)
	fmt.Fprintln(w, wrapText(lp.Summary, lineWidth, "   "))
	if expanded {
		fmt.Fprintf(w, "   %s\n", color.HiBlackString("%s", lp.Description))
		if informative(lp.FocusArea) {
			fmt.Fprintf(w, "   Focus: %s\n", lp.FocusArea)
		}
		for i, step := range lp.PracticeSteps {
			fmt.Fprintf(w, "   %d. %s %s\n", i+1, getPriorityIcon("high"), step)
		}
		if len(lp.RecommendedTopics) > 0 {
			fmt.Fprintf(w, "   Topics: %s\n", strings.Join(lp.RecommendedTopics, ", "))
		}
	}
	fmt.Fprintln(w)
}

// DisplayTranscript prints chat turns. Expanded assistant turns also show
// the pattern analysis they carry. Questions without a reply are marked as
// waiting while a chat call is out, and as unanswered otherwise.
func DisplayTranscript(w io.Writer, view session.View) {
	unanswered := make(map[int]bool, len(view.Unanswered))
	for _, ex := range view.Unanswered {
		unanswered[ex] = true
	}
	note := "(no reply)"
	if view.Loading.Chat {
		note = "(waiting for reply)"
	}

	color.New(color.FgCyan, color.Bold).Fprintln(w, "🗨  CHAT:")
	for _, turn := range view.Transcript {
		if turn.Role == model.RoleUser {
			fmt.Fprintf(w, "   %s %s", color.CyanString(">"), turn.Content)
			if unanswered[turn.Exchange] {
				fmt.Fprintf(w, " %s", color.HiBlackString("%s", note))
			}
			fmt.Fprintln(w)
			continue
		}
		fmt.Fprintln(w, wrapText(turn.Content, lineWidth, "     "))
		if turn.Raw != nil {
			if view.Expanded[turn.ID] {
				fmt.Fprintf(w, "     %s\n", color.HiBlackString("%s", turn.Raw.Summary))
				displayPatternDetail(w, *turn.Raw, "     ")
			} else {
				fmt.Fprintf(w, "     %s\n", color.HiBlackString("▸ pattern analysis (%s)", turn.ID[:min(8, len(turn.ID))]))
			}
		}
	}
	fmt.Fprintln(w)
}

// DisplayQuiz prints a quiz set. Standard items mark the answer; personality
// items list a solution per option.
func DisplayQuiz(w io.Writer, set model.QuizSet) {
	color.New(color.FgMagenta, color.Bold).Fprintf(w, "📝 QUIZ: %s\n", set.Purpose)
	for i, q := range set.Quizzes {
		fmt.Fprintf(w, "   %d. %s\n", i+1, q.Question)
		for j, opt := range q.Options {
			mark := " "
			if q.CorrectAnswerIndex != nil && *q.CorrectAnswerIndex == j {
				mark = color.GreenString("✓")
			}
			fmt.Fprintf(w, "      %s %c) %s\n", mark, 'a'+j, opt.Text)
			if q.Type == model.QuizPersonality && opt.Solution != "" {
				fmt.Fprintf(w, "           %s\n", color.HiBlackString("%s", opt.Solution))
			}
		}
	}
	fmt.Fprintln(w)
}

// DisplayForm prints the form as it stands on the current step.
func DisplayForm(w io.Writer, view session.View) {
	color.New(color.FgWhite, color.Bold).Fprintf(w, "📝 STEP %d/%d\n", view.Step, session.LastStep)
	for i, s := range view.Form.Stocks {
		period := s.Period
		if s.IsCustomPeriod() {
			period = s.CustomPeriod
		}
		fmt.Fprintf(w, "   %d. %s (%s, %s) %s\n", i+1, s.Name, s.Status, period, strings.Join(s.Patterns, ", "))
	}
	if len(view.Form.DecisionBasis) > 0 {
		fmt.Fprintf(w, "   Basis: %s\n", strings.Join(view.Form.DecisionBasis, ", "))
	}
	if !view.CanAdvance {
		fmt.Fprintf(w, "   %s\n", color.YellowString("Complete this step to continue"))
	}
	if view.Error != "" {
		color.New(color.FgRed).Fprintf(w, "   ❌ %s\n", view.Error)
	}
}

func getSeverityColor(severity string) *color.Color {
	switch strings.ToLower(severity) {
	case "critical":
		return color.New(color.FgRed, color.Bold)
	case "high":
		return color.New(color.FgRed)
	case "medium":
		return color.New(color.FgYellow)
	case "low":
		return color.New(color.FgGreen)
	default:
		return color.New(color.FgWhite)
	}
}

func getSeverityIcon(severity string) string {
	switch strings.ToLower(severity) {
	case "critical":
		return "🔴"
	case "high":
		return "🟠"
	case "medium":
		return "🟡"
	case "low":
		return "🟢"
	default:
		return "⚪"
	}
}

func getPriorityIcon(priority string) string {
	switch strings.ToLower(priority) {
	case "high":
		return "⚡"
	case "medium":
		return "🔹"
	case "low":
		return "▫️"
	default:
		return "•"
	}
}

// wrapText wraps on rune count so Hangul lines break at the same width.
func wrapText(text string, width int, indent string) string {
	var result strings.Builder
	lines := strings.Split(text, "\n")

	for _, line := range lines {
		words := strings.Fields(line)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}

		currentLine := indent
		for _, word := range words {
			if runeLen(currentLine)+runeLen(word)+1 > width {
				result.WriteString(currentLine + "\n")
				currentLine = indent + word
			} else if currentLine == indent {
				currentLine += word
			} else {
				currentLine += " " + word
			}
		}

		if currentLine != indent {
			result.WriteString(currentLine + "\n")
		}
	}

	return strings.TrimSuffix(result.String(), "\n")
}

// informative reports whether a field holds more than a placeholder.
func informative(s string) bool {
	return s != "" && s != model.NoInfo
}

func runeLen(s string) int {
	return len([]rune(s))
}
