package formatter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/helmcode/lossnote/pkg/model"
	"github.com/helmcode/lossnote/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func init() {
	color.NoColor = true
}

func sampleView() session.View {
	answer := 1
	report := &model.Report{
		ID:             "r1",
		Title:          "손실 복기 리포트",
		OverallSummary: "추격 매수와 손절 지연이 겹쳤습니다.",
		LossCause: model.LossCause{
			Title:         "추격 매수 후 손절 지연",
			LossCheck:     "손실",
			LossAmountPct: "-12%",
			Breakdown:     model.CauseBreakdown{InternalRatio: 70, ExternalRatio: 30},
			RootCauses: []model.RootCause{{
				ID: "RC001", Title: "늦은 매도", Description: "늦은 매도",
				Category: model.CategoryInternal, ImpactScore: 8, ImpactLevel: model.ImpactHigh,
				Evidence: []model.Evidence{{Source: model.SourceStock, DataPoint: "RSI 78", Interpretation: "과매수"}},
			}},
			DetailedExplanation: model.NoInfo,
			ConfidenceLevel:     "low",
		},
		MarketContext: model.MarketContext{
			Summary: "금리 인상기",
			News:    []model.NewsItem{{Title: "기준금리 인상", Date: "2024. 03. 05.", Link: "https://news.example.com/1"}},
		},
		Technical:       model.Section{Summary: "기술적 지표 요약", Details: []string{"변동성 확대"}},
		PatternAnalysis: model.PatternAnalysis{Summary: "잦은 물타기", Weaknesses: []string{"손절 기준 없음"}},
		LearningPath:    model.LearningPath{Summary: "리스크 관리", Description: model.DefaultLearningDesc, FocusArea: model.NoInfo},
		Advisor:         model.AdvisorMessage{Message: "기록을 남기세요.", SuggestedQuestions: model.SuggestedQuestions},
	}
	return session.View{
		State:    session.Analysis,
		Screen:   "analysis",
		Report:   report,
		Sections: session.DefaultSections(),
		Transcript: []model.ChatTurn{
			{ID: "u1", Exchange: 1, Role: model.RoleUser, Content: "왜 손실이 났나요?"},
			{ID: "a1", Exchange: 1, Role: model.RoleAssistant, Content: "손절 기준이 없었습니다.",
				Raw: &model.PatternAnalysis{Summary: "감정적 매매", Strengths: []string{"기록 습관"}}},
		},
		Expanded: map[string]bool{"a1": true},
		Quiz: &model.QuizSet{Purpose: "점검", Quizzes: []model.Quiz{
			{ID: "Q1", Question: "원인?", Type: model.QuizStandard, CorrectAnswerIndex: &answer,
				Options: []model.QuizOption{{Text: "a"}, {Text: "b"}, {Text: "c"}, {Text: "d"}}},
			{ID: "Q3", Question: "다음엔?", Type: model.QuizPersonality,
				Options: []model.QuizOption{{Text: "기록", Solution: "매매 일지를 쓰세요."}}},
		}},
	}
}

func render(t *testing.T, view session.View, format string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, DisplayResults(&buf, view, format))
	return buf.String()
}

func TestDisplayHuman(t *testing.T) {
	out := render(t, sampleView(), "human")

	assert.Contains(t, out, "손실 복기 리포트")
	assert.Contains(t, out, "▾ 💡 LOSS CAUSE: 추격 매수 후 손절 지연")
	assert.Contains(t, out, "[RC001] 늦은 매도")
	assert.Contains(t, out, "Internal 70% / External 30%")
	assert.Contains(t, out, "https://news.example.com/1")
	assert.Contains(t, out, "> 왜 손실이 났나요?")
	assert.Contains(t, out, "+ 기록 습관")
	assert.Contains(t, out, "📝 QUIZ: 점검")
	assert.Contains(t, out, "✓ b) b")
	assert.Contains(t, out, "매매 일지를 쓰세요.")
	// Placeholder prose is not repeated in the detail view.
	assert.NotContains(t, out, "Focus: "+model.NoInfo)
}

func TestDisplayHumanSectionState(t *testing.T) {
	view := sampleView()
	view.Sections[session.SectionLossCause] = session.SectionState{Shown: true, Expanded: false}
	view.Sections[session.SectionMarketContext] = session.SectionState{Shown: false, Expanded: true}

	out := render(t, view, "human")

	assert.Contains(t, out, "▸ 💡 LOSS CAUSE")
	assert.NotContains(t, out, "[RC001]")
	assert.NotContains(t, out, "MARKET CONTEXT")
	assert.NotContains(t, out, "기준금리 인상")
	assert.Contains(t, out, "TECHNICAL")
}

func TestDisplayHumanCollapsedTurn(t *testing.T) {
	view := sampleView()
	view.Expanded = map[string]bool{}

	out := render(t, view, "human")

	assert.Contains(t, out, "▸ pattern analysis (a1)")
	assert.NotContains(t, out, "기록 습관")
}

func TestDisplayHumanWithoutReport(t *testing.T) {
	view := session.View{State: session.Form(3), Screen: "form", Step: 3, Error: "network failure"}

	out := render(t, view, "human")

	assert.Contains(t, out, "No report (screen: form(3))")
	assert.Contains(t, out, "network failure")
}

func TestDisplayJSON(t *testing.T) {
	out := render(t, sampleView(), "json")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "analysis", decoded["screen"])
	report, ok := decoded["report"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "r1", report["id"])
	assert.Len(t, decoded["transcript"], 2)
}

func TestDisplayYAML(t *testing.T) {
	out := render(t, sampleView(), "yaml")

	var decoded struct {
		Screen   string                                   `yaml:"screen"`
		Sections map[session.Section]session.SectionState `yaml:"sections"`
		Quiz     *model.QuizSet                           `yaml:"quiz"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "analysis", decoded.Screen)
	assert.True(t, decoded.Sections[session.SectionPattern].Shown)
	require.NotNil(t, decoded.Quiz)
	assert.Len(t, decoded.Quiz.Quizzes, 2)
}

func TestDisplayForm(t *testing.T) {
	view := session.View{
		State: session.Form(2),
		Step:  2,
		Form: model.FormData{Stocks: []model.StockEntry{{
			Name: "삼성전자", Status: model.StatusSold,
			Period: model.PeriodCustom, CustomPeriod: "2024-01-02~2024-02-03",
		}}},
	}

	var buf bytes.Buffer
	DisplayForm(&buf, view)
	out := buf.String()

	assert.Contains(t, out, "STEP 2/3")
	assert.Contains(t, out, "1. 삼성전자 (sold, 2024-01-02~2024-02-03)")
	assert.Contains(t, out, "Complete this step to continue")
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{"fits", "one two", 20, "  one two"},
		{"wraps", "one two three", 10, "  one two\n  three"},
		{"counts runes", "가나다 라마바 사아자", 10, "  가나다 라마바\n  사아자"},
		{"keeps blank lines", "a\n\nb", 10, "  a\n\n  b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wrapText(tt.text, tt.width, "  "))
		})
	}
}

func TestSeverityIcons(t *testing.T) {
	assert.Equal(t, "🔴", getSeverityIcon("CRITICAL"))
	assert.Equal(t, "⚪", getSeverityIcon("unknown"))
	assert.Equal(t, "•", getPriorityIcon(""))
	assert.True(t, strings.HasPrefix(getPriorityIcon("low"), "▫"))
}

func TestDisplayHumanUnansweredQuestion(t *testing.T) {
	view := sampleView()
	view.Transcript = append(view.Transcript,
		model.ChatTurn{ID: "u2", Exchange: 2, Role: model.RoleUser, Content: "다음엔?"})
	view.Unanswered = []int{2}

	out := render(t, view, "human")
	assert.Contains(t, out, "> 다음엔? (no reply)")
	assert.NotContains(t, out, "왜 손실이 났나요? (no reply)")

	view.Loading.Chat = true
	assert.Contains(t, render(t, view, "human"), "> 다음엔? (waiting for reply)")
}
