package normalize

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Payload is the analyze response as the backend sends it, in any of its
// schema revisions. Only Decode should build one.
type Payload struct {
	RequestID     string           `json:"request_id"`
	ReportWriter  *reportWriter    `json:"n10_loss_review_report"`
	LossCause     *lossCauseRaw    `json:"n8_loss_cause_analysis"`
	MarketContext *marketContext   `json:"n8_market_context_analysis"`
	Pattern       *patternAnalysis `json:"learning_pattern_analysis"`
	News          *newsAnalysis    `json:"n7_news_analysis"`
	Stock         *stockAnalysis   `json:"n6_stock_analysis"`
}

type nodeSummary struct {
	Summary string   `json:"summary"`
	Details []string `json:"details"`
}

type reportWriter struct {
	ReportTitle    string `json:"report_title"`
	OverallSummary string `json:"overall_summary"`
	NodeSummaries  struct {
		N6 nodeSummary `json:"n6"`
		N7 nodeSummary `json:"n7"`
		N8 nodeSummary `json:"n8"`
		N9 nodeSummary `json:"n9"`
	} `json:"node_summaries"`
	LearningMaterials struct {
		KeyTakeaways      []string `json:"key_takeaways"`
		RecommendedTopics []string `json:"recommended_topics"`
		PracticeSteps     []string `json:"practice_steps"`
	} `json:"learning_materials"`
	UncertaintyLevel string `json:"uncertainty_level"`
}

type lossCauseRaw struct {
	LossCheck           string          `json:"loss_check"`
	LossAmountPct       string          `json:"loss_amount_pct"`
	OneLineSummary      string          `json:"one_line_summary"`
	RootCauses          json.RawMessage `json:"root_causes"`
	CauseBreakdown      *causeBreakdown `json:"cause_breakdown"`
	DetailedExplanation string          `json:"detailed_explanation"`
	ConfidenceLevel     string          `json:"confidence_level"`
}

type causeBreakdown struct {
	InternalRatio number `json:"internal_ratio"`
	ExternalRatio number `json:"external_ratio"`
}

type rootCauseRaw struct {
	ID                string        `json:"id"`
	Category          string        `json:"category"`
	Subcategory       string        `json:"subcategory"`
	Title             string        `json:"title"`
	Description       string        `json:"description"`
	ImpactScore       number        `json:"impact_score"`
	ImpactLevel       string        `json:"impact_level"`
	Evidence          []evidenceRaw `json:"evidence"`
	TimelineRelevance string        `json:"timeline_relevance"`
}

type evidenceRaw struct {
	Source         string `json:"source"`
	Type           string `json:"type"`
	DataPoint      string `json:"data_point"`
	Interpretation string `json:"interpretation"`
}

type marketContext struct {
	NewsAtLossTime          []string `json:"news_at_loss_time"`
	MarketSituationAnalysis string   `json:"market_situation_analysis"`
	RelatedNews             []string `json:"related_news"`
}

type learningRecommendation struct {
	FocusArea         string   `json:"focus_area"`
	LearningReason    string   `json:"learning_reason"`
	LearningSteps     []string `json:"learning_steps"`
	RecommendedTopics []string `json:"recommended_topics"`
}

type patternAnalysis struct {
	PatternSummary         string                 `json:"pattern_summary"`
	PatternStrengths       []string               `json:"pattern_strengths"`
	PatternWeaknesses      []string               `json:"pattern_weaknesses"`
	LearningRecommendation learningRecommendation `json:"learning_recommendation"`
	UncertaintyLevel       string                 `json:"uncertainty_level"`
}

type newsItemRaw struct {
	Title   string `json:"title"`
	Source  string `json:"source"`
	Date    string `json:"date"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Summary string `json:"summary"`
}

type newsAnalysis struct {
	NewsContext struct {
		Ticker          string `json:"ticker"`
		Summary         string `json:"summary"`
		MarketSentiment *struct {
			Index       number `json:"index"`
			Label       string `json:"label"`
			Description string `json:"description"`
		} `json:"market_sentiment"`
		KeyHeadlines  []newsItemRaw `json:"key_headlines"`
		NewsSummaries []newsItemRaw `json:"news_summaries"`
	} `json:"news_context"`
}

type stockAnalysis struct {
	StockAnalysis struct {
		Ticker    string   `json:"ticker"`
		Summary   string   `json:"summary"`
		Trend     string   `json:"trend"`
		RiskNotes []string `json:"risk_notes"`
	} `json:"stock_analysis"`
}

// Legacy reports whether the loss cause section predates structured root
// causes.
func (p *Payload) Legacy() bool {
	if p == nil || p.LossCause == nil {
		return true
	}
	return IsLegacy(p.LossCause.RootCauses)
}

// Decode parses an analyze response. Fields whose JSON type does not match
// are skipped and later resolved to placeholders; only malformed JSON fails.
func Decode(data []byte) (*Payload, error) {
	var p Payload
	if err := lenientUnmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// lenientUnmarshal ignores type mismatches. encoding/json keeps decoding the
// rest of the document after one and reports only the first.
func lenientUnmarshal(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return nil
	}
	return err
}

// number accepts a JSON number or a numeric string and swallows anything
// else, leaving Valid false.
type number struct {
	Value float64
	Valid bool
}

func (n *number) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*n = number{Value: f, Valid: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*n = number{Value: f, Valid: true}
		}
	}
	return nil
}

// Int rounds to the nearest integer, or returns def when unset.
func (n number) Int(def int) int {
	if !n.Valid || math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
		return def
	}
	return int(math.Round(n.Value))
}
