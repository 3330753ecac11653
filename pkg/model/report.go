package model

// Placeholders shown when the analysis payload leaves a field out.
const (
	NoInfo              = "정보 없음"
	NoDate              = "날짜 정보 없음"
	DefaultReportTitle  = "손실 복기 리포트"
	DefaultLossTitle    = "손실 원인 분석"
	DefaultMarketTitle  = "시장 상황 분석"
	DefaultPatternTitle = "투자 패턴 분석"
	DefaultTechTitle    = "기술적 지표 요약"
	DefaultLearningPath = "학습 경로"
	DefaultLearningDesc = "제공된 학습 자료를 바탕으로 개선 방향을 찾아보세요."
	DefaultAdvisorText  = "현명한 투자 결정을 위해 노력하세요."
)

// Category of a root cause.
type Category string

const (
	CategoryInternal Category = "internal"
	CategoryExternal Category = "external"
)

// ImpactLevel is the bucket of an impact score.
type ImpactLevel string

const (
	ImpactLow      ImpactLevel = "low"
	ImpactMedium   ImpactLevel = "medium"
	ImpactHigh     ImpactLevel = "high"
	ImpactCritical ImpactLevel = "critical"
)

// LevelForScore buckets a 0..10 score: 0-3 low, 4-6 medium, 7-9 high,
// 10 critical. Out of range scores land in the nearest bucket.
func LevelForScore(score int) ImpactLevel {
	switch {
	case score >= 10:
		return ImpactCritical
	case score >= 7:
		return ImpactHigh
	case score >= 4:
		return ImpactMedium
	default:
		return ImpactLow
	}
}

// Evidence sources, one per upstream analysis stage.
const (
	SourceStock     = "n6"
	SourceNews      = "n7"
	SourceUserInput = "user_input"
)

// Evidence backs a root cause with one observation.
type Evidence struct {
	Source         string `json:"source" yaml:"source"`
	Type           string `json:"type" yaml:"type"`
	DataPoint      string `json:"data_point" yaml:"data_point"`
	Interpretation string `json:"interpretation" yaml:"interpretation"`
}

// RootCause is one attributed factor behind a loss.
type RootCause struct {
	ID                string      `json:"id" yaml:"id"`
	Category          Category    `json:"category" yaml:"category"`
	Subcategory       string      `json:"subcategory" yaml:"subcategory"`
	Title             string      `json:"title" yaml:"title"`
	Description       string      `json:"description" yaml:"description"`
	ImpactScore       int         `json:"impact_score" yaml:"impact_score"`
	ImpactLevel       ImpactLevel `json:"impact_level" yaml:"impact_level"`
	Evidence          []Evidence  `json:"evidence" yaml:"evidence"`
	TimelineRelevance string      `json:"timeline_relevance" yaml:"timeline_relevance"`
}

// CauseBreakdown splits blame between behaviour and market, in percent.
type CauseBreakdown struct {
	InternalRatio int `json:"internal_ratio" yaml:"internal_ratio"`
	ExternalRatio int `json:"external_ratio" yaml:"external_ratio"`
}

type LossCause struct {
	Title               string         `json:"title" yaml:"title"`
	LossCheck           string         `json:"loss_check" yaml:"loss_check"`
	LossAmountPct       string         `json:"loss_amount_pct" yaml:"loss_amount_pct"`
	RootCauses          []RootCause    `json:"root_causes" yaml:"root_causes"`
	Breakdown           CauseBreakdown `json:"cause_breakdown" yaml:"cause_breakdown"`
	DetailedExplanation string         `json:"detailed_explanation" yaml:"detailed_explanation"`
	ConfidenceLevel     string         `json:"confidence_level" yaml:"confidence_level"`
}

// NewsItem is one market headline or summary. Date is already formatted.
type NewsItem struct {
	Title   string `json:"title" yaml:"title"`
	Source  string `json:"source,omitempty" yaml:"source,omitempty"`
	Date    string `json:"date" yaml:"date"`
	Link    string `json:"link,omitempty" yaml:"link,omitempty"`
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`
}

type Sentiment struct {
	Index       int    `json:"index" yaml:"index"`
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description" yaml:"description"`
}

type MarketContext struct {
	Summary   string     `json:"summary" yaml:"summary"`
	Details   []string   `json:"details" yaml:"details"`
	News      []NewsItem `json:"news" yaml:"news"`
	Sentiment *Sentiment `json:"sentiment,omitempty" yaml:"sentiment,omitempty"`
}

// Section is a titled block of prose with bullet details.
type Section struct {
	Summary string   `json:"summary" yaml:"summary"`
	Details []string `json:"details" yaml:"details"`
}

type LearningRecommendation struct {
	FocusArea         string   `json:"focus_area" yaml:"focus_area"`
	LearningReason    string   `json:"learning_reason" yaml:"learning_reason"`
	LearningSteps     []string `json:"learning_steps" yaml:"learning_steps"`
	RecommendedTopics []string `json:"recommended_topics" yaml:"recommended_topics"`
}

// PatternAnalysis is the trading habit review. Chat replies may carry a
// fresh one.
type PatternAnalysis struct {
	Summary          string                 `json:"summary" yaml:"summary"`
	Strengths        []string               `json:"strengths" yaml:"strengths"`
	Weaknesses       []string               `json:"weaknesses" yaml:"weaknesses"`
	Recommendation   LearningRecommendation `json:"recommendation" yaml:"recommendation"`
	UncertaintyLevel string                 `json:"uncertainty_level" yaml:"uncertainty_level"`
}

type LearningPath struct {
	Summary           string   `json:"summary" yaml:"summary"`
	Description       string   `json:"description" yaml:"description"`
	FocusArea         string   `json:"focus_area" yaml:"focus_area"`
	Materials         []string `json:"materials" yaml:"materials"`
	PracticeSteps     []string `json:"practice_steps" yaml:"practice_steps"`
	RecommendedTopics []string `json:"recommended_topics" yaml:"recommended_topics"`
}

type AdvisorMessage struct {
	Message            string   `json:"message" yaml:"message"`
	SuggestedQuestions []string `json:"suggested_questions" yaml:"suggested_questions"`
}

// Report is the canonical analysis result. Every string has a placeholder
// and every list is non-nil once normalized.
type Report struct {
	ID              string          `json:"id" yaml:"id"`
	RequestID       string          `json:"request_id" yaml:"request_id"`
	Title           string          `json:"title" yaml:"title"`
	OverallSummary  string          `json:"overall_summary" yaml:"overall_summary"`
	LossCause       LossCause       `json:"loss_cause" yaml:"loss_cause"`
	MarketContext   MarketContext   `json:"market_context" yaml:"market_context"`
	Technical       Section         `json:"technical" yaml:"technical"`
	PatternAnalysis PatternAnalysis `json:"pattern_analysis" yaml:"pattern_analysis"`
	LearningPath    LearningPath    `json:"learning_path" yaml:"learning_path"`
	Advisor         AdvisorMessage  `json:"advisor" yaml:"advisor"`
}
