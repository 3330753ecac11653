// Package normalize turns analyze and chat responses of every backend schema
// revision into the canonical model. Nothing here returns an error for a
// missing or mistyped field: each one resolves through a fallback chain,
// newest revision first, ending in a placeholder.
//
// Revisions, oldest first:
//
//	r1  n8_loss_cause_analysis.root_causes as plain strings,
//	    n8_market_context_analysis, learning_pattern_analysis
//	r2  structured root causes with cause_breakdown, n10_loss_review_report,
//	    n6_stock_analysis, n7 key_headlines
//	r3  n7 news_summaries, market_sentiment and news summary
package normalize

import (
	"strings"

	"github.com/helmcode/lossnote/pkg/model"
)

// Analysis builds the canonical report. p may be nil.
func Analysis(p *Payload) model.Report {
	if p == nil {
		p = &Payload{}
	}
	return model.Report{
		RequestID:       p.RequestID,
		Title:           firstNonBlank(writer(p).ReportTitle, model.DefaultReportTitle),
		OverallSummary:  firstNonBlank(writer(p).OverallSummary, lossRaw(p).OneLineSummary, model.NoInfo),
		LossCause:       lossCause(p),
		MarketContext:   marketContextOf(p),
		Technical:       technical(p),
		PatternAnalysis: patternOf(p.Pattern, writer(p).NodeSummaries.N9.Summary, writer(p).UncertaintyLevel),
		LearningPath:    learningPath(p),
		Advisor:         advisor(p),
	}
}

// Empty objects stand in for absent sections so the chains below read flat.
func writer(p *Payload) *reportWriter {
	if p.ReportWriter == nil {
		return &reportWriter{}
	}
	return p.ReportWriter
}

func lossRaw(p *Payload) *lossCauseRaw {
	if p.LossCause == nil {
		return &lossCauseRaw{}
	}
	return p.LossCause
}

func market(p *Payload) *marketContext {
	if p.MarketContext == nil {
		return &marketContext{}
	}
	return p.MarketContext
}

func news(p *Payload) *newsAnalysis {
	if p.News == nil {
		return &newsAnalysis{}
	}
	return p.News
}

func recommendation(p *Payload) learningRecommendation {
	if p.Pattern == nil {
		return learningRecommendation{}
	}
	return p.Pattern.LearningRecommendation
}

func lossCause(p *Payload) model.LossCause {
	lc := lossRaw(p)
	return model.LossCause{
		Title:               firstNonBlank(lc.OneLineSummary, lc.LossCheck, model.DefaultLossTitle),
		LossCheck:           orDefault(lc.LossCheck, model.NoInfo),
		LossAmountPct:       orDefault(lc.LossAmountPct, model.NoInfo),
		RootCauses:          RootCauses(lc.RootCauses),
		Breakdown:           causeBreakdownOf(lc.CauseBreakdown),
		DetailedExplanation: firstNonBlank(lc.DetailedExplanation, writer(p).NodeSummaries.N8.Summary, model.NoInfo),
		ConfidenceLevel:     orDefault(lc.ConfidenceLevel, "low"),
	}
}

func marketContextOf(p *Payload) model.MarketContext {
	nc := news(p).NewsContext
	mc := market(p)
	out := model.MarketContext{
		Summary: firstNonBlank(
			nc.Summary,                         // r3
			writer(p).NodeSummaries.N7.Summary, // r2
			mc.MarketSituationAnalysis,         // r1
			model.DefaultMarketTitle,
		),
		Details: firstNonEmptyList(
			writer(p).NodeSummaries.N7.Details,
			concat(mc.NewsAtLossTime, mc.RelatedNews),
		),
		News: mergeNews(nc.NewsSummaries, nc.KeyHeadlines),
	}
	if s := nc.MarketSentiment; s != nil && !isBlank(s.Label) {
		out.Sentiment = &model.Sentiment{
			Index:       clamp(s.Index.Int(50), 0, 100),
			Label:       s.Label,
			Description: orDefault(s.Description, model.NoInfo),
		}
	}
	return out
}

func technical(p *Payload) model.Section {
	var stock struct {
		Summary   string
		RiskNotes []string
	}
	if p.Stock != nil {
		stock.Summary = p.Stock.StockAnalysis.Summary
		stock.RiskNotes = p.Stock.StockAnalysis.RiskNotes
	}
	n6 := writer(p).NodeSummaries.N6
	return model.Section{
		Summary: firstNonBlank(n6.Summary, stock.Summary, model.DefaultTechTitle),
		Details: firstNonEmptyList(n6.Details, stock.RiskNotes),
	}
}

// patternOf is shared with chat replies, which carry the same object.
func patternOf(pa *patternAnalysis, summaryFallback, uncertaintyFallback string) model.PatternAnalysis {
	if pa == nil {
		pa = &patternAnalysis{}
	}
	rec := pa.LearningRecommendation
	return model.PatternAnalysis{
		Summary:    firstNonBlank(pa.PatternSummary, summaryFallback, model.DefaultPatternTitle),
		Strengths:  cleanList(pa.PatternStrengths),
		Weaknesses: cleanList(pa.PatternWeaknesses),
		Recommendation: model.LearningRecommendation{
			FocusArea:         orDefault(rec.FocusArea, model.NoInfo),
			LearningReason:    orDefault(rec.LearningReason, model.NoInfo),
			LearningSteps:     cleanList(rec.LearningSteps),
			RecommendedTopics: cleanList(rec.RecommendedTopics),
		},
		UncertaintyLevel: firstNonBlank(pa.UncertaintyLevel, uncertaintyFallback, model.NoInfo),
	}
}

func learningPath(p *Payload) model.LearningPath {
	lm := writer(p).LearningMaterials
	rec := recommendation(p)
	materials := firstNonEmptyList(lm.KeyTakeaways, rec.RecommendedTopics)
	return model.LearningPath{
		Summary:           firstNonBlank(strings.Join(materials, " · "), model.DefaultLearningPath),
		Description:       model.DefaultLearningDesc,
		FocusArea:         orDefault(rec.FocusArea, model.NoInfo),
		Materials:         materials,
		PracticeSteps:     firstNonEmptyList(lm.PracticeSteps, rec.LearningSteps),
		RecommendedTopics: firstNonEmptyList(lm.RecommendedTopics, rec.RecommendedTopics),
	}
}

func advisor(p *Payload) model.AdvisorMessage {
	return model.AdvisorMessage{
		Message:            orDefault(recommendation(p).LearningReason, model.DefaultAdvisorText),
		SuggestedQuestions: append([]string(nil), model.SuggestedQuestions...),
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func orDefault(s, def string) string {
	if isBlank(s) {
		return def
	}
	return s
}

// firstNonBlank returns the first candidate with visible text, or "".
func firstNonBlank(candidates ...string) string {
	for _, c := range candidates {
		if !isBlank(c) {
			return c
		}
	}
	return ""
}

func firstNonEmptyList(candidates ...[]string) []string {
	for _, c := range candidates {
		if cleaned := cleanList(c); len(cleaned) > 0 {
			return cleaned
		}
	}
	return []string{}
}

// cleanList drops blank entries and never returns nil.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !isBlank(s) {
			out = append(out, s)
		}
	}
	return out
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
