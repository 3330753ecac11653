package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/helmcode/lossnote/pkg/model"
)

const (
	// legacyTitleRunes is how much of a legacy cause string becomes its title.
	legacyTitleRunes = 20
	ellipsis         = "..."
	midpointScore    = 5

	subcategoryJudgmentError   = "judgment_error"
	subcategoryUnexpectedEvent = "unexpected_event"
	timelineThroughout         = "throughout"
)

var timelines = map[string]bool{
	"before_buy":       true,
	"during_hold":      true,
	"at_sell":          true,
	timelineThroughout: true,
}

var evidenceSources = map[string]bool{
	model.SourceStock:     true,
	model.SourceNews:      true,
	model.SourceUserInput: true,
}

// IsLegacy reports whether a root_causes value predates structured causes:
// absent, empty, or made of plain strings.
func IsLegacy(raw json.RawMessage) bool {
	items, ok := rootCauseItems(raw)
	if !ok || len(items) == 0 {
		return true
	}
	for _, item := range items {
		if !isJSONString(item) {
			return false
		}
	}
	return true
}

// RootCauses resolves a root_causes value of any revision to canonical causes.
// Plain strings go through UpgradeLegacy; objects through the structured
// path. Mixed lists are handled element by element, keeping positions.
func RootCauses(raw json.RawMessage) []model.RootCause {
	items, ok := rootCauseItems(raw)
	if !ok {
		return []model.RootCause{}
	}
	if legacy, ok := stringItems(items); ok {
		return UpgradeLegacy(legacy)
	}
	out := make([]model.RootCause, 0, len(items))
	for i, item := range items {
		if isJSONString(item) {
			var s string
			_ = json.Unmarshal(item, &s)
			out = append(out, legacyCause(i, s))
			continue
		}
		var rc rootCauseRaw
		if err := lenientUnmarshal(item, &rc); err != nil {
			continue
		}
		out = append(out, structuredCause(i, rc))
	}
	return out
}

// stringItems decodes items when every one of them is a plain string.
func stringItems(items []json.RawMessage) ([]string, bool) {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if !isJSONString(item) {
			return nil, false
		}
		var s string
		_ = json.Unmarshal(item, &s)
		out = append(out, s)
	}
	return out, true
}

// UpgradeLegacy turns the string-only cause list of the oldest schema into
// canonical causes. Output depends only on the input.
func UpgradeLegacy(causes []string) []model.RootCause {
	out := make([]model.RootCause, 0, len(causes))
	for i, s := range causes {
		out = append(out, legacyCause(i, s))
	}
	return out
}

func legacyCause(i int, text string) model.RootCause {
	return model.RootCause{
		ID:                causeID(i),
		Category:          model.CategoryInternal,
		Subcategory:       subcategoryJudgmentError,
		Title:             truncate(text, legacyTitleRunes),
		Description:       orDefault(text, model.NoInfo),
		ImpactScore:       midpointScore,
		ImpactLevel:       model.LevelForScore(midpointScore),
		Evidence:          []model.Evidence{},
		TimelineRelevance: timelineThroughout,
	}
}

func structuredCause(i int, rc rootCauseRaw) model.RootCause {
	category := model.Category(rc.Category)
	if category != model.CategoryInternal && category != model.CategoryExternal {
		category = model.CategoryInternal
	}
	sub := rc.Subcategory
	if sub == "" {
		sub = subcategoryJudgmentError
		if category == model.CategoryExternal {
			sub = subcategoryUnexpectedEvent
		}
	}
	score := clamp(rc.ImpactScore.Int(midpointScore), 0, 10)
	timeline := rc.TimelineRelevance
	if !timelines[timeline] {
		timeline = timelineThroughout
	}

	evidence := make([]model.Evidence, 0, len(rc.Evidence))
	for _, ev := range rc.Evidence {
		if isBlank(ev.DataPoint) {
			continue
		}
		source := ev.Source
		if !evidenceSources[source] {
			source = model.SourceUserInput
		}
		evidence = append(evidence, model.Evidence{
			Source:         source,
			Type:           orDefault(ev.Type, model.NoInfo),
			DataPoint:      ev.DataPoint,
			Interpretation: orDefault(ev.Interpretation, model.NoInfo),
		})
	}

	return model.RootCause{
		ID:          orDefault(rc.ID, causeID(i)),
		Category:    category,
		Subcategory: sub,
		Title:       firstNonBlank(rc.Title, truncate(rc.Description, legacyTitleRunes)),
		Description: orDefault(rc.Description, model.NoInfo),
		ImpactScore: score,
		// Derived, never copied: upstream levels can disagree with the score.
		ImpactLevel:       model.LevelForScore(score),
		Evidence:          evidence,
		TimelineRelevance: timeline,
	}
}

func causeBreakdownOf(b *causeBreakdown) model.CauseBreakdown {
	if b == nil || (!b.InternalRatio.Valid && !b.ExternalRatio.Valid) {
		return model.CauseBreakdown{InternalRatio: 50, ExternalRatio: 50}
	}
	internal := clamp(b.InternalRatio.Int(-1), -1, 100)
	external := clamp(b.ExternalRatio.Int(-1), -1, 100)
	switch {
	case internal < 0:
		internal = 100 - external
	case external < 0:
		external = 100 - internal
	}
	return model.CauseBreakdown{InternalRatio: internal, ExternalRatio: external}
}

func rootCauseItems(raw json.RawMessage) ([]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, true
	}
	if isJSONString(trimmed) {
		return []json.RawMessage{trimmed}, true
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, false
	}
	return items, true
}

func isJSONString(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '"'
}

func causeID(i int) string {
	return fmt.Sprintf("RC%03d", i+1)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return orDefault(s, model.NoInfo)
	}
	return strings.TrimRight(string(r[:n]), " ") + ellipsis
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
