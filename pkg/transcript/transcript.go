package transcript

import (
	"github.com/google/uuid"
	"github.com/helmcode/lossnote/pkg/model"
)

// Transcript is the append-only chat log of one report. Expansion state is
// kept beside the turns, keyed by turn ID, and never touches turn content.
type Transcript struct {
	turns        []model.ChatTurn
	expanded     map[string]bool
	expandNewest bool
	exchanges    int
}

// New returns an empty transcript. With expandNewest set, the newest
// assistant turn is shown expanded until the user collapses it.
func New(expandNewest bool) *Transcript {
	return &Transcript{
		expanded:     map[string]bool{},
		expandNewest: expandNewest,
	}
}

// AppendUser opens a new exchange and returns the stored turn.
func (t *Transcript) AppendUser(content string) model.ChatTurn {
	t.exchanges++
	turn := model.ChatTurn{
		ID:       uuid.NewString(),
		Exchange: t.exchanges,
		Role:     model.RoleUser,
		Content:  content,
	}
	t.turns = append(t.turns, turn)
	return turn
}

// AppendAssistant answers the given exchange. The reply lands directly after
// that exchange's user turn; ok is false when the exchange is unknown or
// already answered.
func (t *Transcript) AppendAssistant(exchange int, content string, raw *model.PatternAnalysis) (model.ChatTurn, bool) {
	pos := -1
	for i, turn := range t.turns {
		if turn.Exchange != exchange {
			continue
		}
		if turn.Role == model.RoleAssistant {
			return model.ChatTurn{}, false
		}
		pos = i
	}
	if pos < 0 {
		return model.ChatTurn{}, false
	}
	turn := model.ChatTurn{
		ID:       uuid.NewString(),
		Exchange: exchange,
		Role:     model.RoleAssistant,
		Content:  content,
		Raw:      raw,
	}
	t.turns = append(t.turns, model.ChatTurn{})
	copy(t.turns[pos+2:], t.turns[pos+1:])
	t.turns[pos+1] = turn
	return turn, true
}

// Turns returns a copy of the log in order.
func (t *Transcript) Turns() []model.ChatTurn {
	out := make([]model.ChatTurn, len(t.turns))
	copy(out, t.turns)
	return out
}

// HistoryBefore is the role/content view sent to the chat endpoint, cut at
// the user turn of exchange, so a queued message is sent with exactly the
// turns that precede it.
func (t *Transcript) HistoryBefore(exchange int) []model.ChatTurn {
	out := make([]model.ChatTurn, 0, len(t.turns))
	for _, turn := range t.turns {
		if turn.Exchange == exchange && turn.Role == model.RoleUser {
			break
		}
		out = append(out, model.ChatTurn{Role: turn.Role, Content: turn.Content})
	}
	return out
}

// Pending lists exchanges whose user turn has no reply.
func (t *Transcript) Pending() []int {
	answered := map[int]bool{}
	for _, turn := range t.turns {
		if turn.Role == model.RoleAssistant {
			answered[turn.Exchange] = true
		}
	}
	var out []int
	for _, turn := range t.turns {
		if turn.Role == model.RoleUser && !answered[turn.Exchange] {
			out = append(out, turn.Exchange)
		}
	}
	return out
}

// IsExpanded reports the visibility of a turn. Without an explicit choice
// only the newest assistant turn is expanded, and only when the session
// prefers that.
func (t *Transcript) IsExpanded(id string) bool {
	if v, ok := t.expanded[id]; ok {
		return v
	}
	return t.expandNewest && id != "" && id == t.newestAssistantID()
}

// ToggleExpanded flips a turn's visibility. Unknown IDs are ignored.
func (t *Transcript) ToggleExpanded(id string) bool {
	if !t.has(id) {
		return false
	}
	t.expanded[id] = !t.IsExpanded(id)
	return true
}

func (t *Transcript) has(id string) bool {
	for _, turn := range t.turns {
		if turn.ID == id {
			return true
		}
	}
	return false
}

func (t *Transcript) newestAssistantID() string {
	for i := len(t.turns) - 1; i >= 0; i-- {
		if t.turns[i].Role == model.RoleAssistant {
			return t.turns[i].ID
		}
	}
	return ""
}
