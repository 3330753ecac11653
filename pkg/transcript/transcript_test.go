package transcript

import (
	"testing"

	"github.com/helmcode/lossnote/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roles(turns []model.ChatTurn) []model.Role {
	out := make([]model.Role, len(turns))
	for i, turn := range turns {
		out[i] = turn.Role
	}
	return out
}

func TestAppendPairs(t *testing.T) {
	tr := New(true)
	u1 := tr.AppendUser("첫 질문")
	a1, ok := tr.AppendAssistant(u1.Exchange, "첫 답", nil)
	require.True(t, ok)
	u2 := tr.AppendUser("둘째 질문")

	assert.Equal(t, 1, u1.Exchange)
	assert.Equal(t, 2, u2.Exchange)
	assert.Equal(t, a1.Exchange, u1.Exchange)
	assert.NotEqual(t, u1.ID, a1.ID)
	assert.Equal(t, []int{2}, tr.Pending())

	_, ok = tr.AppendAssistant(u1.Exchange, "중복 답", nil)
	assert.False(t, ok, "an exchange is answered once")
	_, ok = tr.AppendAssistant(9, "없는 교환", nil)
	assert.False(t, ok)
	assert.Len(t, tr.Turns(), 3)
}

func TestLateReplyLandsAfterItsQuestion(t *testing.T) {
	tr := New(false)
	u1 := tr.AppendUser("q1")
	u2 := tr.AppendUser("q2")

	_, ok := tr.AppendAssistant(u2.Exchange, "a2", nil)
	require.True(t, ok)
	_, ok = tr.AppendAssistant(u1.Exchange, "a1", nil)
	require.True(t, ok)

	turns := tr.Turns()
	assert.Equal(t, []model.Role{model.RoleUser, model.RoleAssistant, model.RoleUser, model.RoleAssistant}, roles(turns))
	assert.Equal(t, []string{"q1", "a1", "q2", "a2"}, []string{turns[0].Content, turns[1].Content, turns[2].Content, turns[3].Content})
	assert.Empty(t, tr.Pending())
}

func TestTurnsReturnsCopy(t *testing.T) {
	tr := New(false)
	tr.AppendUser("q")
	turns := tr.Turns()
	turns[0].Content = "mutated"
	assert.Equal(t, "q", tr.Turns()[0].Content)
}

func TestHistoryCarriesRoleAndContentOnly(t *testing.T) {
	tr := New(false)
	u := tr.AppendUser("q")
	tr.AppendAssistant(u.Exchange, "a", &model.PatternAnalysis{Summary: "s"})

	next := tr.AppendUser("q2")

	h := tr.HistoryBefore(next.Exchange)
	require.Len(t, h, 2)
	assert.Equal(t, model.ChatTurn{Role: model.RoleUser, Content: "q"}, h[0])
	assert.Equal(t, model.ChatTurn{Role: model.RoleAssistant, Content: "a"}, h[1])
}

func TestExpansion(t *testing.T) {
	tr := New(true)
	u1 := tr.AppendUser("q1")
	a1, _ := tr.AppendAssistant(u1.Exchange, "a1", nil)
	assert.True(t, tr.IsExpanded(a1.ID), "newest reply defaults to expanded")
	assert.False(t, tr.IsExpanded(u1.ID))

	u2 := tr.AppendUser("q2")
	a2, _ := tr.AppendAssistant(u2.Exchange, "a2", nil)
	assert.False(t, tr.IsExpanded(a1.ID), "older replies collapse by default")
	assert.True(t, tr.IsExpanded(a2.ID))

	require.True(t, tr.ToggleExpanded(a1.ID))
	require.True(t, tr.ToggleExpanded(a2.ID))
	assert.True(t, tr.IsExpanded(a1.ID))
	assert.False(t, tr.IsExpanded(a2.ID))

	assert.False(t, tr.ToggleExpanded("unknown"))

	// toggling never rewrites the turn itself
	assert.Equal(t, "a1", tr.Turns()[1].Content)
}

func TestExpansionPreferenceOff(t *testing.T) {
	tr := New(false)
	u := tr.AppendUser("q")
	a, _ := tr.AppendAssistant(u.Exchange, "a", nil)
	assert.False(t, tr.IsExpanded(a.ID))
	assert.False(t, tr.IsExpanded(""))
}

func TestHistoryBefore(t *testing.T) {
	tr := New(false)
	u1 := tr.AppendUser("q1")
	u2 := tr.AppendUser("q2")
	assert.Empty(t, tr.HistoryBefore(u1.Exchange))
	assert.Len(t, tr.HistoryBefore(u2.Exchange), 1)

	tr.AppendAssistant(u1.Exchange, "a1", nil)
	h := tr.HistoryBefore(u2.Exchange)
	require.Len(t, h, 2)
	assert.Equal(t, "a1", h[1].Content)
	assert.Empty(t, h[1].ID)
}
