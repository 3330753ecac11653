package session

import (
	"github.com/helmcode/lossnote/pkg/form"
	"github.com/helmcode/lossnote/pkg/model"
	"github.com/helmcode/lossnote/pkg/orchestrator"
)

// View is a copy of everything a renderer needs. The report is shared with
// the controller and must not be modified; it never changes once installed.
type View struct {
	State        State                    `json:"-" yaml:"-"`
	Screen       string                   `json:"screen" yaml:"screen"`
	Step         int                      `json:"step,omitempty" yaml:"step,omitempty"`
	Form         model.FormData           `json:"form" yaml:"form"`
	CustomPeriod map[string]bool          `json:"customPeriod,omitempty" yaml:"customPeriod,omitempty"`
	CanAdvance   bool                     `json:"canAdvance" yaml:"canAdvance"`
	Loading      orchestrator.Loading     `json:"loading" yaml:"loading"`
	Error        string                   `json:"error,omitempty" yaml:"error,omitempty"`
	Report       *model.Report            `json:"report,omitempty" yaml:"report,omitempty"`
	Sections     map[Section]SectionState `json:"sections,omitempty" yaml:"sections,omitempty"`
	Transcript   []model.ChatTurn         `json:"transcript" yaml:"transcript"`
	Unanswered   []int                    `json:"unanswered,omitempty" yaml:"unanswered,omitempty"`
	Expanded     map[string]bool          `json:"expanded,omitempty" yaml:"expanded,omitempty"`
	Quiz         *model.QuizSet           `json:"quiz,omitempty" yaml:"quiz,omitempty"`
}

// SectionShown reports whether a report section is visible.
func (v View) SectionShown(s Section) bool {
	return v.Sections[s].Shown
}

// SectionExpanded reports whether a report section is expanded.
func (v View) SectionExpanded(s Section) bool {
	return v.Sections[s].Expanded
}

// Snapshot copies the session for rendering.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	data := c.form.Snapshot()
	v := View{
		State:        c.state,
		Screen:       c.state.Screen.String(),
		Step:         c.state.Step,
		Form:         data,
		CustomPeriod: make(map[string]bool, len(c.customFlag)),
		CanAdvance:   c.state.Screen == ScreenForm && form.StepValid(c.state.Step, data),
		Loading:      c.orch.Loading(),
		Report:       c.report,
		Sections:     make(map[Section]SectionState, len(c.sections)),
		Transcript:   c.transcript.Turns(),
		Unanswered:   c.transcript.Pending(),
		Expanded:     map[string]bool{},
	}
	for name, on := range c.customFlag {
		v.CustomPeriod[name] = on
	}
	for s, f := range c.sections {
		v.Sections[s] = f
	}
	for _, turn := range v.Transcript {
		if c.transcript.IsExpanded(turn.ID) {
			v.Expanded[turn.ID] = true
		}
	}
	if c.lastErr != nil {
		v.Error = c.lastErr.Error()
	}
	if c.quiz != nil {
		q := *c.quiz
		v.Quiz = &q
	}
	return v
}
