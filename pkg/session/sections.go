package session

import "fmt"

// Section names a collapsible part of the report view.
type Section string

const (
	SectionLossCause     Section = "loss_cause"
	SectionMarketContext Section = "market_context"
	SectionTechnical     Section = "technical"
	SectionPattern       Section = "pattern"
	SectionLearningPath  Section = "learning_path"
)

// Sections lists the report sections in display order.
var Sections = []Section{
	SectionLossCause,
	SectionMarketContext,
	SectionTechnical,
	SectionPattern,
	SectionLearningPath,
}

// ParseSection accepts a section name.
func ParseSection(name string) (Section, error) {
	for _, s := range Sections {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown section %q", name)
}

// SectionState is the display state of one report section.
type SectionState struct {
	Expanded bool `json:"expanded" yaml:"expanded"`
	Shown    bool `json:"shown" yaml:"shown"`
}

// DefaultSections returns every section shown and expanded.
func DefaultSections() map[Section]SectionState {
	out := make(map[Section]SectionState, len(Sections))
	for _, s := range Sections {
		out[s] = SectionState{Expanded: true, Shown: true}
	}
	return out
}

// ToggleSection flips whether a report section is expanded.
func (c *Controller) ToggleSection(s Section) error {
	return c.updateSection(s, func(f *SectionState) { f.Expanded = !f.Expanded })
}

// ShowSection shows or hides a report section.
func (c *Controller) ShowSection(s Section, shown bool) error {
	return c.updateSection(s, func(f *SectionState) { f.Shown = shown })
}

func (c *Controller) updateSection(s Section, fn func(*SectionState)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.report == nil {
		return ErrNoReport
	}
	flags, ok := c.sections[s]
	if !ok {
		return fmt.Errorf("unknown section %q", s)
	}
	fn(&flags)
	c.sections[s] = flags
	return nil
}
