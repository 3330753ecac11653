package session

import (
	"fmt"

	"github.com/helmcode/lossnote/pkg/form"
	"github.com/helmcode/lossnote/pkg/model"
)

// Screen is the top-level view of a session.
type Screen int

const (
	ScreenSplash Screen = iota
	ScreenHome
	ScreenForm
	ScreenLoading
	ScreenAnalysis
)

func (s Screen) String() string {
	switch s {
	case ScreenSplash:
		return "splash"
	case ScreenHome:
		return "home"
	case ScreenForm:
		return "form"
	case ScreenLoading:
		return "loading"
	case ScreenAnalysis:
		return "analysis"
	}
	return fmt.Sprintf("screen(%d)", int(s))
}

const (
	FirstStep = 1
	LastStep  = 3
)

// State is a view state. Step is set only on the form screen.
type State struct {
	Screen Screen
	Step   int
}

var (
	Splash   = State{Screen: ScreenSplash}
	Home     = State{Screen: ScreenHome}
	Loading  = State{Screen: ScreenLoading}
	Analysis = State{Screen: ScreenAnalysis}
)

// Form returns the form state at step.
func Form(step int) State {
	return State{Screen: ScreenForm, Step: step}
}

func (s State) String() string {
	if s.Screen == ScreenForm {
		return fmt.Sprintf("form(%d)", s.Step)
	}
	return s.Screen.String()
}

// Event drives Transition.
type Event int

const (
	EventSplashElapsed Event = iota
	EventStart
	EventNext
	EventBack
	EventGenerate
	EventAnalyzeSucceeded
	EventAnalyzeFailed
	EventExit
)

func (e Event) String() string {
	switch e {
	case EventSplashElapsed:
		return "splash-elapsed"
	case EventStart:
		return "start"
	case EventNext:
		return "next"
	case EventBack:
		return "back"
	case EventGenerate:
		return "generate"
	case EventAnalyzeSucceeded:
		return "analyze-succeeded"
	case EventAnalyzeFailed:
		return "analyze-failed"
	case EventExit:
		return "exit"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// Transition is the screen flow. data is the form as it stands when the
// event fires and only matters for the guarded events. Events that do not
// apply to s leave it unchanged.
func Transition(s State, e Event, data model.FormData) State {
	switch {
	case s == Splash && e == EventSplashElapsed:
		return Home
	case s == Home && e == EventStart:
		return Form(FirstStep)
	case s.Screen == ScreenForm && e == EventNext:
		if s.Step < LastStep && form.StepValid(s.Step, data) {
			return Form(s.Step + 1)
		}
	case s.Screen == ScreenForm && e == EventBack:
		if s.Step <= FirstStep {
			return Home
		}
		return Form(s.Step - 1)
	case s == Form(LastStep) && e == EventGenerate:
		if form.StepValid(LastStep, data) {
			return Loading
		}
	case s == Loading && e == EventAnalyzeSucceeded:
		return Analysis
	case s == Loading && e == EventAnalyzeFailed:
		return Form(LastStep)
	case s == Analysis && e == EventExit:
		return Home
	}
	return s
}
