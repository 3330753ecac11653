package model

// Status of a position at review time.
type Status string

const (
	StatusHolding Status = "holding"
	StatusSold    Status = "sold"
)

// StockEntry is one stock under review.
type StockEntry struct {
	Name         string   `json:"name" yaml:"name"`
	Status       Status   `json:"status" yaml:"status"`
	Period       string   `json:"period" yaml:"period"`
	CustomPeriod string   `json:"customPeriod,omitempty" yaml:"customPeriod,omitempty"`
	Patterns     []string `json:"patterns" yaml:"patterns"`
}

// HasPattern reports whether p is selected for the stock.
func (s StockEntry) HasPattern(p string) bool {
	for _, existing := range s.Patterns {
		if existing == p {
			return true
		}
	}
	return false
}

// IsCustomPeriod reports whether the stock uses a user supplied date range.
func (s StockEntry) IsCustomPeriod() bool {
	return s.Period == PeriodCustom
}

// FormData is everything the user entered for one analysis.
type FormData struct {
	Stocks        []StockEntry `json:"stocks" yaml:"stocks"`
	DecisionBasis []string     `json:"decisionBasis" yaml:"decisionBasis"`
}

// Clone returns a deep copy. Callers outside the session controller only ever
// see clones.
func (f FormData) Clone() FormData {
	out := FormData{
		Stocks:        make([]StockEntry, len(f.Stocks)),
		DecisionBasis: cloneStrings(f.DecisionBasis),
	}
	for i, s := range f.Stocks {
		s.Patterns = cloneStrings(s.Patterns)
		out.Stocks[i] = s
	}
	return out
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// HasDecisionBasis reports whether tag is selected.
func (f FormData) HasDecisionBasis(tag string) bool {
	for _, existing := range f.DecisionBasis {
		if existing == tag {
			return true
		}
	}
	return false
}

// Role of a transcript turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is one entry of the transcript. Raw carries the structured pattern
// analysis newer chat replies attach.
type ChatTurn struct {
	ID       string           `json:"id" yaml:"id"`
	Exchange int              `json:"exchange" yaml:"exchange"`
	Role     Role             `json:"role" yaml:"role"`
	Content  string           `json:"content" yaml:"content"`
	Raw      *PatternAnalysis `json:"raw,omitempty" yaml:"raw,omitempty"`
}

// QuizType distinguishes graded questions from reflective ones.
type QuizType string

const (
	QuizStandard    QuizType = "standard"
	QuizPersonality QuizType = "personality"
)

// QuizOption is one answer choice. Solution is set on personality items.
type QuizOption struct {
	Text     string `json:"text" yaml:"text"`
	Solution string `json:"solution,omitempty" yaml:"solution,omitempty"`
}

// Quiz is one generated question.
type Quiz struct {
	ID                 string       `json:"id" yaml:"id"`
	Question           string       `json:"question" yaml:"question"`
	Type               QuizType     `json:"type" yaml:"type"`
	Options            []QuizOption `json:"options" yaml:"options"`
	CorrectAnswerIndex *int         `json:"correctAnswerIndex,omitempty" yaml:"correctAnswerIndex,omitempty"`
}

// QuizSetSize is the number of items every generated set holds.
const QuizSetSize = 3

// QuizSet is one generated quiz. Fallback marks the canned set used when the
// generator's output did not match the quiz schema.
type QuizSet struct {
	Purpose  string `json:"purpose" yaml:"purpose"`
	Quizzes  []Quiz `json:"quizzes" yaml:"quizzes"`
	Fallback bool   `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}
