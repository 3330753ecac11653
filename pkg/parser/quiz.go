package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/helmcode/lossnote/pkg/model"
)

const (
	wireMultipleChoice = "multiple_choice"
	wireReflection     = "reflection"

	optionsPerQuiz = 4
)

// QuizResult is a parsed quiz set. Anomaly is empty when the payload was
// valid; otherwise it names the first problem and Quizzes holds the
// fallback set.
type QuizResult struct {
	Purpose string
	Quizzes []model.Quiz
	Anomaly string
}

// Fallback reports whether the fallback set was used.
func (r QuizResult) Fallback() bool {
	return r.Anomaly != ""
}

// Set converts the result to the model type.
func (r QuizResult) Set() model.QuizSet {
	return model.QuizSet{Purpose: r.Purpose, Quizzes: r.Quizzes, Fallback: r.Fallback()}
}

// Pointer fields tell a missing value from a zero one.
type wireQuizSet struct {
	QuizSet *struct {
		QuizPurpose string     `json:"quiz_purpose"`
		Quizzes     []wireQuiz `json:"quizzes"`
	} `json:"quiz_set"`
}

type wireQuiz struct {
	QuizID             *string      `json:"quiz_id"`
	QuizType           string       `json:"quiz_type"`
	Question           *string      `json:"question"`
	Options            []wireOption `json:"options"`
	HasFixedAnswer     *bool        `json:"has_fixed_answer"`
	CorrectAnswerIndex *int         `json:"correct_answer_index"`
}

type wireOption struct {
	Text     *string `json:"text"`
	Solution *string `json:"solution"`
}

// ParseQuizResponse reads a quiz set from a backend or LLM reply. Markdown
// fences and prose around the JSON object are tolerated. Anything that does
// not match the quiz schema yields the fallback set; this never fails.
func ParseQuizResponse(raw string) QuizResult {
	var set wireQuizSet
	if err := decodeObject(raw, &set); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return fallbackQuiz(fmt.Sprintf("출력 스키마 검증 실패: %s", typeErr.Field))
		}
		return fallbackQuiz("JSON 파싱 실패")
	}
	if err := validate(set); err != nil {
		return fallbackQuiz(fmt.Sprintf("출력 스키마 검증 실패: %v", err))
	}

	out := QuizResult{
		Purpose: set.QuizSet.QuizPurpose,
		Quizzes: make([]model.Quiz, 0, len(set.QuizSet.Quizzes)),
	}
	for _, q := range set.QuizSet.Quizzes {
		out.Quizzes = append(out.Quizzes, toQuiz(q))
	}
	return out
}

func decodeObject(raw string, v any) error {
	cleaned := stripFences(raw)
	err := json.Unmarshal([]byte(cleaned), v)
	if err == nil {
		return nil
	}
	start, end := strings.Index(cleaned, "{"), strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return err
	}
	return json.Unmarshal([]byte(cleaned[start:end+1]), v)
}

func validate(set wireQuizSet) error {
	if set.QuizSet == nil {
		return fmt.Errorf("quiz_set missing")
	}
	if n := len(set.QuizSet.Quizzes); n != model.QuizSetSize {
		return fmt.Errorf("%d quizzes, want %d", n, model.QuizSetSize)
	}
	for i, q := range set.QuizSet.Quizzes {
		switch {
		case q.QuizID == nil:
			return fmt.Errorf("quiz %d: quiz_id missing", i+1)
		case q.QuizType != wireMultipleChoice && q.QuizType != wireReflection:
			return fmt.Errorf("quiz %d: quiz_type %q", i+1, q.QuizType)
		case q.Question == nil:
			return fmt.Errorf("quiz %d: question missing", i+1)
		case len(q.Options) != optionsPerQuiz:
			return fmt.Errorf("quiz %d: %d options", i+1, len(q.Options))
		case q.HasFixedAnswer == nil:
			return fmt.Errorf("quiz %d: has_fixed_answer missing", i+1)
		}
		for j, opt := range q.Options {
			if opt.Text == nil {
				return fmt.Errorf("quiz %d option %d: text missing", i+1, j+1)
			}
			if q.QuizType == wireReflection && opt.Solution == nil {
				return fmt.Errorf("quiz %d option %d: solution missing", i+1, j+1)
			}
		}
	}
	return nil
}

func toQuiz(q wireQuiz) model.Quiz {
	out := model.Quiz{
		ID:       *q.QuizID,
		Question: *q.Question,
		Type:     model.QuizPersonality,
		Options:  make([]model.QuizOption, 0, len(q.Options)),
	}
	for _, opt := range q.Options {
		o := model.QuizOption{Text: *opt.Text}
		if opt.Solution != nil {
			o.Solution = *opt.Solution
		}
		out.Options = append(out.Options, o)
	}
	if q.QuizType == wireMultipleChoice {
		out.Type = model.QuizStandard
		if idx := q.CorrectAnswerIndex; idx != nil && *idx >= 0 && *idx < len(out.Options) {
			v := *idx
			out.CorrectAnswerIndex = &v
		}
	}
	return out
}

func fallbackQuiz(reason string) QuizResult {
	zero := func() *int { v := 0; return &v }
	return QuizResult{
		Purpose: fmt.Sprintf("학습 점검 (오류: %s)", reason),
		Anomaly: reason,
		Quizzes: []model.Quiz{
			{
				ID:       "Q1",
				Question: "가장 중요한 손실 원인은 무엇이었나요?",
				Type:     model.QuizStandard,
				Options: []model.QuizOption{
					{Text: "정보 검증 부족"}, {Text: "과도한 자신감"}, {Text: "추세 오판"}, {Text: "손절 규칙 부재"},
				},
				CorrectAnswerIndex: zero(),
			},
			{
				ID:       "Q2",
				Question: "시장 상황에서 가장 영향이 컸던 요소는 무엇이었나요?",
				Type:     model.QuizStandard,
				Options: []model.QuizOption{
					{Text: "금리 변화"}, {Text: "뉴스 충격"}, {Text: "수급 변화"}, {Text: "변동성 급등"},
				},
				CorrectAnswerIndex: zero(),
			},
			{
				ID:       "Q3",
				Question: "다음 거래에서 우선 보완할 행동은 무엇인가요?",
				Type:     model.QuizPersonality,
				Options: []model.QuizOption{
					{Text: "진입/청산 기준 정리", Solution: "사전에 체크리스트를 만들고 진입·청산 기준을 문서화하세요."},
					{Text: "리스크 한도 설정", Solution: "포지션별 최대 손실 범위를 정하고 즉시 적용하세요."},
					{Text: "외부 신호 확인", Solution: "뉴스/거시 지표로 자신의 판단을 교차 검증하세요."},
					{Text: "기록과 복기 강화", Solution: "매매 후 기록을 남기고 반복 패턴을 찾아보세요."},
				},
			},
		},
	}
}

var fenceRe = regexp.MustCompile("```[a-zA-Z]*\n|```")

// stripFences removes markdown code fences such as ```json ... ``` so JSON can be parsed
func stripFences(text string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))
}
