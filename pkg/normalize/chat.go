package normalize

import "github.com/helmcode/lossnote/pkg/model"

type chatReply struct {
	Message string `json:"message"`
	Raw     *struct {
		LearningPatternAnalysis *patternAnalysis `json:"learning_pattern_analysis"`
	} `json:"raw"`
}

// ChatReply extracts the prose answer and, when the reply carries one, a
// fresh pattern analysis. Older replies have only a message.
func ChatReply(data []byte) (string, *model.PatternAnalysis, error) {
	var r chatReply
	if err := lenientUnmarshal(data, &r); err != nil {
		return "", nil, err
	}
	if r.Raw == nil || r.Raw.LearningPatternAnalysis == nil {
		return r.Message, nil, nil
	}
	pa := patternOf(r.Raw.LearningPatternAnalysis, "", "")
	return r.Message, &pa, nil
}
