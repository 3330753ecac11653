package quiz

import (
	"context"
	"errors"
	"testing"

	"github.com/helmcode/lossnote/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quizJSON = `{"quiz_set":{"quiz_purpose":"p","quizzes":[
 {"quiz_id":"Q1","quiz_type":"multiple_choice","question":"q1","options":[{"text":"a"},{"text":"b"},{"text":"c"},{"text":"d"}],"has_fixed_answer":true,"correct_answer_index":1},
 {"quiz_id":"Q2","quiz_type":"multiple_choice","question":"q2","options":[{"text":"a"},{"text":"b"},{"text":"c"},{"text":"d"}],"has_fixed_answer":true,"correct_answer_index":0},
 {"quiz_id":"Q3","quiz_type":"reflection","question":"q3","options":[{"text":"a","solution":"x"},{"text":"b","solution":"x"},{"text":"c","solution":"x"},{"text":"d","solution":"x"}],"has_fixed_answer":false}]}}`

type fakeBackend struct {
	body []byte
	err  error
	got  model.PatternAnalysis
}

func (f *fakeBackend) Quiz(_ context.Context, pa model.PatternAnalysis) ([]byte, error) {
	f.got = pa
	return f.body, f.err
}

type fakeLLM struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeLLM) Chat(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func (f *fakeLLM) GetModel() string { return "fake" }

func report() model.Report {
	return model.Report{ID: "r1", Title: "손실 복기 리포트", PatternAnalysis: model.PatternAnalysis{Summary: "잦은 물타기"}}
}

func TestRemote(t *testing.T) {
	b := &fakeBackend{body: []byte(quizJSON)}
	set, err := NewRemote(b, nil).Generate(context.Background(), report())
	require.NoError(t, err)
	assert.Equal(t, "잦은 물타기", b.got.Summary)
	assert.False(t, set.Fallback)
	assert.Equal(t, "p", set.Purpose)
	assert.Len(t, set.Quizzes, 3)
}

func TestRemoteMalformedUsesFallback(t *testing.T) {
	set, err := NewRemote(&fakeBackend{body: []byte(`{"oops":true}`)}, nil).Generate(context.Background(), report())
	require.NoError(t, err)
	assert.True(t, set.Fallback)
	assert.Len(t, set.Quizzes, 3)
}

func TestRemoteTransportError(t *testing.T) {
	boom := errors.New("connection refused")
	_, err := NewRemote(&fakeBackend{err: boom}, nil).Generate(context.Background(), report())
	assert.ErrorIs(t, err, boom)
}

func TestLLM(t *testing.T) {
	l := &fakeLLM{reply: "```json\n" + quizJSON + "\n```"}
	set, err := NewLLM(l, nil).Generate(context.Background(), report())
	require.NoError(t, err)
	assert.Contains(t, l.prompt, "손실 복기 리포트")
	assert.False(t, set.Fallback)
	assert.Equal(t, model.QuizPersonality, set.Quizzes[2].Type)
}

func TestLLMError(t *testing.T) {
	_, err := NewLLM(&fakeLLM{err: errors.New("rate limited")}, nil).Generate(context.Background(), report())
	assert.ErrorContains(t, err, "fake")
}
