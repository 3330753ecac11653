package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) string { return "" }

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := load(filepath.Join(t.TempDir(), "absent.yaml"), noEnv)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.True(t, cfg.Session.ExpandNewest())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: https://review.example.com
  timeout: 15s
session:
  splash_delay: 0s
  expand_newest_turn: false
quiz:
  generator: LLM
llm:
  provider: openai
  model: gpt-4o-mini
log:
  level: debug
  file: /var/log/lossnote.log
`), 0o600))

	cfg, err := load(path, noEnv)
	require.NoError(t, err)
	assert.Equal(t, "https://review.example.com", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, time.Duration(0), cfg.Session.SplashDelay)
	assert.False(t, cfg.Session.ExpandNewest())
	assert.Equal(t, GeneratorLLM, cfg.Quiz.Generator)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/var/log/lossnote.log", cfg.Log.File)
}

func TestEnvOverrides(t *testing.T) {
	env := map[string]string{
		"LOSSNOTE_API_BASE_URL":   "http://10.0.0.2:8000",
		"LOSSNOTE_QUIZ_GENERATOR": "llm",
		"LLM_PROVIDER":            "claude",
	}
	cfg, err := load("", func(k string) string { return env[k] })
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.2:8000", cfg.API.BaseURL)
	assert.Equal(t, GeneratorLLM, cfg.Quiz.Generator)
	assert.Equal(t, "claude", cfg.LLM.Provider)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("api: [unclosed"), 0o600))
	_, err := load(bad, noEnv)
	assert.Error(t, err)

	_, err = load("", func(k string) string {
		if k == "LOSSNOTE_QUIZ_GENERATOR" {
			return "magic"
		}
		return ""
	})
	assert.ErrorContains(t, err, "quiz.generator")
}
