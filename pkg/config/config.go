// Package config loads lossnote settings from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	GeneratorRemote = "remote"
	GeneratorLLM    = "llm"
)

// Config is the full settings file.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Quiz    QuizConfig    `yaml:"quiz"`
	LLM     LLMConfig     `yaml:"llm"`
	Log     LogConfig     `yaml:"log"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type SessionConfig struct {
	SplashDelay      time.Duration `yaml:"splash_delay"`
	ExpandNewestTurn *bool         `yaml:"expand_newest_turn"`
}

// ExpandNewest reports the expand_newest_turn setting, true when unset.
func (s SessionConfig) ExpandNewest() bool {
	return s.ExpandNewestTurn == nil || *s.ExpandNewestTurn
}

type QuizConfig struct {
	// Generator is "remote" (backend /v1/quiz) or "llm".
	Generator string `yaml:"generator"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// File receives the log of the interactive review, which owns the
	// terminal. Empty discards it.
	File string `yaml:"file"`
}

// Default returns the built-in settings.
func Default() *Config {
	expand := true
	return &Config{
		API:     APIConfig{BaseURL: "http://localhost:8000", Timeout: 60 * time.Second},
		Session: SessionConfig{SplashDelay: 2500 * time.Millisecond, ExpandNewestTurn: &expand},
		Quiz:    QuizConfig{Generator: GeneratorRemote},
		Log:     LogConfig{Level: "info"},
	}
}

// DefaultPath is $HOME/.config/lossnote/config.yaml, or "" without a home.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "lossnote", "config.yaml")
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if v := getenv("LOSSNOTE_API_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := getenv("LOSSNOTE_QUIZ_GENERATOR"); v != "" {
		cfg.Quiz.Generator = v
	}
	if v := getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values a user can get wrong.
func (c *Config) Validate() error {
	c.Quiz.Generator = strings.ToLower(strings.TrimSpace(c.Quiz.Generator))
	switch c.Quiz.Generator {
	case "":
		c.Quiz.Generator = GeneratorRemote
	case GeneratorRemote, GeneratorLLM:
	default:
		return fmt.Errorf("quiz.generator %q: want %s or %s", c.Quiz.Generator, GeneratorRemote, GeneratorLLM)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	if c.Session.SplashDelay < 0 {
		return fmt.Errorf("session.splash_delay must not be negative")
	}
	return nil
}
