package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/helmcode/lossnote/pkg/api"
	"github.com/helmcode/lossnote/pkg/config"
	"github.com/helmcode/lossnote/pkg/llm"
	"github.com/helmcode/lossnote/pkg/logger"
	"github.com/helmcode/lossnote/pkg/orchestrator"
	"github.com/helmcode/lossnote/pkg/quiz"
	"github.com/helmcode/lossnote/pkg/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath    string
	apiBaseURL    string
	outputFormat  string
	verbose       bool
	quizGenerator string
	llmProvider   string
	llmModel      string

	cfg *config.Config
	log = zap.NewNop()
)

// AddGlobalFlags registers the flags every subcommand shares.
func AddGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Path to config file")
	root.PersistentFlags().StringVar(&apiBaseURL, "api", "", "Analysis backend URL (overrides config)")
	root.PersistentFlags().StringVarP(&outputFormat, "output", "o", "human", "Output format (human, json, yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	root.PersistentFlags().StringVar(&quizGenerator, "quiz-generator", "", "Quiz generator (remote, llm)")
	root.PersistentFlags().StringVar(&llmProvider, "provider", "", "LLM provider for --quiz-generator llm (claude, openai)")
	root.PersistentFlags().StringVar(&llmModel, "model", "", "LLM model to use (overrides default)")
}

// Setup loads the config and builds the logger. Flags win over the file.
func Setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if apiBaseURL != "" {
		loaded.API.BaseURL = apiBaseURL
	}
	if quizGenerator != "" {
		loaded.Quiz.Generator = quizGenerator
	}
	if llmProvider != "" {
		loaded.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		loaded.LLM.Model = llmModel
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	switch outputFormat {
	case "human", "json", "yaml":
	default:
		return fmt.Errorf("unsupported output format %q (supported: human, json, yaml)", outputFormat)
	}

	l, err := logger.New(loaded.Log.Level, verbose)
	if err != nil {
		return err
	}
	cfg, log = loaded, l
	return nil
}

// Teardown flushes the logger.
func Teardown(cmd *cobra.Command, args []string) {
	_ = log.Sync()
}

func newBackend() *api.Client {
	return api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(log),
	)
}

func newQuizGenerator(backend *api.Client) (quiz.Generator, error) {
	if cfg.Quiz.Generator != config.GeneratorLLM {
		return quiz.NewRemote(backend, log), nil
	}
	client, err := llm.NewFactory(llm.WithLogger(log)).CreateFromEnv(cfg.LLM.Provider, cfg.LLM.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	log.Debug("quiz generator", zap.String("model", client.GetModel()))
	return quiz.NewLLM(client, log), nil
}

// newController wires a session to the configured backend.
func newController() (*session.Controller, error) {
	backend := newBackend()
	gen, err := newQuizGenerator(backend)
	if err != nil {
		return nil, err
	}
	orch := orchestrator.New(backend, gen, log)
	return session.New(orch, session.Options{
		SplashDelay:      cfg.Session.SplashDelay,
		ExpandNewestTurn: cfg.Session.ExpandNewest(),
		Logger:           log,
	}), nil
}

func newSpinner(suffix string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + suffix
	return s
}

// splitAssignment parses NAME=VALUE flag values.
func splitAssignment(flag, v string) (string, string, error) {
	name, value, ok := strings.Cut(v, "=")
	name, value = strings.TrimSpace(name), strings.TrimSpace(value)
	if !ok || name == "" || value == "" {
		return "", "", fmt.Errorf("--%s %q: want NAME=VALUE", flag, v)
	}
	return name, value, nil
}

func printHeader(title string, lines ...string) {
	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Fprintln(os.Stderr)
	cyan.Fprintln(os.Stderr, title)
	for _, l := range lines {
		fmt.Fprintln(os.Stderr, l)
	}
	fmt.Fprintln(os.Stderr)
}

func printSuccess(msg string) {
	green := color.New(color.FgGreen)
	green.Fprintf(os.Stderr, "✓ %s\n", msg)
}

func printError(msg string) {
	red := color.New(color.FgRed)
	red.Fprintf(os.Stderr, "✗ %s\n", msg)
}
