package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/helmcode/lossnote/pkg/formatter"
	"github.com/helmcode/lossnote/pkg/model"
	"github.com/helmcode/lossnote/pkg/normalize"
	"github.com/helmcode/lossnote/pkg/session"
	"github.com/spf13/cobra"
)

var (
	renderQuiz bool
	renderHide []string
)

func NewRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render a saved analysis response",
		Long: `Normalize a raw analysis response saved from the backend and print it as a report.
Both the current and the legacy response layouts are accepted. Use "-" to read stdin.

Examples:
  # Render a saved response
  lossnote render response.json

  # Pipe from the backend, hide the technical section and add a quiz
  curl -s localhost:8000/v1/analyze -d @req.json | lossnote render - --hide technical --quiz`,
		Args: cobra.ExactArgs(1),
		RunE: runRender,
	}

	cmd.Flags().BoolVar(&renderQuiz, "quiz", false, "Generate a review quiz for the report")
	cmd.Flags().StringSliceVar(&renderHide, "hide", nil, "Report sections to hide (loss_cause, market_context, technical, pattern, learning_path)")

	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	data, err := readInput(args[0])
	if err != nil {
		return err
	}
	payload, err := normalize.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to decode analysis: %w", err)
	}
	report := normalize.Analysis(payload)
	report.ID = uuid.NewString()

	view := session.View{
		State:      session.Analysis,
		Screen:     session.Analysis.Screen.String(),
		Report:     &report,
		Sections:   session.DefaultSections(),
		Transcript: []model.ChatTurn{},
	}
	for _, name := range renderHide {
		s, err := session.ParseSection(name)
		if err != nil {
			return err
		}
		view.Sections[s] = session.SectionState{Expanded: true, Shown: false}
	}

	if renderQuiz {
		gen, err := newQuizGenerator(newBackend())
		if err != nil {
			return err
		}
		s := newSpinner("Generating quiz...")
		s.Start()
		set, err := gen.Generate(cmd.Context(), report)
		s.Stop()
		if err != nil {
			return fmt.Errorf("quiz generation failed: %w", err)
		}
		view.Quiz = &set
	}

	return formatter.DisplayResults(os.Stdout, view, outputFormat)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
