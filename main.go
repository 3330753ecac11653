package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/helmcode/lossnote/cmd"
	"github.com/spf13/cobra"
)

var (
	version = "v0.1.0" // Overwritten at build time
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lossnote",
		Short: "Review losing trades with an AI advisor",
		Long: `lossnote collects what you traded, how and why, sends it to the loss analysis
backend and presents the report: root causes, market context, trading pattern
and a learning path. Follow-up questions and a review quiz build on the report.`,
		SilenceUsage:      true,
		PersistentPreRunE: cmd.Setup,
		PersistentPostRun: cmd.Teardown,
	}

	// Disable automatic 'completion' command added by cobra
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	cmd.AddGlobalFlags(rootCmd)

	// Add subcommands
	rootCmd.AddCommand(
		cmd.NewReviewCmd(),
		cmd.NewAnalyzeCmd(),
		cmd.NewRenderCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		// Runs without a config file.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("lossnote version %s\n", version)
		},
	}
}
