// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deepresearch/internal/pipeline"
	"github.com/pdiddy/deepresearch/internal/report"
	"github.com/pdiddy/deepresearch/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run [query]",
	Short: "Run the full research pipeline for a query",
	Long: `Run executes every stage for the given query and writes the final
report to stdout (or --output). Progress goes to stderr. With --stream the
report body is printed incrementally as the model produces it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

func init() {
	runCmd.Flags().String("type", "", "report type: research, detailed, quick-summary, resource, outline")
	runCmd.Flags().String("tone", "", "report tone (e.g. objective, academic, casual)")
	runCmd.Flags().String("output", "", "write the report to a file instead of stdout")
	runCmd.Flags().Bool("stream", false, "print report fragments as they are generated")
	runCmd.Flags().Int("max-sources", 0, "cap on sources acquired (default 10)")
	runCmd.Flags().Int("budget", 0, "context token budget (default 8000)")

	rootCmd.AddCommand(runCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	cfg := pipelineConfig()
	if rt, _ := cmd.Flags().GetString("type"); rt != "" {
		cfg.Synthesis.ReportType = types.ReportType(rt)
	}
	if tone, _ := cmd.Flags().GetString("tone"); tone != "" {
		if !report.ValidTone(tone) {
			return fmt.Errorf("unknown tone %q (supported: %s)", tone, strings.Join(report.Tones(), ", "))
		}
		cfg.Synthesis.Tone = tone
	}
	if n, _ := cmd.Flags().GetInt("max-sources"); n > 0 {
		cfg.MaxSources = n
	}
	if n, _ := cmd.Flags().GetInt("budget"); n > 0 {
		cfg.Context.TokenBudget = n
	}

	deps, err := buildDeps()
	if err != nil {
		return err
	}
	orchestrator, err := pipeline.New(deps, cfg, pipeline.WithProgressWriter(os.Stderr))
	if err != nil {
		return err
	}

	stream, _ := cmd.Flags().GetBool("stream")
	outputPath, _ := cmd.Flags().GetString("output")

	var result types.RunResult
	if stream {
		result, err = runStreaming(cmd, orchestrator, query)
	} else {
		result, err = orchestrator.Run(cmd.Context(), query)
	}
	if err != nil {
		return err
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(result.Report), 0o644); err != nil {
			return fmt.Errorf("writing report to %s: %w", outputPath, err)
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", outputPath)
	} else if !stream {
		fmt.Fprintln(os.Stdout, result.Report)
	}

	printRunSummary(result)
	return nil
}

// runStreaming consumes the update stream, printing progress to stderr and
// report fragments to stdout as they arrive.
func runStreaming(cmd *cobra.Command, orchestrator *pipeline.Orchestrator, query string) (types.RunResult, error) {
	for update := range orchestrator.RunStream(cmd.Context(), query) {
		switch update.Type {
		case types.StreamProgress:
			fmt.Fprintf(os.Stderr, "[%3.0f%%] %s\n", update.Progress*100, update.Message)
		case types.StreamData:
			fmt.Fprint(os.Stdout, update.Data)
		case types.StreamError:
			return types.RunResult{}, fmt.Errorf("%s", update.Message)
		case types.StreamComplete:
			fmt.Fprintln(os.Stdout)
			return *update.Result, nil
		}
	}
	return types.RunResult{}, fmt.Errorf("stream ended without a result")
}

func printRunSummary(result types.RunResult) {
	fmt.Fprintf(os.Stderr, "\n%d sources · %d tokens · $%.4f · %s\n",
		len(result.Sources),
		result.Metadata.TokensUsed,
		result.Costs.Total,
		result.Metadata.Duration().Round(100*time.Millisecond))
}
