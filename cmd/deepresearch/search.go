// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deepresearch/internal/retrieval"
	"github.com/pdiddy/deepresearch/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the configured providers without running the pipeline",
	Long: `Search queries the configured providers for a single question and
prints the deduplicated, ranked results. Useful for inspecting what the
retrieval stage would feed the rest of the pipeline.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("max-results", 20, "maximum number of results to return")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("recent", false, "restrict to recently published content")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	providers, err := buildSearchProviders()
	if err != nil {
		return err
	}

	maxResults, _ := cmd.Flags().GetInt("max-results")
	recent, _ := cmd.Flags().GetBool("recent")

	cfg := types.RetrievalConfig{
		HTTPConfig:         httpConfig(),
		MaxResultsPerQuery: maxResults,
		Recent:             recent,
	}
	coordinator := retrieval.New(providers, cfg)
	out, err := coordinator.Search(cmd.Context(), []string{query}, os.Stderr)
	if err != nil {
		return err
	}
	out.Results = retrieval.Rank(out.Results, query)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return retrieval.FormatJSON(out, os.Stdout)
	}
	retrieval.FormatTable(out, os.Stdout)
	if len(out.Errors) > 0 {
		fmt.Fprintf(os.Stderr, "%d provider error(s) during search\n", len(out.Errors))
	}
	return nil
}
