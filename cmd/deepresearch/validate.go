// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deepresearch/internal/validate"
	"github.com/pdiddy/deepresearch/pkg/types"
)

var validateCmd = &cobra.Command{
	Use:   "validate [urls...]",
	Short: "Score source credibility for a list of URLs",
	Long: `Validate runs the credibility scorer over the given URLs and prints
each score with the reasons behind it. Only the URL is available here, so
content-quality heuristics that need page text contribute nothing.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().Int("min-credibility", 0, "minimum score for a source to pass (default from config)")
	validateCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig().Validation
	if min, _ := cmd.Flags().GetInt("min-credibility"); min > 0 {
		cfg.MinCredibility = min
	}

	sources := make([]types.SearchResult, len(args))
	for i, u := range args {
		sources[i] = types.SearchResult{URL: u}
	}

	validator := validate.New()
	validations := validator.ValidateAll(sources, cfg)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(validations)
	}

	passed := 0
	for _, v := range validations {
		status := "FAIL"
		if v.IsValid {
			status = "ok"
			passed++
		}
		fmt.Fprintf(os.Stdout, "%-4s  %3d  %s\n", status, v.CredibilityScore, v.URL)
		for _, reason := range v.Reasons {
			fmt.Fprintf(os.Stdout, "          - %s\n", reason)
		}
		for _, warning := range v.Warnings {
			fmt.Fprintf(os.Stdout, "          ! %s\n", warning)
		}
	}
	fmt.Fprintf(os.Stdout, "\n%d/%d sources passed (min credibility %d)\n",
		passed, len(validations), cfg.MinCredibility)

	if passed == 0 && len(validations) > 0 {
		return fmt.Errorf("no sources passed validation")
	}
	return nil
}
