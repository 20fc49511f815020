// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the deepresearch CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/deepresearch/internal/pipeline"
	"github.com/pdiddy/deepresearch/internal/providers/openai"
	"github.com/pdiddy/deepresearch/internal/providers/rss"
	"github.com/pdiddy/deepresearch/internal/providers/static"
	"github.com/pdiddy/deepresearch/internal/secrets"
	"github.com/pdiddy/deepresearch/pkg/capability"
	"github.com/pdiddy/deepresearch/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets secrets.Store

// rootCmd is the base command for the deepresearch CLI.
var rootCmd = &cobra.Command{
	Use:   "deepresearch",
	Short: "Autonomous multi-stage web research",
	Long: `deepresearch answers a research question end to end: it plans
sub-questions, searches configured providers, validates source credibility,
acquires page content, assembles a token-budgeted context, and synthesizes a
cited report.

The full pipeline runs under the run subcommand; search and validate expose
individual stages for inspection.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/", os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := s.Keys()
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./deepresearch.yaml or ~/.config/deepresearch/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("deepresearch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "deepresearch"))
		}
	}

	viper.SetEnvPrefix("DEEPRESEARCH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// httpConfig builds the shared HTTP settings from viper.
func httpConfig() types.HTTPConfig {
	timeout := viper.GetDuration("http.timeout")
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	userAgent := viper.GetString("http.user_agent")
	if userAgent == "" {
		userAgent = "deepresearch/0.1"
	}
	return types.HTTPConfig{Timeout: timeout, UserAgent: userAgent}
}

// pipelineConfig builds the immutable run configuration: defaults first,
// then config-file overrides.
func pipelineConfig() types.PipelineConfig {
	cfg := pipeline.DefaultConfig()

	cfg.Retrieval.HTTPConfig = httpConfig()
	cfg.Acquisition.HTTPConfig = httpConfig()

	if model := viper.GetString("model"); model != "" {
		cfg.Planner.Model = model
		cfg.Context.Model = model
		cfg.Synthesis.Model = model
	}
	if model := viper.GetString("planner.model"); model != "" {
		cfg.Planner.Model = model
	}
	if model := viper.GetString("synthesis.model"); model != "" {
		cfg.Synthesis.Model = model
	}
	if v := viper.GetInt("validation.min_credibility"); v > 0 {
		cfg.Validation.MinCredibility = v
	}
	if viper.IsSet("validation.require_https") {
		cfg.Validation.RequireHTTPS = viper.GetBool("validation.require_https")
	}
	if v := viper.GetInt("context.token_budget"); v > 0 {
		cfg.Context.TokenBudget = v
	}
	if viper.IsSet("context.compress") {
		cfg.Context.Compress = viper.GetBool("context.compress")
	}
	if v := viper.GetInt("max_sources"); v > 0 {
		cfg.MaxSources = v
	}
	return cfg
}

// buildLLM constructs the LLM capability from configuration and loaded
// secrets.
func buildLLM() (capability.LLM, error) {
	apiKey := viper.GetString("openai.api_key")
	if apiKey == "" {
		apiKey = loadedSecrets.Lookup("openai-api-key")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("no OpenAI API key: add .secrets/openai-api-key or set OPENAI_API_KEY")
	}

	var opts []openai.Option
	if base := viper.GetString("openai.base_url"); base != "" {
		opts = append(opts, openai.WithBaseURL(base))
	}
	return openai.New(apiKey, opts...), nil
}

// buildSearchProviders constructs the ordered provider fallback list.
func buildSearchProviders() ([]capability.SearchProvider, error) {
	feeds := viper.GetStringSlice("feeds")
	if len(feeds) == 0 {
		return nil, fmt.Errorf("no search providers configured: set feeds in the config file")
	}
	return []capability.SearchProvider{rss.New(feeds, httpConfig())}, nil
}

// buildDeps assembles the full dependency set for a pipeline run.
func buildDeps() (pipeline.Deps, error) {
	llm, err := buildLLM()
	if err != nil {
		return pipeline.Deps{}, err
	}
	providers, err := buildSearchProviders()
	if err != nil {
		return pipeline.Deps{}, err
	}
	return pipeline.Deps{
		LLM:             llm,
		SearchProviders: providers,
		Fetchers:        []capability.Fetcher{static.New(httpConfig())},
	}, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
