// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/deepresearch/internal/llmutil"
	"github.com/pdiddy/deepresearch/pkg/capability"
	"github.com/pdiddy/deepresearch/pkg/types"
)

const (
	minSubQuestions = 3
	maxSubQuestions = 5
)

const planPrompt = `Decompose the following research query into %d to %d focused sub-questions
that together cover it. Respond with a JSON array of strings and nothing else.

Query: %s`

// plan asks the LLM to decompose the query into sub-questions. Planning is
// best effort: any provider failure or unparseable response degrades to
// the root query as the sole sub-question, never aborting the run.
func plan(ctx context.Context, llm capability.LLM, query string, cfg types.AIConfig) ([]string, capability.Usage) {
	fallback := []string{query}

	completion, err := llm.Complete(ctx, capability.CompletionRequest{
		Messages: []capability.Message{
			{Role: "user", Content: fmt.Sprintf(planPrompt, minSubQuestions, maxSubQuestions, query)},
		},
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	if err != nil {
		return fallback, capability.Usage{}
	}

	var questions []string
	if err := json.Unmarshal([]byte(llmutil.ExtractJSON(completion.Text)), &questions); err != nil {
		return fallback, completion.Usage
	}

	cleaned := make([]string, 0, len(questions))
	for _, q := range questions {
		if q = strings.TrimSpace(q); q != "" {
			cleaned = append(cleaned, q)
		}
	}
	if len(cleaned) == 0 {
		return fallback, completion.Usage
	}
	if len(cleaned) > maxSubQuestions {
		cleaned = cleaned[:maxSubQuestions]
	}
	return cleaned, completion.Usage
}
