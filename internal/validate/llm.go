// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pdiddy/deepresearch/internal/llmutil"
	"github.com/pdiddy/deepresearch/pkg/capability"
	"github.com/pdiddy/deepresearch/pkg/types"
)

// LLMOpinion is the secondary credibility assessment returned by the LLM
// capability.
type LLMOpinion struct {
	Credible bool     `json:"credible"`
	Concerns []string `json:"concerns,omitempty"`
}

const verifyPrompt = `Assess the credibility of this web source. Respond with a JSON object
{"credible": true|false, "concerns": ["..."]} and nothing else.

URL: %s
Title: %s
Excerpt: %s`

// VerifyWithLLM asks the LLM capability for a second opinion on a source.
// It is best effort: any provider failure or unparseable response yields a
// credible-with-no-concerns opinion so the pipeline never stalls on the
// secondary check. The reported usage (if any) is returned for cost
// accounting even on the fallback path.
func VerifyWithLLM(ctx context.Context, llm capability.LLM, source types.SearchResult, cfg types.AIConfig) (LLMOpinion, capability.Usage) {
	fallback := LLMOpinion{Credible: true}

	excerpt := source.Content
	if len(excerpt) > 1000 {
		excerpt = excerpt[:1000]
	}
	req := capability.CompletionRequest{
		Messages: []capability.Message{
			{Role: "user", Content: fmt.Sprintf(verifyPrompt, source.URL, source.Title, excerpt)},
		},
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}

	completion, err := llm.Complete(ctx, req)
	if err != nil {
		return fallback, capability.Usage{}
	}

	var opinion LLMOpinion
	if err := json.Unmarshal([]byte(llmutil.ExtractJSON(completion.Text)), &opinion); err != nil {
		return fallback, completion.Usage
	}
	return opinion, completion.Usage
}
