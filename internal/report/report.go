// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders research findings into a cited markdown report
// through the LLM capability, in batch and incremental-stream modes.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/pdiddy/deepresearch/pkg/capability"
	"github.com/pdiddy/deepresearch/pkg/types"
)

// Synthesizer generates reports for one run. Templates may be overridden
// per report type before generation.
type Synthesizer struct {
	llm       capability.LLM
	cfg       types.SynthesisConfig
	templates map[types.ReportType]Template
	now       func() time.Time
}

// New returns a Synthesizer with the built-in templates.
func New(llm capability.LLM, cfg types.SynthesisConfig) *Synthesizer {
	templates := make(map[types.ReportType]Template, len(defaultTemplates))
	for k, v := range defaultTemplates {
		templates[k] = v
	}
	return &Synthesizer{llm: llm, cfg: cfg, templates: templates, now: time.Now}
}

// Register replaces the template for a report type.
func (s *Synthesizer) Register(rt types.ReportType, tmpl Template) {
	s.templates[rt] = tmpl
}

// template resolves the report type, falling back to the research template
// for unknown or empty types.
func (s *Synthesizer) template(rt types.ReportType) Template {
	if tmpl, ok := s.templates[rt]; ok {
		return tmpl
	}
	return s.templates[types.ReportResearch]
}

func (s *Synthesizer) request(rctx types.ResearchContext) capability.CompletionRequest {
	system, user := render(s.template(rctx.ReportType), rctx, s.now())
	if fragment := toneFragment(s.cfg.Tone); fragment != "" {
		system += " " + fragment
	}
	return capability.CompletionRequest{
		Messages: []capability.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Model:       s.cfg.Model,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	}
}

// Generate produces the complete post-processed report in one call.
func (s *Synthesizer) Generate(ctx context.Context, rctx types.ResearchContext) (string, capability.Usage, error) {
	completion, err := s.llm.Complete(ctx, s.request(rctx))
	if err != nil {
		return "", capability.Usage{}, fmt.Errorf("generating report: %w", err)
	}
	return s.postProcess(completion.Text, rctx), completion.Usage, nil
}

// GenerateStream produces the report incrementally, calling yield for each
// raw fragment as it arrives. The full text accumulates internally so the
// returned report is the same post-processed artifact Generate would
// produce; callers that only observe the stream still leave a storable
// report behind.
func (s *Synthesizer) GenerateStream(ctx context.Context, rctx types.ResearchContext, yield func(fragment string)) (string, capability.Usage, error) {
	chunks, err := s.llm.Stream(ctx, s.request(rctx))
	if err != nil {
		return "", capability.Usage{}, fmt.Errorf("starting report stream: %w", err)
	}

	var full []byte
	var usage capability.Usage
	var streamErr error
	for chunk := range chunks {
		if chunk.Text != "" {
			full = append(full, chunk.Text...)
			if yield != nil {
				yield(chunk.Text)
			}
		}
		if chunk.Done {
			usage = chunk.Usage
			streamErr = chunk.Err
		}
	}
	if err := ctx.Err(); err != nil {
		return "", usage, err
	}
	// A truncated stream must not pass for a finished report.
	if streamErr != nil {
		return "", usage, fmt.Errorf("report stream interrupted: %w", streamErr)
	}
	return s.postProcess(string(full), rctx), usage, nil
}
