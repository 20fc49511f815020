// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates the research run: plan sub-questions,
// retrieve and validate sources, acquire content, build a token-budgeted
// context, and synthesize a cited report. Stages execute strictly in
// order; each transition emits a lifecycle event, and fetcher resources
// are released on every exit path.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/deepresearch/internal/acquire"
	"github.com/pdiddy/deepresearch/internal/contextbuild"
	"github.com/pdiddy/deepresearch/internal/memory"
	"github.com/pdiddy/deepresearch/internal/report"
	"github.com/pdiddy/deepresearch/internal/retrieval"
	"github.com/pdiddy/deepresearch/internal/validate"
	"github.com/pdiddy/deepresearch/pkg/capability"
	"github.com/pdiddy/deepresearch/pkg/types"
)

// Stage names one step of the run state machine. A run advances
// Idle → Planning → Retrieving → Validating → Acquiring →
// ContextBuilding → Synthesizing → Complete, or ends in Error from any
// stage. No stage re-enters within one run.
type Stage string

const (
	StageIdle            Stage = "idle"
	StagePlanning        Stage = "planning"
	StageRetrieving      Stage = "retrieving"
	StageValidating      Stage = "validating"
	StageAcquiring       Stage = "acquiring"
	StageContextBuilding Stage = "context_building"
	StageSynthesizing    Stage = "synthesizing"
	StageComplete        Stage = "complete"
	StageError           Stage = "error"
)

// defaultMaxSources caps how many validated sources reach acquisition.
const defaultMaxSources = 10

// Deps are the injected capabilities an orchestrator runs against.
// Registration is explicit composition at construction time; there is no
// global provider registry.
type Deps struct {
	// LLM handles planning, compression, and synthesis. Required.
	LLM capability.LLM

	// SearchProviders is the ordered fallback list. At least one required.
	SearchProviders []capability.SearchProvider

	// Fetchers acquire page content. At least one required.
	Fetchers []capability.Fetcher

	// Selector routes URLs to fetchers. Nil routes everything to the
	// first fetcher.
	Selector acquire.Selector
}

// Orchestrator drives research runs. Each Run call owns a private working
// memory; an Orchestrator may be reused for sequential runs but working
// memory is never shared between them.
type Orchestrator struct {
	deps     Deps
	cfg      types.PipelineConfig
	bus      *Bus
	progress io.Writer
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithProgressWriter directs human-readable progress lines to w. The
// default discards them.
func WithProgressWriter(w io.Writer) Option {
	return func(o *Orchestrator) { o.progress = w }
}

// New validates the dependencies and returns an Orchestrator.
func New(deps Deps, cfg types.PipelineConfig, opts ...Option) (*Orchestrator, error) {
	if deps.LLM == nil {
		return nil, fmt.Errorf("an LLM capability is required")
	}
	if len(deps.SearchProviders) == 0 {
		return nil, fmt.Errorf("at least one search provider is required")
	}
	if len(deps.Fetchers) == 0 {
		return nil, fmt.Errorf("at least one content fetcher is required")
	}

	o := &Orchestrator{
		deps:     deps,
		cfg:      cfg,
		bus:      NewBus(),
		progress: io.Discard,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// DefaultConfig returns the default pipeline policy: credibility floor 30,
// HTTPS optional, content no older than a year, ten sources acquired, an
// 8000-token context budget with compression enabled.
func DefaultConfig() types.PipelineConfig {
	return types.PipelineConfig{
		Retrieval: types.RetrievalConfig{MaxResultsPerQuery: 10, MaxRetries: 3},
		Validation: types.ValidationConfig{
			MinCredibility: 30,
			RequireHTTPS:   false,
			MaxAgeDays:     365,
		},
		Acquisition: types.AcquisitionConfig{Concurrency: 3, MaxRetries: 3},
		Context: types.ContextConfig{
			TokenBudget:      8000,
			Compress:         true,
			CompressionRatio: 0.3,
		},
		Synthesis:  types.SynthesisConfig{ReportType: types.ReportResearch},
		MaxSources: defaultMaxSources,
	}
}

// Subscribe registers a lifecycle event listener. The cancel function
// removes it.
func (o *Orchestrator) Subscribe() (<-chan types.Event, func()) {
	return o.bus.Subscribe()
}

// Run executes the full pipeline and returns the final result. Fatal
// failures reject with a single descriptive error; partial provider
// failures degrade and are visible only through events.
func (o *Orchestrator) Run(ctx context.Context, query string) (types.RunResult, error) {
	return o.execute(ctx, query, nil, nil)
}

// RunStream executes the pipeline and returns an update stream carrying
// progress notes, incremental report fragments, and exactly one terminal
// complete or error update. The consumer controls pacing; the pipeline
// blocks on an undrained stream rather than buffering unboundedly. After
// cancellation, progress and data updates may be dropped but the terminal
// update is still delivered to a consumer that keeps draining.
func (o *Orchestrator) RunStream(ctx context.Context, query string) <-chan types.StreamUpdate {
	updates := make(chan types.StreamUpdate)
	go func() {
		defer close(updates)
		send := func(u types.StreamUpdate) {
			select {
			case updates <- u:
			case <-ctx.Done():
			}
		}
		// Terminal updates get a grace window past cancellation so a
		// consumer still draining the channel observes how the run ended.
		sendTerminal := func(u types.StreamUpdate) {
			select {
			case updates <- u:
			case <-ctx.Done():
				select {
				case updates <- u:
				case <-time.After(100 * time.Millisecond):
				}
			}
		}

		result, err := o.execute(ctx, query,
			func(fragment string) {
				send(types.StreamUpdate{Type: types.StreamData, Data: fragment})
			},
			func(message string, fraction float64) {
				send(types.StreamUpdate{Type: types.StreamProgress, Message: message, Progress: fraction})
			})
		if err != nil {
			sendTerminal(types.StreamUpdate{Type: types.StreamError, Message: err.Error()})
			return
		}
		sendTerminal(types.StreamUpdate{Type: types.StreamComplete, Result: &result})
	}()
	return updates
}

// execute is the shared stage sequence behind Run and RunStream.
// onFragment (when set) receives raw report fragments; onProgress (when
// set) receives coarse stage progress.
func (o *Orchestrator) execute(ctx context.Context, query string, onFragment func(string), onProgress func(string, float64)) (types.RunResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return types.RunResult{}, fmt.Errorf("query must not be empty")
	}

	r := &run{
		o:       o,
		id:      uuid.NewString(),
		query:   query,
		mem:     memory.NewStore(),
		ledger:  newLedger(),
		stage:   StageIdle,
		started: time.Now(),
	}
	progress := func(message string, fraction float64) {
		if onProgress != nil {
			onProgress(message, fraction)
		}
	}

	acq, err := acquire.New(o.deps.Fetchers, o.deps.Selector, r.mem, o.cfg.Acquisition)
	if err != nil {
		return types.RunResult{}, err
	}
	// Fetcher resources are released on every path out of the run.
	defer acq.Release(context.WithoutCancel(ctx), o.progress)

	// Planning.
	r.advance(StagePlanning, types.EventPlanningStart, 0)
	progress("planning sub-questions", 0.05)
	subQuestions, usage := plan(ctx, o.deps.LLM, query, o.cfg.Planner)
	r.ledger.record(usage)
	r.mem.SetSubQuestions(subQuestions)
	r.emit(types.EventPlanningComplete, len(subQuestions))

	// Retrieving.
	r.advance(StageRetrieving, types.EventRetrievalStart, 0)
	progress("searching", 0.2)
	coordinator := retrieval.New(o.deps.SearchProviders, o.cfg.Retrieval)
	searched, err := coordinator.Search(ctx, subQuestions, o.progress)
	if err != nil {
		return types.RunResult{}, r.fail(err)
	}
	r.mem.AddResults(searched.Results)
	r.mem.AddCounter("queries_run", len(subQuestions))
	r.emit(types.EventRetrievalComplete, len(searched.Results))

	// Validating. Sources failing the credibility policy never reach
	// acquisition.
	r.advance(StageValidating, types.EventValidationStart, 0)
	progress("validating sources", 0.4)
	validator := validate.New()
	validations := validator.ValidateAll(searched.Results, o.cfg.Validation)
	var validated []types.SearchResult
	for i, v := range validations {
		if v.IsValid {
			validated = append(validated, searched.Results[i])
		}
	}
	r.emit(types.EventValidationComplete, len(validated))

	// Acquiring, capped to the top-N validated sources.
	r.advance(StageAcquiring, types.EventAcquisitionStart, 0)
	progress("fetching content", 0.55)
	maxSources := o.cfg.MaxSources
	if maxSources <= 0 {
		maxSources = defaultMaxSources
	}
	top := validated
	if len(top) > maxSources {
		top = top[:maxSources]
	}
	urls := make([]string, len(top))
	for i, s := range top {
		urls[i] = s.URL
	}
	var acquired []types.AcquiredContent
	for _, c := range acq.Acquire(ctx, urls, acquire.Options{}, o.progress) {
		if c.OK() {
			acquired = append(acquired, c)
		}
	}
	r.emit(types.EventAcquisitionComplete, len(acquired))

	// Context building.
	r.advance(StageContextBuilding, types.EventContextStart, 0)
	progress("building context", 0.7)
	builder := contextbuild.New(o.deps.LLM, o.cfg.Context)
	sources := make([]contextbuild.Source, len(acquired))
	for i, c := range acquired {
		sources[i] = contextbuild.Source{URL: c.URL, Content: c.Text}
	}
	chunks, usages := builder.Build(ctx, sources, query, o.progress)
	r.ledger.recordAll(usages)
	r.mem.AddChunks(chunks)
	findings := contextbuild.Strings(chunks)
	r.emit(types.EventContextComplete, len(chunks))

	// Synthesizing. With zero sources the report is generated from model
	// knowledge alone; an LLM failure here is fatal.
	r.advance(StageSynthesizing, types.EventSynthesisStart, 0)
	progress("writing report", 0.85)
	rctx := types.ResearchContext{
		Query:      query,
		ReportType: o.cfg.Synthesis.ReportType,
		Findings:   findings,
		Sources:    validated,
		Subtopics:  subQuestions,
	}
	synthesizer := report.New(o.deps.LLM, o.cfg.Synthesis)
	var rendered string
	if onFragment != nil {
		rendered, usage, err = synthesizer.GenerateStream(ctx, rctx, onFragment)
	} else {
		rendered, usage, err = synthesizer.Generate(ctx, rctx)
	}
	if err != nil {
		return types.RunResult{}, r.fail(err)
	}
	r.ledger.record(usage)
	r.mem.PutReport("final", rendered)
	r.emit(types.EventSynthesisComplete, len(rendered))

	// Complete.
	r.stage = StageComplete
	ended := time.Now()
	result := types.RunResult{
		Report:    rendered,
		Sources:   validated,
		Subtopics: subQuestions,
		Context:   findings,
		Costs:     r.ledger.summary(),
		Metadata: types.RunMetadata{
			RunID:      r.id,
			StartTime:  r.started,
			EndTime:    ended,
			TokensUsed: r.ledger.tokensUsed(),
			QueriesRun: r.mem.Counter("queries_run"),
		},
	}
	if validated == nil {
		result.Sources = []types.SearchResult{}
	}
	r.emit(types.EventRunComplete, 0)
	return result, nil
}

// run carries per-run state: a private working memory, the cost ledger,
// and the current stage.
type run struct {
	o       *Orchestrator
	id      string
	query   string
	mem     *memory.Store
	ledger  *ledger
	stage   Stage
	started time.Time
}

// advance moves the run to the next stage and emits its start event.
func (r *run) advance(to Stage, kind types.EventKind, count int) {
	r.stage = to
	r.emit(kind, count)
}

func (r *run) emit(kind types.EventKind, count int) {
	r.o.bus.Emit(types.Event{Kind: kind, RunID: r.id, Count: count, Cost: r.ledger.summary().Total})
}

func (r *run) emitMessage(kind types.EventKind, count int, message string) {
	r.o.bus.Emit(types.Event{Kind: kind, RunID: r.id, Count: count, Message: message, Cost: r.ledger.summary().Total})
}

// fail transitions the run to the Error terminal state and emits the
// terminal error event.
func (r *run) fail(err error) error {
	at := r.stage
	r.stage = StageError
	r.emitMessage(types.EventError, 0, err.Error())
	return fmt.Errorf("research run failed during %s: %w", at, err)
}
