// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"sync"

	"github.com/pdiddy/deepresearch/pkg/capability"
	"github.com/pdiddy/deepresearch/pkg/types"
)

// modelRate is the USD cost per million tokens.
type modelRate struct {
	input  float64
	output float64
}

// modelRates is the static per-model rate table used for cost accounting.
// Unknown models fall back to defaultRate.
var modelRates = map[string]modelRate{
	"gpt-4o":                    {input: 2.50, output: 10.00},
	"gpt-4o-mini":               {input: 0.15, output: 0.60},
	"gpt-4.1":                   {input: 2.00, output: 8.00},
	"o3-mini":                   {input: 1.10, output: 4.40},
	"claude-sonnet-4-20250514":  {input: 3.00, output: 15.00},
	"claude-haiku-3-5-20241022": {input: 0.80, output: 4.00},
	"gemini-2.0-flash":          {input: 0.10, output: 0.40},
}

var defaultRate = modelRate{input: 1.00, output: 3.00}

// costOf prices one call's token usage.
func costOf(u capability.Usage) float64 {
	rate, ok := modelRates[u.Model]
	if !ok {
		rate = defaultRate
	}
	const million = 1_000_000
	return float64(u.InputTokens)*rate.input/million + float64(u.OutputTokens)*rate.output/million
}

// ledger accumulates LLM spend across a run. It is safe for concurrent
// use; compression calls may record from batch goroutines.
type ledger struct {
	mu        sync.Mutex
	total     float64
	tokens    int
	breakdown map[string]float64
}

func newLedger() *ledger {
	return &ledger{breakdown: make(map[string]float64)}
}

// record adds one call's usage to the running totals.
func (l *ledger) record(u capability.Usage) {
	if u.Total() == 0 {
		return
	}
	cost := costOf(u)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.total += cost
	l.tokens += u.Total()
	model := u.Model
	if model == "" {
		model = "unknown"
	}
	l.breakdown[model] += cost
}

// recordAll adds several calls' usage.
func (l *ledger) recordAll(usages []capability.Usage) {
	for _, u := range usages {
		l.record(u)
	}
}

// tokensUsed returns the total token count so far.
func (l *ledger) tokensUsed() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tokens
}

// summary snapshots the ledger as the public cost structure.
func (l *ledger) summary() types.CostSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	breakdown := make(map[string]float64, len(l.breakdown))
	for k, v := range l.breakdown {
		breakdown[k] = v
	}
	return types.CostSummary{Total: l.total, Breakdown: breakdown}
}
