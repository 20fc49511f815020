// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/deepresearch/pkg/capability"
)

func TestCostOf(t *testing.T) {
	tests := []struct {
		name  string
		usage capability.Usage
		want  float64
	}{
		{
			"known model",
			capability.Usage{Model: "gpt-4o", InputTokens: 1_000_000, OutputTokens: 1_000_000},
			12.50,
		},
		{
			"cheap model",
			capability.Usage{Model: "gpt-4o-mini", InputTokens: 2_000_000, OutputTokens: 0},
			0.30,
		},
		{
			"unknown model uses default rate",
			capability.Usage{Model: "some-new-model", InputTokens: 1_000_000, OutputTokens: 1_000_000},
			4.00,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, costOf(tt.usage), 1e-9)
		})
	}
}

func TestLedgerAccumulates(t *testing.T) {
	l := newLedger()
	l.record(capability.Usage{Model: "gpt-4o", InputTokens: 1000, OutputTokens: 500})
	l.record(capability.Usage{Model: "gpt-4o", InputTokens: 1000, OutputTokens: 500})
	l.recordAll([]capability.Usage{
		{Model: "gpt-4o-mini", InputTokens: 200, OutputTokens: 100},
		{}, // zero usage is ignored
	})

	assert.Equal(t, 3300, l.tokensUsed())

	s := l.summary()
	assert.Len(t, s.Breakdown, 2)
	assert.InDelta(t, s.Breakdown["gpt-4o"]+s.Breakdown["gpt-4o-mini"], s.Total, 1e-9)
}

func TestLedgerSummaryIsCopy(t *testing.T) {
	l := newLedger()
	l.record(capability.Usage{Model: "gpt-4o", InputTokens: 10, OutputTokens: 10})

	s := l.summary()
	s.Breakdown["gpt-4o"] = 0

	assert.NotZero(t, l.summary().Breakdown["gpt-4o"])
}
