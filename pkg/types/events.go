// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// EventKind names a lifecycle event emitted by the orchestrator. Each stage
// emits a start and a complete event; a failed run additionally emits
// EventError as its final event.
type EventKind string

const (
	EventPlanningStart       EventKind = "planning.start"
	EventPlanningComplete    EventKind = "planning.complete"
	EventRetrievalStart      EventKind = "retrieval.start"
	EventRetrievalComplete   EventKind = "retrieval.complete"
	EventValidationStart     EventKind = "validation.start"
	EventValidationComplete  EventKind = "validation.complete"
	EventAcquisitionStart    EventKind = "acquisition.start"
	EventAcquisitionComplete EventKind = "acquisition.complete"
	EventContextStart        EventKind = "context.start"
	EventContextComplete     EventKind = "context.complete"
	EventSynthesisStart      EventKind = "synthesis.start"
	EventSynthesisComplete   EventKind = "synthesis.complete"
	EventRunComplete         EventKind = "run.complete"
	EventError               EventKind = "error"
)

// Event is one lifecycle notification. Which counter fields are set depends
// on the kind: planning.complete carries Count (sub-questions),
// retrieval.complete carries Count (results), validation.complete Count
// (validated sources), acquisition.complete Count (pages fetched),
// context.complete Count (chunks selected), synthesis.complete Count
// (report length in bytes).
type Event struct {
	Kind    EventKind `json:"kind" yaml:"kind"`
	RunID   string    `json:"run_id" yaml:"run_id"`
	Time    time.Time `json:"time" yaml:"time"`
	Message string    `json:"message,omitempty" yaml:"message,omitempty"`
	Count   int       `json:"count,omitempty" yaml:"count,omitempty"`

	// Cost is the run's accumulated LLM spend in USD at emission time.
	Cost float64 `json:"cost,omitempty" yaml:"cost,omitempty"`
}

// StreamUpdateType discriminates streaming API updates.
type StreamUpdateType string

const (
	StreamProgress StreamUpdateType = "progress"
	StreamData     StreamUpdateType = "data"
	StreamComplete StreamUpdateType = "complete"
	StreamError    StreamUpdateType = "error"
)

// StreamUpdate is one element of the streaming run output. A stream carries
// any number of progress and data updates and terminates with exactly one
// complete or one error update, never both.
type StreamUpdate struct {
	Type    StreamUpdateType `json:"type" yaml:"type"`
	Message string           `json:"message,omitempty" yaml:"message,omitempty"`

	// Data carries an incremental report fragment on data updates.
	Data string `json:"data,omitempty" yaml:"data,omitempty"`

	// Progress is a coarse completion fraction in [0,1] on progress updates.
	Progress float64 `json:"progress,omitempty" yaml:"progress,omitempty"`

	// Result is set on the single complete update.
	Result *RunResult `json:"result,omitempty" yaml:"result,omitempty"`
}
