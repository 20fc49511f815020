// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package memory implements the run-scoped working store that accumulates
// every intermediate artifact of a pipeline run: search results, the
// acquisition cache, context chunks, sub-questions, and generated reports.
// One store belongs to exactly one orchestrator run.
package memory

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/deepresearch/pkg/types"
)

// Store is the working memory for one run. Methods are safe for
// concurrent use: acquisition writes the content cache from multiple
// goroutines within a batch.
type Store struct {
	mu sync.RWMutex

	results      []types.SearchResult
	contentCache map[string]types.AcquiredContent
	chunks       []types.ContextChunk
	subQuestions []string
	reports      map[string]string
	counters     map[string]int
}

// NewStore returns an empty working memory.
func NewStore() *Store {
	return &Store{
		contentCache: make(map[string]types.AcquiredContent),
		reports:      make(map[string]string),
		counters:     make(map[string]int),
	}
}

// AddResults appends search results to the run's record.
func (s *Store) AddResults(results []types.SearchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, results...)
}

// Results returns a copy of all search results seen this run.
func (s *Store) Results() []types.SearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.SearchResult, len(s.results))
	copy(out, s.results)
	return out
}

// GetContent looks up cached content by normalized URL. The cache doubles
// as the run's visited set.
func (s *Store) GetContent(url string) (types.AcquiredContent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contentCache[url]
	return c, ok
}

// PutContent stores acquired content keyed by normalized URL.
func (s *Store) PutContent(url string, content types.AcquiredContent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contentCache[url] = content
}

// AddChunks appends selected context chunks.
func (s *Store) AddChunks(chunks []types.ContextChunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, chunks...)
}

// Chunks returns a copy of all context chunks.
func (s *Store) Chunks() []types.ContextChunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.ContextChunk, len(s.chunks))
	copy(out, s.chunks)
	return out
}

// SetSubQuestions records the run's sub-questions.
func (s *Store) SetSubQuestions(questions []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subQuestions = append([]string(nil), questions...)
}

// SubQuestions returns a copy of the run's sub-questions.
func (s *Store) SubQuestions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.subQuestions...)
}

// PutReport stores a generated report under a label.
func (s *Store) PutReport(label, report string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[label] = report
}

// Report returns the report stored under label.
func (s *Store) Report(label string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[label]
	return r, ok
}

// AddCounter increments a named counter by delta.
func (s *Store) AddCounter(name string, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[name] += delta
}

// Counter returns a named counter's value.
func (s *Store) Counter(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters[name]
}

// Stats summarizes the store's contents.
type Stats struct {
	Results      int            `json:"results" yaml:"results"`
	CachedPages  int            `json:"cached_pages" yaml:"cached_pages"`
	Chunks       int            `json:"chunks" yaml:"chunks"`
	SubQuestions int            `json:"sub_questions" yaml:"sub_questions"`
	Reports      int            `json:"reports" yaml:"reports"`
	Counters     map[string]int `json:"counters,omitempty" yaml:"counters,omitempty"`
}

// GetStats returns volume counts for everything accumulated so far.
func (s *Store) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counters := make(map[string]int, len(s.counters))
	for k, v := range s.counters {
		counters[k] = v
	}
	return Stats{
		Results:      len(s.results),
		CachedPages:  len(s.contentCache),
		Chunks:       len(s.chunks),
		SubQuestions: len(s.subQuestions),
		Reports:      len(s.reports),
		Counters:     counters,
	}
}

// export is the serialized form of the store.
type export struct {
	Results      []types.SearchResult             `json:"results" yaml:"results"`
	ContentCache map[string]types.AcquiredContent `json:"content_cache" yaml:"content_cache"`
	Chunks       []types.ContextChunk             `json:"chunks" yaml:"chunks"`
	SubQuestions []string                         `json:"sub_questions" yaml:"sub_questions"`
	Reports      map[string]string                `json:"reports" yaml:"reports"`
	Counters     map[string]int                   `json:"counters" yaml:"counters"`
}

func (s *Store) snapshot() export {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return export{
		Results:      s.results,
		ContentCache: s.contentCache,
		Chunks:       s.chunks,
		SubQuestions: s.subQuestions,
		Reports:      s.reports,
		Counters:     s.counters,
	}
}

func (s *Store) restore(e export) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = e.Results
	s.chunks = e.Chunks
	s.subQuestions = e.SubQuestions
	s.contentCache = e.ContentCache
	if s.contentCache == nil {
		s.contentCache = make(map[string]types.AcquiredContent)
	}
	s.reports = e.Reports
	if s.reports == nil {
		s.reports = make(map[string]string)
	}
	s.counters = e.Counters
	if s.counters == nil {
		s.counters = make(map[string]int)
	}
}

// ExportJSON writes the full store contents as indented JSON.
func (s *Store) ExportJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.snapshot()); err != nil {
		return fmt.Errorf("exporting working memory: %w", err)
	}
	return nil
}

// ImportJSON replaces the store contents with a previously exported
// snapshot. A fresh store loaded from an export reports identical stats.
func (s *Store) ImportJSON(r io.Reader) error {
	var e export
	if err := json.NewDecoder(r).Decode(&e); err != nil {
		return fmt.Errorf("importing working memory: %w", err)
	}
	s.restore(e)
	return nil
}

// ExportYAML writes the full store contents as YAML.
func (s *Store) ExportYAML(w io.Writer) error {
	data, err := yaml.Marshal(s.snapshot())
	if err != nil {
		return fmt.Errorf("exporting working memory: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ImportYAML replaces the store contents with a YAML export.
func (s *Store) ImportYAML(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("importing working memory: %w", err)
	}
	var e export
	if err := yaml.Unmarshal(data, &e); err != nil {
		return fmt.Errorf("importing working memory: %w", err)
	}
	s.restore(e)
	return nil
}
