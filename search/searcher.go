// Copyright 2025 Veldt Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/veldtlabs/wikivec/ai"
	"github.com/veldtlabs/wikivec/chunking"
	"github.com/veldtlabs/wikivec/core"
	"github.com/veldtlabs/wikivec/index"
	"github.com/veldtlabs/wikivec/refine"
)

// DefaultTopK is the number of results returned when the caller does not
// ask for a specific count.
const DefaultTopK = 5

// Searcher answers queries against a loaded index. The query is optionally
// refined, embedded with the query prefix the index was built for,
// unit-normalized and matched against all index rows. Results carry ranks
// starting at 1 in descending score order.
type Searcher struct {
	art      *index.Artifacts
	embedder ai.Embedder
	refiner  *refine.Refiner
	table    *chunking.Table
	monitor  SearchMonitor
	logger   *slog.Logger
}

// Stats describes a loaded index.
type Stats struct {
	Vectors   int
	Chunks    int
	Dimension int
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithRefiner attaches a query refiner. Without one, queries are embedded
// as given.
func WithRefiner(refiner *refine.Refiner) Option {
	return func(s *Searcher) {
		s.refiner = refiner
	}
}

// WithMonitor attaches a monitor observing search progress.
func WithMonitor(monitor SearchMonitor) Option {
	return func(s *Searcher) {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		s.monitor = monitor
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewSearcher creates a searcher over loaded artifacts. The embedder must
// be the same model family the index was built with; a dimension mismatch
// is detected on the first query.
func NewSearcher(art *index.Artifacts, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if art == nil || art.Index == nil {
		return nil, ErrNilArtifacts
	}
	if embedder == nil {
		return nil, ErrNilEmbedder
	}
	s := &Searcher{
		art:      art,
		embedder: embedder,
		table:    chunking.NewTable(art.Chunks),
		monitor:  &noopMonitor{},
		logger:   slog.Default().With("component", "searcher"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Search returns the topK closest chunks for the query. topK values below
// one fall back to DefaultTopK; values beyond the index size are clamped.
func (s *Searcher) Search(ctx context.Context, query string, topK int) ([]core.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if topK < 1 {
		topK = DefaultTopK
	}

	started := time.Now()
	s.monitor.Start(query)

	effective := query
	if s.refiner != nil {
		effective = s.refiner.Refine(ctx, query)
		s.monitor.AfterRefine(query, effective)
	}

	vector, err := s.embedder.EmbedText(ctx, s.art.QueryPrefix+effective)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vector) != s.art.Index.Dim() {
		return nil, fmt.Errorf("%w: embedder produced %d dimensions, index expects %d",
			ErrQueryDimension, len(vector), s.art.Index.Dim())
	}
	if err := index.Normalize(vector); err != nil {
		return nil, fmt.Errorf("failed to normalize query embedding: %w", err)
	}

	hits, err := s.art.Index.Search(vector, topK)
	if err != nil {
		return nil, fmt.Errorf("index search failed: %w", err)
	}
	s.monitor.AfterIndexSearch(hits)

	results := make([]core.SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = core.SearchResult{
			Chunk: &s.art.Chunks[hit.Row],
			Score: hit.Score,
			Rank:  i + 1,
		}
	}

	s.monitor.Finish(results)
	s.logger.Debug("search completed",
		"query", query,
		"effective", effective,
		"results", len(results),
		"took", time.Since(started))

	return results, nil
}

// Parent returns the chunk one level above the given result chunk, if it
// is part of the indexed set. Used to show section or page context around
// a paragraph-level match.
func (s *Searcher) Parent(chunk *core.Chunk) *core.Chunk {
	return s.table.Parent(chunk)
}

// Stats reports the size and shape of the loaded index.
func (s *Searcher) Stats() Stats {
	return Stats{
		Vectors:   s.art.Index.Ntotal(),
		Chunks:    len(s.art.Chunks),
		Dimension: s.art.Index.Dim(),
	}
}
