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

package refine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/veldtlabs/wikivec/ai"
)

// Maximum length of a refined query. Longer generator output is cut at a
// word boundary; the embedding gains nothing from run-on keyword lists.
const maxRefinedLen = 200

const promptTemplate = `You convert user questions about Linux into effective search queries for the Arch Wiki.
Respond with a single line of search keywords and nothing else. Add relevant tool names, configuration terms and error vocabulary. Do not answer the question.

Question: wifi broken
Search query: wireless network configuration NetworkManager iwctl troubleshooting connection issues

Question: how do I make my screen less blue at night
Search query: redshift gammastep color temperature night light display configuration

Question: %s
Search query:`

// Refiner expands terse user queries into keyword-rich search queries with
// a text generator. Refinement is best effort only: if the generator is
// unavailable, errors, or produces unusable output, Refine returns the
// original query unchanged and the search proceeds.
type Refiner struct {
	generator ai.TextGenerator
	enabled   bool
	logger    *slog.Logger
}

// RefinerOption configures a Refiner.
type RefinerOption func(*Refiner)

// WithEnabled toggles refinement. A disabled refiner passes every query
// through untouched.
func WithEnabled(enabled bool) RefinerOption {
	return func(r *Refiner) {
		r.enabled = enabled
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) RefinerOption {
	return func(r *Refiner) {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
	}
}

// NewRefiner creates a query refiner. A nil generator yields a refiner
// that always passes queries through.
func NewRefiner(generator ai.TextGenerator, opts ...RefinerOption) *Refiner {
	r := &Refiner{
		generator: generator,
		enabled:   generator != nil,
		logger:    slog.Default().With("component", "refiner"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Enabled reports whether refinement is active.
func (r *Refiner) Enabled() bool {
	return r.enabled && r.generator != nil
}

// Refine expands the query for retrieval. On any failure the original
// query is returned exactly as given, so a broken or absent generator can
// never make search worse than searching the raw query.
func (r *Refiner) Refine(ctx context.Context, query string) string {
	if !r.Enabled() || strings.TrimSpace(query) == "" {
		return query
	}

	raw, err := r.generator.Generate(ctx, fmt.Sprintf(promptTemplate, query))
	if err != nil {
		r.logger.Debug("query refinement failed, using raw query", "error", err)
		return query
	}

	refined := cleanResponse(raw)
	if refined == "" {
		r.logger.Debug("query refinement produced no usable output, using raw query")
		return query
	}

	r.logger.Debug("refined query",
		"original", query,
		"refined", refined)

	return refined
}
