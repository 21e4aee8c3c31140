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

package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/veldtlabs/wikivec/ai"
	"github.com/veldtlabs/wikivec/core"
)

// Text prefixes expected by e5-family embedding models. Indexed passages
// and search queries must use their respective prefix or similarity scores
// degrade badly.
const (
	DefaultPassagePrefix = "passage: "
	DefaultQueryPrefix   = "query: "
)

const (
	DefaultBatchSize  = 32
	DefaultMaxRetries = 3
	DefaultRetryDelay = 2 * time.Second
)

// Builder embeds chunk texts in batches and assembles a flat index whose
// rows correspond one to one with the chunk slice it was built from.
// All vectors are unit-normalized before insertion, so search scores are
// cosine similarities. Batch size affects throughput only, never results.
type Builder struct {
	embedder      ai.Embedder
	batchSize     int
	passagePrefix string
	queryPrefix   string
	maxRetries    int
	retryDelay    time.Duration
	logger        *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder) error

// WithBatchSize sets the number of texts embedded per call.
func WithBatchSize(n int) BuilderOption {
	return func(b *Builder) error {
		if n < 1 {
			return fmt.Errorf("batch size must be greater than zero, got %d", n)
		}
		b.batchSize = n
		return nil
	}
}

// WithPassagePrefix sets the prefix prepended to every indexed text.
func WithPassagePrefix(prefix string) BuilderOption {
	return func(b *Builder) error {
		b.passagePrefix = prefix
		return nil
	}
}

// WithQueryPrefix sets the prefix recorded for query-time embedding.
func WithQueryPrefix(prefix string) BuilderOption {
	return func(b *Builder) error {
		b.queryPrefix = prefix
		return nil
	}
}

// WithMaxRetries sets the retry budget for embedding calls.
func WithMaxRetries(n int) BuilderOption {
	return func(b *Builder) error {
		if n < 1 {
			return ErrInvalidMaxAttempts
		}
		b.maxRetries = n
		return nil
	}
}

// WithRetryDelay sets the base delay for embedding retry backoff.
func WithRetryDelay(d time.Duration) BuilderOption {
	return func(b *Builder) error {
		b.retryDelay = d
		return nil
	}
}

// WithBuilderLogger sets a custom logger.
// Default is slog.Default().
func WithBuilderLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// NewBuilder creates a Builder on top of an embedder.
func NewBuilder(embedder ai.Embedder, opts ...BuilderOption) (*Builder, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	b := &Builder{
		embedder:      embedder,
		batchSize:     DefaultBatchSize,
		passagePrefix: DefaultPassagePrefix,
		queryPrefix:   DefaultQueryPrefix,
		maxRetries:    DefaultMaxRetries,
		retryDelay:    DefaultRetryDelay,
		logger:        slog.Default().With("component", "index-builder"),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// PassagePrefix returns the configured passage prefix.
func (b *Builder) PassagePrefix() string { return b.passagePrefix }

// QueryPrefix returns the configured query prefix.
func (b *Builder) QueryPrefix() string { return b.queryPrefix }

// Build embeds all chunks and returns the populated index. Row i of the
// returned index holds the vector for chunks[i].
func (b *Builder) Build(ctx context.Context, chunks []core.Chunk) (*FlatIndex, error) {
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}

	dim, err := b.embedder.Dimensions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to determine embedding dimension: %w", err)
	}
	ix, err := NewFlatIndex(dim)
	if err != nil {
		return nil, err
	}

	b.logger.Info("building index",
		"chunks", len(chunks),
		"dimension", dim,
		"batchSize", b.batchSize)
	started := time.Now()

	for start := 0; start < len(chunks); start += b.batchSize {
		end := start + b.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, 0, end-start)
		for _, chunk := range chunks[start:end] {
			texts = append(texts, b.passagePrefix+chunk.Text)
		}

		var vectors [][]float32
		err := RetryWithBackoff(ctx, func() error {
			var embedErr error
			vectors, embedErr = b.embedder.EmbedTexts(ctx, texts)
			return embedErr
		}, b.maxRetries, b.retryDelay)
		if err != nil {
			return nil, fmt.Errorf("failed to embed batch at chunk %d: %w", start, err)
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("%w: sent %d texts, got %d vectors",
				ErrEmbeddingCountMismatch, len(texts), len(vectors))
		}

		for i, v := range vectors {
			if err := Normalize(v); err != nil {
				return nil, fmt.Errorf("failed to normalize vector for chunk %d: %w", start+i, err)
			}
		}

		if err := ix.Add(vectors); err != nil {
			return nil, err
		}

		b.logger.Debug("embedded batch",
			"done", end,
			"total", len(chunks))
	}

	if ix.Ntotal() != len(chunks) {
		return nil, fmt.Errorf("%w: index has %d vectors, expected %d",
			ErrCountMismatch, ix.Ntotal(), len(chunks))
	}

	b.logger.Info("index built",
		"vectors", ix.Ntotal(),
		"dimension", ix.Dim(),
		"took", time.Since(started))

	return ix, nil
}
