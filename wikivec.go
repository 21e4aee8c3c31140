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


// Package wikivec wires the pieces of the wiki search system together:
// a badger-backed corpus of scraped pages, OpenAI-compatible embedding
// and generation services, the chunker, the index builder and the
// searcher.
package wikivec

import (
	"context"
	"log/slog"

	"github.com/veldtlabs/wikivec/ai"
	"github.com/veldtlabs/wikivec/ai/openai"
	"github.com/veldtlabs/wikivec/chunking"
	"github.com/veldtlabs/wikivec/index"
	"github.com/veldtlabs/wikivec/ingest"
	"github.com/veldtlabs/wikivec/refine"
	"github.com/veldtlabs/wikivec/search"
	"github.com/veldtlabs/wikivec/storage"
	"github.com/veldtlabs/wikivec/storage/badger"
)

// Corpus is the assembled system around one corpus database: document
// storage plus the AI provider, from which the pipeline stages are
// constructed.
type Corpus struct {
	backend  *badger.Backend
	docRepo  storage.DocumentRepository
	provider ai.AIProvider
	logger   *slog.Logger
}

// CorpusOption configures a Corpus.
type CorpusOption func(*corpusOptions)

type corpusOptions struct {
	aiConfig *ai.Config
	inMemory bool
}

// WithAIConfig sets the embedding and generation service configuration.
func WithAIConfig(config *ai.Config) CorpusOption {
	return func(o *corpusOptions) {
		o.aiConfig = config
	}
}

// WithInMemory opens the corpus database in memory. Used by tests.
func WithInMemory() CorpusOption {
	return func(o *corpusOptions) {
		o.inMemory = true
	}
}

// OpenCorpus opens the corpus database at filePath and connects the AI
// provider.
func OpenCorpus(filePath string, opts ...CorpusOption) (*Corpus, error) {
	options := &corpusOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	docRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		docRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Corpus{
		backend:  backend,
		docRepo:  docRepo,
		provider: provider,
		logger:   slog.Default(),
	}, nil
}

// Close releases the AI provider and the corpus database.
func (c *Corpus) Close() error {
	if err := c.provider.Close(); err != nil {
		c.logger.Error("error closing AI provider", "err", err)
	}
	if err := c.docRepo.Close(); err != nil {
		c.logger.Error("error closing document repository", "err", err)
		return err
	}
	if err := c.backend.Close(); err != nil {
		c.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Documents returns the corpus document repository.
func (c *Corpus) Documents() storage.DocumentRepository {
	return c.docRepo
}

// Provider returns the AI provider.
func (c *Corpus) Provider() ai.AIProvider {
	return c.provider
}

// NewIngester creates an ingester writing into this corpus.
func (c *Corpus) NewIngester(opts ...ingest.Option) (*ingest.Ingester, error) {
	return ingest.NewIngester(c.docRepo, opts...)
}

// BuildIndex chunks every document in the corpus and builds the vector
// index over the result. Returns the artifacts ready for saving.
func (c *Corpus) BuildIndex(ctx context.Context, chunker *chunking.Chunker, builder *index.Builder) (*index.Artifacts, error) {
	docs, err := c.docRepo.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}

	chunks, err := chunker.ChunkCorpus(ctx, docs)
	if err != nil {
		return nil, err
	}

	ix, err := builder.Build(ctx, chunks)
	if err != nil {
		return nil, err
	}

	return &index.Artifacts{
		Index:         ix,
		Chunks:        chunks,
		PassagePrefix: builder.PassagePrefix(),
		QueryPrefix:   builder.QueryPrefix(),
	}, nil
}

// NewRefiner creates a query refiner backed by the provider's generator.
func (c *Corpus) NewRefiner(opts ...refine.RefinerOption) *refine.Refiner {
	return refine.NewRefiner(c.provider.Generator(), opts...)
}

// NewSearcher creates a searcher over loaded artifacts using the
// provider's embedder.
func (c *Corpus) NewSearcher(art *index.Artifacts, opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(art, c.provider.Embedder(), opts...)
}
