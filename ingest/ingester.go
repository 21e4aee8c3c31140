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

package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/veldtlabs/wikivec/storage"
)

// Ingester loads scraper dumps into the corpus store.
type Ingester struct {
	repo   storage.DocumentRepository
	logger *slog.Logger
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ing *Ingester) {
		if logger == nil {
			logger = slog.Default()
		}
		ing.logger = logger
	}
}

// NewIngester creates an ingester writing to the given repository.
func NewIngester(repo storage.DocumentRepository, opts ...Option) (*Ingester, error) {
	if repo == nil {
		return nil, fmt.Errorf("document repository is required")
	}
	ing := &Ingester{
		repo:   repo,
		logger: slog.Default().With("component", "ingester"),
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing, nil
}

// IngestPath loads all pages under path and stores them. Pages with a URL
// already in the corpus replace the stored revision. Returns the number of
// documents stored.
func (ing *Ingester) IngestPath(ctx context.Context, path string) (int, error) {
	docs, err := LoadPath(path)
	if err != nil {
		return 0, err
	}

	if _, err := ing.repo.PutDocuments(ctx, docs...); err != nil {
		return 0, fmt.Errorf("failed to store documents: %w", err)
	}

	ing.logger.Info("ingested pages",
		"path", path,
		"documents", len(docs))

	return len(docs), nil
}
