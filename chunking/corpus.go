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

package chunking

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/veldtlabs/wikivec/core"
)

// ChunkCorpus chunks every document concurrently on a worker pool and
// returns the chunks flattened in document order. Output order depends
// only on the input order, never on worker scheduling.
func (c *Chunker) ChunkCorpus(ctx context.Context, docs []*core.Document) ([]core.Chunk, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	workers := runtime.NumCPU()
	if workers > len(docs) {
		workers = len(docs)
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create chunking pool: %w", err)
	}
	defer pool.Release()

	// Each document writes into its own slot, so the flattened result is
	// deterministic regardless of completion order.
	perDoc := make([][]core.Chunk, len(docs))
	errs := make([]error, len(docs))

	var wg sync.WaitGroup
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			break
		}

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			chunks, err := c.ChunkDocument(doc)
			if err != nil {
				errs[i] = fmt.Errorf("failed to chunk document %q: %w", doc.Title, err)
				return
			}
			perDoc[i] = chunks
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = fmt.Errorf("failed to submit chunking task: %w", submitErr)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	total := 0
	for _, chunks := range perDoc {
		total += len(chunks)
	}
	all := make([]core.Chunk, 0, total)
	for _, chunks := range perDoc {
		all = append(all, chunks...)
	}

	c.logger.Info("chunked corpus",
		"documents", len(docs),
		"chunks", len(all))

	return all, nil
}
