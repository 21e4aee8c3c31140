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
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldtlabs/wikivec/ai/mock"
	"github.com/veldtlabs/wikivec/core"
)

func testChunks(n int) []core.Chunk {
	chunks := make([]core.Chunk, n)
	for i := range chunks {
		text := fmt.Sprintf("chunk %d about wireless configuration", i)
		chunks[i] = core.Chunk{
			Id:          core.IDFromContent(text),
			Text:        text,
			Level:       core.ChunkLevelSmall,
			Type:        core.ChunkTypeSection,
			SourceTitle: "Wireless network configuration",
			SourceURL:   "https://wiki.example.org/title/Wireless_network_configuration",
		}
	}
	return chunks
}

func TestBuilder(t *testing.T) {
	ctx := context.Background()

	t.Run("builds one row per chunk", func(t *testing.T) {
		builder, err := NewBuilder(mock.NewMockEmbedder(), WithBatchSize(4))
		require.NoError(t, err)

		chunks := testChunks(10)
		ix, err := builder.Build(ctx, chunks)
		require.NoError(t, err)

		assert.Equal(t, len(chunks), ix.Ntotal())
		assert.Equal(t, mock.DefaultDimensions, ix.Dim())
	})

	t.Run("batch size does not change results", func(t *testing.T) {
		chunks := testChunks(7)

		small, err := NewBuilder(mock.NewMockEmbedder(), WithBatchSize(2))
		require.NoError(t, err)
		large, err := NewBuilder(mock.NewMockEmbedder(), WithBatchSize(32))
		require.NoError(t, err)

		first, err := small.Build(ctx, chunks)
		require.NoError(t, err)
		second, err := large.Build(ctx, chunks)
		require.NoError(t, err)

		require.Equal(t, first.Ntotal(), second.Ntotal())
		for row := 0; row < first.Ntotal(); row++ {
			assert.Equal(t, first.Row(row), second.Row(row))
		}
	})

	t.Run("index dimension comes from the embedder", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.Dim = 5

		builder, err := NewBuilder(embedder)
		require.NoError(t, err)
		ix, err := builder.Build(ctx, testChunks(2))
		require.NoError(t, err)
		assert.Equal(t, 5, ix.Dim())
	})

	t.Run("vectors disagreeing with the reported dimension fail the build", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.Dim = 3
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			vectors := make([][]float32, len(texts))
			for i := range vectors {
				vectors[i] = []float32{1, 0}
			}
			return vectors, nil
		}

		builder, err := NewBuilder(embedder)
		require.NoError(t, err)
		_, err = builder.Build(ctx, testChunks(2))
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("texts are embedded with the passage prefix", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.Dim = 3
		var sent []string
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			sent = append(sent, texts...)
			vectors := make([][]float32, len(texts))
			for i := range vectors {
				vectors[i] = []float32{1, 2, 3}
			}
			return vectors, nil
		}

		builder, err := NewBuilder(embedder)
		require.NoError(t, err)
		_, err = builder.Build(ctx, testChunks(3))
		require.NoError(t, err)

		require.Len(t, sent, 3)
		for _, text := range sent {
			assert.True(t, strings.HasPrefix(text, DefaultPassagePrefix))
		}
	})

	t.Run("stored vectors are unit length", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.Dim = 2
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			vectors := make([][]float32, len(texts))
			for i := range vectors {
				vectors[i] = []float32{3, 4}
			}
			return vectors, nil
		}

		builder, err := NewBuilder(embedder)
		require.NoError(t, err)
		ix, err := builder.Build(ctx, testChunks(2))
		require.NoError(t, err)

		for row := 0; row < ix.Ntotal(); row++ {
			var sumSquares float64
			for _, f := range ix.Row(row) {
				sumSquares += float64(f) * float64(f)
			}
			assert.InDelta(t, 1.0, math.Sqrt(sumSquares), 1e-6)
		}
	})

	t.Run("embedding count mismatch fails the build", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.Dim = 2
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{1, 0}}, nil
		}

		builder, err := NewBuilder(embedder, WithRetryDelay(time.Millisecond))
		require.NoError(t, err)
		_, err = builder.Build(ctx, testChunks(3))
		assert.ErrorIs(t, err, ErrEmbeddingCountMismatch)
	})

	t.Run("transient embedding failures are retried", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.Dim = 2
		calls := 0
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("connection reset")
			}
			vectors := make([][]float32, len(texts))
			for i := range vectors {
				vectors[i] = []float32{1, 0}
			}
			return vectors, nil
		}

		builder, err := NewBuilder(embedder, WithMaxRetries(3), WithRetryDelay(time.Millisecond))
		require.NoError(t, err)
		ix, err := builder.Build(ctx, testChunks(2))
		require.NoError(t, err)
		assert.Equal(t, 2, ix.Ntotal())
		assert.Equal(t, 2, calls)
	})

	t.Run("persistent failures exhaust the retry budget", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		serviceErr := errors.New("service unavailable")
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, serviceErr
		}

		builder, err := NewBuilder(embedder, WithMaxRetries(2), WithRetryDelay(time.Millisecond))
		require.NoError(t, err)
		_, err = builder.Build(ctx, testChunks(2))
		assert.ErrorIs(t, err, serviceErr)
	})

	t.Run("empty chunk set is rejected", func(t *testing.T) {
		builder, err := NewBuilder(mock.NewMockEmbedder())
		require.NoError(t, err)
		_, err = builder.Build(ctx, nil)
		assert.ErrorIs(t, err, ErrNoChunks)
	})

	t.Run("nil embedder is rejected", func(t *testing.T) {
		_, err := NewBuilder(nil)
		assert.Error(t, err)
	})
}
