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
	"fmt"
	"math"
	"sort"
)

// FlatIndex is an exact inner-product index over row-major float32 vectors.
// With unit-normalized vectors the inner product equals cosine similarity.
// Rows map positionally to the chunk metadata stored alongside the index.
type FlatIndex struct {
	dim  int
	data []float32
}

// Hit is one search match: the row of the matched vector and its score.
type Hit struct {
	Row   int
	Score float32
}

// NewFlatIndex creates an empty index for vectors of the given dimension.
func NewFlatIndex(dim int) (*FlatIndex, error) {
	if dim < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDimension, dim)
	}
	return &FlatIndex{dim: dim}, nil
}

// Dim returns the vector dimension of the index.
func (ix *FlatIndex) Dim() int {
	return ix.dim
}

// Ntotal returns the number of vectors in the index.
func (ix *FlatIndex) Ntotal() int {
	return len(ix.data) / ix.dim
}

// Add appends vectors to the index. Every vector must match the index
// dimension.
func (ix *FlatIndex) Add(vectors [][]float32) error {
	for i, v := range vectors {
		if len(v) != ix.dim {
			return fmt.Errorf("%w: vector %d has dimension %d, index has %d",
				ErrDimensionMismatch, i, len(v), ix.dim)
		}
	}
	for _, v := range vectors {
		ix.data = append(ix.data, v...)
	}
	return nil
}

// Row returns the stored vector at the given row. The returned slice
// aliases index storage and must not be modified.
func (ix *FlatIndex) Row(i int) []float32 {
	return ix.data[i*ix.dim : (i+1)*ix.dim]
}

// Search scans all rows and returns up to k hits ordered by descending
// inner product. Equal scores are ordered by ascending row, so results are
// stable across runs.
func (ix *FlatIndex) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != ix.dim {
		return nil, fmt.Errorf("%w: query has dimension %d, index has %d",
			ErrDimensionMismatch, len(query), ix.dim)
	}
	n := ix.Ntotal()
	if n == 0 || k < 1 {
		return nil, nil
	}
	if k > n {
		k = n
	}

	hits := make([]Hit, n)
	for row := 0; row < n; row++ {
		hits[row] = Hit{Row: row, Score: dot(query, ix.Row(row))}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Row < hits[j].Row
	})

	return hits[:k], nil
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Normalize scales a vector to unit length in place. Zero vectors cannot
// be normalized and fail with ErrZeroVector.
func Normalize(v []float32) error {
	var sumSquares float64
	for _, f := range v {
		sumSquares += float64(f) * float64(f)
	}
	if sumSquares == 0 {
		return ErrZeroVector
	}
	norm := float32(math.Sqrt(sumSquares))
	for i := range v {
		v[i] /= norm
	}
	return nil
}
