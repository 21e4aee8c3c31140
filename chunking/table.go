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
	"github.com/veldtlabs/wikivec/core"
)

// Table is an id-indexed view over a chunk set. The chunk hierarchy is
// stored as parent links only, so walking from a small chunk to its section
// or page needs a lookup built once per chunk set.
type Table struct {
	chunks []core.Chunk
	byID   map[core.ID]int
}

// NewTable builds a lookup table over chunks. The slice is referenced, not
// copied.
func NewTable(chunks []core.Chunk) *Table {
	byID := make(map[core.ID]int, len(chunks))
	for i, chunk := range chunks {
		byID[chunk.Id] = i
	}
	return &Table{chunks: chunks, byID: byID}
}

// ByID returns the chunk with the given id, or nil if it is not in the set.
func (t *Table) ByID(id core.ID) *core.Chunk {
	idx, ok := t.byID[id]
	if !ok {
		return nil
	}
	return &t.chunks[idx]
}

// Parent returns the parent of the given chunk, or nil for top-level chunks
// and unknown parents.
func (t *Table) Parent(chunk *core.Chunk) *core.Chunk {
	if chunk == nil || chunk.ParentId == 0 {
		return nil
	}
	return t.ByID(chunk.ParentId)
}

// Len returns the number of chunks in the table.
func (t *Table) Len() int {
	return len(t.chunks)
}
