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

package core

import "fmt"

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Title must not be empty
//   - URL must not be empty
//
// NOT validated:
//   - Sections (a page with no parsed sections is legal; the chunker
//     skips it)
//   - ID (0 is valid before the corpus store assigns a content hash)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyTitle)
	}

	if doc.URL == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyURL)
	}

	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - Level must be a valid ChunkLevel
//   - Type must be a valid ChunkType
//
// Size ceilings per level are chunker configuration, not domain rules,
// and are enforced where chunks are produced.
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}

	if err := ValidateChunkLevel(chunk.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, err)
	}

	if err := ValidateChunkType(chunk.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, err)
	}

	return nil
}

// ValidateChunkLevel validates that a ChunkLevel has a valid value.
func ValidateChunkLevel(level ChunkLevel) error {
	if level < ChunkLevelSmall || level > ChunkLevelLarge {
		return fmt.Errorf("%w: value %d", ErrInvalidChunkLevel, level)
	}
	return nil
}

// ValidateChunkType validates that a ChunkType has a valid value.
func ValidateChunkType(chunkType ChunkType) error {
	if chunkType < ChunkTypeIntro || chunkType > ChunkTypeAggregate {
		return fmt.Errorf("%w: value %d", ErrInvalidChunkType, chunkType)
	}
	return nil
}
