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

import "errors"

var (
	// ErrInvalidDimension indicates a non-positive vector dimension.
	ErrInvalidDimension = errors.New("invalid vector dimension")
	// ErrDimensionMismatch indicates a vector whose dimension does not match the index.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrZeroVector indicates a vector with zero norm that cannot be normalized.
	ErrZeroVector = errors.New("cannot normalize zero vector")
	// ErrInvalidMaxAttempts indicates a retry budget of zero or less.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than zero")
	// ErrNoChunks indicates that an index build was requested with no chunks.
	ErrNoChunks = errors.New("no chunks to index")
	// ErrEmbeddingCountMismatch indicates the embedder returned a different
	// number of vectors than texts sent.
	ErrEmbeddingCountMismatch = errors.New("embedding count mismatch")
	// ErrArtifactsExist indicates the target artifacts already exist and
	// force was not set.
	ErrArtifactsExist = errors.New("index artifacts already exist")
	// ErrArtifactsNotFound indicates neither artifact exists at the base path.
	ErrArtifactsNotFound = errors.New("index artifacts not found")
	// ErrArtifactsInconsistent indicates exactly one of the two co-located
	// artifacts is present.
	ErrArtifactsInconsistent = errors.New("index artifacts inconsistent")
	// ErrBadArtifact indicates an artifact file that cannot be parsed.
	ErrBadArtifact = errors.New("malformed index artifact")
	// ErrIntegrity indicates the loaded artifacts disagree with each other.
	ErrIntegrity = errors.New("index integrity check failed")
	// ErrCountMismatch indicates vectors and metadata of different lengths.
	ErrCountMismatch = errors.New("vector and metadata count mismatch")
)
