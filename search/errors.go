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

package search

import "errors"

var (
	// ErrEmptyQuery indicates a blank search query.
	ErrEmptyQuery = errors.New("search query is empty")
	// ErrNilArtifacts indicates a searcher constructed without loaded artifacts.
	ErrNilArtifacts = errors.New("index artifacts are required")
	// ErrNilEmbedder indicates a searcher constructed without an embedder.
	ErrNilEmbedder = errors.New("embedder is required")
	// ErrQueryDimension indicates the query embedding does not match the
	// index dimension. The embedder and the index were built with
	// different models; searching cannot continue.
	ErrQueryDimension = errors.New("query embedding dimension mismatch")
)
