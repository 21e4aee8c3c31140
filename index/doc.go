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


// Package index builds, persists and searches the flat vector index.
//
// The Builder embeds chunk texts in batches, unit-normalizes every vector
// and fills a FlatIndex whose rows map positionally to the chunk slice.
// The Store writes the index and its chunk metadata as two co-located
// files sharing a base path, refuses to overwrite existing artifacts
// unless forced, and verifies on load that the pair is complete and
// internally consistent.
package index
