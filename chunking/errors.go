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

import "errors"

var (
	// ErrInvalidCeiling indicates a non-positive or inconsistent size ceiling.
	ErrInvalidCeiling = errors.New("invalid chunk size ceiling")
	// ErrNoDocuments indicates that chunking was requested on an empty corpus.
	ErrNoDocuments = errors.New("no documents to chunk")
)
