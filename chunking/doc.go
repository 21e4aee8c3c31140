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


// Package chunking splits wiki documents into three levels of retrievable
// chunks. Small chunks are paragraph-sized, medium chunks cover sections,
// large chunks cover pages or major section groups. Chunk ids are derived
// from content position and are stable across repeated runs, and every
// chunk links to the chunk one level above it through its parent id.
package chunking
