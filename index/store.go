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
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"

	"github.com/veldtlabs/wikivec/core"
)

// File extensions of the two co-located artifacts. Both are derived from
// the same base path and are only ever valid as a pair.
const (
	IndexExt = ".index"
	MetaExt  = ".meta"
)

const (
	indexMagic    = "WVIX"
	metaMagic     = "WVMD"
	formatVersion = 1
)

// Artifacts is a fully-loaded index: the vectors, the chunk metadata whose
// order matches index rows, and the text prefixes the vectors were built
// with.
type Artifacts struct {
	Index         *FlatIndex
	Chunks        []core.Chunk
	PassagePrefix string
	QueryPrefix   string
}

// Store persists and loads index artifacts.
type Store struct {
	logger *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets a custom logger.
// Default is slog.Default().
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewStore creates an artifact store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		logger: slog.Default().With("component", "index-store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IndexPath returns the vector artifact path for a base path.
func IndexPath(base string) string { return base + IndexExt }

// MetaPath returns the metadata artifact path for a base path.
func MetaPath(base string) string { return base + MetaExt }

// Exists reports whether either artifact is already present at the base
// path.
func Exists(base string) bool {
	for _, path := range []string{IndexPath(base), MetaPath(base)} {
		if _, err := os.Stat(path); err == nil {
			return true
		}
	}
	return false
}

// Save writes both artifacts for the given base path. Existing artifacts
// are never overwritten unless force is set. Each file is written to a
// temporary file first and moved into place, so a crash mid-save cannot
// leave a truncated artifact behind.
func (s *Store) Save(base string, art *Artifacts, force bool) error {
	if art.Index.Ntotal() != len(art.Chunks) {
		return fmt.Errorf("%w: index has %d vectors, metadata has %d chunks",
			ErrCountMismatch, art.Index.Ntotal(), len(art.Chunks))
	}
	if !force && Exists(base) {
		return fmt.Errorf("%w: %s", ErrArtifactsExist, base)
	}
	if err := os.MkdirAll(filepath.Dir(base), 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	if err := writeAtomic(IndexPath(base), marshalIndex(art.Index)); err != nil {
		return fmt.Errorf("failed to write index artifact: %w", err)
	}
	if err := writeAtomic(MetaPath(base), marshalMeta(art)); err != nil {
		return fmt.Errorf("failed to write metadata artifact: %w", err)
	}

	s.logger.Info("saved index artifacts",
		"base", base,
		"vectors", art.Index.Ntotal(),
		"dimension", art.Index.Dim())

	return nil
}

// Load reads both artifacts for the given base path and verifies they
// agree. A missing pair is ErrArtifactsNotFound; exactly one present file
// is ErrArtifactsInconsistent; disagreeing contents are ErrIntegrity.
func (s *Store) Load(base string) (*Artifacts, error) {
	indexBytes, indexErr := os.ReadFile(IndexPath(base))
	metaBytes, metaErr := os.ReadFile(MetaPath(base))

	switch {
	case os.IsNotExist(indexErr) && os.IsNotExist(metaErr):
		return nil, fmt.Errorf("%w: %s", ErrArtifactsNotFound, base)
	case os.IsNotExist(indexErr):
		return nil, fmt.Errorf("%w: %s exists but %s is missing",
			ErrArtifactsInconsistent, MetaPath(base), IndexPath(base))
	case os.IsNotExist(metaErr):
		return nil, fmt.Errorf("%w: %s exists but %s is missing",
			ErrArtifactsInconsistent, IndexPath(base), MetaPath(base))
	case indexErr != nil:
		return nil, fmt.Errorf("failed to read index artifact: %w", indexErr)
	case metaErr != nil:
		return nil, fmt.Errorf("failed to read metadata artifact: %w", metaErr)
	}

	ix, err := unmarshalIndex(indexBytes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", IndexPath(base), err)
	}
	art, err := unmarshalMeta(metaBytes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", MetaPath(base), err)
	}
	art.Index = ix

	if ix.Ntotal() != len(art.Chunks) {
		return nil, fmt.Errorf("%w: index has %d vectors, metadata has %d chunks",
			ErrIntegrity, ix.Ntotal(), len(art.Chunks))
	}

	s.logger.Info("loaded index artifacts",
		"base", base,
		"vectors", ix.Ntotal(),
		"dimension", ix.Dim())

	return art, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func marshalIndex(ix *FlatIndex) []byte {
	n := ix.Ntotal()
	size := len(indexMagic)
	size += varint.Int.Size(formatVersion)
	size += varint.Int.Size(ix.Dim())
	size += varint.Int.Size(n)
	for row := 0; row < n; row++ {
		size += core.VectorMUS.Size(ix.Row(row))
	}

	bs := make([]byte, size)
	off := copy(bs, indexMagic)
	off += varint.Int.Marshal(formatVersion, bs[off:])
	off += varint.Int.Marshal(ix.Dim(), bs[off:])
	off += varint.Int.Marshal(n, bs[off:])
	for row := 0; row < n; row++ {
		off += core.VectorMUS.Marshal(ix.Row(row), bs[off:])
	}
	return bs[:off]
}

func unmarshalIndex(bs []byte) (*FlatIndex, error) {
	off, version, err := readHeader(bs, indexMagic)
	if err != nil {
		return nil, err
	}
	if version != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadArtifact, version)
	}

	dim, n1, err := varint.Int.Unmarshal(bs[off:])
	off += n1
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadArtifact, err)
	}
	count, n1, err := varint.Int.Unmarshal(bs[off:])
	off += n1
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadArtifact, err)
	}
	if dim < 1 || count < 0 {
		return nil, fmt.Errorf("%w: dimension %d, count %d", ErrBadArtifact, dim, count)
	}

	ix, err := NewFlatIndex(dim)
	if err != nil {
		return nil, err
	}
	ix.data = make([]float32, 0, count*dim)
	for i := 0; i < count; i++ {
		v, n1, err := core.VectorMUS.Unmarshal(bs[off:])
		off += n1
		if err != nil {
			return nil, fmt.Errorf("%w: truncated vector data: %w", ErrBadArtifact, err)
		}
		if len(v) != dim {
			return nil, fmt.Errorf("%w: row %d has %d dimensions, expected %d",
				ErrBadArtifact, i, len(v), dim)
		}
		ix.data = append(ix.data, v...)
	}
	return ix, nil
}

func marshalMeta(art *Artifacts) []byte {
	size := len(metaMagic)
	size += varint.Int.Size(formatVersion)
	size += ord.String.Size(art.PassagePrefix)
	size += ord.String.Size(art.QueryPrefix)
	size += varint.Int.Size(len(art.Chunks))
	for _, chunk := range art.Chunks {
		size += core.ChunkMUS.Size(chunk)
	}

	bs := make([]byte, size)
	off := copy(bs, metaMagic)
	off += varint.Int.Marshal(formatVersion, bs[off:])
	off += ord.String.Marshal(art.PassagePrefix, bs[off:])
	off += ord.String.Marshal(art.QueryPrefix, bs[off:])
	off += varint.Int.Marshal(len(art.Chunks), bs[off:])
	for _, chunk := range art.Chunks {
		off += core.ChunkMUS.Marshal(chunk, bs[off:])
	}
	return bs[:off]
}

func unmarshalMeta(bs []byte) (*Artifacts, error) {
	off, version, err := readHeader(bs, metaMagic)
	if err != nil {
		return nil, err
	}
	if version != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadArtifact, version)
	}

	art := &Artifacts{}
	var n1 int
	art.PassagePrefix, n1, err = ord.String.Unmarshal(bs[off:])
	off += n1
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadArtifact, err)
	}
	art.QueryPrefix, n1, err = ord.String.Unmarshal(bs[off:])
	off += n1
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadArtifact, err)
	}

	count, n1, err := varint.Int.Unmarshal(bs[off:])
	off += n1
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadArtifact, err)
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: chunk count %d", ErrBadArtifact, count)
	}

	art.Chunks = make([]core.Chunk, count)
	for i := 0; i < count; i++ {
		art.Chunks[i], n1, err = core.ChunkMUS.Unmarshal(bs[off:])
		off += n1
		if err != nil {
			return nil, fmt.Errorf("%w: chunk %d: %w", ErrBadArtifact, i, err)
		}
	}
	return art, nil
}

func readHeader(bs []byte, magic string) (off, version int, err error) {
	if len(bs) < len(magic) || !bytes.Equal(bs[:len(magic)], []byte(magic)) {
		return 0, 0, fmt.Errorf("%w: bad magic", ErrBadArtifact)
	}
	off = len(magic)
	version, n, err := varint.Int.Unmarshal(bs[off:])
	off += n
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrBadArtifact, err)
	}
	return off, version, nil
}
