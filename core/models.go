package core

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated by content-based hashing so identical input always
// produces identical IDs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ChunkLevel identifies the granularity of a chunk.
type ChunkLevel int

const (
	// ChunkLevelSmall is a paragraph-sized unit for precise matching.
	ChunkLevelSmall ChunkLevel = iota + 1
	// ChunkLevelMedium is a full section (heading plus body).
	ChunkLevelMedium
	// ChunkLevelLarge is a whole page or a group of major sections.
	ChunkLevelLarge
)

// String returns the lowercase level name.
func (l ChunkLevel) String() string {
	switch l {
	case ChunkLevelSmall:
		return "small"
	case ChunkLevelMedium:
		return "medium"
	case ChunkLevelLarge:
		return "large"
	}
	return "unknown(" + strconv.Itoa(int(l)) + ")"
}

// ChunkType describes what kind of text unit a chunk was derived from.
type ChunkType int

const (
	// ChunkTypeIntro is the leading text of a page before its first section.
	ChunkTypeIntro ChunkType = iota + 1
	// ChunkTypeSection is a single section's content.
	ChunkTypeSection
	// ChunkTypeAggregate is a group of sections or an entire page.
	ChunkTypeAggregate
)

// String returns the lowercase type name.
func (t ChunkType) String() string {
	switch t {
	case ChunkTypeIntro:
		return "intro"
	case ChunkTypeSection:
		return "section"
	case ChunkTypeAggregate:
		return "aggregate"
	}
	return "unknown(" + strconv.Itoa(int(t)) + ")"
}

// Section is one heading plus its body text within a document.
type Section struct {
	Heading string
	Text    string
	Depth   int // heading depth from the scraper, 1 = top level
}

// Document is a scraped wiki page. Owned by the scraper; immutable once chunked.
type Document struct {
	Id         ID
	Title      string
	URL        string
	Sections   []Section
	InsertedAt time.Time // When the document was inserted into the corpus store
	UpdatedAt  time.Time // When the document was last updated
}

// Chunk is the atomic retrievable unit. Created once by the chunker,
// never mutated, consumed read-only by indexing and result assembly.
type Chunk struct {
	Id             ID
	ParentId       ID // links a smaller chunk to the chunk it was derived from; 0 for top-level chunks
	Text           string
	Level          ChunkLevel
	Type           ChunkType
	SourceTitle    string
	SourceURL      string
	SectionHeading string
}

// SearchResult is a ranked hit from a similarity search. Never persisted.
type SearchResult struct {
	Chunk *Chunk
	Score float32 // similarity score from the index, higher = more similar
	Rank  int     // 1-based
}
