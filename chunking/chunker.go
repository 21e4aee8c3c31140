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
	"fmt"
	"log/slog"
	"strings"

	"github.com/veldtlabs/wikivec/core"
)

// Default size ceilings in bytes per chunk level. Ceilings are fixed
// configuration, never derived from corpus statistics.
const (
	DefaultSmallCeiling  = 480
	DefaultSmallFloor    = 80
	DefaultMediumCeiling = 6000
	DefaultLargeCeiling  = 24000
)

// Number of major sections up to which a page is kept as a single large chunk.
const smallPageSectionLimit = 3

// Chunker splits documents into three granularities of retrievable text
// units. Small chunks are paragraph-sized for precise matching, medium
// chunks cover one section, large chunks cover a page or a group of major
// sections. Every small chunk records the medium chunk it came from and
// every medium chunk records its large chunk, so results can be expanded
// without re-deriving page structure at query time.
type Chunker struct {
	smallCeiling  int
	smallFloor    int
	mediumCeiling int
	largeCeiling  int
	logger        *slog.Logger
}

// Option configures a Chunker.
type Option func(*Chunker) error

// WithSmallCeiling sets the maximum size of a small chunk in bytes.
func WithSmallCeiling(n int) Option {
	return func(c *Chunker) error {
		if n < 1 {
			return fmt.Errorf("%w: small ceiling %d", ErrInvalidCeiling, n)
		}
		c.smallCeiling = n
		return nil
	}
}

// WithSmallFloor sets the section size below which a section yields a
// single small chunk identical in text to its medium chunk.
func WithSmallFloor(n int) Option {
	return func(c *Chunker) error {
		if n < 0 {
			return fmt.Errorf("%w: small floor %d", ErrInvalidCeiling, n)
		}
		c.smallFloor = n
		return nil
	}
}

// WithMediumCeiling sets the maximum size of a medium chunk in bytes.
func WithMediumCeiling(n int) Option {
	return func(c *Chunker) error {
		if n < 1 {
			return fmt.Errorf("%w: medium ceiling %d", ErrInvalidCeiling, n)
		}
		c.mediumCeiling = n
		return nil
	}
}

// WithLargeCeiling sets the maximum size of a large chunk in bytes.
func WithLargeCeiling(n int) Option {
	return func(c *Chunker) error {
		if n < 1 {
			return fmt.Errorf("%w: large ceiling %d", ErrInvalidCeiling, n)
		}
		c.largeCeiling = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chunker) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewChunker creates a chunker with the default ceilings.
func NewChunker(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		smallCeiling:  DefaultSmallCeiling,
		smallFloor:    DefaultSmallFloor,
		mediumCeiling: DefaultMediumCeiling,
		largeCeiling:  DefaultLargeCeiling,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.smallCeiling > c.mediumCeiling {
		return nil, fmt.Errorf("%w: small ceiling %d exceeds medium ceiling %d",
			ErrInvalidCeiling, c.smallCeiling, c.mediumCeiling)
	}
	return c, nil
}

// chunkID derives the deterministic chunk id from document URL, level and
// position. Re-chunking identical input always reproduces the same ids.
func chunkID(url string, level core.ChunkLevel, sectionIdx, unitIdx int) core.ID {
	return core.IDFromContent(fmt.Sprintf("%s|%s|%d|%d", url, level, sectionIdx, unitIdx))
}

// ChunkDocument produces all three chunk levels for one document, ordered
// large, medium, small. Sections with no body text are skipped entirely.
func (c *Chunker) ChunkDocument(doc *core.Document) ([]core.Chunk, error) {
	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}

	sections := doc.Sections
	if len(sections) == 0 {
		c.logger.Debug("document has no sections, skipping", "title", doc.Title)
		return nil, nil
	}

	var chunks []core.Chunk

	// large parent for each section index
	largeBySection := make([]core.ID, len(sections))
	chunks = c.appendLargeChunks(chunks, doc, largeBySection)

	// medium parent for each section index
	mediumBySection := make([]core.ID, len(sections))
	chunks = c.appendMediumChunks(chunks, doc, largeBySection, mediumBySection)

	chunks = c.appendSmallChunks(chunks, doc, mediumBySection)

	return chunks, nil
}

// appendLargeChunks groups sections into page-level chunks. Small pages
// become one chunk; larger pages are grouped under each top-depth section.
// largeBySection receives the large chunk id covering each section index.
func (c *Chunker) appendLargeChunks(chunks []core.Chunk, doc *core.Document, largeBySection []core.ID) []core.Chunk {
	sections := doc.Sections

	major := 0
	for _, s := range sections {
		if s.Depth <= 2 {
			major++
		}
	}

	if major <= smallPageSectionLimit {
		// Small page, use the entire page as one large chunk.
		var parts []string
		for _, s := range sections {
			if body := strings.TrimSpace(s.Text); body != "" {
				parts = append(parts, body)
			}
		}
		if len(parts) == 0 {
			return chunks
		}
		text := c.clampText(doc.Title+": "+strings.Join(parts, "\n\n"), c.largeCeiling, core.ChunkLevelLarge)
		id := chunkID(doc.URL, core.ChunkLevelLarge, 0, 0)
		for i := range largeBySection {
			largeBySection[i] = id
		}
		return append(chunks, core.Chunk{
			Id:          id,
			Text:        text,
			Level:       core.ChunkLevelLarge,
			Type:        core.ChunkTypeAggregate,
			SourceTitle: doc.Title,
			SourceURL:   doc.URL,
		})
	}

	// Large page, group sections under each depth-1 section.
	groupStart := -1
	groupHeading := ""
	var groupParts []string
	groupNum := 0

	flush := func(end int) {
		if groupStart < 0 || len(groupParts) == 0 {
			return
		}
		text := c.clampText(doc.Title+" - "+groupHeading+": "+strings.Join(groupParts, "\n\n"),
			c.largeCeiling, core.ChunkLevelLarge)
		id := chunkID(doc.URL, core.ChunkLevelLarge, groupStart, groupNum)
		for i := groupStart; i < end; i++ {
			largeBySection[i] = id
		}
		chunks = append(chunks, core.Chunk{
			Id:             id,
			Text:           text,
			Level:          core.ChunkLevelLarge,
			Type:           core.ChunkTypeAggregate,
			SourceTitle:    doc.Title,
			SourceURL:      sectionURL(doc.URL, groupHeading),
			SectionHeading: groupHeading,
		})
		groupNum++
	}

	for i, s := range doc.Sections {
		if s.Depth <= 1 || groupStart < 0 {
			flush(i)
			groupStart = i
			groupHeading = s.Heading
			groupParts = groupParts[:0]
		}
		if body := strings.TrimSpace(s.Text); body != "" {
			groupParts = append(groupParts, body)
		}
	}
	flush(len(doc.Sections))

	return chunks
}

// appendMediumChunks emits one chunk per non-empty section.
func (c *Chunker) appendMediumChunks(chunks []core.Chunk, doc *core.Document, largeBySection, mediumBySection []core.ID) []core.Chunk {
	for i, s := range doc.Sections {
		body := strings.TrimSpace(s.Text)
		if body == "" {
			continue
		}

		id := chunkID(doc.URL, core.ChunkLevelMedium, i, 0)
		mediumBySection[i] = id

		chunks = append(chunks, core.Chunk{
			Id:             id,
			ParentId:       largeBySection[i],
			Text:           c.clampText(contextText(doc.Title, s.Heading, body), c.mediumCeiling, core.ChunkLevelMedium),
			Level:          core.ChunkLevelMedium,
			Type:           sectionChunkType(s),
			SourceTitle:    doc.Title,
			SourceURL:      sectionURL(doc.URL, s.Heading),
			SectionHeading: s.Heading,
		})
	}
	return chunks
}

// appendSmallChunks splits each section into paragraph-sized units. A
// section shorter than the small floor yields exactly one small chunk with
// the same text as its medium chunk.
func (c *Chunker) appendSmallChunks(chunks []core.Chunk, doc *core.Document, mediumBySection []core.ID) []core.Chunk {
	for i, s := range doc.Sections {
		body := strings.TrimSpace(s.Text)
		if body == "" {
			continue
		}

		var units []string
		if len(body) < c.smallFloor {
			units = []string{body}
		} else {
			units = c.splitIntoUnits(body)
		}

		for j, unit := range units {
			chunks = append(chunks, core.Chunk{
				Id:             chunkID(doc.URL, core.ChunkLevelSmall, i, j),
				ParentId:       mediumBySection[i],
				Text:           c.clampText(contextText(doc.Title, s.Heading, unit), c.smallCeiling+len(contextText(doc.Title, s.Heading, "")), core.ChunkLevelSmall),
				Level:          core.ChunkLevelSmall,
				Type:           sectionChunkType(s),
				SourceTitle:    doc.Title,
				SourceURL:      sectionURL(doc.URL, s.Heading),
				SectionHeading: s.Heading,
			})
		}
	}
	return chunks
}

// splitIntoUnits splits section content into small logical units. Paragraphs
// are accumulated up to the small ceiling; command and code paragraphs are
// kept together with the text that introduces them.
func (c *Chunker) splitIntoUnits(content string) []string {
	paragraphs := strings.Split(content, "\n\n")

	var units []string
	var current string

	for _, paragraph := range paragraphs {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		if isCodeParagraph(paragraph) {
			switch {
			case current != "":
				units = append(units, current+"\n\n"+paragraph)
				current = ""
			case len(units) > 0 && len(units[len(units)-1])+len(paragraph) < c.smallCeiling:
				// Standalone code block, attach it to a short previous unit.
				units[len(units)-1] = units[len(units)-1] + "\n\n" + paragraph
			default:
				units = append(units, paragraph)
			}
			continue
		}

		if current != "" && len(current)+len(paragraph) > c.smallCeiling {
			units = append(units, current)
			current = paragraph
			continue
		}

		if current != "" {
			current += "\n\n" + paragraph
		} else {
			current = paragraph
		}
	}

	if current != "" {
		units = append(units, current)
	}

	// Hard-split any single unit that still exceeds the ceiling.
	var bounded []string
	for _, unit := range units {
		for len(unit) > c.smallCeiling {
			cut := c.smallCeiling
			if idx := strings.LastIndexByte(unit[:cut], ' '); idx > cut/2 {
				cut = idx
			}
			bounded = append(bounded, strings.TrimSpace(unit[:cut]))
			unit = strings.TrimSpace(unit[cut:])
		}
		if unit != "" {
			bounded = append(bounded, unit)
		}
	}

	return bounded
}

// clampText enforces a level ceiling. Oversize text is cut at the ceiling;
// this only happens on pathological pages and is logged.
func (c *Chunker) clampText(text string, ceiling int, level core.ChunkLevel) string {
	if len(text) <= ceiling {
		return text
	}
	c.logger.Warn("chunk text exceeds level ceiling, truncating",
		"level", level.String(), "size", len(text), "ceiling", ceiling)
	return strings.TrimSpace(text[:ceiling])
}

// isCodeParagraph reports whether a paragraph is a shell command or code
// listing rather than prose.
func isCodeParagraph(paragraph string) bool {
	return strings.HasPrefix(paragraph, "$ ") ||
		strings.HasPrefix(paragraph, "# ") ||
		strings.Contains(paragraph, "```")
}

// contextText prefixes content with its page title and section heading so
// the embedded text carries its own context.
func contextText(title, heading, content string) string {
	if heading == "" {
		return title + ": " + content
	}
	return title + " - " + heading + ": " + content
}

// sectionURL appends the section anchor used by MediaWiki-style sites.
func sectionURL(url, heading string) string {
	if heading == "" {
		return url
	}
	anchor := strings.ReplaceAll(heading, " ", "_")
	anchor = strings.ReplaceAll(anchor, "/", "")
	return url + "#" + anchor
}

// sectionChunkType classifies a section. Lead text without a heading is the
// page intro.
func sectionChunkType(s core.Section) core.ChunkType {
	if s.Heading == "" {
		return core.ChunkTypeIntro
	}
	return core.ChunkTypeSection
}
