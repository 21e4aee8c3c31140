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
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldtlabs/wikivec/core"
)

func testDocument(title string, sections int) *core.Document {
	doc := &core.Document{
		Title: title,
		URL:   "https://wiki.example.org/title/" + strings.ReplaceAll(title, " ", "_"),
	}
	for i := 0; i < sections; i++ {
		doc.Sections = append(doc.Sections, core.Section{
			Heading: fmt.Sprintf("Section %d", i+1),
			Text: fmt.Sprintf("Paragraph one of section %d in %s with enough body text to matter.\n\n"+
				"Paragraph two continues the explanation with configuration details and examples.", i+1, title),
			Depth: 2,
		})
	}
	return doc
}

func levelCount(chunks []core.Chunk, level core.ChunkLevel) int {
	n := 0
	for _, c := range chunks {
		if c.Level == level {
			n++
		}
	}
	return n
}

func TestChunkDocument(t *testing.T) {
	chunker, err := NewChunker()
	require.NoError(t, err)

	t.Run("produces all three levels", func(t *testing.T) {
		chunks, err := chunker.ChunkDocument(testDocument("Wireless network configuration", 2))
		require.NoError(t, err)

		assert.Equal(t, 1, levelCount(chunks, core.ChunkLevelLarge))
		assert.Equal(t, 2, levelCount(chunks, core.ChunkLevelMedium))
		assert.GreaterOrEqual(t, levelCount(chunks, core.ChunkLevelSmall), 2)
	})

	t.Run("ids are stable across runs", func(t *testing.T) {
		first, err := chunker.ChunkDocument(testDocument("NetworkManager", 3))
		require.NoError(t, err)
		second, err := chunker.ChunkDocument(testDocument("NetworkManager", 3))
		require.NoError(t, err)

		require.Equal(t, len(first), len(second))
		for i := range first {
			assert.Equal(t, first[i].Id, second[i].Id)
			assert.Equal(t, first[i].ParentId, second[i].ParentId)
			assert.Equal(t, first[i].Text, second[i].Text)
		}
	})

	t.Run("ids are unique within a document", func(t *testing.T) {
		chunks, err := chunker.ChunkDocument(testDocument("Systemd", 4))
		require.NoError(t, err)

		seen := make(map[core.ID]bool, len(chunks))
		for _, c := range chunks {
			assert.False(t, seen[c.Id], "duplicate chunk id %d", c.Id)
			seen[c.Id] = true
		}
	})

	t.Run("parent links form small to medium to large", func(t *testing.T) {
		chunks, err := chunker.ChunkDocument(testDocument("Pacman", 2))
		require.NoError(t, err)

		table := NewTable(chunks)
		for i := range chunks {
			c := &chunks[i]
			switch c.Level {
			case core.ChunkLevelSmall:
				parent := table.Parent(c)
				require.NotNil(t, parent, "small chunk without resolvable parent")
				assert.Equal(t, core.ChunkLevelMedium, parent.Level)
			case core.ChunkLevelMedium:
				parent := table.Parent(c)
				require.NotNil(t, parent, "medium chunk without resolvable parent")
				assert.Equal(t, core.ChunkLevelLarge, parent.Level)
			case core.ChunkLevelLarge:
				assert.Equal(t, core.ID(0), c.ParentId)
			}
		}
	})

	t.Run("short section yields one small chunk matching its medium chunk", func(t *testing.T) {
		doc := &core.Document{
			Title: "Fstab",
			URL:   "https://wiki.example.org/title/Fstab",
			Sections: []core.Section{
				{Heading: "Usage", Text: "Edit /etc/fstab as root.", Depth: 2},
			},
		}
		chunks, err := chunker.ChunkDocument(doc)
		require.NoError(t, err)

		var small, medium []core.Chunk
		for _, c := range chunks {
			switch c.Level {
			case core.ChunkLevelSmall:
				small = append(small, c)
			case core.ChunkLevelMedium:
				medium = append(medium, c)
			}
		}
		require.Len(t, small, 1)
		require.Len(t, medium, 1)
		assert.Equal(t, medium[0].Text, small[0].Text)
		assert.Equal(t, medium[0].Id, small[0].ParentId)
	})

	t.Run("surrounding whitespace does not break the small-medium identity", func(t *testing.T) {
		doc := &core.Document{
			Title: "Fstab",
			URL:   "https://wiki.example.org/title/Fstab",
			Sections: []core.Section{
				{Heading: "Usage", Text: "Edit /etc/fstab as root.\n", Depth: 2},
			},
		}
		chunks, err := chunker.ChunkDocument(doc)
		require.NoError(t, err)

		var small, medium []core.Chunk
		for _, c := range chunks {
			switch c.Level {
			case core.ChunkLevelSmall:
				small = append(small, c)
			case core.ChunkLevelMedium:
				medium = append(medium, c)
			}
		}
		require.Len(t, small, 1)
		require.Len(t, medium, 1)
		assert.Equal(t, "Fstab - Usage: Edit /etc/fstab as root.", medium[0].Text)
		assert.Equal(t, medium[0].Text, small[0].Text)
	})

	t.Run("lead section without heading is typed as intro", func(t *testing.T) {
		doc := &core.Document{
			Title: "Iwd",
			URL:   "https://wiki.example.org/title/Iwd",
			Sections: []core.Section{
				{Heading: "", Text: "iwd is a wireless daemon for Linux written by Intel.", Depth: 1},
				{Heading: "Installation", Text: "Install the iwd package.", Depth: 2},
			},
		}
		chunks, err := chunker.ChunkDocument(doc)
		require.NoError(t, err)

		var introSeen, sectionSeen bool
		for _, c := range chunks {
			if c.Level != core.ChunkLevelMedium {
				continue
			}
			switch c.Type {
			case core.ChunkTypeIntro:
				introSeen = true
				assert.Equal(t, doc.URL, c.SourceURL)
			case core.ChunkTypeSection:
				sectionSeen = true
				assert.Equal(t, doc.URL+"#Installation", c.SourceURL)
			}
		}
		assert.True(t, introSeen)
		assert.True(t, sectionSeen)
	})

	t.Run("empty sections produce no chunks", func(t *testing.T) {
		doc := &core.Document{
			Title: "Stub",
			URL:   "https://wiki.example.org/title/Stub",
			Sections: []core.Section{
				{Heading: "Empty", Text: "   ", Depth: 2},
			},
		}
		chunks, err := chunker.ChunkDocument(doc)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("rejects invalid document", func(t *testing.T) {
		_, err := chunker.ChunkDocument(&core.Document{Title: "", URL: "https://wiki.example.org"})
		assert.ErrorIs(t, err, core.ErrEmptyTitle)
	})

	t.Run("small chunks respect the ceiling", func(t *testing.T) {
		tight, err := NewChunker(WithSmallCeiling(120), WithSmallFloor(0))
		require.NoError(t, err)

		doc := testDocument("Kernel parameters", 1)
		doc.Sections[0].Text = strings.Repeat("A sentence about boot options and kernel parameters. ", 40)

		chunks, err := tight.ChunkDocument(doc)
		require.NoError(t, err)

		smalls := 0
		for _, c := range chunks {
			if c.Level == core.ChunkLevelSmall {
				smalls++
				prefix := len(contextText(c.SourceTitle, c.SectionHeading, ""))
				assert.LessOrEqual(t, len(c.Text), 120+prefix)
			}
		}
		assert.Greater(t, smalls, 1)
	})

	t.Run("code paragraphs stay with their lead-in text", func(t *testing.T) {
		doc := &core.Document{
			Title: "Netctl",
			URL:   "https://wiki.example.org/title/Netctl",
			Sections: []core.Section{
				{
					Heading: "Usage",
					Text:    "Enable the profile with the following command.\n\n$ netctl start wireless-home",
					Depth:   2,
				},
			},
		}
		chunks, err := chunker.ChunkDocument(doc)
		require.NoError(t, err)

		found := false
		for _, c := range chunks {
			if c.Level == core.ChunkLevelSmall && strings.Contains(c.Text, "$ netctl start wireless-home") {
				found = true
				assert.Contains(t, c.Text, "Enable the profile")
			}
		}
		assert.True(t, found, "command should be in a small chunk with its description")
	})
}

func TestChunkCorpus(t *testing.T) {
	chunker, err := NewChunker()
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("chunks every document in order", func(t *testing.T) {
		docs := []*core.Document{
			testDocument("Wireless network configuration", 2),
			testDocument("NetworkManager", 2),
			testDocument("Iwd", 2),
		}

		chunks, err := chunker.ChunkCorpus(ctx, docs)
		require.NoError(t, err)

		assert.Equal(t, 3, levelCount(chunks, core.ChunkLevelLarge))
		assert.Equal(t, 6, levelCount(chunks, core.ChunkLevelMedium))
		assert.GreaterOrEqual(t, levelCount(chunks, core.ChunkLevelSmall), 6)

		// Flattened output follows input document order.
		var titles []string
		for _, c := range chunks {
			if len(titles) == 0 || titles[len(titles)-1] != c.SourceTitle {
				titles = append(titles, c.SourceTitle)
			}
		}
		assert.Equal(t, []string{"Wireless network configuration", "NetworkManager", "Iwd"}, titles)
	})

	t.Run("output is deterministic across runs", func(t *testing.T) {
		docs := []*core.Document{
			testDocument("Pacman", 3),
			testDocument("Systemd", 4),
		}

		first, err := chunker.ChunkCorpus(ctx, docs)
		require.NoError(t, err)
		second, err := chunker.ChunkCorpus(ctx, docs)
		require.NoError(t, err)

		require.Equal(t, len(first), len(second))
		for i := range first {
			assert.Equal(t, first[i].Id, second[i].Id)
		}
	})

	t.Run("empty corpus is rejected", func(t *testing.T) {
		_, err := chunker.ChunkCorpus(ctx, nil)
		assert.ErrorIs(t, err, ErrNoDocuments)
	})

	t.Run("invalid document fails the run", func(t *testing.T) {
		docs := []*core.Document{
			testDocument("Valid", 1),
			{Title: "", URL: "https://wiki.example.org/title/Broken"},
		}
		_, err := chunker.ChunkCorpus(ctx, docs)
		assert.ErrorIs(t, err, core.ErrEmptyTitle)
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := chunker.ChunkCorpus(cancelled, []*core.Document{testDocument("Pacman", 1)})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
