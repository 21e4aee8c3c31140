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

package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/veldtlabs/wikivec/core"
)

// pageJSON is the scraper dump format. Older dumps use title/content/level
// for sections, newer ones heading/text/depth; both are accepted.
type pageJSON struct {
	Title    string        `json:"title"`
	URL      string        `json:"url"`
	Sections []sectionJSON `json:"sections"`
}

type sectionJSON struct {
	Heading string `json:"heading"`
	Title   string `json:"title"`
	Text    string `json:"text"`
	Content string `json:"content"`
	Depth   int    `json:"depth"`
	Level   int    `json:"level"`
}

func (s sectionJSON) toSection() core.Section {
	heading := s.Heading
	if heading == "" {
		heading = s.Title
	}
	text := s.Text
	if text == "" {
		text = s.Content
	}
	depth := s.Depth
	if depth == 0 {
		depth = s.Level
	}
	return core.Section{Heading: heading, Text: text, Depth: depth}
}

func (p pageJSON) toDocument() (*core.Document, error) {
	doc := &core.Document{
		Title: p.Title,
		URL:   p.URL,
	}
	for _, s := range p.Sections {
		doc.Sections = append(doc.Sections, s.toSection())
	}
	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadFile parses one dump file. The file may hold a single page object or
// an array of pages.
func LoadFile(path string) ([]*core.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read page file: %w", err)
	}

	var pages []pageJSON
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(data, &pages); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidPageFile, path, err)
		}
	} else {
		var page pageJSON
		if err := json.Unmarshal(data, &page); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidPageFile, path, err)
		}
		pages = []pageJSON{page}
	}

	docs := make([]*core.Document, 0, len(pages))
	for i, page := range pages {
		doc, err := page.toDocument()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: page %d: %w", ErrInvalidPageFile, path, i, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// LoadPath loads documents from a dump file or from every .json file in a
// directory. Directory entries are processed in name order, so repeated
// loads see pages in the same sequence.
func LoadPath(path string) ([]*core.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat input path: %w", err)
	}
	if !info.IsDir() {
		return LoadFile(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var docs []*core.Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		fileDocs, err := LoadFile(filepath.Join(path, entry.Name()))
		if err != nil {
			return nil, err
		}
		docs = append(docs, fileDocs...)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPages, path)
	}
	return docs, nil
}
