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
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldtlabs/wikivec/core"
	badgerstore "github.com/veldtlabs/wikivec/storage/badger"
)

const singlePage = `{
	"title": "Iwd",
	"url": "https://wiki.example.org/title/Iwd",
	"sections": [
		{"heading": "", "text": "iwd is a wireless daemon.", "depth": 1},
		{"heading": "Installation", "text": "Install the iwd package.", "depth": 2}
	]
}`

const legacyPage = `{
	"title": "Netctl",
	"url": "https://wiki.example.org/title/Netctl",
	"sections": [
		{"title": "Usage", "content": "Start a profile with netctl.", "level": 2}
	]
}`

const pageArray = `[
	{"title": "Pacman", "url": "https://wiki.example.org/title/Pacman",
	 "sections": [{"heading": "Usage", "text": "pacman -S package", "depth": 2}]},
	{"title": "GRUB", "url": "https://wiki.example.org/title/GRUB",
	 "sections": [{"heading": "Installation", "text": "grub-install /dev/sda", "depth": 2}]}
]`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPath(t *testing.T) {
	t.Run("single page file", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "iwd.json", singlePage)

		docs, err := LoadPath(path)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "Iwd", docs[0].Title)
		require.Len(t, docs[0].Sections, 2)
		assert.Equal(t, "Installation", docs[0].Sections[1].Heading)
		assert.Equal(t, 2, docs[0].Sections[1].Depth)
	})

	t.Run("legacy section keys are accepted", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "netctl.json", legacyPage)

		docs, err := LoadPath(path)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		require.Len(t, docs[0].Sections, 1)
		assert.Equal(t, "Usage", docs[0].Sections[0].Heading)
		assert.Equal(t, "Start a profile with netctl.", docs[0].Sections[0].Text)
		assert.Equal(t, 2, docs[0].Sections[0].Depth)
	})

	t.Run("array file", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "pages.json", pageArray)

		docs, err := LoadPath(path)
		require.NoError(t, err)
		assert.Len(t, docs, 2)
	})

	t.Run("directory loads json files in name order", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "b_iwd.json", singlePage)
		writeFile(t, dir, "a_pages.json", pageArray)
		writeFile(t, dir, "notes.txt", "not a page")

		docs, err := LoadPath(dir)
		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.Equal(t, "Pacman", docs[0].Title)
		assert.Equal(t, "GRUB", docs[1].Title)
		assert.Equal(t, "Iwd", docs[2].Title)
	})

	t.Run("directory without page files fails", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "notes.txt", "not a page")

		_, err := LoadPath(dir)
		assert.ErrorIs(t, err, ErrNoPages)
	})

	t.Run("malformed json fails", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "broken.json", "{not json")

		_, err := LoadPath(path)
		assert.ErrorIs(t, err, ErrInvalidPageFile)
	})

	t.Run("page without url fails", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "nourl.json", `{"title": "Iwd", "sections": []}`)

		_, err := LoadPath(path)
		assert.ErrorIs(t, err, ErrInvalidPageFile)
		assert.ErrorIs(t, err, core.ErrEmptyURL)
	})

	t.Run("missing path fails", func(t *testing.T) {
		_, err := LoadPath(filepath.Join(t.TempDir(), "missing"))
		assert.Error(t, err)
	})
}

func TestIngester(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*Ingester, func() (int, error)) {
		t.Helper()
		repo, backend, err := badgerstore.NewMemoryRepository()
		require.NoError(t, err)
		t.Cleanup(func() {
			repo.Close()
			backend.Close()
		})

		ing, err := NewIngester(repo)
		require.NoError(t, err)
		return ing, func() (int, error) { return repo.CountDocuments(ctx) }
	}

	t.Run("stores every loaded page", func(t *testing.T) {
		ing, count := setup(t)
		dir := t.TempDir()
		writeFile(t, dir, "pages.json", pageArray)
		writeFile(t, dir, "iwd.json", singlePage)

		n, err := ing.IngestPath(ctx, dir)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		stored, err := count()
		require.NoError(t, err)
		assert.Equal(t, 3, stored)
	})

	t.Run("re-ingesting the same pages does not duplicate", func(t *testing.T) {
		ing, count := setup(t)
		path := writeFile(t, t.TempDir(), "iwd.json", singlePage)

		_, err := ing.IngestPath(ctx, path)
		require.NoError(t, err)
		_, err = ing.IngestPath(ctx, path)
		require.NoError(t, err)

		stored, err := count()
		require.NoError(t, err)
		assert.Equal(t, 1, stored)
	})

	t.Run("nil repository is rejected", func(t *testing.T) {
		_, err := NewIngester(nil)
		assert.Error(t, err)
	})
}
