package core

import (
	"errors"
	"testing"
)

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		doc     *Document
		wantErr error
	}{
		{
			name: "valid document",
			doc: &Document{
				Title: "Iwd",
				URL:   "https://wiki.archlinux.org/title/Iwd",
			},
			wantErr: nil,
		},
		{
			name:    "nil document",
			doc:     nil,
			wantErr: ErrInvalidDocument,
		},
		{
			name: "empty title",
			doc: &Document{
				URL: "https://wiki.archlinux.org/title/Iwd",
			},
			wantErr: ErrEmptyTitle,
		},
		{
			name: "empty url",
			doc: &Document{
				Title: "Iwd",
			},
			wantErr: ErrEmptyURL,
		},
		{
			name: "no sections is valid",
			doc: &Document{
				Title: "Stub page",
				URL:   "https://wiki.archlinux.org/title/Stub",
			},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.doc)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateDocument() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDocument() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateChunk(t *testing.T) {
	valid := Chunk{
		Id:          IDFromContent("c"),
		Text:        "some text",
		Level:       ChunkLevelMedium,
		Type:        ChunkTypeSection,
		SourceTitle: "Page",
	}

	tests := []struct {
		name    string
		mutate  func(c *Chunk)
		wantErr error
	}{
		{
			name:    "valid chunk",
			mutate:  func(c *Chunk) {},
			wantErr: nil,
		},
		{
			name:    "empty text",
			mutate:  func(c *Chunk) { c.Text = "" },
			wantErr: ErrEmptyText,
		},
		{
			name:    "level too low",
			mutate:  func(c *Chunk) { c.Level = 0 },
			wantErr: ErrInvalidChunkLevel,
		},
		{
			name:    "level too high",
			mutate:  func(c *Chunk) { c.Level = ChunkLevelLarge + 1 },
			wantErr: ErrInvalidChunkLevel,
		},
		{
			name:    "invalid type",
			mutate:  func(c *Chunk) { c.Type = 0 },
			wantErr: ErrInvalidChunkType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunk := valid
			tt.mutate(&chunk)
			err := ValidateChunk(&chunk)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateChunk() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateChunk() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateChunk_Nil(t *testing.T) {
	if err := ValidateChunk(nil); !errors.Is(err, ErrInvalidChunk) {
		t.Errorf("ValidateChunk(nil) error = %v, want %v", err, ErrInvalidChunk)
	}
}
