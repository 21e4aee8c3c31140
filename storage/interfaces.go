package storage

import (
	"context"

	"github.com/veldtlabs/wikivec/core"
)

// Repository provides common storage operations shared by all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// DocumentRepository stores scraped wiki documents between ingestion and
// index builds. Documents are keyed by the content hash of their URL, so
// re-ingesting a page overwrites the previous revision.
type DocumentRepository interface {
	Repository

	// PutDocuments inserts or replaces documents. IDs are derived from
	// the document URL; a document with the same URL replaces the stored
	// revision but keeps its original InsertedAt.
	// Returns the documents with IDs and timestamps populated.
	PutDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error)

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocumentByURL retrieves a single document by its page URL.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocumentByURL(ctx context.Context, url string) (*core.Document, error)

	// ListDocuments retrieves all stored documents ordered by title.
	ListDocuments(ctx context.Context) ([]*core.Document, error)

	// CountDocuments returns the number of stored documents.
	CountDocuments(ctx context.Context) (int, error)

	// DeleteDocuments removes documents by their IDs.
	// Returns ErrNotFound if any document doesn't exist.
	DeleteDocuments(ctx context.Context, ids ...core.ID) error
}
