package driven

import (
	"context"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
)

// DocumentStore handles document persistence (PostgreSQL)
type DocumentStore interface {
	// Save creates or updates a document, keyed by filename
	Save(ctx context.Context, doc *domain.Document) error

	// Get retrieves a document by ID
	Get(ctx context.Context, id int64) (*domain.Document, error)

	// GetByFilename retrieves a document by its source filename
	GetByFilename(ctx context.Context, filename string) (*domain.Document, error)

	// List retrieves all documents ordered by ID
	List(ctx context.Context) ([]*domain.Document, error)

	// ListSummaries retrieves all documents with chunk and table counts
	ListSummaries(ctx context.Context) ([]*domain.DocumentSummary, error)

	// Delete removes a document and its dependent pages, chunks and tables
	Delete(ctx context.Context, id int64) error
}

// PageStore handles raw page text persistence
type PageStore interface {
	// ReplaceForDocument swaps all pages of a document in one transaction
	ReplaceForDocument(ctx context.Context, documentID int64, pages []*domain.Page) error

	// GetByDocument retrieves a document's pages ordered by page number
	GetByDocument(ctx context.Context, documentID int64) ([]*domain.Page, error)
}
