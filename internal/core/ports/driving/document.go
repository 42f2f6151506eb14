package driving

import (
	"context"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
)

// DocumentService exposes the document catalogue
type DocumentService interface {
	// List returns all documents with chunk and table counts
	List(ctx context.Context) ([]*domain.DocumentSummary, error)

	// Get returns a single document by ID
	Get(ctx context.Context, id int64) (*domain.Document, error)
}

// TableService exposes extracted tables for rendering
type TableService interface {
	// Meta returns a table with its document metadata
	Meta(ctx context.Context, tableUID string) (*domain.TableMeta, error)

	// Rows returns one page of rows, with display-shaped rendering
	Rows(ctx context.Context, tableUID string, limit, offset int) (*domain.TableRowsPage, error)
}
