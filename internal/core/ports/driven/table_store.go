package driven

import (
	"context"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
)

// TableStore handles extracted table persistence
type TableStore interface {
	// ReplaceForDocument deletes and reinserts a document's tables and rows
	ReplaceForDocument(ctx context.Context, documentID int64, tables []*domain.Table, rows []*domain.TableRow) error

	// GetMeta retrieves a table joined with its document metadata.
	// Returns domain.ErrNotFound when the table does not exist.
	GetMeta(ctx context.Context, tableUID string) (*domain.TableMeta, error)

	// GetRows retrieves rows ordered by row index. Offset counts rows
	// already fetched; row indexes themselves are not contiguous.
	GetRows(ctx context.Context, tableUID string, limit, offset int) ([]*domain.TableRow, error)

	// CountRows returns the number of rows stored for a table
	CountRows(ctx context.Context, tableUID string) (int, error)

	// ListByPage returns a page's tables ordered by their index on the page
	ListByPage(ctx context.Context, documentID int64, pageNumber int) ([]*domain.Table, error)

	// RowsMatchingToken returns the distinct table UIDs among the given
	// candidates that have a row containing the token.
	RowsMatchingToken(ctx context.Context, tableUIDs []string, token string) ([]string, error)
}
