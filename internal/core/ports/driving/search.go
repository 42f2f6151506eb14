package driving

import (
	"context"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
)

// SearchService exposes retrieval without answer synthesis
type SearchService interface {
	// HybridSearch fuses lexical and vector retrieval and returns the
	// top k hits with a confidence grade.
	HybridSearch(ctx context.Context, query string, k int, filter domain.ScopeFilter) ([]*domain.Hit, domain.Confidence, error)

	// LexicalSearch queries only the BM25 index
	LexicalSearch(ctx context.Context, query string, k int, filter domain.ScopeFilter) ([]*domain.Hit, error)
}
