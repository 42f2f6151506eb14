package driven

import (
	"context"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
)

// LexicalSearchOptions tune a lexical lookup
type LexicalSearchOptions struct {
	// MinEquationScore drops chunks below the threshold when > 0
	MinEquationScore float64
}

// LexicalIndex is the BM25 side of retrieval. Implementations hold a
// read-only artifact that Rebuild replaces atomically; searches never
// observe a partially built index.
type LexicalIndex interface {
	// Search returns the top k in-scope hits for the query. Hits carry
	// BM25Score and full chunk text.
	Search(ctx context.Context, query string, k int, filter domain.ScopeFilter, opts LexicalSearchOptions) ([]*domain.Hit, error)

	// Rebuild builds a fresh index over the given chunks and swaps it in
	Rebuild(ctx context.Context, chunks []*domain.Hit) error

	// Ready reports whether an artifact is loaded
	Ready() bool
}
