package driven

import (
	"context"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
)

// VectorIndex is the embedding side of retrieval. One normalized vector
// per chunk; similarity is inner product. Implementations over-fetch
// before applying the scope filter so filtered queries still fill k.
type VectorIndex interface {
	// Search returns the top k in-scope hits for the query vector.
	// minEquationScore > 0 restricts results to equation-like chunks.
	Search(ctx context.Context, vector []float32, k int, filter domain.ScopeFilter, minEquationScore float64) ([]*domain.Hit, error)

	// Rebuild replaces the stored vectors. chunks[i] pairs with
	// embeddings[i]; the swap is atomic with respect to Search.
	Rebuild(ctx context.Context, chunks []*domain.Hit, embeddings [][]float32) error
}
