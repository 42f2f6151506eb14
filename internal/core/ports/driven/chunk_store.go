package driven

import (
	"context"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
)

// ChunkStore handles chunk persistence and the deterministic section
// and table lookups the ask orchestrator uses before falling back to
// fused retrieval. Fetch results are Hits joined with document
// metadata, ordered by page then chunk id, with toc and front_matter
// chunks excluded.
type ChunkStore interface {
	// ReplaceForDocument deletes and reinserts a document's chunks
	ReplaceForDocument(ctx context.Context, documentID int64, chunks []*domain.Chunk) error

	// GetTextByIDs hydrates full chunk text for snippet rebuilding
	GetTextByIDs(ctx context.Context, ids []int64) (map[int64]string, error)

	// FetchExactSection returns chunks whose section_id equals sectionID
	FetchExactSection(ctx context.Context, sectionID string, filter domain.ScopeFilter, limit int) ([]*domain.Hit, error)

	// FetchSectionWithChildren also matches child subsections (id.%)
	FetchSectionWithChildren(ctx context.Context, sectionID string, filter domain.ScopeFilter, limit int) ([]*domain.Hit, error)

	// FetchSectionPrefix matches a bare 3-digit prefix and everything under it
	FetchSectionPrefix(ctx context.Context, prefix string, filter domain.ScopeFilter, limit int) ([]*domain.Hit, error)

	// FetchTableToken returns table_row chunks whose text, heading or
	// label contains the normalized table token.
	FetchTableToken(ctx context.Context, token string, filter domain.ScopeFilter, limit int) ([]*domain.Hit, error)

	// ListLinkCandidates returns a document's content chunks that have
	// no table link yet, for the reference-linking pass.
	ListLinkCandidates(ctx context.Context, documentID int64) ([]*domain.Chunk, error)

	// LinkTable attaches a resolved table reference to a chunk
	LinkTable(ctx context.Context, chunkID int64, tableUID, tableLabel string) error

	// ListForIndex streams every chunk with document metadata and full
	// text, ordered by document and chunk index, for index rebuilds.
	ListForIndex(ctx context.Context) ([]*domain.Hit, error)
}
