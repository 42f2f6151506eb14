package driving

import (
	"context"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
)

// IndexService rebuilds derived artifacts (chunks, tables, lexical and
// vector indexes) from stored pages. Rebuilds run to completion as
// batch jobs; a distributed lock rejects concurrent runs with
// domain.ErrRebuildInProgress.
type IndexService interface {
	RebuildAll(ctx context.Context) (*domain.RebuildStats, error)
}
