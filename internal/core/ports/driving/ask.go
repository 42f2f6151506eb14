package driving

import (
	"context"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
)

// AskService answers questions against the indexed corpus. Ask never
// returns an error for retrieval or generation failures; those degrade
// to weak or fallback results. Errors are reserved for invalid input
// and context cancellation.
type AskService interface {
	Ask(ctx context.Context, req domain.AskRequest) (*domain.AskResult, error)
}
