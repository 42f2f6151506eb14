package driving

import (
	"context"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
)

// AuthService handles authentication for the API surface
type AuthService interface {
	// Authenticate validates credentials and issues a token
	Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)

	// ValidateToken parses and validates a bearer token
	ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error)
}
