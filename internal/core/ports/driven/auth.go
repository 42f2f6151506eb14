package driven

import "github.com/fieldline-labs/spechub-core/internal/core/domain"

// AuthAdapter handles authentication cryptographic operations
type AuthAdapter interface {
	// Password operations
	HashPassword(password string) (string, error)
	VerifyPassword(password, hash string) bool

	// Token operations
	GenerateToken(claims *domain.TokenClaims) (string, error)
	ParseToken(token string) (*domain.TokenClaims, error)
}
