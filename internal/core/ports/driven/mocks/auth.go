package mocks

import (
	"sync"
	"time"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
	"github.com/google/uuid"
)

// MockAuthAdapter is a mock implementation of AuthAdapter for testing.
// Passwords hash to a reversible marker and tokens are opaque handles
// into an in-memory claims map, so tests avoid real crypto cost.
type MockAuthAdapter struct {
	mu     sync.Mutex
	tokens map[string]*domain.TokenClaims

	GenerateTokenFn func(claims *domain.TokenClaims) (string, error)
	ParseTokenFn    func(token string) (*domain.TokenClaims, error)
}

// NewMockAuthAdapter creates a new mock auth adapter
func NewMockAuthAdapter() *MockAuthAdapter {
	return &MockAuthAdapter{tokens: make(map[string]*domain.TokenClaims)}
}

func (m *MockAuthAdapter) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

func (m *MockAuthAdapter) VerifyPassword(password, hash string) bool {
	return hash == "hashed:"+password
}

func (m *MockAuthAdapter) GenerateToken(claims *domain.TokenClaims) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(claims)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	token := uuid.NewString()
	cp := *claims
	m.tokens[token] = &cp
	return token, nil
}

func (m *MockAuthAdapter) ParseToken(token string) (*domain.TokenClaims, error) {
	if m.ParseTokenFn != nil {
		return m.ParseTokenFn(token)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	claims, ok := m.tokens[token]
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	if time.Now().After(claims.ExpiresAt) {
		return nil, domain.ErrTokenExpired
	}
	cp := *claims
	return &cp, nil
}
