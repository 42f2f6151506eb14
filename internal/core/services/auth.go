package services

import (
	"context"
	"errors"
	"time"

	"log/slog"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
	"github.com/fieldline-labs/spechub-core/internal/core/ports/driven"
	"github.com/fieldline-labs/spechub-core/internal/core/ports/driving"
)

// Ensure authService implements AuthService
var _ driving.AuthService = (*authService)(nil)

const defaultTokenTTL = 24 * time.Hour

// authService issues and validates stateless bearer tokens. There is no
// session store: a token is valid until it expires.
type authService struct {
	users    driven.UserStore
	auth     driven.AuthAdapter
	tokenTTL time.Duration
	logger   *slog.Logger
}

// NewAuthService creates a new AuthService. A non-positive tokenTTL
// falls back to 24 hours.
func NewAuthService(users driven.UserStore, auth driven.AuthAdapter, tokenTTL time.Duration, logger *slog.Logger) driving.AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &authService{users: users, auth: auth, tokenTTL: tokenTTL, logger: logger}
}

// Authenticate validates credentials and issues a signed token
func (s *authService) Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		// Same error for unknown email and wrong password
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, domain.ErrUnauthorized
	}
	if !s.auth.VerifyPassword(req.Password, user.PasswordHash) {
		s.logger.Warn("failed login attempt", "email", req.Email)
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)
	token, err := s.auth.GenerateToken(&domain.TokenClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return nil, err
	}

	return &domain.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.Summary(),
	}, nil
}

// ValidateToken parses a bearer token and returns the auth context
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error) {
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}

	claims, err := s.auth.ParseToken(token)
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	if time.Now().After(claims.ExpiresAt) {
		return nil, domain.ErrTokenExpired
	}

	return &domain.AuthContext{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}
