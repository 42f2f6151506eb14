package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
	"github.com/fieldline-labs/spechub-core/internal/core/ports/driven/mocks"
	"github.com/fieldline-labs/spechub-core/internal/core/ports/driving"
)

func newAuthFixture(t *testing.T) (*mocks.MockUserStore, *mocks.MockAuthAdapter, func() driving.AuthService) {
	t.Helper()
	users := mocks.NewMockUserStore()
	adapter := mocks.NewMockAuthAdapter()
	return users, adapter, func() driving.AuthService {
		return NewAuthService(users, adapter, 0, testLogger())
	}
}

func seedUser(t *testing.T, users *mocks.MockUserStore, adapter *mocks.MockAuthAdapter, email, password string, active bool) *domain.User {
	t.Helper()
	hash, err := adapter.HashPassword(password)
	require.NoError(t, err)
	user := &domain.User{
		ID:           "user-" + email,
		Email:        email,
		Name:         "Test User",
		PasswordHash: hash,
		Role:         domain.RoleMember,
		Active:       active,
	}
	require.NoError(t, users.Save(context.Background(), user))
	return user
}

func TestAuthenticate_IssuesToken(t *testing.T) {
	users, adapter, build := newAuthFixture(t)
	seedUser(t, users, adapter, "eng@example.com", "correct-horse", true)
	svc := build()

	resp, err := svc.Authenticate(context.Background(), domain.LoginRequest{
		Email: "eng@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "eng@example.com", resp.User.Email)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), resp.ExpiresAt, time.Minute)

	authCtx, err := svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-eng@example.com", authCtx.UserID)
	assert.Equal(t, domain.RoleMember, authCtx.Role)
	assert.False(t, authCtx.IsAdmin())
}

func TestAuthenticate_RejectsEmptyInput(t *testing.T) {
	_, _, build := newAuthFixture(t)
	svc := build()

	_, err := svc.Authenticate(context.Background(), domain.LoginRequest{Email: "eng@example.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAuthenticate_UnknownEmail(t *testing.T) {
	_, _, build := newAuthFixture(t)
	svc := build()

	_, err := svc.Authenticate(context.Background(), domain.LoginRequest{
		Email: "nobody@example.com", Password: "whatever",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	users, adapter, build := newAuthFixture(t)
	seedUser(t, users, adapter, "eng@example.com", "correct-horse", true)
	svc := build()

	_, err := svc.Authenticate(context.Background(), domain.LoginRequest{
		Email: "eng@example.com", Password: "battery-staple",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticate_InactiveUser(t *testing.T) {
	users, adapter, build := newAuthFixture(t)
	seedUser(t, users, adapter, "gone@example.com", "correct-horse", false)
	svc := build()

	_, err := svc.Authenticate(context.Background(), domain.LoginRequest{
		Email: "gone@example.com", Password: "correct-horse",
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestValidateToken_Invalid(t *testing.T) {
	_, _, build := newAuthFixture(t)
	svc := build()

	_, err := svc.ValidateToken(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	_, err = svc.ValidateToken(context.Background(), "not-a-real-token")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestValidateToken_Expired(t *testing.T) {
	users, adapter, build := newAuthFixture(t)
	_ = users
	adapter.ParseTokenFn = func(token string) (*domain.TokenClaims, error) {
		return &domain.TokenClaims{
			UserID:    "user-1",
			Email:     "eng@example.com",
			Role:      domain.RoleMember,
			IssuedAt:  time.Now().Add(-48 * time.Hour),
			ExpiresAt: time.Now().Add(-24 * time.Hour),
		}, nil
	}
	svc := build()

	_, err := svc.ValidateToken(context.Background(), "stale-token")
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}
