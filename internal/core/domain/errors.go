package domain

import (
	"errors"
	"fmt"
)

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the user lacks permission for this action
	ErrForbidden = errors.New("forbidden")

	// ErrRebuildInProgress indicates an index rebuild is already running
	ErrRebuildInProgress = errors.New("index rebuild already in progress")

	// ErrIndexNotReady indicates no index artifact has been built yet
	ErrIndexNotReady = errors.New("index not ready")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrInvalidCredentials indicates wrong email/password combination
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrServiceUnavailable indicates an external service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")
)

// LLMError is a typed failure from the language-model provider. The
// provider code survives wrapping so callers can log it while still
// falling back to deterministic answers.
type LLMError struct {
	Provider string
	Code     string
	Err      error
}

func (e *LLMError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("llm %s: %s: %v", e.Provider, e.Code, e.Err)
	}
	return fmt.Sprintf("llm %s: %v", e.Provider, e.Err)
}

func (e *LLMError) Unwrap() error { return e.Err }
