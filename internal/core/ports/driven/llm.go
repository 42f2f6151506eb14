package driven

import (
	"context"
)

// Message roles accepted by Chat
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// LLMMessage is one turn of a chat exchange
type LLMMessage struct {
	Role    string
	Content string
}

// LLMService provides answer synthesis. Failures surface as
// *domain.LLMError carrying the provider and an error code; callers are
// expected to fall back to deterministic answers rather than retry.
type LLMService interface {
	// Chat sends messages and returns the model's reply text
	Chat(ctx context.Context, messages []LLMMessage) (string, error)

	// Provider returns the configured provider name
	Provider() string

	// Model returns the model name being used
	Model() string

	// Close releases resources held by the LLM service
	Close() error
}
