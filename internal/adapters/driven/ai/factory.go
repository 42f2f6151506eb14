package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
	"github.com/fieldline-labs/spechub-core/internal/core/ports/driven"
)

// Supported provider names
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// EmbeddingConfig selects and configures an embedding provider. An
// empty provider disables embeddings; retrieval then runs lexical-only.
type EmbeddingConfig struct {
	Provider   string
	APIKey     string
	Model      string
	BaseURL    string
	Dimensions int
}

// LLMConfig selects and configures a chat provider. An empty provider
// disables synthesis; answers then come from the deterministic paths.
type LLMConfig struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// NewEmbeddingService creates an embedding service for the configured
// provider
func NewEmbeddingService(cfg EmbeddingConfig) (driven.EmbeddingService, error) {
	switch cfg.Provider {
	case "":
		return &disabledEmbedding{}, nil
	case ProviderOpenAI:
		return NewOpenAIEmbedding(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case ProviderOllama:
		return NewOllamaEmbedding(cfg.BaseURL, cfg.Model, cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

// NewLLMService creates an LLM service for the configured provider
func NewLLMService(cfg LLMConfig) (driven.LLMService, error) {
	switch cfg.Provider {
	case "":
		return &disabledLLM{}, nil
	case ProviderOpenAI:
		return NewOpenAILLM(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case ProviderOllama:
		return NewOllamaLLM(cfg.BaseURL, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// disabledEmbedding stands in when no embedding provider is configured.
// Every call fails with ErrServiceUnavailable, which search treats as a
// signal to degrade to lexical-only retrieval.
type disabledEmbedding struct{}

var _ driven.EmbeddingService = (*disabledEmbedding)(nil)

func (*disabledEmbedding) Embed(context.Context, []string) ([][]float32, error) {
	return nil, fmt.Errorf("embeddings not configured: %w", domain.ErrServiceUnavailable)
}

func (*disabledEmbedding) EmbedQuery(context.Context, string) ([]float32, error) {
	return nil, fmt.Errorf("embeddings not configured: %w", domain.ErrServiceUnavailable)
}

func (*disabledEmbedding) Dimensions() int { return 0 }
func (*disabledEmbedding) Model() string   { return "disabled" }
func (*disabledEmbedding) Close() error    { return nil }

// disabledLLM stands in when no chat provider is configured. Chat fails
// with an LLMError, which the ask flow answers around deterministically.
type disabledLLM struct{}

var _ driven.LLMService = (*disabledLLM)(nil)

func (*disabledLLM) Chat(context.Context, []driven.LLMMessage) (string, error) {
	return "", &domain.LLMError{
		Provider: "disabled",
		Code:     "not_configured",
		Err:      errors.New("no llm provider configured"),
	}
}

func (*disabledLLM) Provider() string { return "disabled" }
func (*disabledLLM) Model() string    { return "disabled" }
func (*disabledLLM) Close() error     { return nil }
