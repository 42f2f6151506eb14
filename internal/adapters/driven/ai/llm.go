package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
	"github.com/fieldline-labs/spechub-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.LLMService = (*LLM)(nil)

// Answers are grounded in retrieved text, so sampling stays near-greedy
const defaultTemperature = 0.1

// LLM implements driven.LLMService on any langchaingo chat model.
// Failures are reported as *domain.LLMError so callers can fall back
// to deterministic answers.
type LLM struct {
	provider string
	model    string
	client   llms.Model
}

// NewOpenAILLM creates an LLM service backed by the OpenAI chat API.
// An empty baseURL uses the public endpoint.
func NewOpenAILLM(apiKey, model, baseURL string) (driven.LLMService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	return &LLM{provider: "openai", model: model, client: client}, nil
}

// NewOllamaLLM creates an LLM service backed by a local Ollama server
func NewOllamaLLM(baseURL, model string) (driven.LLMService, error) {
	if model == "" {
		model = "llama3.1:latest"
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	client, err := ollama.New(ollama.WithModel(model), ollama.WithServerURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}
	return &LLM{provider: "ollama", model: model, client: client}, nil
}

// Chat sends messages and returns the model's reply text
func (l *LLM) Chat(ctx context.Context, messages []driven.LLMMessage) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		var role llms.ChatMessageType
		switch m.Role {
		case driven.RoleSystem:
			role = llms.ChatMessageTypeSystem
		case driven.RoleAssistant:
			role = llms.ChatMessageTypeAI
		default:
			role = llms.ChatMessageTypeHuman
		}
		content = append(content, llms.TextParts(role, m.Content))
	}

	resp, err := l.client.GenerateContent(ctx, content, llms.WithTemperature(defaultTemperature))
	if err != nil {
		return "", &domain.LLMError{Provider: l.provider, Err: err}
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", &domain.LLMError{
			Provider: l.provider,
			Code:     "empty_response",
			Err:      errors.New("no completion choices returned"),
		}
	}

	reply := strings.TrimSpace(resp.Choices[0].Content)
	if reply == "" {
		return "", &domain.LLMError{
			Provider: l.provider,
			Code:     "empty_response",
			Err:      errors.New("completion was empty"),
		}
	}
	return reply, nil
}

// Provider returns the configured provider name
func (l *LLM) Provider() string {
	return l.provider
}

// Model returns the model name being used
func (l *LLM) Model() string {
	return l.model
}

// Close releases resources held by the LLM service
func (l *LLM) Close() error {
	return nil
}
