package mocks

import (
	"context"
	"hash/fnv"
	"math"
	"sync"

	"github.com/fieldline-labs/spechub-core/internal/core/ports/driven"
)

// MockEmbeddingService is a mock implementation of EmbeddingService for
// testing. It produces deterministic unit vectors derived from the text
// so equal texts embed equally and distinct texts (almost always) do not.
type MockEmbeddingService struct {
	mu         sync.Mutex
	Dims       int
	Embedded   []string
	CloseCalls int

	EmbedFn func(texts []string) ([][]float32, error)
}

// NewMockEmbeddingService creates a new mock embedding service
func NewMockEmbeddingService() *MockEmbeddingService {
	return &MockEmbeddingService{Dims: 8}
}

func (m *MockEmbeddingService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if m.EmbedFn != nil {
		return m.EmbedFn(texts)
	}
	m.mu.Lock()
	m.Embedded = append(m.Embedded, texts...)
	m.mu.Unlock()
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *MockEmbeddingService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	vecs, err := m.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (m *MockEmbeddingService) Dimensions() int { return m.Dims }

func (m *MockEmbeddingService) Model() string { return "mock-embedding" }

func (m *MockEmbeddingService) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalls++
	return nil
}

func (m *MockEmbeddingService) vector(text string) []float32 {
	v := make([]float32, m.Dims)
	var norm float64
	for i := range v {
		h := fnv.New32a()
		h.Write([]byte{byte(i)})
		h.Write([]byte(text))
		v[i] = float32(h.Sum32()%1000)/1000 - 0.5
		norm += float64(v[i]) * float64(v[i])
	}
	if norm == 0 {
		v[0] = 1
		return v
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range v {
		v[i] *= scale
	}
	return v
}

// MockLLMService is a mock implementation of LLMService for testing
type MockLLMService struct {
	mu       sync.Mutex
	Response string
	Calls    [][]driven.LLMMessage

	ChatFn func(ctx context.Context, messages []driven.LLMMessage) (string, error)
}

// NewMockLLMService creates a new mock LLM service
func NewMockLLMService() *MockLLMService {
	return &MockLLMService{Response: "mock answer [1]"}
}

func (m *MockLLMService) Chat(ctx context.Context, messages []driven.LLMMessage) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, append([]driven.LLMMessage(nil), messages...))
	m.mu.Unlock()
	if m.ChatFn != nil {
		return m.ChatFn(ctx, messages)
	}
	return m.Response, nil
}

func (m *MockLLMService) Provider() string { return "mock" }

func (m *MockLLMService) Model() string { return "mock-llm" }

func (m *MockLLMService) Close() error { return nil }
