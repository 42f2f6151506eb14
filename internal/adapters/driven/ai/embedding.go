// Package ai implements the embedding and LLM ports on langchaingo
// provider clients.
package ai

import (
	"context"
	"fmt"
	"math"

	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/fieldline-labs/spechub-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.EmbeddingService = (*Embedding)(nil)

// embeddingClient is the slice of the langchaingo client API used here.
// Both the OpenAI and Ollama clients satisfy it.
type embeddingClient interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// Output dimensions for known OpenAI embedding models
var openAIEmbeddingDims = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Output dimensions for common Ollama embedding models
var ollamaEmbeddingDims = map[string]int{
	"nomic-embed-text":  768,
	"mxbai-embed-large": 1024,
	"all-minilm":        384,
}

// Embedding implements driven.EmbeddingService. Vectors are
// L2-normalized before they are returned so inner product distance in
// the vector index behaves as cosine similarity.
type Embedding struct {
	provider string
	model    string
	dims     int
	client   embeddingClient
}

// NewOpenAIEmbedding creates an embedding service backed by the OpenAI
// embeddings API. An empty baseURL uses the public endpoint.
func NewOpenAIEmbedding(apiKey, model, baseURL string) (driven.EmbeddingService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = "text-embedding-3-small"
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithEmbeddingModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}

	dims, ok := openAIEmbeddingDims[model]
	if !ok {
		dims = 1536
	}
	return &Embedding{provider: "openai", model: model, dims: dims, client: client}, nil
}

// NewOllamaEmbedding creates an embedding service backed by a local
// Ollama server. dims overrides the model lookup for models not in the
// table; zero uses the lookup.
func NewOllamaEmbedding(baseURL, model string, dims int) (driven.EmbeddingService, error) {
	if model == "" {
		model = "nomic-embed-text"
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	client, err := ollama.New(ollama.WithModel(model), ollama.WithServerURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}

	if dims <= 0 {
		var ok bool
		dims, ok = ollamaEmbeddingDims[model]
		if !ok {
			dims = 768
		}
	}
	return &Embedding{provider: "ollama", model: model, dims: dims, client: client}, nil
}

// Embed generates normalized embeddings for multiple texts
func (e *Embedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors, err := e.client.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%s embeddings: %w", e.provider, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%s embeddings: got %d vectors for %d texts", e.provider, len(vectors), len(texts))
	}

	for _, vec := range vectors {
		l2Normalize(vec)
	}
	return vectors, nil
}

// EmbedQuery generates a normalized embedding for a search query
func (e *Embedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}
	return vectors[0], nil
}

// Dimensions returns the embedding dimension size
func (e *Embedding) Dimensions() int {
	return e.dims
}

// Model returns the model name being used
func (e *Embedding) Model() string {
	return e.model
}

// Close releases resources held by the embedding service
func (e *Embedding) Close() error {
	return nil
}

// l2Normalize scales vec to unit length in place. Zero vectors are
// left untouched.
func l2Normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}
