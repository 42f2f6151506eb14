package mocks

import (
	"context"
	"sync"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
	"github.com/fieldline-labs/spechub-core/internal/core/ports/driven"
)

// MockLexicalIndex is a mock implementation of LexicalIndex for testing.
// Search returns canned hits; set SearchFn to vary results per query.
type MockLexicalIndex struct {
	mu      sync.Mutex
	Hits    []*domain.Hit
	ready   bool
	Queries []string

	SearchFn  func(query string, k int, filter domain.ScopeFilter, opts driven.LexicalSearchOptions) ([]*domain.Hit, error)
	RebuildFn func(hits []*domain.Hit) error
}

// NewMockLexicalIndex creates a new mock lexical index
func NewMockLexicalIndex() *MockLexicalIndex {
	return &MockLexicalIndex{ready: true}
}

func (m *MockLexicalIndex) Search(ctx context.Context, query string, k int, filter domain.ScopeFilter, opts driven.LexicalSearchOptions) ([]*domain.Hit, error) {
	m.mu.Lock()
	m.Queries = append(m.Queries, query)
	m.mu.Unlock()
	if m.SearchFn != nil {
		return m.SearchFn(query, k, filter, opts)
	}
	return copyHits(m.Hits, k, filter, opts.MinEquationScore), nil
}

func (m *MockLexicalIndex) Rebuild(ctx context.Context, hits []*domain.Hit) error {
	if m.RebuildFn != nil {
		return m.RebuildFn(hits)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Hits = append([]*domain.Hit(nil), hits...)
	m.ready = true
	return nil
}

func (m *MockLexicalIndex) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

// MockVectorIndex is a mock implementation of VectorIndex for testing
type MockVectorIndex struct {
	mu   sync.Mutex
	Hits []*domain.Hit

	SearchFn  func(vector []float32, k int, filter domain.ScopeFilter, minEquationScore float64) ([]*domain.Hit, error)
	RebuildFn func(hits []*domain.Hit, embeddings [][]float32) error
}

// NewMockVectorIndex creates a new mock vector index
func NewMockVectorIndex() *MockVectorIndex {
	return &MockVectorIndex{}
}

func (m *MockVectorIndex) Search(ctx context.Context, vector []float32, k int, filter domain.ScopeFilter, minEquationScore float64) ([]*domain.Hit, error) {
	if m.SearchFn != nil {
		return m.SearchFn(vector, k, filter, minEquationScore)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyHits(m.Hits, k, filter, minEquationScore), nil
}

func (m *MockVectorIndex) Rebuild(ctx context.Context, hits []*domain.Hit, embeddings [][]float32) error {
	if m.RebuildFn != nil {
		return m.RebuildFn(hits, embeddings)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Hits = append([]*domain.Hit(nil), hits...)
	return nil
}

func copyHits(hits []*domain.Hit, k int, filter domain.ScopeFilter, minEquationScore float64) []*domain.Hit {
	var out []*domain.Hit
	for _, h := range hits {
		if !filter.Allows(h.DocType, h.MPID) {
			continue
		}
		if minEquationScore > 0 && h.EquationScore < minEquationScore {
			continue
		}
		cp := *h
		out = append(out, &cp)
		if k > 0 && len(out) >= k {
			break
		}
	}
	return out
}
