package mocks

import (
	"context"
	"strings"
	"sync"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
)

// MockChunkStore is a mock implementation of ChunkStore for testing.
// It serves section and table-token fetches from an in-memory hit list
// and supports custom behavior injection per method.
type MockChunkStore struct {
	mu sync.RWMutex

	// Hits is the backing data for the Fetch* methods. Each entry needs
	// Text set for GetTextByIDs hydration.
	Hits   []*domain.Hit
	Chunks []*domain.Chunk
	nextID int64

	Linked map[int64]string // chunk id -> table uid set by LinkTable

	FetchExactSectionFn        func(sectionID string, filter domain.ScopeFilter, limit int) ([]*domain.Hit, error)
	FetchSectionWithChildrenFn func(sectionID string, filter domain.ScopeFilter, limit int) ([]*domain.Hit, error)
	FetchSectionPrefixFn       func(prefix string, filter domain.ScopeFilter, limit int) ([]*domain.Hit, error)
	FetchTableTokenFn          func(token string, filter domain.ScopeFilter, limit int) ([]*domain.Hit, error)
	ListForIndexFn             func() ([]*domain.Hit, error)
	ReplaceForDocumentFn       func(documentID int64, chunks []*domain.Chunk) error
}

// NewMockChunkStore creates a new mock chunk store
func NewMockChunkStore() *MockChunkStore {
	return &MockChunkStore{Linked: make(map[int64]string)}
}

func (m *MockChunkStore) ReplaceForDocument(ctx context.Context, documentID int64, chunks []*domain.Chunk) error {
	if m.ReplaceForDocumentFn != nil {
		return m.ReplaceForDocumentFn(documentID, chunks)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.Chunks[:0]
	for _, c := range m.Chunks {
		if c.DocumentID != documentID {
			kept = append(kept, c)
		}
	}
	for _, c := range chunks {
		if c.ID == 0 {
			m.nextID++
			c.ID = m.nextID
		}
	}
	m.Chunks = append(kept, chunks...)
	return nil
}

func (m *MockChunkStore) GetTextByIDs(ctx context.Context, ids []int64) (map[int64]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make(map[int64]string)
	for _, h := range m.Hits {
		if _, ok := want[h.ChunkID]; ok && h.Text != "" {
			out[h.ChunkID] = h.Text
		}
	}
	return out, nil
}

func (m *MockChunkStore) FetchExactSection(ctx context.Context, sectionID string, filter domain.ScopeFilter, limit int) ([]*domain.Hit, error) {
	if m.FetchExactSectionFn != nil {
		return m.FetchExactSectionFn(sectionID, filter, limit)
	}
	return m.filterHits(filter, limit, func(h *domain.Hit) bool {
		return h.SectionID != nil && *h.SectionID == sectionID
	}), nil
}

func (m *MockChunkStore) FetchSectionWithChildren(ctx context.Context, sectionID string, filter domain.ScopeFilter, limit int) ([]*domain.Hit, error) {
	if m.FetchSectionWithChildrenFn != nil {
		return m.FetchSectionWithChildrenFn(sectionID, filter, limit)
	}
	return m.filterHits(filter, limit, func(h *domain.Hit) bool {
		return h.SectionID != nil &&
			(*h.SectionID == sectionID || strings.HasPrefix(*h.SectionID, sectionID+"."))
	}), nil
}

func (m *MockChunkStore) FetchSectionPrefix(ctx context.Context, prefix string, filter domain.ScopeFilter, limit int) ([]*domain.Hit, error) {
	if m.FetchSectionPrefixFn != nil {
		return m.FetchSectionPrefixFn(prefix, filter, limit)
	}
	return m.filterHits(filter, limit, func(h *domain.Hit) bool {
		return h.SectionID != nil &&
			(*h.SectionID == prefix || strings.HasPrefix(*h.SectionID, prefix+"."))
	}), nil
}

func (m *MockChunkStore) FetchTableToken(ctx context.Context, token string, filter domain.ScopeFilter, limit int) ([]*domain.Hit, error) {
	if m.FetchTableTokenFn != nil {
		return m.FetchTableTokenFn(token, filter, limit)
	}
	normalized := domain.NormalizeTableText(token)
	return m.filterHits(filter, limit, func(h *domain.Hit) bool {
		if h.ChunkKind != domain.ChunkKindTableRow || h.TableUID == nil {
			return false
		}
		blob := h.Text + " " + h.Snippet
		if h.Heading != nil {
			blob += " " + *h.Heading
		}
		if h.TableLabel != nil {
			blob += " " + *h.TableLabel
		}
		return strings.Contains(domain.NormalizeTableText(blob), normalized)
	}), nil
}

func (m *MockChunkStore) ListLinkCandidates(ctx context.Context, documentID int64) ([]*domain.Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Chunk
	for _, c := range m.Chunks {
		if c.DocumentID != documentID || c.TableUID != nil {
			continue
		}
		if c.ChunkKind == domain.ChunkKindTOC || c.ChunkKind == domain.ChunkKindFrontMatter {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *MockChunkStore) LinkTable(ctx context.Context, chunkID int64, tableUID, tableLabel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Linked[chunkID] = tableUID
	for _, c := range m.Chunks {
		if c.ID == chunkID {
			uid, label := tableUID, tableLabel
			c.TableUID = &uid
			c.TableLabel = &label
		}
	}
	return nil
}

func (m *MockChunkStore) ListForIndex(ctx context.Context) ([]*domain.Hit, error) {
	if m.ListForIndexFn != nil {
		return m.ListForIndexFn()
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.Hit(nil), m.Hits...), nil
}

func (m *MockChunkStore) filterHits(filter domain.ScopeFilter, limit int, keep func(*domain.Hit) bool) []*domain.Hit {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Hit
	for _, h := range m.Hits {
		if h.ChunkKind == domain.ChunkKindTOC || h.ChunkKind == domain.ChunkKindFrontMatter {
			continue
		}
		if !filter.Allows(h.DocType, h.MPID) || !keep(h) {
			continue
		}
		cp := *h
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
