package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
)

// MockDocumentStore is a mock implementation of DocumentStore for testing
type MockDocumentStore struct {
	mu     sync.RWMutex
	docs   map[int64]*domain.Document
	nextID int64

	SaveFn func(doc *domain.Document) error
	ListFn func() ([]*domain.Document, error)
}

// NewMockDocumentStore creates a new mock document store
func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{docs: make(map[int64]*domain.Document), nextID: 1}
}

func (m *MockDocumentStore) Save(ctx context.Context, doc *domain.Document) error {
	if m.SaveFn != nil {
		return m.SaveFn(doc)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc.ID == 0 {
		doc.ID = m.nextID
		m.nextID++
	}
	cp := *doc
	m.docs[doc.ID] = &cp
	return nil
}

func (m *MockDocumentStore) Get(ctx context.Context, id int64) (*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (m *MockDocumentStore) GetByFilename(ctx context.Context, filename string) (*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, doc := range m.docs {
		if doc.Filename == filename {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockDocumentStore) List(ctx context.Context) ([]*domain.Document, error) {
	if m.ListFn != nil {
		return m.ListFn()
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Document, 0, len(m.docs))
	for _, doc := range m.docs {
		cp := *doc
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockDocumentStore) ListSummaries(ctx context.Context) ([]*domain.DocumentSummary, error) {
	docs, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.DocumentSummary, 0, len(docs))
	for _, doc := range docs {
		out = append(out, &domain.DocumentSummary{Document: *doc})
	}
	return out, nil
}

func (m *MockDocumentStore) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

// MockPageStore is a mock implementation of PageStore for testing
type MockPageStore struct {
	mu    sync.RWMutex
	Pages map[int64][]*domain.Page

	GetByDocumentFn func(documentID int64) ([]*domain.Page, error)
}

// NewMockPageStore creates a new mock page store
func NewMockPageStore() *MockPageStore {
	return &MockPageStore{Pages: make(map[int64][]*domain.Page)}
}

func (m *MockPageStore) ReplaceForDocument(ctx context.Context, documentID int64, pages []*domain.Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Pages[documentID] = append([]*domain.Page(nil), pages...)
	return nil
}

func (m *MockPageStore) GetByDocument(ctx context.Context, documentID int64) ([]*domain.Page, error) {
	if m.GetByDocumentFn != nil {
		return m.GetByDocumentFn(documentID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]*domain.Page(nil), m.Pages[documentID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].PageNumber < out[j].PageNumber })
	return out, nil
}
