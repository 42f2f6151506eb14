package mocks

import (
	"context"
	"strings"
	"sync"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
)

// MockTableStore is a mock implementation of TableStore for testing
type MockTableStore struct {
	mu     sync.RWMutex
	Tables map[string]*domain.TableMeta
	Rows   map[string][]*domain.TableRow

	GetMetaFn func(tableUID string) (*domain.TableMeta, error)
}

// NewMockTableStore creates a new mock table store
func NewMockTableStore() *MockTableStore {
	return &MockTableStore{
		Tables: make(map[string]*domain.TableMeta),
		Rows:   make(map[string][]*domain.TableRow),
	}
}

// AddTable seeds a table with rows
func (m *MockTableStore) AddTable(meta *domain.TableMeta, rows []*domain.TableRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	meta.RowCount = len(rows)
	m.Tables[meta.TableUID] = meta
	m.Rows[meta.TableUID] = rows
}

func (m *MockTableStore) ReplaceForDocument(ctx context.Context, documentID int64, tables []*domain.Table, rows []*domain.TableRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for uid, meta := range m.Tables {
		if meta.DocumentID == documentID {
			delete(m.Tables, uid)
			delete(m.Rows, uid)
		}
	}
	for _, t := range tables {
		m.Tables[t.TableUID] = &domain.TableMeta{Table: *t}
	}
	for _, r := range rows {
		m.Rows[r.TableUID] = append(m.Rows[r.TableUID], r)
	}
	return nil
}

func (m *MockTableStore) GetMeta(ctx context.Context, tableUID string) (*domain.TableMeta, error) {
	if m.GetMetaFn != nil {
		return m.GetMetaFn(tableUID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	meta, ok := m.Tables[tableUID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *meta
	cp.RowCount = len(m.Rows[tableUID])
	return &cp, nil
}

func (m *MockTableStore) GetRows(ctx context.Context, tableUID string, limit, offset int) ([]*domain.TableRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := m.Rows[tableUID]
	if offset >= len(rows) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end], nil
}

func (m *MockTableStore) CountRows(ctx context.Context, tableUID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Rows[tableUID]), nil
}

func (m *MockTableStore) ListByPage(ctx context.Context, documentID int64, pageNumber int) ([]*domain.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Table
	for _, meta := range m.Tables {
		if meta.DocumentID == documentID && meta.PageNumber == pageNumber {
			t := meta.Table
			out = append(out, &t)
		}
	}
	// keep page order stable for linking tests
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].TableIndexOnPage < out[i].TableIndexOnPage {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (m *MockTableStore) RowsMatchingToken(ctx context.Context, tableUIDs []string, token string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for _, uid := range tableUIDs {
		for _, r := range m.Rows[uid] {
			if strings.Contains(r.RowText, token) {
				out = append(out, uid)
				break
			}
		}
	}
	return out, nil
}
