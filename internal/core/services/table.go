package services

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
	"github.com/fieldline-labs/spechub-core/internal/core/ports/driven"
	"github.com/fieldline-labs/spechub-core/internal/core/ports/driving"
)

// Ensure tableService implements TableService
var _ driving.TableService = (*tableService)(nil)

const (
	// tableRowsMaxLimit bounds one page of table rows
	tableRowsMaxLimit = 80
)

// tableService exposes extracted tables for the viewer panel
type tableService struct {
	tables driven.TableStore
	logger *slog.Logger
}

// NewTableService creates a new TableService
func NewTableService(tables driven.TableStore, logger *slog.Logger) driving.TableService {
	return &tableService{tables: tables, logger: logger}
}

// Meta returns a table joined with its document metadata
func (s *tableService) Meta(ctx context.Context, tableUID string) (*domain.TableMeta, error) {
	if tableUID == "" {
		return nil, fmt.Errorf("%w: table uid required", domain.ErrInvalidInput)
	}
	meta, err := s.tables.GetMeta(ctx, tableUID)
	if err != nil {
		return nil, fmt.Errorf("get table %s: %w", tableUID, err)
	}
	return meta, nil
}

// Rows returns one page of raw rows plus the display-shaped rendering.
// Limit is clamped into [1, 80] and defaults to the maximum.
func (s *tableService) Rows(ctx context.Context, tableUID string, limit, offset int) (*domain.TableRowsPage, error) {
	if tableUID == "" {
		return nil, fmt.Errorf("%w: table uid required", domain.ErrInvalidInput)
	}
	if limit <= 0 || limit > tableRowsMaxLimit {
		limit = tableRowsMaxLimit
	}
	if offset < 0 {
		offset = 0
	}

	total, err := s.tables.CountRows(ctx, tableUID)
	if err != nil {
		return nil, fmt.Errorf("count rows for table %s: %w", tableUID, err)
	}
	rows, err := s.tables.GetRows(ctx, tableUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("get rows for table %s: %w", tableUID, err)
	}

	page := &domain.TableRowsPage{
		TableUID: tableUID,
		Offset:   offset,
		Limit:    limit,
		Total:    total,
		Rows:     rows,
		Rendered: domain.BuildRenderRows(rows, limit),
	}
	if offset+len(rows) < total {
		next := offset + len(rows)
		page.NextOffset = &next
	}
	return page, nil
}
