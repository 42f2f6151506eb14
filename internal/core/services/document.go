package services

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
	"github.com/fieldline-labs/spechub-core/internal/core/ports/driven"
	"github.com/fieldline-labs/spechub-core/internal/core/ports/driving"
)

// Ensure documentService implements DocumentService
var _ driving.DocumentService = (*documentService)(nil)

// documentService implements the DocumentService interface
type documentService struct {
	documents driven.DocumentStore
	logger    *slog.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(documents driven.DocumentStore, logger *slog.Logger) driving.DocumentService {
	return &documentService{documents: documents, logger: logger}
}

// List returns every document with its chunk and table counts
func (s *documentService) List(ctx context.Context) ([]*domain.DocumentSummary, error) {
	summaries, err := s.documents.ListSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return summaries, nil
}

// Get returns a single document by ID
func (s *documentService) Get(ctx context.Context, id int64) (*domain.Document, error) {
	doc, err := s.documents.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get document %d: %w", id, err)
	}
	return doc, nil
}
