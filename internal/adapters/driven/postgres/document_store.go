package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
	"github.com/fieldline-labs/spechub-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore implements driven.DocumentStore using PostgreSQL
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Save creates or updates a document, keyed by filename
func (s *DocumentStore) Save(ctx context.Context, doc *domain.Document) error {
	query := `
		INSERT INTO documents (filename, display_name, doc_type, mp_id, content_hash, page_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (filename) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			doc_type = EXCLUDED.doc_type,
			mp_id = EXCLUDED.mp_id,
			content_hash = EXCLUDED.content_hash,
			page_count = EXCLUDED.page_count,
			updated_at = now()
		RETURNING id, created_at, updated_at
	`

	return s.db.QueryRowContext(ctx, query,
		doc.Filename,
		doc.DisplayName,
		doc.DocType,
		NullString(doc.MPID),
		doc.ContentHash,
		doc.PageCount,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
}

// Get retrieves a document by ID
func (s *DocumentStore) Get(ctx context.Context, id int64) (*domain.Document, error) {
	query := `
		SELECT id, filename, display_name, doc_type, mp_id, content_hash, page_count, created_at, updated_at
		FROM documents
		WHERE id = $1
	`
	return scanDocument(s.db.QueryRowContext(ctx, query, id))
}

// GetByFilename retrieves a document by its source filename
func (s *DocumentStore) GetByFilename(ctx context.Context, filename string) (*domain.Document, error) {
	query := `
		SELECT id, filename, display_name, doc_type, mp_id, content_hash, page_count, created_at, updated_at
		FROM documents
		WHERE filename = $1
	`
	return scanDocument(s.db.QueryRowContext(ctx, query, filename))
}

// List retrieves all documents ordered by ID
func (s *DocumentStore) List(ctx context.Context) ([]*domain.Document, error) {
	query := `
		SELECT id, filename, display_name, doc_type, mp_id, content_hash, page_count, created_at, updated_at
		FROM documents
		ORDER BY id ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		doc, err := scanDocumentRow(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// ListSummaries retrieves all documents with chunk and table counts
func (s *DocumentStore) ListSummaries(ctx context.Context) ([]*domain.DocumentSummary, error) {
	query := `
		SELECT d.id, d.filename, d.display_name, d.doc_type, d.mp_id, d.content_hash, d.page_count,
		       d.created_at, d.updated_at,
		       (SELECT COUNT(*) FROM chunks c WHERE c.document_id = d.id) AS chunk_count,
		       (SELECT COUNT(*) FROM tables t WHERE t.document_id = d.id) AS table_count
		FROM documents d
		ORDER BY d.id ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.DocumentSummary
	for rows.Next() {
		var sum domain.DocumentSummary
		var mpID sql.NullString
		err := rows.Scan(
			&sum.ID,
			&sum.Filename,
			&sum.DisplayName,
			&sum.DocType,
			&mpID,
			&sum.ContentHash,
			&sum.PageCount,
			&sum.CreatedAt,
			&sum.UpdatedAt,
			&sum.ChunkCount,
			&sum.TableCount,
		)
		if err != nil {
			return nil, err
		}
		sum.MPID = StringPtr(mpID)
		out = append(out, &sum)
	}
	return out, rows.Err()
}

// Delete removes a document; pages, chunks, tables and rows cascade
func (s *DocumentStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row *sql.Row) (*domain.Document, error) {
	doc, err := scanDocumentRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return doc, err
}

func scanDocumentRow(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var mpID sql.NullString
	err := row.Scan(
		&doc.ID,
		&doc.Filename,
		&doc.DisplayName,
		&doc.DocType,
		&mpID,
		&doc.ContentHash,
		&doc.PageCount,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.MPID = StringPtr(mpID)
	return &doc, nil
}

// Verify interface compliance
var _ driven.PageStore = (*PageStore)(nil)

// PageStore implements driven.PageStore using PostgreSQL
type PageStore struct {
	db *DB
}

// NewPageStore creates a new PageStore
func NewPageStore(db *DB) *PageStore {
	return &PageStore{db: db}
}

// ReplaceForDocument swaps all pages of a document in one transaction
func (s *PageStore) ReplaceForDocument(ctx context.Context, documentID int64, pages []*domain.Page) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM pages WHERE document_id = $1`, documentID); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO pages (document_id, page_number, raw_text)
			VALUES ($1, $2, $3)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, p := range pages {
			if _, err := stmt.ExecContext(ctx, documentID, p.PageNumber, p.RawText); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByDocument retrieves a document's pages ordered by page number
func (s *PageStore) GetByDocument(ctx context.Context, documentID int64) ([]*domain.Page, error) {
	query := `
		SELECT document_id, page_number, raw_text
		FROM pages
		WHERE document_id = $1
		ORDER BY page_number ASC
	`

	rows, err := s.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []*domain.Page
	for rows.Next() {
		var p domain.Page
		if err := rows.Scan(&p.DocumentID, &p.PageNumber, &p.RawText); err != nil {
			return nil, err
		}
		pages = append(pages, &p)
	}
	return pages, rows.Err()
}
