package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
	"github.com/fieldline-labs/spechub-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TableStore = (*TableStore)(nil)

// TableStore implements driven.TableStore using PostgreSQL
type TableStore struct {
	db *DB
}

// NewTableStore creates a new TableStore
func NewTableStore(db *DB) *TableStore {
	return &TableStore{db: db}
}

// ReplaceForDocument deletes and reinserts a document's tables and rows
func (s *TableStore) ReplaceForDocument(ctx context.Context, documentID int64, tables []*domain.Table, rows []*domain.TableRow) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		// table_rows cascade from tables
		if _, err := tx.ExecContext(ctx, `DELETE FROM tables WHERE document_id = $1`, documentID); err != nil {
			return err
		}

		tableStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO tables (table_uid, document_id, page_number, table_index_on_page, section_id, table_label, row_count)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`)
		if err != nil {
			return err
		}
		defer tableStmt.Close()

		for _, t := range tables {
			_, err := tableStmt.ExecContext(ctx,
				t.TableUID,
				documentID,
				t.PageNumber,
				t.TableIndexOnPage,
				NullString(t.SectionID),
				t.TableLabel,
				t.RowCount,
			)
			if err != nil {
				return err
			}
		}

		rowStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO table_rows (table_uid, row_index, row_text)
			VALUES ($1, $2, $3)
		`)
		if err != nil {
			return err
		}
		defer rowStmt.Close()

		for _, r := range rows {
			if _, err := rowStmt.ExecContext(ctx, r.TableUID, r.RowIndex, r.RowText); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetMeta retrieves a table joined with its document metadata
func (s *TableStore) GetMeta(ctx context.Context, tableUID string) (*domain.TableMeta, error) {
	query := `
		SELECT t.table_uid, t.document_id, t.page_number, t.table_index_on_page,
		       t.section_id, t.table_label, t.row_count,
		       d.filename, d.display_name, d.doc_type, d.mp_id
		FROM tables t
		JOIN documents d ON d.id = t.document_id
		WHERE t.table_uid = $1
	`

	var meta domain.TableMeta
	var sectionID, mpID sql.NullString
	err := s.db.QueryRowContext(ctx, query, tableUID).Scan(
		&meta.TableUID,
		&meta.DocumentID,
		&meta.PageNumber,
		&meta.TableIndexOnPage,
		&sectionID,
		&meta.TableLabel,
		&meta.RowCount,
		&meta.Filename,
		&meta.DisplayName,
		&meta.DocType,
		&mpID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	meta.SectionID = StringPtr(sectionID)
	meta.MPID = StringPtr(mpID)
	return &meta, nil
}

// GetRows retrieves rows ordered by row index
func (s *TableStore) GetRows(ctx context.Context, tableUID string, limit, offset int) ([]*domain.TableRow, error) {
	query := `
		SELECT table_uid, row_index, row_text
		FROM table_rows
		WHERE table_uid = $1
		ORDER BY row_index ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, tableUID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.TableRow
	for rows.Next() {
		var r domain.TableRow
		if err := rows.Scan(&r.TableUID, &r.RowIndex, &r.RowText); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// CountRows returns the number of rows stored for a table
func (s *TableStore) CountRows(ctx context.Context, tableUID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM table_rows WHERE table_uid = $1`, tableUID).Scan(&count)
	return count, err
}

// ListByPage returns a page's tables ordered by their index on the page
func (s *TableStore) ListByPage(ctx context.Context, documentID int64, pageNumber int) ([]*domain.Table, error) {
	query := `
		SELECT table_uid, document_id, page_number, table_index_on_page, section_id, table_label, row_count
		FROM tables
		WHERE document_id = $1 AND page_number = $2
		ORDER BY table_index_on_page ASC
	`

	rows, err := s.db.QueryContext(ctx, query, documentID, pageNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Table
	for rows.Next() {
		var t domain.Table
		var sectionID sql.NullString
		err := rows.Scan(
			&t.TableUID,
			&t.DocumentID,
			&t.PageNumber,
			&t.TableIndexOnPage,
			&sectionID,
			&t.TableLabel,
			&t.RowCount,
		)
		if err != nil {
			return nil, err
		}
		t.SectionID = StringPtr(sectionID)
		out = append(out, &t)
	}
	return out, rows.Err()
}

// RowsMatchingToken returns the distinct candidate table UIDs with a row
// containing the token
func (s *TableStore) RowsMatchingToken(ctx context.Context, tableUIDs []string, token string) ([]string, error) {
	if len(tableUIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT DISTINCT table_uid
		FROM table_rows
		WHERE table_uid = ANY($1) AND row_text LIKE '%' || $2 || '%'
	`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(tableUIDs), token)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		out = append(out, uid)
	}
	return out, rows.Err()
}
