package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
	"github.com/fieldline-labs/spechub-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore implements driven.ChunkStore using PostgreSQL.
// Embeddings live in the vector index, not here.
type ChunkStore struct {
	db *DB
}

// NewChunkStore creates a new ChunkStore
func NewChunkStore(db *DB) *ChunkStore {
	return &ChunkStore{db: db}
}

// hitColumns is the chunk/document join every Fetch* query selects
const hitColumns = `
	c.id, c.document_id, d.filename, d.display_name, d.doc_type, d.mp_id,
	c.section_id, c.heading, c.page_start, c.page_end,
	c.chunk_kind, c.equation_score, c.table_uid, c.table_label, c.table_row_index,
	c.text
`

// ReplaceForDocument deletes and reinserts a document's chunks.
// Assigned IDs are written back into the passed chunks.
func (s *ChunkStore) ReplaceForDocument(ctx context.Context, documentID int64, chunks []*domain.Chunk) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = $1`, documentID); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO chunks (document_id, chunk_index, section_id, heading, page_start, page_end,
			                    text, chunk_kind, equation_score, table_uid, table_row_index, table_label)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, c := range chunks {
			err := stmt.QueryRowContext(ctx,
				documentID,
				c.ChunkIndex,
				NullString(c.SectionID),
				NullString(c.Heading),
				c.PageStart,
				c.PageEnd,
				c.Text,
				c.ChunkKind,
				c.EquationScore,
				NullString(c.TableUID),
				NullInt(c.TableRowIndex),
				NullString(c.TableLabel),
			).Scan(&c.ID)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// GetTextByIDs hydrates full chunk text for snippet rebuilding
func (s *ChunkStore) GetTextByIDs(ctx context.Context, ids []int64) (map[int64]string, error) {
	if len(ids) == 0 {
		return map[int64]string{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text FROM chunks WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]string, len(ids))
	for rows.Next() {
		var id int64
		var text string
		if err := rows.Scan(&id, &text); err != nil {
			return nil, err
		}
		out[id] = text
	}
	return out, rows.Err()
}

// FetchExactSection returns chunks whose section_id equals sectionID
func (s *ChunkStore) FetchExactSection(ctx context.Context, sectionID string, filter domain.ScopeFilter, limit int) ([]*domain.Hit, error) {
	args := []any{sectionID}
	where := `c.section_id = $1`
	return s.fetchHits(ctx, where, filter, args, limit)
}

// FetchSectionWithChildren also matches child subsections (id.%)
func (s *ChunkStore) FetchSectionWithChildren(ctx context.Context, sectionID string, filter domain.ScopeFilter, limit int) ([]*domain.Hit, error) {
	args := []any{sectionID}
	where := `(c.section_id = $1 OR c.section_id LIKE $1 || '.%')`
	return s.fetchHits(ctx, where, filter, args, limit)
}

// FetchSectionPrefix matches a bare 3-digit prefix and everything under it
func (s *ChunkStore) FetchSectionPrefix(ctx context.Context, prefix string, filter domain.ScopeFilter, limit int) ([]*domain.Hit, error) {
	args := []any{prefix}
	where := `(c.section_id = $1 OR c.section_id LIKE $1 || '.%')`
	return s.fetchHits(ctx, where, filter, args, limit)
}

// FetchTableToken returns table_row chunks matching the normalized token.
// En and em dashes are folded to hyphens on both sides so "701.03.15–1"
// in the PDF matches the "701.03.15-1" a user types.
func (s *ChunkStore) FetchTableToken(ctx context.Context, token string, filter domain.ScopeFilter, limit int) ([]*domain.Hit, error) {
	args := []any{domain.NormalizeTableText(token)}
	where := `
		c.chunk_kind = 'table_row' AND c.table_uid IS NOT NULL AND
		replace(replace(lower(c.text || ' ' || coalesce(c.heading, '') || ' ' || coalesce(c.table_label, '')),
			'–', '-'), '—', '-') LIKE '%' || $1 || '%'
	`
	return s.fetchHits(ctx, where, filter, args, limit)
}

// ListLinkCandidates returns a document's unlinked content chunks for
// the table reference-linking pass
func (s *ChunkStore) ListLinkCandidates(ctx context.Context, documentID int64) ([]*domain.Chunk, error) {
	query := `
		SELECT id, document_id, chunk_index, section_id, heading, page_start, page_end,
		       text, chunk_kind, equation_score, table_uid, table_row_index, table_label
		FROM chunks
		WHERE document_id = $1
		  AND table_uid IS NULL
		  AND chunk_kind NOT IN ('toc', 'front_matter')
		ORDER BY chunk_index ASC
	`

	rows, err := s.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		var sectionID, heading, tableUID, tableLabel sql.NullString
		var rowIndex sql.NullInt64
		err := rows.Scan(
			&c.ID,
			&c.DocumentID,
			&c.ChunkIndex,
			&sectionID,
			&heading,
			&c.PageStart,
			&c.PageEnd,
			&c.Text,
			&c.ChunkKind,
			&c.EquationScore,
			&tableUID,
			&rowIndex,
			&tableLabel,
		)
		if err != nil {
			return nil, err
		}
		c.SectionID = StringPtr(sectionID)
		c.Heading = StringPtr(heading)
		c.TableUID = StringPtr(tableUID)
		c.TableRowIndex = IntPtr(rowIndex)
		c.TableLabel = StringPtr(tableLabel)
		chunks = append(chunks, &c)
	}
	return chunks, rows.Err()
}

// LinkTable attaches a resolved table reference to a chunk
func (s *ChunkStore) LinkTable(ctx context.Context, chunkID int64, tableUID, tableLabel string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE chunks SET table_uid = $2, table_label = $3 WHERE id = $1`,
		chunkID, tableUID, tableLabel)
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

// ListForIndex streams every chunk with document metadata and full text
func (s *ChunkStore) ListForIndex(ctx context.Context) ([]*domain.Hit, error) {
	query := `
		SELECT ` + hitColumns + `
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		ORDER BY c.document_id ASC, c.chunk_index ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHits(rows)
}

func (s *ChunkStore) fetchHits(ctx context.Context, where string, filter domain.ScopeFilter, args []any, limit int) ([]*domain.Hit, error) {
	scope := scopeClause(filter, &args)

	query := `
		SELECT ` + hitColumns + `
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE ` + where + `
		  AND c.chunk_kind NOT IN ('toc', 'front_matter')
		  AND ` + scope + `
		ORDER BY c.page_start ASC, c.id ASC
	`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHits(rows)
}

// scopeClause renders a ScopeFilter as SQL over the joined documents
// table, appending any bind parameters to args
func scopeClause(filter domain.ScopeFilter, args *[]any) string {
	switch filter.Scope {
	case "", domain.ScopeAll:
		return "TRUE"
	case domain.ScopeStandSpec:
		return "d.doc_type = 'standspec'"
	case domain.ScopeScheduling:
		return "d.doc_type = 'scheduling'"
	case domain.ScopeMP:
		// MP scope keeps the base specifications visible alongside the packs
		return "(d.doc_type IN ('standspec', 'scheduling') OR " + mpClause(filter, args) + ")"
	case domain.ScopeMPOnly:
		return mpClause(filter, args)
	default:
		return "FALSE"
	}
}

func mpClause(filter domain.ScopeFilter, args *[]any) string {
	if len(filter.MPIDs) == 0 {
		return "d.doc_type = 'mp'"
	}
	upper := make([]string, len(filter.MPIDs))
	for i, id := range filter.MPIDs {
		upper[i] = strings.ToUpper(id)
	}
	*args = append(*args, pq.Array(upper))
	return fmt.Sprintf("(d.doc_type = 'mp' AND UPPER(d.mp_id) = ANY($%d))", len(*args))
}

func scanHits(rows *sql.Rows) ([]*domain.Hit, error) {
	var hits []*domain.Hit
	for rows.Next() {
		var h domain.Hit
		var mpID, sectionID, heading, tableUID, tableLabel sql.NullString
		var rowIndex sql.NullInt64
		err := rows.Scan(
			&h.ChunkID,
			&h.DocumentID,
			&h.Filename,
			&h.DisplayName,
			&h.DocType,
			&mpID,
			&sectionID,
			&heading,
			&h.PageStart,
			&h.PageEnd,
			&h.ChunkKind,
			&h.EquationScore,
			&tableUID,
			&tableLabel,
			&rowIndex,
			&h.Text,
		)
		if err != nil {
			return nil, err
		}
		h.MPID = StringPtr(mpID)
		h.SectionID = StringPtr(sectionID)
		h.Heading = StringPtr(heading)
		h.TableUID = StringPtr(tableUID)
		h.TableLabel = StringPtr(tableLabel)
		h.TableRowIndex = IntPtr(rowIndex)
		h.Snippet = domain.MakeSnippet(h.Text, domain.SnippetLen)
		hits = append(hits, &h)
	}
	return hits, rows.Err()
}
