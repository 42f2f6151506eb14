package pgvector

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
	"github.com/fieldline-labs/spechub-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VectorIndex = (*Index)(nil)

const (
	liveTable    = "chunk_vectors"
	stagingTable = "chunk_vectors_staging"
	oldTable     = "chunk_vectors_old"

	// minOverfetch floors the candidate pool so narrow scopes still fill k
	minOverfetch = 50
)

// Index implements driven.VectorIndex on pgvector. Hit metadata is
// denormalized into the vector table so Search never reads the chunks
// table, which may be mid-rebuild.
type Index struct {
	pool   *pgxpool.Pool
	dims   int
	logger *slog.Logger
}

// New connects a pool, ensures the vector extension and live table
// exist, and returns the index
func New(ctx context.Context, url string, dims int, logger *slog.Logger) (*Index, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse pgvector url: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect pgvector pool: %w", err)
	}

	ix := &Index{pool: pool, dims: dims, logger: logger}
	if err := ix.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return ix, nil
}

// Close releases the connection pool
func (ix *Index) Close() {
	ix.pool.Close()
}

func (ix *Index) ensureSchema(ctx context.Context) error {
	if _, err := ix.pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}
	if _, err := ix.pool.Exec(ctx, ix.createTableSQL(liveTable)); err != nil {
		return fmt.Errorf("create vector table: %w", err)
	}
	return nil
}

func (ix *Index) createTableSQL(name string) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			chunk_id        BIGINT PRIMARY KEY,
			document_id     BIGINT NOT NULL,
			filename        TEXT NOT NULL,
			display_name    TEXT NOT NULL DEFAULT '',
			doc_type        TEXT NOT NULL,
			mp_id           TEXT,
			section_id      TEXT,
			heading         TEXT,
			page_start      INTEGER NOT NULL,
			page_end        INTEGER NOT NULL,
			chunk_kind      TEXT NOT NULL,
			equation_score  DOUBLE PRECISION NOT NULL DEFAULT 0,
			table_uid       TEXT,
			table_label     TEXT,
			table_row_index INTEGER,
			snippet         TEXT NOT NULL DEFAULT '',
			embedding       vector(%d) NOT NULL
		)`, name, ix.dims)
}

// Search returns the top k in-scope hits for the query vector. The scan
// over-fetches by distance first and applies the scope and equation
// filters on the candidates, so the ANN index stays usable.
func (ix *Index) Search(ctx context.Context, vector []float32, k int, filter domain.ScopeFilter, minEquationScore float64) ([]*domain.Hit, error) {
	if k <= 0 {
		return nil, nil
	}
	overfetch := 8 * k
	if overfetch < minOverfetch {
		overfetch = minOverfetch
	}

	// Vectors are normalized, so negated inner product distance is
	// cosine similarity.
	query := `
		SELECT chunk_id, document_id, filename, display_name, doc_type, mp_id,
		       section_id, heading, page_start, page_end,
		       chunk_kind, equation_score, table_uid, table_label, table_row_index,
		       snippet,
		       -(embedding <#> $1) AS score
		FROM ` + liveTable + `
		ORDER BY embedding <#> $1
		LIMIT $2
	`

	rows, err := ix.pool.Query(ctx, query, pgvector.NewVector(vector), overfetch)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer rows.Close()

	var hits []*domain.Hit
	for rows.Next() {
		var h domain.Hit
		var score float64
		err := rows.Scan(
			&h.ChunkID, &h.DocumentID, &h.Filename, &h.DisplayName, &h.DocType, &h.MPID,
			&h.SectionID, &h.Heading, &h.PageStart, &h.PageEnd,
			&h.ChunkKind, &h.EquationScore, &h.TableUID, &h.TableLabel, &h.TableRowIndex,
			&h.Snippet,
			&score,
		)
		if err != nil {
			return nil, err
		}
		if !filter.Allows(h.DocType, h.MPID) {
			continue
		}
		if minEquationScore > 0 && h.EquationScore < minEquationScore {
			continue
		}
		h.Score = score
		vec := score
		h.VecScore = &vec
		hits = append(hits, &h)
		if len(hits) >= k {
			break
		}
	}
	return hits, rows.Err()
}

// Rebuild loads all vectors into a staging table and swaps it in with a
// pair of renames inside one transaction
func (ix *Index) Rebuild(ctx context.Context, chunks []*domain.Hit, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("rebuild: %d chunks but %d embeddings", len(chunks), len(embeddings))
	}

	if _, err := ix.pool.Exec(ctx, `DROP TABLE IF EXISTS `+stagingTable); err != nil {
		return fmt.Errorf("drop staging table: %w", err)
	}
	if _, err := ix.pool.Exec(ctx, ix.createTableSQL(stagingTable)); err != nil {
		return fmt.Errorf("create staging table: %w", err)
	}

	columns := []string{
		"chunk_id", "document_id", "filename", "display_name", "doc_type", "mp_id",
		"section_id", "heading", "page_start", "page_end",
		"chunk_kind", "equation_score", "table_uid", "table_label", "table_row_index",
		"snippet", "embedding",
	}
	_, err := ix.pool.CopyFrom(ctx, pgx.Identifier{stagingTable}, columns,
		pgx.CopyFromSlice(len(chunks), func(i int) ([]any, error) {
			h := chunks[i]
			return []any{
				h.ChunkID, h.DocumentID, h.Filename, h.DisplayName, h.DocType, h.MPID,
				h.SectionID, h.Heading, h.PageStart, h.PageEnd,
				h.ChunkKind, h.EquationScore, h.TableUID, h.TableLabel, h.TableRowIndex,
				h.Snippet, pgvector.NewVector(embeddings[i]),
			}, nil
		}))
	if err != nil {
		return fmt.Errorf("copy vectors: %w", err)
	}

	indexSQL := fmt.Sprintf(
		`CREATE INDEX ON %s USING hnsw (embedding vector_ip_ops)`, stagingTable)
	if _, err := ix.pool.Exec(ctx, indexSQL); err != nil {
		return fmt.Errorf("index staging table: %w", err)
	}

	tx, err := ix.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin swap: %w", err)
	}
	defer tx.Rollback(ctx)

	swap := []string{
		`DROP TABLE IF EXISTS ` + oldTable,
		`ALTER TABLE ` + liveTable + ` RENAME TO ` + oldTable,
		`ALTER TABLE ` + stagingTable + ` RENAME TO ` + liveTable,
	}
	for _, stmt := range swap {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("swap vector tables: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit swap: %w", err)
	}

	if _, err := ix.pool.Exec(ctx, `DROP TABLE IF EXISTS `+oldTable); err != nil {
		ix.logger.Warn("failed to drop old vector table", "error", err)
	}

	ix.logger.Info("vector index rebuilt", "vectors", len(chunks), "dims", ix.dims)
	return nil
}
