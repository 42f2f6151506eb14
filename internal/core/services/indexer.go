package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"log/slog"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
	"github.com/fieldline-labs/spechub-core/internal/core/ports/driven"
	"github.com/fieldline-labs/spechub-core/internal/core/ports/driving"
)

// Ensure indexService implements IndexService
var _ driving.IndexService = (*indexService)(nil)

const (
	rebuildLockName = "index:rebuild"
	rebuildLockTTL  = 30 * time.Minute

	embedBatchSize = 64
)

// indexService rebuilds every derived artifact from stored pages:
// chunks, structured tables, the lexical index and the vector index.
// Rebuilds are delete-and-recreate per document, so running twice is
// safe.
type indexService struct {
	documents  driven.DocumentStore
	pages      driven.PageStore
	chunks     driven.ChunkStore
	tables     driven.TableStore
	lexical    driven.LexicalIndex
	vector     driven.VectorIndex
	embeddings driven.EmbeddingService
	lock       driven.DistributedLock
	logger     *slog.Logger
}

// NewIndexService creates a new IndexService
func NewIndexService(
	documents driven.DocumentStore,
	pages driven.PageStore,
	chunks driven.ChunkStore,
	tables driven.TableStore,
	lexical driven.LexicalIndex,
	vector driven.VectorIndex,
	embeddings driven.EmbeddingService,
	lock driven.DistributedLock,
	logger *slog.Logger,
) driving.IndexService {
	return &indexService{
		documents:  documents,
		pages:      pages,
		chunks:     chunks,
		tables:     tables,
		lexical:    lexical,
		vector:     vector,
		embeddings: embeddings,
		lock:       lock,
		logger:     logger,
	}
}

// RebuildAll rebuilds chunks and tables for every document, relinks
// table references, then rebuilds both retrieval indexes. Only one
// rebuild may run at a time across all instances.
func (s *indexService) RebuildAll(ctx context.Context) (*domain.RebuildStats, error) {
	acquired, err := s.lock.Acquire(ctx, rebuildLockName, rebuildLockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire rebuild lock: %w", err)
	}
	if !acquired {
		return nil, domain.ErrRebuildInProgress
	}
	defer func() {
		if releaseErr := s.lock.Release(context.WithoutCancel(ctx), rebuildLockName); releaseErr != nil {
			s.logger.Warn("failed to release rebuild lock", "error", releaseErr)
		}
	}()

	started := time.Now()
	docs, err := s.documents.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	stats := &domain.RebuildStats{Documents: len(docs)}
	for _, doc := range docs {
		if err := s.rebuildDocument(ctx, doc, stats); err != nil {
			return nil, fmt.Errorf("rebuild document %q: %w", doc.Filename, err)
		}
	}

	// Embedding large corpora can outlive the initial TTL.
	if err := s.lock.Extend(ctx, rebuildLockName, rebuildLockTTL); err != nil {
		s.logger.Warn("failed to extend rebuild lock", "error", err)
	}

	if err := s.rebuildIndexes(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("index rebuild complete",
		"documents", stats.Documents,
		"chunks", stats.Chunks,
		"tables", stats.Tables,
		"table_rows", stats.TableRows,
		"linked_chunks", stats.Linked,
		"duration", time.Since(started),
	)
	return stats, nil
}

// rebuildDocument regenerates one document's chunks and tables from its
// stored pages.
func (s *indexService) rebuildDocument(ctx context.Context, doc *domain.Document, stats *domain.RebuildStats) error {
	pages, err := s.pages.GetByDocument(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("load pages: %w", err)
	}

	chunks := chunkDocumentPages(pages)
	for _, c := range chunks {
		c.DocumentID = doc.ID
		c.EquationScore = equationScore(c.Text)
		if c.EquationScore >= equationKindThreshold {
			c.ChunkKind = domain.ChunkKindEquation
		} else {
			c.ChunkKind = classifyChunk(c.SectionID, c.Text)
		}
	}

	sectionCtx := sectionContextByPage(pages, chunks)

	var (
		tables    []*domain.Table
		rows      []*domain.TableRow
		rowChunks []*domain.Chunk
	)
	for _, page := range pages {
		blocks := extractTableBlocks(page.RawText)
		if len(blocks) == 0 {
			continue
		}
		sectionID, heading := sectionCtx[page.PageNumber].sectionID, sectionCtx[page.PageNumber].heading

		for idx, blk := range blocks {
			tableIndex := idx + 1
			uid := stableTableUID(doc.ID, doc.Filename, page.PageNumber, tableIndex, blk.lines)
			label := tableLabelFor(page.PageNumber, tableIndex)

			table := &domain.Table{
				TableUID:         uid,
				DocumentID:       doc.ID,
				PageNumber:       page.PageNumber,
				TableIndexOnPage: tableIndex,
				SectionID:        sectionID,
				TableLabel:       label,
			}

			for rowIndex, line := range blk.lines {
				rowText := strings.TrimSpace(line)
				if rowText == "" {
					continue
				}
				rows = append(rows, &domain.TableRow{
					TableUID: uid,
					RowIndex: rowIndex,
					RowText:  rowText,
				})
				table.RowCount++

				rowUID, rowLabel, ri := uid, label, rowIndex
				rowChunks = append(rowChunks, &domain.Chunk{
					DocumentID:    doc.ID,
					SectionID:     sectionID,
					Heading:       heading,
					PageStart:     page.PageNumber,
					PageEnd:       page.PageNumber,
					Text:          rowText,
					ChunkKind:     domain.ChunkKindTableRow,
					TableUID:      &rowUID,
					TableRowIndex: &ri,
					TableLabel:    &rowLabel,
				})
			}
			tables = append(tables, table)
		}
	}

	all := append(chunks, rowChunks...)
	for i, c := range all {
		c.ChunkIndex = i
	}

	if err := s.chunks.ReplaceForDocument(ctx, doc.ID, all); err != nil {
		return fmt.Errorf("replace chunks: %w", err)
	}
	if err := s.tables.ReplaceForDocument(ctx, doc.ID, tables, rows); err != nil {
		return fmt.Errorf("replace tables: %w", err)
	}

	linked, err := s.linkTableReferences(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("link table references: %w", err)
	}

	stats.Chunks += len(all)
	stats.Tables += len(tables)
	stats.TableRows += len(rows)
	stats.Linked += linked
	return nil
}

// rebuildIndexes reloads every chunk and swaps in fresh lexical and
// vector indexes.
func (s *indexService) rebuildIndexes(ctx context.Context) error {
	hits, err := s.chunks.ListForIndex(ctx)
	if err != nil {
		return fmt.Errorf("list chunks for indexing: %w", err)
	}

	if err := s.lexical.Rebuild(ctx, hits); err != nil {
		return fmt.Errorf("rebuild lexical index: %w", err)
	}
	s.logger.Info("lexical index rebuilt", "chunks", len(hits))

	embeddings := make([][]float32, 0, len(hits))
	for start := 0; start < len(hits); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(hits) {
			end = len(hits)
		}
		texts := make([]string, 0, end-start)
		for _, h := range hits[start:end] {
			texts = append(texts, h.Text)
		}
		vectors, err := s.embeddings.Embed(ctx, texts)
		if err != nil {
			// No embedding provider means retrieval runs lexical-only;
			// the lexical index above is already live.
			if errors.Is(err, domain.ErrServiceUnavailable) {
				s.logger.Warn("skipping vector index rebuild", "error", err)
				return nil
			}
			return fmt.Errorf("embed chunks %d-%d: %w", start, end, err)
		}
		embeddings = append(embeddings, vectors...)
	}

	if err := s.vector.Rebuild(ctx, hits, embeddings); err != nil {
		return fmt.Errorf("rebuild vector index: %w", err)
	}
	s.logger.Info("vector index rebuilt", "chunks", len(hits))
	return nil
}

// sectionContext is the section a page falls under, carried forward
// from the last heading seen on or before it.
type sectionContext struct {
	sectionID *string
	heading   *string
}

// sectionContextByPage walks pages and chunks in parallel so tables on
// a page inherit the section that was open when the page started.
func sectionContextByPage(pages []*domain.Page, chunks []*domain.Chunk) map[int]sectionContext {
	ordered := append([]*domain.Chunk(nil), chunks...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].PageStart != ordered[j].PageStart {
			return ordered[i].PageStart < ordered[j].PageStart
		}
		return ordered[i].PageEnd < ordered[j].PageEnd
	})

	ctx := make(map[int]sectionContext, len(pages))
	var cur sectionContext
	i := 0
	for _, page := range pages {
		for i < len(ordered) && ordered[i].PageStart <= page.PageNumber {
			if ordered[i].SectionID != nil {
				cur = sectionContext{sectionID: ordered[i].SectionID, heading: ordered[i].Heading}
			}
			i++
		}
		ctx[page.PageNumber] = cur
	}
	return ctx
}

// linkTableReferences resolves "Table 901.03-2" style references in
// content chunks to concrete table uids so the ask path can render the
// table those chunks talk about.
func (s *indexService) linkTableReferences(ctx context.Context, documentID int64) (int, error) {
	candidates, err := s.chunks.ListLinkCandidates(ctx, documentID)
	if err != nil {
		return 0, err
	}

	linked := 0
	for _, c := range candidates {
		token := findTableTokenRef(c.Text)
		if token == "" {
			continue
		}
		uid, label, err := s.resolveTableUID(ctx, documentID, c.PageStart, token)
		if err != nil {
			return linked, err
		}
		if uid == "" {
			continue
		}
		if err := s.chunks.LinkTable(ctx, c.ID, uid, label); err != nil {
			return linked, err
		}
		linked++
	}
	return linked, nil
}

// resolveTableUID finds the table a reference points at, checking the
// chunk's own page first, then the previous and next pages. When a page
// holds several tables, row text disambiguates; if it cannot, the
// reference stays unlinked rather than linking the wrong table.
func (s *indexService) resolveTableUID(ctx context.Context, documentID int64, pageNumber int, token string) (string, string, error) {
	for _, offset := range []int{0, -1, 1} {
		candidates, err := s.tables.ListByPage(ctx, documentID, pageNumber+offset)
		if err != nil {
			return "", "", err
		}
		if len(candidates) == 0 {
			continue
		}
		if len(candidates) == 1 {
			return candidates[0].TableUID, candidates[0].TableLabel, nil
		}

		uids := make([]string, len(candidates))
		for i, c := range candidates {
			uids[i] = c.TableUID
		}
		matched, err := s.tables.RowsMatchingToken(ctx, uids, token)
		if err != nil {
			return "", "", err
		}
		if len(matched) == 1 {
			for _, c := range candidates {
				if c.TableUID == matched[0] {
					return c.TableUID, c.TableLabel, nil
				}
			}
		}
		if len(matched) > 0 {
			matchedSet := make(map[string]struct{}, len(matched))
			for _, uid := range matched {
				matchedSet[uid] = struct{}{}
			}
			for _, c := range candidates {
				if _, ok := matchedSet[c.TableUID]; ok {
					return c.TableUID, c.TableLabel, nil
				}
			}
		}
		return "", "", nil
	}
	return "", "", nil
}
