package services

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
	"github.com/fieldline-labs/spechub-core/internal/core/ports/driven"
	"github.com/fieldline-labs/spechub-core/internal/core/ports/driving"
)

// Ensure searchService implements SearchService
var _ driving.SearchService = (*searchService)(nil)

// Candidate pools pulled from each retriever before fusion. Reranking
// happens after fusion, so the pools stay deep.
const (
	minPoolK       = 60
	poolMultiplier = 12
	minFusedPool   = 120
	equationPoolK  = 50
)

// searchService implements the SearchService interface
type searchService struct {
	lexical    driven.LexicalIndex
	vector     driven.VectorIndex
	embeddings driven.EmbeddingService
	tableStore driven.TableStore
	logger     *slog.Logger
}

// NewSearchService creates a new SearchService
func NewSearchService(
	lexical driven.LexicalIndex,
	vector driven.VectorIndex,
	embeddings driven.EmbeddingService,
	tableStore driven.TableStore,
	logger *slog.Logger,
) driving.SearchService {
	return &searchService{
		lexical:    lexical,
		vector:     vector,
		embeddings: embeddings,
		tableStore: tableStore,
		logger:     logger,
	}
}

// LexicalSearch queries only the BM25 index
func (s *searchService) LexicalSearch(ctx context.Context, query string, k int, filter domain.ScopeFilter) ([]*domain.Hit, error) {
	return s.lexical.Search(ctx, query, k, filter, driven.LexicalSearchOptions{})
}

// HybridSearch fuses lexical and vector retrieval with reciprocal rank
// fusion, then shapes the pool for section, equation and table intent
// before truncating to k.
func (s *searchService) HybridSearch(ctx context.Context, query string, k int, filter domain.ScopeFilter) ([]*domain.Hit, domain.Confidence, error) {
	if k <= 0 {
		k = domain.DefaultK
	}
	poolK := minPoolK
	if k*poolMultiplier > poolK {
		poolK = k * poolMultiplier
	}

	bm25Hits, vecHits, eqHits, err := s.gatherCandidates(ctx, query, poolK, filter)
	if err != nil {
		return nil, domain.ConfidenceWeak, err
	}

	bm25Keys := hitIDs(bm25Hits)
	vecKeys := hitIDs(vecHits)
	rankedLists := [][]int64{bm25Keys, vecKeys}

	var eqKeys []int64
	if len(eqHits) > 0 {
		seen := make(map[int64]struct{}, len(eqHits))
		for _, h := range eqHits {
			if _, dup := seen[h.ChunkID]; dup {
				continue
			}
			seen[h.ChunkID] = struct{}{}
			eqKeys = append(eqKeys, h.ChunkID)
		}
		rankedLists = append(rankedLists, eqKeys)
	}

	fused := reciprocalRankFusion(rankedLists)

	// insertion order gives deterministic tie-breaks in the fused sort
	var orderedIDs []int64
	seen := make(map[int64]struct{}, len(fused))
	for _, lst := range [][]int64{bm25Keys, vecKeys, eqKeys} {
		for _, id := range lst {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			orderedIDs = append(orderedIDs, id)
		}
	}
	sort.SliceStable(orderedIDs, func(i, j int) bool {
		return fused[orderedIDs[i]] > fused[orderedIDs[j]]
	})

	fusedPool := poolK
	if fusedPool < minFusedPool {
		fusedPool = minFusedPool
	}
	if len(orderedIDs) > fusedPool {
		orderedIDs = orderedIDs[:fusedPool]
	}

	bm25ByID := hitsByID(bm25Hits)
	vecByID := hitsByID(vecHits)
	eqByID := hitsByID(eqHits)

	results := make([]*domain.Hit, 0, len(orderedIDs))
	for _, id := range orderedIDs {
		b := bm25ByID[id]
		v := vecByID[id]
		ref := b
		if ref == nil {
			ref = v
		}
		if ref == nil {
			ref = eqByID[id]
		}
		if ref == nil {
			continue
		}

		merged := *ref
		merged.Score = fused[id]
		merged.BM25Score, merged.VecScore = nil, nil
		if b != nil {
			score := b.Score
			merged.BM25Score = &score
		}
		if v != nil {
			score := v.Score
			merged.VecScore = &score
		}
		results = append(results, &merged)
	}

	if domain.IsSectionIntent(query) {
		results = applySectionIntentShaping(results,
			domain.ExtractSectionDot(query), domain.ExtractSectionPrefix(query))
	}

	if domain.IsEquationQuery(query) {
		for _, h := range results {
			if h.ChunkKind == domain.ChunkKindEquation {
				h.Score *= equationBoost
			}
		}
		sortHitsByScore(results)
	}

	if m := queryTableTokenRe.FindStringSubmatch(strings.ToLower(query)); m != nil {
		token := m[1]
		for _, h := range results {
			h.Score += tableTokenBonus(h, token)
		}
		sortHitsByScore(results)
	}

	results = tableGroupBoost(results, query)
	results = collapseTables(results, fusedPool)
	if domain.IsTableQuery(query) {
		s.orderByTableAffinity(ctx, query, results)
	}
	sortHitsByScore(results)

	conf := domain.ConfidenceWeak
	if len(results) > 0 {
		conf = computeConfidence(results[0].Score, topOverlap(bm25Keys, vecKeys, 10))
	}

	if len(results) > k {
		results = results[:k]
	}
	return results, conf, nil
}

// gatherCandidates runs the lexical and vector pools concurrently, plus
// equation-restricted pools when the query asks about formulas. Vector
// retrieval degrades to empty rather than failing the whole search.
func (s *searchService) gatherCandidates(ctx context.Context, query string, poolK int, filter domain.ScopeFilter) (bm25Hits, vecHits, eqHits []*domain.Hit, err error) {
	equation := domain.IsEquationQuery(query)

	var queryVec []float32
	if vec, embErr := s.embeddings.EmbedQuery(ctx, query); embErr != nil {
		s.logger.Warn("query embedding failed, lexical-only retrieval", "error", embErr)
	} else {
		queryVec = vec
	}

	var eqBM25, eqVec []*domain.Hit
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hits, searchErr := s.lexical.Search(gctx, query, poolK, filter, driven.LexicalSearchOptions{})
		if searchErr != nil {
			return searchErr
		}
		bm25Hits = hits
		return nil
	})

	if queryVec != nil {
		g.Go(func() error {
			hits, searchErr := s.vector.Search(gctx, queryVec, poolK, filter, 0)
			if searchErr != nil {
				s.logger.Warn("vector search failed, continuing without it", "error", searchErr)
				return nil
			}
			vecHits = hits
			return nil
		})
	}

	if equation {
		g.Go(func() error {
			hits, searchErr := s.lexical.Search(gctx, query, equationPoolK, filter,
				driven.LexicalSearchOptions{MinEquationScore: equationKindThreshold})
			if searchErr != nil {
				return searchErr
			}
			eqBM25 = hits
			return nil
		})
		if queryVec != nil {
			g.Go(func() error {
				hits, searchErr := s.vector.Search(gctx, queryVec, equationPoolK, filter, equationKindThreshold)
				if searchErr != nil {
					return nil
				}
				eqVec = hits
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return bm25Hits, vecHits, append(eqBM25, eqVec...), nil
}

// orderByTableAffinity reorders by a row-count and wording heuristic
// without touching stored scores, so the boost only breaks score ties
// in the final sort.
func (s *searchService) orderByTableAffinity(ctx context.Context, query string, hits []*domain.Hit) {
	q := strings.ToLower(query)
	targetSection := domain.ExtractSectionDot(q)

	rowCounts := make(map[string]int)
	adjusted := make(map[*domain.Hit]float64, len(hits))

	for _, h := range hits {
		score := h.Score
		if h.TableUID != nil {
			uid := *h.TableUID
			n, cached := rowCounts[uid]
			if !cached {
				count, err := s.tableStore.CountRows(ctx, uid)
				if err != nil {
					count = 0
				}
				n = count
				rowCounts[uid] = n
			}

			if n >= 6 {
				score += 0.08
			} else if n <= 2 {
				score -= 0.03
			}

			heading := ""
			if h.Heading != nil {
				heading = strings.ToLower(*h.Heading)
			}
			snippet := strings.ToLower(h.Snippet)
			if strings.Contains(heading, "coarse aggregate") || strings.Contains(snippet, "coarse aggregate") {
				score += 0.05
			}
			if strings.Contains(snippet, "table") {
				score += 0.03
			}
			if targetSection != "" && h.SectionID != nil && strings.ToLower(*h.SectionID) == targetSection {
				score += 0.12
			}
		}
		adjusted[h] = score
	}

	sort.SliceStable(hits, func(i, j int) bool { return adjusted[hits[i]] > adjusted[hits[j]] })
}

func hitIDs(hits []*domain.Hit) []int64 {
	ids := make([]int64, len(hits))
	for i, h := range hits {
		ids[i] = h.ChunkID
	}
	return ids
}

func hitsByID(hits []*domain.Hit) map[int64]*domain.Hit {
	m := make(map[int64]*domain.Hit, len(hits))
	for _, h := range hits {
		if _, dup := m[h.ChunkID]; !dup {
			m[h.ChunkID] = h
		}
	}
	return m
}

func topOverlap(a, b []int64, n int) int {
	if len(a) > n {
		a = a[:n]
	}
	if len(b) > n {
		b = b[:n]
	}
	set := make(map[int64]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	overlap := 0
	for _, id := range b {
		if _, ok := set[id]; ok {
			overlap++
		}
	}
	return overlap
}
