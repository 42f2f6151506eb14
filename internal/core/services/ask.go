package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"log/slog"

	"github.com/fieldline-labs/spechub-core/internal/bm25"
	"github.com/fieldline-labs/spechub-core/internal/core/domain"
	"github.com/fieldline-labs/spechub-core/internal/core/ports/driven"
	"github.com/fieldline-labs/spechub-core/internal/core/ports/driving"
)

// Ensure askService implements AskService
var _ driving.AskService = (*askService)(nil)

const synthesisPrompt = `You are a retrieval-first assistant for highway construction specifications.

Use ONLY the provided SOURCES to answer the question.
Answer in 2-4 sentences. Paraphrase; do NOT quote long passages.
If the evidence is insufficient, respond exactly: "Insufficient Evidence."
Do not add citations or mention chunk IDs.
Do NOT include bracketed citations like [1] or [2].
Do NOT mention section numbers or page numbers unless the user explicitly asks for a section/page.
Avoid phrases like "as specified in Section..." unless the user asked for section/page.
Do NOT write "SOURCE 1", "SOURCE 2", or "SOURCE:" in the answer.
Do NOT say "according to the sources" or "the source states".
Do NOT leave incomplete clauses (no trailing "according to.").
If you mention an amount/time/percentage, state it directly.`

// llmTimeout bounds a single synthesis call. Generation is never
// retried; on timeout the answer falls back to the top snippet.
const llmTimeout = 30 * time.Second

const (
	sourcesOnlyAnswer    = "Sources only: see citations on the right."
	citationsPanelAnswer = "See the citations panel"

	insufficientEvidence = "Insufficient Evidence."

	weakAnswer = "Insufficient Evidence. I couldn’t find a reliable answer in the provided specification documents for that question. " +
		"Try rephrasing using a section number, exact term, or MP ID, or switch to Sources Only."

	sectionNotFoundAnswer = "Insufficient Evidence. I couldn’t find that section in the provided documents."
)

// askService orchestrates question answering: deterministic section and
// table paths first, hybrid retrieval plus guarded LLM synthesis last.
type askService struct {
	chunkStore driven.ChunkStore
	tableStore driven.TableStore
	searcher   driving.SearchService
	llm        driven.LLMService
	logger     *slog.Logger
}

// NewAskService creates a new AskService
func NewAskService(
	chunkStore driven.ChunkStore,
	tableStore driven.TableStore,
	searcher driving.SearchService,
	llm driven.LLMService,
	logger *slog.Logger,
) driving.AskService {
	return &askService{
		chunkStore: chunkStore,
		tableStore: tableStore,
		searcher:   searcher,
		llm:        llm,
		logger:     logger,
	}
}

// Ask answers a question. Retrieval or synthesis failures never bubble
// up as errors; the result degrades to a weak response instead. Cold
// indexes and cancelled contexts are the exceptions: both surface to
// the caller.
func (s *askService) Ask(ctx context.Context, req domain.AskRequest) (*domain.AskResult, error) {
	req.Normalize()
	if !domain.ValidScope(req.Scope) {
		return nil, fmt.Errorf("%w: unknown scope %q", domain.ErrInvalidInput, req.Scope)
	}

	result, err := s.ask(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
			errors.Is(err, domain.ErrIndexNotReady) {
			return nil, err
		}
		s.logger.Error("ask failed, degrading to weak response",
			"scope", req.Scope, "k", req.K, "mode", req.Mode, "error", err)
		return s.weakResponse(nil, req.Query), nil
	}
	return result, nil
}

func (s *askService) ask(ctx context.Context, req domain.AskRequest) (*domain.AskResult, error) {
	q := req.Query
	k := req.K
	filter := req.Filter()

	exact := domain.ExtractExactSectionID(q)
	prefix := domain.ExtractSectionPrefix(q)
	tableToken := domain.ExtractTableToken(q)

	// Deterministic table lookup for explicit subsection table tokens
	// like 701.03.15-1.
	if tableToken != "" && domain.IsExplicitSubsectionTableToken(tableToken) && req.Mode == domain.AskModeAnswer {
		if res := s.tablePrelookup(ctx, q, tableToken, filter, req); res != nil {
			return res, nil
		}
	}

	// Exact section ids bypass retrieval entirely.
	if exact != "" {
		if res, err := s.exactSectionPath(ctx, q, exact, filter, req); err != nil {
			return nil, err
		} else if res != nil {
			return res, nil
		}
	}

	var (
		hits []*domain.Hit
		conf domain.Confidence
		err  error

		usedPrefixFallback bool
	)

	if prefix != "" && exact == "" && domain.IsSectionIntent(q) {
		hits, conf, usedPrefixFallback, err = s.prefixSectionPath(ctx, q, prefix, filter, k)
		if err != nil {
			return nil, err
		}
	}
	if !usedPrefixFallback {
		hits, conf, err = s.searcher.HybridSearch(ctx, q, k, filter)
		if err != nil {
			return nil, err
		}
	}

	if err := s.refocusSnippets(ctx, q, hits); err != nil {
		return nil, err
	}

	if req.Mode == domain.AskModeSourcesOnly {
		s.logPath("sources_only", req, conf)
		return &domain.AskResult{Confidence: conf, Answer: sourcesOnlyAnswer, Hits: hits}, nil
	}

	if domain.IsBareSectionIDQuery(q) {
		s.logPath("section_lookup", req, conf)
		answer := fmt.Sprintf("See the citations panel for Section %s.", strings.TrimSpace(q))
		return &domain.AskResult{Confidence: conf, Answer: answer, Hits: hits}, nil
	}

	// Location questions defer to the citations panel rather than
	// synthesizing.
	if domain.AsksForSectionOrPage(q) {
		s.logPath("section_lookup", req, conf)
		return &domain.AskResult{Confidence: conf, Answer: citationsPanelAnswer, Hits: hits}, nil
	}

	tableIntent := domain.LooksLikeTableQuery(q)
	if !tableIntent {
		kept := hits[:0]
		for _, h := range hits {
			if h.ChunkKind != domain.ChunkKindTableRow {
				kept = append(kept, h)
			}
		}
		hits = kept
	}

	if !tableIntent && !domain.IsSectionIntent(q) {
		hits = preferContentHits(hits, k)
	}

	// Section-intent questions get deterministic merged excerpts.
	if domain.IsSectionIntent(q) && !tableIntent && !domain.AsksForSectionOrPage(q) {
		if len(hits) == 0 {
			s.logPath("section_intent_empty", req, domain.ConfidenceWeak)
			return &domain.AskResult{Confidence: domain.ConfidenceWeak, Answer: sectionNotFoundAnswer, Hits: []*domain.Hit{}}, nil
		}
		label := exact
		if label == "" {
			label = prefix
		}
		merged := domain.SelectSectionHits(hits)
		path := "section_hybrid"
		if usedPrefixFallback {
			path = "section_prefix"
		}
		s.logPath(path, req, conf)
		return &domain.AskResult{Confidence: conf, Answer: domain.BuildSectionExcerpt(label, merged), Hits: merged}, nil
	}

	// A specific table id in the query enforces targeting to that table.
	if tableToken != "" {
		return s.tableTokenPath(ctx, q, tableToken, hits, conf, req), nil
	}

	if conf == domain.ConfidenceWeak || len(hits) == 0 {
		s.logPath("weak", req, domain.ConfidenceWeak)
		return s.weakResponse(hits, q), nil
	}

	// Table-backed top hit on a table question renders rows verbatim.
	if tableIntent && hits[0].TableUID != nil && s.tableHasEnoughRows(ctx, *hits[0].TableUID, 2) {
		if res := s.tableBlockResult(ctx, *hits[0].TableUID, tableToken, hits[0], hits[:1], domain.ConfidenceStrong); res != nil {
			s.logPath("table_intent", req, domain.ConfidenceStrong)
			return res, nil
		}
	}

	// Digit-dense chunks containing the exact table header answer
	// directly, preventing the LLM from paraphrasing a table.
	if m := queryTableTokenRe.FindStringSubmatch(strings.ToLower(q)); m != nil {
		token := m[1]
		for _, h := range hits {
			snip := strings.ToLower(h.Snippet)
			if strings.Contains(snip, "table "+token) && digitCount(snip) >= 25 {
				return &domain.AskResult{Confidence: conf, Answer: citeFirst(h.Snippet), Hits: []*domain.Hit{h}}, nil
			}
		}
	}

	// Materials listings pass through verbatim so official lists are
	// never paraphrased.
	if len(hits) > 0 && isMaterialsHeading(hits[0]) && looksLikeListTableSnippet(hits[0].Snippet) {
		return &domain.AskResult{Confidence: conf, Answer: citeFirst(hits[0].Snippet), Hits: hits[:1]}, nil
	}

	if tableIntent {
		if uid, label, rows := topTableBlock(hits); len(rows) > 0 {
			if res := s.tableBlockResult(ctx, uid, tableToken, rows[0], rows, conf); res != nil {
				res.Table.TableLabel = label
				s.logPath("table_intent", req, conf)
				return res, nil
			}
		}
	}

	return s.synthesize(ctx, q, hits, conf, req)
}

// tablePrelookup resolves an explicit subsection table token straight
// from the chunk store, before any retrieval runs.
func (s *askService) tablePrelookup(ctx context.Context, q, token string, filter domain.ScopeFilter, req domain.AskRequest) *domain.AskResult {
	tokenHits, err := s.chunkStore.FetchTableToken(ctx, token, filter, 25)
	if err != nil || len(tokenHits) == 0 {
		return nil
	}
	var uid string
	for _, h := range tokenHits {
		if h.TableUID != nil {
			uid = *h.TableUID
			break
		}
	}
	if uid == "" || !s.tableHasEnoughRows(ctx, uid, 2) {
		return nil
	}
	res := s.tableBlockResult(ctx, uid, token, tokenHits[0], tokenHits[:1], domain.ConfidenceStrong)
	if res != nil {
		s.logPath("table_prelookup", req, domain.ConfidenceStrong)
	}
	return res
}

// exactSectionPath serves queries that name a dotted section id. It
// returns (nil, nil) when the section has no chunks, letting the caller
// fall through to retrieval.
func (s *askService) exactSectionPath(ctx context.Context, q, exact string, filter domain.ScopeFilter, req domain.AskRequest) (*domain.AskResult, error) {
	limit := req.K
	if limit < 12 {
		limit = 12
	}
	exactHits, err := s.chunkStore.FetchExactSection(ctx, exact, filter, limit)
	if err != nil {
		return nil, err
	}
	if len(exactHits) == 0 {
		return nil, nil
	}

	if err := s.refocusSnippets(ctx, q, exactHits); err != nil {
		return nil, err
	}
	exactHits = sanitizeExactSectionHits(exact, exactHits)

	if len(exactHits) < 4 {
		// Expand to child subsections to avoid single-excerpt answers.
		childLimit := req.K
		if childLimit < 40 {
			childLimit = 40
		}
		expanded, err := s.chunkStore.FetchSectionWithChildren(ctx, exact, filter, childLimit)
		if err != nil {
			return nil, err
		}
		seen := make(map[int64]struct{}, len(exactHits)+len(expanded))
		var merged []*domain.Hit
		for _, h := range append(exactHits, expanded...) {
			if _, dup := seen[h.ChunkID]; dup {
				continue
			}
			seen[h.ChunkID] = struct{}{}
			merged = append(merged, h)
		}
		sort.SliceStable(merged, func(i, j int) bool {
			if merged[i].PageStart != merged[j].PageStart {
				return merged[i].PageStart < merged[j].PageStart
			}
			return merged[i].ChunkID < merged[j].ChunkID
		})
		exactHits = merged
	}

	conf := domain.ConfidenceStrong
	hits := domain.SelectSectionHits(exactHits)

	if req.Mode == domain.AskModeSourcesOnly {
		s.logPath("section_exact", req, conf)
		return &domain.AskResult{Confidence: conf, Answer: sourcesOnlyAnswer, Hits: hits}, nil
	}
	if domain.IsBareSectionIDQuery(q) {
		s.logPath("section_exact_bare", req, conf)
		answer := fmt.Sprintf("See the citations panel for Section %s.", exact)
		return &domain.AskResult{Confidence: conf, Answer: answer, Hits: hits}, nil
	}

	s.logPath("section_exact", req, conf)
	return &domain.AskResult{Confidence: conf, Answer: domain.BuildSectionExcerpt(exact, hits), Hits: hits}, nil
}

// prefixSectionPath serves "section 701" style queries from the chunk
// store with a BM25 rerank over the section's chunks. Reports whether
// the fallback produced hits; otherwise hybrid retrieval takes over.
func (s *askService) prefixSectionPath(ctx context.Context, q, prefix string, filter domain.ScopeFilter, k int) ([]*domain.Hit, domain.Confidence, bool, error) {
	limit := 300
	if k*40 > limit {
		limit = k * 40
	}
	dbHits, err := s.chunkStore.FetchSectionPrefix(ctx, prefix, filter, limit)
	if err != nil {
		return nil, domain.ConfidenceWeak, false, err
	}
	if len(dbHits) == 0 {
		return nil, domain.ConfidenceWeak, false, nil
	}

	if err := s.refocusSnippets(ctx, q, dbHits); err != nil {
		return nil, domain.ConfidenceWeak, false, err
	}
	dbHits = filterMismatchedSectionHits(dbHits, prefix)

	hits := bm25Rerank(q, dbHits, k)

	// "section 701" phrasing pins the description and materials anchors
	// (701.01, 701.02) to the front so summaries never miss them.
	if sec := sectionWordPrefix(q); sec != "" {
		must := map[string]struct{}{sec + ".01": {}, sec + ".02": {}}
		var extra []*domain.Hit
		for _, h := range dbHits {
			if h.SectionID != nil {
				if _, ok := must[*h.SectionID]; ok {
					extra = append(extra, h)
				}
			}
		}
		if len(extra) > 0 {
			seen := make(map[int64]struct{})
			var ordered []*domain.Hit
			for _, h := range append(extra, hits...) {
				if _, dup := seen[h.ChunkID]; dup {
					continue
				}
				seen[h.ChunkID] = struct{}{}
				ordered = append(ordered, h)
			}
			if len(ordered) > k {
				ordered = ordered[:k]
			}
			hits = ordered
		}
	}

	if len(hits) < 4 {
		target := k
		if target < 4 {
			target = 4
		}
		seen := make(map[int64]struct{})
		var ordered []*domain.Hit
		for _, h := range append(hits, dbHits...) {
			if _, dup := seen[h.ChunkID]; dup {
				continue
			}
			seen[h.ChunkID] = struct{}{}
			ordered = append(ordered, h)
			if len(ordered) >= target {
				break
			}
		}
		hits = ordered
	}

	conf := domain.ConfidenceMedium
	if len(hits) > 0 && hits[0].SectionID != nil && strings.HasPrefix(*hits[0].SectionID, prefix) {
		conf = domain.ConfidenceStrong
	}
	return hits, conf, true, nil
}

// tableTokenPath handles queries naming a table once retrieval ran:
// matching hits are promoted, and a well-formed table renders as a
// block. Queries naming a table that never matched get no citations.
func (s *askService) tableTokenPath(ctx context.Context, q, token string, hits []*domain.Hit, conf domain.Confidence, req domain.AskRequest) *domain.AskResult {
	tokenOnly := domain.NormalizeTableText(token)

	var matches []*domain.Hit
	for _, h := range hits {
		heading := ""
		if h.Heading != nil {
			heading = *h.Heading
		}
		blob := domain.NormalizeTableText(heading + " " + h.Snippet + " " + h.Text)
		if strings.Contains(blob, tokenOnly) {
			matches = append(matches, h)
		}
	}

	if len(matches) == 0 {
		s.logPath("table_token_miss", req, domain.ConfidenceWeak)
		return s.weakResponse(nil, q)
	}

	s.logger.Info("table token matched", "token", token, "hits", len(matches))

	var uid string
	for _, h := range matches {
		if h.TableUID != nil {
			uid = *h.TableUID
			break
		}
	}
	if uid != "" && s.tableHasEnoughRows(ctx, uid, 2) {
		if res := s.tableBlockResult(ctx, uid, token, matches[0], matches[:1], conf); res != nil {
			s.logPath("table_intent", req, conf)
			return res
		}
	}

	snippet := strings.TrimSpace(matches[0].Snippet)
	if snippet != "" {
		if !strings.Contains(domain.NormalizeTableText(snippet), tokenOnly) {
			snippet = fmt.Sprintf("Table %s: %s", token, snippet)
		}
		s.logPath("table_intent", req, conf)
		return &domain.AskResult{Confidence: conf, Answer: citeFirst(snippet), Hits: matches[:1]}
	}
	return s.weakResponse(nil, q)
}

// synthesize runs the guarded LLM path over content hits
func (s *askService) synthesize(ctx context.Context, q string, hits []*domain.Hit, conf domain.Confidence, req domain.AskRequest) (*domain.AskResult, error) {
	var preferred []*domain.Hit
	for _, h := range hits {
		if !isLowValueKind(h.ChunkKind) {
			preferred = append(preferred, h)
		}
	}
	if len(preferred) == 0 {
		return s.weakResponse(hits, q), nil
	}

	type scoredHit struct {
		idx   int
		score int
		hit   *domain.Hit
	}
	scored := make([]scoredHit, len(preferred))
	for i, h := range preferred {
		scored[i] = scoredHit{idx: i, score: domain.KeywordOverlapScore(q, h), hit: h}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].idx < scored[j].idx
	})
	ranked := make([]*domain.Hit, len(scored))
	for i, sh := range scored {
		ranked[i] = sh.hit
	}

	if domain.IsPromptPaymentInterestIntent(q) {
		var strong, rest []*domain.Hit
		inStrong := make(map[*domain.Hit]bool)
		statuteRanked := append([]*domain.Hit(nil), ranked...)
		sort.SliceStable(statuteRanked, func(i, j int) bool {
			return domain.StatuteHitScore(statuteRanked[i]) > domain.StatuteHitScore(statuteRanked[j])
		})
		for _, h := range statuteRanked {
			if domain.StatuteHitScore(h) >= 2 {
				strong = append(strong, h)
				inStrong[h] = true
			}
		}
		if len(strong) > 0 {
			for _, h := range ranked {
				if !inStrong[h] {
					rest = append(rest, h)
				}
			}
			ranked = append(strong, rest...)
		}
	}

	topHits := ranked
	if len(topHits) > 6 {
		topHits = topHits[:6]
	}
	if len(topHits) < 4 {
		inTop := make(map[*domain.Hit]bool, len(topHits))
		for _, h := range topHits {
			inTop[h] = true
		}
		for _, h := range hits {
			if inTop[h] {
				continue
			}
			topHits = append(topHits, h)
			if len(topHits) >= 4 {
				break
			}
		}
	}

	sourcesText := formatSourcesCompact(topHits)
	s.logPath("hybrid", req, conf)

	// Time-limit questions require the sources to actually state a day
	// count near payment language.
	if domain.IsTimeLimitQuestion(q) {
		hasDays := domain.HasPaymentDaysPhrase(sourcesText)
		s.logger.Info("time limit gate", "match", hasDays)
		if !hasDays {
			return &domain.AskResult{Confidence: domain.ConfidenceWeak, Answer: insufficientEvidence, Hits: hits}, nil
		}
	}

	answer := ""
	if domain.IsPromptPaymentInterestIntent(q) {
		for _, h := range topHits {
			if domain.StatuteHitScore(h) < 2 {
				continue
			}
			if days := domain.ExtractPromptPaymentDays(h.Text + " " + h.Snippet); days != "" {
				answer = fmt.Sprintf("Interest begins to accrue if the subcontractor is not paid within %s days after receipt of payment.", days)
			}
			break
		}
	}

	if answer == "" {
		llmCtx, cancel := context.WithTimeout(ctx, llmTimeout)
		reply, err := s.llm.Chat(llmCtx, []driven.LLMMessage{
			{Role: driven.RoleSystem, Content: synthesisPrompt},
			{Role: driven.RoleUser, Content: fmt.Sprintf("QUESTION:\n%s\n\nSOURCES:\n%s\n", q, sourcesText)},
		})
		cancel()
		if err != nil {
			var llmErr *domain.LLMError
			if errors.As(err, &llmErr) {
				s.logger.Warn("llm call failed", "provider", llmErr.Provider, "error_code", llmErr.Code)
			} else {
				s.logger.Warn("llm call failed", "provider", s.llm.Provider(), "error", err)
			}
			return s.llmFallback(hits), nil
		}
		answer = strings.TrimSpace(reply)

		// Numeric hallucination guard for day-count questions: every
		// integer in the answer must appear in the sources.
		if domain.IsDaysQuestion(q) {
			blob := strings.ToLower(sourcesText)
			nums := domain.AnswerIntegers(answer)
			if len(nums) > 0 {
				supported := false
				for _, n := range nums {
					if strings.Contains(blob, n) {
						supported = true
						break
					}
				}
				if !supported {
					return s.llmFallback(hits), nil
				}
			}
		}
	}

	conf = domain.SafeConfidence(conf, answer)
	answer = domain.MakeAnswerUserFriendly(answer)
	answer = domain.StripAnswerMetadata(answer, q)
	answer = domain.PolishAnswerText(answer)

	return &domain.AskResult{Confidence: conf, Answer: answer, Hits: hits}, nil
}

// refocusSnippets rebuilds snippets around the query once full chunk
// text is available, hydrating missing text from the store.
func (s *askService) refocusSnippets(ctx context.Context, q string, hits []*domain.Hit) error {
	var missing []int64
	for _, h := range hits {
		if h.Text == "" {
			missing = append(missing, h.ChunkID)
		}
	}
	if len(missing) > 0 {
		texts, err := s.chunkStore.GetTextByIDs(ctx, missing)
		if err != nil {
			return err
		}
		for _, h := range hits {
			if h.Text == "" {
				h.Text = texts[h.ChunkID]
			}
		}
	}
	for _, h := range hits {
		if h.Text != "" {
			h.Snippet = domain.QueryFocusedSnippet(h.Text, q, domain.FocusWindow, domain.FocusMaxLen)
		}
	}
	return nil
}

// tableBlockResult assembles the answer payload for a table-backed
// response. Returns nil when the table metadata is missing.
func (s *askService) tableBlockResult(ctx context.Context, uid, token string, ref *domain.Hit, citeHits []*domain.Hit, conf domain.Confidence) *domain.AskResult {
	meta, err := s.tableStore.GetMeta(ctx, uid)
	if err != nil {
		return nil
	}
	heading := ""
	if ref.Heading != nil {
		heading = *ref.Heading
	}
	title := domain.BuildTableDisplayTitle(token, meta.TableLabel, []string{
		meta.TableLabel, heading, ref.Snippet, ref.Text,
	})
	filename := meta.Filename
	if filename == "" {
		filename = ref.Filename
	}
	return &domain.AskResult{
		Confidence: conf,
		Answer:     title + "\n",
		Hits:       citeHits,
		Table: &domain.TableBlock{
			TableUID:    uid,
			TableLabel:  meta.TableLabel,
			Title:       title,
			Filename:    filename,
			DisplayName: meta.DisplayName,
			PageNumber:  meta.PageNumber,
			RowCount:    meta.RowCount,
		},
	}
}

func (s *askService) tableHasEnoughRows(ctx context.Context, uid string, minRows int) bool {
	n, err := s.tableStore.CountRows(ctx, uid)
	return err == nil && n >= minRows
}

// weakResponse cites the top hit only when it is plausibly relevant
func (s *askService) weakResponse(hits []*domain.Hit, query string) *domain.AskResult {
	if len(hits) == 0 {
		return &domain.AskResult{Confidence: domain.ConfidenceWeak, Answer: weakAnswer, Hits: []*domain.Hit{}}
	}
	top := hits[0]
	if !domain.IsRelevantHit(query, top) {
		return &domain.AskResult{Confidence: domain.ConfidenceWeak, Answer: weakAnswer, Hits: []*domain.Hit{}}
	}
	snippet := strings.TrimSpace(top.Snippet)
	if snippet == "" {
		return &domain.AskResult{Confidence: domain.ConfidenceWeak, Answer: weakAnswer, Hits: []*domain.Hit{}}
	}
	answer := fmt.Sprintf("Closest match from the specification documents: %s [1]", snippet)
	return &domain.AskResult{Confidence: domain.ConfidenceWeak, Answer: answer, Hits: hits[:1]}
}

// llmFallback returns the top snippet verbatim when generation fails
func (s *askService) llmFallback(hits []*domain.Hit) *domain.AskResult {
	if len(hits) > 0 {
		snippet := strings.TrimSpace(hits[0].Snippet)
		answer := "Insufficient Evidence in retrieved sources. [1]"
		if snippet != "" {
			answer = citeFirst(snippet)
		}
		return &domain.AskResult{Confidence: domain.ConfidenceMedium, Answer: answer, Hits: hits[:1]}
	}
	return &domain.AskResult{Confidence: domain.ConfidenceWeak, Answer: insufficientEvidence, Hits: []*domain.Hit{}}
}

func (s *askService) logPath(path string, req domain.AskRequest, conf domain.Confidence) {
	s.logger.Info("ask path",
		"path", path,
		"scope", req.Scope,
		"mp_ids", req.MPIDs,
		"k", req.K,
		"mode", req.Mode,
		"confidence", conf,
	)
}

// -----------------------------
// helpers
// -----------------------------

func isLowValueKind(kind domain.ChunkKind) bool {
	return kind == domain.ChunkKindTableRow || kind == domain.ChunkKindTOC || kind == domain.ChunkKindFrontMatter
}

// preferContentHits moves real content chunks ahead of rows and
// structural chunks in answer mode, allowing at most one low-value hit
// to backfill short result sets.
func preferContentHits(hits []*domain.Hit, k int) []*domain.Hit {
	var preferred, lowValue []*domain.Hit
	for _, h := range hits {
		if isLowValueKind(h.ChunkKind) {
			lowValue = append(lowValue, h)
		} else {
			preferred = append(preferred, h)
		}
	}
	if len(preferred) == 0 {
		return hits
	}
	if len(preferred) >= k {
		return append(preferred[:k], lowValue...)
	}
	allowed := k - len(preferred)
	if allowed > 1 {
		allowed = 1
	}
	if allowed > len(lowValue) {
		allowed = len(lowValue)
	}
	out := append(preferred, lowValue[:allowed]...)
	out = append(out, lowValue[allowed:]...)
	return out
}

// sanitizeExactSectionHits prefers chunks where the section visibly
// starts, falling back to original ordering behind them.
func sanitizeExactSectionHits(sectionID string, hits []*domain.Hit) []*domain.Hit {
	var strong, weak []*domain.Hit
	for _, h := range hits {
		headingOK := h.Heading != nil && strings.HasPrefix(strings.TrimSpace(*h.Heading), sectionID)
		if headingOK || domain.LooksLikeTrueSectionStart(h.Text, sectionID) {
			strong = append(strong, h)
		} else {
			weak = append(weak, h)
		}
	}
	return append(strong, weak...)
}

// filterMismatchedSectionHits drops chunks whose text opens with a
// section conflicting with their metadata or the expected prefix
func filterMismatchedSectionHits(hits []*domain.Hit, expectedPrefix string) []*domain.Hit {
	out := hits[:0]
	for _, h := range hits {
		dom := domain.DominantSectionInText(h.Text)
		if expectedPrefix != "" && dom != "" && !strings.HasPrefix(dom, expectedPrefix) {
			continue
		}
		if h.SectionID != nil && dom != "" && dom != *h.SectionID {
			continue
		}
		out = append(out, h)
	}
	return out
}

// bm25Rerank scores the fetched section chunks against the query and
// keeps the top k, writing scores back onto the hits.
func bm25Rerank(query string, hits []*domain.Hit, k int) []*domain.Hit {
	if len(hits) == 0 {
		return nil
	}
	corpus := make([][]string, len(hits))
	for i, h := range hits {
		corpus[i] = domain.BM25Tokens(h.Text)
	}
	ix := bm25.New(corpus)
	scores := ix.Scores(domain.BM25Tokens(query))

	order := make([]int, len(hits))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })
	if len(order) > k {
		order = order[:k]
	}

	out := make([]*domain.Hit, 0, len(order))
	for _, i := range order {
		h := hits[i]
		h.Score = scores[i]
		out = append(out, h)
	}
	return out
}

var sectionWordRe = regexp.MustCompile(`(?i)\bsection\s*(\d{3})\b`)

func sectionWordPrefix(q string) string {
	if m := sectionWordRe.FindStringSubmatch(q); m != nil {
		return m[1]
	}
	return ""
}

// topTableBlock finds the dominant table among the hits and returns its
// uid, label and up to 8 of its row hits.
func topTableBlock(hits []*domain.Hit) (uid, label string, rows []*domain.Hit) {
	byUID := make(map[string][]*domain.Hit)
	var order []string
	for _, h := range hits {
		if h.TableUID == nil {
			continue
		}
		if _, seen := byUID[*h.TableUID]; !seen {
			order = append(order, *h.TableUID)
		}
		byUID[*h.TableUID] = append(byUID[*h.TableUID], h)
	}
	if len(order) == 0 {
		return "", "", nil
	}
	best := order[0]
	for _, u := range order[1:] {
		if len(byUID[u]) > len(byUID[best]) {
			best = u
		}
	}
	rows = byUID[best]
	if len(rows) > 8 {
		rows = rows[:8]
	}
	label = "Table"
	if rows[0].TableLabel != nil {
		label = *rows[0].TableLabel
	}
	return best, label, rows
}

func isMaterialsHeading(h *domain.Hit) bool {
	return h.Heading != nil && strings.Contains(strings.ToLower(*h.Heading), "materials")
}

// looksLikeListTableSnippet detects dot-leader and short-line listings
// that should be shown verbatim.
func looksLikeListTableSnippet(snippet string) bool {
	if strings.Contains(snippet, "Provide materials as specified in") {
		return true
	}
	if strings.Count(snippet, "...") >= 3 {
		return true
	}
	var lines []string
	for _, ln := range strings.Split(snippet, "\n") {
		if strings.TrimSpace(ln) != "" {
			lines = append(lines, strings.TrimSpace(ln))
		}
	}
	if len(lines) < 4 {
		return false
	}
	short := 0
	for _, ln := range lines {
		if len(ln) <= 80 {
			short++
		}
	}
	return short >= 3
}

func citeFirst(snippet string) string {
	s := strings.TrimSpace(snippet)
	if strings.HasSuffix(s, "]") {
		return s
	}
	return s + " [1]"
}

func formatSourcesCompact(hits []*domain.Hit) string {
	blocks := make([]string, 0, len(hits))
	for i, h := range hits {
		section := ""
		if h.SectionID != nil {
			section = *h.SectionID
		}
		blocks = append(blocks, fmt.Sprintf("[SOURCE %d]\nSection: %s\nPages: %d-%d\nExcerpt:\n%s\n",
			i+1, section, h.PageStart, h.PageEnd, h.Snippet))
	}
	return strings.Join(blocks, "\n")
}
