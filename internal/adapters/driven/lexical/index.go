// Package lexical implements the BM25 side of retrieval over an
// in-memory artifact that can be persisted to disk and swapped
// atomically on rebuild.
package lexical

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync/atomic"

	"log/slog"

	"github.com/fieldline-labs/spechub-core/internal/bm25"
	"github.com/fieldline-labs/spechub-core/internal/core/domain"
	"github.com/fieldline-labs/spechub-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.LexicalIndex = (*Index)(nil)

const snippetLen = 350

// wordRe keeps compound tokens like MP1-25, 701.01 and A-709 intact
var wordRe = regexp.MustCompile(`[A-Za-z0-9]+(?:[.\-/:][A-Za-z0-9]+)*`)

// Tokenize lowercases and splits text on the compound word pattern.
// Tokens containing dashes or slashes also emit a folded variant
// (mp-1-25 -> mp125) so hyphenation differences still match.
func Tokenize(text string) []string {
	var out []string
	for _, m := range wordRe.FindAllString(text, -1) {
		t := strings.ToLower(m)
		out = append(out, t)
		if strings.ContainsAny(t, "-/") {
			folded := strings.NewReplacer("-", "", "/", "").Replace(t)
			out = append(out, folded)
		}
	}
	return out
}

// artifact is one immutable build of the index. Meta is aligned with
// the BM25 corpus order and keeps full chunk text for score shaping.
type artifact struct {
	Index *bm25.Index
	Meta  []*domain.Hit
}

// Index implements driven.LexicalIndex. Searches read the current
// artifact through an atomic pointer; Rebuild swaps in a new one.
type Index struct {
	path    string
	logger  *slog.Logger
	current atomic.Pointer[artifact]
}

// New creates the index, loading a previously persisted artifact from
// path if one exists. An empty path keeps the index memory-only.
func New(path string, logger *slog.Logger) *Index {
	ix := &Index{path: path, logger: logger}
	if path == "" {
		return ix
	}
	art, err := loadArtifact(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("failed to load lexical index artifact", "path", path, "error", err)
		}
		return ix
	}
	ix.current.Store(art)
	logger.Info("lexical index loaded", "path", path, "chunks", len(art.Meta))
	return ix
}

// Ready reports whether an artifact is loaded
func (ix *Index) Ready() bool {
	return ix.current.Load() != nil
}

// Search scores every chunk and returns the top k allowed by the scope
// filter. Raw BM25 is shaped by a TOC penalty and a section-content
// bonus so contents pages do not outrank the sections they list.
// Chunks with a positive raw score are preferred; when none qualify the
// best-shaped hits are returned anyway.
func (ix *Index) Search(ctx context.Context, query string, k int, filter domain.ScopeFilter, opts driven.LexicalSearchOptions) ([]*domain.Hit, error) {
	art := ix.current.Load()
	if art == nil {
		return nil, domain.ErrIndexNotReady
	}
	if k <= 0 {
		return nil, nil
	}

	raw := art.Index.Scores(Tokenize(query))
	sec3, secDot := domain.ParseSectionIntent(query)
	sectionIntent := sec3 != "" || secDot != ""

	final := make([]float64, len(raw))
	for i, m := range art.Meta {
		if !filter.Allows(m.DocType, m.MPID) {
			final[i] = math.Inf(-1)
			continue
		}
		if opts.MinEquationScore > 0 && m.EquationScore < opts.MinEquationScore {
			final[i] = math.Inf(-1)
			continue
		}
		if raw[i] <= 0 {
			final[i] = 0
			continue
		}
		final[i] = raw[i] *
			domain.TOCPenalty(m.Text, sectionIntent) *
			domain.SectionContentBonus(query, m.Text)
	}

	candidates := make([]int, 0, len(final))
	for i, s := range final {
		if !math.IsInf(s, -1) {
			candidates = append(candidates, i)
		}
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return final[candidates[a]] > final[candidates[b]]
	})

	ranked := make([]int, 0, k)
	for _, i := range candidates {
		if raw[i] > 0 {
			ranked = append(ranked, i)
			if len(ranked) >= k {
				break
			}
		}
	}
	if len(ranked) == 0 {
		if len(candidates) > k {
			candidates = candidates[:k]
		}
		ranked = candidates
	}

	hits := make([]*domain.Hit, 0, len(ranked))
	for _, i := range ranked {
		h := *art.Meta[i]
		h.Score = final[i]
		bm := raw[i]
		h.BM25Score = &bm
		h.Snippet = domain.MakeSnippet(h.Text, snippetLen)
		hits = append(hits, &h)
	}
	return hits, nil
}

// Rebuild builds a fresh artifact over the given chunks, persists it,
// and swaps it in
func (ix *Index) Rebuild(ctx context.Context, chunks []*domain.Hit) error {
	corpus := make([][]string, len(chunks))
	meta := make([]*domain.Hit, len(chunks))
	for i, h := range chunks {
		corpus[i] = Tokenize(h.Text)
		cp := *h
		meta[i] = &cp
	}

	art := &artifact{Index: bm25.New(corpus), Meta: meta}

	if ix.path != "" {
		if err := saveArtifact(ix.path, art); err != nil {
			return fmt.Errorf("persist lexical index: %w", err)
		}
	}
	ix.current.Store(art)
	ix.logger.Info("lexical index rebuilt", "chunks", len(meta))
	return nil
}

// saveArtifact writes the artifact to a temp file and renames it into
// place so a crash never leaves a truncated artifact behind
func saveArtifact(path string, art *artifact) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(art); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func loadArtifact(path string) (*artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var art artifact
	if err := gob.NewDecoder(f).Decode(&art); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	return &art, nil
}
