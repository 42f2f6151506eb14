package lexical

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"log/slog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
	"github.com/fieldline-labs/spechub-core/internal/core/ports/driven"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func chunkHit(id int64, docType domain.DocType, section, text string) *domain.Hit {
	return &domain.Hit{
		ChunkID:    id,
		DocumentID: 1,
		Filename:   "standspec.pdf",
		DocType:    docType,
		SectionID:  &section,
		PageStart:  10,
		PageEnd:    10,
		ChunkKind:  domain.ChunkKindContent,
		Text:       text,
	}
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("Provide MP1-25 conduit per 701.02.")
	assert.Contains(t, tokens, "mp1-25")
	assert.Contains(t, tokens, "mp125") // folded variant
	assert.Contains(t, tokens, "701.02")
	assert.Contains(t, tokens, "conduit")
}

func TestSearchRanksMatchingChunkFirst(t *testing.T) {
	ix := New("", testLogger())
	require.NoError(t, ix.Rebuild(context.Background(), []*domain.Hit{
		chunkHit(1, domain.DocTypeStandSpec, "701.02", "Provide rigid metallic conduit conforming to the standards."),
		chunkHit(2, domain.DocTypeStandSpec, "404.01", "Payment will be made within 30 days of receipt of the invoice."),
	}))
	require.True(t, ix.Ready())

	hits, err := ix.Search(context.Background(), "rigid conduit", 2, domain.ScopeFilter{Scope: domain.ScopeAll}, driven.LexicalSearchOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, int64(1), hits[0].ChunkID)
	require.NotNil(t, hits[0].BM25Score)
	assert.Greater(t, *hits[0].BM25Score, 0.0)
	assert.NotEmpty(t, hits[0].Snippet)
}

func TestSearchAppliesScopeFilter(t *testing.T) {
	ix := New("", testLogger())
	mpID := "MP1-25"
	mpHit := chunkHit(2, domain.DocTypeMP, "1.01", "Conduit slack requirements for fiber installations.")
	mpHit.MPID = &mpID
	require.NoError(t, ix.Rebuild(context.Background(), []*domain.Hit{
		chunkHit(1, domain.DocTypeStandSpec, "701.02", "Conduit materials for roadway lighting."),
		mpHit,
	}))

	hits, err := ix.Search(context.Background(), "conduit", 5, domain.ScopeFilter{Scope: domain.ScopeStandSpec}, driven.LexicalSearchOptions{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, int64(1), hits[0].ChunkID)
}

func TestSearchEquationThresholdDropsProse(t *testing.T) {
	ix := New("", testLogger())
	eq := chunkHit(1, domain.DocTypeStandSpec, "401.03", "PPA = PD x QL / 100 pay adjustment formula")
	eq.EquationScore = 0.8
	eq.ChunkKind = domain.ChunkKindEquation
	prose := chunkHit(2, domain.DocTypeStandSpec, "401.04", "The pay adjustment is described in this subsection.")
	require.NoError(t, ix.Rebuild(context.Background(), []*domain.Hit{eq, prose}))

	hits, err := ix.Search(context.Background(), "pay adjustment", 5, domain.ScopeFilter{Scope: domain.ScopeAll},
		driven.LexicalSearchOptions{MinEquationScore: 0.45})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, int64(1), hits[0].ChunkID)
}

func TestSearchPenalizesTOCForSectionQueries(t *testing.T) {
	tocText := `TABLE OF CONTENTS
701.01 Description .......... 339
701.02 Materials .......... 340
701.03 Equipment .......... 341
702.01 Description .......... 350
702.02 Materials .......... 351
703.01 Description .......... 360`
	content := "701.01  DESCRIPTION\nThis Section describes conduit work. The Contractor shall furnish all materials."

	ix := New("", testLogger())
	require.NoError(t, ix.Rebuild(context.Background(), []*domain.Hit{
		chunkHit(1, domain.DocTypeStandSpec, "701.01", tocText),
		chunkHit(2, domain.DocTypeStandSpec, "701.01", content),
	}))

	hits, err := ix.Search(context.Background(), "701.01", 2, domain.ScopeFilter{Scope: domain.ScopeAll}, driven.LexicalSearchOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, int64(2), hits[0].ChunkID)
}

func TestSearchBeforeRebuildReturnsNotReady(t *testing.T) {
	ix := New("", testLogger())
	require.False(t, ix.Ready())

	_, err := ix.Search(context.Background(), "conduit", 3, domain.ScopeFilter{}, driven.LexicalSearchOptions{})
	assert.ErrorIs(t, err, domain.ErrIndexNotReady)
}

func TestArtifactPersistsAcrossRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexical.gob")

	ix := New(path, testLogger())
	require.NoError(t, ix.Rebuild(context.Background(), []*domain.Hit{
		chunkHit(1, domain.DocTypeStandSpec, "701.02", "Provide rigid metallic conduit."),
	}))

	reloaded := New(path, testLogger())
	require.True(t, reloaded.Ready())

	hits, err := reloaded.Search(context.Background(), "conduit", 1, domain.ScopeFilter{Scope: domain.ScopeAll}, driven.LexicalSearchOptions{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, int64(1), hits[0].ChunkID)
}
