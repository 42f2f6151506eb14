package bm25

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoresRankMatchingDocumentFirst(t *testing.T) {
	corpus := [][]string{
		{"conduit", "shall", "be", "rigid", "metallic", "conduit"},
		{"payment", "within", "days", "of", "receipt"},
		{"aggregate", "gradation", "percent", "passing"},
	}
	ix := New(corpus)

	scores := ix.Scores([]string{"conduit", "rigid"})
	require.Len(t, scores, 3)
	assert.Greater(t, scores[0], scores[1])
	assert.Greater(t, scores[0], scores[2])
}

func TestScoresUnknownTermIsZero(t *testing.T) {
	ix := New([][]string{{"alpha", "beta"}})
	scores := ix.Scores([]string{"gamma"})
	assert.Equal(t, 0.0, scores[0])
}

func TestScoresEmptyCorpus(t *testing.T) {
	ix := New(nil)
	assert.Empty(t, ix.Scores([]string{"anything"}))
}

func TestLengthNormalizationPrefersShorterDoc(t *testing.T) {
	long := make([]string, 0, 40)
	for i := 0; i < 39; i++ {
		long = append(long, "filler")
	}
	long = append(long, "sieve")
	ix := New([][]string{
		{"sieve", "sizes"},
		long,
	})
	scores := ix.Scores([]string{"sieve"})
	assert.Greater(t, scores[0], scores[1])
}
