package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeSnippet(t *testing.T) {
	assert.Equal(t, "short text", MakeSnippet("short\ntext", 450))

	long := strings.Repeat("x", 500)
	snip := MakeSnippet(long, 450)
	assert.Len(t, snip, 450+len("…"))
	assert.True(t, strings.HasSuffix(snip, "…"))
}

func TestQueryFocusedSnippetCentersOnMatch(t *testing.T) {
	text := strings.Repeat("padding words before the relevant clause. ", 30) +
		"The prime shall pay the subcontractor within 10 days of receipt of payment." +
		strings.Repeat(" trailing filler after the clause.", 30)

	snip := QueryFocusedSnippet(text, "within how many days of receipt", FocusWindow, FocusMaxLen)
	assert.Contains(t, snip, "10 days")
	assert.LessOrEqual(t, len(snip), FocusMaxLen+6)
	assert.True(t, strings.HasPrefix(snip, "…"))
}

func TestQueryFocusedSnippetFallsBackToStart(t *testing.T) {
	text := strings.Repeat("unrelated content about aggregate gradation. ", 40)
	snip := QueryFocusedSnippet(text, "zzz qqq", FocusWindow, FocusMaxLen)
	assert.True(t, strings.HasPrefix(snip, "unrelated content"))
	assert.True(t, strings.HasSuffix(snip, "…"))
}

func TestQueryFocusedSnippetEmptyText(t *testing.T) {
	assert.Equal(t, "", QueryFocusedSnippet("", "anything", FocusWindow, FocusMaxLen))
}

func TestSelectSectionHits(t *testing.T) {
	mk := func(n int) []*Hit {
		hits := make([]*Hit, n)
		for i := range hits {
			hits[i] = &Hit{ChunkID: int64(i)}
		}
		return hits
	}
	assert.Nil(t, SelectSectionHits(nil))
	assert.Len(t, SelectSectionHits(mk(2)), 2)
	assert.Len(t, SelectSectionHits(mk(5)), 5)
	assert.Len(t, SelectSectionHits(mk(9)), 6)
}

func TestBuildSectionExcerpt(t *testing.T) {
	heading := "701.02  MATERIALS"
	hits := []*Hit{
		{Heading: &heading, PageStart: 12, PageEnd: 13, Snippet: "Provide materials as specified."},
		{PageStart: 14, PageEnd: 14, Snippet: "Use rigid metallic conduit."},
	}
	out := BuildSectionExcerpt("701.02", hits)
	require.True(t, strings.HasPrefix(out, "701.02 — Relevant excerpts"))
	assert.Contains(t, out, "[1] 701.02  MATERIALS (pp. 12-13): Provide materials as specified.")
	assert.Contains(t, out, "[2] (p. 14): Use rigid metallic conduit.")
}

func TestBuildSectionExcerptFallbackLabel(t *testing.T) {
	sid := "653.02"
	out := BuildSectionExcerpt("", []*Hit{{SectionID: &sid, PageStart: 3, Snippet: "text"}})
	assert.True(t, strings.HasPrefix(out, "653.02 —"))

	out = BuildSectionExcerpt("", []*Hit{{PageStart: 3, Snippet: "text"}})
	assert.True(t, strings.HasPrefix(out, "Section —"))
}
