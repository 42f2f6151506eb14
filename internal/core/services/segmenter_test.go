package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
)

func TestTruncateHeading_BreaksOnRuneBoundary(t *testing.T) {
	short := "701.01  DESCRIPTION"
	assert.Equal(t, short, truncateHeading(short))

	// an en dash straddling the byte cap must not be split mid-rune
	long := strings.Repeat("A", headingMaxLen-1) + "– TRENCHING"
	out := truncateHeading(long)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, strings.Repeat("A", headingMaxLen-1), out)
	assert.LessOrEqual(t, len(out), headingMaxLen)
}

func TestSplitPageIntoSegments_EmptyPage(t *testing.T) {
	segs := splitPageIntoSegments("")
	require.Len(t, segs, 1)
	assert.Nil(t, segs[0].sectionID)
	assert.Equal(t, "", segs[0].text)
}

func TestSplitPageIntoSegments_SubsectionHeaders(t *testing.T) {
	text := "p. 12\n" +
		"701.01  DESCRIPTION\n" +
		"This Section describes conduit work.\n" +
		"701.02  MATERIALS\n" +
		"Provide materials as specified in 701.03.01 of this manual.\n"

	segs := splitPageIntoSegments(text)
	require.Len(t, segs, 2)

	require.NotNil(t, segs[0].sectionID)
	assert.Equal(t, "701.01", *segs[0].sectionID)
	assert.Equal(t, "701.01  DESCRIPTION", *segs[0].heading)
	assert.Contains(t, segs[0].text, "conduit work")
	// short page-number preamble is dropped
	assert.NotContains(t, segs[0].text, "p. 12")

	assert.Equal(t, "701.02", *segs[1].sectionID)
	// inline cross reference must not start a segment of its own
	assert.Contains(t, segs[1].text, "701.03.01")
}

func TestSplitPageIntoSegments_LongPreambleFoldsIntoFirstSegment(t *testing.T) {
	preamble := "Continuation of requirements from the previous page of this part."
	text := preamble + "\n701.03  CONSTRUCTION\nDig the trench.\n"

	segs := splitPageIntoSegments(text)
	require.Len(t, segs, 1)
	assert.Contains(t, segs[0].text, preamble)
	assert.Contains(t, segs[0].text, "Dig the trench.")
}

func TestSplitPageIntoSegments_SectionHeaderFallback(t *testing.T) {
	text := "SECTION 701 - GENERAL ITEMS\nScope of the work.\n"

	segs := splitPageIntoSegments(text)
	require.Len(t, segs, 1)
	require.NotNil(t, segs[0].sectionID)
	assert.Equal(t, "701", *segs[0].sectionID)
	assert.Equal(t, "SECTION 701 - GENERAL ITEMS", *segs[0].heading)
}

func TestSplitPageIntoSegments_NoMarkers(t *testing.T) {
	segs := splitPageIntoSegments("Just prose without any heading structure here.")
	require.Len(t, segs, 1)
	assert.Nil(t, segs[0].sectionID)
	assert.Nil(t, segs[0].heading)
}

func TestChunkDocumentPages_MergesContinuationPages(t *testing.T) {
	pages := []*domain.Page{
		{PageNumber: 1, RawText: "701.01  DESCRIPTION\nFirst page of the subsection.\n"},
		{PageNumber: 2, RawText: "Continuation text with no heading at all on this page.\n"},
		{PageNumber: 3, RawText: "701.02  MATERIALS\nSecond subsection starts here.\n"},
	}

	chunks := chunkDocumentPages(pages)
	require.Len(t, chunks, 2)

	assert.Equal(t, "701.01", *chunks[0].SectionID)
	assert.Equal(t, 1, chunks[0].PageStart)
	assert.Equal(t, 2, chunks[0].PageEnd)
	assert.Contains(t, chunks[0].Text, "Continuation text")

	assert.Equal(t, "701.02", *chunks[1].SectionID)
	assert.Equal(t, 3, chunks[1].PageStart)
	assert.Equal(t, 3, chunks[1].PageEnd)
}

func TestChunkDocumentPages_UntaggedPagesFlushBeforeFirstHeading(t *testing.T) {
	pages := []*domain.Page{
		{PageNumber: 1, RawText: "Front matter prose, no headings."},
		{PageNumber: 2, RawText: "701.01  DESCRIPTION\nBody.\n"},
	}

	chunks := chunkDocumentPages(pages)
	require.Len(t, chunks, 2)
	assert.Nil(t, chunks[0].SectionID)
	assert.Equal(t, 1, chunks[0].PageEnd)
	require.NotNil(t, chunks[1].SectionID)
	assert.Equal(t, "701.01", *chunks[1].SectionID)
}

func TestChunkDocumentPages_EmptyPagesProduceNoChunks(t *testing.T) {
	chunks := chunkDocumentPages([]*domain.Page{{PageNumber: 1, RawText: ""}})
	assert.Empty(t, chunks)
}
