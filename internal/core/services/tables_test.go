package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gradationPage = `Some introductory text about aggregates.
Table 901.03-2  Gradation Requirements
Sieve Size     Percent Passing
2"             100
1 1/2"         90-100
3/4"           25-60
No. 4          0-15
No. 8          0-5
901.04  FINE AGGREGATE
Fine aggregate shall conform to the requirements below.`

func TestExtractTableBlocks_BasicBlock(t *testing.T) {
	blocks := extractTableBlocks(gradationPage)
	require.Len(t, blocks, 1)

	blk := blocks[0]
	assert.Equal(t, 1, blk.startLine)
	assert.Equal(t, 7, blk.endLine)
	require.Len(t, blk.lines, 7)
	assert.Contains(t, blk.lines[0], "Table 901.03-2")
	// the section header line that closed the block is not part of it
	for _, ln := range blk.lines {
		assert.NotContains(t, ln, "FINE AGGREGATE")
	}
}

func TestExtractTableBlocks_TooShortBlockDropped(t *testing.T) {
	page := "Table 901.03-1  Tiny\nrow one 1\nrow two 2\n901.04  NEXT"
	assert.Empty(t, extractTableBlocks(page))
}

func TestExtractTableBlocks_ConsecutiveTablesSplit(t *testing.T) {
	page := strings.Join([]string{
		"Table 901.03-1  First",
		"a 1", "b 2", "c 3", "d 4",
		"Table 901.03-2  Second",
		"e 5", "f 6", "g 7", "h 8",
	}, "\n")

	blocks := extractTableBlocks(page)
	require.Len(t, blocks, 2)
	assert.Contains(t, blocks[0].lines[0], "First")
	assert.Contains(t, blocks[1].lines[0], "Second")
	assert.Equal(t, 4, blocks[0].endLine)
	assert.Equal(t, 5, blocks[1].startLine)
}

func TestExtractTableBlocks_EmptyPage(t *testing.T) {
	assert.Empty(t, extractTableBlocks(""))
}

func TestStableTableUID(t *testing.T) {
	lines := []string{"Table 901.03-2  Gradation", "row 1", "row 2"}

	uid1 := stableTableUID(7, "standspec.pdf", 12, 1, lines)
	uid2 := stableTableUID(7, "standspec.pdf", 12, 1, lines)
	assert.Equal(t, uid1, uid2)
	assert.True(t, strings.HasPrefix(uid1, "tbl_"))
	assert.Len(t, uid1, 4+40)

	other := stableTableUID(7, "standspec.pdf", 12, 2, lines)
	assert.NotEqual(t, uid1, other)
}

func TestTableLabelFor(t *testing.T) {
	assert.Equal(t, "Table (p. 12) #1", tableLabelFor(12, 1))
}

func TestFindTableTokenRef(t *testing.T) {
	assert.Equal(t, "901.03-2", findTableTokenRef("Conform to Table 901.03-2 for gradation."))
	assert.Equal(t, "701.03.02-1", findTableTokenRef("See Tab. 701.03.02-1 on the next page."))
	assert.Equal(t, "", findTableTokenRef("No table reference in this text."))
}
