package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const tocPage = `701.01 Description .......... 339
701.02 Materials .......... 340
701.03 Construction .......... 341
SECTION 702 - TRAFFIC SIGNALS .......... 350`

func TestTOCEntryCount(t *testing.T) {
	assert.Equal(t, 4, TOCEntryCount(tocPage))
	assert.Equal(t, 0, TOCEntryCount("701.01  DESCRIPTION\nThis Section describes conduit work."))
}

func TestTOCPenalty(t *testing.T) {
	assert.Equal(t, 1.0, TOCPenalty("plain prose with no entries", true))

	soft := TOCPenalty(tocPage, false)
	hard := TOCPenalty(tocPage, true)
	assert.Less(t, hard, soft)
	assert.InDelta(t, 1.0/(1.0+0.5*4), soft, 1e-9)
	assert.InDelta(t, 1.0/(1.0+3.0*4), hard, 1e-9)
}

func TestSectionContentBonus(t *testing.T) {
	content := "701.01  DESCRIPTION\nThis Section describes the work. The Contractor shall furnish conduit."
	assert.Greater(t, SectionContentBonus("701.01", content), 1.0)

	toc := "701.01 Description .......... 339"
	assert.Less(t, SectionContentBonus("701.01", toc), 1.0)

	// No section intent leaves scores untouched.
	assert.Equal(t, 1.0, SectionContentBonus("payment deadlines", content))
}

func TestLooksLikeTOCBlock(t *testing.T) {
	assert.True(t, LooksLikeTOCBlock("TABLE OF CONTENTS"))
	assert.True(t, LooksLikeTOCBlock("701.01 Description .... 339"))
	assert.False(t, LooksLikeTOCBlock("The Contractor shall install conduit."))
}

func TestDominantSectionInText(t *testing.T) {
	assert.Equal(t, "702.01", DominantSectionInText("  702.01  DESCRIPTION\nprose"))
	assert.Equal(t, "", DominantSectionInText("as specified in 702.01 elsewhere"))
	assert.Equal(t, "", DominantSectionInText(""))
}

func TestLooksLikeTrueSectionStart(t *testing.T) {
	text := "701.02  MATERIALS\nProvide materials as specified."
	assert.True(t, LooksLikeTrueSectionStart(text, "701.02"))
	assert.False(t, LooksLikeTrueSectionStart(text, "701.03"))
	assert.False(t, LooksLikeTrueSectionStart("", "701.02"))

	// The id appearing only deep in the text is not a start.
	deep := strings.Repeat("filler text line\n", 40) + "701.02  MATERIALS"
	assert.False(t, LooksLikeTrueSectionStart(deep, "701.02"))
}
