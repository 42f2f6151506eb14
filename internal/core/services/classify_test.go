package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
)

func TestEquationScore(t *testing.T) {
	assert.Zero(t, equationScore(""))

	formula := "intro line\nQ = C × A × P / 100\nmore prose"
	score := equationScore(formula)
	assert.GreaterOrEqual(t, score, equationKindThreshold)

	prose := "The contractor shall provide materials conforming to the requirements."
	assert.Less(t, equationScore(prose), equationKindThreshold)
}

func TestEquationScore_IgnoresShortAndLongLines(t *testing.T) {
	// under 8 chars, would otherwise score on symbols
	assert.Zero(t, equationScore("x = 1"))
}

func TestClassifyChunk(t *testing.T) {
	sec := "701.01"

	toc := "TABLE OF CONTENTS\n701.01 Description ........ 3"
	assert.Equal(t, domain.ChunkKindTOC, classifyChunk(&sec, toc))

	assert.Equal(t, domain.ChunkKindFrontMatter, classifyChunk(nil, "Copyright and revision notes."))
	assert.Equal(t, domain.ChunkKindContent, classifyChunk(&sec, "Install the conduit as shown."))
}

func TestClassifyChunk_TOCWinsOverSection(t *testing.T) {
	sec := "900.01"
	text := "900.01.01 Scope ...... 12\n900.01.02 Referenced Documents ...... 13"
	require.Equal(t, domain.ChunkKindTOC, classifyChunk(&sec, text))
}
