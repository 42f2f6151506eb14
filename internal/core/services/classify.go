package services

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
)

// Chunks scoring at or above this are stored as equation chunks
const equationKindThreshold = 0.45

var (
	equationVarRe  = regexp.MustCompile(`\b[A-Za-z]{1,4}\d{0,2}\b`)
	equationFuncRe = regexp.MustCompile(`(?i)\b(?:log|ln|sin|cos|tan)\b`)
	equationOpsRe  = regexp.MustCompile(`[=<>±×÷∑√^_]`)
	fractionRe     = regexp.MustCompile(`\b[A-Za-z0-9]+\s*/\s*[A-Za-z0-9]+\b`)
)

const equationSymbols = "=≤≥≠±×÷∑√^_"

// classifyChunk buckets a content chunk. Equation scoring happens
// separately; callers promote to ChunkKindEquation first.
func classifyChunk(sectionID *string, text string) domain.ChunkKind {
	if domain.LooksLikeTOCBlock(text) {
		return domain.ChunkKindTOC
	}
	if sectionID == nil {
		return domain.ChunkKindFrontMatter
	}
	return domain.ChunkKindContent
}

// equationScore is a lightweight per-line heuristic for equation-like
// content, returning 0..1. The best-scoring line wins so a single
// formula inside a prose chunk still registers.
func equationScore(text string) float64 {
	if text == "" {
		return 0
	}

	best := 0.0
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || len(line) < 8 || len(line) > 200 {
			continue
		}

		score := 0.0
		if strings.ContainsAny(line, equationSymbols) {
			score += 0.25
		}
		if equationOpsRe.MatchString(line) {
			score += 0.2
		}
		if len(equationVarRe.FindAllString(line, 3)) >= 2 {
			score += 0.2
		}
		if equationFuncRe.MatchString(line) {
			score += 0.1
		}
		if fractionRe.MatchString(line) {
			score += 0.1
		}

		digits := 0
		nonLetters := 0
		total := 0
		for _, ch := range line {
			total++
			if unicode.IsDigit(ch) {
				digits++
			}
			if !unicode.IsLetter(ch) && !unicode.IsSpace(ch) {
				nonLetters++
			}
		}
		if digits >= 4 {
			score += 0.1
		}
		if total > 0 && float64(nonLetters)/float64(total) > 0.3 {
			score += 0.1
		}

		if score > best {
			best = score
		}
	}

	if best > 1 {
		return 1
	}
	return best
}
