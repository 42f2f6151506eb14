package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Snippet building. Retrieval stores a start-of-text snippet; the ask
// path rebuilds snippets around the best query-term match once full
// chunk text is hydrated.

const (
	// SnippetLen is the default stored snippet length
	SnippetLen = 450

	// FocusWindow and FocusMaxLen shape query-focused snippets on the
	// ask path.
	FocusWindow = 260
	FocusMaxLen = 520
)

var (
	statuteTokenRe = regexp.MustCompile(`\b\d{1,3}:\d{1,3}-\d+\b`)
	plainNumberRe  = regexp.MustCompile(`\b\d+\b`)
	wordTokenRe    = regexp.MustCompile(`[a-z0-9]+`)
)

// snippetAnchors bias the focus window toward payment language, where
// day-count answers usually live.
var snippetAnchors = []string{"receipt", "receiving", "payment", "paid", "interest", "prime rate"}

// snippetPhrases are query phrases worth centering on verbatim
var snippetPhrases = []string{"days", "day", "within", "interest", "subcontractor", "supplier", "receipt", "prime rate"}

// MakeSnippet flattens and truncates text to the stored snippet length
func MakeSnippet(text string, n int) string {
	t := strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	if len(t) <= n {
		return t
	}
	return strings.TrimRight(t[:n], " ") + "…"
}

// QueryFocusedSnippet builds a snippet centered around the best match
// of query terms or numbers, preferring matches near payment anchors.
// Falls back to the start of the text when nothing matches.
func QueryFocusedSnippet(text, query string, window, maxLen int) string {
	t := strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	if t == "" {
		return ""
	}
	q := strings.ToLower(query)

	var patterns []string
	for _, ph := range snippetPhrases {
		if strings.Contains(q, ph) {
			patterns = append(patterns, regexp.QuoteMeta(ph))
		}
	}
	for _, s := range statuteTokenRe.FindAllString(q, -1) {
		patterns = append(patterns, regexp.QuoteMeta(s))
	}
	for _, n := range plainNumberRe.FindAllString(q, -1) {
		patterns = append(patterns, `\b`+regexp.QuoteMeta(n)+`\b`)
	}
	terms := 0
	for _, w := range wordTokenRe.FindAllString(q, -1) {
		if len(w) < 4 {
			continue
		}
		patterns = append(patterns, `\b`+regexp.QuoteMeta(w)+`\b`)
		if terms++; terms >= 12 {
			break
		}
	}

	var anchorPositions []int
	for _, a := range snippetAnchors {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(a) + `\b`)
		for _, loc := range re.FindAllStringIndex(t, -1) {
			anchorPositions = append(anchorPositions, loc[0])
		}
	}

	// Score a match position: closest anchor wins, later position breaks ties.
	better := func(pos int, bestPos, bestDist int) (int, bool) {
		if len(anchorPositions) == 0 {
			return 0, bestPos < 0 || pos > bestPos
		}
		dist := -1
		for _, a := range anchorPositions {
			d := pos - a
			if d < 0 {
				d = -d
			}
			if dist < 0 || d < dist {
				dist = d
			}
		}
		if bestPos < 0 || dist < bestDist || (dist == bestDist && pos > bestPos) {
			return dist, true
		}
		return dist, false
	}

	bestPos, bestDist := -1, -1
	for _, pat := range patterns {
		re, err := regexp.Compile(`(?i)` + pat)
		if err != nil {
			continue
		}
		for _, loc := range re.FindAllStringIndex(t, -1) {
			if dist, ok := better(loc[0], bestPos, bestDist); ok {
				bestPos, bestDist = loc[0], dist
			}
		}
	}

	if bestPos < 0 {
		if len(t) <= maxLen {
			return t
		}
		return strings.TrimRight(t[:maxLen], " ") + "…"
	}

	start := bestPos - window
	if start < 0 {
		start = 0
	}
	end := bestPos + window
	if end > len(t) {
		end = len(t)
	}

	snip := strings.TrimSpace(t[start:end])
	if start > 0 {
		snip = "…" + snip
	}
	if end < len(t) {
		snip += "…"
	}
	if len(snip) > maxLen {
		snip = strings.TrimRight(snip[:maxLen], " ") + "…"
	}
	return snip
}

// TrimSnippet bounds an excerpt for the merged section answer
func TrimSnippet(text string, maxLen int) string {
	s := strings.TrimSpace(text)
	if len(s) > maxLen {
		s = strings.TrimRight(s[:maxLen], " ") + "..."
	}
	return s
}

// SelectSectionHits keeps between 4 and 6 hits for a merged section
// excerpt so section answers never collapse to a single snippet.
func SelectSectionHits(hits []*Hit) []*Hit {
	const minHits, maxHits = 4, 6
	if len(hits) == 0 {
		return nil
	}
	n := len(hits)
	if n < minHits {
		// keep all
	} else if n > maxHits {
		n = maxHits
	}
	return hits[:n]
}

// BuildSectionExcerpt merges hits into a numbered deterministic answer
// with page labels, used for section-intent queries instead of the LLM.
func BuildSectionExcerpt(sectionID string, hits []*Hit) string {
	label := sectionID
	if label == "" && len(hits) > 0 && hits[0].SectionID != nil {
		label = *hits[0].SectionID
	}
	if label == "" {
		label = "Section"
	}
	lines := []string{fmt.Sprintf("%s — Relevant excerpts from the specification documents:", label)}
	for i, h := range hits {
		heading := ""
		if h.Heading != nil {
			heading = strings.TrimSpace(*h.Heading)
		}
		pages := fmt.Sprintf("p. %d", h.PageStart)
		if h.PageEnd != 0 && h.PageEnd != h.PageStart {
			pages = fmt.Sprintf("pp. %d-%d", h.PageStart, h.PageEnd)
		}
		snippet := TrimSnippet(h.Snippet, 600)
		if heading != "" {
			lines = append(lines, fmt.Sprintf("[%d] %s (%s): %s", i+1, heading, pages, snippet))
		} else {
			lines = append(lines, fmt.Sprintf("[%d] (%s): %s", i+1, pages, snippet))
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
