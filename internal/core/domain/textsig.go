package domain

import (
	"regexp"
	"strings"
)

// Text-shape heuristics shared by the lexical index scoring and the ask
// orchestrator. These operate on raw chunk text and carry most of the
// domain knowledge about how the specification PDFs extract.

var (
	tocSubEntryRe = regexp.MustCompile(`\b\d{3}\.\d{2}\b.*?\.{2,}.*?\b\d{1,4}\b$`)
	tocSecEntryRe = regexp.MustCompile(`\bSECTION\s+\d{3}\b.*?\.{2,}.*?\b\d{1,4}\b$`)
	tocDivEntryRe = regexp.MustCompile(`\bDIVISION\s+\d{3}\b.*?\.{2,}.*?\b\d{1,4}\b$`)

	tocLineRe = regexp.MustCompile(`\b\d{3}\.\d{2}(?:\.\d{2})?\b.*?\.{2,}.*?\b\d{1,4}\b`)

	strongHeaderAtLineStartRe = regexp.MustCompile(`(?m)^\s*(\d{3}\.\d{2}(?:\.\d{2})?)\b`)
)

// TOCEntryCount counts table-of-contents style lines such as
// "701.01 Description .......... 339". It is the most reliable signal
// for TOC pages in the extracted text.
func TOCEntryCount(text string) int {
	count := 0
	for _, ln := range strings.Split(text, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		if tocSubEntryRe.MatchString(ln) || tocSecEntryRe.MatchString(ln) || tocDivEntryRe.MatchString(ln) {
			count++
		}
	}
	return count
}

// TOCPenalty returns a score multiplier in (0,1]. Section-intent
// queries punish TOC-shaped text much harder than general queries.
func TOCPenalty(text string, sectionIntent bool) float64 {
	n := TOCEntryCount(text)
	if n <= 0 {
		return 1.0
	}
	if sectionIntent {
		return 1.0 / (1.0 + 3.0*float64(n))
	}
	return 1.0 / (1.0 + 0.5*float64(n))
}

// SectionContentBonus boosts real section pages for section-intent
// queries: a "701.01  DESCRIPTION" header followed by prose scores up,
// the same id on a dot-leader TOC line scores down.
func SectionContentBonus(query, text string) float64 {
	sec3, secDot := ParseSectionIntent(query)
	if sec3 == "" {
		return 1.0
	}

	t := strings.ToUpper(text)
	bonus := 1.0

	if secDot != "" {
		contentRe := regexp.MustCompile(`\b` + regexp.QuoteMeta(secDot) + `\b\s+DESCRIPTION\b`)
		if contentRe.MatchString(t) {
			bonus *= 3.0
		}
		tocRe := regexp.MustCompile(`\b` + regexp.QuoteMeta(secDot) + `\b.*\.{2,}.*\b\d{1,4}\b`)
		if tocRe.MatchString(t) {
			bonus *= 0.15
		}
	}

	if strings.Contains(t, "SECTION "+sec3) {
		bonus *= 1.2
	}
	if strings.Contains(t, "THIS SECTION") || strings.Contains(t, "SHALL") {
		bonus *= 1.2
	}
	return bonus
}

// LooksLikeTOCBlock detects contents-like chunks during classification
func LooksLikeTOCBlock(text string) bool {
	if strings.Contains(strings.ToUpper(text), "TABLE OF CONTENTS") {
		return true
	}
	if tocLineRe.MatchString(text) {
		return true
	}
	if len(text) < 300 {
		return false
	}
	return len(tocLineRe.FindAllString(text, -1)) >= 6
}

// DominantSectionInText returns the first section id opening a line in
// the head of the text, which catches chunks whose text clearly starts
// a different section than their metadata claims.
func DominantSectionInText(text string) string {
	if text == "" {
		return ""
	}
	head := text
	if len(head) > 600 {
		head = head[:600]
	}
	if m := strongHeaderAtLineStartRe.FindStringSubmatch(head); m != nil {
		return m[1]
	}
	return ""
}

// LooksLikeTrueSectionStart reports whether the text plausibly begins
// the given section: either the text opens with the id or some line in
// the head starts with it.
func LooksLikeTrueSectionStart(text, sectionID string) bool {
	if text == "" || sectionID == "" {
		return false
	}
	head := text
	if len(head) > 400 {
		head = head[:400]
	}
	leadRe := regexp.MustCompile(`^\s*` + regexp.QuoteMeta(sectionID) + `\b`)
	if leadRe.MatchString(head) {
		return true
	}
	for _, m := range strongHeaderAtLineStartRe.FindAllStringSubmatch(head, -1) {
		if m[1] == sectionID {
			return true
		}
	}
	return false
}
