package services

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
)

// Heading detection for specification page text.
//
// Subsection headers are the strong signal:
//
//	"701.03.02  Rigid Metallic Conduit (Earth)"
//	"701.01  DESCRIPTION"
//
// The two-space gap and capitalized title requirement avoid matching
// cross references like "... as specified in 701.03.01 ...".
var (
	sectionHeaderRe    = regexp.MustCompile(`(?mi)^\s*SECTION\s+(\d{3})\b`)
	subsectionHeaderRe = regexp.MustCompile(`(?m)^\s*(\d{3}\.\d{2}(?:\.\d{2})?)\s{2,}([A-Z][^\n]{2,})\s*$`)
	sectionLineRe      = regexp.MustCompile(`(?i)\bSECTION\s+(\d{3})\b`)
)

const (
	preambleMinChars = 40
	headingMaxLen    = 200
)

// pageSegment is a heading-delimited slice of one page
type pageSegment struct {
	sectionID *string
	heading   *string
	text      string
}

// truncateHeading caps a heading at headingMaxLen bytes, backing up to
// a rune boundary so a multibyte character is never split
func truncateHeading(s string) string {
	if len(s) <= headingMaxLen {
		return s
	}
	cut := headingMaxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// sectionHeadingLine returns the "SECTION 701 – GENERAL ITEMS" line from
// the segment text, or a synthesized "SECTION 701" when the line form is
// not present.
func sectionHeadingLine(text, marker string) string {
	for _, ln := range strings.Split(text, "\n") {
		m := sectionLineRe.FindStringSubmatch(ln)
		if m != nil && m[1] == marker {
			return truncateHeading(strings.TrimSpace(ln))
		}
	}
	return truncateHeading("SECTION " + marker)
}

// splitPageIntoSegments splits one page of raw text on heading
// boundaries. Subsection headers win over SECTION headers; a page with
// neither becomes a single untagged segment. Preamble text before the
// first header folds into the first segment when it is long enough to
// carry content.
func splitPageIntoSegments(text string) []pageSegment {
	if text == "" {
		return []pageSegment{{}}
	}

	if matches := subsectionHeaderRe.FindAllStringSubmatchIndex(text, -1); len(matches) > 0 {
		segments := make([]pageSegment, 0, len(matches))
		preamble := strings.TrimSpace(text[:matches[0][0]])

		for idx, m := range matches {
			start := m[0]
			end := len(text)
			if idx+1 < len(matches) {
				end = matches[idx+1][0]
			}
			segText := strings.TrimSpace(text[start:end])
			if idx == 0 && len(preamble) >= preambleMinChars {
				segText = preamble + "\n" + segText
			}

			secID := text[m[2]:m[3]]
			heading := truncateHeading(strings.TrimSpace(text[m[0]:m[1]]))
			segments = append(segments, pageSegment{sectionID: &secID, heading: &heading, text: segText})
		}
		return segments
	}

	if matches := sectionHeaderRe.FindAllStringSubmatchIndex(text, -1); len(matches) > 0 {
		segments := make([]pageSegment, 0, len(matches))
		preamble := strings.TrimSpace(text[:matches[0][0]])

		for idx, m := range matches {
			start := m[0]
			end := len(text)
			if idx+1 < len(matches) {
				end = matches[idx+1][0]
			}
			segText := strings.TrimSpace(text[start:end])
			if idx == 0 && len(preamble) >= preambleMinChars {
				segText = preamble + "\n" + segText
			}

			secID := text[m[2]:m[3]]
			heading := sectionHeadingLine(segText, secID)
			segments = append(segments, pageSegment{sectionID: &secID, heading: &heading, text: segText})
		}
		return segments
	}

	return []pageSegment{{text: strings.TrimSpace(text)}}
}

// chunkDocumentPages folds sorted pages into section-scoped chunks. A
// chunk accumulates segments across pages until a segment carries a
// different section id, so multi-page subsections stay whole. Returned
// chunks have SectionID, Heading, PageStart, PageEnd and Text set.
func chunkDocumentPages(pages []*domain.Page) []*domain.Chunk {
	var chunks []*domain.Chunk

	var (
		curSection *string
		curHeading *string
		curStart   int
		curEnd     int
		curBuf     []string
		open       bool
	)

	flush := func() {
		if !open || len(curBuf) == 0 {
			return
		}
		text := strings.TrimSpace(strings.Join(curBuf, "\n"))
		if text != "" {
			chunks = append(chunks, &domain.Chunk{
				SectionID: curSection,
				Heading:   curHeading,
				PageStart: curStart,
				PageEnd:   curEnd,
				Text:      text,
			})
		}
		curSection, curHeading, curBuf, open = nil, nil, nil, false
	}

	for _, page := range pages {
		for _, seg := range splitPageIntoSegments(page.RawText) {
			newMarker := seg.sectionID != nil &&
				(curSection == nil || *seg.sectionID != *curSection)

			if !open {
				open = true
				curStart = page.PageNumber
				curSection = seg.sectionID
				curHeading = seg.heading
			} else if newMarker {
				flush()
				open = true
				curStart = page.PageNumber
				curSection = seg.sectionID
				curHeading = seg.heading
			}

			curEnd = page.PageNumber
			curBuf = append(curBuf, seg.text)
		}
	}

	flush()
	return chunks
}
