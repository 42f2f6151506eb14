package services

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// Table extraction works line-wise over raw page text. A block opens at
// a "Table 901.03" style header and runs until the next table header or
// a plain section header line. Blocks shorter than five non-blank lines
// are discarded as false positives.
var (
	tableHeaderLineRe  = regexp.MustCompile(`(?i)^\s*(?:table|tab\.)\s+\d{3}\.\d{2}`)
	sectionHeaderStart = regexp.MustCompile(`^\s*\d{3}\.\d{2}\b`)
	tableTokenRefRe    = regexp.MustCompile(`(?i)\b(?:table|tab\.)\s*(\d{3}\.\d{2}(?:\.\d{2})?-\d+)\b`)
)

const minTableBlockLines = 5

// tableBlock is one extracted table, line-for-line as it appeared
type tableBlock struct {
	lines     []string
	startLine int
	endLine   int
}

func extractTableBlocks(pageText string) []tableBlock {
	if pageText == "" {
		return nil
	}
	lines := strings.Split(pageText, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimRight(ln, "\n")
	}

	var blocks []tableBlock
	var buf []string
	bufStart := -1

	flush := func(endLine int) {
		if bufStart >= 0 && len(buf) > 0 {
			nonEmpty := 0
			for _, ln := range buf {
				if strings.TrimSpace(ln) != "" {
					nonEmpty++
				}
			}
			if nonEmpty >= minTableBlockLines {
				blocks = append(blocks, tableBlock{
					lines:     append([]string(nil), buf...),
					startLine: bufStart,
					endLine:   endLine,
				})
			}
		}
		buf = nil
		bufStart = -1
	}

	for i, ln := range lines {
		if tableHeaderLineRe.MatchString(ln) {
			if bufStart >= 0 {
				flush(i - 1)
			}
			bufStart = i
			buf = append(buf, ln)
			continue
		}
		if bufStart >= 0 {
			if sectionHeaderStart.MatchString(ln) {
				flush(i - 1)
				continue
			}
			buf = append(buf, ln)
		}
	}
	flush(len(lines) - 1)

	return blocks
}

// stableTableUID derives a table identifier from document, page,
// position and a hash of the leading content. Rebuilds may renumber
// chunks, but the uid survives as long as the table text does.
func stableTableUID(documentID int64, filename string, pageNumber, tableIndexOnPage int, lines []string) string {
	capped := lines
	if len(capped) > 25 {
		capped = capped[:25]
	}
	content := strings.Join(capped, "\n")
	raw := fmt.Sprintf("%d|%s|%d|%d|%s", documentID, filename, pageNumber, tableIndexOnPage, content)
	sum := sha1.Sum([]byte(raw))
	return "tbl_" + hex.EncodeToString(sum[:])
}

func tableLabelFor(pageNumber, tableIndexOnPage int) string {
	return fmt.Sprintf("Table (p. %d) #%d", pageNumber, tableIndexOnPage)
}

// findTableTokenRef returns the first "Table 901.03-2" style reference
// in the text, or "" when none is present.
func findTableTokenRef(text string) string {
	m := tableTokenRefRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}
