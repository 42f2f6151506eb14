package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Table display shaping. Extracted table rows are raw PDF lines; these
// helpers classify them for rendering and derive a presentable title.

var tableDataUnits = []string{
	"ft", "feet", "foot", "in", "inch", "inches", "mm", "cm", "psi", "mph",
	"day", "days", "month", "months", "year", "years",
	"lb", "lbs", "pound", "pounds", "%", "percent", "$",
}

var tableInstructionStarts = []string{
	"secure", "install", "test", "after", "before", "provide", "submit",
	"remove", "ensure", "place", "set", "clean", "protect", "maintain",
	"apply", "perform", "furnish",
}

var tableHeaderTerms = []string{
	"item", "items", "description", "length", "length of slack", "slack",
	"minimum", "maximum", "min", "max", "percent passing", "% passing",
	"passing", "gradation", "size", "sizes", "unit", "units", "requirements",
}

var (
	numberedItemRe    = regexp.MustCompile(`^\d+\.\s+`)
	sentenceEndRe     = regexp.MustCompile(`[.!?]\s*$`)
	percentOrDollarRe = regexp.MustCompile(`\b\d+(\.\d+)?\s*%|\$\s*\d`)
	junkTableLabelRe  = regexp.MustCompile(`^table\s*\(p\.\s*\d+\)\s*#\d+$`)
	pageTagSuffixRe   = regexp.MustCompile(`(?i)\s*\(p\.\s*\d+\)\s*#\d+\s*$`)
	tableNumTitleRe   = regexp.MustCompile(`(?i)\btable\s*(\d{3}\.\d{2}(?:\.\d{2})?-\d+)\b(?:\s*[-—–:]\s*([^\n\r]+))?`)
)

// IsInstructionRow detects prose that trails a table (numbered steps,
// imperative sentences). Rendering stops at the first one.
func IsInstructionRow(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	if numberedItemRe.MatchString(t) {
		return true
	}
	lower := strings.ToLower(t)
	for _, v := range tableInstructionStarts {
		if strings.HasPrefix(lower, v+" ") {
			return true
		}
	}
	return sentenceEndRe.MatchString(t) && len(strings.Fields(t)) >= 6
}

// IsDataRow detects rows carrying actual values: numbers with units,
// percentages, or dollar amounts.
func IsDataRow(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	lower := strings.ToLower(t)
	if anyDigitRe.MatchString(lower) {
		for _, u := range tableDataUnits {
			if strings.Contains(lower, u) {
				return true
			}
		}
	}
	return percentOrDollarRe.MatchString(lower)
}

func isHeaderRow(text string) bool {
	lower := strings.TrimSpace(strings.ToLower(text))
	if lower == "" || anyDigitRe.MatchString(lower) {
		return false
	}
	for _, term := range tableHeaderTerms {
		if strings.Contains(lower, term) {
			return len(strings.Fields(lower)) <= 6
		}
	}
	return false
}

// BuildRenderRows shapes raw table rows for display: drops header rows,
// stops at trailing instructions, merges label rows with the data row
// that follows them, and bounds the output to previewLimit rows.
func BuildRenderRows(rows []*TableRow, previewLimit int) []RenderRow {
	type cleanRow struct {
		idx  int
		text string
	}
	var cleaned []cleanRow
	for _, r := range rows {
		text := strings.TrimSpace(r.RowText)
		if text == "" {
			continue
		}
		if IsInstructionRow(text) {
			break
		}
		if isHeaderRow(text) {
			continue
		}
		cleaned = append(cleaned, cleanRow{idx: r.RowIndex, text: text})
	}

	var out []RenderRow
	for i := 0; i < len(cleaned) && len(out) < previewLimit; {
		row := cleaned[i]
		if IsDataRow(row.text) {
			out = append(out, RenderRow{RowIndex: row.idx, Kind: TableRowKindData, Text: row.text})
			i++
			continue
		}
		if i+1 < len(cleaned) && IsDataRow(cleaned[i+1].text) {
			merged := row.text + " — " + cleaned[i+1].text
			out = append(out, RenderRow{RowIndex: row.idx, Kind: TableRowKindData, Text: merged})
			i += 2
			continue
		}
		if len(row.text) <= 120 && !sentenceEndRe.MatchString(row.text) {
			out = append(out, RenderRow{RowIndex: row.idx, Kind: TableRowKindHeader, Text: row.text})
		}
		i++
	}
	return out
}

// IsJunkTableLabel reports whether the label is the synthetic
// "Table (p. 12) #1" placeholder assigned at extraction time.
func IsJunkTableLabel(label string) bool {
	return junkTableLabelRe.MatchString(strings.ToLower(strings.TrimSpace(label)))
}

// ExtractTableNumberAndTitle pulls "901.03-1" and a trailing title out
// of text like "Table 901.03-1 — Coarse Aggregate Gradation".
func ExtractTableNumberAndTitle(text string) (number, title string) {
	if text == "" {
		return "", ""
	}
	m := tableNumTitleRe.FindStringSubmatch(text)
	if m == nil {
		return "", ""
	}
	number = m[1]
	title = strings.TrimSpace(m[2])
	if title != "" {
		title = strings.TrimSpace(pageTagSuffixRe.ReplaceAllString(title, ""))
	}
	return number, title
}

// BuildTableDisplayTitle derives the best available display title from
// the requested token, the stored label, and surrounding text.
func BuildTableDisplayTitle(tableToken, metaLabel string, textCandidates []string) string {
	var number, title string

	if metaLabel != "" && !IsJunkTableLabel(metaLabel) {
		number, title = ExtractTableNumberAndTitle(metaLabel)
	}
	if tableToken != "" {
		number = tableToken
	}
	if number == "" || title == "" {
		for _, text := range textCandidates {
			n, t := ExtractTableNumberAndTitle(text)
			if number == "" && n != "" {
				number = n
			}
			if title == "" && t != "" {
				title = t
			}
			if number != "" && title != "" {
				break
			}
		}
	}

	switch {
	case number != "" && title != "":
		return fmt.Sprintf("Table %s — %s", number, title)
	case number != "":
		return "Table " + number
	case metaLabel != "" && !IsJunkTableLabel(metaLabel):
		return strings.TrimSpace(metaLabel)
	}
	return "Table"
}
