package domain

import (
	"regexp"
	"strings"
)

// Query intent detection. Each predicate is independent; the ask
// orchestrator decides priority between them.

var (
	exactSectionFullRe  = regexp.MustCompile(`^\d{3}\.\d{2}(?:\.\d{2})?$`)
	exactSectionLeadRe  = regexp.MustCompile(`^\s*(\d{3}\.\d{2}(?:\.\d{2})?)\b`)
	sectionWordRe       = regexp.MustCompile(`(?i)\bsection\s*(\d{3})\b`)
	sectionMarkRe       = regexp.MustCompile(`§\s*(\d{3})\b`)
	bareThreeDigitRe    = regexp.MustCompile(`^\d{3}$`)
	sectionAnywhereRe   = regexp.MustCompile(`\b\d{3}(?:\.\d{2}){0,2}\b`)
	sectionDotRe        = regexp.MustCompile(`\b(\d{3}\.\d{2}(?:\.\d{2})?)\b`)
	bareSectionDotRe    = regexp.MustCompile(`^\s*\d{3}\.\d{2}(?:\.\d{2})?\s*$`)
	tableTokenRe        = regexp.MustCompile(`(?i)\btab(?:le|\.)?\s*(\d{3}\.\d{2}\.\d{2}-\d+|\d{3}\.\d{2}-\d+)\b`)
	fullSubTableTokenRe = regexp.MustCompile(`^\d{3}\.\d{2}\.\d{2}-\d+$`)
	tableQueryRe        = regexp.MustCompile(`(?i)\b(table|tbl|tab\.)`)
	equationQueryRe     = regexp.MustCompile(`(?i)\b(equation|equations|formula|calculate|calculation|compute|how to compute|pay adjustment|ppa|pd|ql|iri)\b`)
	timeLimitRe         = regexp.MustCompile(`(?i)\bwithin how many days\b|\bwithin \d+ days\b|\bdays after\b|\bwithin .* days\b`)
	statuteRefRe        = regexp.MustCompile(`\b52\s*:\s*32-4[01]\b`)
	anyDigitRe          = regexp.MustCompile(`\d`)
	daysQuestionRe      = regexp.MustCompile(`(?i)\bhow many days\b|\bwithin \d+ days\b|\bdays\b`)
)

// ExtractExactSectionID returns a dotted section id when the query is,
// or starts with, one ("701.02", "701.03.01 conduit requirements").
func ExtractExactSectionID(query string) string {
	q := strings.TrimSpace(query)
	if exactSectionFullRe.MatchString(q) {
		return q
	}
	if m := exactSectionLeadRe.FindStringSubmatch(query); m != nil {
		return m[1]
	}
	return ""
}

// ExtractSectionPrefix returns a 3-digit section prefix only when the
// user signals it explicitly ("section 701", "§701") or the query is
// nothing but the bare token. Random 3-digit numbers inside sentences
// do not count.
func ExtractSectionPrefix(query string) string {
	if m := sectionWordRe.FindStringSubmatch(query); m != nil {
		return m[1]
	}
	if m := sectionMarkRe.FindStringSubmatch(query); m != nil {
		return m[1]
	}
	q := strings.TrimSpace(query)
	if bareThreeDigitRe.MatchString(q) {
		return q
	}
	return ""
}

// ExtractSectionDot finds a dotted section reference anywhere in the query
func ExtractSectionDot(query string) string {
	if m := sectionDotRe.FindStringSubmatch(query); m != nil {
		return m[1]
	}
	return ""
}

// ExtractTableToken returns the table number from references like
// "table 901.03-1" or "tab. 701.03.15-2".
func ExtractTableToken(query string) string {
	if m := tableTokenRe.FindStringSubmatch(query); m != nil {
		return m[1]
	}
	return ""
}

// IsExplicitSubsectionTableToken reports whether the token names a full
// subsection table like 701.03.15-1, the form precise enough for a
// deterministic pre-lookup.
func IsExplicitSubsectionTableToken(token string) bool {
	return fullSubTableTokenRe.MatchString(token)
}

// IsSectionIntent reports whether the query targets a numbered section
func IsSectionIntent(query string) bool {
	q := strings.ToUpper(strings.TrimSpace(query))
	return sectionAnywhereRe.MatchString(q) || strings.Contains(q, "SECTION")
}

// IsBareSectionIDQuery reports whether the query is nothing but a
// dotted section id.
func IsBareSectionIDQuery(query string) bool {
	return bareSectionDotRe.MatchString(query)
}

// IsTableQuery reports whether the query mentions tables at all
func IsTableQuery(query string) bool {
	return tableQueryRe.MatchString(query)
}

// LooksLikeTableQuery is the broader wording check used when deciding
// whether to keep table_row hits in an answer.
func LooksLikeTableQuery(query string) bool {
	s := strings.ToLower(query)
	for _, w := range []string{"table", "tab.", "chart", "tbl", "requirements table"} {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// IsEquationQuery reports whether the query asks about formulas or
// computed quantities.
func IsEquationQuery(query string) bool {
	return equationQueryRe.MatchString(query)
}

// IsTimeLimitQuestion reports whether the query asks about a deadline
// expressed in days.
func IsTimeLimitQuestion(query string) bool {
	return timeLimitRe.MatchString(query)
}

// IsDaysQuestion is the looser day-count check used by the numeric
// hallucination guard.
func IsDaysQuestion(query string) bool {
	return daysQuestionRe.MatchString(strings.ToLower(query))
}

// IsPromptPaymentInterestIntent detects questions about the prompt
// payment statute and interest accrual.
func IsPromptPaymentInterestIntent(query string) bool {
	s := strings.ToLower(query)
	triggers := []string{
		"52:32-40",
		"52:32-41",
		"interest",
		"prime rate",
		"plus 1 percent",
		"accrue",
		"tenth day",
		"withholding payment",
	}
	for _, t := range triggers {
		if strings.Contains(s, t) {
			return true
		}
	}
	return statuteRefRe.MatchString(s)
}

// AsksForSectionOrPage reports whether the user wants a location rather
// than a synthesized answer.
func AsksForSectionOrPage(query string) bool {
	q := strings.ToLower(query)
	triggers := []string{
		"which section",
		"what section",
		"section number",
		"section id",
		"what page",
		"which page",
		"page number",
		"where in the manual",
		"where in the spec",
		"where can i find",
		"cite",
		"citation",
		"reference",
	}
	for _, t := range triggers {
		if strings.Contains(q, t) {
			return true
		}
	}
	return sectionDotRe.MatchString(q)
}

// ParseSectionIntent returns the 3-digit section and, when present, the
// dotted subsection the query points at. Either value may be empty.
func ParseSectionIntent(query string) (sec3, secDot string) {
	q := strings.ToUpper(strings.TrimSpace(query))

	raw := strings.TrimSpace(strings.ReplaceAll(q, "SECTION", ""))
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "SEC.", ""))

	if m := regexp.MustCompile(`^\d{3}\.\d{2}$`).FindString(raw); m != "" {
		return m[:3], m
	}
	if bareThreeDigitRe.MatchString(raw) {
		return raw, ""
	}
	if m := regexp.MustCompile(`\b(\d{3}\.\d{2})\b`).FindStringSubmatch(q); m != nil {
		return m[1][:3], m[1]
	}
	if m := regexp.MustCompile(`\bSECTION\s+(\d{3})\b`).FindStringSubmatch(q); m != nil {
		return m[1], ""
	}
	if m := regexp.MustCompile(`\b(\d{3})\b`).FindStringSubmatch(q); m != nil {
		return m[1], ""
	}
	return "", ""
}

// NormalizeTableText lowercases text and folds dash variants so table
// tokens compare reliably.
func NormalizeTableText(text string) string {
	s := strings.ToLower(text)
	s = strings.ReplaceAll(s, "–", "-")
	s = strings.ReplaceAll(s, "—", "-")
	s = strings.Join(strings.Fields(s), " ")
	return s
}
