package domain

import (
	"regexp"
	"strings"
)

// Answer post-processing. Generated answers are cleaned of citation
// markers, source meta-phrasing, and section/page callouts the user did
// not ask for, then checked against the evidence that produced them.

var stopwords = map[string]struct{}{
	"what": {}, "requirement": {},
	"section": {}, "sections": {}, "the": {}, "a": {}, "an": {}, "for": {}, "of": {}, "is": {}, "are": {},
	"in": {}, "to": {}, "and": {}, "does": {}, "say": {}, "about": {},
}

// TokenizeRelevance extracts lowercase query terms of 3+ chars with
// stopwords removed, for overlap checks.
func TokenizeRelevance(text string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, t := range wordTokenRe.FindAllString(strings.ToLower(text), -1) {
		if len(t) < 3 {
			continue
		}
		if _, stop := stopwords[t]; stop {
			continue
		}
		out[t] = struct{}{}
	}
	return out
}

// BM25Tokens tokenizes text for keyword reranking: lowercase word and
// number runs with stopwords removed. Never returns an empty slice so
// every document contributes to corpus statistics.
func BM25Tokens(text string) []string {
	var out []string
	for _, t := range wordTokenRe.FindAllString(strings.ToLower(text), -1) {
		if _, stop := stopwords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return []string{"_"}
	}
	return out
}

// IsRelevantHit guards weak responses: the top hit must share a section
// prefix with the query or overlap it on at least two content tokens
// (one is enough when the term appears verbatim in the snippet).
func IsRelevantHit(query string, hit *Hit) bool {
	if pat := ExtractSectionDot(query); pat != "" {
		if hit.SectionID != nil && strings.HasPrefix(*hit.SectionID, pat) {
			return true
		}
	}
	qTokens := TokenizeRelevance(query)
	if len(qTokens) == 0 {
		return false
	}
	snippet := strings.ToLower(hit.Snippet)
	for t := range qTokens {
		if strings.Contains(snippet, t) {
			return true
		}
	}
	sTokens := TokenizeRelevance(snippet)
	overlap := 0
	for t := range qTokens {
		if _, ok := sTokens[t]; ok {
			overlap++
		}
	}
	return overlap >= 2
}

// KeywordOverlapScore ranks hits for the LLM source block. Numeric
// intent rewards hits carrying amounts or percentages; liability and
// insurance questions reward general-liability language.
func KeywordOverlapScore(query string, hit *Hit) int {
	tokens := TokenizeRelevance(query)
	if len(tokens) == 0 {
		return 0
	}
	heading := ""
	if hit.Heading != nil {
		heading = *hit.Heading
	}
	text := strings.ToLower(heading + " " + hit.Snippet)
	score := 0
	for t := range tokens {
		if strings.Contains(text, t) {
			score++
		}
	}
	q := strings.ToLower(query)
	numericIntent := anyDigitRe.MatchString(query)
	if !numericIntent {
		for _, t := range []string{"minimum", "limit", "limits", "percent", "percentage", "days", "day", "$", "per occurrence"} {
			if strings.Contains(q, t) {
				numericIntent = true
				break
			}
		}
	}
	if numericIntent && numericValueRe.MatchString(text) {
		score += 2
	}
	if (strings.Contains(q, "liability") || strings.Contains(q, "insurance")) &&
		(strings.Contains(text, "comprehensive general liability") || strings.Contains(text, "general liability")) {
		score += 3
	}
	return score
}

var numericValueRe = regexp.MustCompile(`(\$?\d[\d,]*(\.\d+)?|\b\d+%\b|percent)`)

// StatuteHitScore counts prompt-payment statute signals in a hit
func StatuteHitScore(hit *Hit) int {
	heading := ""
	if hit.Heading != nil {
		heading = *hit.Heading
	}
	text := strings.ToLower(heading + " " + hit.Snippet + " " + hit.Text)
	keys := []string{
		"52:32-40",
		"52:32-41",
		"prime rate",
		"plus 1 percent",
		"tenth day",
		"interest begins to accrue",
	}
	n := 0
	for _, k := range keys {
		if strings.Contains(text, k) {
			n++
		}
	}
	return n
}

var promptPaymentDayPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)not paid within\s+(\d+)\s+days`),
	regexp.MustCompile(`(?i)within\s+(\d+)\s+days after receipt`),
	regexp.MustCompile(`(?i)within\s+(\d+)\s+days of receipt`),
}

// ExtractPromptPaymentDays pulls the statutory day count out of
// prompt-payment text, preferring it over anything the LLM writes.
func ExtractPromptPaymentDays(text string) string {
	if text == "" {
		return ""
	}
	for _, re := range promptPaymentDayPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

var paymentDaysPhraseRes = []*regexp.Regexp{
	regexp.MustCompile(`(?is)\b(\d+)\s+days.{0,120}\b(receipt|receiv|payment|paid)`),
	regexp.MustCompile(`(?is)\b(receipt|receiv|payment|paid)\b.{0,120}\b(\d+)\s+days\b`),
}

// HasPaymentDaysPhrase gates time-limit answers: the sources must state
// a day count near payment language before the LLM may answer.
func HasPaymentDaysPhrase(text string) bool {
	if text == "" {
		return false
	}
	for _, re := range paymentDaysPhraseRes {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// SafeConfidence downgrades confidence when the answer itself admits
// the evidence was insufficient.
func SafeConfidence(conf Confidence, answer string) Confidence {
	a := strings.ToLower(answer)
	for _, phrase := range []string{
		"couldn’t find",
		"could not find",
		"not present in sources",
		"not contained in sources",
		"insufficient evidence",
	} {
		if strings.Contains(a, phrase) {
			return ConfidenceWeak
		}
	}
	return conf
}

var (
	citationMarkerRe  = regexp.MustCompile(`\s*\[\d+\]\s*`)
	sourceMarkerRe    = regexp.MustCompile(`(?i)\s*[\(\[]?\s*source\s*\d+\s*[\)\]]?\s*`)
	sourceColonRe     = regexp.MustCompile(`(?i)\bsource\s*:\s*`)
	leadSectionIDRe   = regexp.MustCompile(`^\s*\d{3}(\.\d{2}){0,2}\s+`)
	leadCapsColonRe   = regexp.MustCompile(`^\s*[A-Z][A-Z0-9\s\-/]{6,}:\s*`)
	leadCapsDashRe    = regexp.MustCompile(`^\s*[A-Z][A-Z0-9\s\-/]{6,}\s+-\s*`)
	specifiedInSecRe  = regexp.MustCompile(`(?i)\bspecified in\s+\d{3}\.\d{2}(\.\d{2})?\b`)
	inSectionIDRe     = regexp.MustCompile(`(?i)\bin\s+\d{3}\.\d{2}(\.\d{2})?\b`)
	manualAsColonRe   = regexp.MustCompile(`(?i)\bspecified in the reference manual as:\s*`)
	seeSectionRe      = regexp.MustCompile(`(?i)\b(as specified in|per|in|see)\s+section\s+\d{3}(\.\d{2}){0,2}\b`)
	bareSectionRefRe  = regexp.MustCompile(`(?i)\bsection\s+\d{3}(\.\d{2}){0,2}\b`)
	pageRangeRe       = regexp.MustCompile(`(?i)\bpages?\s+\d+\s*[-–]\s*\d+\b`)
	singlePageRe      = regexp.MustCompile(`(?i)\bpage\s+\d+\b`)
	spaceBeforePuncRe = regexp.MustCompile(`\s+([,.;:])`)
	puncThenCommaRe   = regexp.MustCompile(`([,.;:])\s*,`)
	multiSpaceRe      = regexp.MustCompile(`\s{2,}`)
	endsAlnumRe       = regexp.MustCompile(`[A-Za-z0-9]$`)
)

// MakeAnswerUserFriendly strips leading section ids and all-caps
// headings from raw-excerpt answers and softens internal section
// references.
func MakeAnswerUserFriendly(answer string) string {
	if answer == "" {
		return answer
	}
	answer = leadSectionIDRe.ReplaceAllString(answer, "")
	answer = leadCapsColonRe.ReplaceAllString(answer, "")
	answer = leadCapsDashRe.ReplaceAllString(answer, "")
	answer = specifiedInSecRe.ReplaceAllString(answer, "specified in the reference manual")
	answer = inSectionIDRe.ReplaceAllString(answer, "in the reference manual")
	answer = manualAsColonRe.ReplaceAllString(answer, "")
	return answer
}

// StripAnswerMetadata removes citation markers always, and section/page
// callouts unless the user explicitly asked for a location.
func StripAnswerMetadata(answer, query string) string {
	if answer == "" {
		return answer
	}
	answer = strings.TrimSpace(citationMarkerRe.ReplaceAllString(answer, " "))
	answer = sourceMarkerRe.ReplaceAllString(answer, " ")
	answer = sourceColonRe.ReplaceAllString(answer, "")

	if AsksForSectionOrPage(query) {
		return strings.Trim(multiSpaceRe.ReplaceAllString(answer, " "), " ,.;:")
	}

	answer = seeSectionRe.ReplaceAllString(answer, "")
	answer = bareSectionRefRe.ReplaceAllString(answer, "")
	answer = pageRangeRe.ReplaceAllString(answer, "")
	answer = singlePageRe.ReplaceAllString(answer, "")
	answer = spaceBeforePuncRe.ReplaceAllString(answer, "$1")
	answer = puncThenCommaRe.ReplaceAllString(answer, "$1")
	return strings.Trim(multiSpaceRe.ReplaceAllString(answer, " "), " ,.;:")
}

var (
	accordingToSrcRe = regexp.MustCompile(`(?i)\b(according to|as stated in|as specified in)\b(\s+the)?\s+(sources?|source)\b`)
	srcPhrasesRe     = regexp.MustCompile(`(?i)\b(stated in the source|provided sources|the sources say)\b`)
	trailingFragRes  = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\baccording to( the provided sources)?\.?$`),
		regexp.MustCompile(`(?i)\bthis is specified( in)?\.?$`),
		regexp.MustCompile(`(?i)\bthis is stated( in)?\.?$`),
		regexp.MustCompile(`(?i)\bas stated in\.?$`),
		regexp.MustCompile(`(?i)\bthis is specified in\b$`),
		regexp.MustCompile(`(?i)\bthis requirement is specified( in| by)?\b[\.!\s]*$`),
		regexp.MustCompile(`(?i)\bthis requirement is stated\b[\.!\s]*$`),
	}
)

// PolishAnswerText removes meta phrasing and dangling fragments, fixes
// punctuation spacing, and ends the answer with a period.
func PolishAnswerText(answer string) string {
	if answer == "" {
		return answer
	}
	answer = accordingToSrcRe.ReplaceAllString(answer, "")
	answer = srcPhrasesRe.ReplaceAllString(answer, "")
	for _, re := range trailingFragRes {
		answer = re.ReplaceAllString(strings.TrimSpace(answer), "")
	}
	answer = spaceBeforePuncRe.ReplaceAllString(answer, "$1")
	answer = puncThenCommaRe.ReplaceAllString(answer, "$1")
	answer = strings.TrimSpace(multiSpaceRe.ReplaceAllString(answer, " "))
	if answer != "" && endsAlnumRe.MatchString(answer) {
		answer += "."
	}
	return answer
}

// AnswerIntegers lists the integers an answer asserts, for the numeric
// hallucination guard.
func AnswerIntegers(answer string) []string {
	return plainNumberRe.FindAllString(answer, -1)
}
