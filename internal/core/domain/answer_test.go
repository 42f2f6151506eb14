package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRelevantHit(t *testing.T) {
	sid := "701.02"
	hit := &Hit{SectionID: &sid, Snippet: "Provide rigid metallic conduit for electrical work."}

	// Shared section prefix counts as relevant.
	assert.True(t, IsRelevantHit("what does 701.02 say", hit))
	// Verbatim token in snippet counts.
	assert.True(t, IsRelevantHit("metallic conduit depth", hit))
	// Nothing shared: irrelevant.
	assert.False(t, IsRelevantHit("asphalt paving temperature", hit))
}

func TestKeywordOverlapScore(t *testing.T) {
	heading := "INSURANCE REQUIREMENTS"
	hit := &Hit{
		Heading: &heading,
		Snippet: "Comprehensive general liability coverage of $1,000,000 per occurrence.",
	}
	score := KeywordOverlapScore("minimum liability insurance per occurrence", hit)
	// liability/insurance bonus and numeric bonus both apply.
	assert.GreaterOrEqual(t, score, 5)

	assert.Equal(t, 0, KeywordOverlapScore("", hit))
}

func TestStatuteHitScore(t *testing.T) {
	hit := &Hit{
		Snippet: "Per 52:32-40 interest begins to accrue at the prime rate plus 1 percent.",
	}
	assert.GreaterOrEqual(t, StatuteHitScore(hit), 3)
	assert.Equal(t, 0, StatuteHitScore(&Hit{Snippet: "gradation table"}))
}

func TestExtractPromptPaymentDays(t *testing.T) {
	assert.Equal(t, "10", ExtractPromptPaymentDays("if not paid within 10 days, interest accrues"))
	assert.Equal(t, "30", ExtractPromptPaymentDays("pay within 30 days after receipt of each payment"))
	assert.Equal(t, "", ExtractPromptPaymentDays("no day count here"))
	assert.Equal(t, "", ExtractPromptPaymentDays(""))
}

func TestHasPaymentDaysPhrase(t *testing.T) {
	assert.True(t, HasPaymentDaysPhrase("within 10 days of receipt of payment"))
	assert.True(t, HasPaymentDaysPhrase("after receipt the prime has 10 days"))
	assert.False(t, HasPaymentDaysPhrase("the contractor shall provide conduit"))
	assert.False(t, HasPaymentDaysPhrase(""))
}

func TestSafeConfidence(t *testing.T) {
	assert.Equal(t, ConfidenceWeak, SafeConfidence(ConfidenceStrong, "Insufficient Evidence."))
	assert.Equal(t, ConfidenceWeak, SafeConfidence(ConfidenceMedium, "I could not find that."))
	assert.Equal(t, ConfidenceStrong, SafeConfidence(ConfidenceStrong, "Pay within 10 days."))
}

func TestMakeAnswerUserFriendly(t *testing.T) {
	in := "701.02  As specified in 701.03.01 use conduit."
	out := MakeAnswerUserFriendly(in)
	assert.NotContains(t, out, "701.02")
	assert.Contains(t, out, "specified in the reference manual")
}

func TestStripAnswerMetadata(t *testing.T) {
	out := StripAnswerMetadata("Pay within 10 days [1][2] per Section 107.21 on page 44.", "how long to pay")
	assert.NotContains(t, out, "[1]")
	assert.NotContains(t, out, "Section 107.21")
	assert.NotContains(t, out, "page 44")
	assert.Contains(t, out, "Pay within 10 days")

	// Location questions keep section references.
	out = StripAnswerMetadata("It is in Section 107.21. [1]", "which section covers payment")
	assert.Contains(t, out, "Section 107.21")
	assert.NotContains(t, out, "[1]")
}

func TestPolishAnswerText(t *testing.T) {
	out := PolishAnswerText("The limit is 10 days according to the sources")
	assert.Equal(t, "The limit is 10 days.", out)

	out = PolishAnswerText("Interest accrues at prime rate. This requirement is specified in")
	assert.Equal(t, "Interest accrues at prime rate.", out)

	assert.Equal(t, "", PolishAnswerText(""))
}

func TestAnswerIntegers(t *testing.T) {
	assert.Equal(t, []string{"10", "1"}, AnswerIntegers("within 10 days at prime plus 1 percent"))
	assert.Empty(t, AnswerIntegers("no numbers"))
}
