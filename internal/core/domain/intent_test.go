package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractExactSectionID(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"701.02", "701.02"},
		{"701.03.01", "701.03.01"},
		{"701.03.01 conduit requirements", "701.03.01"},
		{"what does 701.02 say", ""},
		{"section 701", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractExactSectionID(tt.query), "query=%q", tt.query)
	}
}

func TestExtractSectionPrefix(t *testing.T) {
	assert.Equal(t, "701", ExtractSectionPrefix("Section 701"))
	assert.Equal(t, "701", ExtractSectionPrefix("what is in §701?"))
	assert.Equal(t, "701", ExtractSectionPrefix("  701  "))
	// Random 3-digit numbers inside sentences must not trigger a prefix.
	assert.Equal(t, "", ExtractSectionPrefix("the project has 701 workers"))
	assert.Equal(t, "", ExtractSectionPrefix("how much is it"))
}

func TestExtractTableToken(t *testing.T) {
	assert.Equal(t, "901.03-1", ExtractTableToken("show me table 901.03-1"))
	assert.Equal(t, "701.03.15-2", ExtractTableToken("Tab. 701.03.15-2 values"))
	assert.Equal(t, "", ExtractTableToken("901.03-1 without the table word"))

	assert.True(t, IsExplicitSubsectionTableToken("701.03.15-2"))
	assert.False(t, IsExplicitSubsectionTableToken("901.03-1"))
}

func TestIsSectionIntent(t *testing.T) {
	assert.True(t, IsSectionIntent("what does 701.02 require"))
	assert.True(t, IsSectionIntent("summarize section 9"))
	assert.False(t, IsSectionIntent("how long do I have to pay a subcontractor"))
}

func TestIsBareSectionIDQuery(t *testing.T) {
	assert.True(t, IsBareSectionIDQuery(" 701.02 "))
	assert.True(t, IsBareSectionIDQuery("701.03.01"))
	assert.False(t, IsBareSectionIDQuery("701"))
	assert.False(t, IsBareSectionIDQuery("tell me about 701.02"))
}

func TestEquationAndTableQueries(t *testing.T) {
	assert.True(t, IsEquationQuery("how to compute the pay adjustment"))
	assert.True(t, IsEquationQuery("what is the PWL formula"))
	assert.False(t, IsEquationQuery("what color should the conduit be"))

	assert.True(t, IsTableQuery("table 901.03-1"))
	assert.True(t, LooksLikeTableQuery("show the requirements table"))
	assert.False(t, LooksLikeTableQuery("minimum cover depth"))
}

func TestTimeLimitAndPromptPayment(t *testing.T) {
	assert.True(t, IsTimeLimitQuestion("within how many days must the prime pay"))
	assert.False(t, IsTimeLimitQuestion("who pays the subcontractor"))

	assert.True(t, IsPromptPaymentInterestIntent("when does interest accrue under 52:32-40"))
	assert.True(t, IsPromptPaymentInterestIntent("prime rate plus 1 percent"))
	assert.False(t, IsPromptPaymentInterestIntent("gradation limits for coarse aggregate"))
}

func TestAsksForSectionOrPage(t *testing.T) {
	assert.True(t, AsksForSectionOrPage("which section covers traffic stripes"))
	assert.True(t, AsksForSectionOrPage("what page is the gradation chart on"))
	assert.True(t, AsksForSectionOrPage("what does 701.02 say"))
	assert.False(t, AsksForSectionOrPage("how thick is the overlay"))
}

func TestParseSectionIntent(t *testing.T) {
	sec3, secDot := ParseSectionIntent("701.01")
	assert.Equal(t, "701", sec3)
	assert.Equal(t, "701.01", secDot)

	sec3, secDot = ParseSectionIntent("SECTION 701")
	assert.Equal(t, "701", sec3)
	assert.Equal(t, "", secDot)

	sec3, secDot = ParseSectionIntent("what does 653.02 require")
	assert.Equal(t, "653", sec3)
	assert.Equal(t, "653.02", secDot)

	sec3, _ = ParseSectionIntent("nothing here")
	assert.Equal(t, "", sec3)
}

func TestNormalizeTableText(t *testing.T) {
	assert.Equal(t, "table 901.03-1", NormalizeTableText("Table  901.03–1"))
}
