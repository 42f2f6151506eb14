package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestScopeFilterAllows(t *testing.T) {
	mp1 := strPtr("MP1-25")

	tests := []struct {
		name    string
		filter  ScopeFilter
		docType DocType
		mpID    *string
		want    bool
	}{
		{"all passes everything", ScopeFilter{Scope: ScopeAll}, DocTypeMP, mp1, true},
		{"empty scope behaves like all", ScopeFilter{}, DocTypeStandSpec, nil, true},
		{"standspec only", ScopeFilter{Scope: ScopeStandSpec}, DocTypeStandSpec, nil, true},
		{"standspec rejects mp", ScopeFilter{Scope: ScopeStandSpec}, DocTypeMP, mp1, false},
		{"scheduling only", ScopeFilter{Scope: ScopeScheduling}, DocTypeScheduling, nil, true},
		{"mp keeps base specs", ScopeFilter{Scope: ScopeMP}, DocTypeStandSpec, nil, true},
		{"mp passes packs", ScopeFilter{Scope: ScopeMP}, DocTypeMP, mp1, true},
		{"mp rejects other", ScopeFilter{Scope: ScopeMP}, DocTypeOther, nil, false},
		{"mp_only rejects base specs", ScopeFilter{Scope: ScopeMPOnly}, DocTypeStandSpec, nil, false},
		{"mp_only unrestricted passes any pack", ScopeFilter{Scope: ScopeMPOnly}, DocTypeMP, mp1, true},
		{"mp_only with ids matches", ScopeFilter{Scope: ScopeMPOnly, MPIDs: []string{"MP1-25"}}, DocTypeMP, mp1, true},
		{"mp_only with ids rejects others", ScopeFilter{Scope: ScopeMPOnly, MPIDs: []string{"MP2-10"}}, DocTypeMP, mp1, false},
		{"mp_only with ids rejects nil mp id", ScopeFilter{Scope: ScopeMPOnly, MPIDs: []string{"MP1-25"}}, DocTypeMP, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Allows(tt.docType, tt.mpID))
		})
	}
}

func TestValidScope(t *testing.T) {
	assert.True(t, ValidScope(ScopeAll))
	assert.True(t, ValidScope(ScopeMPOnly))
	assert.False(t, ValidScope("everything"))
}

func TestAskRequestNormalize(t *testing.T) {
	r := &AskRequest{Query: "q"}
	r.Normalize()
	assert.Equal(t, ScopeAll, r.Scope)
	assert.Equal(t, AskModeAnswer, r.Mode)
	assert.Equal(t, DefaultK, r.K)

	r = &AskRequest{Query: "q", K: 50}
	r.Normalize()
	assert.Equal(t, MaxK, r.K)
}
