package services

import (
	"regexp"
	"sort"
	"strings"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
)

// Reciprocal rank fusion constant; standard value from the RRF paper
const rrfK = 60

// Equation-tagged chunks get a multiplicative boost on equation queries
const equationBoost = 1.35

var (
	queryTableTokenRe = regexp.MustCompile(`\btable\s*([0-9]{3}\.[0-9]{2}-[0-9]+)\b`)
	tableyWordsRe     = regexp.MustCompile(`\b(percent|percentage|sieve|no\.\s*\d+)\b`)
	dominantHeadRe    = regexp.MustCompile(`(?m)^\s*(\d{3}\.\d{2}(?:\.\d{2})?)\b`)
)

// reciprocalRankFusion merges ranked id lists into a fused score map.
// An id appearing in several lists accumulates 1/(k+rank) per list.
func reciprocalRankFusion(rankedLists [][]int64) map[int64]float64 {
	fused := make(map[int64]float64)
	for _, lst := range rankedLists {
		for i, id := range lst {
			fused[id] += 1.0 / float64(rrfK+i+1)
		}
	}
	return fused
}

// computeConfidence grades the fused result set. Agreement between the
// lexical and vector top-10 is what separates strong from medium.
func computeConfidence(topScore float64, overlapTop10 int) domain.Confidence {
	if topScore >= 0.035 && overlapTop10 >= 1 {
		return domain.ConfidenceStrong
	}
	if topScore >= 0.02 {
		return domain.ConfidenceMedium
	}
	return domain.ConfidenceWeak
}

func sortHitsByScore(hits []*domain.Hit) {
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
}

// snippetDominantSection returns the section id a snippet opens with,
// looking only at its head so trailing cross references do not count.
func snippetDominantSection(snippet string) string {
	if snippet == "" {
		return ""
	}
	head := snippet
	if len(head) > 350 {
		head = head[:350]
	}
	if m := dominantHeadRe.FindStringSubmatch(head); m != nil {
		return m[1]
	}
	return ""
}

// applySectionIntentShaping cleans the pool for section-targeted
// queries: structural chunks go, snippets dominated by a different
// section go, and hits matching the asked section move to the front.
func applySectionIntentShaping(hits []*domain.Hit, exactSection, sectionPrefix string) []*domain.Hit {
	kept := hits[:0]
	for _, h := range hits {
		if h.ChunkKind == domain.ChunkKindTOC || h.ChunkKind == domain.ChunkKindFrontMatter {
			continue
		}
		dom := snippetDominantSection(h.Snippet)
		if h.SectionID != nil && dom != "" && dom != *h.SectionID {
			continue
		}
		kept = append(kept, h)
	}

	match := func(h *domain.Hit) bool { return false }
	switch {
	case exactSection != "":
		match = func(h *domain.Hit) bool { return h.SectionID != nil && *h.SectionID == exactSection }
	case sectionPrefix != "":
		match = func(h *domain.Hit) bool {
			return h.SectionID != nil && strings.HasPrefix(*h.SectionID, sectionPrefix)
		}
	default:
		return kept
	}

	var preferred, rest []*domain.Hit
	for _, h := range kept {
		if match(h) {
			preferred = append(preferred, h)
		} else {
			rest = append(rest, h)
		}
	}
	if len(preferred) == 0 {
		return kept
	}
	return append(preferred, rest...)
}

// tableTokenBonus rewards hits that actually contain the referenced
// table and penalizes mention-only cross references.
func tableTokenBonus(h *domain.Hit, token string) float64 {
	s := strings.ToLower(h.Snippet)
	bonus := 0.0
	if strings.Contains(s, "table "+token) {
		bonus += 0.15
		if tableyWordsRe.MatchString(s) {
			bonus += 0.08
		}
		if digitCount(s) >= 25 {
			bonus += 0.05
		}
	}
	if h.TableUID == nil && strings.Contains(s, "specified table "+token) && digitCount(s) < 10 {
		bonus -= 0.08
	}
	return bonus
}

func digitCount(s string) int {
	n := 0
	for _, ch := range s {
		if ch >= '0' && ch <= '9' {
			n++
		}
	}
	return n
}

// tableGroupBoost promotes a table when several of its rows surfaced
// together, so table retrieval reads as intentional rather than as
// stray lines. Only fires on table-flavored wording.
func tableGroupBoost(hits []*domain.Hit, query string) []*domain.Hit {
	if len(hits) == 0 {
		return hits
	}
	q := strings.ToLower(query)
	intent := false
	for _, w := range []string{"table", "chart", "row", "values", "limit"} {
		if strings.Contains(q, w) {
			intent = true
			break
		}
	}
	if !intent {
		return hits
	}

	byUID := make(map[string][]*domain.Hit)
	var uidOrder []string
	for _, h := range hits {
		if h.TableUID != nil {
			if _, seen := byUID[*h.TableUID]; !seen {
				uidOrder = append(uidOrder, *h.TableUID)
			}
			byUID[*h.TableUID] = append(byUID[*h.TableUID], h)
		}
	}

	bestUID := ""
	bestCount := 0
	bestScore := 0.0
	for _, uid := range uidOrder {
		rows := byUID[uid]
		if len(rows) < 2 {
			continue
		}
		maxScore := rows[0].Score
		for _, r := range rows[1:] {
			if r.Score > maxScore {
				maxScore = r.Score
			}
		}
		if len(rows) > bestCount || (len(rows) == bestCount && maxScore > bestScore) {
			bestUID, bestCount, bestScore = uid, len(rows), maxScore
		}
	}
	if bestUID == "" {
		return hits
	}

	bestRows := append([]*domain.Hit(nil), byUID[bestUID]...)
	sortHitsByScore(bestRows)
	if len(bestRows) > 6 {
		bestRows = bestRows[:6]
	}

	var rest []*domain.Hit
	for _, h := range hits {
		if h.TableUID == nil || *h.TableUID != bestUID {
			rest = append(rest, h)
		}
	}
	out := append(bestRows, rest...)
	sortHitsByScore(out)
	return out
}

// collapseTables keeps the best hit per table so results list tables,
// not row spam. Non-table hits pass through untouched.
func collapseTables(hits []*domain.Hit, limit int) []*domain.Hit {
	bestByTable := make(map[string]*domain.Hit)
	var order []string
	var nonTable []*domain.Hit

	for _, h := range hits {
		if h.TableUID == nil {
			nonTable = append(nonTable, h)
			continue
		}
		uid := *h.TableUID
		prev, seen := bestByTable[uid]
		if !seen {
			order = append(order, uid)
		}
		if !seen || h.Score > prev.Score {
			bestByTable[uid] = h
		}
	}

	merged := make([]*domain.Hit, 0, len(order)+len(nonTable))
	for _, uid := range order {
		merged = append(merged, bestByTable[uid])
	}
	merged = append(merged, nonTable...)
	sortHitsByScore(merged)
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
