// Package bm25 implements Okapi BM25 scoring over pre-tokenized
// documents. Parameters match the common Okapi defaults; negative IDF
// values are floored the way rank_bm25 does so very frequent terms do
// not flip scores negative.
package bm25

import "math"

const (
	k1      = 1.5
	b       = 0.75
	epsilon = 0.25
)

// Index holds corpus statistics. Fields are exported so an index can be
// serialized as part of a larger artifact.
type Index struct {
	DocCount int
	AvgDL    float64
	DocLens  []int
	// TermFreqs[i] maps term -> occurrences in document i
	TermFreqs []map[string]int
	IDF       map[string]float64
}

// New builds an index from tokenized documents
func New(corpus [][]string) *Index {
	ix := &Index{
		DocCount:  len(corpus),
		DocLens:   make([]int, len(corpus)),
		TermFreqs: make([]map[string]int, len(corpus)),
		IDF:       make(map[string]float64),
	}

	docFreq := make(map[string]int)
	totalLen := 0
	for i, doc := range corpus {
		ix.DocLens[i] = len(doc)
		totalLen += len(doc)
		tf := make(map[string]int, len(doc))
		for _, t := range doc {
			tf[t]++
		}
		ix.TermFreqs[i] = tf
		for t := range tf {
			docFreq[t]++
		}
	}
	if ix.DocCount > 0 {
		ix.AvgDL = float64(totalLen) / float64(ix.DocCount)
	}

	var idfSum float64
	var negative []string
	n := float64(ix.DocCount)
	for t, df := range docFreq {
		idf := math.Log((n - float64(df) + 0.5) / (float64(df) + 0.5))
		ix.IDF[t] = idf
		idfSum += idf
		if idf < 0 {
			negative = append(negative, t)
		}
	}
	if len(ix.IDF) > 0 {
		avgIDF := idfSum / float64(len(ix.IDF))
		floor := epsilon * avgIDF
		for _, t := range negative {
			ix.IDF[t] = floor
		}
	}
	return ix
}

// Scores returns one BM25 score per document for the tokenized query
func (ix *Index) Scores(query []string) []float64 {
	scores := make([]float64, ix.DocCount)
	if ix.DocCount == 0 || ix.AvgDL == 0 {
		return scores
	}
	for _, term := range query {
		idf, ok := ix.IDF[term]
		if !ok {
			continue
		}
		for i := 0; i < ix.DocCount; i++ {
			tf := float64(ix.TermFreqs[i][term])
			if tf == 0 {
				continue
			}
			norm := 1 - b + b*float64(ix.DocLens[i])/ix.AvgDL
			scores[i] += idf * (tf * (k1 + 1)) / (tf + k1*norm)
		}
	}
	return scores
}
