package domain

import (
	"fmt"
	"net/url"
)

// Confidence grades how well retrieval supported an answer
type Confidence string

const (
	ConfidenceStrong Confidence = "strong"
	ConfidenceMedium Confidence = "medium"
	ConfidenceWeak   Confidence = "weak"
)

// Hit is a single retrieval result. One concrete struct carries every
// field any retrieval path can produce; optional fields are pointers so
// absence is explicit rather than probed for.
type Hit struct {
	Score     float64  `json:"score"`
	BM25Score *float64 `json:"bm25_score,omitempty"`
	VecScore  *float64 `json:"vec_score,omitempty"`

	ChunkID     int64   `json:"chunk_id"`
	DocumentID  int64   `json:"document_id"`
	Filename    string  `json:"filename"`
	DisplayName string  `json:"display_name"`
	DocType     DocType `json:"doc_type"`
	MPID        *string `json:"mp_id,omitempty"`

	SectionID *string `json:"section_id,omitempty"`
	Heading   *string `json:"heading,omitempty"`
	PageStart int     `json:"page_start"`
	PageEnd   int     `json:"page_end"`

	ChunkKind     ChunkKind `json:"chunk_kind"`
	EquationScore float64   `json:"equation_score"`

	TableUID      *string `json:"table_uid,omitempty"`
	TableLabel    *string `json:"table_label,omitempty"`
	TableRowIndex *int    `json:"table_row_index,omitempty"`

	Snippet string `json:"snippet"`
	OpenURL string `json:"open_url,omitempty"`

	// Text is the full chunk text. It feeds snippet building and the LLM
	// source block and is never serialized to API responses.
	Text string `json:"-"`
}

// DocumentOpenURL builds the viewer link for a page of a source document
func DocumentOpenURL(filename string, page int) string {
	return fmt.Sprintf("/documents/file?filename=%s#page=%d", url.QueryEscape(filename), page)
}

// FillOpenURLs sets each hit's viewer link from its first page
func FillOpenURLs(hits []*Hit) {
	for _, h := range hits {
		if h.Filename != "" {
			h.OpenURL = DocumentOpenURL(h.Filename, h.PageStart)
		}
	}
}

// AskMode selects whether the orchestrator generates an answer or only
// returns citations
type AskMode string

const (
	AskModeAnswer      AskMode = "answer"
	AskModeSourcesOnly AskMode = "sources_only"
)

// AskRequest is a question against the corpus
type AskRequest struct {
	Query string   `json:"query"`
	Scope Scope    `json:"scope,omitempty"`
	MPIDs []string `json:"mp_ids,omitempty"`
	K     int      `json:"k,omitempty"`
	Mode  AskMode  `json:"mode,omitempty"`
}

const (
	// DefaultK is the citation count when the request leaves K unset
	DefaultK = 6
	// MaxK bounds the citation count a request may ask for
	MaxK = 12
)

// Normalize fills defaults and clamps K into [1, MaxK]
func (r *AskRequest) Normalize() {
	if r.Scope == "" {
		r.Scope = ScopeAll
	}
	if r.Mode == "" {
		r.Mode = AskModeAnswer
	}
	if r.K <= 0 {
		r.K = DefaultK
	}
	if r.K > MaxK {
		r.K = MaxK
	}
}

// Filter derives the scope predicate for the request
func (r *AskRequest) Filter() ScopeFilter {
	return ScopeFilter{Scope: r.Scope, MPIDs: r.MPIDs}
}

// TableBlock is a deterministic rendering of the best-matching table,
// attached to an answer when the question targets tabular data
type TableBlock struct {
	TableUID    string      `json:"table_uid"`
	TableLabel  string      `json:"table_label"`
	Title       string      `json:"title"`
	Filename    string      `json:"filename"`
	DisplayName string      `json:"display_name"`
	PageNumber  int         `json:"page_number"`
	OpenURL     string      `json:"open_url,omitempty"`
	Rows        []RenderRow `json:"rows"`
	RowCount    int         `json:"row_count"`
	Truncated   bool        `json:"truncated"`
}

// AskResult is the orchestrator's answer to one question
type AskResult struct {
	Answer     string      `json:"answer"`
	Confidence Confidence  `json:"confidence"`
	Hits       []*Hit      `json:"citations"`
	Table      *TableBlock `json:"table,omitempty"`
}
