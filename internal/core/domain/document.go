package domain

import "time"

// DocType classifies a source document by the corpus it belongs to
type DocType string

const (
	DocTypeStandSpec  DocType = "standspec"
	DocTypeScheduling DocType = "scheduling"
	DocTypeMP         DocType = "mp"
	DocTypeOther      DocType = "other"
)

// Scope restricts retrieval to a slice of the corpus
type Scope string

const (
	ScopeAll        Scope = "all"
	ScopeStandSpec  Scope = "standspec"
	ScopeScheduling Scope = "scheduling"
	ScopeMP         Scope = "mp"
	ScopeMPOnly     Scope = "mp_only"
)

// ValidScope reports whether s is one of the known retrieval scopes
func ValidScope(s Scope) bool {
	switch s {
	case ScopeAll, ScopeStandSpec, ScopeScheduling, ScopeMP, ScopeMPOnly:
		return true
	}
	return false
}

// Document represents an ingested specification document
type Document struct {
	ID          int64     `json:"id"`
	Filename    string    `json:"filename"`
	DisplayName string    `json:"display_name"`
	DocType     DocType   `json:"doc_type"`
	MPID        *string   `json:"mp_id,omitempty"`
	ContentHash string    `json:"content_hash"`
	PageCount   int       `json:"page_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Page holds the raw extracted text of one document page.
// PageNumber is 1-based.
type Page struct {
	DocumentID int64  `json:"document_id"`
	PageNumber int    `json:"page_number"`
	RawText    string `json:"raw_text"`
}

// DocumentSummary is a listing entry with per-document index counts
type DocumentSummary struct {
	Document
	ChunkCount int `json:"chunk_count"`
	TableCount int `json:"table_count"`
}

// ScopeFilter is the retrieval scope predicate shared by every index.
// Both the lexical and vector indexes apply the same filter so fused
// result lists are drawn from the same candidate population.
type ScopeFilter struct {
	Scope Scope    `json:"scope"`
	MPIDs []string `json:"mp_ids,omitempty"`
}

// Allows reports whether a chunk from a document with the given type and
// measure-pack identifier is visible under the filter.
func (f ScopeFilter) Allows(docType DocType, mpID *string) bool {
	switch f.Scope {
	case "", ScopeAll:
		return true
	case ScopeStandSpec:
		return docType == DocTypeStandSpec
	case ScopeScheduling:
		return docType == DocTypeScheduling
	case ScopeMP:
		// MP scope keeps the base specifications visible alongside the packs.
		if docType == DocTypeStandSpec || docType == DocTypeScheduling {
			return true
		}
		return f.mpAllowed(docType, mpID)
	case ScopeMPOnly:
		return f.mpAllowed(docType, mpID)
	default:
		return false
	}
}

func (f ScopeFilter) mpAllowed(docType DocType, mpID *string) bool {
	if docType != DocTypeMP {
		return false
	}
	if len(f.MPIDs) == 0 {
		return true
	}
	if mpID == nil {
		return false
	}
	for _, id := range f.MPIDs {
		if id == *mpID {
			return true
		}
	}
	return false
}
