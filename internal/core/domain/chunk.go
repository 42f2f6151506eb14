package domain

// ChunkKind classifies what a chunk contains
type ChunkKind string

const (
	ChunkKindContent     ChunkKind = "content"
	ChunkKindTOC         ChunkKind = "toc"
	ChunkKindFrontMatter ChunkKind = "front_matter"
	ChunkKindTableRow    ChunkKind = "table_row"
	ChunkKindEquation    ChunkKind = "equation"
)

// Chunk is the retrieval unit: a section-scoped slice of document text.
// PageStart and PageEnd are inclusive and PageStart <= PageEnd.
// TableRowIndex is set iff ChunkKind is table_row.
type Chunk struct {
	ID            int64     `json:"id"`
	DocumentID    int64     `json:"document_id"`
	ChunkIndex    int       `json:"chunk_index"`
	SectionID     *string   `json:"section_id,omitempty"`
	Heading       *string   `json:"heading,omitempty"`
	PageStart     int       `json:"page_start"`
	PageEnd       int       `json:"page_end"`
	Text          string    `json:"text"`
	ChunkKind     ChunkKind `json:"chunk_kind"`
	EquationScore float64   `json:"equation_score"`
	TableUID      *string   `json:"table_uid,omitempty"`
	TableRowIndex *int      `json:"table_row_index,omitempty"`
	TableLabel    *string   `json:"table_label,omitempty"`
}

// Table is an extracted table block, keyed by a content-derived UID that
// stays stable across rebuilds as long as the underlying text is unchanged.
type Table struct {
	TableUID         string  `json:"table_uid"`
	DocumentID       int64   `json:"document_id"`
	PageNumber       int     `json:"page_number"`
	TableIndexOnPage int     `json:"table_index_on_page"`
	SectionID        *string `json:"section_id,omitempty"`
	TableLabel       string  `json:"table_label"`
	RowCount         int     `json:"row_count"`
}

// TableMeta is a table joined with its owning document's metadata
type TableMeta struct {
	Table
	Filename    string  `json:"filename"`
	DisplayName string  `json:"display_name"`
	DocType     DocType `json:"doc_type"`
	MPID        *string `json:"mp_id,omitempty"`
}

// TableRow is one physical line of an extracted table
type TableRow struct {
	TableUID string `json:"table_uid"`
	RowIndex int    `json:"row_index"`
	RowText  string `json:"row_text"`
}

// TableRowKind labels a row for rendering
type TableRowKind string

const (
	TableRowKindInstruction TableRowKind = "instruction"
	TableRowKindHeader      TableRowKind = "header"
	TableRowKindData        TableRowKind = "data"
)

// RenderRow is a table row shaped for display
type RenderRow struct {
	RowIndex int          `json:"row_index"`
	Kind     TableRowKind `json:"kind"`
	Text     string       `json:"text"`
	Cells    []string     `json:"cells,omitempty"`
}
