package domain

// RebuildStats summarizes one full index rebuild
type RebuildStats struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
	Tables    int `json:"tables"`
	TableRows int `json:"table_rows"`
	Linked    int `json:"linked_chunks"`
}

// TableRowsPage is one page of raw table rows. Offset counts rows
// already fetched; NextOffset is nil on the last page.
type TableRowsPage struct {
	TableUID   string      `json:"table_uid"`
	Offset     int         `json:"offset"`
	Limit      int         `json:"limit"`
	Total      int         `json:"total"`
	Rows       []*TableRow `json:"rows"`
	Rendered   []RenderRow `json:"rendered,omitempty"`
	NextOffset *int        `json:"next_offset,omitempty"`
}
