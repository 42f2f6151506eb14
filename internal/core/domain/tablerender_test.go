package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsInstructionRow(t *testing.T) {
	assert.True(t, IsInstructionRow("1. Remove the forms after curing."))
	assert.True(t, IsInstructionRow("Install conduit below grade"))
	assert.True(t, IsInstructionRow("The Contractor is responsible for maintaining the detour at all times."))
	assert.False(t, IsInstructionRow("No. 57 stone 90-100"))
	assert.False(t, IsInstructionRow(""))
}

func TestIsDataRow(t *testing.T) {
	assert.True(t, IsDataRow("Minimum cover 24 in"))
	assert.True(t, IsDataRow("90-100 percent passing"))
	assert.True(t, IsDataRow("$ 500 per day"))
	assert.False(t, IsDataRow("Description"))
	assert.False(t, IsDataRow(""))
}

func TestBuildRenderRows(t *testing.T) {
	rows := []*TableRow{
		{RowIndex: 0, RowText: "Item Description Minimum"},   // header, dropped
		{RowIndex: 1, RowText: "Slack at each splice point"}, // label, merges with next
		{RowIndex: 2, RowText: "3 ft"},
		{RowIndex: 3, RowText: "Slack at dead ends 5 ft"},
		{RowIndex: 4, RowText: "Secure the cable before backfilling."}, // instruction, stops
		{RowIndex: 5, RowText: "10 ft"},
	}
	out := BuildRenderRows(rows, 10)
	require.Len(t, out, 2)
	assert.Equal(t, "Slack at each splice point — 3 ft", out[0].Text)
	assert.Equal(t, TableRowKindData, out[0].Kind)
	assert.Equal(t, "Slack at dead ends 5 ft", out[1].Text)
}

func TestBuildRenderRowsPreviewLimit(t *testing.T) {
	var rows []*TableRow
	for i := 0; i < 10; i++ {
		rows = append(rows, &TableRow{RowIndex: i, RowText: "90-100 percent passing"})
	}
	assert.Len(t, BuildRenderRows(rows, 3), 3)
}

func TestIsJunkTableLabel(t *testing.T) {
	assert.True(t, IsJunkTableLabel("Table (p. 12) #1"))
	assert.False(t, IsJunkTableLabel("Table 901.03-1 — Gradation"))
}

func TestExtractTableNumberAndTitle(t *testing.T) {
	n, title := ExtractTableNumberAndTitle("Table 901.03-1 — Coarse Aggregate Gradation")
	assert.Equal(t, "901.03-1", n)
	assert.Equal(t, "Coarse Aggregate Gradation", title)

	n, title = ExtractTableNumberAndTitle("see table 701.03.15-2 for slack lengths")
	assert.Equal(t, "701.03.15-2", n)
	assert.Equal(t, "", title)

	n, _ = ExtractTableNumberAndTitle("no table reference")
	assert.Equal(t, "", n)
}

func TestBuildTableDisplayTitle(t *testing.T) {
	got := BuildTableDisplayTitle("901.03-1", "Table (p. 12) #1", []string{
		"Table 901.03-1 — Coarse Aggregate Gradation",
	})
	assert.Equal(t, "Table 901.03-1 — Coarse Aggregate Gradation", got)

	got = BuildTableDisplayTitle("", "Table (p. 12) #1", []string{"nothing useful"})
	assert.Equal(t, "Table", got)

	got = BuildTableDisplayTitle("", "Slack Requirements", nil)
	assert.Equal(t, "Slack Requirements", got)
}
