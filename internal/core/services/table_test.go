package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
	"github.com/fieldline-labs/spechub-core/internal/core/ports/driven/mocks"
)

func seedTableWithRows(store *mocks.MockTableStore, uid string, rowTexts []string) {
	rows := make([]*domain.TableRow, len(rowTexts))
	for i, text := range rowTexts {
		rows[i] = &domain.TableRow{TableUID: uid, RowIndex: i, RowText: text}
	}
	store.AddTable(&domain.TableMeta{
		Table: domain.Table{
			TableUID:   uid,
			DocumentID: 1,
			PageNumber: 12,
			TableLabel: "Table (p. 12) #1",
		},
		Filename: "standspec.pdf",
		DocType:  domain.DocTypeStandSpec,
	}, rows)
}

func TestTableService_Meta(t *testing.T) {
	store := mocks.NewMockTableStore()
	seedTableWithRows(store, "tbl_a", []string{"2 in.  100", "1 in.  95-100"})

	svc := NewTableService(store, testLogger())

	meta, err := svc.Meta(context.Background(), "tbl_a")
	require.NoError(t, err)
	assert.Equal(t, "tbl_a", meta.TableUID)
	assert.Equal(t, 2, meta.RowCount)

	_, err = svc.Meta(context.Background(), "tbl_missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Meta(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTableService_RowsPaginates(t *testing.T) {
	store := mocks.NewMockTableStore()
	texts := make([]string, 5)
	for i := range texts {
		texts[i] = fmt.Sprintf("%d in.  %d psi", i+1, (i+1)*100)
	}
	seedTableWithRows(store, "tbl_a", texts)

	svc := NewTableService(store, testLogger())

	page, err := svc.Rows(context.Background(), "tbl_a", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	require.Len(t, page.Rows, 2)
	require.NotNil(t, page.NextOffset)
	assert.Equal(t, 2, *page.NextOffset)

	last, err := svc.Rows(context.Background(), "tbl_a", 3, 2)
	require.NoError(t, err)
	require.Len(t, last.Rows, 3)
	assert.Nil(t, last.NextOffset)
}

func TestTableService_RowsClampsLimit(t *testing.T) {
	store := mocks.NewMockTableStore()
	seedTableWithRows(store, "tbl_a", []string{"2 in.  100"})

	svc := NewTableService(store, testLogger())

	page, err := svc.Rows(context.Background(), "tbl_a", 500, -3)
	require.NoError(t, err)
	assert.Equal(t, 80, page.Limit)
	assert.Equal(t, 0, page.Offset)
	require.Len(t, page.Rows, 1)
}

func TestTableService_RowsRendersDataRows(t *testing.T) {
	store := mocks.NewMockTableStore()
	seedTableWithRows(store, "tbl_a", []string{
		"Item  Minimum  Maximum", // header, dropped from rendering
		"Slack length  10 ft  20 ft",
		"Install the cable after testing is complete.", // trailing instruction
	})

	svc := NewTableService(store, testLogger())

	page, err := svc.Rows(context.Background(), "tbl_a", 0, 0)
	require.NoError(t, err)
	require.Len(t, page.Rendered, 1)
	assert.Equal(t, domain.TableRowKindData, page.Rendered[0].Kind)
	assert.Contains(t, page.Rendered[0].Text, "10 ft")
}
