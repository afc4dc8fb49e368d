package sheet

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkbook_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.xlsx")

	wb, err := OpenWorkbook(path)
	require.NoError(t, err)

	require.NoError(t, wb.CreateSegment(ctx, segment, []string{"Driver Name", "Date", "Day of Week"}, ""))
	assert.ErrorIs(t, wb.CreateSegment(ctx, segment, nil, ""), ErrSegmentExists)

	row, err := wb.AppendRow(ctx, segment, "A2:K", []string{"Somchai", "05/03/2568", "Wednesday"})
	require.NoError(t, err)
	assert.Equal(t, 2, row)

	row, err = wb.AppendRow(ctx, segment, "A2:K", []string{"Anan", "05/03/2568", "Wednesday"})
	require.NoError(t, err)
	assert.Equal(t, 3, row)

	require.NoError(t, wb.BatchUpdateValues(ctx, segment, []ValueRange{
		{Range: "E2:F2", Values: [][]string{{"08:15", "17:40"}}},
	}))
	require.NoError(t, wb.Close())

	reopened, err := OpenWorkbook(path)
	require.NoError(t, err)
	defer reopened.Close()

	values, err := reopened.GetValues(ctx, segment, "A2:K")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Somchai", "05/03/2568", "Wednesday", "", "08:15", "17:40"},
		{"Anan", "05/03/2568", "Wednesday"},
	}, values)

	header, err := reopened.GetValues(ctx, segment, "A1:K1")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Driver Name", "Date", "Day of Week"}}, header)
}

func TestWorkbook_SegmentAdmin(t *testing.T) {
	ctx := context.Background()
	wb, err := OpenWorkbook(filepath.Join(t.TempDir(), "ledger.xlsx"))
	require.NoError(t, err)
	defer wb.Close()

	_, err = wb.GetValues(ctx, segment, "A1:K1")
	assert.ErrorIs(t, err, ErrSegmentNotFound)

	require.NoError(t, wb.CreateSegment(ctx, "February 2025 Attendance", []string{"Driver Name"}, ""))
	require.NoError(t, wb.CreateSegment(ctx, segment, []string{"Driver Name"}, "February 2025 Attendance"))

	exists, err := wb.SegmentExists(ctx, segment)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, wb.DeleteSegment(ctx, segment))
	exists, err = wb.SegmentExists(ctx, segment)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.ErrorIs(t, wb.DeleteSegment(ctx, segment), ErrSegmentNotFound)
}
