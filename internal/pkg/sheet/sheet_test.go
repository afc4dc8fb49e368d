package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		input string
		want  Range
	}{
		{"A2:K", Range{StartCol: 1, StartRow: 2, EndCol: 11, EndRow: 0}},
		{"F5:G5", Range{StartCol: 6, StartRow: 5, EndCol: 7, EndRow: 5}},
		{"K7", Range{StartCol: 11, StartRow: 7, EndCol: 11, EndRow: 7}},
		{"A:K", Range{StartCol: 1, StartRow: 1, EndCol: 11, EndRow: 0}},
		{"a1:k1", Range{StartCol: 1, StartRow: 1, EndCol: 11, EndRow: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRange(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "2:K", "K1:A1", "A5:A2", "A1:B1:C1", "A0"} {
		_, err := ParseRange(bad)
		assert.ErrorIs(t, err, ErrInvalidRange, bad)
	}
}

func TestRange_String(t *testing.T) {
	for _, s := range []string{"A2:K", "F5:G5", "K7", "A1:K1"} {
		r, err := ParseRange(s)
		require.NoError(t, err)
		assert.Equal(t, s, r.String())
	}
}

func TestRowRange(t *testing.T) {
	assert.Equal(t, "F5:H5", RowRange("F", "H", 5))
	assert.Equal(t, "K7", RowRange("K", "K", 7))
	assert.Equal(t, "C12", CellName("C", 12))
}

func TestWindow_TrimsAndPads(t *testing.T) {
	rows := [][]string{
		{"h1", "h2", "h3"},
		{"a", "", ""},
		{},
		{"", "b"},
		{},
	}

	got := window(rows, Range{StartCol: 1, StartRow: 2, EndCol: 3})
	assert.Equal(t, [][]string{{"a"}, {}, {"", "b"}}, got)

	assert.Equal(t, 4, lastFilledRow(rows))
	assert.Equal(t, 0, lastFilledRow(nil))
}
