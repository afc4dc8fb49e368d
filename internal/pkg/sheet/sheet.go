package sheet

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrSegmentNotFound = errors.New("segment not found")
	ErrSegmentExists   = errors.New("segment already exists")
	ErrInvalidRange    = errors.New("invalid range")
)

// ValueRange is one entry of a batched overwrite.
type ValueRange struct {
	Range  string
	Values [][]string
}

// Store is the primitive cell-level API the ledger is built on. None of the
// operations are transactional; BatchUpdateValues is applied as one call but other
// readers may still observe it half-done on a remote backend.
type Store interface {
	// GetValues returns the rows inside rng. Trailing empty cells and trailing
	// empty rows are trimmed, so callers must pad.
	GetValues(ctx context.Context, segment, rng string) ([][]string, error)

	// UpdateValues overwrites the cells starting at the top-left corner of rng.
	UpdateValues(ctx context.Context, segment, rng string, values [][]string) error

	// BatchUpdateValues overwrites several ranges in one call.
	BatchUpdateValues(ctx context.Context, segment string, data []ValueRange) error

	// AppendRow writes row after the last non-empty row at or below the start of
	// rng and returns the 1-based row number it landed on.
	AppendRow(ctx context.Context, segment, rng string, row []string) (int, error)
}

// SegmentAdmin manages whole segments.
type SegmentAdmin interface {
	SegmentExists(ctx context.Context, segment string) (bool, error)
	// CreateSegment adds a segment whose first row is header. When template names an
	// existing segment its header formatting and column widths are copied.
	CreateSegment(ctx context.Context, segment string, header []string, template string) error
	DeleteSegment(ctx context.Context, segment string) error
}

// Backend is a store that can also administer segments.
type Backend interface {
	Store
	SegmentAdmin
}

// Range is a parsed A1-notation range. Columns and rows are 1-based; an EndRow of
// zero means the range is open towards the bottom of the segment.
type Range struct {
	StartCol int
	StartRow int
	EndCol   int
	EndRow   int
}

// ParseRange parses "A2:K", "F5:G5", "K7", "A:K" and "A1:K1".
func ParseRange(rng string) (Range, error) {
	rng = strings.TrimSpace(rng)
	if rng == "" {
		return Range{}, ErrInvalidRange
	}

	parts := strings.Split(rng, ":")
	if len(parts) > 2 {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, rng)
	}

	startCol, startRow, err := splitRef(parts[0])
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, rng)
	}
	if startRow == 0 {
		startRow = 1
	}

	r := Range{StartCol: startCol, StartRow: startRow, EndCol: startCol, EndRow: startRow}
	if len(parts) == 2 {
		endCol, endRow, err := splitRef(parts[1])
		if err != nil {
			return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, rng)
		}
		r.EndCol = endCol
		r.EndRow = endRow
	}

	if r.EndCol < r.StartCol || (r.EndRow != 0 && r.EndRow < r.StartRow) {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, rng)
	}
	return r, nil
}

// String renders the range back to A1 notation.
func (r Range) String() string {
	start, _ := excelize.ColumnNumberToName(r.StartCol)
	end, _ := excelize.ColumnNumberToName(r.EndCol)
	if r.EndRow == 0 {
		return fmt.Sprintf("%s%d:%s", start, r.StartRow, end)
	}
	if r.StartCol == r.EndCol && r.StartRow == r.EndRow {
		return fmt.Sprintf("%s%d", start, r.StartRow)
	}
	return fmt.Sprintf("%s%d:%s%d", start, r.StartRow, end, r.EndRow)
}

// Width is the number of columns the range covers.
func (r Range) Width() int {
	return r.EndCol - r.StartCol + 1
}

// RowRange builds the range covering columns first..last of a single row.
func RowRange(first, last string, row int) string {
	if first == last {
		return fmt.Sprintf("%s%d", first, row)
	}
	return fmt.Sprintf("%s%d:%s%d", first, row, last, row)
}

// CellName builds an A1 cell reference.
func CellName(col string, row int) string {
	return col + strconv.Itoa(row)
}

func splitRef(ref string) (col int, row int, err error) {
	ref = strings.ToUpper(strings.TrimSpace(ref))
	i := 0
	for i < len(ref) && ref[i] >= 'A' && ref[i] <= 'Z' {
		i++
	}
	if i == 0 {
		return 0, 0, ErrInvalidRange
	}

	col, err = excelize.ColumnNameToNumber(ref[:i])
	if err != nil {
		return 0, 0, err
	}

	if i == len(ref) {
		return col, 0, nil
	}

	row, err = strconv.Atoi(ref[i:])
	if err != nil || row < 1 {
		return 0, 0, ErrInvalidRange
	}
	return col, row, nil
}

// window extracts the cells of rows (a full-segment matrix, row 1 first) that fall
// inside r, trimming trailing blanks the same way every Store does.
func window(rows [][]string, r Range) [][]string {
	last := len(rows)
	if r.EndRow != 0 && r.EndRow < last {
		last = r.EndRow
	}

	out := make([][]string, 0)
	for rowNum := r.StartRow; rowNum <= last; rowNum++ {
		src := rows[rowNum-1]
		cells := make([]string, 0, r.Width())
		for col := r.StartCol; col <= r.EndCol; col++ {
			if col-1 < len(src) {
				cells = append(cells, src[col-1])
			} else {
				cells = append(cells, "")
			}
		}
		out = append(out, trimRow(cells))
	}
	return trimRows(out)
}

func trimRow(row []string) []string {
	n := len(row)
	for n > 0 && row[n-1] == "" {
		n--
	}
	return row[:n]
}

func trimRows(rows [][]string) [][]string {
	n := len(rows)
	for n > 0 && len(rows[n-1]) == 0 {
		n--
	}
	return rows[:n]
}

// lastFilledRow returns the 1-based number of the last row with any content, or 0.
func lastFilledRow(rows [][]string) int {
	for i := len(rows) - 1; i >= 0; i-- {
		if len(trimRow(rows[i])) > 0 {
			return i + 1
		}
	}
	return 0
}
