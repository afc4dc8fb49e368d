package sheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"
)

// defaultSheet is the sheet excelize puts into every new file.
const defaultSheet = "Sheet1"

// Workbook is a Backend persisted as an .xlsx file: every segment is a worksheet.
// Each mutating call is saved to disk before it returns.
type Workbook struct {
	mu   sync.Mutex
	path string
	file *excelize.File
}

// OpenWorkbook opens the workbook at path, creating an empty one when it does not exist.
func OpenWorkbook(path string) (*Workbook, error) {
	var (
		f   *excelize.File
		err error
	)

	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		f = excelize.NewFile()
		if err := f.SaveAs(path); err != nil {
			return nil, fmt.Errorf("failed to create workbook %s: %w", path, err)
		}
		slog.Info("Created ledger workbook", "path", path)
	} else {
		f, err = excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
		}
	}

	return &Workbook{path: path, file: f}, nil
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

func (w *Workbook) exists(segment string) bool {
	idx, err := w.file.GetSheetIndex(segment)
	return err == nil && idx >= 0
}

func (w *Workbook) rows(segment string) ([][]string, error) {
	if !w.exists(segment) {
		return nil, fmt.Errorf("%w: %s", ErrSegmentNotFound, segment)
	}
	rows, err := w.file.GetRows(segment)
	if err != nil {
		return nil, fmt.Errorf("failed to read segment %s: %w", segment, err)
	}
	return rows, nil
}

// GetValues implements Store.
func (w *Workbook) GetValues(ctx context.Context, segment, rng string) ([][]string, error) {
	r, err := ParseRange(rng)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	rows, err := w.rows(segment)
	if err != nil {
		return nil, err
	}
	return window(rows, r), nil
}

// UpdateValues implements Store.
func (w *Workbook) UpdateValues(ctx context.Context, segment, rng string, values [][]string) error {
	return w.BatchUpdateValues(ctx, segment, []ValueRange{{Range: rng, Values: values}})
}

// BatchUpdateValues implements Store.
func (w *Workbook) BatchUpdateValues(ctx context.Context, segment string, data []ValueRange) error {
	ranges := make([]Range, len(data))
	for i, vr := range data {
		r, err := ParseRange(vr.Range)
		if err != nil {
			return err
		}
		ranges[i] = r
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.exists(segment) {
		return fmt.Errorf("%w: %s", ErrSegmentNotFound, segment)
	}

	for i, vr := range data {
		for rowOffset, vals := range vr.Values {
			for colOffset, v := range vals {
				cell, err := excelize.CoordinatesToCellName(ranges[i].StartCol+colOffset, ranges[i].StartRow+rowOffset)
				if err != nil {
					return err
				}
				if err := w.file.SetCellStr(segment, cell, v); err != nil {
					return fmt.Errorf("failed to write %s!%s: %w", segment, cell, err)
				}
			}
		}
	}
	return w.save()
}

// AppendRow implements Store.
func (w *Workbook) AppendRow(ctx context.Context, segment, rng string, row []string) (int, error) {
	r, err := ParseRange(rng)
	if err != nil {
		return 0, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	rows, err := w.rows(segment)
	if err != nil {
		return 0, err
	}

	target := lastFilledRow(rows) + 1
	if target < r.StartRow {
		target = r.StartRow
	}

	cell, err := excelize.CoordinatesToCellName(r.StartCol, target)
	if err != nil {
		return 0, err
	}
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}
	if err := w.file.SetSheetRow(segment, cell, &values); err != nil {
		return 0, fmt.Errorf("failed to append to %s: %w", segment, err)
	}
	if err := w.save(); err != nil {
		return 0, err
	}
	return target, nil
}

// SegmentExists implements SegmentAdmin.
func (w *Workbook) SegmentExists(ctx context.Context, segment string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.exists(segment), nil
}

// CreateSegment implements SegmentAdmin.
func (w *Workbook) CreateSegment(ctx context.Context, segment string, header []string, template string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.exists(segment) {
		return fmt.Errorf("%w: %s", ErrSegmentExists, segment)
	}

	if _, err := w.file.NewSheet(segment); err != nil {
		return fmt.Errorf("failed to create segment %s: %w", segment, err)
	}

	values := make([]interface{}, len(header))
	for i, h := range header {
		values[i] = h
	}
	if err := w.file.SetSheetRow(segment, "A1", &values); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", segment, err)
	}

	if template != "" && w.exists(template) {
		if err := w.copyFormat(template, segment, len(header)); err != nil {
			slog.Warn("Failed to copy segment formatting", "from", template, "to", segment, "error", err)
		}
	}

	// The placeholder sheet of a fresh file is dropped once a real segment exists.
	if segment != defaultSheet && w.exists(defaultSheet) && len(w.file.GetSheetList()) > 1 {
		if rows, err := w.file.GetRows(defaultSheet); err == nil && len(rows) == 0 {
			if err := w.file.DeleteSheet(defaultSheet); err != nil {
				slog.Warn("Failed to drop placeholder sheet", "error", err)
			}
		}
	}

	return w.save()
}

// copyFormat copies header cell styles and column widths from one segment to another.
func (w *Workbook) copyFormat(from, to string, columns int) error {
	for col := 1; col <= columns; col++ {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}

		width, err := w.file.GetColWidth(from, name)
		if err != nil {
			return err
		}
		if err := w.file.SetColWidth(to, name, name, width); err != nil {
			return err
		}

		cell := name + "1"
		style, err := w.file.GetCellStyle(from, cell)
		if err != nil {
			return err
		}
		if style != 0 {
			if err := w.file.SetCellStyle(to, cell, cell, style); err != nil {
				return err
			}
		}
	}
	return nil
}

// DeleteSegment implements SegmentAdmin.
func (w *Workbook) DeleteSegment(ctx context.Context, segment string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.exists(segment) {
		return fmt.Errorf("%w: %s", ErrSegmentNotFound, segment)
	}
	if len(w.file.GetSheetList()) == 1 {
		// A workbook needs at least one sheet.
		if _, err := w.file.NewSheet(defaultSheet); err != nil {
			return err
		}
	}
	if err := w.file.DeleteSheet(segment); err != nil {
		return fmt.Errorf("failed to delete segment %s: %w", segment, err)
	}
	return w.save()
}

func (w *Workbook) save() error {
	if err := w.file.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
