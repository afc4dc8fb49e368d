package spreadsheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/cmlabs-hris/attendance-ledger/internal/domain/ledger"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/sheet"
)

type ledgerRepository struct {
	store    sheet.Store
	detector *SchemaDetector
	locator  *RecordLocator
	codec    Codec
}

// NewLedgerRepository creates the spreadsheet-backed ledger repository
func NewLedgerRepository(store sheet.Store, detector *SchemaDetector, locator *RecordLocator, codec Codec) ledger.Repository {
	return &ledgerRepository{
		store:    store,
		detector: detector,
		locator:  locator,
		codec:    codec,
	}
}

// ResolveSchema returns the layout of a segment. Reads degrade to OLD when detection
// fails; writes are refused with ErrSchemaUnknown. A missing segment is reported as
// such in both modes.
func (r *ledgerRepository) ResolveSchema(ctx context.Context, segment string, mode ledger.AccessMode) (ledger.SchemaVersion, error) {
	version, err := r.detector.Detect(ctx, segment)
	if err == nil {
		return version, nil
	}

	if errors.Is(err, ledger.ErrSegmentNotFound) {
		return ledger.SchemaUnknown, err
	}

	if mode == ledger.AccessRead {
		slog.Warn("schema detection failed, reading as OLD layout", "segment", segment, "error", err)
		return ledger.SchemaOld, nil
	}

	slog.Error("schema detection failed, blocking write", "segment", segment, "error", err)
	return ledger.SchemaUnknown, fmt.Errorf("%w: %w", ledger.ErrSchemaUnknown, err)
}

// Find locates a record
func (r *ledgerRepository) Find(ctx context.Context, segment string, version ledger.SchemaVersion, key ledger.Key) (ledger.Record, error) {
	return r.locator.Find(ctx, segment, version, key)
}

// Scan returns every record of a segment
func (r *ledgerRepository) Scan(ctx context.Context, segment string, version ledger.SchemaVersion) ([]ledger.Record, error) {
	return r.locator.Scan(ctx, segment, version)
}

// UpdateFields writes the changed columns of one row in a single batched call.
// Adjacent columns are merged into one range.
func (r *ledgerRepository) UpdateFields(ctx context.Context, segment string, version ledger.SchemaVersion, row int, changes ledger.Changes) error {
	if !version.Concrete() {
		return ledger.ErrSchemaUnknown
	}
	if row < FirstDataRow {
		return fmt.Errorf("%w: row %d is not a data row", ledger.ErrInvalidKey, row)
	}

	data, err := r.updateRanges(version, row, changes)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	if err := r.store.BatchUpdateValues(ctx, segment, data); err != nil {
		return storeError(segment, err)
	}
	return nil
}

// Append writes a full row after the last used row and returns its row number.
func (r *ledgerRepository) Append(ctx context.Context, segment string, version ledger.SchemaVersion, record ledger.Record) (int, error) {
	if !version.Concrete() {
		return 0, ledger.ErrSchemaUnknown
	}

	row, err := r.store.AppendRow(ctx, segment, DataRange(version), r.codec.Encode(version, record))
	if err != nil {
		return 0, storeError(segment, err)
	}
	return row, nil
}

// Forget drops the memoized layout of a segment
func (r *ledgerRepository) Forget(segment string) {
	r.detector.Forget(segment)
}

type changedCell struct {
	index int
	value string
}

func (r *ledgerRepository) updateRanges(version ledger.SchemaVersion, row int, changes ledger.Changes) ([]sheet.ValueRange, error) {
	cells := make([]changedCell, 0, len(changes))
	for field, value := range changes {
		col, err := ColumnFor(version, field)
		if err != nil {
			// OLD segments simply do not store the day of week.
			if field == ledger.FieldDayOfWeek {
				continue
			}
			return nil, err
		}
		cells = append(cells, changedCell{index: columnIndex(col), value: value})
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].index < cells[j].index })

	var data []sheet.ValueRange
	for start := 0; start < len(cells); {
		end := start
		for end+1 < len(cells) && cells[end+1].index == cells[end].index+1 {
			end++
		}

		values := make([]string, 0, end-start+1)
		for _, c := range cells[start : end+1] {
			values = append(values, c.value)
		}
		data = append(data, sheet.ValueRange{
			Range:  sheet.RowRange(columnLetter(cells[start].index), columnLetter(cells[end].index), row),
			Values: [][]string{values},
		})
		start = end + 1
	}
	return data, nil
}

func columnLetter(index int) string {
	return string(rune('A' + index))
}

// storeError translates backing store failures into ledger errors.
func storeError(segment string, err error) error {
	if errors.Is(err, sheet.ErrSegmentNotFound) {
		return fmt.Errorf("%w: %s", ledger.ErrSegmentNotFound, segment)
	}
	return fmt.Errorf("%w: %w", ledger.ErrStorageUnavailable, err)
}
