package spreadsheet

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-ledger/internal/domain/ledger"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/localdate"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/sheet"
)

// RecordLocator finds rows inside a segment. Rows are scanned top to bottom and the
// first match wins, so a duplicate left behind by a lost race is never observed.
type RecordLocator struct {
	store sheet.Store
	codec Codec
	names ledger.NameMatch
}

func NewRecordLocator(store sheet.Store, codec Codec, names ledger.NameMatch) *RecordLocator {
	return &RecordLocator{store: store, codec: codec, names: names}
}

// Find returns the first record matching key, or ErrRecordNotFound.
func (l *RecordLocator) Find(ctx context.Context, segment string, version ledger.SchemaVersion, key ledger.Key) (ledger.Record, error) {
	switch key.Kind {
	case ledger.KeyRow:
		return l.findRow(ctx, segment, version, key.Row)
	case ledger.KeyDriverDate, ledger.KeySubmittedAt:
	default:
		return ledger.Record{}, fmt.Errorf("%w: %s", ledger.ErrInvalidKey, key)
	}

	records, err := l.Scan(ctx, segment, version)
	if err != nil {
		return ledger.Record{}, err
	}
	for _, rec := range records {
		if l.Matches(rec, key) {
			return rec, nil
		}
	}
	return ledger.Record{}, fmt.Errorf("%w: %s in %s", ledger.ErrRecordNotFound, key, segment)
}

// Scan decodes every non-blank data row of a segment, top to bottom.
func (l *RecordLocator) Scan(ctx context.Context, segment string, version ledger.SchemaVersion) ([]ledger.Record, error) {
	if !version.Concrete() {
		return nil, ledger.ErrSchemaUnknown
	}

	rows, err := l.store.GetValues(ctx, segment, DataRange(version))
	if err != nil {
		return nil, storeError(segment, err)
	}

	records := make([]ledger.Record, 0, len(rows))
	for i, cells := range rows {
		rec := l.codec.Decode(version, FirstDataRow+i, cells)
		if rec.IsBlank() {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Matches reports whether rec satisfies a driver/date or submittedAt key. Driver names
// follow the configured policy; dates match when identical or when they denote the
// same day (e.g. 05/03/2568 and 05/03/2025).
func (l *RecordLocator) Matches(rec ledger.Record, key ledger.Key) bool {
	switch key.Kind {
	case ledger.KeyDriverDate:
		return l.names.Equal(rec.DriverName, key.DriverName) && localdate.Same(rec.Date, key.Date)
	case ledger.KeySubmittedAt:
		return key.SubmittedAt != "" && rec.SubmittedAt == key.SubmittedAt
	case ledger.KeyRow:
		return rec.RowIndex == key.Row
	default:
		return false
	}
}

func (l *RecordLocator) findRow(ctx context.Context, segment string, version ledger.SchemaVersion, row int) (ledger.Record, error) {
	if !version.Concrete() {
		return ledger.Record{}, ledger.ErrSchemaUnknown
	}
	if row < FirstDataRow {
		return ledger.Record{}, fmt.Errorf("%w: row %d is not a data row", ledger.ErrInvalidKey, row)
	}

	rows, err := l.store.GetValues(ctx, segment, sheet.RowRange("A", LastColumn(version), row))
	if err != nil {
		return ledger.Record{}, storeError(segment, err)
	}
	if len(rows) == 0 {
		return ledger.Record{}, fmt.Errorf("%w: row %d in %s", ledger.ErrRecordNotFound, row, segment)
	}

	rec := l.codec.Decode(version, row, rows[0])
	if rec.IsBlank() {
		return ledger.Record{}, fmt.Errorf("%w: row %d in %s", ledger.ErrRecordNotFound, row, segment)
	}
	return rec, nil
}
