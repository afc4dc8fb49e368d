package spreadsheet

import (
	"github.com/cmlabs-hris/attendance-ledger/internal/domain/ledger"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/localdate"
)

// Codec converts between physical rows and records.
type Codec struct {
	days localdate.DayNamer
}

func NewCodec(days localdate.DayNamer) Codec {
	return Codec{days: days}
}

// Decode reads a row in the given layout into the NEW record shape. Missing trailing
// cells decode as empty strings. OLD rows get their day of week derived from the
// date, or "Unknown" when the date does not parse.
func (c Codec) Decode(version ledger.SchemaVersion, rowIndex int, cells []string) ledger.Record {
	rec := ledger.Record{RowIndex: rowIndex}
	for i, field := range Fields(version) {
		if i < len(cells) {
			rec.Set(field, cells[i])
		}
	}
	if !HasColumn(version, ledger.FieldDayOfWeek) {
		rec.DayOfWeek = c.days.ForDate(rec.Date)
	}
	return rec
}

// Encode lays out a full row for version. Fields the layout does not store are dropped.
func (c Codec) Encode(version ledger.SchemaVersion, rec ledger.Record) []string {
	fields := Fields(version)
	row := make([]string, len(fields))
	for i, field := range fields {
		row[i] = rec.Value(field)
	}
	return row
}
