package spreadsheet

import (
	"fmt"

	"github.com/cmlabs-hris/attendance-ledger/internal/domain/ledger"
)

// layouts maps every logical field to its physical column letter, per schema version.
// OLD has no dayOfWeek column; NEW inserts it at C and shifts the rest one to the right.
var layouts = map[ledger.SchemaVersion]map[ledger.Field]string{
	ledger.SchemaOld: {
		ledger.FieldDriverName:  "A",
		ledger.FieldDate:        "B",
		ledger.FieldClockIn:     "C",
		ledger.FieldClockOut:    "D",
		ledger.FieldOTStart:     "E",
		ledger.FieldOTEnd:       "F",
		ledger.FieldComments:    "G",
		ledger.FieldSubmittedAt: "H",
		ledger.FieldOTHours:     "I",
		ledger.FieldApproval:    "J",
	},
	ledger.SchemaNew: {
		ledger.FieldDriverName:  "A",
		ledger.FieldDate:        "B",
		ledger.FieldDayOfWeek:   "C",
		ledger.FieldClockIn:     "D",
		ledger.FieldClockOut:    "E",
		ledger.FieldOTStart:     "F",
		ledger.FieldOTEnd:       "G",
		ledger.FieldComments:    "H",
		ledger.FieldSubmittedAt: "I",
		ledger.FieldOTHours:     "J",
		ledger.FieldApproval:    "K",
	},
}

// orders lists each layout's fields left to right.
var orders = map[ledger.SchemaVersion][]ledger.Field{}

func init() {
	for version, columns := range layouts {
		order := make([]ledger.Field, len(columns))
		for field, col := range columns {
			order[columnIndex(col)] = field
		}
		orders[version] = order
	}
}

// ColumnFor returns the column letter of field under version. A missing mapping is
// ErrInvalidField: either the field does not exist or the layout has no such column
// (dayOfWeek under OLD).
func ColumnFor(version ledger.SchemaVersion, field ledger.Field) (string, error) {
	columns, ok := layouts[version]
	if !ok {
		return "", fmt.Errorf("%w: no layout for schema %s", ledger.ErrInvalidField, version)
	}
	col, ok := columns[field]
	if !ok {
		return "", fmt.Errorf("%w: %q has no column under schema %s", ledger.ErrInvalidField, field, version)
	}
	return col, nil
}

// MustColumn is ColumnFor for callers that only pass fields they know exist.
func MustColumn(version ledger.SchemaVersion, field ledger.Field) string {
	col, err := ColumnFor(version, field)
	if err != nil {
		panic(err)
	}
	return col
}

// HasColumn reports whether field is physically stored under version.
func HasColumn(version ledger.SchemaVersion, field ledger.Field) bool {
	_, err := ColumnFor(version, field)
	return err == nil
}

// FieldAt returns the field stored at the 0-based column index of a row.
func FieldAt(version ledger.SchemaVersion, index int) (ledger.Field, error) {
	order, ok := orders[version]
	if !ok || index < 0 || index >= len(order) {
		return "", fmt.Errorf("%w: column %d under schema %s", ledger.ErrInvalidField, index, version)
	}
	return order[index], nil
}

// Fields lists the stored fields of version in column order.
func Fields(version ledger.SchemaVersion) []ledger.Field {
	return append([]ledger.Field(nil), orders[version]...)
}

// Width is the number of physical columns of version.
func Width(version ledger.SchemaVersion) int {
	return len(layouts[version])
}

// LastColumn is the letter of the right-most column of version.
func LastColumn(version ledger.SchemaVersion) string {
	order := orders[version]
	if len(order) == 0 {
		return ""
	}
	return layouts[version][order[len(order)-1]]
}

// DataRange covers every data row of version, e.g. "A2:K".
func DataRange(version ledger.SchemaVersion) string {
	return fmt.Sprintf("A%d:%s", FirstDataRow, LastColumn(version))
}

// HeaderRange covers the header row of version, e.g. "A1:K1".
func HeaderRange(version ledger.SchemaVersion) string {
	return fmt.Sprintf("A%d:%s%d", HeaderRow, LastColumn(version), HeaderRow)
}

// Header is the header row written when a segment of version is provisioned.
func Header(version ledger.SchemaVersion) []string {
	order := orders[version]
	out := make([]string, len(order))
	for i, f := range order {
		out[i] = headerTitles[f]
	}
	return out
}

const (
	HeaderRow    = 1
	FirstDataRow = 2
)

var headerTitles = map[ledger.Field]string{
	ledger.FieldDriverName:  "Driver Name",
	ledger.FieldDate:        "Date",
	ledger.FieldDayOfWeek:   "Day of Week",
	ledger.FieldClockIn:     "Clock In",
	ledger.FieldClockOut:    "Clock Out",
	ledger.FieldOTStart:     "OT Start",
	ledger.FieldOTEnd:       "OT End",
	ledger.FieldComments:    "Comments",
	ledger.FieldSubmittedAt: "Submitted At",
	ledger.FieldOTHours:     "OT Hours",
	ledger.FieldApproval:    "Approval",
}

func columnIndex(col string) int {
	return int(col[0] - 'A')
}
