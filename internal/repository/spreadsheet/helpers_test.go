package spreadsheet

import (
	"github.com/cmlabs-hris/attendance-ledger/internal/domain/ledger"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/localdate"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/sheet"
)

const march = "March 2025 Attendance"

// newFixture wires a memory store with the full spreadsheet stack.
func newFixture(names ledger.NameMatch, registry ledger.SchemaRegistry) (*sheet.Memory, ledger.Repository, *RecordLocator) {
	store := sheet.NewMemory()
	codec := NewCodec(localdate.NewDayNamer("en"))
	detector := NewSchemaDetector(store, registry)
	locator := NewRecordLocator(store, codec, names)
	return store, NewLedgerRepository(store, detector, locator, codec), locator
}

func newRow(driver, date, clockIn, clockOut, approval string) []string {
	return []string{driver, date, "Wednesday", clockIn, clockOut, "", "", "", "", "", approval}
}

func oldRow(driver, date, clockIn, clockOut, approval string) []string {
	return []string{driver, date, clockIn, clockOut, "", "", "", "", "", approval}
}
