package spreadsheet

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/attendance-ledger/internal/domain/ledger"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/sheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSchema_Modes(t *testing.T) {
	ctx := context.Background()

	t.Run("detected layout is used for both modes", func(t *testing.T) {
		store, repo, _ := newFixture(ledger.NameMatchExact, nil)
		store.Seed(march, Header(ledger.SchemaNew))

		for _, mode := range []ledger.AccessMode{ledger.AccessRead, ledger.AccessWrite} {
			v, err := repo.ResolveSchema(ctx, march, mode)
			require.NoError(t, err)
			assert.Equal(t, ledger.SchemaNew, v)
		}
	})

	t.Run("failed detection degrades reads and blocks writes", func(t *testing.T) {
		store, repo, _ := newFixture(ledger.NameMatchExact, nil)
		store.Seed(march, Header(ledger.SchemaNew))
		store.Fail(sheet.OpGet, errors.New("timeout"))

		v, err := repo.ResolveSchema(ctx, march, ledger.AccessRead)
		require.NoError(t, err)
		assert.Equal(t, ledger.SchemaOld, v)

		v, err = repo.ResolveSchema(ctx, march, ledger.AccessWrite)
		assert.ErrorIs(t, err, ledger.ErrSchemaUnknown)
		assert.ErrorIs(t, err, ledger.ErrSchemaDetectionFailed)
		assert.Equal(t, ledger.SchemaUnknown, v)
	})

	t.Run("missing segment is reported in both modes", func(t *testing.T) {
		_, repo, _ := newFixture(ledger.NameMatchExact, nil)

		for _, mode := range []ledger.AccessMode{ledger.AccessRead, ledger.AccessWrite} {
			_, err := repo.ResolveSchema(ctx, march, mode)
			assert.ErrorIs(t, err, ledger.ErrSegmentNotFound)
		}
	})
}

func TestUpdateFields_SingleBatchedCall(t *testing.T) {
	ctx := context.Background()
	store, repo, _ := newFixture(ledger.NameMatchExact, nil)
	store.Seed(march,
		Header(ledger.SchemaNew),
		newRow("Somchai", "05/03/2568", "08:15", "", ""),
	)

	err := repo.UpdateFields(ctx, march, ledger.SchemaNew, 2, ledger.Changes{
		ledger.FieldClockOut: "17:40",
		ledger.FieldOTStart:  "17:00",
		ledger.FieldOTEnd:    "17:40",
		ledger.FieldOTHours:  "0.67",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, store.Calls(sheet.OpBatch))
	assert.Equal(t, 0, store.Calls(sheet.OpUpdate))
	assert.Equal(t,
		[]string{"Somchai", "05/03/2568", "Wednesday", "08:15", "17:40", "17:00", "17:40", "", "", "0.67", ""},
		store.Rows(march)[1])
}

func TestUpdateRanges_MergesAdjacentColumns(t *testing.T) {
	repo := &ledgerRepository{}

	data, err := repo.updateRanges(ledger.SchemaNew, 7, ledger.Changes{
		ledger.FieldOTHours:  "0.67",
		ledger.FieldClockOut: "17:40",
		ledger.FieldOTStart:  "17:00",
		ledger.FieldOTEnd:    "17:40",
	})
	require.NoError(t, err)
	assert.Equal(t, []sheet.ValueRange{
		{Range: "E7:G7", Values: [][]string{{"17:40", "17:00", "17:40"}}},
		{Range: "J7", Values: [][]string{{"0.67"}}},
	}, data)
}

func TestUpdateFields_OldLayoutSkipsDayOfWeek(t *testing.T) {
	ctx := context.Background()
	store, repo, _ := newFixture(ledger.NameMatchExact, nil)
	store.Seed(march,
		Header(ledger.SchemaOld),
		oldRow("Somchai", "05/03/2568", "", "", ""),
	)

	err := repo.UpdateFields(ctx, march, ledger.SchemaOld, 2, ledger.Changes{
		ledger.FieldDayOfWeek: "Wednesday",
		ledger.FieldClockIn:   "08:15",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Somchai", "05/03/2568", "08:15", "", "", "", "", "", "", ""}, store.Rows(march)[1])
}

func TestUpdateFields_Rejects(t *testing.T) {
	ctx := context.Background()
	store, repo, _ := newFixture(ledger.NameMatchExact, nil)
	store.Seed(march, Header(ledger.SchemaNew), newRow("Somchai", "05/03/2568", "", "", ""))

	err := repo.UpdateFields(ctx, march, ledger.SchemaUnknown, 2, ledger.Changes{ledger.FieldClockIn: "08:00"})
	assert.ErrorIs(t, err, ledger.ErrSchemaUnknown)

	err = repo.UpdateFields(ctx, march, ledger.SchemaNew, 1, ledger.Changes{ledger.FieldClockIn: "08:00"})
	assert.ErrorIs(t, err, ledger.ErrInvalidKey)

	err = repo.UpdateFields(ctx, march, ledger.SchemaNew, 2, ledger.Changes{ledger.Field("salary"): "1"})
	assert.ErrorIs(t, err, ledger.ErrInvalidField)

	require.NoError(t, repo.UpdateFields(ctx, march, ledger.SchemaNew, 2, ledger.Changes{}))
	assert.Equal(t, 0, store.Calls(sheet.OpBatch))

	store.Fail(sheet.OpBatch, errors.New("quota exceeded"))
	err = repo.UpdateFields(ctx, march, ledger.SchemaNew, 2, ledger.Changes{ledger.FieldClockIn: "08:00"})
	assert.ErrorIs(t, err, ledger.ErrStorageUnavailable)
}

func TestAppend(t *testing.T) {
	ctx := context.Background()
	store, repo, _ := newFixture(ledger.NameMatchExact, nil)
	store.Seed(march, Header(ledger.SchemaNew))

	row, err := repo.Append(ctx, march, ledger.SchemaNew, ledger.Record{
		DriverName: "Somchai",
		Date:       "05/03/2568",
		DayOfWeek:  "Wednesday",
		ClockIn:    "08:15",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, row)
	assert.Equal(t, []string{"Somchai", "05/03/2568", "Wednesday", "08:15", "", "", "", "", "", "", ""}, store.Rows(march)[1])

	_, err = repo.Append(ctx, "April 2025 Attendance", ledger.SchemaNew, ledger.Record{DriverName: "x"})
	assert.ErrorIs(t, err, ledger.ErrSegmentNotFound)

	store.Fail(sheet.OpAppend, errors.New("quota exceeded"))
	_, err = repo.Append(ctx, march, ledger.SchemaNew, ledger.Record{DriverName: "x"})
	assert.ErrorIs(t, err, ledger.ErrStorageUnavailable)

	_, err = repo.Append(ctx, march, ledger.SchemaUnknown, ledger.Record{DriverName: "x"})
	assert.ErrorIs(t, err, ledger.ErrSchemaUnknown)
}
