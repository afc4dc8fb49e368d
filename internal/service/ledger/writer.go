package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-ledger/internal/domain/ledger"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/keylock"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/localdate"
	"github.com/cmlabs-hris/attendance-ledger/internal/service/overtime"
)

// WriterConfig controls the upsert protocol.
type WriterConfig struct {
	Epoch     localdate.Epoch
	NameMatch ledger.NameMatch
	// VerifyBeforeAppend re-reads the segment right before appending so a row added
	// by another process in the meantime is updated instead of duplicated.
	VerifyBeforeAppend bool
	// AutoProvision creates a missing month segment before the first write into it.
	AutoProvision bool
}

// UpsertInput is a find-or-create write for one (driver, date) key.
type UpsertInput struct {
	DriverName       string
	Date             string
	Changes          ledger.Changes
	SuppressOvertime bool
}

// UpsertResult describes what the write did.
type UpsertResult struct {
	Created  bool
	Segment  ledger.Segment
	Schema   ledger.SchemaVersion
	Record   ledger.Record
	Overtime *overtime.Result
}

// Writer implements the find-or-create protocol that keeps at most one row per
// (driver, date) in a segment. Writes for one key are serialized in-process; across
// processes the re-check before append narrows, but does not close, the race.
type Writer struct {
	repo        ledger.Repository
	provisioner ledger.SegmentProvisioner
	calc        overtime.Calculator
	locks       *keylock.Locker
	days        localdate.DayNamer
	cfg         WriterConfig
	now         func() time.Time
}

// NewWriter creates a Writer. provisioner may be nil when segments are never created
// on demand.
func NewWriter(repo ledger.Repository, provisioner ledger.SegmentProvisioner, calc overtime.Calculator, locks *keylock.Locker, days localdate.DayNamer, cfg WriterConfig) *Writer {
	return &Writer{
		repo:        repo,
		provisioner: provisioner,
		calc:        calc,
		locks:       locks,
		days:        days,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Upsert updates the record of in.DriverName on in.Date, or appends it when absent.
// When the changes carry a clock-out, overtime is recomputed and written in the same
// call unless suppressed. Failed writes are not retried.
func (w *Writer) Upsert(ctx context.Context, in UpsertInput) (UpsertResult, error) {
	now := w.now()

	day, dateValue := w.resolveDate(in.Date, now)
	segment := ledger.SegmentFor(day)
	name := segment.Name()

	unlock := w.locks.Lock(ledger.LockKey(name, w.cfg.NameMatch, in.DriverName, dateValue))
	defer unlock()

	version, err := w.resolveSchema(ctx, segment)
	if err != nil {
		return UpsertResult{}, err
	}

	changes := writableChanges(in.Changes)
	key := ledger.ByDriverDate(in.DriverName, dateValue)

	existing, err := w.repo.Find(ctx, name, version, key)
	switch {
	case err == nil:
		return w.update(ctx, segment, version, existing, changes, day, in.SuppressOvertime)
	case !errors.Is(err, ledger.ErrRecordNotFound):
		return UpsertResult{}, fmt.Errorf("failed to locate record: %w", err)
	}

	rec := ledger.Record{
		DriverName: in.DriverName,
		Date:       dateValue,
		DayOfWeek:  w.days.Name(day.Weekday()),
	}
	changes.Apply(&rec)

	var ot *overtime.Result
	if changes.Has(ledger.FieldClockOut) && !in.SuppressOvertime {
		result := w.calc.Compute(rec.ClockIn, rec.ClockOut, day)
		applyOvertime(&rec, result)
		ot = &result
	}

	if w.cfg.VerifyBeforeAppend {
		existing, err := w.repo.Find(ctx, name, version, key)
		switch {
		case err == nil:
			slog.Warn("record appeared before append, updating instead",
				"segment", name, "driver", in.DriverName, "date", dateValue, "row", existing.RowIndex)
			return w.update(ctx, segment, version, existing, changes, day, in.SuppressOvertime)
		case !errors.Is(err, ledger.ErrRecordNotFound):
			return UpsertResult{}, fmt.Errorf("failed to re-check record: %w", err)
		}
	}

	row, err := w.repo.Append(ctx, name, version, rec)
	if err != nil {
		return UpsertResult{}, fmt.Errorf("failed to append record: %w", err)
	}
	rec.RowIndex = row

	slog.Info("attendance record created", "segment", name, "row", row, "driver", in.DriverName, "date", dateValue)

	return UpsertResult{
		Created:  true,
		Segment:  segment,
		Schema:   version,
		Record:   rec,
		Overtime: ot,
	}, nil
}

func (w *Writer) update(ctx context.Context, segment ledger.Segment, version ledger.SchemaVersion, existing ledger.Record, changes ledger.Changes, day localdate.Date, suppressOvertime bool) (UpsertResult, error) {
	write := make(ledger.Changes, len(changes)+3)
	for f, v := range changes {
		write[f] = v
	}

	var ot *overtime.Result
	if changes.Has(ledger.FieldClockOut) && !suppressOvertime {
		clockIn := existing.ClockIn
		if changes.Has(ledger.FieldClockIn) {
			clockIn = changes[ledger.FieldClockIn]
		}
		result := w.calc.Compute(clockIn, changes[ledger.FieldClockOut], day)
		write[ledger.FieldOTStart] = result.Start
		write[ledger.FieldOTEnd] = result.End
		write[ledger.FieldOTHours] = result.Hours()
		ot = &result
	}

	if err := w.repo.UpdateFields(ctx, segment.Name(), version, existing.RowIndex, write); err != nil {
		return UpsertResult{}, fmt.Errorf("failed to update record: %w", err)
	}

	rec := existing
	write.Apply(&rec)

	slog.Info("attendance record updated", "segment", segment.Name(), "row", rec.RowIndex, "driver", rec.DriverName, "fields", len(write))

	return UpsertResult{
		Created:  false,
		Segment:  segment,
		Schema:   version,
		Record:   rec,
		Overtime: ot,
	}, nil
}

// resolveSchema resolves the layout for writing, creating the segment first when it
// is missing and auto-provisioning is enabled.
func (w *Writer) resolveSchema(ctx context.Context, segment ledger.Segment) (ledger.SchemaVersion, error) {
	version, err := w.repo.ResolveSchema(ctx, segment.Name(), ledger.AccessWrite)
	if err == nil {
		return version, nil
	}
	if !errors.Is(err, ledger.ErrSegmentNotFound) || !w.cfg.AutoProvision || w.provisioner == nil {
		return ledger.SchemaUnknown, err
	}

	if _, err := w.provisioner.Ensure(ctx, segment); err != nil {
		return ledger.SchemaUnknown, fmt.Errorf("failed to provision segment %s: %w", segment.Name(), err)
	}
	return w.repo.ResolveSchema(ctx, segment.Name(), ledger.AccessWrite)
}

// resolveDate parses a caller supplied date. A date that does not parse is stored as
// given, and today's date picks the segment and day of week.
func (w *Writer) resolveDate(raw string, now time.Time) (localdate.Date, string) {
	day, err := localdate.Parse(raw)
	if err != nil {
		slog.Warn("invalid attendance date, falling back to today", "date", raw, "error", err)
		return localdate.FromTime(now), raw
	}
	return day, day.Format(w.cfg.Epoch)
}

// writableChanges drops the key columns and the derived day of week, which the writer
// manages itself.
func writableChanges(in ledger.Changes) ledger.Changes {
	out := make(ledger.Changes, len(in))
	for f, v := range in {
		switch f {
		case ledger.FieldDriverName, ledger.FieldDate, ledger.FieldDayOfWeek:
			continue
		}
		out[f] = v
	}
	return out
}

func applyOvertime(rec *ledger.Record, result overtime.Result) {
	rec.OTStart = result.Start
	rec.OTEnd = result.End
	rec.OTHours = result.Hours()
}
