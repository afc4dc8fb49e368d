package approval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-ledger/internal/domain/ledger"
	"github.com/cmlabs-hris/attendance-ledger/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/keylock"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/localdate"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/validator"
)

// StateMachine moves records from pending to approved. Approving writes the approval
// cell whatever it held before; the previous value is reported back.
type StateMachine struct {
	repo     ledger.Repository
	locks    *keylock.Locker
	names    ledger.NameMatch
	notifier notification.Service
	now      func() time.Time
}

// NewApprovalService creates the approval state machine. locks must be the Locker the
// ledger writer uses. notifier may be nil.
func NewApprovalService(repo ledger.Repository, locks *keylock.Locker, names ledger.NameMatch, notifier notification.Service) ledger.ApprovalService {
	return &StateMachine{
		repo:     repo,
		locks:    locks,
		names:    names,
		notifier: notifier,
		now:      time.Now,
	}
}

// Approve implements ledger.ApprovalService.
func (m *StateMachine) Approve(ctx context.Context, req ledger.ApproveRequest) (ledger.ApprovalResponse, error) {
	if err := req.Validate(); err != nil {
		return ledger.ApprovalResponse{}, err
	}

	segments, err := m.segmentsOf(req)
	if err != nil {
		return ledger.ApprovalResponse{}, err
	}

	key := req.Key()
	for i, segment := range segments {
		last := i == len(segments)-1

		version, err := m.repo.ResolveSchema(ctx, segment.Name(), ledger.AccessWrite)
		if err != nil {
			if !last && errors.Is(err, ledger.ErrSegmentNotFound) {
				continue
			}
			return ledger.ApprovalResponse{}, err
		}

		rec, err := m.repo.Find(ctx, segment.Name(), version, key)
		if err != nil {
			if !last && errors.Is(err, ledger.ErrRecordNotFound) {
				continue
			}
			return ledger.ApprovalResponse{}, err
		}

		return m.approve(ctx, segment, version, rec)
	}

	return ledger.ApprovalResponse{}, fmt.Errorf("%w: %s", ledger.ErrRecordNotFound, key)
}

// ApproveMostRecentPending implements ledger.ApprovalService. Rows are scanned from the
// bottom, so the most recently appended pending record is the one approved.
func (m *StateMachine) ApproveMostRecentPending(ctx context.Context, req ledger.ApproveLatestRequest) (ledger.ApprovalResponse, error) {
	if err := req.Validate(); err != nil {
		return ledger.ApprovalResponse{}, err
	}

	segment := req.Segment()
	version, err := m.repo.ResolveSchema(ctx, segment.Name(), ledger.AccessWrite)
	if err != nil {
		return ledger.ApprovalResponse{}, err
	}

	records, err := m.repo.Scan(ctx, segment.Name(), version)
	if err != nil {
		return ledger.ApprovalResponse{}, err
	}

	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Approval.IsPending() {
			return m.approve(ctx, segment, version, records[i])
		}
	}

	return ledger.ApprovalResponse{}, fmt.Errorf("%w in %s", ledger.ErrNoPendingRecords, segment.Name())
}

// Deny implements ledger.ApprovalService.
func (m *StateMachine) Deny(ctx context.Context, req ledger.ApproveRequest) (ledger.ApprovalResponse, error) {
	if err := req.Validate(); err != nil {
		return ledger.ApprovalResponse{}, err
	}
	return ledger.ApprovalResponse{}, ledger.ErrDenyNotSupported
}

func (m *StateMachine) approve(ctx context.Context, segment ledger.Segment, version ledger.SchemaVersion, rec ledger.Record) (ledger.ApprovalResponse, error) {
	name := segment.Name()

	unlock := m.locks.Lock(ledger.LockKey(name, m.names, rec.DriverName, rec.Date))
	defer unlock()

	changes := ledger.Changes{ledger.FieldApproval: string(ledger.ApprovalApproved)}
	if err := m.repo.UpdateFields(ctx, name, version, rec.RowIndex, changes); err != nil {
		return ledger.ApprovalResponse{}, fmt.Errorf("failed to approve record: %w", err)
	}

	previous := rec.Approval
	changes.Apply(&rec)

	slog.Info("attendance record approved", "segment", name, "row", rec.RowIndex, "driver", rec.DriverName, "previous_status", previous)

	if m.notifier != nil {
		err := m.notifier.Queue(ctx, notification.CreateNotificationRequest{
			Topic:    notification.DriverTopic(rec.DriverName),
			Type:     notification.TypeRecordApproved,
			Title:    "Attendance approved",
			Message:  fmt.Sprintf("Attendance of %s on %s was approved", rec.DriverName, rec.Date),
			Data:     map[string]interface{}{"segment": name, "row": rec.RowIndex, "approved_at": localdate.Timestamp(m.now())},
			DedupKey: fmt.Sprintf("%s|%s|%d", notification.TypeRecordApproved, name, rec.RowIndex),
		})
		if err != nil {
			slog.Warn("failed to queue notification", "type", notification.TypeRecordApproved, "error", err)
		}
	}

	return ledger.ApprovalResponse{
		Segment:        name,
		Row:            rec.RowIndex,
		PreviousStatus: string(previous),
		Status:         string(rec.Approval),
		Record:         ledger.NewRecordResponse(rec),
	}, nil
}

// segmentsOf lists the segments to search in order. Only submitted_at keys without an
// explicit year and month yield more than one.
func (m *StateMachine) segmentsOf(req ledger.ApproveRequest) ([]ledger.Segment, error) {
	switch key := req.Key(); key.Kind {
	case ledger.KeySubmittedAt:
		ts, err := localdate.ParseTimestamp(key.SubmittedAt)
		if err != nil {
			return nil, validator.ValidationErrors{
				{Field: "submitted_at", Message: "submitted_at must be an RFC3339 timestamp"},
			}
		}
		return ledger.SubmissionSegments(ts, req.Year, req.Month), nil
	case ledger.KeyRow:
		return []ledger.Segment{{Year: localdate.NormalizeYear(req.Year), Month: time.Month(req.Month)}}, nil
	default:
		day, ok := validator.IsValidLedgerDate(key.Date)
		if !ok {
			return nil, validator.ValidationErrors{
				{Field: "date", Message: "date must be in DD/MM/YYYY format"},
			}
		}
		return []ledger.Segment{ledger.SegmentFor(day)}, nil
	}
}
