package ledger

import (
	"context"
)

// LedgerService defines the attendance operations exposed to callers
type LedgerService interface {
	// ClockIn records a clock-in time for a driver/date, creating the record if needed
	ClockIn(ctx context.Context, req ClockEventRequest) (UpsertResponse, error)

	// ClockOut records a clock-out time and recomputes overtime
	ClockOut(ctx context.Context, req ClockEventRequest) (UpsertResponse, error)

	// Upsert writes an arbitrary partial record for a driver/date
	Upsert(ctx context.Context, req UpsertRequest) (UpsertResponse, error)

	// GetRecord retrieves the record of a driver on a date
	GetRecord(ctx context.Context, driverName string, date string) (RecordResponse, error)

	// GetBySubmittedAt retrieves a record by its exact submission timestamp
	GetBySubmittedAt(ctx context.Context, req SubmittedAtRequest) (RecordResponse, error)

	// LatestForDriver returns the most recently appended record of a driver in a month
	LatestForDriver(ctx context.Context, req LatestRecordRequest) (RecordResponse, error)

	// ListRecords lists the records of one month segment
	ListRecords(ctx context.Context, req ListRecordsRequest) (ListRecordsResponse, error)

	// PreviewOvertime computes overtime without writing anything
	PreviewOvertime(ctx context.Context, req OvertimePreviewRequest) (OvertimeResponse, error)
}

// ApprovalService drives the Pending -> Approved / Denied lifecycle
type ApprovalService interface {
	// Approve marks the record identified by the request as approved
	Approve(ctx context.Context, req ApproveRequest) (ApprovalResponse, error)

	// ApproveMostRecentPending approves the last pending row of a segment
	ApproveMostRecentPending(ctx context.Context, req ApproveLatestRequest) (ApprovalResponse, error)

	// Deny is reserved and always returns ErrDenyNotSupported
	Deny(ctx context.Context, req ApproveRequest) (ApprovalResponse, error)
}

// SegmentProvisioner creates month segments
type SegmentProvisioner interface {
	// Ensure creates the segment when it does not exist yet
	Ensure(ctx context.Context, segment Segment) (created bool, err error)

	// Provision creates (or, with Replace, recreates) a segment
	Provision(ctx context.Context, req ProvisionRequest) (ProvisionResponse, error)
}
