package ledger

import "errors"

// Ledger domain errors
var (
	// Lookup errors
	ErrRecordNotFound   = errors.New("attendance record not found")
	ErrNoPendingRecords = errors.New("no pending attendance records")
	ErrSegmentNotFound  = errors.New("attendance segment not found")
	ErrSegmentExists    = errors.New("attendance segment already exists")

	// Schema errors
	ErrSchemaDetectionFailed = errors.New("failed to detect segment schema")
	ErrSchemaUnknown         = errors.New("segment schema is unknown, writes are blocked until it is resolved")
	ErrSchemaNotRegistered   = errors.New("segment schema not registered")

	// Contract violations
	ErrInvalidField = errors.New("invalid ledger field")
	ErrInvalidKey   = errors.New("invalid record key")

	// Transitions
	ErrDenyNotSupported = errors.New("deny transition is not supported")

	// Backing store
	ErrStorageUnavailable = errors.New("attendance storage unavailable")
)
