package ledger

import (
	"context"
)

// Repository is the schema-aware view of the backing store. Segments are addressed by
// name; every method except ResolveSchema expects a concrete schema version.
type Repository interface {
	// ResolveSchema returns the layout of a segment. In AccessRead mode a failed
	// detection degrades to SchemaOld; in AccessWrite mode it returns ErrSchemaUnknown.
	ResolveSchema(ctx context.Context, segment string, mode AccessMode) (SchemaVersion, error)

	// Find locates a record; the first matching row wins.
	Find(ctx context.Context, segment string, version SchemaVersion, key Key) (Record, error)

	// Scan decodes every non-blank data row, top to bottom.
	Scan(ctx context.Context, segment string, version SchemaVersion) ([]Record, error)

	// UpdateFields overwrites only the columns present in changes, in one batched write.
	UpdateFields(ctx context.Context, segment string, version SchemaVersion, row int, changes Changes) error

	// Append writes a complete record after the last row and returns its row number.
	Append(ctx context.Context, segment string, version SchemaVersion, record Record) (int, error)

	// Forget drops anything memoized about a segment.
	Forget(segment string)
}

// SchemaRegistry stores the layout each segment was provisioned with.
type SchemaRegistry interface {
	// Get returns ErrSchemaNotRegistered for segments it has never seen.
	Get(ctx context.Context, segment string) (SchemaVersion, error)
	Put(ctx context.Context, segment string, version SchemaVersion) error
	Delete(ctx context.Context, segment string) error
}
