package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-ledger/internal/domain/ledger"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// SegmentSchemaDDL creates the table the registry reads from.
const SegmentSchemaDDL = `
	CREATE TABLE IF NOT EXISTS segment_schemas (
		segment     TEXT PRIMARY KEY,
		schema      TEXT NOT NULL CHECK (schema IN ('OLD', 'NEW')),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

type segmentSchemaRepository struct {
	db *database.DB
}

// NewSegmentSchemaRepository creates a new segment schema registry
func NewSegmentSchemaRepository(db *database.DB) ledger.SchemaRegistry {
	return &segmentSchemaRepository{db: db}
}

// Migrate creates the registry and notification archive tables when they do not exist
func Migrate(ctx context.Context, db *database.DB) error {
	return WithTransaction(ctx, db, func(ctx context.Context) error {
		q := GetQuerier(ctx, db)
		if _, err := q.Exec(ctx, SegmentSchemaDDL); err != nil {
			return fmt.Errorf("failed to create segment_schemas table: %w", err)
		}
		if _, err := q.Exec(ctx, NotificationDDL); err != nil {
			return fmt.Errorf("failed to create ledger_notifications table: %w", err)
		}
		return nil
	})
}

// Get returns the layout recorded for a segment
func (r *segmentSchemaRepository) Get(ctx context.Context, segment string) (ledger.SchemaVersion, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT schema FROM segment_schemas WHERE segment = $1`

	var schema string
	err := q.QueryRow(ctx, query, segment).Scan(&schema)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.SchemaUnknown, fmt.Errorf("%w: %s", ledger.ErrSchemaNotRegistered, segment)
		}
		return ledger.SchemaUnknown, fmt.Errorf("failed to get segment schema: %w", err)
	}

	return ledger.ParseSchemaVersion(schema), nil
}

// Put records (or replaces) the layout of a segment
func (r *segmentSchemaRepository) Put(ctx context.Context, segment string, version ledger.SchemaVersion) error {
	if !version.Concrete() {
		return fmt.Errorf("%w: cannot register schema %s", ledger.ErrSchemaUnknown, version)
	}

	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO segment_schemas (segment, schema)
		VALUES ($1, $2)
		ON CONFLICT (segment) DO UPDATE SET schema = EXCLUDED.schema, updated_at = NOW()
	`

	if _, err := q.Exec(ctx, query, segment, string(version)); err != nil {
		return fmt.Errorf("failed to put segment schema: %w", err)
	}

	return nil
}

// Delete removes the layout of a segment
func (r *segmentSchemaRepository) Delete(ctx context.Context, segment string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM segment_schemas WHERE segment = $1`, segment); err != nil {
		return fmt.Errorf("failed to delete segment schema: %w", err)
	}

	return nil
}
