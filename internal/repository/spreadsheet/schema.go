package spreadsheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/cmlabs-hris/attendance-ledger/internal/domain/ledger"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/sheet"
	"golang.org/x/sync/singleflight"
)

// dayOfWeekColumn is the 0-based header position that tells the layouts apart.
const dayOfWeekColumn = 2

// SchemaDetector resolves the layout of a segment. A registry entry recorded when the
// segment was provisioned wins; segments that predate the registry are classified by
// sniffing their header. Successful results are memoized until Forget is called,
// failures never are.
type SchemaDetector struct {
	store    sheet.Store
	registry ledger.SchemaRegistry
	memo     sync.Map // segment name -> ledger.SchemaVersion
	group    singleflight.Group
}

// NewSchemaDetector creates a detector. registry may be nil, in which case every
// segment is classified from its header.
func NewSchemaDetector(store sheet.Store, registry ledger.SchemaRegistry) *SchemaDetector {
	return &SchemaDetector{store: store, registry: registry}
}

// Detect returns SchemaOld or SchemaNew, or SchemaUnknown together with an error
// wrapping ErrSchemaDetectionFailed.
func (d *SchemaDetector) Detect(ctx context.Context, segment string) (ledger.SchemaVersion, error) {
	if v, ok := d.memo.Load(segment); ok {
		return v.(ledger.SchemaVersion), nil
	}

	v, err, _ := d.group.Do(segment, func() (interface{}, error) {
		if v, ok := d.memo.Load(segment); ok {
			return v.(ledger.SchemaVersion), nil
		}

		version, source, err := d.resolve(ctx, segment)
		if err != nil {
			return ledger.SchemaUnknown, err
		}

		d.memo.Store(segment, version)
		slog.Info("segment schema resolved", "segment", segment, "schema", version, "source", source)
		return version, nil
	})
	if err != nil {
		return ledger.SchemaUnknown, err
	}
	return v.(ledger.SchemaVersion), nil
}

// Forget drops the memoized layout of segment, e.g. after it was re-provisioned.
func (d *SchemaDetector) Forget(segment string) {
	d.memo.Delete(segment)
}

func (d *SchemaDetector) resolve(ctx context.Context, segment string) (ledger.SchemaVersion, string, error) {
	if d.registry != nil {
		version, err := d.registry.Get(ctx, segment)
		switch {
		case err == nil && version.Concrete():
			return version, "registry", nil
		case err == nil, errors.Is(err, ledger.ErrSchemaNotRegistered):
			// fall through to the header
		default:
			slog.Warn("schema registry lookup failed, sniffing header", "segment", segment, "error", err)
		}
	}

	header, err := d.store.GetValues(ctx, segment, HeaderRange(ledger.SchemaNew))
	if err != nil {
		if errors.Is(err, sheet.ErrSegmentNotFound) {
			return ledger.SchemaUnknown, "", fmt.Errorf("%w: %w: %s", ledger.ErrSchemaDetectionFailed, ledger.ErrSegmentNotFound, segment)
		}
		return ledger.SchemaUnknown, "", fmt.Errorf("%w: %w", ledger.ErrSchemaDetectionFailed, err)
	}

	var cells []string
	if len(header) > 0 {
		cells = header[0]
	}
	return ClassifyHeader(cells), "header", nil
}

// ClassifyHeader returns SchemaNew when the third header cell mentions both "day" and
// "week", SchemaOld otherwise.
func ClassifyHeader(header []string) ledger.SchemaVersion {
	if len(header) <= dayOfWeekColumn {
		return ledger.SchemaOld
	}
	title := strings.ToLower(header[dayOfWeekColumn])
	if strings.Contains(title, "day") && strings.Contains(title, "week") {
		return ledger.SchemaNew
	}
	return ledger.SchemaOld
}
