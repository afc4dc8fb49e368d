package segment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cmlabs-hris/attendance-ledger/internal/domain/ledger"
	"github.com/cmlabs-hris/attendance-ledger/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/sheet"
	"github.com/cmlabs-hris/attendance-ledger/internal/repository/spreadsheet"
)

// Provisioner creates month segments and records the layout each one was created
// with, so later reads never have to guess it from the header.
type Provisioner struct {
	mu       sync.Mutex
	admin    sheet.SegmentAdmin
	registry ledger.SchemaRegistry
	repo     ledger.Repository
	notifier notification.Service
	schema   ledger.SchemaVersion
}

// NewProvisioner creates a Provisioner whose Ensure creates segments with the NEW
// layout. notifier may be nil.
func NewProvisioner(admin sheet.SegmentAdmin, registry ledger.SchemaRegistry, repo ledger.Repository, notifier notification.Service) *Provisioner {
	return &Provisioner{
		admin:    admin,
		registry: registry,
		repo:     repo,
		notifier: notifier,
		schema:   ledger.SchemaNew,
	}
}

// Ensure implements ledger.SegmentProvisioner.
func (p *Provisioner) Ensure(ctx context.Context, segment ledger.Segment) (bool, error) {
	if !segment.Valid() {
		return false, fmt.Errorf("invalid segment %d-%02d", segment.Year, segment.Month)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	exists, err := p.admin.SegmentExists(ctx, segment.Name())
	if err != nil {
		return false, adminError(err)
	}
	if exists {
		return false, nil
	}

	if err := p.create(ctx, segment, p.schema); err != nil {
		if errors.Is(err, ledger.ErrSegmentExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Provision implements ledger.SegmentProvisioner. With Replace an existing segment is
// deleted first, discarding every record in it.
func (p *Provisioner) Provision(ctx context.Context, req ledger.ProvisionRequest) (ledger.ProvisionResponse, error) {
	if err := req.Validate(); err != nil {
		return ledger.ProvisionResponse{}, err
	}

	segment := req.Segment()
	version := req.SchemaVersion()
	name := segment.Name()

	p.mu.Lock()
	defer p.mu.Unlock()

	exists, err := p.admin.SegmentExists(ctx, name)
	if err != nil {
		return ledger.ProvisionResponse{}, adminError(err)
	}

	replaced := false
	if exists {
		if !req.Replace {
			return ledger.ProvisionResponse{}, fmt.Errorf("%w: %s", ledger.ErrSegmentExists, name)
		}
		if err := p.admin.DeleteSegment(ctx, name); err != nil {
			return ledger.ProvisionResponse{}, adminError(err)
		}
		if err := p.registry.Delete(ctx, name); err != nil {
			return ledger.ProvisionResponse{}, fmt.Errorf("failed to delete schema of %s: %w", name, err)
		}
		p.repo.Forget(name)
		replaced = true
		slog.Warn("attendance segment deleted for replacement", "segment", name)
	}

	if err := p.create(ctx, segment, version); err != nil {
		return ledger.ProvisionResponse{}, err
	}

	return ledger.ProvisionResponse{
		Segment:  name,
		Schema:   string(version),
		Created:  true,
		Replaced: replaced,
	}, nil
}

// create adds the segment, copying the formatting of the previous month when that
// segment exists, and registers its layout. Callers hold p.mu.
func (p *Provisioner) create(ctx context.Context, segment ledger.Segment, version ledger.SchemaVersion) error {
	name := segment.Name()

	template := segment.Previous().Name()
	ok, err := p.admin.SegmentExists(ctx, template)
	if err != nil {
		return adminError(err)
	}
	if !ok {
		template = ""
	}

	if err := p.admin.CreateSegment(ctx, name, spreadsheet.Header(version), template); err != nil {
		return adminError(err)
	}
	if err := p.registry.Put(ctx, name, version); err != nil {
		return fmt.Errorf("failed to register schema of %s: %w", name, err)
	}
	p.repo.Forget(name)

	slog.Info("attendance segment provisioned", "segment", name, "schema", version, "template", template)

	if p.notifier != nil {
		err := p.notifier.Queue(ctx, notification.CreateNotificationRequest{
			Type:    notification.TypeSegmentProvisioned,
			Title:   "Attendance segment created",
			Message: fmt.Sprintf("%s was created with the %s layout", name, version),
			Data:    map[string]interface{}{"segment": name, "schema": string(version)},
		})
		if err != nil {
			slog.Warn("failed to queue notification", "type", notification.TypeSegmentProvisioned, "error", err)
		}
	}
	return nil
}

func adminError(err error) error {
	switch {
	case errors.Is(err, sheet.ErrSegmentExists):
		return fmt.Errorf("%w: %w", ledger.ErrSegmentExists, err)
	case errors.Is(err, sheet.ErrSegmentNotFound):
		return fmt.Errorf("%w: %w", ledger.ErrSegmentNotFound, err)
	default:
		return fmt.Errorf("%w: %w", ledger.ErrStorageUnavailable, err)
	}
}
