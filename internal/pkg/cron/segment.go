package cron

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-ledger/internal/domain/ledger"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/localdate"
)

// SegmentJobs contains segment-related cron jobs
type SegmentJobs struct {
	provisioner ledger.SegmentProvisioner
	now         func() time.Time
}

// NewSegmentJobs creates segment cron jobs
func NewSegmentJobs(provisioner ledger.SegmentProvisioner) *SegmentJobs {
	return &SegmentJobs{
		provisioner: provisioner,
		now:         time.Now,
	}
}

// RegisterJobs registers all segment-related cron jobs
func (j *SegmentJobs) RegisterJobs(scheduler *Scheduler) {
	// Make sure this month and next month exist before the first clock-in lands
	scheduler.AddJob(
		"provision_attendance_segments",
		6*time.Hour,
		time.Minute,
		j.ProvisionUpcomingSegments,
	)
}

// ProvisionUpcomingSegments creates the current and the next month segment when missing
func (j *SegmentJobs) ProvisionUpcomingSegments(ctx context.Context) error {
	current := ledger.SegmentFor(localdate.FromTime(j.now()))

	var errs []error
	for _, segment := range []ledger.Segment{current, current.Next()} {
		created, err := j.provisioner.Ensure(ctx, segment)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if created {
			slog.Info("attendance segment pre-provisioned", "segment", segment.Name())
		}
	}
	return errors.Join(errs...)
}
