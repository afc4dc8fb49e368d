package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-ledger/internal/domain/ledger"
	"github.com/cmlabs-hris/attendance-ledger/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/keylock"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/localdate"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/sheet"
	"github.com/cmlabs-hris/attendance-ledger/internal/repository/memory"
	"github.com/cmlabs-hris/attendance-ledger/internal/repository/spreadsheet"
	"github.com/cmlabs-hris/attendance-ledger/internal/service/overtime"
	"github.com/cmlabs-hris/attendance-ledger/internal/service/segment"
)

const march = "March 2025 Attendance"

// fixedNow is Wednesday 5 March 2025, 08:15 in UTC+7.
var fixedNow = time.Date(2025, time.March, 5, 8, 15, 0, 0, localdate.Bangkok)

type recordingNotifier struct {
	mu   sync.Mutex
	reqs []notification.CreateNotificationRequest
}

func (n *recordingNotifier) Queue(ctx context.Context, req notification.CreateNotificationRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reqs = append(n.reqs, req)
	return nil
}

func (n *recordingNotifier) Subscribe(ctx context.Context, topic string) (<-chan notification.SSEEvent, func()) {
	ch := make(chan notification.SSEEvent)
	return ch, func() {}
}

func (n *recordingNotifier) Stop() {}

func (n *recordingNotifier) types() []notification.NotificationType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notification.NotificationType, len(n.reqs))
	for i, r := range n.reqs {
		out[i] = r.Type
	}
	return out
}

type fixture struct {
	store    *sheet.Memory
	registry ledger.SchemaRegistry
	repo     ledger.Repository
	writer   *Writer
	service  *LedgerServiceImpl
	notifier *recordingNotifier
}

func defaultConfig() WriterConfig {
	return WriterConfig{
		Epoch:              localdate.Buddhist,
		NameMatch:          ledger.NameMatchExact,
		VerifyBeforeAppend: true,
		AutoProvision:      true,
	}
}

func newFixture(t *testing.T, cfg WriterConfig) *fixture {
	t.Helper()

	store := sheet.NewMemory()
	registry := memory.NewSegmentSchemaRepository()
	days := localdate.NewDayNamer("en")
	codec := spreadsheet.NewCodec(days)
	detector := spreadsheet.NewSchemaDetector(store, registry)
	locator := spreadsheet.NewRecordLocator(store, codec, cfg.NameMatch)
	repo := spreadsheet.NewLedgerRepository(store, detector, locator, codec)
	provisioner := segment.NewProvisioner(store, registry, repo, nil)
	calc := overtime.NewCalculator()

	writer := NewWriter(repo, provisioner, calc, keylock.New(), days, cfg)
	writer.now = func() time.Time { return fixedNow }

	notifier := &recordingNotifier{}
	svc := NewLedgerService(writer, repo, calc, notifier, cfg.NameMatch).(*LedgerServiceImpl)
	svc.now = func() time.Time { return fixedNow }

	return &fixture{
		store:    store,
		registry: registry,
		repo:     repo,
		writer:   writer,
		service:  svc,
		notifier: notifier,
	}
}

// dataRows returns the non-header rows of a segment.
func (f *fixture) dataRows(segment string) [][]string {
	rows := f.store.Rows(segment)
	if len(rows) == 0 {
		return nil
	}
	return rows[1:]
}
