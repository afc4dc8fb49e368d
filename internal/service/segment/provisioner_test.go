package segment

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cmlabs-hris/attendance-ledger/internal/domain/ledger"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/localdate"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/sheet"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-ledger/internal/repository/memory"
	"github.com/cmlabs-hris/attendance-ledger/internal/repository/spreadsheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var march = ledger.Segment{Year: 2025, Month: 3}

// templateRecorder remembers which template each segment was created from.
type templateRecorder struct {
	*sheet.Memory
	mu        sync.Mutex
	templates map[string]string
}

func (r *templateRecorder) CreateSegment(ctx context.Context, segment string, header []string, template string) error {
	r.mu.Lock()
	r.templates[segment] = template
	r.mu.Unlock()
	return r.Memory.CreateSegment(ctx, segment, header, template)
}

type provisionFixture struct {
	admin       *templateRecorder
	registry    ledger.SchemaRegistry
	repo        ledger.Repository
	provisioner *Provisioner
}

func newProvisionFixture() *provisionFixture {
	store := sheet.NewMemory()
	admin := &templateRecorder{Memory: store, templates: make(map[string]string)}
	registry := memory.NewSegmentSchemaRepository()

	codec := spreadsheet.NewCodec(localdate.NewDayNamer("en"))
	detector := spreadsheet.NewSchemaDetector(store, registry)
	locator := spreadsheet.NewRecordLocator(store, codec, ledger.NameMatchExact)
	repo := spreadsheet.NewLedgerRepository(store, detector, locator, codec)

	return &provisionFixture{
		admin:       admin,
		registry:    registry,
		repo:        repo,
		provisioner: NewProvisioner(admin, registry, repo, nil),
	}
}

func TestEnsure_CreatesOnce(t *testing.T) {
	ctx := context.Background()
	f := newProvisionFixture()

	created, err := f.provisioner.Ensure(ctx, march)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = f.provisioner.Ensure(ctx, march)
	require.NoError(t, err)
	assert.False(t, created)

	assert.Equal(t, [][]string{spreadsheet.Header(ledger.SchemaNew)}, f.admin.Rows(march.Name()))

	version, err := f.registry.Get(ctx, march.Name())
	require.NoError(t, err)
	assert.Equal(t, ledger.SchemaNew, version)
}

func TestEnsure_ConcurrentCallersCreateOnce(t *testing.T) {
	f := newProvisionFixture()

	var (
		wg      sync.WaitGroup
		created atomic.Int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := f.provisioner.Ensure(context.Background(), march)
			assert.NoError(t, err)
			if ok {
				created.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, []string{march.Name()}, f.admin.Segments())
}

func TestEnsure_InvalidSegment(t *testing.T) {
	_, err := newProvisionFixture().provisioner.Ensure(context.Background(), ledger.Segment{Year: 2025, Month: 13})
	assert.Error(t, err)
}

func TestProvision_UsesPreviousMonthAsTemplate(t *testing.T) {
	ctx := context.Background()
	f := newProvisionFixture()

	_, err := f.provisioner.Provision(ctx, ledger.ProvisionRequest{Year: 2025, Month: 2})
	require.NoError(t, err)
	_, err = f.provisioner.Provision(ctx, ledger.ProvisionRequest{Year: 2568, Month: 3})
	require.NoError(t, err)

	assert.Equal(t, "", f.admin.templates["February 2025 Attendance"])
	assert.Equal(t, "February 2025 Attendance", f.admin.templates[march.Name()])
}

func TestProvision_ExistingSegment(t *testing.T) {
	ctx := context.Background()
	f := newProvisionFixture()

	res, err := f.provisioner.Provision(ctx, ledger.ProvisionRequest{Year: 2025, Month: 3})
	require.NoError(t, err)
	assert.Equal(t, "NEW", res.Schema)
	assert.False(t, res.Replaced)

	// a record lands and the layout gets memoized
	f.admin.Seed(march.Name(), spreadsheet.Header(ledger.SchemaNew), []string{"Somchai", "05/03/2568"})
	version, err := f.repo.ResolveSchema(ctx, march.Name(), ledger.AccessWrite)
	require.NoError(t, err)
	assert.Equal(t, ledger.SchemaNew, version)

	_, err = f.provisioner.Provision(ctx, ledger.ProvisionRequest{Year: 2025, Month: 3})
	assert.ErrorIs(t, err, ledger.ErrSegmentExists)

	res, err = f.provisioner.Provision(ctx, ledger.ProvisionRequest{Year: 2025, Month: 3, Schema: "OLD", Replace: true})
	require.NoError(t, err)
	assert.True(t, res.Replaced)
	assert.Equal(t, "OLD", res.Schema)

	assert.Equal(t, [][]string{spreadsheet.Header(ledger.SchemaOld)}, f.admin.Rows(march.Name()))

	version, err = f.repo.ResolveSchema(ctx, march.Name(), ledger.AccessWrite)
	require.NoError(t, err)
	assert.Equal(t, ledger.SchemaOld, version)
}

func TestProvision_Validation(t *testing.T) {
	f := newProvisionFixture()

	_, err := f.provisioner.Provision(context.Background(), ledger.ProvisionRequest{Year: 1990, Month: 0, Schema: "V3"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 3)
}
