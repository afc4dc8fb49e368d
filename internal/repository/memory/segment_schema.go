package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/cmlabs-hris/attendance-ledger/internal/domain/ledger"
)

type segmentSchemaRepository struct {
	mu      sync.RWMutex
	schemas map[string]ledger.SchemaVersion
}

// NewSegmentSchemaRepository creates an in-process segment schema registry
func NewSegmentSchemaRepository() ledger.SchemaRegistry {
	return &segmentSchemaRepository{schemas: make(map[string]ledger.SchemaVersion)}
}

func (r *segmentSchemaRepository) Get(ctx context.Context, segment string) (ledger.SchemaVersion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	version, ok := r.schemas[segment]
	if !ok {
		return ledger.SchemaUnknown, fmt.Errorf("%w: %s", ledger.ErrSchemaNotRegistered, segment)
	}
	return version, nil
}

func (r *segmentSchemaRepository) Put(ctx context.Context, segment string, version ledger.SchemaVersion) error {
	if !version.Concrete() {
		return fmt.Errorf("%w: cannot register schema %s", ledger.ErrSchemaUnknown, version)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[segment] = version
	return nil
}

func (r *segmentSchemaRepository) Delete(ctx context.Context, segment string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.schemas, segment)
	return nil
}
