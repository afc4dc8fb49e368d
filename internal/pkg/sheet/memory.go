package sheet

import (
	"context"
	"fmt"
	"sync"
)

// Op names a Store primitive, used for call accounting and injected failures.
type Op string

const (
	OpGet    Op = "get"
	OpUpdate Op = "update"
	OpBatch  Op = "batch"
	OpAppend Op = "append"
)

// Memory is an in-process Backend. Besides serving LEDGER_STORE=memory it records how
// often each primitive was called and can be told to fail, which the ledger tests use
// to observe batching and storage outages.
type Memory struct {
	mu       sync.Mutex
	segments map[string][][]string
	order    []string
	calls    map[Op]int
	failures map[Op]error
	hooks    map[Op]func(segment string)
}

func NewMemory() *Memory {
	return &Memory{
		segments: make(map[string][][]string),
		calls:    make(map[Op]int),
		failures: make(map[Op]error),
		hooks:    make(map[Op]func(string)),
	}
}

// Seed replaces a segment's content with rows (row 1 first), creating it if needed.
func (m *Memory) Seed(segment string, rows ...[]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.segments[segment]; !ok {
		m.order = append(m.order, segment)
	}
	cp := make([][]string, len(rows))
	for i, r := range rows {
		cp[i] = append([]string(nil), r...)
	}
	m.segments[segment] = cp
}

// Rows returns a copy of every row of a segment, row 1 first.
func (m *Memory) Rows(segment string) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	src := m.segments[segment]
	out := make([][]string, len(src))
	for i, r := range src {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// Fail makes every subsequent call of op return err until cleared with a nil err.
func (m *Memory) Fail(op Op, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

// OnCall runs fn, outside the store lock, right before op executes.
func (m *Memory) OnCall(op Op, fn func(segment string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if fn == nil {
		delete(m.hooks, op)
		return
	}
	m.hooks[op] = fn
}

// Calls reports how many times op has been invoked.
func (m *Memory) Calls(op Op) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *Memory) enter(op Op, segment string) error {
	m.mu.Lock()
	m.calls[op]++
	hook := m.hooks[op]
	err := m.failures[op]
	m.mu.Unlock()

	if hook != nil {
		hook(segment)
	}
	return err
}

// GetValues implements Store.
func (m *Memory) GetValues(ctx context.Context, segment, rng string) ([][]string, error) {
	if err := m.enter(OpGet, segment); err != nil {
		return nil, err
	}
	r, err := ParseRange(rng)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.segments[segment]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSegmentNotFound, segment)
	}
	return window(rows, r), nil
}

// UpdateValues implements Store.
func (m *Memory) UpdateValues(ctx context.Context, segment, rng string, values [][]string) error {
	if err := m.enter(OpUpdate, segment); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.write(segment, rng, values)
}

// BatchUpdateValues implements Store.
func (m *Memory) BatchUpdateValues(ctx context.Context, segment string, data []ValueRange) error {
	if err := m.enter(OpBatch, segment); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, vr := range data {
		if _, err := ParseRange(vr.Range); err != nil {
			return err
		}
	}
	for _, vr := range data {
		if err := m.write(segment, vr.Range, vr.Values); err != nil {
			return err
		}
	}
	return nil
}

// AppendRow implements Store.
func (m *Memory) AppendRow(ctx context.Context, segment, rng string, row []string) (int, error) {
	if err := m.enter(OpAppend, segment); err != nil {
		return 0, err
	}
	r, err := ParseRange(rng)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.segments[segment]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrSegmentNotFound, segment)
	}

	target := lastFilledRow(rows) + 1
	if target < r.StartRow {
		target = r.StartRow
	}
	m.segments[segment] = setCells(rows, target, r.StartCol, row)
	return target, nil
}

func (m *Memory) write(segment, rng string, values [][]string) error {
	r, err := ParseRange(rng)
	if err != nil {
		return err
	}
	rows, ok := m.segments[segment]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSegmentNotFound, segment)
	}
	for i, vals := range values {
		rows = setCells(rows, r.StartRow+i, r.StartCol, vals)
	}
	m.segments[segment] = rows
	return nil
}

func setCells(rows [][]string, rowNum, startCol int, vals []string) [][]string {
	for len(rows) < rowNum {
		rows = append(rows, nil)
	}
	row := rows[rowNum-1]
	need := startCol - 1 + len(vals)
	for len(row) < need {
		row = append(row, "")
	}
	copy(row[startCol-1:], vals)
	rows[rowNum-1] = row
	return rows
}

// SegmentExists implements SegmentAdmin.
func (m *Memory) SegmentExists(ctx context.Context, segment string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.segments[segment]
	return ok, nil
}

// CreateSegment implements SegmentAdmin. Memory segments carry no formatting, so the
// template is ignored.
func (m *Memory) CreateSegment(ctx context.Context, segment string, header []string, template string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.segments[segment]; ok {
		return fmt.Errorf("%w: %s", ErrSegmentExists, segment)
	}
	m.segments[segment] = [][]string{append([]string(nil), header...)}
	m.order = append(m.order, segment)
	return nil
}

// DeleteSegment implements SegmentAdmin.
func (m *Memory) DeleteSegment(ctx context.Context, segment string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.segments[segment]; !ok {
		return fmt.Errorf("%w: %s", ErrSegmentNotFound, segment)
	}
	delete(m.segments, segment)
	for i, name := range m.order {
		if name == segment {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Segments lists segment names in creation order.
func (m *Memory) Segments() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}
