package memory

import (
	"context"
	"sync"

	"saldo/internal/sheets"
)

// Mirror keeps mirrored rows in memory, in append order.
type Mirror struct {
	mu   sync.Mutex
	rows []sheets.Row
}

var _ sheets.Mirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{}
}

func (m *Mirror) AppendRows(_ context.Context, rows []sheets.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, rows...)
	return nil
}

func (m *Mirror) DeleteByID(_ context.Context, id string) (int, error) {
	return m.remove(func(r sheets.Row) bool { return r.ID == id }), nil
}

func (m *Mirror) DeleteByGroup(_ context.Context, groupID string) (int, error) {
	if groupID == "" {
		return 0, nil
	}
	return m.remove(func(r sheets.Row) bool { return r.GroupID == groupID }), nil
}

func (m *Mirror) remove(match func(sheets.Row) bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rows[:0]
	n := 0
	for _, r := range m.rows {
		if match(r) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.rows = kept
	return n
}

// Rows returns a copy of the mirrored rows.
func (m *Mirror) Rows() []sheets.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sheets.Row(nil), m.rows...)
}
