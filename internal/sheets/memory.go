package sheets

import (
	"context"
	"sync"
)

// MemoryTable is an in-process Table. It stands in for a spreadsheet in
// tests and records how often it was read and written.
type MemoryTable struct {
	ReadErr    error
	WriteErr   error
	rows       [][]string
	ReadCalls  int
	WriteCalls int
	mu         sync.Mutex
}

// NewMemoryTable creates a table holding a copy of rows.
func NewMemoryTable(rows [][]string) *MemoryTable {
	return &MemoryTable{rows: copyRows(rows)}
}

// ReadAll implements Table.
func (m *MemoryTable) ReadAll(_ context.Context) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ReadCalls++
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return copyRows(m.rows), nil
}

// ReplaceAll implements Table.
func (m *MemoryTable) ReplaceAll(_ context.Context, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteCalls++
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.rows = copyRows(rows)
	return nil
}

// Rows returns a copy of the current contents.
func (m *MemoryTable) Rows() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyRows(m.rows)
}

func copyRows(rows [][]string) [][]string {
	if rows == nil {
		return nil
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}
