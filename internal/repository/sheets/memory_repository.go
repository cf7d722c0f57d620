package sheets

import (
	"context"
	"fmt"
	"sync"
)

// MemoryRepository keeps the tables in process. It backs STORE_DRIVER=memory and
// the tests, and honours the same contract as the Google implementation.
type MemoryRepository struct {
	mu     sync.RWMutex
	order  []Table
	tables map[Table][][]string
}

// NewMemoryRepository returns a store holding the three tables with their default headers.
func NewMemoryRepository() *MemoryRepository {
	m := &MemoryRepository{tables: make(map[Table][][]string)}
	for _, t := range []Table{TableStock, TableSales, TableCustomers} {
		m.SetHeaders(t, DefaultHeaders[t]...)
	}
	return m
}

// SetHeaders replaces a table with an empty one using the given header row.
func (m *MemoryRepository) SetHeaders(table Table, headers ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tables[table]; !ok {
		m.order = append(m.order, table)
	}
	m.tables[table] = [][]string{append([]string(nil), headers...)}
}

// Seed appends rows to a table, bypassing context handling. Intended for fixtures.
func (m *MemoryRepository) Seed(table Table, rows ...map[string]any) {
	for _, row := range rows {
		if err := m.AppendRow(context.Background(), table, row); err != nil {
			panic(err)
		}
	}
}

// ReadTable returns a copy of the table.
func (m *MemoryRepository) ReadTable(ctx context.Context, table Table) (*Sheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	values, ok := m.tables[table]
	if !ok {
		return nil, &StoreConnectionError{Op: "read " + string(table), Err: fmt.Errorf("worksheet %s not found", table)}
	}

	copied := make([][]string, len(values))
	for i, row := range values {
		copied[i] = append([]string(nil), row...)
	}
	return buildSheet(table, copied), nil
}

// FindRow returns the first row matching the predicate.
func (m *MemoryRepository) FindRow(ctx context.Context, table Table, match Predicate) (Row, error) {
	sheet, err := m.ReadTable(ctx, table)
	if err != nil {
		return Row{}, err
	}
	return findInSheet(sheet, match)
}

// UpdateCell overwrites one cell.
func (m *MemoryRepository) UpdateCell(ctx context.Context, ref RowRef, column string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	values, ok := m.tables[ref.Table]
	if !ok {
		return &StoreConnectionError{Op: "update " + string(ref.Table), Err: fmt.Errorf("worksheet %s not found", ref.Table)}
	}
	if len(values) == 0 {
		return &ColumnNotFoundError{Table: ref.Table, Column: column}
	}
	idx := headerIndex(values[0], column)
	if idx < 0 {
		return &ColumnNotFoundError{Table: ref.Table, Column: column}
	}
	if ref.Number < 2 || ref.Number > len(values) {
		return fmt.Errorf("update %s: invalid row number %d", ref.Table, ref.Number)
	}

	row := values[ref.Number-1]
	for len(row) <= idx {
		row = append(row, "")
	}
	row[idx] = CellString(value)
	values[ref.Number-1] = row
	return nil
}

// AppendRow appends values in header order.
func (m *MemoryRepository) AppendRow(ctx context.Context, table Table, values map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.tables[table]
	if !ok {
		return &StoreConnectionError{Op: "append " + string(table), Err: fmt.Errorf("worksheet %s not found", table)}
	}
	if len(existing) == 0 {
		return fmt.Errorf("append to %s: sheet has no header row", table)
	}

	m.tables[table] = append(existing, orderedRow(existing[0], values))
	return nil
}

// Worksheets lists the table names in creation order.
func (m *MemoryRepository) Worksheets(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	titles := make([]string, 0, len(m.order))
	for _, t := range m.order {
		titles = append(titles, string(t))
	}
	return titles, nil
}

// Ping always succeeds unless the context is done.
func (m *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}
