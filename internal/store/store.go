// Package store persists flat, header-keyed tables. Every backend supports
// the same two operations: load a whole table and overwrite a whole table.
package store

import (
	"context"
	"strings"
)

// Logical table names.
const (
	TableOrders         = "pedidos"
	TableReceipts       = "almoxarifado"
	TableInvoices       = "fiscal"
	TableRequesters     = "solicitantes"
	TableReimbursements = "reembolsos"
	TableServices       = "servicos"
)

// OpError records a failed load or save against a backend.
type OpError struct {
	Table string
	Op    string
	Err   error
}

func (e *OpError) Error() string { return e.Op + " " + e.Table + ": " + e.Err.Error() }

func (e *OpError) Unwrap() error { return e.Err }

// Row maps a column header to its raw cell value.
type Row map[string]string

// Get returns the trimmed cell value for column, or "" when absent.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r[column])
}

// Table is a named, ordered set of rows sharing a header.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{
		Name:    t.Name,
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, row := range t.Rows {
		cp := make(Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out.Rows[i] = cp
	}
	return out
}

// Store loads and overwrites whole tables. Saves are last-write-wins.
type Store interface {
	// LoadTable reads every row of the named table. A table that does not exist yet
	// loads as empty where the backend can tell the difference.
	LoadTable(ctx context.Context, name string) (*Table, error)
	// SaveTable replaces the stored table with t.
	SaveTable(ctx context.Context, t *Table) error
}

// Column is an expected column and the value it gets when missing.
type Column struct {
	Name    string
	Default string
}

// Schema describes the columns a table is expected to carry.
type Schema struct {
	Table   string
	Columns []Column
	// Aliases maps legacy header names to their current column name.
	Aliases map[string]string
}

// ColumnNames returns the expected header in order.
func (s Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Normalize returns a copy of t where legacy headers are renamed, every expected
// column exists (filled with its default where missing or blank) and the header
// lists schema columns first, followed by unknown columns in their loaded order.
func (s Schema) Normalize(t *Table) *Table {
	out := &Table{Name: s.Table}
	if t != nil && t.Name != "" {
		out.Name = t.Name
	}

	expected := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		expected[c.Name] = true
		out.Columns = append(out.Columns, c.Name)
	}
	if t == nil {
		return out
	}

	seen := make(map[string]bool)
	for _, col := range t.Columns {
		name := s.canonical(col)
		if expected[name] || seen[name] {
			continue
		}
		seen[name] = true
		out.Columns = append(out.Columns, name)
	}

	out.Rows = make([]Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		norm := make(Row, len(out.Columns))
		for k, v := range row {
			name := s.canonical(k)
			if existing, ok := norm[name]; ok && strings.TrimSpace(existing) != "" {
				continue
			}
			norm[name] = v
		}
		for _, c := range s.Columns {
			if strings.TrimSpace(norm[c.Name]) == "" {
				norm[c.Name] = c.Default
			}
		}
		out.Rows = append(out.Rows, norm)
	}
	return out
}

func (s Schema) canonical(column string) string {
	column = strings.TrimSpace(column)
	if renamed, ok := s.Aliases[column]; ok {
		return renamed
	}
	return column
}

// Records flattens t into a header row followed by one record per row.
func Records(t *Table) [][]string {
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, append([]string(nil), t.Columns...))
	for _, row := range t.Rows {
		rec := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			rec[i] = row[col]
		}
		records = append(records, rec)
	}
	return records
}

// FromRecords builds a table from a header row followed by data rows.
// Short rows are padded with blanks; fully blank rows are dropped.
func FromRecords(name string, records [][]string) *Table {
	t := &Table{Name: name}
	if len(records) == 0 {
		return t
	}
	for _, h := range records[0] {
		t.Columns = append(t.Columns, strings.TrimSpace(h))
	}
	for _, rec := range records[1:] {
		row := make(Row, len(t.Columns))
		blank := true
		for i, col := range t.Columns {
			if col == "" {
				continue
			}
			if i < len(rec) {
				row[col] = rec[i]
				if strings.TrimSpace(rec[i]) != "" {
					blank = false
				}
			} else {
				row[col] = ""
			}
		}
		if !blank {
			t.Rows = append(t.Rows, row)
		}
	}
	cols := t.Columns[:0]
	for _, c := range t.Columns {
		if c != "" {
			cols = append(cols, c)
		}
	}
	t.Columns = cols
	return t
}
