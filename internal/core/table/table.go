// Package table holds the in-memory tabular dataset passed between pipeline steps
package table

import (
	perr "sentiprep/internal/platform/errors"
)

// Table is an ordered sequence of rows over a fixed set of named columns
// rows handed to Append are owned by the table afterwards
type Table struct {
	cols  []string
	index map[string]int
	rows  [][]Value
}

// New returns an empty table with the given columns; names must be unique
func New(columns []string) (*Table, error) {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := idx[c]; dup {
			return nil, perr.WithField(perr.InvalidArgf("duplicate column %q", c), c)
		}
		idx[c] = i
	}
	return &Table{cols: append([]string(nil), columns...), index: idx}, nil
}

// MustNew is New for literals in tests and fixtures
func MustNew(columns []string, rows ...[]Value) *Table {
	t, err := New(columns)
	if err != nil {
		panic(err)
	}
	for _, r := range rows {
		if err := t.Append(r); err != nil {
			panic(err)
		}
	}
	return t
}

// Like returns an empty table with the same columns as t
func (t *Table) Like() *Table {
	return &Table{cols: t.cols, index: t.index}
}

// Columns returns a copy of the column names in order
func (t *Table) Columns() []string { return append([]string(nil), t.cols...) }

// Width is the number of columns
func (t *Table) Width() int { return len(t.cols) }

// Len is the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Index returns the position of column name
func (t *Table) Index(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Require returns the position of column name or a missing column error
func (t *Table) Require(name string) (int, error) {
	if i, ok := t.index[name]; ok {
		return i, nil
	}
	return -1, perr.MissingColumn(name)
}

// Row returns row i; callers must not modify it
func (t *Table) Row(i int) []Value { return t.rows[i] }

// Cell returns the value at row i, column c
func (t *Table) Cell(i, c int) Value { return t.rows[i][c] }

// Append adds a row; its width must match the header
func (t *Table) Append(row []Value) error {
	if len(row) != len(t.cols) {
		return perr.Processingf(nil, "row %d has %d cells, want %d", len(t.rows), len(row), len(t.cols))
	}
	t.rows = append(t.rows, row)
	return nil
}

// Grow reserves space for n more rows
func (t *Table) Grow(n int) {
	if cap(t.rows)-len(t.rows) < n {
		rows := make([][]Value, len(t.rows), len(t.rows)+n)
		copy(rows, t.rows)
		t.rows = rows
	}
}

// Equal reports whether a and b have the same columns and the same cells in the same order
func Equal(a, b *Table) bool {
	if a.Len() != b.Len() || len(a.cols) != len(b.cols) {
		return false
	}
	for i := range a.cols {
		if a.cols[i] != b.cols[i] {
			return false
		}
	}
	for i := range a.rows {
		for j := range a.rows[i] {
			if a.rows[i][j] != b.rows[i][j] {
				return false
			}
		}
	}
	return true
}
