// Package table provides a small immutable table engine for feed data.
// A Table is a named, column-ordered grid of string cells; every transform
// in Ops returns a new Table and never mutates its input, so pipeline
// stages stay composable and testable in isolation.
package table

import (
	pkgerrors "github.com/quickmart/shelfsync/pkg/errors"
)

// Table is an immutable column-ordered collection of rows. Cells are kept
// as strings exactly as read from the feed; numeric interpretation happens
// inside the operations that need it.
type Table struct {
	name  string
	cols  []string
	index map[string]int
	rows  [][]string
}

// New creates a table from a column list and rows. Rows narrower or wider
// than the column list are rejected.
func New(name string, cols []string, rows [][]string) (*Table, error) {
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		index[c] = i
	}
	for _, row := range rows {
		if len(row) != len(cols) {
			return nil, pkgerrors.NewConfigError("table", "row width does not match column count in "+name, nil)
		}
	}
	return &Table{
		name:  name,
		cols:  append([]string(nil), cols...),
		index: index,
		rows:  rows,
	}, nil
}

// Name returns the table's name, used in schema error diagnostics.
func (t *Table) Name() string {
	return t.name
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.cols...)
}

// HasColumn reports whether the table has the named column.
func (t *Table) HasColumn(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Value returns the cell at row i, column col.
func (t *Table) Value(i int, col string) (string, error) {
	j, ok := t.index[col]
	if !ok {
		return "", pkgerrors.NewSchemaError(t.name, col)
	}
	return t.rows[i][j], nil
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []string {
	return append([]string(nil), t.rows[i]...)
}

// column returns the index of col or a SchemaError naming the table.
func (t *Table) column(col string) (int, error) {
	j, ok := t.index[col]
	if !ok {
		return 0, pkgerrors.NewSchemaError(t.name, col)
	}
	return j, nil
}

// derive builds a new table sharing this table's name and columns with the
// given rows. Row slices are shared, never mutated.
func (t *Table) derive(rows [][]string) *Table {
	return &Table{
		name:  t.name,
		cols:  t.cols,
		index: t.index,
		rows:  rows,
	}
}
