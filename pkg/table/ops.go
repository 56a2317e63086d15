package table

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Ops is the capability interface the pipeline depends on. Callers never
// touch the concrete engine, so the implementation can be swapped in tests.
type Ops interface {
	// FilterIn keeps rows whose value in col is one of values.
	FilterIn(t *Table, col string, values []string) (*Table, error)

	// FilterPositive keeps rows whose numeric value in col is > 0.
	// Rows with an unparseable cell are excluded.
	FilterPositive(t *Table, col string) (*Table, error)

	// MergeOn inner-joins a and b on key. The result carries a's columns
	// followed by b's columns minus the duplicate key.
	MergeOn(a, b *Table, key string) (*Table, error)

	// GroupMax keeps the rows whose value in valueCol equals the maximum
	// within their (groupCols...) group. Ties are all retained.
	GroupMax(t *Table, groupCols []string, valueCol string) (*Table, error)

	// ConcatColumns appends a derived column named into, whose value per
	// row is the cols values joined with sep, optionally lower-cased.
	// Empty cells join as empty segments.
	ConcatColumns(t *Table, sep string, cols []string, lower bool, into string) (*Table, error)

	// DropColumns removes the named columns from the table.
	DropColumns(t *Table, cols []string) (*Table, error)

	// Derive appends a column named into, computed per row by applying fn
	// to the value of col.
	Derive(t *Table, col, into string, fn func(string) string) (*Table, error)

	// Apply replaces col's value per row with fn of it.
	Apply(t *Table, col string, fn func(string) string) (*Table, error)

	// SortByDesc stable-sorts rows by the numeric value in col, descending.
	// Rows with an unparseable cell sort last.
	SortByDesc(t *Table, col string) (*Table, error)

	// Head returns the first n rows, or all rows if the table is shorter.
	Head(t *Table, n int) *Table

	// SplitBy partitions the table by the distinct values of col.
	SplitBy(t *Table, col string) (map[string]*Table, error)
}

// Engine is the in-memory implementation of Ops.
type Engine struct{}

// NewEngine creates a new in-memory table engine.
func NewEngine() *Engine {
	return &Engine{}
}

var lowerCaser = cases.Lower(language.Und)

// FilterIn keeps rows whose value in col is one of values.
func (e *Engine) FilterIn(t *Table, col string, values []string) (*Table, error) {
	j, err := t.column(col)
	if err != nil {
		return nil, err
	}
	allowed := make(map[string]struct{}, len(values))
	for _, v := range values {
		allowed[v] = struct{}{}
	}
	var rows [][]string
	for _, row := range t.rows {
		if _, ok := allowed[row[j]]; ok {
			rows = append(rows, row)
		}
	}
	return t.derive(rows), nil
}

// FilterPositive keeps rows whose numeric value in col is greater than zero.
func (e *Engine) FilterPositive(t *Table, col string) (*Table, error) {
	j, err := t.column(col)
	if err != nil {
		return nil, err
	}
	var rows [][]string
	for _, row := range t.rows {
		d, err := decimal.NewFromString(strings.TrimSpace(row[j]))
		if err != nil {
			continue
		}
		if d.IsPositive() {
			rows = append(rows, row)
		}
	}
	return t.derive(rows), nil
}

// MergeOn inner-joins a and b on key.
func (e *Engine) MergeOn(a, b *Table, key string) (*Table, error) {
	ja, err := a.column(key)
	if err != nil {
		return nil, err
	}
	jb, err := b.column(key)
	if err != nil {
		return nil, err
	}

	cols := a.Columns()
	for i, c := range b.cols {
		if i == jb {
			continue
		}
		cols = append(cols, c)
	}

	// Index b by key, preserving b's row order within a key.
	byKey := make(map[string][]int)
	for i, row := range b.rows {
		byKey[row[jb]] = append(byKey[row[jb]], i)
	}

	var rows [][]string
	for _, left := range a.rows {
		for _, i := range byKey[left[ja]] {
			row := make([]string, 0, len(cols))
			row = append(row, left...)
			for j, cell := range b.rows[i] {
				if j == jb {
					continue
				}
				row = append(row, cell)
			}
			rows = append(rows, row)
		}
	}
	return New(a.name+"+"+b.name, cols, rows)
}

// GroupMax keeps the rows whose value in valueCol equals the group maximum.
func (e *Engine) GroupMax(t *Table, groupCols []string, valueCol string) (*Table, error) {
	groupIdx := make([]int, len(groupCols))
	for i, c := range groupCols {
		j, err := t.column(c)
		if err != nil {
			return nil, err
		}
		groupIdx[i] = j
	}
	jv, err := t.column(valueCol)
	if err != nil {
		return nil, err
	}

	groupKey := func(row []string) string {
		parts := make([]string, len(groupIdx))
		for i, j := range groupIdx {
			parts[i] = row[j]
		}
		return strings.Join(parts, "\x00")
	}

	maxima := make(map[string]decimal.Decimal)
	for _, row := range t.rows {
		d, err := decimal.NewFromString(strings.TrimSpace(row[jv]))
		if err != nil {
			continue
		}
		k := groupKey(row)
		if cur, ok := maxima[k]; !ok || d.GreaterThan(cur) {
			maxima[k] = d
		}
	}

	var rows [][]string
	for _, row := range t.rows {
		d, err := decimal.NewFromString(strings.TrimSpace(row[jv]))
		if err != nil {
			continue
		}
		if m, ok := maxima[groupKey(row)]; ok && d.Equal(m) {
			rows = append(rows, row)
		}
	}
	return t.derive(rows), nil
}

// ConcatColumns appends a derived column from the joined values of cols.
func (e *Engine) ConcatColumns(t *Table, sep string, cols []string, lower bool, into string) (*Table, error) {
	idx := make([]int, len(cols))
	for i, c := range cols {
		j, err := t.column(c)
		if err != nil {
			return nil, err
		}
		idx[i] = j
	}

	newCols := append(t.Columns(), into)
	rows := make([][]string, len(t.rows))
	for i, row := range t.rows {
		parts := make([]string, len(idx))
		for k, j := range idx {
			parts[k] = row[j]
		}
		joined := strings.Join(parts, sep)
		if lower {
			joined = lowerCaser.String(joined)
		}
		rows[i] = append(append([]string(nil), row...), joined)
	}
	return New(t.name, newCols, rows)
}

// DropColumns removes the named columns.
func (e *Engine) DropColumns(t *Table, cols []string) (*Table, error) {
	drop := make(map[int]struct{}, len(cols))
	for _, c := range cols {
		j, err := t.column(c)
		if err != nil {
			return nil, err
		}
		drop[j] = struct{}{}
	}

	var newCols []string
	for j, c := range t.cols {
		if _, gone := drop[j]; !gone {
			newCols = append(newCols, c)
		}
	}
	rows := make([][]string, len(t.rows))
	for i, row := range t.rows {
		kept := make([]string, 0, len(newCols))
		for j, cell := range row {
			if _, gone := drop[j]; !gone {
				kept = append(kept, cell)
			}
		}
		rows[i] = kept
	}
	return New(t.name, newCols, rows)
}

// Derive appends a column computed from an existing one.
func (e *Engine) Derive(t *Table, col, into string, fn func(string) string) (*Table, error) {
	j, err := t.column(col)
	if err != nil {
		return nil, err
	}
	newCols := append(t.Columns(), into)
	rows := make([][]string, len(t.rows))
	for i, row := range t.rows {
		rows[i] = append(append([]string(nil), row...), fn(row[j]))
	}
	return New(t.name, newCols, rows)
}

// Apply replaces a column's values in a copy of the table.
func (e *Engine) Apply(t *Table, col string, fn func(string) string) (*Table, error) {
	j, err := t.column(col)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, len(t.rows))
	for i, row := range t.rows {
		copied := append([]string(nil), row...)
		copied[j] = fn(copied[j])
		rows[i] = copied
	}
	return t.derive(rows), nil
}

// SortByDesc stable-sorts rows by the numeric value in col, descending.
func (e *Engine) SortByDesc(t *Table, col string) (*Table, error) {
	j, err := t.column(col)
	if err != nil {
		return nil, err
	}
	rows := append([][]string(nil), t.rows...)
	val := func(row []string) (decimal.Decimal, bool) {
		d, err := decimal.NewFromString(strings.TrimSpace(row[j]))
		return d, err == nil
	}
	sort.SliceStable(rows, func(a, b int) bool {
		da, oka := val(rows[a])
		db, okb := val(rows[b])
		if !oka {
			return false
		}
		if !okb {
			return true
		}
		return da.GreaterThan(db)
	})
	return t.derive(rows), nil
}

// Head returns the first n rows.
func (e *Engine) Head(t *Table, n int) *Table {
	if n >= len(t.rows) {
		return t.derive(t.rows)
	}
	return t.derive(t.rows[:n])
}

// SplitBy partitions the table by the distinct values of col.
func (e *Engine) SplitBy(t *Table, col string) (map[string]*Table, error) {
	j, err := t.column(col)
	if err != nil {
		return nil, err
	}
	buckets := make(map[string][][]string)
	for _, row := range t.rows {
		buckets[row[j]] = append(buckets[row[j]], row)
	}
	out := make(map[string]*Table, len(buckets))
	for v, rows := range buckets {
		out[v] = t.derive(rows)
	}
	return out, nil
}
