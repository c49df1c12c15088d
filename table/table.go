// Package table reads, concatenates, and writes small tabular datasets
// stored as delimited text (CSV/TSV, optionally gzipped) or XLSX workbooks.
package table

import (
	"fmt"

	"github.com/spf13/cast"
)

// Table is an in-memory tabular dataset: named columns in source order and
// rows of string cells. Every row has exactly len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NumRows returns the number of data rows (the header is not a row).
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// Empty reports whether the table has no columns and no rows, as produced
// by reading zero-byte input.
func (t *Table) Empty() bool {
	return len(t.Columns) == 0 && len(t.Rows) == 0
}

// ColumnIndex returns the position of a named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Concat appends the rows of the given tables in argument order. Column
// sets are merged as a union: the result keeps the first table's column
// order, then unseen columns in encounter order, and cells missing from a
// source table are the empty string. Empty tables contribute nothing.
func Concat(tables ...*Table) *Table {
	var columns []string
	index := make(map[string]int)
	for _, t := range tables {
		for _, c := range t.Columns {
			if _, ok := index[c]; !ok {
				index[c] = len(columns)
				columns = append(columns, c)
			}
		}
	}

	out := &Table{Columns: columns}
	for _, t := range tables {
		for _, row := range t.Rows {
			merged := make([]string, len(columns))
			for i, c := range t.Columns {
				if i < len(row) {
					merged[index[c]] = row[i]
				}
			}
			out.Rows = append(out.Rows, merged)
		}
	}
	return out
}

// Strings returns the values of a named column.
func (t *Table) Strings(name string) ([]string, error) {
	i := t.ColumnIndex(name)
	if i < 0 {
		return nil, fmt.Errorf("no column %q", name)
	}
	vals := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		vals[r] = row[i]
	}
	return vals, nil
}

// Floats returns a named column converted to float64.
func (t *Table) Floats(name string) ([]float64, error) {
	cells, err := t.Strings(name)
	if err != nil {
		return nil, err
	}
	vals := make([]float64, len(cells))
	for r, cell := range cells {
		v, err := cast.ToFloat64E(cell)
		if err != nil {
			return nil, fmt.Errorf("column %q row %d: %w", name, r, err)
		}
		vals[r] = v
	}
	return vals, nil
}

// Ints returns a named column converted to int.
func (t *Table) Ints(name string) ([]int, error) {
	cells, err := t.Strings(name)
	if err != nil {
		return nil, err
	}
	vals := make([]int, len(cells))
	for r, cell := range cells {
		v, err := cast.ToIntE(cell)
		if err != nil {
			return nil, fmt.Errorf("column %q row %d: %w", name, r, err)
		}
		vals[r] = v
	}
	return vals, nil
}
