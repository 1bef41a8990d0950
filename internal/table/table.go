// Package table holds the in-memory tabular form of an uploaded CSV file.
//
// A Table is immutable from the outside: every derivation (Rename, DropMissing,
// Filter) returns a fresh Table and leaves the receiver untouched.
package table

import (
	"fmt"
)

// Column describes a named column and the kind inferred for its cells.
type Column struct {
	Name string // Name is the trimmed, unique column name.
	Kind Kind   // Kind is KindNumber or KindText.
}

// Table is an ordered set of named columns and ordered rows.
type Table struct {
	columns []Column
	rows    [][]Value
	index   map[string]int
}

// MissingColumnError is returned when an operation needs a column the table lacks.
type MissingColumnError struct {
	Column string // Column is the name that was looked up.
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column %q not found", e.Column)
}

func newTable(columns []Column, rows [][]Value) *Table {
	index := make(map[string]int, len(columns))
	for idx, col := range columns {
		if _, exists := index[col.Name]; !exists {
			index[col.Name] = idx
		}
	}

	return &Table{columns: columns, rows: rows, index: index}
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.columns))
	for idx, col := range t.columns {
		names[idx] = col.Name
	}

	return names
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (Column, bool) {
	idx, ok := t.index[name]
	if !ok {
		return Column{}, false
	}

	return t.columns[idx], true
}

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Value returns the cell at row in the named column.
func (t *Table) Value(row int, name string) (Value, error) {
	idx, ok := t.index[name]
	if !ok {
		return Value{}, &MissingColumnError{Column: name}
	}

	return t.rows[row][idx], nil
}

// Values returns a copy of the named column's cells.
func (t *Table) Values(name string) ([]Value, error) {
	idx, ok := t.index[name]
	if !ok {
		return nil, &MissingColumnError{Column: name}
	}

	values := make([]Value, len(t.rows))
	for row := range t.rows {
		values[row] = t.rows[row][idx]
	}

	return values, nil
}

// Strings returns the display form of every row, in column order.
func (t *Table) Strings() [][]string {
	out := make([][]string, len(t.rows))
	for row, cells := range t.rows {
		line := make([]string, len(cells))
		for idx, cell := range cells {
			line[idx] = cell.String()
		}
		out[row] = line
	}

	return out
}

// Record returns the display form of one row keyed by column name.
func (t *Table) Record(row int) map[string]string {
	record := make(map[string]string, len(t.columns))
	for name, idx := range t.index {
		record[name] = t.rows[row][idx].String()
	}

	return record
}

// Rename returns a table whose columns are renamed according to mapping.
// Names absent from the table are ignored.
func (t *Table) Rename(mapping map[string]string) *Table {
	columns := make([]Column, len(t.columns))
	for idx, col := range t.columns {
		if renamed, ok := mapping[col.Name]; ok {
			col.Name = renamed
		}
		columns[idx] = col
	}

	return newTable(columns, t.rows)
}

// DropMissing returns a table without the rows that are missing a value in any of the named columns.
func (t *Table) DropMissing(names ...string) (*Table, error) {
	indexes := make([]int, 0, len(names))
	for _, name := range names {
		idx, ok := t.index[name]
		if !ok {
			return nil, &MissingColumnError{Column: name}
		}
		indexes = append(indexes, idx)
	}

	return t.Filter(func(row []Value) bool {
		for _, idx := range indexes {
			if row[idx].IsMissing() {
				return false
			}
		}
		return true
	}), nil
}

// Filter returns a table with the rows for which keep returns true, in their original order.
func (t *Table) Filter(keep func(row []Value) bool) *Table {
	rows := make([][]Value, 0, len(t.rows))
	for _, row := range t.rows {
		if keep(row) {
			rows = append(rows, row)
		}
	}

	return newTable(t.columns, rows)
}

// Where returns a table with the rows whose named column displays exactly as value.
func (t *Table) Where(name, value string) (*Table, error) {
	idx, ok := t.index[name]
	if !ok {
		return nil, &MissingColumnError{Column: name}
	}

	return t.Filter(func(row []Value) bool {
		return !row[idx].IsMissing() && row[idx].String() == value
	}), nil
}
