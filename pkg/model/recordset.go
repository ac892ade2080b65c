// pkg/model/recordset.go
package model

import (
	"errors"
	"fmt"
)

// RecordSet is the in-memory table for one source file.
// Rows are positional and always have exactly len(Columns()) values.
type RecordSet struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// NewRecordSet creates a RecordSet with the given header
func NewRecordSet(columns []string) (*RecordSet, error) {
	rs := &RecordSet{
		columns: make([]string, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}

	for _, col := range columns {
		if _, exists := rs.index[col]; exists {
			return nil, fmt.Errorf("duplicate column %q in header", col)
		}
		rs.index[col] = len(rs.columns)
		rs.columns = append(rs.columns, col)
	}

	return rs, nil
}

// AppendRow adds a row; the value count must match the column count
func (rs *RecordSet) AppendRow(values []string) error {
	if len(values) != len(rs.columns) {
		return fmt.Errorf("row has %d values, expected %d", len(values), len(rs.columns))
	}
	row := make([]string, len(values))
	copy(row, values)
	rs.rows = append(rs.rows, row)
	return nil
}

// Columns returns a copy of the column names in output order
func (rs *RecordSet) Columns() []string {
	out := make([]string, len(rs.columns))
	copy(out, rs.columns)
	return out
}

// Len returns the number of data rows
func (rs *RecordSet) Len() int {
	return len(rs.rows)
}

// HasColumn reports whether the column exists
func (rs *RecordSet) HasColumn(name string) bool {
	_, ok := rs.index[name]
	return ok
}

// Row returns a copy of the row at position i
func (rs *RecordSet) Row(i int) []string {
	out := make([]string, len(rs.rows[i]))
	copy(out, rs.rows[i])
	return out
}

// Value returns the value of a column in row i
func (rs *RecordSet) Value(i int, column string) (string, bool) {
	idx, ok := rs.index[column]
	if !ok || i < 0 || i >= len(rs.rows) {
		return "", false
	}
	return rs.rows[i][idx], true
}

// RenameColumn renames a column in place, keeping its position.
// Returns false if from does not exist.
func (rs *RecordSet) RenameColumn(from, to string) (bool, error) {
	idx, ok := rs.index[from]
	if !ok {
		return false, nil
	}
	if from == to {
		return true, nil
	}
	if _, exists := rs.index[to]; exists {
		return false, fmt.Errorf("cannot rename %q: column %q already exists", from, to)
	}

	delete(rs.index, from)
	rs.index[to] = idx
	rs.columns[idx] = to
	return true, nil
}

// AddColumn appends a column filled with the given value
func (rs *RecordSet) AddColumn(name, fill string) error {
	if _, exists := rs.index[name]; exists {
		return fmt.Errorf("column %q already exists", name)
	}
	rs.index[name] = len(rs.columns)
	rs.columns = append(rs.columns, name)
	for i := range rs.rows {
		rs.rows[i] = append(rs.rows[i], fill)
	}
	return nil
}

// Apply replaces every value of a column with fn(value).
// Returns the number of values that changed and whether the column exists.
func (rs *RecordSet) Apply(column string, fn func(string) string) (int, bool) {
	idx, ok := rs.index[column]
	if !ok {
		return 0, false
	}

	changed := 0
	for _, row := range rs.rows {
		newValue := fn(row[idx])
		if newValue != row[idx] {
			row[idx] = newValue
			changed++
		}
	}
	return changed, true
}

// DeriveColumn sets column name to fn(source value) on every row.
// The column is appended if it does not exist. Returns false if source is missing.
func (rs *RecordSet) DeriveColumn(name, source string, fn func(string) string) (bool, error) {
	srcIdx, ok := rs.index[source]
	if !ok {
		return false, nil
	}

	if !rs.HasColumn(name) {
		if err := rs.AddColumn(name, ""); err != nil {
			return false, err
		}
	}
	dstIdx := rs.index[name]

	for _, row := range rs.rows {
		row[dstIdx] = fn(row[srcIdx])
	}
	return true, nil
}

// Project replaces the record set contents with a new header and rows.
// Used by cleaners that reshape a dataset; the row count must not change.
func (rs *RecordSet) Project(columns []string, rows [][]string) error {
	if len(rows) != len(rs.rows) {
		return errors.New("projection must keep the row count")
	}

	projected, err := NewRecordSet(columns)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := projected.AppendRow(row); err != nil {
			return err
		}
	}

	*rs = *projected
	return nil
}

// Records returns the rows in output order, without a header
func (rs *RecordSet) Records() [][]string {
	out := make([][]string, len(rs.rows))
	for i := range rs.rows {
		out[i] = rs.Row(i)
	}
	return out
}
