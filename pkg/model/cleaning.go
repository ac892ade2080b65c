// pkg/model/cleaning.go
package model

import (
	"sort"
)

// CleaningOperation summarizes one rule applied to one column
type CleaningOperation struct {
	ColumnName        string // Column that was cleaned
	CleaningOperation string // Type of cleaning performed (e.g., "normalize_date")
	ValuesChanged     int    // Number of values that differ after cleaning
}

// CleaningReport describes what a dataset cleaner did to a record set
type CleaningReport struct {
	Dataset        string
	Profile        string
	Rows           int
	Operations     []CleaningOperation
	MissingColumns []string // Columns a rule expected but the file lacked
}

// Record adds an operation to the report
func (r *CleaningReport) Record(column, operation string, changed int) {
	r.Operations = append(r.Operations, CleaningOperation{
		ColumnName:        column,
		CleaningOperation: operation,
		ValuesChanged:     changed,
	})
}

// Missing notes a column that a rule could not find
func (r *CleaningReport) Missing(column string) {
	for _, c := range r.MissingColumns {
		if c == column {
			return
		}
	}
	r.MissingColumns = append(r.MissingColumns, column)
}

// ValuesChanged returns the total number of changed values across all operations
func (r *CleaningReport) ValuesChanged() int {
	total := 0
	for _, op := range r.Operations {
		total += op.ValuesChanged
	}
	return total
}

// CleanedColumns returns the sorted, de-duplicated names of columns touched by the cleaner
func (r *CleaningReport) CleanedColumns() []string {
	seen := make(map[string]bool)
	var cols []string
	for _, op := range r.Operations {
		if !seen[op.ColumnName] {
			seen[op.ColumnName] = true
			cols = append(cols, op.ColumnName)
		}
	}
	sort.Strings(cols)
	return cols
}

// IsNoOp reports whether the cleaner performed no operations at all
func (r *CleaningReport) IsNoOp() bool {
	return len(r.Operations) == 0
}
