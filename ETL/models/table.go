package models

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Table is a named two-dimensional dataset.
// A cell is nil (null), float64 or string. Tables are never modified after
// construction: every operation returns a new table.
type Table struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// TableSet is a set of tables keyed by table name.
type TableSet map[string]Table

var reNumeric = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?$`)

// nullMarkers are the textual values read as an empty cell.
var nullMarkers = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"NULL": {},
	"null": {},
	"#N/A": {},
	"<NA>": {},
}

// NewTable creates a table from already typed rows
func NewTable(name string, columns []string, rows [][]any) Table {
	if rows == nil {
		rows = [][]any{}
	}
	return Table{Name: name, Columns: columns, Rows: rows}
}

// FromRecords builds a table from raw text records, inferring column kinds.
// A column is numeric when every non-empty cell parses as a number; otherwise
// every cell of that column keeps its original text.
func FromRecords(name string, header []string, records [][]string) Table {
	columns := make([]string, len(header))
	copy(columns, header)

	numeric := make([]bool, len(columns))
	for i := range numeric {
		numeric[i] = true
	}
	for _, rec := range records {
		for i := range columns {
			if i >= len(rec) || IsNullText(rec[i]) {
				continue
			}
			if numeric[i] && !reNumeric.MatchString(strings.TrimSpace(rec[i])) {
				numeric[i] = false
			}
		}
	}

	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		row := make([]any, len(columns))
		for i := range columns {
			if i >= len(rec) || IsNullText(rec[i]) {
				continue
			}
			if numeric[i] {
				f, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
				if err == nil && !math.IsInf(f, 0) {
					row[i] = f
				}
				continue
			}
			row[i] = rec[i]
		}
		rows = append(rows, row)
	}

	return NewTable(name, columns, rows)
}

// IsNullText reports whether the text is read as a null cell
func IsNullText(s string) bool {
	_, ok := nullMarkers[strings.TrimSpace(s)]
	return ok
}

// NumRows returns the number of rows
func (t Table) NumRows() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of a column or -1.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table has the named column
func (t Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Value returns the cell at the given row and column name
func (t Table) Value(row int, column string) any {
	idx := t.ColumnIndex(column)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return nil
	}
	return t.Rows[row][idx]
}

// IsNumericColumn reports whether every non-null cell of the column is a number.
// A column made only of nulls counts as numeric.
func (t Table) IsNumericColumn(idx int) bool {
	for _, row := range t.Rows {
		if row[idx] == nil {
			continue
		}
		if _, ok := row[idx].(float64); !ok {
			return false
		}
	}
	return true
}

// NumericColumns returns the numeric column names in table order
func (t Table) NumericColumns() []string {
	var cols []string
	for i, c := range t.Columns {
		if t.IsNumericColumn(i) {
			cols = append(cols, c)
		}
	}
	return cols
}

// TextColumns returns the text column names in table order
func (t Table) TextColumns() []string {
	var cols []string
	for i, c := range t.Columns {
		if !t.IsNumericColumn(i) {
			cols = append(cols, c)
		}
	}
	return cols
}

// Renamed returns a copy of the table with a new name.
func (t Table) Renamed(name string) Table {
	return Table{Name: name, Columns: t.Columns, Rows: t.Rows}
}

// Get returns the table with the given name
func (s TableSet) Get(name string) (Table, bool) {
	t, ok := s[name]
	return t, ok
}

// Names returns the table names in sorted order.
func (s TableSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// With returns a new set containing every table of s plus t.
func (s TableSet) With(t Table) TableSet {
	out := make(TableSet, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	out[t.Name] = t
	return out
}
