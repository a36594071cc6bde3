package transform

import "fmt"

// MissingTableError is returned when a merge recipe names a table that is not
// present in the year's raw table set
type MissingTableError struct {
	Year   int
	Recipe string
	Table  string
}

func (e *MissingTableError) Error() string {
	return fmt.Sprintf("year %d: recipe %s: missing table %s", e.Year, e.Recipe, e.Table)
}

// MissingColumnError is returned when a key, aggregated or required column is absent
type MissingColumnError struct {
	Table  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("table %s: missing column %s", e.Table, e.Column)
}

// DuplicateColumnError is returned when a join would produce two columns with the same name
type DuplicateColumnError struct {
	Table  string
	Column string
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("table %s: duplicate column %s", e.Table, e.Column)
}
