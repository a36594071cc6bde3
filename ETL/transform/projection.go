package transform

import (
	"github.com/LilVoxy/fii_analytics/ETL/models"
)

// Projection declares the output columns of an analysis.
// Required columns must exist in the source; optional ones are kept only when present.
type Projection struct {
	Required []string
	Optional []string
}

// Resolve returns the columns to select from t, required columns first
func (p Projection) Resolve(t models.Table) ([]string, error) {
	cols := make([]string, 0, len(p.Required)+len(p.Optional))
	for _, c := range p.Required {
		if !t.HasColumn(c) {
			return nil, &MissingColumnError{Table: t.Name, Column: c}
		}
		cols = append(cols, c)
	}
	for _, c := range p.Optional {
		if t.HasColumn(c) {
			cols = append(cols, c)
		}
	}
	return cols, nil
}

// Apply resolves the projection and selects its columns
func (p Projection) Apply(t models.Table) (models.Table, error) {
	cols, err := p.Resolve(t)
	if err != nil {
		return models.Table{}, err
	}
	return Select(t, cols...)
}

// Select returns a table with only the given columns, in the given order
func Select(t models.Table, columns ...string) (models.Table, error) {
	idx, err := columnIndexes(t, columns)
	if err != nil {
		return models.Table{}, err
	}

	rows := make([][]any, len(t.Rows))
	for r, row := range t.Rows {
		out := make([]any, len(idx))
		for j, i := range idx {
			out[j] = row[i]
		}
		rows[r] = out
	}

	cols := make([]string, len(columns))
	copy(cols, columns)
	return models.NewTable(t.Name, cols, rows), nil
}
