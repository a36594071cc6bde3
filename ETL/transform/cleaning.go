package transform

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/LilVoxy/fii_analytics/ETL/models"
)

// DecimalPlaces is the precision of every exported number
const DecimalPlaces = 2

// Round2 rounds half to even at two decimal places
func Round2(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	rounded, _ := decimal.NewFromFloat(f).RoundBank(DecimalPlaces).Float64()
	return rounded
}

// Clean drops the rows with a null in any required column and rounds every
// numeric column. The result has no index column: rows are numbered by position.
func Clean(t models.Table, required ...string) (models.Table, error) {
	t, err := DropNulls(t, required...)
	if err != nil {
		return models.Table{}, err
	}
	return RoundNumeric(t), nil
}

// DropNulls keeps the rows where every listed column is non-null
func DropNulls(t models.Table, columns ...string) (models.Table, error) {
	idx, err := columnIndexes(t, columns)
	if err != nil {
		return models.Table{}, err
	}
	if len(idx) == 0 {
		return t, nil
	}

	return Filter(t, func(row []any) bool {
		for _, i := range idx {
			if models.IsNull(row[i]) {
				return false
			}
		}
		return true
	}), nil
}

// DropAnyNulls keeps the rows without any null cell
func DropAnyNulls(t models.Table) models.Table {
	return Filter(t, func(row []any) bool {
		for _, v := range row {
			if models.IsNull(v) {
				return false
			}
		}
		return true
	})
}

// RoundNumeric rounds the cells of every numeric column
func RoundNumeric(t models.Table) models.Table {
	numeric := make([]bool, len(t.Columns))
	for i := range t.Columns {
		numeric[i] = t.IsNumericColumn(i)
	}

	rows := make([][]any, len(t.Rows))
	for r, row := range t.Rows {
		out := make([]any, len(row))
		copy(out, row)
		for i, v := range out {
			if !numeric[i] {
				continue
			}
			if f, ok := models.Float(v); ok {
				out[i] = Round2(f)
			}
		}
		rows[r] = out
	}

	return models.NewTable(t.Name, t.Columns, rows)
}

// Filter keeps the rows for which keep returns true
func Filter(t models.Table, keep func(row []any) bool) models.Table {
	rows := make([][]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		if keep(row) {
			rows = append(rows, row)
		}
	}
	return models.NewTable(t.Name, t.Columns, rows)
}

// DropDuplicates keeps the first occurrence of every distinct row
func DropDuplicates(t models.Table) models.Table {
	seen := make(map[string]bool, len(t.Rows))
	return Filter(t, func(row []any) bool {
		key := rowKey(row)
		if seen[key] {
			return false
		}
		seen[key] = true
		return true
	})
}

// MapColumn returns a copy of t where fn replaced every cell of the column
func MapColumn(t models.Table, column string, fn func(v any) any) (models.Table, error) {
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return models.Table{}, &MissingColumnError{Table: t.Name, Column: column}
	}

	rows := make([][]any, len(t.Rows))
	for r, row := range t.Rows {
		out := make([]any, len(row))
		copy(out, row)
		out[idx] = fn(row[idx])
		rows[r] = out
	}
	return models.NewTable(t.Name, t.Columns, rows), nil
}

// CoerceNumeric converts the listed columns to numbers. Numeric text is parsed
// and any other value becomes null.
func CoerceNumeric(t models.Table, columns ...string) (models.Table, error) {
	for _, column := range columns {
		var err error
		t, err = MapColumn(t, column, func(v any) any {
			if f, ok := models.Number(v); ok {
				return f
			}
			return nil
		})
		if err != nil {
			return models.Table{}, err
		}
	}
	return t, nil
}

// rowKey builds a type-aware identity for a row, so 1.0 and "1" differ
func rowKey(row []any) string {
	var b strings.Builder
	for _, v := range row {
		b.WriteString(cellKey(v))
		b.WriteByte('\x1f')
	}
	return b.String()
}

func cellKey(v any) string {
	switch {
	case models.IsNull(v):
		return "z:"
	case isNumber(v):
		return "n:" + models.KeyText(v)
	default:
		return "s:" + models.KeyText(v)
	}
}

func isNumber(v any) bool {
	_, ok := models.Float(v)
	return ok
}
