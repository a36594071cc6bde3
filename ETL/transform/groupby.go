package transform

import (
	"sort"

	"github.com/LilVoxy/fii_analytics/ETL/models"
)

// AggFunc is an aggregation applied to the cells of one group
type AggFunc int

const (
	// Mean skips nulls; an all-null group yields null
	Mean AggFunc = iota
	// Sum skips nulls; an all-null group yields 0
	Sum
)

// Aggregate names an aggregated column
type Aggregate struct {
	Column string
	Func   AggFunc
}

type group struct {
	keys []any
	rows []int
}

// GroupBy groups the rows of t by the key columns and aggregates the given
// columns. Rows with a null key are dropped. Groups come out sorted by key,
// numbers before text. Aggregated cells that are not numbers count as nulls.
// The output holds the keys followed by the aggregates, under their source names.
func GroupBy(t models.Table, keys []string, aggs ...Aggregate) (models.Table, error) {
	keyIdx, err := columnIndexes(t, keys)
	if err != nil {
		return models.Table{}, err
	}

	aggIdx := make([]int, len(aggs))
	for i, agg := range aggs {
		idx := t.ColumnIndex(agg.Column)
		if idx < 0 {
			return models.Table{}, &MissingColumnError{Table: t.Name, Column: agg.Column}
		}
		aggIdx[i] = idx
	}

	groups := make(map[string]*group)
	var order []*group
	for r, row := range t.Rows {
		values := make([]any, len(keyIdx))
		null := false
		for j, i := range keyIdx {
			if models.IsNull(row[i]) {
				null = true
				break
			}
			values[j] = row[i]
		}
		if null {
			continue
		}

		k := rowKey(values)
		g, ok := groups[k]
		if !ok {
			g = &group{keys: values}
			groups[k] = g
			order = append(order, g)
		}
		g.rows = append(g.rows, r)
	}

	sort.SliceStable(order, func(a, b int) bool {
		return compareKeys(order[a].keys, order[b].keys) < 0
	})

	columns := make([]string, 0, len(keys)+len(aggs))
	columns = append(columns, keys...)
	for _, agg := range aggs {
		columns = append(columns, agg.Column)
	}

	rows := make([][]any, 0, len(order))
	for _, g := range order {
		row := make([]any, 0, len(columns))
		row = append(row, g.keys...)
		for i, agg := range aggs {
			row = append(row, aggregate(t, g.rows, aggIdx[i], agg.Func))
		}
		rows = append(rows, row)
	}

	return models.NewTable(t.Name, columns, rows), nil
}

func aggregate(t models.Table, rows []int, col int, fn AggFunc) any {
	var sum float64
	var count int
	for _, r := range rows {
		if f, ok := models.Number(t.Rows[r][col]); ok {
			sum += f
			count++
		}
	}

	switch fn {
	case Sum:
		return sum
	default:
		if count == 0 {
			return nil
		}
		return sum / float64(count)
	}
}

func compareKeys(a, b []any) int {
	for i := range a {
		if c := compareCells(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

func compareCells(a, b any) int {
	fa, aNum := models.Float(a)
	fb, bNum := models.Float(b)
	switch {
	case aNum && bNum:
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case aNum:
		return -1
	case bNum:
		return 1
	}

	sa, sb := models.KeyText(a), models.KeyText(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}
