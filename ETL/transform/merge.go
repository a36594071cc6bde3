package transform

import (
	"fmt"
	"strings"
	"time"

	"github.com/LilVoxy/fii_analytics/ETL/models"
	"github.com/LilVoxy/fii_analytics/ETL/utils"
)

const (
	leftSuffix  = "_x"
	rightSuffix = "_y"
)

// JoinStep is one left-outer join of a recipe
type JoinStep struct {
	Right     string
	LeftKeys  []string
	RightKeys []string
}

// Recipe builds a merged view from a driving table and a chain of joins.
// Each step joins the output of the previous one.
type Recipe struct {
	Name  string
	Left  string
	Steps []JoinStep
}

// On returns a join step whose key columns have the same names on both sides
func On(right string, keys ...string) JoinStep {
	return JoinStep{Right: right, LeftKeys: keys, RightKeys: keys}
}

// MergeEngine builds the merged views of a year
type MergeEngine struct {
	recipes []Recipe
	logger  *utils.ETLLogger
}

// NewMergeEngine creates a MergeEngine with the given recipes
func NewMergeEngine(recipes []Recipe, logger *utils.ETLLogger) *MergeEngine {
	return &MergeEngine{
		recipes: recipes,
		logger:  logger,
	}
}

// Merge builds every view. The first recipe that fails aborts the year.
func (m *MergeEngine) Merge(year int, tables models.TableSet) (models.TableSet, error) {
	startTime := time.Now()
	views := make(models.TableSet, len(m.recipes))

	for _, recipe := range m.recipes {
		view, err := BuildView(year, recipe, tables)
		if err != nil {
			return nil, err
		}
		m.logger.Debug("View %s: %d rows, %d columns", recipe.Name, view.NumRows(), len(view.Columns))
		views[recipe.Name] = view
	}

	m.logger.Debug("Built %d views for %d in %v", len(views), year, time.Since(startTime))
	return views, nil
}

// BuildView applies one recipe to the year's tables
func BuildView(year int, recipe Recipe, tables models.TableSet) (models.Table, error) {
	left, ok := tables.Get(recipe.Left)
	if !ok {
		return models.Table{}, &MissingTableError{Year: year, Recipe: recipe.Name, Table: recipe.Left}
	}

	for _, step := range recipe.Steps {
		right, ok := tables.Get(step.Right)
		if !ok {
			return models.Table{}, &MissingTableError{Year: year, Recipe: recipe.Name, Table: step.Right}
		}

		joined, err := LeftJoin(left, right, step.LeftKeys, step.RightKeys)
		if err != nil {
			return models.Table{}, fmt.Errorf("recipe %s: %w", recipe.Name, err)
		}
		left = joined
	}

	return left.Renamed(recipe.Name), nil
}

// LeftJoin performs a left-outer join.
//
// Every left row is emitted once per matching right row, in right table order,
// or once with nulls when nothing matches. A right key column whose name equals
// its paired left key is dropped. Other columns present on both sides get the
// "_x" and "_y" suffixes. Rows with a null key never match.
func LeftJoin(left, right models.Table, leftKeys, rightKeys []string) (models.Table, error) {
	if len(leftKeys) != len(rightKeys) || len(leftKeys) == 0 {
		return models.Table{}, fmt.Errorf("join %s with %s: key lists must be non-empty and of equal length", left.Name, right.Name)
	}

	leftIdx, err := columnIndexes(left, leftKeys)
	if err != nil {
		return models.Table{}, err
	}
	rightIdx, err := columnIndexes(right, rightKeys)
	if err != nil {
		return models.Table{}, err
	}

	// right columns that are merged into their left key
	dropped := make(map[int]bool, len(rightKeys))
	for i, rk := range rightKeys {
		if rk == leftKeys[i] {
			dropped[rightIdx[i]] = true
		}
	}

	var rightCols []int
	rightNames := make(map[string]bool)
	for i, c := range right.Columns {
		if dropped[i] {
			continue
		}
		rightCols = append(rightCols, i)
		rightNames[c] = true
	}

	leftNames := make(map[string]bool, len(left.Columns))
	for _, c := range left.Columns {
		leftNames[c] = true
	}

	columns := make([]string, 0, len(left.Columns)+len(rightCols))
	for _, c := range left.Columns {
		if rightNames[c] {
			c += leftSuffix
		}
		columns = append(columns, c)
	}
	for _, i := range rightCols {
		c := right.Columns[i]
		if leftNames[c] {
			c += rightSuffix
		}
		columns = append(columns, c)
	}

	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if seen[c] {
			return models.Table{}, &DuplicateColumnError{Table: left.Name, Column: c}
		}
		seen[c] = true
	}

	index := make(map[string][]int)
	for r, row := range right.Rows {
		key, ok := joinKey(row, rightIdx)
		if !ok {
			continue
		}
		index[key] = append(index[key], r)
	}

	rows := make([][]any, 0, len(left.Rows))
	for _, lrow := range left.Rows {
		var matches []int
		if key, ok := joinKey(lrow, leftIdx); ok {
			matches = index[key]
		}

		if len(matches) == 0 {
			row := make([]any, len(columns))
			copy(row, lrow)
			rows = append(rows, row)
			continue
		}

		for _, r := range matches {
			row := make([]any, len(columns))
			copy(row, lrow)
			for j, i := range rightCols {
				row[len(lrow)+j] = right.Rows[r][i]
			}
			rows = append(rows, row)
		}
	}

	return models.NewTable(left.Name, columns, rows), nil
}

func columnIndexes(t models.Table, columns []string) ([]int, error) {
	idx := make([]int, len(columns))
	for i, c := range columns {
		idx[i] = t.ColumnIndex(c)
		if idx[i] < 0 {
			return nil, &MissingColumnError{Table: t.Name, Column: c}
		}
	}
	return idx, nil
}

// joinKey builds the composite key of a row; false when any part is null
func joinKey(row []any, idx []int) (string, bool) {
	parts := make([]string, len(idx))
	for i, c := range idx {
		if models.IsNull(row[c]) {
			return "", false
		}
		parts[i] = models.KeyText(row[c])
	}
	return strings.Join(parts, "\x1f"), true
}
