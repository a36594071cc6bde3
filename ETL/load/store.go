package load

import (
	"context"
	"errors"
	"fmt"

	"github.com/LilVoxy/fii_analytics/ETL/models"
)

// ErrNotFound is the sentinel for an analysis that was never exported
var ErrNotFound = errors.New("analysis not found")

// NotFoundError reports the missing (analysis, year) pair and the file it maps to
type NotFoundError struct {
	Name string
	Year int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", FileName(e.Name, e.Year), ErrNotFound)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// AnalysisStore persists analysis tables keyed by analysis name and year
type AnalysisStore interface {
	Save(ctx context.Context, name string, year int, table models.Table) error
	Load(ctx context.Context, name string, year int) (models.Table, error)
}

// FileName returns the exported file name of an analysis
func FileName(name string, year int) string {
	return fmt.Sprintf("analise_%s_%d.csv", name, year)
}
