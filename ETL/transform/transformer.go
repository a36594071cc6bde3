package transform

import (
	"fmt"
	"time"

	"github.com/LilVoxy/fii_analytics/ETL/models"
	"github.com/LilVoxy/fii_analytics/ETL/utils"
)

// Transformer turns the raw tables of a year into its analysis tables
type Transformer struct {
	logger      *utils.ETLLogger
	mergeEngine *MergeEngine
	deriver     *AnalysisDeriver
}

// NewTransformer creates a Transformer with the default recipes and analyses
func NewTransformer(logger *utils.ETLLogger) *Transformer {
	return &Transformer{
		logger:      logger,
		mergeEngine: NewMergeEngine(DefaultRecipes(), logger),
		deriver:     NewAnalysisDeriver(logger),
	}
}

// AnalysisNames returns the names of every analysis the transformer can produce
func (t *Transformer) AnalysisNames() []string {
	return t.deriver.AnalysisNames()
}

// Transform normalizes, merges and derives. Every analysis is built in memory
// before returning, so a failure leaves nothing to export.
func (t *Transformer) Transform(year int, raw models.TableSet) (models.TableSet, error) {
	startTime := time.Now()
	t.logger.Info("Transforming %d tables for %d", len(raw), year)

	normalized, skipped := NormalizeColumns(raw)
	for _, s := range skipped {
		t.logger.Info("Warning: %s keeps column %s, %s already exists", s.Table, s.Alias, s.Canonical)
	}

	views, err := t.mergeEngine.Merge(year, normalized)
	if err != nil {
		return nil, fmt.Errorf("error merging tables: %w", err)
	}
	for _, name := range []string{ViewTerrenosHistorico, ViewContratos} {
		t.logger.Info("View %s built with %d rows", name, views[name].NumRows())
	}

	analyses, err := t.deriver.Derive(year, views)
	if err != nil {
		return nil, fmt.Errorf("error deriving analyses: %w", err)
	}

	t.logger.Info("Transform of %d finished in %v", year, time.Since(startTime))
	return analyses, nil
}
