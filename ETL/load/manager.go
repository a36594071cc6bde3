package load

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/LilVoxy/fii_analytics/ETL/metrics"
	"github.com/LilVoxy/fii_analytics/ETL/models"
	"github.com/LilVoxy/fii_analytics/ETL/utils"
)

// LoadManager exports the analyses of a year to the primary store and,
// when one is configured, to a mirror
type LoadManager struct {
	primary AnalysisStore
	mirror  AnalysisStore
	logger  *utils.ETLLogger
	metrics *metrics.Metrics
}

// NewLoadManager creates a LoadManager. mirror may be nil.
func NewLoadManager(primary, mirror AnalysisStore, logger *utils.ETLLogger, m *metrics.Metrics) *LoadManager {
	return &LoadManager{
		primary: primary,
		mirror:  mirror,
		logger:  logger,
		metrics: m,
	}
}

// Load writes every analysis of the year and returns how many reached the
// primary store. A mirror failure is logged and does not fail the year.
func (m *LoadManager) Load(ctx context.Context, year int, analyses models.TableSet) (int, error) {
	startTime := time.Now()
	written := 0

	for _, name := range analyses.Names() {
		table := analyses[name]

		if err := m.primary.Save(ctx, name, year, table); err != nil {
			m.logger.Error("Error saving analysis %s for %d: %v", name, year, err)
			return written, fmt.Errorf("error saving analysis %s: %w", name, err)
		}
		written++
		m.metrics.SetAnalysisRows(name, strconv.Itoa(year), table.NumRows())
		m.logger.Debug("Saved %s (%d rows)", FileName(name, year), table.NumRows())

		if m.mirror == nil {
			continue
		}
		if err := m.mirror.Save(ctx, name, year, table); err != nil {
			m.logger.Error("Error mirroring analysis %s for %d: %v", name, year, err)
		}
	}

	m.logger.Info("Exported %d analyses for %d in %v", written, year, time.Since(startTime))
	return written, nil
}
