package extractors

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/LilVoxy/fii_analytics/ETL/config"
	"github.com/LilVoxy/fii_analytics/ETL/metrics"
	"github.com/LilVoxy/fii_analytics/ETL/models"
	"github.com/LilVoxy/fii_analytics/ETL/utils"
)

// Extractor coordinates archive retrieval and raw table loading
type Extractor struct {
	logger           *utils.ETLLogger
	archiveExtractor *ArchiveExtractor
	tableExtractor   *TableExtractor
}

// NewExtractor creates a new Extractor from the pipeline configuration
func NewExtractor(cfg config.ETLConfig, logger *utils.ETLLogger, m *metrics.Metrics) *Extractor {
	client := &http.Client{Timeout: cfg.HTTPTimeout}
	return &Extractor{
		logger:           logger,
		archiveExtractor: NewArchiveExtractor(cfg.BaseURL, cfg.SourceDir, client, logger, m),
		tableExtractor:   NewTableExtractor(cfg.SourceDir, logger),
	}
}

// FetchArchives downloads and unpacks every published archive
func (e *Extractor) FetchArchives(ctx context.Context) (FetchSummary, error) {
	startTime := time.Now()
	e.logger.Info("Fetching archives")

	summary, err := e.archiveExtractor.FetchAll(ctx)
	if err != nil {
		e.logger.Error("Error fetching archives: %v", err)
		return summary, fmt.Errorf("error fetching archives: %w", err)
	}

	e.logger.Info("Archives: %d found, %d fetched, %d failed in %v",
		summary.Links, summary.Fetched, summary.Failed, time.Since(startTime))
	return summary, nil
}

// Extract loads the raw tables of one year
func (e *Extractor) Extract(year int) (models.TableSet, error) {
	startTime := time.Now()

	tables, err := e.tableExtractor.ExtractYear(year)
	if err != nil {
		return nil, fmt.Errorf("error extracting year %d: %w", year, err)
	}

	e.logger.Debug("Extracted %d tables for %d in %v", len(tables), year, time.Since(startTime))
	return tables, nil
}
