package pipeline

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/LilVoxy/fii_analytics/ETL/config"
	"github.com/LilVoxy/fii_analytics/ETL/extractors"
	"github.com/LilVoxy/fii_analytics/ETL/load"
	"github.com/LilVoxy/fii_analytics/ETL/metrics"
	"github.com/LilVoxy/fii_analytics/ETL/models"
	"github.com/LilVoxy/fii_analytics/ETL/transform"
	"github.com/LilVoxy/fii_analytics/ETL/utils"
)

// Pipeline bundles a Runner with the resources it owns
type Pipeline struct {
	*Runner
	Config    config.ETLConfig
	Extractor *extractors.Extractor
	Store     *load.CSVStore
	LogRepo   models.ETLLogRepository

	db     *sql.DB
	logger *utils.ETLLogger
}

// New wires the pipeline from the configuration. When a database driver is
// configured the run log and the analysis mirror are kept there.
func New(ctx context.Context, cfg config.ETLConfig, logger *utils.ETLLogger, m *metrics.Metrics) (*Pipeline, error) {
	logger.Info("Initializing pipeline")

	var (
		db      *sql.DB
		mirror  load.AnalysisStore
		logRepo models.ETLLogRepository = models.NoopETLLogRepository{}
	)

	if cfg.Database.Driver != "" {
		var err error
		db, err = config.ConnectDatabase(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("error connecting to database: %w", err)
		}

		repo := models.NewSQLETLLogRepository(db, cfg.Database.Driver)
		if err := repo.CreateETLLogTable(); err != nil {
			db.Close()
			return nil, fmt.Errorf("error creating run log table: %w", err)
		}
		logRepo = repo

		sqlStore := load.NewSQLStore(db, cfg.Database.Driver)
		if err := sqlStore.CreateSnapshotTable(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("error creating snapshot table: %w", err)
		}
		mirror = sqlStore
	}

	extractor := extractors.NewExtractor(cfg, logger, m)
	store := load.NewCSVStore(cfg.OutputDir)

	runner := NewRunner(Options{
		Years:          cfg.Years,
		FetchBeforeRun: cfg.FetchBeforeRun,
		Fetcher:        extractor,
		Extractor:      extractor,
		Transformer:    transform.NewTransformer(logger),
		Loader:         load.NewLoadManager(store, mirror, logger, m),
		LogRepo:        logRepo,
		Logger:         logger,
		Metrics:        m,
	})

	return &Pipeline{
		Runner:    runner,
		Config:    cfg,
		Extractor: extractor,
		Store:     store,
		LogRepo:   logRepo,
		db:        db,
		logger:    logger,
	}, nil
}

// Close releases the database connection
func (p *Pipeline) Close() error {
	p.logger.Info("Shutting down pipeline")
	return config.CloseDatabase(p.db)
}
