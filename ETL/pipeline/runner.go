package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/LilVoxy/fii_analytics/ETL/extractors"
	"github.com/LilVoxy/fii_analytics/ETL/metrics"
	"github.com/LilVoxy/fii_analytics/ETL/models"
	"github.com/LilVoxy/fii_analytics/ETL/utils"
)

// ErrRunInProgress is returned when a run is requested while another is active
var ErrRunInProgress = errors.New("a pipeline run is already in progress")

// Event types sent to OnEvent listeners
const (
	EventYearFinished = "year_finished"
	EventRunFinished  = "run_finished"
)

// Event describes the progress of a run
type Event struct {
	Type     string `json:"type"`
	RunID    string `json:"run_id"`
	Year     int    `json:"year,omitempty"`
	Status   string `json:"status,omitempty"`
	Analyses int    `json:"analyses"`
	Error    string `json:"error,omitempty"`
}

// YearResult is the outcome of one year
type YearResult struct {
	Year     int
	Status   string
	Analyses int
	Err      error
	Duration time.Duration
}

// RunSummary is the outcome of a run over every configured year
type RunSummary struct {
	RunID     string
	Years     []YearResult
	Succeeded int
	Failed    int
	Skipped   int
}

// Fetcher downloads and unpacks the raw archives
type Fetcher interface {
	FetchArchives(ctx context.Context) (extractors.FetchSummary, error)
}

// Extractor loads the raw tables of a year
type Extractor interface {
	Extract(year int) (models.TableSet, error)
}

// Transformer turns raw tables into analyses
type Transformer interface {
	Transform(year int, raw models.TableSet) (models.TableSet, error)
}

// Loader exports the analyses of a year
type Loader interface {
	Load(ctx context.Context, year int, analyses models.TableSet) (int, error)
}

// Runner processes the configured years one after another.
// A failing year is recorded and never stops the following ones.
type Runner struct {
	years       []int
	fetch       bool
	fetcher     Fetcher
	extractor   Extractor
	transformer Transformer
	loader      Loader
	logRepo     models.ETLLogRepository
	logger      *utils.ETLLogger
	metrics     *metrics.Metrics

	mu        sync.Mutex
	listeners []func(Event)
}

// Options configures a Runner
type Options struct {
	Years          []int
	FetchBeforeRun bool
	Fetcher        Fetcher
	Extractor      Extractor
	Transformer    Transformer
	Loader         Loader
	LogRepo        models.ETLLogRepository
	Logger         *utils.ETLLogger
	Metrics        *metrics.Metrics
}

// NewRunner creates a Runner. A nil LogRepo disables the run log.
func NewRunner(opts Options) *Runner {
	logRepo := opts.LogRepo
	if logRepo == nil {
		logRepo = models.NoopETLLogRepository{}
	}
	return &Runner{
		years:       append([]int(nil), opts.Years...),
		fetch:       opts.FetchBeforeRun && opts.Fetcher != nil,
		fetcher:     opts.Fetcher,
		extractor:   opts.Extractor,
		transformer: opts.Transformer,
		loader:      opts.Loader,
		logRepo:     logRepo,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
	}
}

// OnEvent registers a listener for run events
func (r *Runner) OnEvent(fn func(Event)) {
	r.listeners = append(r.listeners, fn)
}

// Run fetches the archives when configured and processes every year.
// A retrieval failure is logged and the run goes on with the local files.
func (r *Runner) Run(ctx context.Context) (RunSummary, error) {
	if !r.mu.TryLock() {
		return RunSummary{}, ErrRunInProgress
	}
	defer r.mu.Unlock()

	runID := uuid.NewString()
	startTime := time.Now()
	summary := RunSummary{RunID: runID}
	r.logger.LogRunStart(runID, r.years)

	if r.fetch {
		if _, err := r.fetcher.FetchArchives(ctx); err != nil {
			r.logger.Error("Retrieval failed, using local files: %v", err)
		}
	}

	for _, year := range r.years {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("run %s interrupted: %w", runID, err)
		}

		result := r.RunYear(ctx, runID, year)
		summary.Years = append(summary.Years, result)
		switch result.Status {
		case models.StatusSuccess:
			summary.Succeeded++
		case models.StatusSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
	}

	r.logger.LogRunComplete(runID, startTime, summary.Succeeded, summary.Failed, summary.Skipped)
	r.emit(Event{Type: EventRunFinished, RunID: runID, Analyses: summary.totalAnalyses()})
	return summary, nil
}

// RunYear processes one year and records it in the run log
func (r *Runner) RunYear(ctx context.Context, runID string, year int) YearResult {
	startTime := time.Now()
	r.logger.LogYearStart(year)

	logID, logErr := r.logRepo.CreateLogEntry(runID, year, startTime)
	if logErr != nil {
		r.logger.Error("Error creating run log entry: %v", logErr)
	}

	result := r.processYear(ctx, year)
	result.Duration = time.Since(startTime)
	endTime := time.Now()

	switch result.Status {
	case models.StatusSuccess:
		r.logger.LogYearComplete(year, result.Analyses, result.Duration)
	case models.StatusSkipped:
		r.logger.LogYearSkipped(year)
	default:
		r.logger.LogYearFailed(year, result.Err)
	}
	if logErr == nil {
		if err := r.closeLogEntry(logID, endTime, result); err != nil {
			r.logger.Error("Error updating run log entry: %v", err)
		}
	}

	r.metrics.ObserveYear(result.Status, result.Duration.Seconds())

	event := Event{
		Type:     EventYearFinished,
		RunID:    runID,
		Year:     year,
		Status:   result.Status,
		Analyses: result.Analyses,
	}
	if result.Err != nil {
		event.Error = result.Err.Error()
	}
	r.emit(event)

	return result
}

func (r *Runner) closeLogEntry(id int64, endTime time.Time, result YearResult) error {
	switch result.Status {
	case models.StatusSuccess:
		return r.logRepo.UpdateLogEntrySuccess(id, endTime, result.Analyses)
	case models.StatusSkipped:
		return r.logRepo.UpdateLogEntrySkipped(id, endTime, "no raw tables found")
	default:
		return r.logRepo.UpdateLogEntryFailure(id, endTime, result.Err.Error())
	}
}

func (r *Runner) processYear(ctx context.Context, year int) YearResult {
	result := YearResult{Year: year, Status: models.StatusFailed}

	raw, err := r.extractor.Extract(year)
	if err != nil {
		result.Err = fmt.Errorf("extract: %w", err)
		return result
	}
	if len(raw) == 0 {
		result.Status = models.StatusSkipped
		return result
	}

	analyses, err := r.transformer.Transform(year, raw)
	if err != nil {
		result.Err = fmt.Errorf("transform: %w", err)
		return result
	}

	written, err := r.loader.Load(ctx, year, analyses)
	result.Analyses = written
	if err != nil {
		result.Err = fmt.Errorf("load: %w", err)
		return result
	}

	result.Status = models.StatusSuccess
	return result
}

func (r *Runner) emit(e Event) {
	for _, fn := range r.listeners {
		fn(e)
	}
}

func (s RunSummary) totalAnalyses() int {
	total := 0
	for _, y := range s.Years {
		total += y.Analyses
	}
	return total
}
