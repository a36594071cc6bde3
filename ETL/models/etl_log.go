package models

import (
	"time"
)

// Run statuses stored in the run log
const (
	StatusInProgress = "in_progress"
	StatusSuccess    = "success"
	StatusFailed     = "failed"
	StatusSkipped    = "skipped"
)

// YearRunLog is one year's entry in the ETL run log
type YearRunLog struct {
	ID                   int64     `json:"id"`
	RunID                string    `json:"run_id"`
	Year                 int       `json:"year"`
	StartTime            time.Time `json:"start_time"`
	EndTime              time.Time `json:"end_time"`
	Status               string    `json:"status"` // "success", "failed", "skipped", "in_progress"
	AnalysesWritten      int       `json:"analyses_written"`
	ErrorMessage         string    `json:"error_message,omitempty"`
	ExecutionTimeSeconds float64   `json:"execution_time_seconds"`
}

// ETLLogRepository stores the per-year run log
type ETLLogRepository interface {
	// CreateETLLogTable creates the log table if it does not exist
	CreateETLLogTable() error

	// CreateLogEntry opens an in_progress entry for a year of a run
	CreateLogEntry(runID string, year int, startTime time.Time) (int64, error)

	// UpdateLogEntrySuccess closes an entry after the year's analyses were written
	UpdateLogEntrySuccess(id int64, endTime time.Time, analysesWritten int) error

	// UpdateLogEntryFailure closes an entry with an error
	UpdateLogEntryFailure(id int64, endTime time.Time, errorMessage string) error

	// UpdateLogEntrySkipped closes an entry for a year without source data
	UpdateLogEntrySkipped(id int64, endTime time.Time, reason string) error

	// GetLastRun returns the latest entry for a year, nil when there is none
	GetLastRun(year int) (*YearRunLog, error)

	// GetRunStats returns every entry of one run ordered by year
	GetRunStats(runID string) ([]YearRunLog, error)
}

// NoopETLLogRepository is used when no database is configured
type NoopETLLogRepository struct{}

func (NoopETLLogRepository) CreateETLLogTable() error { return nil }

func (NoopETLLogRepository) CreateLogEntry(string, int, time.Time) (int64, error) { return 0, nil }

func (NoopETLLogRepository) UpdateLogEntrySuccess(int64, time.Time, int) error { return nil }

func (NoopETLLogRepository) UpdateLogEntryFailure(int64, time.Time, string) error { return nil }

func (NoopETLLogRepository) UpdateLogEntrySkipped(int64, time.Time, string) error { return nil }

func (NoopETLLogRepository) GetLastRun(int) (*YearRunLog, error) { return nil, nil }

func (NoopETLLogRepository) GetRunStats(string) ([]YearRunLog, error) { return nil, nil }
