package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLETLLogRepository implements ETLLogRepository on MySQL or SQLite
type SQLETLLogRepository struct {
	db     *sql.DB
	driver string
}

// NewSQLETLLogRepository creates a repository; driver selects the DDL dialect
func NewSQLETLLogRepository(db *sql.DB, driver string) *SQLETLLogRepository {
	return &SQLETLLogRepository{
		db:     db,
		driver: driver,
	}
}

var createLogTableDDL = map[string][]string{
	"mysql": {`
	CREATE TABLE IF NOT EXISTS etl_year_run_log (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		run_id VARCHAR(36) NOT NULL,
		year INT NOT NULL,
		start_time DATETIME(6) NOT NULL,
		end_time DATETIME(6) NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'in_progress',
		analyses_written INT DEFAULT 0,
		error_message TEXT,
		execution_time_seconds DOUBLE,
		INDEX idx_etl_year_run_log_year (year),
		INDEX idx_etl_year_run_log_run (run_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`},
	"sqlite": {`
	CREATE TABLE IF NOT EXISTS etl_year_run_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		start_time DATETIME NOT NULL,
		end_time DATETIME NULL,
		status TEXT NOT NULL DEFAULT 'in_progress',
		analyses_written INTEGER DEFAULT 0,
		error_message TEXT,
		execution_time_seconds REAL
	);`,
		`CREATE INDEX IF NOT EXISTS idx_etl_year_run_log_year ON etl_year_run_log(year)`,
		`CREATE INDEX IF NOT EXISTS idx_etl_year_run_log_run ON etl_year_run_log(run_id)`,
	},
}

// CreateETLLogTable creates the run log table if it does not exist
func (r *SQLETLLogRepository) CreateETLLogTable() error {
	statements, ok := createLogTableDDL[r.driver]
	if !ok {
		return fmt.Errorf("unsupported database driver for run log: %q", r.driver)
	}

	for _, stmt := range statements {
		if _, err := r.db.Exec(stmt); err != nil {
			return fmt.Errorf("error creating etl_year_run_log table: %w", err)
		}
	}

	return nil
}

// CreateLogEntry opens an in_progress entry for a year
func (r *SQLETLLogRepository) CreateLogEntry(runID string, year int, startTime time.Time) (int64, error) {
	query := `
	INSERT INTO etl_year_run_log (run_id, year, start_time, status)
	VALUES (?, ?, ?, 'in_progress')
	`

	result, err := r.db.Exec(query, runID, year, startTime.UTC())
	if err != nil {
		return 0, fmt.Errorf("error creating run log entry for %d: %w", year, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error reading id of the created entry: %w", err)
	}

	return id, nil
}

// UpdateLogEntrySuccess closes an entry after the year's analyses were written
func (r *SQLETLLogRepository) UpdateLogEntrySuccess(id int64, endTime time.Time, analysesWritten int) error {
	executionTime, err := r.executionTime(id, endTime)
	if err != nil {
		return err
	}

	query := `
	UPDATE etl_year_run_log
	SET
		end_time = ?,
		status = 'success',
		analyses_written = ?,
		execution_time_seconds = ?
	WHERE id = ?
	`

	if _, err := r.db.Exec(query, endTime.UTC(), analysesWritten, executionTime, id); err != nil {
		return fmt.Errorf("error updating run log entry: %w", err)
	}

	return nil
}

// UpdateLogEntryFailure closes an entry with an error
func (r *SQLETLLogRepository) UpdateLogEntryFailure(id int64, endTime time.Time, errorMessage string) error {
	return r.closeWithMessage(id, endTime, StatusFailed, errorMessage)
}

// UpdateLogEntrySkipped closes an entry for a year without source data
func (r *SQLETLLogRepository) UpdateLogEntrySkipped(id int64, endTime time.Time, reason string) error {
	return r.closeWithMessage(id, endTime, StatusSkipped, reason)
}

func (r *SQLETLLogRepository) closeWithMessage(id int64, endTime time.Time, status, message string) error {
	executionTime, err := r.executionTime(id, endTime)
	if err != nil {
		return err
	}

	query := `
	UPDATE etl_year_run_log
	SET
		end_time = ?,
		status = ?,
		error_message = ?,
		execution_time_seconds = ?
	WHERE id = ?
	`

	if _, err := r.db.Exec(query, endTime.UTC(), status, message, executionTime, id); err != nil {
		return fmt.Errorf("error updating run log entry: %w", err)
	}

	return nil
}

func (r *SQLETLLogRepository) executionTime(id int64, endTime time.Time) (float64, error) {
	var startTime time.Time
	err := r.db.QueryRow("SELECT start_time FROM etl_year_run_log WHERE id = ?", id).Scan(&startTime)
	if err != nil {
		return 0, fmt.Errorf("error reading start time of run log entry %d: %w", id, err)
	}
	return endTime.Sub(startTime).Seconds(), nil
}

const selectRunLogColumns = `
	SELECT
		id, run_id, year, start_time, end_time, status,
		IFNULL(analyses_written, 0), IFNULL(error_message, ''), IFNULL(execution_time_seconds, 0)
	FROM etl_year_run_log
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRunLog(row rowScanner) (YearRunLog, error) {
	var entry YearRunLog
	var endTime sql.NullTime
	err := row.Scan(
		&entry.ID, &entry.RunID, &entry.Year, &entry.StartTime, &endTime, &entry.Status,
		&entry.AnalysesWritten, &entry.ErrorMessage, &entry.ExecutionTimeSeconds,
	)
	if err != nil {
		return entry, err
	}
	if endTime.Valid {
		entry.EndTime = endTime.Time
	}
	return entry, nil
}

// GetLastRun returns the latest entry for a year
func (r *SQLETLLogRepository) GetLastRun(year int) (*YearRunLog, error) {
	row := r.db.QueryRow(selectRunLogColumns+`
	WHERE year = ?
	ORDER BY id DESC
	LIMIT 1
	`, year)

	entry, err := scanRunLog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // year never processed
		}
		return nil, fmt.Errorf("error reading last run of %d: %w", year, err)
	}

	return &entry, nil
}

// GetRunStats returns every entry of one run ordered by year
func (r *SQLETLLogRepository) GetRunStats(runID string) ([]YearRunLog, error) {
	rows, err := r.db.Query(selectRunLogColumns+`
	WHERE run_id = ?
	ORDER BY year ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("error querying run %s: %w", runID, err)
	}
	defer rows.Close()

	var logs []YearRunLog
	for rows.Next() {
		entry, err := scanRunLog(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning run log entry: %w", err)
		}
		logs = append(logs, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run log entries: %w", err)
	}

	return logs, nil
}
