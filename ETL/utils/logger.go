package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// ETLLogger is the logger of the ETL pipeline
type ETLLogger struct {
	infoLogger  *log.Logger
	errorLogger *log.Logger
	debugLogger *log.Logger
	file        *os.File
	isVerbose   bool
}

// NewETLLogger creates a logger writing to stdout and, when logFile is set, to that file
func NewETLLogger(logFile string, verbose bool) (*ETLLogger, error) {
	var out io.Writer = os.Stdout
	var file *os.File

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("could not open log file %s: %w", logFile, err)
		}
		file = f
		out = io.MultiWriter(os.Stdout, f)
	}

	return newETLLogger(out, file, verbose), nil
}

// NewWriterLogger creates a logger writing to w only; used by tests and embedded runs
func NewWriterLogger(w io.Writer, verbose bool) *ETLLogger {
	return newETLLogger(w, nil, verbose)
}

func newETLLogger(out io.Writer, file *os.File, verbose bool) *ETLLogger {
	return &ETLLogger{
		infoLogger:  log.New(out, "INFO: ", log.Ldate|log.Ltime),
		errorLogger: log.New(out, "ERROR: ", log.Ldate|log.Ltime),
		debugLogger: log.New(out, "DEBUG: ", log.Ldate|log.Ltime),
		file:        file,
		isVerbose:   verbose,
	}
}

// Close closes the log file
func (l *ETLLogger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Info logs an informational message
func (l *ETLLogger) Info(format string, v ...interface{}) {
	l.infoLogger.Println(fmt.Sprintf(format, v...))
}

// Error logs an error message
func (l *ETLLogger) Error(format string, v ...interface{}) {
	l.errorLogger.Println(fmt.Sprintf(format, v...))
}

// Debug logs a debug message, only in verbose mode
func (l *ETLLogger) Debug(format string, v ...interface{}) {
	if !l.isVerbose {
		return
	}
	l.debugLogger.Println(fmt.Sprintf(format, v...))
}

// LogRunStart logs the start of a run over several years
func (l *ETLLogger) LogRunStart(runID string, years []int) {
	l.Info("Starting ETL run %s for %d years (%d-%d)", runID, len(years), first(years), last(years))
}

// LogRunComplete logs the end of a run
func (l *ETLLogger) LogRunComplete(runID string, startTime time.Time, succeeded, failed, skipped int) {
	l.Info("ETL run %s finished in %v", runID, time.Since(startTime))
	l.Info("Years: %d succeeded, %d failed, %d skipped", succeeded, failed, skipped)
}

// LogYearStart logs the start of a year
func (l *ETLLogger) LogYearStart(year int) {
	l.Info("=== Processing year %d ===", year)
}

// LogYearComplete logs the end of a year
func (l *ETLLogger) LogYearComplete(year int, analyses int, duration time.Duration) {
	l.Info("Year %d done: %d analyses exported in %v", year, analyses, duration)
}

// LogYearSkipped logs a year with no source data
func (l *ETLLogger) LogYearSkipped(year int) {
	l.Info("No data found for %d. Skipping...", year)
}

// LogYearFailed logs a year that could not be processed
func (l *ETLLogger) LogYearFailed(year int, err error) {
	l.Error("Error processing year %d: %v", year, err)
}

func first(years []int) int {
	if len(years) == 0 {
		return 0
	}
	return years[0]
}

func last(years []int) int {
	if len(years) == 0 {
		return 0
	}
	return years[len(years)-1]
}
