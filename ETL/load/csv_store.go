package load

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/LilVoxy/fii_analytics/ETL/models"
	"github.com/LilVoxy/fii_analytics/processor"
)

// CSVStore keeps every analysis as a CSV file in one directory
type CSVStore struct {
	dir string
}

// NewCSVStore creates a store rooted at dir
func NewCSVStore(dir string) *CSVStore {
	return &CSVStore{dir: dir}
}

// Path returns the file that holds an analysis
func (s *CSVStore) Path(name string, year int) string {
	return filepath.Join(s.dir, FileName(name, year))
}

// Save writes the table to a temporary file and renames it into place
func (s *CSVStore) Save(ctx context.Context, name string, year int, table models.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}

	target := s.Path(name, year)
	tmp, err := os.CreateTemp(s.dir, filepath.Base(target)+".*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := processor.WriteCSV(tmp, table); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("error writing %s: %w", filepath.Base(target), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("error closing %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("error renaming %s: %w", tmpPath, err)
	}

	return nil
}

// Load reads an analysis back. A missing file is a *NotFoundError.
func (s *CSVStore) Load(ctx context.Context, name string, year int) (models.Table, error) {
	if err := ctx.Err(); err != nil {
		return models.Table{}, err
	}

	f, err := os.Open(s.Path(name, year))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.Table{}, &NotFoundError{Name: name, Year: year}
		}
		return models.Table{}, fmt.Errorf("error opening analysis %s: %w", name, err)
	}
	defer f.Close()

	table, err := processor.ReadCSV(f, name)
	if err != nil {
		return models.Table{}, fmt.Errorf("error reading %s: %w", FileName(name, year), err)
	}
	return table, nil
}
