package load

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/LilVoxy/fii_analytics/ETL/models"
	"github.com/LilVoxy/fii_analytics/processor"
)

var createSnapshotTableDDL = map[string]string{
	"mysql": `
	CREATE TABLE IF NOT EXISTS analysis_snapshot (
		name VARCHAR(64) NOT NULL,
		year INT NOT NULL,
		row_count INT NOT NULL,
		payload LONGBLOB NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		PRIMARY KEY (name, year)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	"sqlite": `
	CREATE TABLE IF NOT EXISTS analysis_snapshot (
		name TEXT NOT NULL,
		year INTEGER NOT NULL,
		row_count INTEGER NOT NULL,
		payload BLOB NOT NULL,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (name, year)
	);`,
}

// SQLStore mirrors analyses into a SQL table as snappy-compressed CSV payloads
type SQLStore struct {
	db     *sql.DB
	driver string
}

// NewSQLStore creates a store on an open database; driver selects the DDL dialect
func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{
		db:     db,
		driver: driver,
	}
}

// CreateSnapshotTable creates the snapshot table if it does not exist
func (s *SQLStore) CreateSnapshotTable(ctx context.Context) error {
	ddl, ok := createSnapshotTableDDL[s.driver]
	if !ok {
		return fmt.Errorf("unsupported database driver for analysis store: %q", s.driver)
	}
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("error creating analysis_snapshot table: %w", err)
	}
	return nil
}

// Save replaces the snapshot of (name, year) in one transaction
func (s *SQLStore) Save(ctx context.Context, name string, year int, table models.Table) error {
	payload, err := processor.PackTable(table)
	if err != nil {
		return fmt.Errorf("error packing analysis %s: %w", name, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM analysis_snapshot WHERE name = ? AND year = ?`,
		name, year,
	); err != nil {
		tx.Rollback()
		return fmt.Errorf("error deleting snapshot %s/%d: %w", name, year, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO analysis_snapshot (name, year, row_count, payload, updated_at) VALUES (?, ?, ?, ?, ?)`,
		name, year, table.NumRows(), payload, time.Now().UTC(),
	); err != nil {
		tx.Rollback()
		return fmt.Errorf("error inserting snapshot %s/%d: %w", name, year, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing snapshot %s/%d: %w", name, year, err)
	}
	return nil
}

// Load reads a snapshot back. A missing row is a *NotFoundError.
func (s *SQLStore) Load(ctx context.Context, name string, year int) (models.Table, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM analysis_snapshot WHERE name = ? AND year = ?`,
		name, year,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Table{}, &NotFoundError{Name: name, Year: year}
		}
		return models.Table{}, fmt.Errorf("error reading snapshot %s/%d: %w", name, year, err)
	}

	table, err := processor.UnpackTable(payload, name)
	if err != nil {
		return models.Table{}, fmt.Errorf("error unpacking snapshot %s/%d: %w", name, year, err)
	}
	return table, nil
}
