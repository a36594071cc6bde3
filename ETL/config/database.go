package config

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// ErrDatabaseDisabled is returned when no database driver is configured
var ErrDatabaseDisabled = errors.New("database is not configured")

// DSN builds the data source name for the configured driver
func (c DatabaseConfig) DSN() (string, error) {
	switch c.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
			c.User,
			c.Password,
			c.Host,
			c.Port,
			c.DBName,
		), nil
	case "sqlite":
		return c.Path, nil
	case "":
		return "", ErrDatabaseDisabled
	default:
		return "", fmt.Errorf("unsupported database driver: %q", c.Driver)
	}
}

// ConnectDatabase opens and pings the configured database
func ConnectDatabase(config DatabaseConfig) (*sql.DB, error) {
	dsn, err := config.DSN()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(config.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening %s database: %w", config.Driver, err)
	}

	if config.Driver == "sqlite" {
		// SQLite allows a single writer
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	}
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not connect to %s database: %w", config.Driver, err)
	}

	return db, nil
}

// CloseDatabase closes the database connection if one is open
func CloseDatabase(db *sql.DB) error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("error closing database connection: %w", err)
	}
	return nil
}
