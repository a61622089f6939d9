// Package database persists the catalog, evaluation runs and a log of parsed
// orders with gorm. SQLite is the default driver; PostgreSQL is supported.
package database

import (
	"errors"
	"fmt"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"              // SQLite driver
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// Supported drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Store wraps the database connection
type Store struct {
	db *gorm.DB
}

// Open connects to the database and migrates the schema
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case "", "sqlite":
		driver = DriverSQLite
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if driver == DriverSQLite {
		// every connection to an in-memory database is a separate database
		db.DB().SetMaxOpenConns(1)
	}

	s := &Store{db: db}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates or updates every table
func (s *Store) Migrate() error {
	err := s.db.AutoMigrate(
		&RestaurantRecord{},
		&MenuItemRecord{},
		&SizeRecord{},
		&EvaluationRecord{},
		&ParseRecord{},
	).Error
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// DB returns the database instance
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
