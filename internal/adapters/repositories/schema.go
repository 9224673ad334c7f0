package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Dialect selects SQL flavour differences between the supported drivers.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Placeholder returns the n-th (1-based) bind parameter for the dialect.
func (d Dialect) Placeholder(n int) string {
	if d == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (d Dialect) floatType() string {
	if d == DialectPostgres {
		return "DOUBLE PRECISION"
	}
	return "REAL"
}

// Initialize the database schema: the roster and the cost-matrix cache.
func InitSchema(db *sql.DB, dialect Dialect) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRosterQuery := `
	CREATE TABLE IF NOT EXISTS roster (
		person_id TEXT PRIMARY KEY,
		gender TEXT NOT NULL,
		lat {{float}} NOT NULL,
		lon {{float}} NOT NULL,
		service_seconds {{float}} NOT NULL DEFAULT 0,
		position INTEGER NOT NULL
	);
	`

	createMatrixCacheQuery := `
	CREATE TABLE IF NOT EXISTS matrix_cache (
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		distance_meters {{float}} NOT NULL,
		duration_seconds {{float}} NOT NULL,
		PRIMARY KEY (origin, destination)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_matrix_cache_destination_origin
	ON matrix_cache(destination, origin);
	`

	statements := []string{
		createRosterQuery,
		createMatrixCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		stmt = strings.ReplaceAll(stmt, "{{float}}", dialect.floatType())
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
