package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// InitSQLite initializes the local SQLite database and creates the schemas
// for the persisted fingerprint cache and the durable diagnostics reports.
func InitSQLite(dbPath string) (*sql.DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if err := createSchemas(db); err != nil {
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}

	return db, nil
}

func createSchemas(db *sql.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS fingerprint_cache (
			asset_signature TEXT NOT NULL,
			fingerprint INTEGER NOT NULL,
			server_id INTEGER NOT NULL,
			subtype INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (asset_signature, fingerprint, server_id, subtype)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_fpcache_signature ON fingerprint_cache(asset_signature);`,
		`CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			operation TEXT NOT NULL,
			timestamp DATETIME NOT NULL,
			kind TEXT NOT NULL,
			raw_id INTEGER NOT NULL DEFAULT 0,
			server_id INTEGER NOT NULL DEFAULT 0,
			fingerprint INTEGER NOT NULL DEFAULT 0,
			context TEXT,
			outcome TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_reports_operation ON reports(operation);`,
		`CREATE INDEX IF NOT EXISTS idx_reports_kind ON reports(kind);`,
	}

	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}
