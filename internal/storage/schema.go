package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is written to outline_metadata when the schema is created.
const SchemaVersion = "1"

// CreateSchema creates the outline tables and indexes in one transaction.
//
// Tables:
//   - runs: one row per validation run
//   - lessons: lesson files of a run in outline order
//   - objectives: ordered objectives per lesson
//   - issues: validation issues of a run
//   - outline_metadata: key/value bootstrap data (schema version)
//
// Must be called with SQLite PRAGMA foreign_keys = ON.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	tables := []struct {
		name string
		ddl  string
	}{
		{"runs", createRunsTable},
		{"lessons", createLessonsTable},
		{"objectives", createObjectivesTable},
		{"issues", createIssuesTable},
		{"outline_metadata", createMetadataTable},
	}
	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range indexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Format(timeLayout)
	if _, err := tx.Exec(
		`INSERT INTO outline_metadata (key, value, updated_at) VALUES ('schema_version', ?, ?)`,
		SchemaVersion, now,
	); err != nil {
		return fmt.Errorf("failed to bootstrap outline_metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

// GetSchemaVersion returns the stored schema version, or "0" for a new database.
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='outline_metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check outline_metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow("SELECT value FROM outline_metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in outline_metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

const createRunsTable = `
CREATE TABLE runs (
    run_id TEXT PRIMARY KEY,                     -- UUID assigned by the pipeline
    root TEXT NOT NULL,                          -- Course root as given on the command line
    created_at TEXT NOT NULL,                    -- Fixed-width UTC timestamp
    duration_ms INTEGER NOT NULL DEFAULT 0,
    file_count INTEGER NOT NULL DEFAULT 0,
    placeholder_count INTEGER NOT NULL DEFAULT 0,
    error_count INTEGER NOT NULL DEFAULT 0,
    warning_count INTEGER NOT NULL DEFAULT 0
)
`

const createLessonsTable = `
CREATE TABLE lessons (
    run_id TEXT NOT NULL,
    file_path TEXT NOT NULL,                     -- Slash separated, relative to root
    position INTEGER NOT NULL,                   -- Index in outline order
    module INTEGER,                              -- NULL for Unclassified
    lesson INTEGER,
    title TEXT NOT NULL DEFAULT '',
    placeholder INTEGER NOT NULL DEFAULT 0,
    prerequisites TEXT NOT NULL DEFAULT '',      -- Newline separated references
    PRIMARY KEY (run_id, file_path),
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
)
`

const createObjectivesTable = `
CREATE TABLE objectives (
    run_id TEXT NOT NULL,
    file_path TEXT NOT NULL,
    position INTEGER NOT NULL,
    text TEXT NOT NULL,
    PRIMARY KEY (run_id, file_path, position),
    FOREIGN KEY (run_id, file_path) REFERENCES lessons(run_id, file_path) ON DELETE CASCADE
)
`

const createIssuesTable = `
CREATE TABLE issues (
    run_id TEXT NOT NULL,
    position INTEGER NOT NULL,                   -- Index in sorted issue order
    kind TEXT NOT NULL,
    severity TEXT NOT NULL,                      -- error or warning
    paths TEXT NOT NULL,                         -- Newline separated file paths
    message TEXT NOT NULL,
    PRIMARY KEY (run_id, position),
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
)
`

const createMetadataTable = `
CREATE TABLE outline_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

var indexes = []string{
	"CREATE INDEX idx_runs_created_at ON runs(created_at)",
	"CREATE INDEX idx_lessons_module ON lessons(run_id, module, lesson)",
	"CREATE INDEX idx_issues_kind ON issues(run_id, kind)",
}
