package persist

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// Open opens (or creates) the SQLite database at path and applies the
// pragmas the store relies on. Use ":memory:" for an in-memory database.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// modernc sqlite serializes writes internally but a single connection
	// avoids SQLITE_BUSY on concurrent readers+writer.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA journal_mode = WAL; PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite pragmas: %w", err)
	}
	return db, nil
}

// DB wraps the relational store the pipeline reads from: the entity
// directory, activity rows and the relationship tables the composite
// stream lists are computed from.
type DB struct {
	db     *sql.DB
	logger *slog.Logger
}

// New wraps an opened database handle.
func New(db *sql.DB, logger *slog.Logger) *DB {
	if logger == nil {
		logger = slog.Default()
	}
	return &DB{db: db, logger: logger}
}

// Migrate creates the schema if it does not exist.
func (d *DB) Migrate(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS people (
			id           INTEGER PRIMARY KEY,
			account_name TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS groups (
			id         INTEGER PRIMARY KEY,
			short_name TEXT NOT NULL UNIQUE,
			private    INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS organizations (
			id         INTEGER PRIMARY KEY,
			short_name TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS applications (
			id   INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS activities (
			id             INTEGER PRIMARY KEY,
			author_id      INTEGER NOT NULL,
			recipient_id   INTEGER NOT NULL,
			recipient_type INTEGER NOT NULL,
			org_id         INTEGER NOT NULL DEFAULT 0,
			app_id         INTEGER NOT NULL DEFAULT 0,
			content        TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_activities_recipient
			ON activities (recipient_type, recipient_id, id DESC);
		CREATE INDEX IF NOT EXISTS idx_activities_author
			ON activities (author_id, id DESC);
		CREATE INDEX IF NOT EXISTS idx_activities_org
			ON activities (org_id, id DESC);
		CREATE INDEX IF NOT EXISTS idx_activities_app
			ON activities (app_id, id DESC);

		CREATE TABLE IF NOT EXISTS follows (
			person_id   INTEGER NOT NULL,
			stream_type INTEGER NOT NULL,
			stream_id   INTEGER NOT NULL,
			PRIMARY KEY (person_id, stream_type, stream_id)
		);

		CREATE TABLE IF NOT EXISTS group_members (
			person_id INTEGER NOT NULL,
			group_id  INTEGER NOT NULL,
			PRIMARY KEY (person_id, group_id)
		);

		CREATE TABLE IF NOT EXISTS saved_activities (
			person_id   INTEGER NOT NULL,
			activity_id INTEGER NOT NULL,
			PRIMARY KEY (person_id, activity_id)
		);

		CREATE TABLE IF NOT EXISTS org_descendants (
			ancestor_id   INTEGER NOT NULL,
			descendant_id INTEGER NOT NULL,
			PRIMARY KEY (ancestor_id, descendant_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
