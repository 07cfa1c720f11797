package storage

import (
	"database/sql"
	"fmt"
)

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Entity ids are plain INTEGER PRIMARY KEY (rowid aliases): SQLite assigns
	// max(id)+1 within each table, which is the id-assignment rule this system
	// requires. issue/request rows outlive the books they reference, so those
	// columns carry no FK.
	schema := `
	CREATE TABLE IF NOT EXISTS account (
		id INTEGER PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS book (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		author TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		available INTEGER NOT NULL DEFAULT 0 CHECK (available >= 0)
	);

	CREATE TABLE IF NOT EXISTS issue (
		id INTEGER PRIMARY KEY,
		username TEXT NOT NULL,
		book_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		issue_date TEXT NOT NULL,
		return_date TEXT
	);

	CREATE TABLE IF NOT EXISTS request (
		id INTEGER PRIMARY KEY,
		type TEXT NOT NULL,
		username TEXT NOT NULL,
		book_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		requested_at TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending'
	);

	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		actor TEXT NOT NULL,
		action TEXT NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		detail TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_issue_open ON issue(username, book_id) WHERE return_date IS NULL;
	CREATE INDEX IF NOT EXISTS idx_request_pending ON request(username, book_id, type) WHERE status = 'pending';
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}
