// Package sqlite provides SQLite-based storage implementations for
// sigildex services.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open opens the database connection and creates the schema if needed.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit to one connection.
	conn.SetMaxOpenConns(1)

	// Verify connection
	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Set busy timeout to wait 5 seconds before failing on lock contention.
	// This prevents immediate "database is locked" errors.
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Enable WAL mode for file-based databases for better write performance.
	// WAL is ~7x faster for writes and allows concurrent reads during writes.
	// Trade-off: creates additional -wal and -shm files alongside the database.
	// Note: WAL mode is not supported for in-memory databases.
	if db.path != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Enable foreign key constraints
	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db.db = conn

	// Create schema
	if err := db.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// BeginTx starts a transaction. Upserts run their read-modify-write
// inside one so concurrent callers can't interleave on the same key.
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, nil)
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// Stats returns database statistics.
func (db *DB) Stats() sql.DBStats {
	return db.db.Stats()
}

// createSchema creates the database tables if they don't exist.
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sources (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			author TEXT NOT NULL DEFAULT '',
			year INTEGER NOT NULL DEFAULT 0,
			tradition TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			local_path TEXT NOT NULL DEFAULT '',
			license TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			content_hash TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS symbols (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			tradition TEXT NOT NULL DEFAULT '',
			class TEXT NOT NULL DEFAULT '',
			function TEXT NOT NULL DEFAULT '',
			evokes_or_invokes TEXT NOT NULL DEFAULT '',
			deity_or_spirit TEXT NOT NULL DEFAULT '',
			planet TEXT NOT NULL DEFAULT '',
			element TEXT NOT NULL DEFAULT '',
			correspondence TEXT NOT NULL DEFAULT '',
			source_id TEXT NOT NULL DEFAULT '',
			page_hint TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS glyph_images (
			id TEXT PRIMARY KEY,
			symbol_id TEXT NOT NULL REFERENCES symbols(id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			width INTEGER NOT NULL DEFAULT 0,
			height INTEGER NOT NULL DEFAULT 0,
			dpi INTEGER NOT NULL DEFAULT 0,
			raster_path TEXT NOT NULL DEFAULT '',
			thumb_path TEXT NOT NULL DEFAULT '',
			transparent_bg INTEGER NOT NULL DEFAULT 0,
			bbox TEXT NOT NULL DEFAULT '',
			hash_sha256 TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS rites (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			tradition TEXT NOT NULL DEFAULT '',
			purpose TEXT NOT NULL DEFAULT '',
			steps TEXT NOT NULL DEFAULT '[]',
			source_id TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS symbol_rites (
			rite_id TEXT NOT NULL REFERENCES rites(id) ON DELETE CASCADE,
			symbol_id TEXT NOT NULL REFERENCES symbols(id) ON DELETE CASCADE,
			PRIMARY KEY (rite_id, symbol_id)
		);

		CREATE INDEX IF NOT EXISTS idx_symbols_source_id ON symbols(source_id);
		CREATE INDEX IF NOT EXISTS idx_glyph_images_symbol_id ON glyph_images(symbol_id);
		CREATE INDEX IF NOT EXISTS idx_glyph_images_raster_path ON glyph_images(raster_path);
	`

	_, err := db.db.Exec(schema)
	return err
}
