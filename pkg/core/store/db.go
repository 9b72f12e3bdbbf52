package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert would violate a uniqueness
// rule. The wrapping error names the entity.
var ErrDuplicate = errors.New("already exists")

// DB wraps the sqlite handle shared by the repositories.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the sqlite database at path and ensures the
// schema exists.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error { return db.conn.Close() }

func (db *DB) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS material (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			density REAL,
			yield_strength REAL,
			elastic_modulus REAL
		);`,
		`CREATE TABLE IF NOT EXISTS thickness (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			value REAL NOT NULL UNIQUE
		);`,
		`CREATE TABLE IF NOT EXISTS channel (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			value TEXT NOT NULL UNIQUE,
			width REAL,
			height REAL,
			total_length REAL,
			note TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS deduction (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			material_id INTEGER NOT NULL,
			thickness_id INTEGER NOT NULL,
			channel_id INTEGER NOT NULL,
			value REAL NOT NULL,
			note TEXT,
			force REAL,
			UNIQUE (material_id, thickness_id, channel_id)
		);`,
		`CREATE TABLE IF NOT EXISTS user (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'viewer'
		);`,
		`CREATE TABLE IF NOT EXISTS audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_name TEXT NOT NULL,
			action TEXT NOT NULL,
			table_name TEXT NOT NULL,
			record_id INTEGER NOT NULL,
			details TEXT,
			at TEXT NOT NULL
		);`,
	}
	for _, q := range queries {
		if _, err := db.conn.Exec(q); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
