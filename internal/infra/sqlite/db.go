// Package sqlite persists the escrow ledger's durable shadow: items,
// replies, reputation scores and the change-record log. The in-memory
// ledger is authoritative; this store replays it at boot and absorbs
// every mutation as it happens.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // pure-Go sqlite driver
)

// DB wraps the sqlite connection.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies migrations.
// Use ":memory:" for an ephemeral database in tests.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// A single writer keeps WAL contention away entirely.
	conn.SetMaxOpenConns(1)

	db := &DB{db: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error { return db.db.Close() }

// migrate applies the schema. Each string is a single SQL statement
// (SQLite executes one at a time).
func (db *DB) migrate() error {
	for _, stmt := range migrations() {
		if _, err := db.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w\n%s", err, stmt)
		}
	}
	return nil
}

func migrations() []string {
	return []string{
		// Items. Values are stored as base-10 strings: they live in a
		// 256-bit domain that does not fit SQLite integers.
		`CREATE TABLE IF NOT EXISTS items (
			id             INTEGER PRIMARY KEY,
			status         INTEGER NOT NULL DEFAULT 0,
			seeker         TEXT NOT NULL,
			provider       TEXT NOT NULL DEFAULT '',
			item_value     TEXT NOT NULL,
			hashtag_fee    TEXT NOT NULL,
			metadata_hash  TEXT NOT NULL,
			creation_block INTEGER NOT NULL DEFAULT 0,
			updated_at     TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_items_status ON items(status)`,
		`CREATE INDEX IF NOT EXISTS idx_items_seeker ON items(seeker)`,

		// Replies, ordered per item.
		`CREATE TABLE IF NOT EXISTS item_replies (
			item_id       INTEGER NOT NULL,
			idx           INTEGER NOT NULL,
			replier       TEXT NOT NULL,
			metadata_hash TEXT NOT NULL,
			PRIMARY KEY (item_id, idx)
		)`,

		// Reputation scores, one row per address.
		`CREATE TABLE IF NOT EXISTS reputation (
			address        TEXT PRIMARY KEY,
			seeker_score   INTEGER NOT NULL DEFAULT 0,
			provider_score INTEGER NOT NULL DEFAULT 0,
			updated_at     TEXT NOT NULL DEFAULT (datetime('now'))
		)`,

		// Change-record log consumed by off-chain indexers. seq is the
		// append order; timestamps are informational only (RFC3339Nano
		// strings do not sort reliably).
		`CREATE TABLE IF NOT EXISTS events (
			seq         INTEGER PRIMARY KEY AUTOINCREMENT,
			id          TEXT NOT NULL UNIQUE,
			kind        TEXT NOT NULL,
			item_id     INTEGER NOT NULL DEFAULT 0,
			actor       TEXT NOT NULL DEFAULT '',
			fields_json TEXT NOT NULL DEFAULT '{}',
			at          TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_item ON events(item_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind)`,
	}
}
