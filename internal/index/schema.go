// Package index keeps a SQLite index of the vault's posts for listing,
// search and response lookups. FTS5 is used when built with sqlite_fts5.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS posts (
	path         TEXT PRIMARY KEY,
	post_type    TEXT NOT NULL DEFAULT 'note',
	title        TEXT NOT NULL DEFAULT '',
	template     TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'published',
	target       TEXT NOT NULL DEFAULT '',
	checksum     TEXT NOT NULL DEFAULT '',
	tags         TEXT NOT NULL DEFAULT '[]',
	body         TEXT NOT NULL DEFAULT '',
	published_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_posts_type ON posts(post_type);
CREATE INDEX IF NOT EXISTS idx_posts_target ON posts(target);
CREATE INDEX IF NOT EXISTS idx_posts_published ON posts(published_at);
`

// schemaVersion is stored in PRAGMA user_version. The index only caches
// what the vault holds, so a database at any other version is dropped and
// rebuilt by the next Sync.
const schemaVersion = 1

// DB is the SQLite post index.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the index database at dsn and brings its schema
// to the current version.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return &DB{conn: conn}, nil
}

func migrate(conn *sql.DB) error {
	var version int
	if err := conn.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("index: read schema version: %w", err)
	}
	if version != 0 && version != schemaVersion {
		if _, err := conn.Exec(`DROP TABLE IF EXISTS posts; DROP TABLE IF EXISTS posts_fts;`); err != nil {
			return fmt.Errorf("index: drop schema v%d: %w", version, err)
		}
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		return fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		return fmt.Errorf("index: apply fts schema: %w", err)
	}
	if _, err := conn.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, schemaVersion)); err != nil {
		return fmt.Errorf("index: set schema version: %w", err)
	}
	return nil
}

// Close closes the database.
func (db *DB) Close() error {
	return db.conn.Close()
}
