//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS posts_fts USING fts5(
			path UNINDEXED,
			title,
			body,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, path, title, text string, tags []string) error {
	if err := ftsDelete(tx, path); err != nil {
		return err
	}
	_, err := tx.Exec(`INSERT INTO posts_fts (path, title, body, tags) VALUES (?, ?, ?, ?)`,
		path, title, text, strings.Join(tags, " "))
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, path string) error {
	if _, err := tx.Exec(`DELETE FROM posts_fts WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete fts: %w", err)
	}
	return nil
}

// matchExpr turns free text into an FTS5 expression: every word must match,
// each quoted so URLs and hyphenated terms like in-reply-to are not parsed as
// query syntax.
func matchExpr(query string) string {
	words := strings.Fields(query)
	for i, w := range words {
		words[i] = `"` + strings.ReplaceAll(w, `"`, `""`) + `"`
	}
	return strings.Join(words, " AND ")
}

// Search ranks posts by FTS5 relevance and returns highlighted snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	expr := matchExpr(query)
	if expr == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	rows, err := db.conn.Query(`
		SELECT path,
		       title,
		       snippet(posts_fts, 2, '<b>', '</b>', '...', 32)
		FROM posts_fts
		WHERE posts_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, expr, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()
	return scanResults(rows)
}
