//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Without FTS5 the visible text lives only in posts.body.
func initFTS(_ *sql.DB) error { return nil }

func ftsUpsert(_ *sql.Tx, _, _, _ string, _ []string) error { return nil }

func ftsDelete(_ *sql.Tx, _ string) error { return nil }

const snippetRadius = 60

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches the query as a literal substring of title, body or tags,
// newest posts first.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	like := "%" + likeEscaper.Replace(query) + "%"
	rows, err := db.conn.Query(`
		SELECT path, title, body
		FROM posts
		WHERE title LIKE ?1 ESCAPE '\' OR body LIKE ?1 ESCAPE '\' OR tags LIKE ?1 ESCAPE '\'
		ORDER BY published_at DESC, path
		LIMIT ?2
	`, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	out, err := scanResults(rows)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Snippet = snippetAround(out[i].Snippet, query)
	}
	return out, nil
}

// snippetAround cuts text down to the neighbourhood of the first
// case-insensitive occurrence of query, marking the cut ends with "...".
func snippetAround(text, query string) string {
	runes := []rune(text)
	lower := strings.ToLower(text)
	idx := strings.Index(lower, strings.ToLower(query))
	if idx < 0 {
		if len(runes) > 2*snippetRadius {
			return string(runes[:2*snippetRadius]) + "..."
		}
		return text
	}
	at := min(utf8.RuneCountInString(lower[:idx]), len(runes))
	start, end := max(at-snippetRadius, 0), min(at+len([]rune(query))+snippetRadius, len(runes))
	s := string(runes[start:end])
	if start > 0 {
		s = "..." + s
	}
	if end < len(runes) {
		s += "..."
	}
	return s
}
