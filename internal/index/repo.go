package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/raido/internal/posttype"
)

// PostRow represents a row in the posts table.
type PostRow struct {
	Path        string        `json:"path"`
	Type        posttype.Type `json:"post_type"`
	Title       string        `json:"title"`
	Template    string        `json:"template"`
	Status      string        `json:"status"`
	Target      string        `json:"target,omitempty"`
	Checksum    string        `json:"checksum"`
	Tags        []string      `json:"tags"`
	PublishedAt time.Time     `json:"published_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// ListFilter narrows ListPosts. Zero values mean "any".
type ListFilter struct {
	Limit  int
	Offset int
	Type   posttype.Type
	Tag    string
	Status string
}

const defaultSearchLimit = 20

const postColumns = `path, post_type, title, template, status, target, checksum, tags, published_at, updated_at`

// UpsertPost inserts or replaces a post and its FTS entry within a transaction.
// text is the body's visible text used for search.
func (db *DB) UpsertPost(p PostRow, text string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, _ := json.Marshal(tags)
	if p.Type == "" {
		p.Type = posttype.Note
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	if p.PublishedAt.IsZero() {
		p.PublishedAt = p.UpdatedAt
	}

	_, err = tx.Exec(`
		INSERT INTO posts (`+postColumns+`, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			post_type    = excluded.post_type,
			title        = excluded.title,
			template     = excluded.template,
			status       = excluded.status,
			target       = excluded.target,
			checksum     = excluded.checksum,
			tags         = excluded.tags,
			body         = excluded.body,
			published_at = excluded.published_at,
			updated_at   = excluded.updated_at
	`, p.Path, string(p.Type), p.Title, p.Template, p.Status, p.Target, p.Checksum,
		string(tagsJSON), p.PublishedAt.UTC(), p.UpdatedAt.UTC(), text)
	if err != nil {
		return fmt.Errorf("index: upsert post: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, p.Path, p.Title, text, tags); err != nil {
		return err
	}

	return tx.Commit()
}

// DeletePost removes a post and its FTS entry.
func (db *DB) DeletePost(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := ftsDelete(tx, path); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM posts WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete post: %w", err)
	}
	return tx.Commit()
}

// GetChecksum returns the stored checksum for a post, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM posts WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// GetPost returns the indexed row for path, or nil when it is not indexed.
func (db *DB) GetPost(path string) (*PostRow, error) {
	row := db.conn.QueryRow(`SELECT `+postColumns+` FROM posts WHERE path = ?`, path)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get post: %w", err)
	}
	return p, nil
}

// ListPosts returns a page of posts, newest first, and the total match count.
func (db *DB) ListPosts(f ListFilter) ([]PostRow, int, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var where []string
	var args []any
	if f.Type != "" {
		where = append(where, "post_type = ?")
		args = append(args, string(f.Type))
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.Tag != "" {
		where = append(where, "EXISTS (SELECT 1 FROM json_each(posts.tags) WHERE json_each.value = ?)")
		args = append(args, f.Tag)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM posts`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count posts: %w", err)
	}

	rows, err := db.conn.Query(`SELECT `+postColumns+` FROM posts`+clause+
		` ORDER BY published_at DESC, path LIMIT ? OFFSET ?`, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list posts: %w", err)
	}
	defer rows.Close()

	out, err := scanPosts(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Responses returns posts whose response context points at target, e.g.
// every reply to or like of a URL.
func (db *DB) Responses(target string) ([]PostRow, error) {
	rows, err := db.conn.Query(`SELECT `+postColumns+` FROM posts WHERE target = ? ORDER BY published_at, path`, target)
	if err != nil {
		return nil, fmt.Errorf("index: responses: %w", err)
	}
	defer rows.Close()
	return scanPosts(rows)
}

// AllChecksums returns path → checksum for every indexed post.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM posts`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(s scanner) (*PostRow, error) {
	var (
		p        PostRow
		postType string
		tagsJSON string
	)
	if err := s.Scan(&p.Path, &postType, &p.Title, &p.Template, &p.Status, &p.Target,
		&p.Checksum, &tagsJSON, &p.PublishedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Type = posttype.Type(postType)
	if err := json.Unmarshal([]byte(tagsJSON), &p.Tags); err != nil || p.Tags == nil {
		p.Tags = []string{}
	}
	return &p, nil
}

func scanPosts(rows *sql.Rows) ([]PostRow, error) {
	var out []PostRow
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanResults(rows *sql.Rows) ([]SearchResult, error) {
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
