// Package models defines the domain types for Raido.
package models

import (
	"time"

	"github.com/starford/raido/internal/posttype"
)

// Post statuses.
const (
	StatusPublished = "published"
	StatusDraft     = "draft"
)

// Post is a stored Micropub post: frontmatter fields plus the rendered body.
type Post struct {
	Path        string        `json:"path"`
	Type        posttype.Type `json:"post_type"`
	Template    string        `json:"template"`
	Title       string        `json:"title,omitempty"`
	Status      string        `json:"status"`
	Microformat string        `json:"microformat,omitempty"`
	Target      string        `json:"target,omitempty"`
	Tags        []string      `json:"tags"`
	Syndication []string      `json:"syndication,omitempty"`
	PublishedAt time.Time     `json:"published_at"`
	Body        string        `json:"body"`
	Checksum    string        `json:"checksum"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Published reports whether the post is publicly visible.
func (p *Post) Published() bool {
	return p.Status == StatusPublished
}

// PostMetadata is a lightweight representation returned by list operations.
type PostMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
