// Package parser reads and writes stored posts: YAML frontmatter followed by
// the rendered HTML body.
package parser

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"gopkg.in/yaml.v3"

	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/posttype"
)

const delim = "---"

// Frontmatter is the YAML header of a stored post.
type Frontmatter struct {
	Type        posttype.Type `yaml:"type"`
	Template    string        `yaml:"template"`
	Title       string        `yaml:"title,omitempty"`
	Status      string        `yaml:"status"`
	Published   time.Time     `yaml:"published"`
	Microformat string        `yaml:"microformat,omitempty"`
	Target      string        `yaml:"target,omitempty"`
	Tags        []string      `yaml:"tags,omitempty"`
	Syndication []string      `yaml:"syndication,omitempty"`
}

// Result holds the output of parsing a stored post.
type Result struct {
	Frontmatter Frontmatter
	// HasFrontmatter is false for files without a valid YAML header.
	HasFrontmatter bool
	Body           string
	// Text is the body's visible text with whitespace collapsed.
	Text string
}

// targetSelector matches the response-context links written by the renderer.
const targetSelector = ".u-in-reply-to, .u-like-of, .u-repost-of, .u-bookmark-of"

// Parse splits frontmatter from the body and extracts the body's text.
// A missing article title or response target is recovered from the body's
// microformat markup.
func Parse(data []byte) (*Result, error) {
	fm, ok, body := splitFrontmatter(data)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parser: read body: %w", err)
	}

	if fm.Type == "" {
		fm.Type = posttype.Note
	}
	if fm.Status == "" {
		fm.Status = models.StatusPublished
	}
	// Only articles have titles; headings inside other posts are content.
	if fm.Type == posttype.Article && fm.Title == "" {
		fm.Title = strings.TrimSpace(doc.Find(".p-name").First().Text())
	}
	if fm.Target == "" {
		fm.Target, _ = doc.Find(targetSelector).First().Attr("href")
	}

	return &Result{
		Frontmatter:    fm,
		HasFrontmatter: ok,
		Body:           body,
		Text:           strings.Join(strings.Fields(doc.Text()), " "),
	}, nil
}

// Encode serialises a post file. The body is written verbatim.
func Encode(fm Frontmatter, body string) ([]byte, error) {
	header, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("parser: encode frontmatter: %w", err)
	}
	var b bytes.Buffer
	b.WriteString(delim + "\n")
	b.Write(header)
	b.WriteString(delim + "\n")
	b.WriteString(body)
	b.WriteString("\n")
	return b.Bytes(), nil
}

// ToPost builds the post stored at path from its raw file contents.
func ToPost(path string, data []byte, checksum string) (*models.Post, *Result, error) {
	res, err := Parse(data)
	if err != nil {
		return nil, nil, err
	}
	fm := res.Frontmatter
	return &models.Post{
		Path:        path,
		Type:        fm.Type,
		Template:    fm.Template,
		Title:       fm.Title,
		Status:      fm.Status,
		Microformat: fm.Microformat,
		Target:      fm.Target,
		Tags:        nonNil(fm.Tags),
		Syndication: fm.Syndication,
		PublishedAt: fm.Published,
		Body:        res.Body,
		Checksum:    checksum,
	}, res, nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the body. Exactly one newline after the closing delimiter and one
// trailing newline are dropped so Encode and Parse round-trip the body.
// Without a valid header the entire content is body.
func splitFrontmatter(data []byte) (Frontmatter, bool, string) {
	var fm Frontmatter
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return fm, false, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return fm, false, string(data)
	}

	yamlBlock := rest[:idx]
	body := string(rest[idx+1+len(delim):])
	body = strings.TrimPrefix(strings.TrimPrefix(body, "\r"), "\n")
	body = strings.TrimSuffix(body, "\n")

	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return Frontmatter{}, false, string(data)
	}
	return fm, true, body
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
