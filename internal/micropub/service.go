// Package micropub turns mf2 documents into stored, indexed posts.
package micropub

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/metrics"
	"github.com/starford/raido/internal/mf2"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/parser"
	"github.com/starford/raido/internal/posttype"
	"github.com/starford/raido/internal/render"
	"github.com/starford/raido/internal/storage"
)

const (
	postsDir     = "posts"
	postExt      = storage.PostExt
	maxCollision = 1000
)

// Config controls how documents are turned into posts.
type Config struct {
	// BaseURL is the public site root post locations are built from.
	BaseURL            string
	Templates          posttype.TemplateConfig
	PublishImmediately bool
	WrapRoot           bool
	VerboseLogging     bool
}

// Preview is the outcome of classifying and rendering a document without
// storing it.
type Preview struct {
	Type     posttype.Type `json:"post_type"`
	Rule     string        `json:"rule,omitempty"`
	Template string        `json:"template"`
	Body     string        `json:"body"`
}

// Prepare classifies doc, selects its template and renders its body.
func Prepare(doc *mf2.Document, templates posttype.TemplateConfig, opts render.Options) (*Preview, error) {
	if doc == nil {
		return nil, fmt.Errorf("micropub: empty document: %w", apperr.ErrValidation)
	}
	t, rule := posttype.Explain(doc)
	body, err := render.Render(doc, t, opts)
	if err != nil {
		return nil, fmt.Errorf("micropub: render: %w", err)
	}
	return &Preview{
		Type:     t,
		Rule:     rule,
		Template: posttype.SelectTemplate(t, templates),
		Body:     body,
	}, nil
}

// Service coordinates the publish pipeline with storage and the index.
type Service struct {
	store   storage.Provider
	db      index.PostIndex
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. slog.Default() is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMetrics records publish and render metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source used for unset published dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new publishing service.
func NewService(store storage.Provider, db index.PostIndex, cfg Config, opts ...Option) *Service {
	s := &Service{
		store:  store,
		db:     db,
		cfg:    cfg,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Preview runs the publish pipeline up to rendering.
func (s *Service) Preview(doc *mf2.Document) (*Preview, error) {
	start := time.Now()
	p, err := Prepare(doc, s.cfg.Templates, render.Options{WrapRoot: s.cfg.WrapRoot})
	s.metrics.ObserveRender(start)
	return p, err
}

// Publish stores doc as a new post and indexes it.
func (s *Service) Publish(ctx context.Context, doc *mf2.Document) (*models.Post, error) {
	if doc != nil && doc.Action != "" {
		return nil, fmt.Errorf("micropub: action %q: %w", doc.Action, apperr.ErrUnsupported)
	}
	prev, err := s.Preview(doc)
	if err != nil {
		return nil, err
	}

	fm := parser.Frontmatter{
		Type:        prev.Type,
		Template:    prev.Template,
		Status:      s.status(doc),
		Published:   s.published(doc),
		Microformat: mf2.PrimaryType(doc),
		Tags:        mf2.Strings(doc, "category"),
		Syndication: mf2.ValidURLs(doc, "syndication"),
	}
	if prev.Type == posttype.Article {
		name, _ := mf2.FirstText(doc, "name")
		fm.Title = strings.TrimSpace(name)
	}
	if prop, ok := render.ContextProperty(prev.Type); ok && mf2.IsPropertyValidURL(doc, prop) {
		fm.Target, _ = mf2.FirstText(doc, prop)
	}

	data, err := parser.Encode(fm, prev.Body)
	if err != nil {
		return nil, err
	}

	path, err := s.create(fm.Published, Slug(doc), data)
	if err != nil {
		return nil, err
	}

	// The file is the post. An index failure leaves it for Sync and the
	// watcher to pick up; failing here would make a client retry create a
	// duplicate.
	if err := index.IndexFile(s.db, path, data); err != nil {
		s.logger.Warn("micropub: index after publish failed",
			slog.String("path", path), slog.String("error", err.Error()))
	}
	post, _, err := parser.ToPost(path, data, storage.Checksum(data))
	if err != nil {
		return nil, err
	}
	post.UpdatedAt = s.now()

	s.metrics.RecordPublished(prev.Type.String())
	s.logger.Log(ctx, s.logLevel(), "micropub: published",
		slog.String("path", path),
		slog.String("post_type", prev.Type.String()),
		slog.String("rule", prev.Rule),
		slog.String("template", prev.Template),
		slog.String("status", post.Status),
		slog.Int("body_bytes", len(prev.Body)))
	return post, nil
}

// Location returns the public URL of the post stored at path.
func (s *Service) Location(path string) string {
	return strings.TrimSuffix(s.cfg.BaseURL, "/") + "/" + strings.TrimSuffix(path, postExt)
}

// GetPost reads a stored post. path may omit the .md extension.
func (s *Service) GetPost(_ context.Context, path string) (*models.Post, error) {
	path = normalizePath(path)
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	post, _, err := parser.ToPost(path, data, storage.Checksum(data))
	if err != nil {
		return nil, err
	}
	if row, err := s.db.GetPost(path); err == nil && row != nil {
		post.UpdatedAt = row.UpdatedAt
	}
	return post, nil
}

// ListPosts returns a page of indexed posts and the total match count.
func (s *Service) ListPosts(_ context.Context, f index.ListFilter) ([]index.PostRow, int, error) {
	rows, total, err := s.db.ListPosts(f)
	if err != nil {
		return nil, 0, err
	}
	if rows == nil {
		rows = []index.PostRow{}
	}
	return rows, total, nil
}

// DeletePost removes a post from storage and the index.
func (s *Service) DeletePost(ctx context.Context, path string) error {
	path = normalizePath(path)
	ok, err := s.store.Exists(path)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrNotFound
	}
	if err := s.store.Delete(path); err != nil {
		return err
	}
	if err := s.db.DeletePost(path); err != nil {
		return err
	}
	s.logger.Log(ctx, s.logLevel(), "micropub: deleted", slog.String("path", path))
	return nil
}

// Search runs a full-text query over stored posts.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("micropub: empty search query: %w", apperr.ErrValidation)
	}
	res, err := s.db.Search(query, limit)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = []index.SearchResult{}
	}
	return res, nil
}

// Responses lists posts that reply to, like, repost or bookmark target.
func (s *Service) Responses(_ context.Context, target string) ([]index.PostRow, error) {
	if !mf2.IsValidURL(target) {
		return nil, fmt.Errorf("micropub: target %q is not an absolute URL: %w", target, apperr.ErrValidation)
	}
	rows, err := s.db.Responses(target)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []index.PostRow{}
	}
	return rows, nil
}

func (s *Service) status(doc *mf2.Document) string {
	if v, ok := mf2.FirstText(doc, "post-status"); ok && strings.EqualFold(strings.TrimSpace(v), models.StatusDraft) {
		return models.StatusDraft
	}
	if s.cfg.PublishImmediately {
		return models.StatusPublished
	}
	return models.StatusDraft
}

func (s *Service) published(doc *mf2.Document) time.Time {
	if v, ok := mf2.FirstText(doc, "published"); ok {
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(v)); err == nil {
			return t.UTC()
		}
	}
	return s.now().UTC()
}

// create stores data at posts/YYYY/MM/<slug>.md, moving on to -2, -3, ...
// while the path is taken.
func (s *Service) create(published time.Time, slug string, data []byte) (string, error) {
	dir := fmt.Sprintf("%s/%04d/%02d", postsDir, published.Year(), int(published.Month()))
	candidate := dir + "/" + slug + postExt
	for i := 2; i <= maxCollision; i++ {
		err := s.store.Create(candidate, data)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, apperr.ErrAlreadyExists) {
			return "", err
		}
		candidate = fmt.Sprintf("%s/%s-%d%s", dir, slug, i, postExt)
	}
	return "", fmt.Errorf("micropub: no free path for slug %q: %w", slug, apperr.ErrConflict)
}

func (s *Service) logLevel() slog.Level {
	if s.cfg.VerboseLogging {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

func normalizePath(path string) string {
	path = strings.TrimPrefix(path, "/")
	if !strings.HasSuffix(path, postExt) {
		path += postExt
	}
	return path
}
