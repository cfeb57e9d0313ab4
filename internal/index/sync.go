package index

import (
	"log/slog"
	"time"

	"github.com/starford/raido/internal/parser"
	"github.com/starford/raido/internal/storage"
)

// SyncStats counts what a Sync pass changed.
type SyncStats struct {
	Indexed   int
	Unchanged int
	Removed   int
	Failed    int
}

// Sync reconciles the index with the vault by checksum. Files that cannot be
// read or parsed are logged and counted; they do not stop the pass.
func Sync(db PostIndex, store storage.Provider, logger *slog.Logger) (SyncStats, error) {
	var stats SyncStats

	metas, err := store.List("")
	if err != nil {
		return stats, err
	}
	known, err := db.AllChecksums()
	if err != nil {
		return stats, err
	}

	for _, m := range metas {
		cs, indexed := known[m.Path]
		delete(known, m.Path)
		if indexed && cs == m.Checksum {
			stats.Unchanged++
			continue
		}

		data, err := store.Read(m.Path)
		if err == nil {
			err = IndexFile(db, m.Path, data)
		}
		if err != nil {
			stats.Failed++
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		stats.Indexed++
	}

	// Whatever is left in known has no file behind it.
	for p := range known {
		if err := db.DeletePost(p); err != nil {
			stats.Failed++
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		stats.Removed++
	}

	logger.Info("sync: index reconciled",
		slog.Int("indexed", stats.Indexed),
		slog.Int("unchanged", stats.Unchanged),
		slog.Int("removed", stats.Removed),
		slog.Int("failed", stats.Failed))
	return stats, nil
}

// IndexFile parses a stored post and upserts its row and search text.
func IndexFile(db PostIndex, path string, data []byte) error {
	post, res, err := parser.ToPost(path, data, storage.Checksum(data))
	if err != nil {
		return err
	}
	return db.UpsertPost(PostRow{
		Path:        post.Path,
		Type:        post.Type,
		Title:       post.Title,
		Template:    post.Template,
		Status:      post.Status,
		Target:      post.Target,
		Checksum:    post.Checksum,
		Tags:        post.Tags,
		PublishedAt: post.PublishedAt,
		UpdatedAt:   time.Now(),
	}, res.Text)
}
