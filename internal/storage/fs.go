package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

const (
	// PostExt is the extension of every post file.
	PostExt = ".md"

	tmpPattern = ".raido-tmp-*"
)

// FS implements Provider on the local file system.
type FS struct {
	root string // absolute vault path
}

// NewFS opens the vault at root, which must be an existing directory.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// IsPostPath reports whether a vault-relative path names a post file.
// Hidden files and anything under a hidden directory are skipped.
func IsPostPath(rel string) bool {
	if !strings.HasSuffix(rel, PostExt) {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") {
			return false
		}
	}
	return true
}

// resolve maps a vault-relative path to an absolute one, rejecting absolute
// input and anything that climbs out of the vault.
func (f *FS) resolve(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute path %q: %w", rel, apperr.ErrValidation)
	}
	abs := filepath.Join(f.root, cleaned)
	if abs != f.root && !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: path %q escapes the vault: %w", rel, apperr.ErrValidation)
	}
	return abs, nil
}

// resolvePost is resolve plus the post file name check used on writes.
func (f *FS) resolvePost(rel string) (string, error) {
	if !IsPostPath(rel) {
		return "", fmt.Errorf("storage: %q is not a post file: %w", rel, apperr.ErrValidation)
	}
	return f.resolve(rel)
}

// List walks dir and returns metadata for every post file, with
// slash-separated paths.
func (f *FS) List(dir string) ([]models.PostMetadata, error) {
	base, err := f.resolve(dir)
	if err != nil {
		return nil, err
	}
	var out []models.PostMetadata
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if p != base && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(f.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !IsPostPath(rel) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		out = append(out, models.PostMetadata{
			Path:      rel,
			Checksum:  Checksum(data),
			UpdatedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}

// Exists reports whether a file is present at path.
func (f *FS) Exists(path string) (bool, error) {
	abs, err := f.resolve(path)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(abs)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("storage: stat %s: %w", path, err)
	}
}

// Read returns the raw bytes at path. A missing file yields an error
// matching fs.ErrNotExist.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Write replaces path: tmp file, fsync, rename.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.resolvePost(path)
	if err != nil {
		return err
	}
	tmpName, err := writeTemp(filepath.Dir(abs), content)
	if err != nil {
		return err
	}
	if err := os.Rename(tmpName, abs); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("storage: rename: %w", err)
	}
	return nil
}

// Create writes a new post. The fully synced temp file is hard-linked into
// place, so the post appears complete or not at all and an existing file is
// never replaced.
func (f *FS) Create(path string, content []byte) error {
	abs, err := f.resolvePost(path)
	if err != nil {
		return err
	}
	tmpName, err := writeTemp(filepath.Dir(abs), content)
	if err != nil {
		return err
	}
	defer os.Remove(tmpName)

	if err := os.Link(tmpName, abs); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("storage: %s: %w", path, apperr.ErrAlreadyExists)
		}
		return fmt.Errorf("storage: link: %w", err)
	}
	return nil
}

// writeTemp writes content to a synced hidden temp file in dir, creating
// dir if needed, and returns its name.
func writeTemp(dir string, content []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return "", fmt.Errorf("storage: create temp: %w", err)
	}
	name := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("storage: close temp: %w", err)
	}
	return name, nil
}

// Delete removes the file at path.
func (f *FS) Delete(path string) error {
	abs, err := f.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s: %w", path, err)
	}
	return nil
}

// Checksum returns the hex SHA-256 of data. It doubles as the post's ETag.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
