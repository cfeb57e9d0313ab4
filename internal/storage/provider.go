// Package storage keeps post files in the vault directory.
package storage

import "github.com/starford/raido/internal/models"

// Provider is the vault as seen by the publishing service and the indexer.
// Paths are slash-separated and relative to the vault root.
type Provider interface {
	// List returns metadata for every post file under dir.
	List(dir string) ([]models.PostMetadata, error)
	Exists(path string) (bool, error)
	Read(path string) ([]byte, error)
	// Write replaces path atomically.
	Write(path string, content []byte) error
	// Create writes a new post and fails with apperr.ErrAlreadyExists when
	// path is taken. Two concurrent Creates never both succeed.
	Create(path string, content []byte) error
	Delete(path string) error
}
