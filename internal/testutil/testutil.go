// Package testutil provides shared test helpers for vaults, databases and
// mf2 documents.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/mf2"
	"github.com/starford/raido/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "raido-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// Doc parses an mf2 JSON document or fails the test.
func Doc(t *testing.T, js string) *mf2.Document {
	t.Helper()
	doc, err := mf2.Parse([]byte(js))
	if err != nil {
		t.Fatalf("mf2.Parse(%s): %v", js, err)
	}
	return doc
}
