package storage

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/starford/raido/internal/apperr"
)

func tempVault(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempVault(t)
	content := []byte("---\ntype: note\n---\n<p class=\"p-content\">hi</p>\n")
	if err := s.Write("posts/2026/10/hi.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("posts/2026/10/hi.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestExists(t *testing.T) {
	s := tempVault(t)
	ok, err := s.Exists("posts/missing.md")
	if err != nil || ok {
		t.Fatalf("Exists(missing) = %v, %v", ok, err)
	}
	_ = s.Write("posts/here.md", []byte("x"))
	ok, err = s.Exists("posts/here.md")
	if err != nil || !ok {
		t.Fatalf("Exists(here) = %v, %v", ok, err)
	}
	if _, err := s.Exists("../escape.md"); err == nil {
		t.Error("expected traversal error")
	}
}

func TestDelete(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("del.md", []byte("bye"))
	if err := s.Delete("del.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del.md"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestCreate_NoClobber(t *testing.T) {
	s := tempVault(t)
	if err := s.Create("posts/2026/10/new.md", []byte("first")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := s.Create("posts/2026/10/new.md", []byte("second"))
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Fatalf("second Create error = %v, want ErrAlreadyExists", err)
	}
	got, _ := s.Read("posts/2026/10/new.md")
	if string(got) != "first" {
		t.Errorf("content = %q, existing post was replaced", got)
	}
	matches, _ := filepath.Glob(filepath.Join(s.root, "posts", "2026", "10", ".raido-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestCreate_Concurrent(t *testing.T) {
	s := tempVault(t)
	const n = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Create("race.md", []byte("x")); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Errorf("%d concurrent creates succeeded, want 1", wins)
	}
}

func TestWrite_RejectsNonPostFiles(t *testing.T) {
	s := tempVault(t)
	for _, p := range []string{"readme.txt", ".hidden.md", "posts/.drafts/x.md"} {
		if err := s.Write(p, []byte("x")); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("Write(%q) error = %v, want validation error", p, err)
		}
	}
}

func TestList(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("a.md", []byte("a"))
	_ = s.Write("posts/2026/b.md", []byte("b"))
	_ = os.WriteFile(filepath.Join(s.root, "readme.txt"), []byte("not md"), 0o644)
	_ = os.MkdirAll(filepath.Join(s.root, ".trash"), 0o755)
	_ = os.WriteFile(filepath.Join(s.root, ".trash", "old.md"), []byte("gone"), 0o644)

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("len = %d, want 2", len(items))
	}
	for _, it := range items {
		if it.Path != "a.md" && it.Path != "posts/2026/b.md" {
			t.Errorf("unexpected path %q", it.Path)
		}
		if it.Checksum == "" {
			t.Errorf("missing checksum for %s", it.Path)
		}
	}
}

func TestChecksum(t *testing.T) {
	// SHA-256 of the empty input.
	if got := Checksum(nil); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("Checksum(nil) = %s", got)
	}
	if Checksum([]byte("a")) == Checksum([]byte("b")) {
		t.Error("different inputs share a checksum")
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempVault(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("Read(%q) error = %v, want validation error", p, err)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteNoCorruption(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("atomic.md", []byte("original content"))

	updated := []byte("updated content")
	if err := s.Write("atomic.md", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.md")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(s.root, ".raido-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "raido-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
