package index

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/posttype"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "raido-test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func row(path string, typ posttype.Type, published time.Time) PostRow {
	return PostRow{
		Path:        path,
		Type:        typ,
		Template:    posttype.DefaultTemplate,
		Status:      models.StatusPublished,
		Checksum:    "cs-" + path,
		Tags:        []string{},
		PublishedAt: published,
		UpdatedAt:   published,
	}
}

func TestOpen_RebuildsOtherSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = db.UpsertPost(row("kept.md", posttype.Note, time.Now()), "")
	if _, err := db.conn.Exec(`PRAGMA user_version = 99`); err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	if got, _ := db.GetPost("kept.md"); got != nil {
		t.Error("rows from another schema version should be dropped")
	}
	var v int
	_ = db.conn.QueryRow(`PRAGMA user_version`).Scan(&v)
	if v != schemaVersion {
		t.Errorf("user_version = %d, want %d", v, schemaVersion)
	}

	// Same version keeps its rows.
	_ = db.UpsertPost(row("again.md", posttype.Note, time.Now()), "")
	db.Close()
	db, _ = Open(path)
	defer db.Close()
	if got, _ := db.GetPost("again.md"); got == nil {
		t.Error("rows at the current version should survive reopen")
	}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM posts`).Scan(&count); err != nil {
		t.Fatalf("posts table missing: %v", err)
	}
}

func TestUpsertAndGetPost(t *testing.T) {
	db := testDB(t)
	published := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	r := row("posts/2026/10/reply.md", posttype.Reply, published)
	r.Target = "https://example.com/a"
	r.Tags = []string{"indieweb", "go"}
	if err := db.UpsertPost(r, "In reply to https://example.com/a Agreed"); err != nil {
		t.Fatalf("UpsertPost: %v", err)
	}

	got, err := db.GetPost(r.Path)
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if got == nil {
		t.Fatal("post not found")
	}
	if got.Type != posttype.Reply || got.Target != r.Target || !got.PublishedAt.Equal(published) {
		t.Errorf("post = %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[1] != "go" {
		t.Errorf("tags = %v", got.Tags)
	}

	cs, err := db.GetChecksum(r.Path)
	if err != nil || cs != r.Checksum {
		t.Errorf("checksum = %q, %v", cs, err)
	}
}

func TestUpsertDefaults(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertPost(PostRow{Path: "bare.md", Checksum: "x"}, ""); err != nil {
		t.Fatalf("UpsertPost: %v", err)
	}
	got, _ := db.GetPost("bare.md")
	if got.Type != posttype.Note {
		t.Errorf("type = %q, want note", got.Type)
	}
	if got.PublishedAt.IsZero() || got.Tags == nil {
		t.Errorf("defaults not applied: %+v", got)
	}
}

func TestGetPost_NotFound(t *testing.T) {
	db := testDB(t)
	got, err := db.GetPost("missing.md")
	if err != nil || got != nil {
		t.Errorf("GetPost(missing) = %+v, %v", got, err)
	}
}

func TestDeletePost(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertPost(row("del.md", posttype.Note, time.Now()), "body")

	if err := db.DeletePost("del.md"); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	cs, _ := db.GetChecksum("del.md")
	if cs != "" {
		t.Errorf("deleted post still has checksum %q", cs)
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	old := row("up.md", posttype.Note, now)
	_ = db.UpsertPost(old, "old body")
	updated := row("up.md", posttype.Article, now)
	updated.Title = "New"
	updated.Checksum = "2"
	_ = db.UpsertPost(updated, "new body")

	got, _ := db.GetPost("up.md")
	if got.Checksum != "2" || got.Type != posttype.Article || got.Title != "New" {
		t.Errorf("post = %+v", got)
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestListPosts_OrderAndFilters(t *testing.T) {
	db := testDB(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	note := row("a.md", posttype.Note, base)
	note.Tags = []string{"go"}
	like := row("b.md", posttype.Like, base.Add(time.Hour))
	draft := row("c.md", posttype.Note, base.Add(2*time.Hour))
	draft.Status = models.StatusDraft
	for _, r := range []PostRow{note, like, draft} {
		if err := db.UpsertPost(r, ""); err != nil {
			t.Fatal(err)
		}
	}

	all, total, err := db.ListPosts(ListFilter{})
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if total != 3 || len(all) != 3 || all[0].Path != "c.md" || all[2].Path != "a.md" {
		t.Errorf("all = %+v (total %d)", all, total)
	}

	notes, total, _ := db.ListPosts(ListFilter{Type: posttype.Note})
	if total != 2 || len(notes) != 2 {
		t.Errorf("notes total = %d", total)
	}

	tagged, total, _ := db.ListPosts(ListFilter{Tag: "go"})
	if total != 1 || tagged[0].Path != "a.md" {
		t.Errorf("tagged = %+v", tagged)
	}

	published, total, _ := db.ListPosts(ListFilter{Status: models.StatusPublished})
	if total != 2 || len(published) != 2 {
		t.Errorf("published total = %d", total)
	}

	page, total, _ := db.ListPosts(ListFilter{Limit: 1, Offset: 1})
	if total != 3 || len(page) != 1 || page[0].Path != "b.md" {
		t.Errorf("page = %+v", page)
	}
}

func TestResponses(t *testing.T) {
	db := testDB(t)
	base := time.Now()
	r1 := row("r1.md", posttype.Reply, base)
	r1.Target = "https://example.com/post"
	r2 := row("r2.md", posttype.Like, base.Add(time.Minute))
	r2.Target = "https://example.com/post"
	other := row("r3.md", posttype.Reply, base)
	other.Target = "https://example.com/other"
	for _, r := range []PostRow{r1, r2, other} {
		_ = db.UpsertPost(r, "")
	}

	got, err := db.Responses("https://example.com/post")
	if err != nil {
		t.Fatalf("Responses: %v", err)
	}
	if len(got) != 2 || got[0].Path != "r1.md" || got[1].Path != "r2.md" {
		t.Errorf("responses = %+v", got)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	r := row("s.md", posttype.Article, time.Now())
	r.Title = "Search Me"
	_ = db.UpsertPost(r, "uniqueword appears here")

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "s.md" {
		t.Errorf("search results = %+v, want 1 hit for s.md", results)
	}
}

func TestSync(t *testing.T) {
	_, store, db := watcherTestEnv(t)
	_ = store.Write("posts/keep.md", []byte("---\ntype: article\ntitle: Keep\n---\n<p>kept</p>\n"))
	_ = db.UpsertPost(row("posts/stale.md", posttype.Note, time.Now()), "")

	stats, err := Sync(db, store, quietLogger())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if stats.Indexed != 1 || stats.Removed != 1 || stats.Failed != 0 {
		t.Errorf("stats = %+v", stats)
	}

	got, _ := db.GetPost("posts/keep.md")
	if got == nil || got.Type != posttype.Article || got.Title != "Keep" {
		t.Errorf("kept post = %+v", got)
	}
	if stale, _ := db.GetPost("posts/stale.md"); stale != nil {
		t.Error("stale entry should be removed")
	}

	again, _ := Sync(db, store, quietLogger())
	if again.Unchanged != 1 || again.Indexed != 0 {
		t.Errorf("second pass stats = %+v, want one unchanged", again)
	}
}
