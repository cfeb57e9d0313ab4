package internal

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/raido/internal/sse"
)

func testComponents(t *testing.T) *components {
	t.Helper()
	dir := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Vault.Path = filepath.Join(dir, "vault")
	cfg.SQLite.Path = filepath.Join(dir, "raido.db")
	cfg.Micropub.PublishImmediately = true

	app, err := newApplication([]Option{WithConfig(cfg), WithLogOutput(&bytes.Buffer{})})
	if err != nil {
		t.Fatalf("newApplication: %v", err)
	}
	rt, err := bootstrap(app)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	t.Cleanup(func() { rt.db.Close() })
	return rt
}

func TestNewApplication_RequiresConfig(t *testing.T) {
	if _, err := newApplication(nil); err == nil {
		t.Fatal("expected error without config")
	}
}

func TestRootRouter(t *testing.T) {
	rt := testComponents(t)
	broker := sse.NewBroker(0)
	defer broker.Close()
	srv := httptest.NewServer(newRootRouter(rt, broker))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health/live")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("live status = %d", resp.StatusCode)
	}

	resp, err = http.Post(srv.URL+"/micropub", "application/x-www-form-urlencoded",
		strings.NewReader("h=entry&content=hello+world"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("publish status = %d", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	if !strings.HasPrefix(loc, "http://localhost:8080/posts/") {
		t.Errorf("Location = %q", loc)
	}

	resp, err = http.Get(srv.URL + "/api/posts" + strings.TrimPrefix(loc, "http://localhost:8080"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("get published post status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body bytes.Buffer
	_, _ = body.ReadFrom(resp.Body)
	if !strings.Contains(body.String(), `raido_posts_published_total{post_type="note"} 1`) {
		t.Errorf("metrics missing published counter:\n%s", body.String())
	}
}
