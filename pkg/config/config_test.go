package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func (s *sample) Validate() error {
	if s.Port == 0 {
		return errors.New("port is required")
	}
	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("RAIDO_TEST_NAME", "blog")
	p := writeFile(t, "name: ${RAIDO_TEST_NAME}\nport: ${RAIDO_TEST_PORT:-9090}\n")

	var s sample
	if err := Load(p, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "blog" || s.Port != 9090 {
		t.Errorf("loaded = %+v", s)
	}
}

func TestLoad_Validates(t *testing.T) {
	p := writeFile(t, "name: x\n")
	var s sample
	if err := Load(p, &s); err == nil {
		t.Error("expected validation error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	var s sample
	if err := Load(filepath.Join(t.TempDir(), "none.yaml"), &s); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadOptional_KeepsDefaults(t *testing.T) {
	s := sample{Name: "default", Port: 8080}
	if err := LoadOptional(filepath.Join(t.TempDir(), "none.yaml"), &s); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if s.Name != "default" || s.Port != 8080 {
		t.Errorf("defaults changed: %+v", s)
	}

	p := writeFile(t, "port: 1234\n")
	if err := LoadOptional(p, &s); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if s.Port != 1234 || s.Name != "default" {
		t.Errorf("merged = %+v", s)
	}
}

func TestExpand(t *testing.T) {
	t.Setenv("RAIDO_SET", "v")
	t.Setenv("RAIDO_EMPTY", "")
	cases := map[string]string{
		"${RAIDO_SET}":            "v",
		"${RAIDO_SET:-d}":         "v",
		"${RAIDO_EMPTY:-d}":       "d",
		"${RAIDO_UNSET_XYZ}":      "",
		"${RAIDO_UNSET_XYZ:-a:b}": "a:b",
	}
	for in, want := range cases {
		if got := Expand(in); got != want {
			t.Errorf("Expand(%q) = %q, want %q", in, got, want)
		}
	}
}
