package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadFromPathMissingFile(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("missing config should load defaults, got %v", err)
	}
	if cfg.Port != 3000 {
		t.Fatalf("default port = %d, want 3000", cfg.Port)
	}
	if cfg.FingerprintAlways {
		t.Fatal("FingerprintAlways should default to false")
	}
	if len(cfg.IgnorePatterns) != 0 {
		t.Fatalf("default patterns = %v, want none", cfg.IgnorePatterns)
	}
}

func TestLoadFromPathEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("  \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("blank config should load defaults, got %v", err)
	}
	if cfg.Port != 3000 {
		t.Fatalf("port = %d, want 3000", cfg.Port)
	}
}

func TestLoadFromPathFullConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"ignore_patterns": ["*.log", "  ", "node_modules/"],
		"fingerprint_always": true,
		"port": 8080
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("port = %d, want 8080", cfg.Port)
	}
	if !cfg.FingerprintAlways {
		t.Fatal("fingerprint_always not applied")
	}
	want := []string{"*.log", "node_modules/"}
	if !reflect.DeepEqual(cfg.IgnorePatterns, want) {
		t.Fatalf("patterns = %v, want %v (blanks dropped)", cfg.IgnorePatterns, want)
	}
}

func TestLoadFromPathInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("invalid JSON should fail")
	}
}

func TestLoadFromPathPortRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"port": 70000}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("out-of-range port should fail")
	}
}

func TestDefaultPathHonorsXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath: %v", err)
	}
	want := filepath.Join(dir, "diffscope", "config.json")
	if path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}
}
