package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NCBI_API_KEY", "from-env")

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.LogLevel != "info" || c.NCBI.BatchSize != 200 || c.NCBI.Tool != "insdckit" {
		t.Fatalf("defaults = %+v", c)
	}
	if c.NCBI.APIKey != "from-env" {
		t.Fatalf("api key = %q, want value from NCBI_API_KEY", c.NCBI.APIKey)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("NCBI_API_KEY", "from-env")
	path := filepath.Join(t.TempDir(), "cfg.json")
	data := `{"log_level":"debug","workers":4,"ncbi":{"api_key":"from-file","batch_size":50}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.LogLevel != "debug" || c.Workers != 4 || c.NCBI.BatchSize != 50 {
		t.Fatalf("config = %+v", c)
	}
	if c.NCBI.MaxRetries != 3 {
		t.Fatalf("unset field lost its default: %+v", c.NCBI)
	}
	if c.NCBI.APIKey != "from-file" {
		t.Fatalf("api key = %q, want file value", c.NCBI.APIKey)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("explicit missing config accepted")
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Fatalf("malformed config accepted")
	}
}
