package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvDebug, "")
	dir := filepath.Join(t.TempDir(), "taskr")
	path := filepath.Join(dir, DefaultConfigFileName)

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, DefaultAPIURL)
	}
	if cfg.PageSize != DefaultPageSize {
		t.Fatalf("PageSize = %d, want %d", cfg.PageSize, DefaultPageSize)
	}
	if !cfg.PersistSession {
		t.Fatal("sessions should persist by default")
	}
	if cfg.DBPath != filepath.Join(dir, DefaultDBName) {
		t.Fatalf("DBPath = %q", cfg.DBPath)
	}
}

func TestLoadOrCreateReadsFile(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvDebug, "")
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFileName)
	content := `api_url = "https://tasks.example.com/api/"
db_path = "local.db"
page_size = 50
request_timeout = "15s"
persist_session = false
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if cfg.APIURL != "https://tasks.example.com/api" {
		t.Fatalf("trailing slash should be trimmed, got %q", cfg.APIURL)
	}
	if cfg.DBPath != filepath.Join(dir, "local.db") {
		t.Fatalf("relative db_path should resolve against config dir, got %q", cfg.DBPath)
	}
	if cfg.PageSize != 50 {
		t.Fatalf("PageSize = %d, want 50", cfg.PageSize)
	}
	if cfg.RequestTimeout.Duration != 15*time.Second {
		t.Fatalf("RequestTimeout = %v, want 15s", cfg.RequestTimeout)
	}
	if cfg.PersistSession {
		t.Fatal("persist_session = false was ignored")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvAPIURL, "http://127.0.0.1:9999/api")
	t.Setenv(EnvDebug, "1")
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIURL != "http://127.0.0.1:9999/api" {
		t.Fatalf("env api url not applied: %q", cfg.APIURL)
	}
	if !cfg.Debug {
		t.Fatal("TASKR_DEBUG should enable debug")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"relative url", func(c *Config) { c.APIURL = "/api" }, "invalid api_url"},
		{"bad scheme", func(c *Config) { c.APIURL = "ftp://host/api" }, "unsupported scheme"},
		{"page size", func(c *Config) { c.PageSize = 0 }, "invalid page_size"},
		{"timeout", func(c *Config) { c.RequestTimeout.Duration = -time.Second }, "invalid request_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default(t.TempDir())
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	os.WriteFile(path, []byte("api_url = [unterminated"), 0o600)
	if _, err := LoadOrCreate(path); err == nil {
		t.Fatal("expected parse error")
	}
}
