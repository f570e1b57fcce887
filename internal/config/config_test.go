package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ServerURL != defaultServerURL {
		t.Fatalf("ServerURL = %q, want %q", cfg.ServerURL, defaultServerURL)
	}
	if cfg.PageSize != defaultPageSize {
		t.Fatalf("PageSize = %d, want %d", cfg.PageSize, defaultPageSize)
	}

	wantSessionDir, err := expandPath(defaultSessionDir)
	if err != nil {
		t.Fatalf("expandPath(defaultSessionDir) returned error: %v", err)
	}
	if cfg.SessionDir != wantSessionDir {
		t.Fatalf("SessionDir = %q, want %q", cfg.SessionDir, wantSessionDir)
	}
	if !strings.HasPrefix(cfg.LogFile, home) {
		t.Fatalf("LogFile = %q, want it under HOME %q", cfg.LogFile, home)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
server_url = "  https://photos.example.com  "
page_size = 24
session_dir = "  ~/sessions  "
log_file = "/tmp/loupe.log"

[listing]
order_by = " takenAt "
order = "DESC"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ServerURL != "https://photos.example.com" {
		t.Fatalf("ServerURL = %q", cfg.ServerURL)
	}
	if cfg.PageSize != 24 {
		t.Fatalf("PageSize = %d, want 24", cfg.PageSize)
	}
	if cfg.SessionDir != filepath.Join(home, "sessions") {
		t.Fatalf("SessionDir = %q, want it under HOME %q", cfg.SessionDir, home)
	}
	if cfg.LogFile != "/tmp/loupe.log" {
		t.Fatalf("LogFile = %q", cfg.LogFile)
	}
	if cfg.Listing.OrderBy != "takenAt" || cfg.Listing.Order != "desc" {
		t.Fatalf("Listing = %#v", cfg.Listing)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
server_url = "   "
page_size = 0
session_dir = ""

[listing]
order = "sideways"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := Default()
	if cfg.ServerURL != want.ServerURL || cfg.PageSize != want.PageSize || cfg.SessionDir != want.SessionDir {
		t.Fatalf("cfg = %#v, want defaults %#v", cfg, want)
	}
	if cfg.Listing.Order != "" {
		t.Fatalf("Listing.Order = %q, want empty for unknown value", cfg.Listing.Order)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`server_url = [`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/a/b")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("ExpandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
