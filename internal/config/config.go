package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the settings loupe reads at startup.
type Config struct {
	ServerURL  string
	PageSize   int
	SessionDir string
	LogFile    string
	Listing    Listing
}

// Listing is the default sort order of listings.
type Listing struct {
	OrderBy string
	Order   string
}

const (
	defaultConfigPath = "~/.config/loupe/config.toml"
	defaultServerURL  = "http://127.0.0.1:3000"
	defaultPageSize   = 12
	defaultSessionDir = "~/.cache/loupe/sessions"
	defaultLogFile    = "~/.local/state/loupe/loupe.log"
)

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		ServerURL:  defaultServerURL,
		PageSize:   defaultPageSize,
		SessionDir: mustExpand(defaultSessionDir),
		LogFile:    mustExpand(defaultLogFile),
	}
}

// Load reads the config at path, falling back to defaults when it is missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		ServerURL  string `toml:"server_url"`
		PageSize   int    `toml:"page_size"`
		SessionDir string `toml:"session_dir"`
		LogFile    string `toml:"log_file"`
		Listing    struct {
			OrderBy string `toml:"order_by"`
			Order   string `toml:"order"`
		} `toml:"listing"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.ServerURL); v != "" {
		cfg.ServerURL = v
	}
	if raw.PageSize > 0 {
		cfg.PageSize = raw.PageSize
	}
	if v := strings.TrimSpace(raw.SessionDir); v != "" {
		cfg.SessionDir = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	cfg.Listing.OrderBy = strings.TrimSpace(raw.Listing.OrderBy)
	cfg.Listing.Order = normalizeOrder(raw.Listing.Order)

	return cfg, nil
}

func normalizeOrder(order string) string {
	switch strings.ToLower(strings.TrimSpace(order)) {
	case "asc":
		return "asc"
	case "desc":
		return "desc"
	}
	return ""
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
