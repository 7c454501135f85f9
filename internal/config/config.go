package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	configDirName  = "diffscope"
	configFileName = "config.json"

	defaultPort = 3000
)

// AppConfig is the user-level configuration loaded from the XDG config
// home. A missing file means defaults.
type AppConfig struct {
	// IgnorePatterns are gitignore-syntax patterns applied to both roots
	// of every comparison, on top of each root's own .gitignore.
	IgnorePatterns []string `json:"ignore_patterns"`
	// FingerprintAlways hashes same-size pairs even when mtimes match,
	// trading speed for correctness against mtime-preserving writes.
	FingerprintAlways bool `json:"fingerprint_always"`
	// Port is the default web server port; overridden by --port.
	Port int `json:"port"`
}

func Load() (AppConfig, string, error) {
	path, err := DefaultPath()
	if err != nil {
		return AppConfig{}, "", err
	}
	cfg, err := LoadFromPath(path)
	return cfg, path, err
}

func LoadFromPath(path string) (AppConfig, error) {
	cfg := AppConfig{Port: defaultPort}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return AppConfig{}, err
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return AppConfig{}, fmt.Errorf("port %d out of range", cfg.Port)
	}

	normalized := make([]string, 0, len(cfg.IgnorePatterns))
	for _, p := range cfg.IgnorePatterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		normalized = append(normalized, p)
	}
	cfg.IgnorePatterns = normalized

	return cfg, nil
}

func DefaultPath() (string, error) {
	home, err := configHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

func configHome() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return xdg, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config"), nil
}
