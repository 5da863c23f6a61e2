package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	configFileName   = "config.json"
	workbookDBName   = "cf0.sqlite"
	workbooksDirName = "workbooks"
)

// Store is rooted at the cf0 data dir (default ~/.cf0). Each workbook
// lives in its own subdirectory with a private SQLite database.
type Store struct {
	Dir string
}

var ErrWorkbookNotFound = errors.New("workbook not found")

// DefaultDir resolves the data dir: $CF0_DIR when set, else ~/.cf0.
func DefaultDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("CF0_DIR")); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cf0"), nil
}

// Ensure creates the store layout if missing.
func (s Store) Ensure() error {
	if strings.TrimSpace(s.Dir) == "" {
		return errors.New("store dir not set")
	}
	return os.MkdirAll(s.workbooksDir(), 0o755)
}

func (s Store) workbooksDir() string {
	return filepath.Join(s.Dir, workbooksDirName)
}

func (s Store) workbookDir(id string) string {
	return filepath.Join(s.workbooksDir(), id)
}

func (s Store) workbookDBPath(id string) string {
	return filepath.Join(s.workbookDir(id), workbookDBName)
}

func (s Store) configPath() string {
	return filepath.Join(s.Dir, configFileName)
}

// Config is the per-user global configuration.
type Config struct {
	CurrentWorkbookID string `json:"currentWorkbookId,omitempty"`
	Theme             string `json:"theme,omitempty"`
}

// LoadConfig reads config.json; a missing file is an empty config, not
// an error.
func (s Store) LoadConfig() (Config, error) {
	var cfg Config
	b, err := os.ReadFile(s.configPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", configFileName, err)
	}
	return cfg, nil
}

// SaveConfig writes config.json atomically (tmp + rename).
func (s Store) SaveConfig(cfg Config) error {
	if err := s.Ensure(); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.configPath() + ".tmp"
	if err := os.WriteFile(tmp, append(b, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.configPath())
}
