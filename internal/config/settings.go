package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

const (
	EnvConfigFile = "BREWFILE_CONFIG"
	EnvHostname   = "BREWFILE_HOSTNAME"
)

// Settings controls where brewfile keeps its files and which tools it runs.
// Every field is optional in settings.toml.
type Settings struct {
	ConfigFile   string `toml:"config_file"`
	BrewfilePath string `toml:"brewfile_path"`
	JournalDB    string `toml:"journal_db"`
	SnapshotDir  string `toml:"snapshot_dir"`
	Editor       string `toml:"editor"`
	Hostname     string `toml:"hostname"`
	BrewBin      string `toml:"brew_bin"`
}

// Dir returns the brewfile settings directory, respecting XDG_CONFIG_HOME.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, "brewfile")
}

// SettingsPath returns the location of settings.toml.
func SettingsPath() string {
	return filepath.Join(Dir(), "settings.toml")
}

// DefaultSettings returns the built-in locations: the configuration in
// $XDG_CONFIG_HOME/brewfile.json and the generated Brewfile in $HOME.
func DefaultSettings() *Settings {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dataDir := filepath.Join(xdg.DataHome, "brewfile")
	return &Settings{
		ConfigFile:   filepath.Join(xdg.ConfigHome, "brewfile.json"),
		BrewfilePath: filepath.Join(home, "Brewfile"),
		JournalDB:    filepath.Join(dataDir, "journal.db"),
		SnapshotDir:  filepath.Join(dataDir, "snapshots"),
		BrewBin:      "brew",
	}
}

// LoadSettings returns the defaults overlaid with settings.toml at path (if
// present) and then with environment overrides.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, s); err != nil {
			return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
	}

	if v := os.Getenv(EnvConfigFile); v != "" {
		s.ConfigFile = v
	}
	if v := os.Getenv(EnvHostname); v != "" {
		s.Hostname = v
	}

	s.ConfigFile = expandHome(s.ConfigFile)
	s.BrewfilePath = expandHome(s.BrewfilePath)
	s.JournalDB = expandHome(s.JournalDB)
	s.SnapshotDir = expandHome(s.SnapshotDir)
	return s, nil
}

// Machine returns the short hostname used as the machines key: the
// configured override, or the OS hostname up to its first dot.
func (s *Settings) Machine() (string, error) {
	if s.Hostname != "" {
		return s.Hostname, nil
	}
	host, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("failed to determine hostname: %w", err)
	}
	short, _, _ := strings.Cut(host, ".")
	return short, nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
