// Package config loads owt's TOML configuration. Discovery order is
// project config next to the bare repo, then the user's global config;
// EDITOR/TERMINAL env vars override whatever the file says.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// BranchType is one entry of the add-modal branch-type table.
type BranchType struct {
	Name     string `toml:"name"`
	Prefix   string `toml:"prefix"`
	Base     string `toml:"base"`
	Shortcut string `toml:"shortcut"`
}

// Config holds owt's recognized settings.
type Config struct {
	Editor      string
	Terminal    string
	CopyFiles   []string
	BranchTypes []BranchType
}

// Default returns owt's built-in defaults, used when no config file exists
// and no env override is set.
func Default() *Config {
	return &Config{
		BranchTypes: []BranchType{
			{Name: "Feature", Prefix: "feature/", Base: "main", Shortcut: "f"},
			{Name: "Bugfix", Prefix: "bugfix/", Base: "main", Shortcut: "b"},
			{Name: "Hotfix", Prefix: "hotfix/", Base: "main", Shortcut: "h"},
		},
	}
}

// Paths returns the two candidate config file locations in discovery order:
// `.owt/config.toml` next to the bare repo, then `~/.config/owt/config.toml`
// (`$XDG_CONFIG_HOME/owt/config.toml` when XDG_CONFIG_HOME is set).
func Paths(bareRepoDir string) []string {
	var paths []string
	if bareRepoDir != "" {
		paths = append(paths, filepath.Join(filepath.Dir(bareRepoDir), ".owt", "config.toml"))
	}
	home, err := os.UserHomeDir()
	if err == nil {
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			configHome = filepath.Join(home, ".config")
		}
		paths = append(paths, filepath.Join(configHome, "owt", "config.toml"))
	}
	return paths
}

// Load reads the first existing config file from Paths, falling back to
// Default() when none exist, then layers EDITOR/TERMINAL env overrides on
// top.
func Load(bareRepoDir string) (*Config, error) {
	cfg := Default()

	for _, path := range Paths(bareRepoDir) {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		v := viper.New()
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return cfg, err
		}
		applyViper(cfg, v)
		break
	}

	if editor := os.Getenv("EDITOR"); editor != "" {
		cfg.Editor = editor
	}
	if term := os.Getenv("TERMINAL"); term != "" {
		cfg.Terminal = term
	}

	return cfg, nil
}

func applyViper(cfg *Config, v *viper.Viper) {
	if editor := v.GetString("editor"); editor != "" {
		cfg.Editor = editor
	}
	if terminal := v.GetString("terminal"); terminal != "" {
		cfg.Terminal = terminal
	}
	if files := v.GetStringSlice("copy_files"); len(files) > 0 {
		cfg.CopyFiles = files
	}

	rawTypes, ok := v.Get("branch_types").([]any)
	if !ok || len(rawTypes) == 0 {
		return
	}
	var types []BranchType
	for _, raw := range rawTypes {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		bt := BranchType{
			Name:     stringField(m, "name"),
			Prefix:   stringField(m, "prefix"),
			Base:     stringField(m, "base"),
			Shortcut: stringField(m, "shortcut"),
		}
		if bt.Shortcut != "" {
			bt.Shortcut = strings.ToLower(bt.Shortcut[:1])
		}
		if bt.Name != "" {
			types = append(types, bt)
		}
	}
	if len(types) > 0 {
		cfg.BranchTypes = types
	}
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
