// Package config builds the immutable settings and scan-target policy the
// scanner and cleaner consume. Everything environment-derived is read once
// here; the core packages never touch ambient process state.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/lakshaymaurya-felt/macmole/internal/inventory"
)

// Defaults for environment-tunable settings.
const (
	DefaultMinSizeMB         = 10
	DefaultCheckpointEvery   = 10
	DefaultConcurrency       = 4
	DefaultDownloadsAgeDays  = 30
	DefaultDuTimeoutSeconds  = 30
	defaultConfigName        = "config"
	defaultConfigType        = "yaml"
	envPrefix                = "MACMOLE"
	defaultStateSubdir       = ".macmole/state"
)

// Settings is the immutable, environment-derived configuration. Built once
// at startup and passed by value into the core.
type Settings struct {
	// HomeDir is the root of all default scan locations.
	HomeDir string

	// StateDir holds the checkpoint and lock files.
	StateDir string

	// MinSizeBytes drops smaller items from the inventory entirely.
	MinSizeBytes int64

	// CheckpointInterval is the number of processed items between
	// checkpoint flushes during a clean run.
	CheckpointInterval int

	// Concurrency bounds parallel size measurement during scans.
	Concurrency int

	// DownloadsAgeDays is the minimum age for a download to be a candidate.
	DownloadsAgeDays int

	// ProjectDirs are the roots searched for venvs and node_modules,
	// relative names resolved under HomeDir.
	ProjectDirs []string

	// Enabled toggles categories on or off.
	Enabled map[inventory.Category]bool
}

// Load reads settings from the environment (MACMOLE_* variables) and an
// optional config file at $HOME/.config/macmole/config.yaml.
func Load() (Settings, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Settings{}, fmt.Errorf("resolve home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("state_dir", filepath.Join(home, defaultStateSubdir))
	v.SetDefault("min_size_mb", DefaultMinSizeMB)
	v.SetDefault("checkpoint_interval", DefaultCheckpointEvery)
	v.SetDefault("concurrency", DefaultConcurrency)
	v.SetDefault("downloads_age_days", DefaultDownloadsAgeDays)
	v.SetDefault("project_dirs", []string{"Projects", "code", "dev", "repos", "Repositories", "Documents"})
	for _, c := range inventory.Categories() {
		v.SetDefault("scan."+c.String(), true)
	}

	v.SetConfigName(defaultConfigName)
	v.SetConfigType(defaultConfigType)
	v.AddConfigPath(filepath.Join(home, ".config", "macmole"))
	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; a malformed one is not.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("read config file: %w", err)
		}
	}

	s := Settings{
		HomeDir:            home,
		StateDir:           v.GetString("state_dir"),
		MinSizeBytes:       v.GetInt64("min_size_mb") * 1024 * 1024,
		CheckpointInterval: v.GetInt("checkpoint_interval"),
		Concurrency:        v.GetInt("concurrency"),
		DownloadsAgeDays:   v.GetInt("downloads_age_days"),
		Enabled:            make(map[inventory.Category]bool),
	}
	for _, dir := range v.GetStringSlice("project_dirs") {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(home, dir)
		}
		s.ProjectDirs = append(s.ProjectDirs, dir)
	}
	for _, c := range inventory.Categories() {
		s.Enabled[c] = v.GetBool("scan." + c.String())
	}
	return s.normalized(), nil
}

// normalized clamps nonsensical values back to defaults.
func (s Settings) normalized() Settings {
	if s.CheckpointInterval <= 0 {
		s.CheckpointInterval = DefaultCheckpointEvery
	}
	if s.Concurrency <= 0 {
		s.Concurrency = DefaultConcurrency
	}
	if s.MinSizeBytes < 0 {
		s.MinSizeBytes = 0
	}
	if s.DownloadsAgeDays < 0 {
		s.DownloadsAgeDays = 0
	}
	return s
}

// EnabledCategories returns the enabled categories in declared order.
func (s Settings) EnabledCategories() []inventory.Category {
	var out []inventory.Category
	for _, c := range inventory.Categories() {
		if s.Enabled[c] {
			out = append(out, c)
		}
	}
	return out
}
