// Package config provides configuration for the branch engine: where
// disposable clones live, which remote to talk to, and logging. Values
// come from defaults, an optional YAML file, and AUTOCLAUDE_* environment
// variables, in increasing precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime options.
type Config struct {
	// CloneBaseDir is where per-task clones are created.
	CloneBaseDir string `mapstructure:"clone_base_dir"`

	// Remote is the git remote name used for fetch/push.
	Remote string `mapstructure:"remote"`

	// CloneMaxAge is how old a clone may get before the orphan sweep
	// removes it.
	CloneMaxAge time.Duration `mapstructure:"clone_max_age"`

	// CommandTimeout bounds each git subprocess invocation.
	CommandTimeout time.Duration `mapstructure:"command_timeout"`

	// LogFile enables rotated file logging when set.
	LogFile string `mapstructure:"log_file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		CloneBaseDir:   filepath.Join(os.TempDir(), "auto-claude"),
		Remote:         "origin",
		CloneMaxAge:    24 * time.Hour,
		CommandTimeout: 5 * time.Minute,
	}
}

// Load reads configuration from an optional file path. An empty path
// loads defaults plus environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("clone_base_dir", defaults.CloneBaseDir)
	v.SetDefault("remote", defaults.Remote)
	v.SetDefault("clone_max_age", defaults.CloneMaxAge)
	v.SetDefault("command_timeout", defaults.CommandTimeout)
	v.SetDefault("log_file", defaults.LogFile)

	v.SetEnvPrefix("AUTOCLAUDE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
