// Copyright (c) 2026 ToeiRei
// AllSQLAdmin - database credential vault and connection broker
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads the application configuration from defaults, yaml
// files, ALLSQLADMIN_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/toeirei/allsqladmin/internal/fsutil"
)

const (
	appName    = "allsqladmin"
	configName = "allsqladmin"
	envPrefix  = "allsqladmin"
)

// Config is the resolved application configuration.
type Config struct {
	// DataDir holds the key file and the profile file unless they are set
	// explicitly.
	DataDir      string   `mapstructure:"data_dir" yaml:"data_dir"`
	KeyFile      string   `mapstructure:"key_file" yaml:"key_file"`
	ProfilesFile string   `mapstructure:"profiles_file" yaml:"profiles_file"`
	Language     string   `mapstructure:"language" yaml:"language"`
	LogLevel     string   `mapstructure:"log_level" yaml:"log_level"`
	Timeouts     Timeouts `mapstructure:"timeouts" yaml:"timeouts"`
	SampleLimit  int      `mapstructure:"sample_limit" yaml:"sample_limit"`
}

// Timeouts bound database calls when the caller sets no deadline.
type Timeouts struct {
	Connect time.Duration `mapstructure:"connect" yaml:"connect"`
	Query   time.Duration `mapstructure:"query" yaml:"query"`
}

// KeyPath is the effective key file location.
func (c Config) KeyPath() string {
	if c.KeyFile != "" {
		return c.KeyFile
	}
	return filepath.Join(c.DataDir, "secret.key")
}

// ProfilesPath is the effective profile file location.
func (c Config) ProfilesPath() string {
	if c.ProfilesFile != "" {
		return c.ProfilesFile
	}
	return filepath.Join(c.DataDir, "db_gui_favorites.json")
}

// DefaultDataDir is <user config dir>/allsqladmin, or ./files when the user
// config dir is unknown.
func DefaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "files"
	}
	return filepath.Join(dir, appName)
}

// Defaults returns the default value for every key.
func Defaults() map[string]any {
	return map[string]any{
		"data_dir":         DefaultDataDir(),
		"key_file":         "",
		"profiles_file":    "",
		"language":         "en",
		"log_level":        "info",
		"timeouts.connect": "15s",
		"timeouts.query":   "0s",
		"sample_limit":     100,
	}
}

// Default returns a Config populated from Defaults.
func Default() Config {
	return Config{
		DataDir:     DefaultDataDir(),
		Language:    "en",
		LogLevel:    "info",
		Timeouts:    Timeouts{Connect: 15 * time.Second},
		SampleLimit: 100,
	}
}

// GetConfigPath returns the full path for the configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "AllSQLAdmin")
		default:
			configDir = "/etc/" + appName
		}
	} else {
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(dir, appName)
	}
	return filepath.Join(configDir, configName+".yaml"), nil
}

// flagKeys maps persistent flag names to config keys.
var flagKeys = map[string]string{
	"data-dir":  "data_dir",
	"log-level": "log_level",
	"lang":      "language",
}

// LoadConfig resolves T from defaults, the first allsqladmin.yaml found in
// the user, system and current directories (or explicitPath when given),
// the environment and the flags of cmd. A missing config file is not an
// error.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, explicitPath *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	if explicitPath != nil && *explicitPath != "" {
		v.SetConfigFile(*explicitPath)
	}
	if p, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(p))
	}
	if p, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(p))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		for flag, key := range flagKeys {
			if f := cmd.Flags().Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return c, err
				}
			}
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

// Load is LoadConfig for Config with the package defaults and an empty
// DataDir replaced by the default one.
func Load(cmd *cobra.Command, explicitPath *string) (Config, error) {
	c, err := LoadConfig[Config](cmd, Defaults(), explicitPath)
	if err != nil {
		return c, err
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = DefaultDataDir()
	}
	if c.SampleLimit <= 0 {
		c.SampleLimit = 100
	}
	return c, nil
}

// WriteConfigFile writes c to the user (or system) config path.
func WriteConfigFile[T any](c *T, system bool) (string, error) {
	path, err := GetConfigPath(system)
	if err != nil {
		return "", err
	}
	return path, WriteConfigFileTo(c, path)
}

// WriteConfigFileTo writes c as yaml to path, creating parent directories.
func WriteConfigFileTo[T any](c *T, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := fsutil.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", filepath.Dir(path), err)
	}
	return fsutil.WriteFileAtomic(path, data, 0o600)
}
