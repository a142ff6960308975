// Package config loads uimorph settings from file, environment, and
// defaults. Flags still win: commands only fall back to config values for
// flags the user did not set.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".uimorph"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for uimorph settings.
const envPrefix = "UIMORPH"

// Defaults applied when neither file, environment, nor flag sets a value.
const (
	DefaultWorkers = 4
)

// DefaultExtensions are the file extensions scanned for migratable code.
var DefaultExtensions = []string{".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs"}

// DefaultExcludeDirs are directory names skipped while walking.
var DefaultExcludeDirs = []string{"node_modules", "vendor", "dist", "build"}

// Config holds all uimorph settings.
type Config struct {
	// Ruleset is a path to a YAML ruleset file. Empty selects the
	// embedded built-in ruleset.
	Ruleset string `mapstructure:"ruleset"`
	// Extensions lists the file extensions to process.
	Extensions []string `mapstructure:"extensions"`
	// ExcludeDirs lists directory names to skip.
	ExcludeDirs []string `mapstructure:"exclude_dirs"`
	// Workers is the number of files migrated concurrently.
	Workers int `mapstructure:"workers"`
	// FailOnUnmapped makes migrate exit non-zero when any component
	// could not be mapped.
	FailOnUnmapped bool `mapstructure:"fail_on_unmapped"`
}

// Validate checks value ranges after all sources are merged.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if len(c.Extensions) == 0 {
		return fmt.Errorf("extensions must not be empty")
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	return nil
}

// Load reads configuration from file, environment variables, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise the config file is searched in CWD and $HOME. A missing config
// file is not an error; defaults apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("ruleset", "")
	v.SetDefault("extensions", DefaultExtensions)
	v.SetDefault("exclude_dirs", DefaultExcludeDirs)
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("fail_on_unmapped", false)
}
