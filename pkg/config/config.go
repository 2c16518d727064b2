package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sambabib/dependency-version-checker/pkg/registry"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FileName is the config file looked up from the working directory upward.
const FileName = ".dvc.yaml"

// EnvPrefix prefixes the environment variables that override config keys,
// e.g. DVC_REGISTRY.
const EnvPrefix = "DVC"

// Formats lists the supported output formats.
var Formats = []string{"text", "json", "yaml", "sarif"}

// Config represents the configuration for the dependency version checker
type Config struct {
	// Registry is the base URL every package is looked up under.
	Registry string `mapstructure:"registry"`

	// Format is the report format: text, json, yaml or sarif.
	Format string `mapstructure:"format"`

	Verbose bool `mapstructure:"verbose"`

	// Timeout bounds the whole check. Zero means no limit.
	Timeout time.Duration `mapstructure:"timeout"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Registry: registry.DefaultURL,
		Format:   "text",
	}
}

// Load builds the configuration from, lowest precedence first: defaults, the
// config file, DVC_* environment variables and the flags that were set on
// the command line. An empty configPath searches for FileName from the
// working directory upward; a missing file is not an error in that case.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("registry", defaults.Registry)
	v.SetDefault("format", defaults.Format)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("timeout", defaults.Timeout)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configPath == "" {
		if wd, err := os.Getwd(); err == nil {
			configPath = FindConfigFile(wd)
		}
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configPath, err)
		}
	}

	if flags != nil {
		for _, key := range []string{"registry", "format", "verbose", "timeout"} {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("error binding flag --%s: %w", key, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfigFile searches for FileName in dir and its parents and returns
// the first match, or "" when there is none.
func FindConfigFile(dir string) string {
	currentDir := dir
	for {
		configPath := filepath.Join(currentDir, FileName)
		if info, err := os.Stat(configPath); err == nil && !info.IsDir() {
			return configPath
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// Validate checks that the configuration can be used for a check.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Registry)
	if err != nil {
		return fmt.Errorf("invalid registry URL %q: %w", c.Registry, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid registry URL %q: must be an absolute http(s) URL", c.Registry)
	}

	if !c.IsKnownFormat() {
		return fmt.Errorf("unknown output format %q (expected one of %s)", c.Format, strings.Join(Formats, ", "))
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}

// IsKnownFormat reports whether Format is one of Formats.
func (c *Config) IsKnownFormat() bool {
	for _, f := range Formats {
		if f == c.Format {
			return true
		}
	}
	return false
}
