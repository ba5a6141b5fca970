// Package config loads kanjidex settings.
//
// Precedence, lowest first: built-in defaults, the YAML file passed with
// --config, a .env file in the working directory, KANJIDEX_* environment
// variables, and finally explicit command-line flags (applied by the cli
// package).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/roach88/kanjidex/internal/pipeline"
	"github.com/roach88/kanjidex/internal/record"
	"github.com/roach88/kanjidex/internal/resolver"
	"github.com/roach88/kanjidex/internal/store"
)

// Resolver modes.
const (
	ModeKanjiVG = "kanjivg"
	ModeTable   = "table"
	ModeChain   = "chain"
)

// ValidModes lists the accepted resolver modes.
var ValidModes = []string{ModeKanjiVG, ModeTable, ModeChain}

// Default paths, relative to the working directory.
const (
	DefaultOutput = "public/data/kanji.json"
)

// DefaultArchives are read when no archive is named on the command line.
var DefaultArchives = []string{"heisig-rtk-index.zip", "heisig-rtk-index-4.zip"}

// Config holds all kanjidex settings.
type Config struct {
	// Archives are the ZIP inputs of extract, in priority order.
	Archives []string `yaml:"archives"`

	// Output is the dataset path written by extract and rewritten by enrich.
	Output string `yaml:"output"`

	Cache    CacheConfig    `yaml:"cache"`
	Resolver ResolverConfig `yaml:"resolver"`
	Logging  LoggingConfig  `yaml:"logging"`

	// FlushEvery is the number of records between cache saves.
	FlushEvery int `yaml:"flush_every"`

	// Limit caps the records processed per run; 0 means unlimited.
	Limit int `yaml:"limit"`

	// Fallback is the stroke count used when resolution fails.
	Fallback int `yaml:"fallback"`
}

// CacheConfig selects the stroke-count cache.
type CacheConfig struct {
	Path    string `yaml:"path"`
	Backend string `yaml:"backend"` // json, sqlite, or empty to infer from Path
}

// ResolverConfig configures stroke-count resolution.
type ResolverConfig struct {
	Mode        string `yaml:"mode"` // kanjivg, table, chain
	BaseURL     string `yaml:"base_url"`
	MaxAttempts int    `yaml:"max_attempts"`
	Timeout     string `yaml:"timeout"`
	RetryDelay  string `yaml:"retry_delay"`
	Pacing      string `yaml:"pacing"`
}

// LoggingConfig configures the CLI logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Archives: append([]string(nil), DefaultArchives...),
		Output:   DefaultOutput,
		Cache: CacheConfig{
			Path: store.DefaultJSONPath,
		},
		Resolver: ResolverConfig{
			Mode:        ModeKanjiVG,
			BaseURL:     resolver.DefaultBaseURL,
			MaxAttempts: resolver.DefaultMaxAttempts,
			Timeout:     resolver.DefaultTimeout.String(),
			RetryDelay:  resolver.DefaultRetryDelay.String(),
			Pacing:      pipeline.DefaultPacing.String(),
		},
		Logging:    LoggingConfig{Level: "info"},
		FlushEvery: pipeline.DefaultFlushEvery,
		Fallback:   record.DefaultStrokeCount,
	}
}

// Load builds the configuration from defaults, the YAML file at path
// (skipped when path is empty), .env and the environment.
//
// A path that was named but cannot be read is an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies KANJIDEX_* environment variables.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("KANJIDEX_ARCHIVES"); v != "" {
		c.Archives = splitList(v)
	}
	if v := os.Getenv("KANJIDEX_OUTPUT"); v != "" {
		c.Output = v
	}
	if v := os.Getenv("KANJIDEX_CACHE"); v != "" {
		c.Cache.Path = v
	}
	if v := os.Getenv("KANJIDEX_CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("KANJIDEX_RESOLVER"); v != "" {
		c.Resolver.Mode = v
	}
	if v := os.Getenv("KANJIDEX_BASE_URL"); v != "" {
		c.Resolver.BaseURL = v
	}
	if v := os.Getenv("KANJIDEX_PACING"); v != "" {
		c.Resolver.Pacing = v
	}
	if v := os.Getenv("KANJIDEX_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("KANJIDEX_LIMIT"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid KANJIDEX_LIMIT %q: %w", v, err)
		}
		c.Limit = n
	}
	return nil
}

// splitList splits a comma-separated list, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GetTimeout returns the per-request timeout as a duration.
func (c *Config) GetTimeout() time.Duration {
	return parseDuration(c.Resolver.Timeout, resolver.DefaultTimeout)
}

// GetRetryDelay returns the pause between attempts as a duration.
func (c *Config) GetRetryDelay() time.Duration {
	return parseDuration(c.Resolver.RetryDelay, resolver.DefaultRetryDelay)
}

// GetPacing returns the pause after network lookups as a duration.
func (c *Config) GetPacing() time.Duration {
	return parseDuration(c.Resolver.Pacing, pipeline.DefaultPacing)
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Output) == "" {
		return fmt.Errorf("output path must not be empty")
	}
	if strings.TrimSpace(c.Cache.Path) == "" {
		return fmt.Errorf("cache path must not be empty")
	}
	if c.Cache.Backend != "" && !contains(store.ValidKinds, c.Cache.Backend) {
		return fmt.Errorf("invalid cache backend: %s (valid: %v)", c.Cache.Backend, store.ValidKinds)
	}
	if !contains(ValidModes, c.Resolver.Mode) {
		return fmt.Errorf("invalid resolver mode: %s (valid: %v)", c.Resolver.Mode, ValidModes)
	}
	if strings.Count(c.Resolver.BaseURL, "%s") != 1 {
		return fmt.Errorf("resolver base_url must contain exactly one %%s: %q", c.Resolver.BaseURL)
	}
	if c.Resolver.MaxAttempts < 1 {
		return fmt.Errorf("resolver max_attempts must be at least 1, got %d", c.Resolver.MaxAttempts)
	}
	for _, f := range []struct{ name, value string }{
		{"timeout", c.Resolver.Timeout},
		{"retry_delay", c.Resolver.RetryDelay},
		{"pacing", c.Resolver.Pacing},
	} {
		d, err := time.ParseDuration(f.value)
		if err != nil {
			return fmt.Errorf("invalid resolver %s %q: %w", f.name, f.value, err)
		}
		if d < 0 {
			return fmt.Errorf("resolver %s must not be negative, got %s", f.name, f.value)
		}
	}
	if c.FlushEvery < 1 {
		return fmt.Errorf("flush_every must be at least 1, got %d", c.FlushEvery)
	}
	if c.Limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", c.Limit)
	}
	if c.Fallback < 1 {
		return fmt.Errorf("fallback must be at least 1, got %d", c.Fallback)
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging level: %w", err)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
