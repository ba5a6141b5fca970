package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kanjidex.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, []string{"heisig-rtk-index.zip", "heisig-rtk-index-4.zip"}, cfg.Archives)
	assert.Equal(t, "public/data/kanji.json", cfg.Output)
	assert.Equal(t, "scripts/stroke_count_cache.json", cfg.Cache.Path)
	assert.Equal(t, ModeKanjiVG, cfg.Resolver.Mode)
	assert.Equal(t, 2, cfg.Resolver.MaxAttempts)
	assert.Equal(t, 10*time.Second, cfg.GetTimeout())
	assert.Equal(t, 500*time.Millisecond, cfg.GetRetryDelay())
	assert.Equal(t, 150*time.Millisecond, cfg.GetPacing())
	assert.Equal(t, 50, cfg.FlushEvery)
	assert.Equal(t, 10, cfg.Fallback)
	assert.Equal(t, 0, cfg.Limit)
	require.NoError(t, cfg.Validate())

	// Defaults are not shared between calls.
	cfg.Archives[0] = "changed.zip"
	assert.Equal(t, "heisig-rtk-index.zip", Default().Archives[0])
}

func TestLoadNoPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAMLOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
archives:
  - one.zip
output: out/kanji.json
cache:
  path: cache.db
resolver:
  mode: chain
  pacing: 0s
  retry_delay: 1s
limit: 800
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"one.zip"}, cfg.Archives)
	assert.Equal(t, "out/kanji.json", cfg.Output)
	assert.Equal(t, "cache.db", cfg.Cache.Path)
	assert.Equal(t, "", cfg.Cache.Backend, "backend inferred from path later")
	assert.Equal(t, ModeChain, cfg.Resolver.Mode)
	assert.Equal(t, time.Duration(0), cfg.GetPacing())
	assert.Equal(t, time.Second, cfg.GetRetryDelay())
	assert.Equal(t, 2, cfg.Resolver.MaxAttempts, "untouched fields keep defaults")
	assert.Equal(t, 800, cfg.Limit)
	require.NoError(t, cfg.Validate())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")

	_, err = Load(writeConfig(t, "archives: [unterminated"))
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("KANJIDEX_ARCHIVES", "a.zip, b.zip,,")
	t.Setenv("KANJIDEX_OUTPUT", "env.json")
	t.Setenv("KANJIDEX_CACHE", "env-cache.json")
	t.Setenv("KANJIDEX_CACHE_BACKEND", "sqlite")
	t.Setenv("KANJIDEX_RESOLVER", "table")
	t.Setenv("KANJIDEX_BASE_URL", "http://localhost/%s.svg")
	t.Setenv("KANJIDEX_PACING", "1ms")
	t.Setenv("KANJIDEX_LOG_LEVEL", "debug")
	t.Setenv("KANJIDEX_LIMIT", "25")

	cfg, err := Load(writeConfig(t, "output: file.json\nlimit: 3\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"a.zip", "b.zip"}, cfg.Archives)
	assert.Equal(t, "env.json", cfg.Output, "environment beats file")
	assert.Equal(t, "env-cache.json", cfg.Cache.Path)
	assert.Equal(t, "sqlite", cfg.Cache.Backend)
	assert.Equal(t, ModeTable, cfg.Resolver.Mode)
	assert.Equal(t, "http://localhost/%s.svg", cfg.Resolver.BaseURL)
	assert.Equal(t, time.Millisecond, cfg.GetPacing())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 25, cfg.Limit)
	require.NoError(t, cfg.Validate())
}

func TestEnvOverrideInvalidLimit(t *testing.T) {
	t.Setenv("KANJIDEX_LIMIT", "lots")

	_, err := Load("")
	assert.ErrorContains(t, err, "KANJIDEX_LIMIT")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"empty output", func(c *Config) { c.Output = " " }, "output path"},
		{"empty cache path", func(c *Config) { c.Cache.Path = "" }, "cache path"},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "redis" }, "invalid cache backend"},
		{"unknown mode", func(c *Config) { c.Resolver.Mode = "guess" }, "invalid resolver mode"},
		{"base url without verb", func(c *Config) { c.Resolver.BaseURL = "http://x/" }, "exactly one %s"},
		{"zero attempts", func(c *Config) { c.Resolver.MaxAttempts = 0 }, "max_attempts"},
		{"bad timeout", func(c *Config) { c.Resolver.Timeout = "soon" }, "invalid resolver timeout"},
		{"negative pacing", func(c *Config) { c.Resolver.Pacing = "-1s" }, "pacing must not be negative"},
		{"zero flush", func(c *Config) { c.FlushEvery = 0 }, "flush_every"},
		{"negative limit", func(c *Config) { c.Limit = -1 }, "limit"},
		{"zero fallback", func(c *Config) { c.Fallback = 0 }, "fallback"},
		{"bad level", func(c *Config) { c.Logging.Level = "chatty" }, "logging level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestDurationAccessorsFallBack(t *testing.T) {
	cfg := Default()
	cfg.Resolver.Timeout = "nonsense"
	cfg.Resolver.Pacing = ""

	assert.Equal(t, 10*time.Second, cfg.GetTimeout())
	assert.Equal(t, 150*time.Millisecond, cfg.GetPacing())
}
