package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kanjidex/internal/store"
)

func seedJSONCache(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "stroke_count_cache.json")
	require.NoError(t, (&store.JSONFile{Path: path}).Save(store.NewCacheFrom(map[string]int{"一": 1, "二": 2, "三": 3})))
	return path
}

func TestCacheStatsJSONFile(t *testing.T) {
	path := seedJSONCache(t, t.TempDir())

	opts, _ := testOptions()
	stdout, _, err := execute(t, opts, "--format", "json", "cache", "stats", "--cache", path)
	require.NoError(t, err)

	var stats CacheStats
	require.NoError(t, json.Unmarshal(decodeResponse(t, stdout).Data, &stats))
	assert.Equal(t, path, stats.Location)
	assert.Equal(t, store.KindJSON, stats.Backend)
	assert.Equal(t, 3, stats.Entries)
	assert.Zero(t, stats.Generation)
}

func TestCacheConvertToSQLite(t *testing.T) {
	dir := t.TempDir()
	src := seedJSONCache(t, dir)
	dst := filepath.Join(dir, "strokes.db")

	opts, _ := testOptions()
	stdout, _, err := execute(t, opts, "cache", "convert", src, dst)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ Copied 3 entries")

	opts, _ = testOptions()
	stdout, _, err = execute(t, opts, "cache", "stats", "--cache", dst)
	require.NoError(t, err)
	assert.Contains(t, stdout, "backend:    sqlite")
	assert.Contains(t, stdout, "entries:    3")
	assert.Contains(t, stdout, "generation: 1")
}

func TestCacheConvertExplicitBackends(t *testing.T) {
	dir := t.TempDir()
	src := seedJSONCache(t, dir)
	dst := filepath.Join(dir, "strokes.cache")

	opts, _ := testOptions()
	_, _, err := execute(t, opts, "cache", "convert", "--to-backend", store.KindSQLite, src, dst)
	require.NoError(t, err)

	s, err := store.Open(dst)
	require.NoError(t, err)
	defer s.Close()
	n, ok := s.Load().Get("三")
	require.True(t, ok)
	assert.Equal(t, 3, n)
}

func TestCacheConvertMissingSource(t *testing.T) {
	dir := t.TempDir()

	opts, _ := testOptions()
	stdout, _, err := execute(t, opts, "cache", "convert",
		filepath.Join(dir, "absent.json"), filepath.Join(dir, "strokes.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, ErrCodeNotFound)
}
