package cli

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kanjidex/internal/pipeline"
	"github.com/roach88/kanjidex/internal/store"
)

// kanjiVGServer serves two-path SVGs for 二 and three-path SVGs for 三.
func kanjiVGServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/kanji/04e8c.svg":
			w.Write([]byte(`<svg xmlns="http://www.w3.org/2000/svg"><path d="M1"/><path d="M2"/></svg>`))
		case "/kanji/04e09.svg":
			w.Write([]byte(`<svg xmlns="http://www.w3.org/2000/svg"><path d="M1"/><path d="M2"/><path d="M3"/></svg>`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLookupRemote(t *testing.T) {
	srv := kanjiVGServer(t)
	cache := filepath.Join(t.TempDir(), "cache.json")

	opts, sleeper := testOptions()
	opts.HTTPClient = srv.Client()
	stdout, _, err := execute(t, opts, "lookup",
		"--cache", cache, "--base-url", srv.URL+"/kanji/%s.svg", "二", "三")
	require.NoError(t, err)

	assert.Contains(t, stdout, "二\t2\tremote")
	assert.Contains(t, stdout, "三\t3\tremote")
	// Paced between the two remote lookups, not after the last.
	assert.Equal(t, 1, sleeper.Count(pipeline.DefaultPacing))

	saved := (&store.JSONFile{Path: cache}).Load()
	n, ok := saved.Get("二")
	require.True(t, ok)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, saved.Len())
}

func TestLookupUsesCache(t *testing.T) {
	srv := kanjiVGServer(t)
	cache := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, (&store.JSONFile{Path: cache}).Save(store.NewCacheFrom(map[string]int{"二": 9})))

	opts, sleeper := testOptions()
	opts.HTTPClient = srv.Client()
	stdout, _, err := execute(t, opts, "lookup",
		"--cache", cache, "--base-url", srv.URL+"/kanji/%s.svg", "二")
	require.NoError(t, err)

	assert.Contains(t, stdout, "二\t9\tcache")
	assert.Empty(t, sleeper.Calls())
}

func TestLookupOfflineUnresolved(t *testing.T) {
	cache := filepath.Join(t.TempDir(), "cache.json")

	opts, _ := testOptions()
	stdout, _, err := execute(t, opts, "lookup", "--offline", "--cache", cache, "一", "鬱")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeUnresolved)

	assert.Contains(t, stdout, "一\t1\ttable")
	assert.Contains(t, stdout, "鬱\t-\tnone")
	// Nothing learned remotely, so the cache file is not written.
	assert.NoFileExists(t, cache)
}

func TestLookupRequiresArgs(t *testing.T) {
	opts, _ := testOptions()
	_, _, err := execute(t, opts, "lookup")
	require.Error(t, err)
}
