package resolver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kanjidex/internal/store"
	"github.com/roach88/kanjidex/internal/testutil"
)

const twoStrokeSVG = `<svg xmlns="http://www.w3.org/2000/svg"><g><path d="M1"/><path d="M2"/></g></svg>`

// newTestServer serves handler and counts requests per path.
func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestResolver(srv *httptest.Server, sleeper *testutil.FakeSleeper, opts ...KanjiVGOption) *KanjiVG {
	base := []KanjiVGOption{
		WithBaseURL(srv.URL + "/kanji/%s.svg"),
		WithHTTPClient(srv.Client()),
		WithSleeper(sleeper.Sleep),
		WithTimeout(2 * time.Second),
	}
	return NewKanjiVG(append(base, opts...)...)
}

func TestKanjiVGCacheShortCircuit(t *testing.T) {
	srv, hits := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	})
	sleeper := testutil.NewFakeSleeper()
	k := newTestResolver(srv, sleeper)

	cache := store.NewCacheFrom(map[string]int{"二": 7})
	l := k.Resolve(context.Background(), "二", cache)

	assert.True(t, l.Found())
	assert.Equal(t, 7, l.Strokes, "cached value returned unchanged")
	assert.Equal(t, SourceCache, l.Source)
	assert.False(t, l.Remote())
	assert.Equal(t, int32(0), hits.Load())
	assert.Empty(t, sleeper.Calls())
}

func TestKanjiVGFetchesAndCaches(t *testing.T) {
	var gotPath, gotUA string
	srv, hits := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(twoStrokeSVG))
	})
	sleeper := testutil.NewFakeSleeper()
	k := newTestResolver(srv, sleeper)

	cache := store.NewCache()
	l := k.Resolve(context.Background(), "二", cache)

	require.True(t, l.Found())
	assert.Equal(t, 2, l.Strokes)
	assert.Equal(t, SourceRemote, l.Source)
	assert.Equal(t, 1, l.Attempts)
	assert.True(t, l.Remote())
	assert.Equal(t, "/kanji/04e8c.svg", gotPath)
	assert.Contains(t, gotUA, "kanjidex")
	assert.Equal(t, int32(1), hits.Load())

	n, ok := cache.Get("二")
	assert.True(t, ok)
	assert.Equal(t, 2, n)
	assert.Empty(t, sleeper.Calls(), "no retry pause after a first-attempt success")

	// A second lookup is now served from the cache.
	l = k.Resolve(context.Background(), "二", cache)
	assert.Equal(t, SourceCache, l.Source)
	assert.Equal(t, int32(1), hits.Load())
}

func TestKanjiVGRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(twoStrokeSVG))
	})
	sleeper := testutil.NewFakeSleeper()
	k := newTestResolver(srv, sleeper, WithMaxAttempts(3), WithRetryDelay(500*time.Millisecond))

	l := k.Resolve(context.Background(), "二", store.NewCache())

	require.True(t, l.Found())
	assert.Equal(t, 2, l.Attempts)
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, sleeper.Calls())
}

func TestKanjiVGZeroPathsIsFailure(t *testing.T) {
	srv, hits := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`))
	})
	sleeper := testutil.NewFakeSleeper()
	k := newTestResolver(srv, sleeper, WithMaxAttempts(2))

	cache := store.NewCache()
	l := k.Resolve(context.Background(), "二", cache)

	assert.False(t, l.Found())
	assert.Equal(t, SourceNone, l.Source)
	assert.ErrorIs(t, l.Err, ErrNoStrokes)
	assert.Equal(t, 2, l.Attempts)
	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, 1, len(sleeper.Calls()), "pause only between attempts")
	assert.False(t, cache.Has("二"))
}

func TestKanjiVGExhaustsAttempts(t *testing.T) {
	srv, hits := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	sleeper := testutil.NewFakeSleeper()
	k := newTestResolver(srv, sleeper, WithMaxAttempts(3))

	l := k.Resolve(context.Background(), "龘", store.NewCache())

	assert.False(t, l.Found())
	assert.True(t, l.Remote())
	assert.Equal(t, 3, l.Attempts)
	assert.Equal(t, int32(3), hits.Load())
	require.Error(t, l.Err)
	assert.Contains(t, l.Err.Error(), "HTTP 404")
	assert.Equal(t, 2, sleeper.Count(DefaultRetryDelay))
}

func TestKanjiVGPerAttemptTimeout(t *testing.T) {
	release := make(chan struct{})
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	sleeper := testutil.NewFakeSleeper()
	k := newTestResolver(srv, sleeper, WithTimeout(50*time.Millisecond), WithMaxAttempts(1))

	l := k.Resolve(context.Background(), "二", store.NewCache())
	assert.False(t, l.Found())
	assert.Equal(t, 1, l.Attempts)
	require.Error(t, l.Err)
}

func TestKanjiVGCancelledContextStopsRetrying(t *testing.T) {
	srv, hits := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	})
	sleeper := testutil.NewFakeSleeper()
	k := newTestResolver(srv, sleeper, WithMaxAttempts(5))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := k.Resolve(ctx, "二", store.NewCache())
	assert.False(t, l.Found())
	assert.Equal(t, 1, l.Attempts)
	assert.ErrorIs(t, l.Err, context.Canceled)
	assert.Equal(t, int32(0), hits.Load(), "request never leaves a cancelled context")
}

func TestKanjiVGRejectsMultiCharacter(t *testing.T) {
	srv, hits := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})
	k := newTestResolver(srv, testutil.NewFakeSleeper())

	l := k.Resolve(context.Background(), "一二", store.NewCache())
	assert.False(t, l.Found())
	assert.False(t, l.Remote())
	assert.ErrorIs(t, l.Err, ErrNotSingleCharacter)
	assert.Equal(t, int32(0), hits.Load())
}

func TestKanjiVGURLFor(t *testing.T) {
	k := NewKanjiVG()
	url, err := k.URLFor("一")
	require.NoError(t, err)
	assert.Equal(t, "https://raw.githubusercontent.com/KanjiVG/kanjivg/master/kanji/04e00.svg", url)
}

func TestWithMaxAttemptsFloor(t *testing.T) {
	k := NewKanjiVG(WithMaxAttempts(0))
	assert.Equal(t, 1, k.maxAttempts)
}
