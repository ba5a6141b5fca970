package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/kanjidex/internal/store"
)

// Defaults match the fair-use expectations of raw.githubusercontent.com.
const (
	DefaultBaseURL     = "https://raw.githubusercontent.com/KanjiVG/kanjivg/master/kanji/%s.svg"
	DefaultMaxAttempts = 2
	DefaultTimeout     = 10 * time.Second
	DefaultRetryDelay  = 500 * time.Millisecond

	// maxSVGBytes caps a response body; KanjiVG files are a few KiB.
	maxSVGBytes = 2 << 20

	userAgent = "kanjidex/0.1 (+https://github.com/roach88/kanjidex)"
)

// ErrNoStrokes is reported when a document parsed but contained no paths.
var ErrNoStrokes = errors.New("no stroke paths in document")

// KanjiVG resolves stroke counts from KanjiVG SVG files.
type KanjiVG struct {
	baseURL     string
	client      *http.Client
	maxAttempts int
	timeout     time.Duration
	retryDelay  time.Duration
	sleep       Sleeper
	logger      *zap.Logger
}

// KanjiVGOption configures a KanjiVG resolver.
type KanjiVGOption func(*KanjiVG)

// WithBaseURL sets the URL template. It must contain one %s, replaced by
// the five-digit hex code point.
func WithBaseURL(tmpl string) KanjiVGOption {
	return func(k *KanjiVG) { k.baseURL = tmpl }
}

// WithHTTPClient sets the HTTP client (tests use httptest clients).
func WithHTTPClient(c *http.Client) KanjiVGOption {
	return func(k *KanjiVG) { k.client = c }
}

// WithMaxAttempts sets the number of requests per lookup (minimum 1).
func WithMaxAttempts(n int) KanjiVGOption {
	return func(k *KanjiVG) {
		if n < 1 {
			n = 1
		}
		k.maxAttempts = n
	}
}

// WithTimeout bounds each individual request.
func WithTimeout(d time.Duration) KanjiVGOption {
	return func(k *KanjiVG) { k.timeout = d }
}

// WithRetryDelay sets the pause between failed attempts.
func WithRetryDelay(d time.Duration) KanjiVGOption {
	return func(k *KanjiVG) { k.retryDelay = d }
}

// WithSleeper replaces the real sleep (tests pass a fake).
func WithSleeper(s Sleeper) KanjiVGOption {
	return func(k *KanjiVG) { k.sleep = s }
}

// WithLogger sets the logger used for per-attempt diagnostics.
func WithLogger(l *zap.Logger) KanjiVGOption {
	return func(k *KanjiVG) { k.logger = l }
}

// NewKanjiVG creates a KanjiVG resolver with defaults applied before opts.
func NewKanjiVG(opts ...KanjiVGOption) *KanjiVG {
	k := &KanjiVG{
		baseURL:     DefaultBaseURL,
		client:      http.DefaultClient,
		maxAttempts: DefaultMaxAttempts,
		timeout:     DefaultTimeout,
		retryDelay:  DefaultRetryDelay,
		sleep:       Sleep,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// URLFor returns the SVG location for kanji.
func (k *KanjiVG) URLFor(kanji string) (string, error) {
	hex, err := CodePointHex(kanji)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(k.baseURL, hex), nil
}

// Resolve implements Resolver.
func (k *KanjiVG) Resolve(ctx context.Context, kanji string, cache *store.Cache) Lookup {
	if l, ok := fromCache(kanji, cache); ok {
		return l
	}

	url, err := k.URLFor(kanji)
	if err != nil {
		return Lookup{Source: SourceNone, Err: err}
	}

	var lastErr error
	attempts := 0
	for attempts < k.maxAttempts {
		attempts++
		n, err := k.fetch(ctx, url)
		if err == nil && n > 0 {
			if cache != nil {
				cache.Put(kanji, n)
			}
			return Lookup{Strokes: n, Source: SourceRemote, Attempts: attempts}
		}
		if err == nil {
			err = ErrNoStrokes
		}
		lastErr = err
		k.logger.Debug("stroke fetch attempt failed",
			zap.String("kanji", kanji),
			zap.String("url", url),
			zap.Int("attempt", attempts),
			zap.Error(err))

		if attempts < k.maxAttempts {
			if serr := k.sleep(ctx, k.retryDelay); serr != nil {
				lastErr = serr
				break
			}
		}
	}

	return Lookup{Source: SourceNone, Attempts: attempts, Err: lastErr}
}

// fetch performs one bounded GET and counts the strokes in the response.
func (k *KanjiVG) fetch(ctx context.Context, url string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "image/svg+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := k.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxSVGBytes))
		return 0, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(resp.Status))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSVGBytes))
	if err != nil {
		return 0, fmt.Errorf("failed to read response: %w", err)
	}
	return CountStrokes(body)
}
