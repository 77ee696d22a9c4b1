package retrieve

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// userAgent mirrors a desktop browser; the portal serves a reduced page to
// unknown agents.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// maxBodyBytes caps page reads; a forecast table page is tens of kilobytes.
const maxBodyBytes = 4 << 20

// HTTPFetcher fetches pages over HTTP with a hard timeout.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher whose requests time out after timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return body, nil
}

// RateLimitedFetcher wraps a Fetcher with a token-bucket limiter so the
// service stays polite to the government portal regardless of caller load.
type RateLimitedFetcher struct {
	inner   Fetcher
	limiter *rate.Limiter
}

// NewRateLimitedFetcher allows rps requests per second with the given burst.
func NewRateLimitedFetcher(inner Fetcher, rps float64, burst int) *RateLimitedFetcher {
	return &RateLimitedFetcher{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (f *RateLimitedFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return f.inner.Fetch(ctx, url)
}

// BreakerFetcher wraps a Fetcher with a circuit breaker so a portal outage
// fails fast instead of tying up request handlers on timeouts.
type BreakerFetcher struct {
	inner   Fetcher
	breaker *gobreaker.CircuitBreaker[[]byte]
}

// NewBreakerFetcher trips after 5 consecutive failures and probes again
// after 30 seconds.
func NewBreakerFetcher(inner Fetcher) *BreakerFetcher {
	settings := gobreaker.Settings{
		Name:    "bmd-fetch",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &BreakerFetcher{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

func (f *BreakerFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f.breaker.Execute(func() ([]byte, error) {
		return f.inner.Fetch(ctx, url)
	})
}
