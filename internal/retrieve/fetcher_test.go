package retrieve

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, "<html>page</html>")
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5 * time.Second)
	body, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html>page</html>", string(body))
	assert.Equal(t, userAgent, gotUA)
}

func TestHTTPFetcher_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5 * time.Second)
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestHTTPFetcher_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	f := NewHTTPFetcher(5 * time.Second)
	_, err := f.Fetch(ctx, srv.URL)
	assert.Error(t, err)
}

func TestRateLimitedFetcher_PassesThrough(t *testing.T) {
	inner := &mockFetcher{pages: map[string][]byte{"u": []byte("body")}}
	f := NewRateLimitedFetcher(inner, 100, 1)

	body, err := f.Fetch(context.Background(), "u")
	require.NoError(t, err)
	assert.Equal(t, "body", string(body))
}

func TestRateLimitedFetcher_CanceledWhileWaiting(t *testing.T) {
	inner := &mockFetcher{pages: map[string][]byte{"u": []byte("body")}}
	// Burst of 1 at a very slow rate: the second call must wait.
	f := NewRateLimitedFetcher(inner, 0.001, 1)

	_, err := f.Fetch(context.Background(), "u")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = f.Fetch(ctx, "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
	assert.Len(t, inner.requests, 1)
}

func TestBreakerFetcher_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &mockFetcher{errs: map[string]error{"u": fmt.Errorf("connection refused")}}
	f := NewBreakerFetcher(inner)

	for i := 0; i < 5; i++ {
		_, err := f.Fetch(context.Background(), "u")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	}

	// Sixth call fails fast without reaching the inner fetcher.
	_, err := f.Fetch(context.Background(), "u")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "open"))
	assert.Len(t, inner.requests, 5)
}

func TestBreakerFetcher_SuccessKeepsClosed(t *testing.T) {
	inner := &mockFetcher{pages: map[string][]byte{"u": []byte("body")}}
	f := NewBreakerFetcher(inner)

	for i := 0; i < 10; i++ {
		body, err := f.Fetch(context.Background(), "u")
		require.NoError(t, err)
		assert.Equal(t, "body", string(body))
	}
}
