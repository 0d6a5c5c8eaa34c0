package bgg

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func okDoer(seen *[]*http.Request) Doer {
	return DoerFunc(func(req *http.Request) (*http.Response, error) {
		*seen = append(*seen, req)
		rec := httptest.NewRecorder()
		rec.WriteHeader(http.StatusOK)
		return rec.Result(), nil
	})
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next Doer) Doer {
			return DoerFunc(func(req *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.Do(req)
			})
		}
	}

	var seen []*http.Request
	d := Chain(okDoer(&seen), mark("outer"), mark("middle"), mark("inner"))
	req := httptest.NewRequest(http.MethodGet, "http://example.test/plays", nil)
	_, err := d.Do(req)

	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "middle", "inner"}, order)
	assert.Len(t, seen, 1)
}

func TestWithUserAgent(t *testing.T) {
	var seen []*http.Request
	d := Chain(okDoer(&seen), WithUserAgent("bgsync-test"))

	req := httptest.NewRequest(http.MethodGet, "http://example.test/", nil)
	_, err := d.Do(req)
	require.NoError(t, err)
	assert.Equal(t, "bgsync-test", seen[0].Header.Get("User-Agent"))

	req = httptest.NewRequest(http.MethodGet, "http://example.test/", nil)
	req.Header.Set("User-Agent", "custom")
	_, err = d.Do(req)
	require.NoError(t, err)
	assert.Equal(t, "custom", seen[1].Header.Get("User-Agent"))
}

func TestWithBearerToken(t *testing.T) {
	var seen []*http.Request

	_, err := Chain(okDoer(&seen), WithBearerToken("")).Do(httptest.NewRequest(http.MethodGet, "http://example.test/", nil))
	require.NoError(t, err)
	assert.Empty(t, seen[0].Header.Get("Authorization"))

	_, err = Chain(okDoer(&seen), WithBearerToken("abc")).Do(httptest.NewRequest(http.MethodGet, "http://example.test/", nil))
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", seen[1].Header.Get("Authorization"))
}

func TestWithRateLimit_HonoursCancellation(t *testing.T) {
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	var seen []*http.Request
	d := Chain(okDoer(&seen), WithRateLimit(limiter))

	_, err := d.Do(httptest.NewRequest(http.MethodGet, "http://example.test/", nil))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "http://example.test/", nil).WithContext(ctx)
	_, err = d.Do(req)

	assert.Error(t, err)
	assert.Len(t, seen, 1)
}

func TestWithRateLimit_RefusalMatchesDeadline(t *testing.T) {
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	require.True(t, limiter.Allow())
	var seen []*http.Request
	d := Chain(okDoer(&seen), WithRateLimit(limiter))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	start := time.Now()
	_, err := d.Do(httptest.NewRequest(http.MethodGet, "http://example.test/", nil).WithContext(ctx))

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, err, errThrottled)
	assert.Empty(t, seen)
	assert.Less(t, time.Since(start), time.Second)
}
