package bgg

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/mrlokans/bgsync/internal/logging"
)

// Doer executes a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a function to the Doer interface
type DoerFunc func(req *http.Request) (*http.Response, error)

func (f DoerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Middleware decorates every request issued by the fetch primitive.
// Cross-cutting concerns (headers, throttling, logging) live here rather
// than in the retry loop.
type Middleware func(next Doer) Doer

// Chain wraps base with the given middleware; the first one runs outermost.
func Chain(base Doer, mws ...Middleware) Doer {
	d := base
	for i := len(mws) - 1; i >= 0; i-- {
		d = mws[i](d)
	}
	return d
}

// WithUserAgent sets the User-Agent header on requests that lack one
func WithUserAgent(userAgent string) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			if userAgent != "" && req.Header.Get("User-Agent") == "" {
				req.Header.Set("User-Agent", userAgent)
			}
			return next.Do(req)
		})
	}
}

// WithBearerToken authenticates requests with an application token
func WithBearerToken(token string) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			if token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			return next.Do(req)
		})
	}
}

// errThrottled marks a request the limiter refused to wait for. Nothing was
// sent, so it must not count as a failed attempt.
var errThrottled = errors.New("bgg: request throttled")

// WithRateLimit blocks until the limiter grants a token. Waiting honours the
// request context, so cancellation interrupts a throttled request too. When
// the wait would outlast the context deadline the request fails at once
// with an error matching context.DeadlineExceeded.
func WithRateLimit(limiter *rate.Limiter) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			if limiter != nil {
				ctx := req.Context()
				if err := limiter.Wait(ctx); err != nil {
					if ctxErr := ctx.Err(); ctxErr != nil {
						return nil, fmt.Errorf("%w: %w", errThrottled, ctxErr)
					}
					if _, ok := ctx.Deadline(); ok {
						return nil, fmt.Errorf("%w: %w", errThrottled, context.DeadlineExceeded)
					}
					return nil, fmt.Errorf("%w: %v", errThrottled, err)
				}
			}
			return next.Do(req)
		})
	}
}

// WithRequestLogging logs each round-trip at debug level
func WithRequestLogging() Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.Do(req)
			event := logging.Debug().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("query", req.URL.RawQuery).
				Dur("elapsed", time.Since(start))
			if err != nil {
				event.Err(err).Msg("[BGG] request failed")
				return nil, err
			}
			event.Int("status", resp.StatusCode).Msg("[BGG] request completed")
			return resp, nil
		})
	}
}
