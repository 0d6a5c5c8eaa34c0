package bgg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/mrlokans/bgsync/internal/logging"
)

const (
	DefaultBaseURL   = "https://boardgamegeek.com/xmlapi2"
	DefaultUserAgent = "bgsync/1.0 (+https://github.com/mrlokans/bgsync)"

	// MaxAttempts is the total number of HTTP attempts per logical fetch,
	// shared by every retryable outcome kind.
	MaxAttempts = 10

	defaultConnectTimeout = 10 * time.Second
	defaultReadTimeout    = 30 * time.Second
)

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL   string
	UserAgent string
	Token     string

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration

	// RequestsPerSecond throttles outgoing requests; 0 disables throttling.
	RequestsPerSecond float64

	// Transport replaces the network round-tripper, mainly for tests.
	Transport Doer

	// Parser replaces the default XML document parser.
	Parser Parser

	// Sleep replaces the context-aware wait between attempts.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Client fetches collection and play data from the upstream XML API
type Client struct {
	doer        Doer
	baseURL     string
	parser      Parser
	sleep       func(ctx context.Context, d time.Duration) error
	maxAttempts int
}

// NewClient creates a client whose requests pass through the user agent,
// token, throttling and logging middleware.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = defaultConnectTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaultReadTimeout
	}
	if opts.Parser == nil {
		opts.Parser = NewXMLParser()
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}

	base := opts.Transport
	if base == nil {
		base = newHTTPClient(opts.ConnectTimeout, opts.ReadTimeout)
	}

	mws := []Middleware{
		WithRequestLogging(),
		WithUserAgent(opts.UserAgent),
		WithBearerToken(opts.Token),
	}
	if opts.RequestsPerSecond > 0 {
		mws = append(mws, WithRateLimit(rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)))
	}

	return &Client{
		doer:        Chain(base, mws...),
		baseURL:     opts.BaseURL,
		parser:      opts.Parser,
		sleep:       opts.Sleep,
		maxAttempts: MaxAttempts,
	}
}

// newHTTPClient applies the per-attempt connect and read timeouts
func newHTTPClient(connectTimeout, readTimeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.TLSHandshakeTimeout = connectTimeout
	transport.ResponseHeaderTimeout = readTimeout

	return &http.Client{
		Transport: transport,
		Timeout:   connectTimeout + readTimeout,
	}
}

// FetchCollection returns every owned item: base games first, then
// expansions. Both sub-fetches run concurrently with their own retry
// budget; the first failure cancels the other and is returned as is.
func (c *Client) FetchCollection(ctx context.Context, username string) ([]CollectionItem, error) {
	if err := CollectionQuery(username, ItemKindBaseGame).Validate(); err != nil {
		return nil, err
	}

	var baseGames, expansions []CollectionItem
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := c.fetchCollectionKind(gctx, username, ItemKindBaseGame)
		baseGames = items
		return err
	})
	g.Go(func() error {
		items, err := c.fetchCollectionKind(gctx, username, ItemKindExpansion)
		expansions = items
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := make([]CollectionItem, 0, len(baseGames)+len(expansions))
	all = append(all, baseGames...)
	all = append(all, expansions...)
	return all, nil
}

func (c *Client) fetchCollectionKind(ctx context.Context, username string, kind ItemKind) ([]CollectionItem, error) {
	return fetchWithRetry(ctx, c, CollectionQuery(username, kind), func(body []byte) ([]CollectionItem, error) {
		return c.parser.ParseCollection(body, kind)
	})
}

// FetchPlays returns one 1-indexed page of play history. It is stateless:
// merging pages is up to the caller.
func (c *Client) FetchPlays(ctx context.Context, username string, page int) (*PlaysPage, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be >= 1, got %d", ErrInvalidInput, page)
	}
	return fetchWithRetry(ctx, c, PlaysQuery(username, page), c.parser.ParsePlays)
}

// transportError marks a failed round-trip that never produced a status
type transportError struct {
	err error
}

func (e *transportError) Error() string {
	return fmt.Sprintf("request failed: %v", e.err)
}

func (e *transportError) Unwrap() error {
	return e.err
}

// retryState is owned by a single fetchWithRetry call
type retryState struct {
	attempt        int
	lastStatusCode int
}

// fetchWithRetry drives fetchOnce for the same query until it succeeds,
// hits a fatal status, or uses up the attempt budget. The wait between
// attempts is the only suspension point and is interrupted by ctx.
func fetchWithRetry[T any](ctx context.Context, c *Client, q Query, parse func([]byte) (T, error)) (T, error) {
	var zero T
	if err := q.Validate(); err != nil {
		return zero, err
	}

	var state retryState
	for {
		outcome, err := c.fetchOnce(ctx, q)
		reason := outcome.Kind.String()
		if err != nil {
			reason = "transport_error"
			if ctxErr := ctx.Err(); ctxErr != nil {
				return zero, ctxErr
			}
			var te *transportError
			if !errors.As(err, &te) {
				return zero, err
			}
			logging.Debug().Err(err).Str("path", q.Path).Int("attempt", state.attempt+1).Msg("[BGG] transport failure")
		} else {
			switch {
			case outcome.Kind == OutcomeSuccess:
				return parse(outcome.Body)
			case outcome.Retryable():
				state.lastStatusCode = outcome.StatusCode
			default:
				logging.Warn().Str("path", q.Path).Int("status", outcome.StatusCode).Msg("[BGG] unexpected status, not retrying")
				return zero, &UnexpectedStatusError{StatusCode: outcome.StatusCode}
			}
		}

		state.attempt++
		if state.attempt >= c.maxAttempts {
			logging.Warn().
				Str("path", q.Path).
				Int("attempts", state.attempt).
				Int("last_status", state.lastStatusCode).
				Msg("[BGG] retries exhausted")
			return zero, &RetryExhaustedError{Attempts: state.attempt, LastStatusCode: state.lastStatusCode}
		}

		delay := DelayFor(state.attempt)
		logging.Info().
			Str("path", q.Path).
			Str("outcome", reason).
			Int("status", outcome.StatusCode).
			Int("attempt", state.attempt).
			Dur("delay", delay).
			Msg("[BGG] retrying")
		if err := c.sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
}

// fetchOnce issues exactly one GET and classifies its status
func (c *Client) fetchOnce(ctx context.Context, q Query) (Outcome, error) {
	if err := q.Validate(); err != nil {
		return Outcome{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, q.URL(c.baseURL), nil)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.doer.Do(req)
	if err != nil {
		if errors.Is(err, errThrottled) {
			return Outcome{}, err
		}
		return Outcome{}, &transportError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return Classify(resp.StatusCode, nil), nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Outcome{}, &transportError{err: fmt.Errorf("read body: %w", err)}
	}
	return Classify(resp.StatusCode, body), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
