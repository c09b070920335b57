// Package client is the HTTP fetcher the ingestion core consumes. It maps
// transport failures to a typed FetchError so callers can tell a missing
// feed from a provider outage without touching transport details.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

type Response struct {
	StatusCode int
	Body       []byte
}

type Interface interface {
	Get(ctx context.Context, path string) (*Response, error)
}

// FetchErrorKind classifies a fetch failure.
type FetchErrorKind string

const (
	FetchNotFound    FetchErrorKind = "NOT_FOUND"
	FetchTimeout     FetchErrorKind = "TIMEOUT"
	FetchServerError FetchErrorKind = "SERVER_ERROR"
)

// FetchError is a typed fetch failure. NotFound is recoverable (the feed is
// simply not published); Timeout and ServerError may be retried or fall
// back to cached data.
type FetchError struct {
	Kind       FetchErrorKind
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s (status %d)", e.URL, e.Kind, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a FetchError for an unpublished feed.
func IsNotFound(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == FetchNotFound
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	// GetFunc overrides Get when set. Tests use it to stub the provider.
	GetFunc func(ctx context.Context, path string) (*Response, error)
}

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}

	return &Client{
		baseURL: opts.BaseURL,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		maxRetries: opts.MaxRetries,
	}
}

// Get fetches baseURL+path. Timeouts and 5xx responses are retried with
// backoff up to MaxRetries; 404 returns immediately as FetchNotFound.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	if c.GetFunc != nil {
		return c.GetFunc(ctx, path)
	}

	fullURL := path
	if c.baseURL != "" {
		fullURL = c.baseURL + path
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			log.Debug().Str("url", fullURL).Int("attempt", attempt).Msg("Retrying fetch")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(1<<attempt) * 100 * time.Millisecond):
			}
		}

		resp, err := c.do(ctx, fullURL)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var fe *FetchError
		if errors.As(err, &fe) && fe.Kind == FetchNotFound {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, fullURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		kind := FetchServerError
		if isTimeout(err) {
			kind = FetchTimeout
		}
		return nil, &FetchError{Kind: kind, URL: fullURL, Err: err}
	}
	defer func(body io.ReadCloser) {
		if closeErr := body.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Closing response body")
		}
	}(resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &FetchError{Kind: FetchNotFound, URL: fullURL, StatusCode: resp.StatusCode}
	case resp.StatusCode >= 500:
		return nil, &FetchError{Kind: FetchServerError, URL: fullURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Kind: FetchServerError, URL: fullURL, Err: err}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
