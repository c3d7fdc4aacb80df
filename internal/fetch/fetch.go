// Package fetch provides polite HTTP fetching for requests made outside the
// rendering engine. Every request is spaced by a configurable delay and
// carries a fixed header set so the scraper is not mistaken for a burst bot.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Error represents a failure while fetching a URL.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the polite client.
type Options struct {
	Timeout time.Duration
	Delay   time.Duration
	Headers map[string]string
}

// Client spaces its requests by the configured delay.
type Client struct {
	http    *http.Client
	delay   time.Duration
	headers map[string]string
	lastReq time.Time
}

// NewClient builds a polite client.
func NewClient(opts Options) *Client {
	return &Client{
		http:    &http.Client{Timeout: opts.Timeout},
		delay:   opts.Delay,
		headers: opts.Headers,
	}
}

// Probe performs a GET against urlStr and returns the status code. The body
// is drained and discarded; callers only care whether the site answers.
func (c *Client) Probe(ctx context.Context, urlStr string) (int, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return 0, &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}

	if err := c.space(ctx); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return 0, &Error{URL: urlStr, Message: "failed to create request", Cause: err}
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &Error{URL: urlStr, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, &Error{URL: urlStr, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}
	return resp.StatusCode, nil
}

// space enforces the request delay since the previous call.
func (c *Client) space(ctx context.Context) error {
	if c.delay <= 0 || c.lastReq.IsZero() {
		c.lastReq = time.Now()
		return nil
	}
	wait := c.delay - time.Since(c.lastReq)
	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	c.lastReq = time.Now()
	return nil
}
