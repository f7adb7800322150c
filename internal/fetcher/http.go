package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	ErrTimeout      = errors.New("timeout")
	ErrBodyTooLarge = errors.New("response body too large")
)

const defaultMaxBody = 2 << 20

type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %s", e.Status)
}

// Client performs single-attempt GETs raced against a fixed timeout.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	maxBody    int64
}

func New(timeout time.Duration, userAgent string) *Client {
	if timeout <= 0 {
		timeout = 6 * time.Second
	}
	return &Client{
		httpClient: &http.Client{},
		timeout:    timeout,
		userAgent:  userAgent,
		maxBody:    defaultMaxBody,
	}
}

func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) WithMaxBodyBytes(n int64) *Client {
	if n > 0 {
		c.maxBody = n
	}
	return c
}

func (c *Client) Timeout() time.Duration {
	return c.timeout
}

type result struct {
	body []byte
	err  error
}

// Get fetches url. Whichever settles first, the response or the timer, wins;
// a response arriving after the timer is dropped.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan result, 1)
	go func() {
		body, err := c.do(ctx, url)
		done <- result{body: body, err: err}
	}()

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case r := <-done:
		return r.body, r.err
	case <-timer.C:
		return nil, fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) do(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: over %d bytes", ErrBodyTooLarge, c.maxBody)
	}
	return body, nil
}
