// Package httpclient is the outbound HTTP stack of the storefront clients:
// a pooled client that retries safe reads, wrapped by a circuit breaker.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"time"
)

// Doer is satisfied by Client and CircuitBreakerClient.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

type Config struct {
	Timeout time.Duration

	// MaxRetries bounds the extra attempts for GET and HEAD. Writes are
	// always sent once.
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	MaxConnsPerHost int

	// Jar carries session cookies across calls. Nil disables cookie handling.
	Jar http.CookieJar
}

func DefaultConfig() Config {
	return Config{
		Timeout:         30 * time.Second,
		MaxRetries:      3,
		RetryWaitMin:    time.Second,
		RetryWaitMax:    5 * time.Second,
		MaxConnsPerHost: 100,
	}
}

// Client sends requests over a pooled transport and retries reads.
// Collection writes are not idempotent on the storefront service (an add
// increments), so a failed write is reported once and left to the caller.
type Client struct {
	hc  *http.Client
	cfg Config
}

func New(cfg Config) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = cfg.MaxConnsPerHost
	transport.MaxConnsPerHost = cfg.MaxConnsPerHost

	return &Client{
		hc:  &http.Client{Transport: transport, Timeout: cfg.Timeout, Jar: cfg.Jar},
		cfg: cfg,
	}
}

// Do sends req, retrying GET and HEAD on network errors and 5xx responses
// other than 501 with jittered exponential backoff.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	retries := 0
	if req.Method == http.MethodGet || req.Method == http.MethodHead {
		retries = c.cfg.MaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := c.hc.Do(req)
		last := attempt == retries
		switch {
		case err != nil && (last || !isNetworkError(err)):
			return nil, fmt.Errorf("http request failed after %d attempts: %w", attempt+1, err)
		case err == nil && (last || !retryableStatus(resp.StatusCode)):
			return resp, nil
		case err == nil:
			_ = resp.Body.Close()
		}

		select {
		case <-time.After(addJitter(c.backoff(attempt))):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// backoff is the wait before retry number attempt+1: RetryWaitMin doubled
// per attempt, capped at RetryWaitMax.
func (c *Client) backoff(attempt int) time.Duration {
	wait := c.cfg.RetryWaitMin << attempt
	if wait <= 0 || wait > c.cfg.RetryWaitMax {
		return c.cfg.RetryWaitMax
	}
	return wait
}

func retryableStatus(code int) bool {
	return code >= http.StatusInternalServerError && code != http.StatusNotImplemented
}

func isNetworkError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr)
}

// addJitter spreads d by ±25% so clients that failed together do not retry together.
func addJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	spread := float64(d) * 0.25
	return time.Duration(float64(d) - spread + rand.Float64()*2*spread)
}
