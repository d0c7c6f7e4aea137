package remote

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/utafrali/storefront/pkg/httpclient"
)

// TransportConfig tunes the HTTP stack shared by all storefront clients.
type TransportConfig struct {
	Timeout    time.Duration
	MaxRetries int
	// Breaker names the circuit breaker in logs and metrics.
	Breaker string
}

// DefaultTransportConfig returns the settings used by storefrontctl.
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		Timeout:    10 * time.Second,
		MaxRetries: 2,
		Breaker:    "storefront-api",
	}
}

// NewTransport builds the retrying, circuit-broken Doer the clients share.
// Reads are retried on transport errors and 5xx; writes are sent once. The
// jar carries the session and auth cookies.
func NewTransport(cfg TransportConfig, jar http.CookieJar, logger *slog.Logger) httpclient.Doer {
	hc := httpclient.DefaultConfig()
	hc.Timeout = cfg.Timeout
	hc.MaxRetries = cfg.MaxRetries
	hc.RetryWaitMin = 200 * time.Millisecond
	hc.RetryWaitMax = 2 * time.Second
	hc.Jar = jar

	return httpclient.NewCircuitBreakerClient(
		httpclient.New(hc),
		httpclient.DefaultCircuitBreakerConfig(cfg.Breaker),
		logger,
	)
}
