package client

import (
	"fmt"
	"net/http"
	"time"

	"github.com/acmeid/go-libacmeid/rcache"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// DefaultProvider is the data provider path segment used when none is
	// configured.
	DefaultProvider = "accumulate"
	// DefaultMockLatency is the simulated response time in development mode.
	DefaultMockLatency = 500 * time.Millisecond
)

type config struct {
	httpClient  *http.Client
	provider    string
	cacheTTL    time.Duration
	now         func() time.Time
	devMode     bool
	mockLatency time.Duration
	registerer  prometheus.Registerer
}

// Option is a function that sets a value in a config.
type Option func(*config) error

// getOpts creates a config and applies Options to it.
func getOpts(opts []Option) (config, error) {
	cfg := config{
		httpClient:  http.DefaultClient,
		provider:    DefaultProvider,
		cacheTTL:    rcache.DefaultTTL,
		now:         time.Now,
		mockLatency: DefaultMockLatency,
	}
	for i, opt := range opts {
		if err := opt(&cfg); err != nil {
			return config{}, fmt.Errorf("option %d failed: %s", i, err)
		}
	}
	return cfg, nil
}

// WithClient allows creation of the http client using an underlying network
// round tripper / client.
func WithClient(c *http.Client) Option {
	return func(cfg *config) error {
		if c != nil {
			cfg.httpClient = c
		}
		return nil
	}
}

// WithProvider sets the provider path segment of the GetDataValue endpoint.
//
// Default is "accumulate".
func WithProvider(provider string) Option {
	return func(cfg *config) error {
		if provider == "" {
			return fmt.Errorf("empty provider")
		}
		cfg.provider = provider
		return nil
	}
}

// WithCacheTTL sets how long a fetched section is served from the cache.
//
// Default is 5 minutes.
func WithCacheTTL(ttl time.Duration) Option {
	return func(cfg *config) error {
		cfg.cacheTTL = ttl
		return nil
	}
}

// WithClock sets the function the cache uses to read the current time.
func WithClock(now func() time.Time) Option {
	return func(cfg *config) error {
		if now != nil {
			cfg.now = now
		}
		return nil
	}
}

// WithDevMode enables or disables development mode. In development mode no
// requests are made; sections are generated by MockSection.
//
// Default is disabled.
func WithDevMode(enabled bool) Option {
	return func(cfg *config) error {
		cfg.devMode = enabled
		return nil
	}
}

// WithMockLatency sets the simulated response time in development mode.
//
// Default is 500 milliseconds.
func WithMockLatency(d time.Duration) Option {
	return func(cfg *config) error {
		if d < 0 {
			return fmt.Errorf("negative mock latency: %s", d)
		}
		cfg.mockLatency = d
		return nil
	}
}

// WithRegisterer registers the client's fetch and cache counters with reg. If
// not given, the counters are kept but not registered.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(cfg *config) error {
		cfg.registerer = reg
		return nil
	}
}
