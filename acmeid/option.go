package acmeid

import (
	"fmt"
	"net/http"
	"time"

	"github.com/acmeid/go-libacmeid/data/client"
	"github.com/acmeid/go-libacmeid/record"
	"github.com/prometheus/client_golang/prometheus"
)

type options struct {
	httpClient  *http.Client
	registerer  prometheus.Registerer
	now         func() time.Time
	mockLatency *time.Duration
	recordOpts  []record.Option
}

// Option is a function that sets a value in the service options.
type Option func(*options) error

// getOpts creates options and applies Options to them.
func getOpts(opts []Option) (options, error) {
	var cfg options
	for i, opt := range opts {
		if err := opt(&cfg); err != nil {
			return options{}, fmt.Errorf("option %d failed: %s", i, err)
		}
	}
	return cfg, nil
}

// WithHTTPClient sets the http client used for API requests. When set, the
// configured HTTP timeout is not applied.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *options) error {
		cfg.httpClient = c
		return nil
	}
}

// WithRegisterer registers the data client's metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(cfg *options) error {
		cfg.registerer = reg
		return nil
	}
}

// WithClock sets the time source for caching and memoization.
func WithClock(now func() time.Time) Option {
	return func(cfg *options) error {
		cfg.now = now
		return nil
	}
}

// WithMockLatency sets the simulated response time in development mode.
func WithMockLatency(d time.Duration) Option {
	return func(cfg *options) error {
		if d < 0 {
			return fmt.Errorf("negative mock latency: %s", d)
		}
		cfg.mockLatency = &d
		return nil
	}
}

// WithRecordOptions sets options applied to every Record the service creates.
func WithRecordOptions(opts ...record.Option) Option {
	return func(cfg *options) error {
		cfg.recordOpts = append(cfg.recordOpts, opts...)
		return nil
	}
}

func (c options) clientOptions() []client.Option {
	var opts []client.Option
	if c.registerer != nil {
		opts = append(opts, client.WithRegisterer(c.registerer))
	}
	if c.now != nil {
		opts = append(opts, client.WithClock(c.now))
	}
	if c.mockLatency != nil {
		opts = append(opts, client.WithMockLatency(*c.mockLatency))
	}
	return opts
}
