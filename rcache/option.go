package rcache

import (
	"fmt"
	"time"
)

const (
	// DefaultTTL is how long an entry stays valid after it is stored.
	DefaultTTL = 5 * time.Minute
)

type config struct {
	ttl time.Duration
	now func() time.Time
}

// Option is a function that sets a value in a config.
type Option func(*config) error

// getOpts creates a config and applies Options to it.
func getOpts(opts []Option) (config, error) {
	cfg := config{
		ttl: DefaultTTL,
		now: time.Now,
	}
	for i, opt := range opts {
		if err := opt(&cfg); err != nil {
			return config{}, fmt.Errorf("option %d failed: %s", i, err)
		}
	}
	return cfg, nil
}

// WithTTL sets the time-to-live applied to every entry.
//
// Default is 5 minutes.
func WithTTL(ttl time.Duration) Option {
	return func(cfg *config) error {
		if ttl <= 0 {
			return fmt.Errorf("ttl must be positive: %s", ttl)
		}
		cfg.ttl = ttl
		return nil
	}
}

// WithClock sets the function used to read the current time. Tests use this
// to advance time without sleeping.
func WithClock(now func() time.Time) Option {
	return func(cfg *config) error {
		if now != nil {
			cfg.now = now
		}
		return nil
	}
}
