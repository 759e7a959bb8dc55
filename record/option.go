package record

import (
	"fmt"
	"time"
)

const (
	// DefaultLogoURL is shown when no logo can be resolved.
	DefaultLogoURL = "https://placehold.co/150x150/png?text=Logo"
	// DefaultDescriptionFormat renders the description shown when none can be
	// resolved. The single verb receives the identity's root name.
	DefaultDescriptionFormat = "Welcome to %s!"
	// DefaultBackgroundImageURL is shown when no background image can be
	// resolved.
	DefaultBackgroundImageURL = "https://placehold.co/1200x400/png?text=Background"
)

// Defaults are the values a Record falls back to.
type Defaults struct {
	LogoURL            string
	DescriptionFormat  string
	BackgroundImageURL string
}

type config struct {
	defaults Defaults
	now      func() time.Time
}

// Option is a function that sets a value in a config.
type Option func(*config) error

// getOpts creates a config and applies Options to it.
func getOpts(opts []Option) (config, error) {
	cfg := config{
		defaults: Defaults{
			LogoURL:            DefaultLogoURL,
			DescriptionFormat:  DefaultDescriptionFormat,
			BackgroundImageURL: DefaultBackgroundImageURL,
		},
		now: time.Now,
	}
	for i, opt := range opts {
		if err := opt(&cfg); err != nil {
			return config{}, fmt.Errorf("option %d failed: %s", i, err)
		}
	}
	return cfg, nil
}

// WithDefaults replaces the fallback values. Empty members keep the built-in
// default.
func WithDefaults(d Defaults) Option {
	return func(cfg *config) error {
		if d.LogoURL != "" {
			cfg.defaults.LogoURL = d.LogoURL
		}
		if d.DescriptionFormat != "" {
			cfg.defaults.DescriptionFormat = d.DescriptionFormat
		}
		if d.BackgroundImageURL != "" {
			cfg.defaults.BackgroundImageURL = d.BackgroundImageURL
		}
		return nil
	}
}

// WithClock sets the function used to timestamp memoized values.
func WithClock(now func() time.Time) Option {
	return func(cfg *config) error {
		if now != nil {
			cfg.now = now
		}
		return nil
	}
}
