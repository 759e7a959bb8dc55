// Package config reads library settings from the environment.
//
// Every setting has a default and may be overridden by an ACMEID_* environment
// variable. Variables may also come from .env files, which never override
// variables already present in the process environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvAPIURL      = "ACMEID_API_URL"
	EnvProvider    = "ACMEID_PROVIDER"
	EnvNetwork     = "ACMEID_NETWORK"
	EnvDebug       = "ACMEID_DEBUG"
	EnvDevMode     = "ACMEID_DEV_MODE"
	EnvCacheTTL    = "ACMEID_CACHE_TTL"
	EnvHTTPTimeout = "ACMEID_HTTP_TIMEOUT"
)

// Defaults used when a variable is not set.
const (
	DefaultAPIURL      = "http://localhost:8080"
	DefaultProvider    = "accumulate"
	DefaultNetwork     = "mainnet"
	DefaultCacheTTL    = 5 * time.Minute
	// DefaultHTTPTimeout leaves requests unbounded; callers bound them with a
	// context.
	DefaultHTTPTimeout = time.Duration(0)
)

// defaultFiles are loaded by Load when no files are named, if they exist.
var defaultFiles = []string{".env", ".env.local"}

// Config holds the settings used to wire an acmeid.Service.
type Config struct {
	// APIURL is the base URL of the identity-data API.
	APIURL string
	// Provider is the data provider path segment of API requests.
	Provider string
	// Network is the initial network name.
	Network string
	// Debug enables debug logging.
	Debug bool
	// DevMode serves placeholder data instead of calling the API.
	DevMode bool
	// CacheTTL is how long fetched sections are reused.
	CacheTTL time.Duration
	// HTTPTimeout bounds each API request. Zero means no timeout.
	HTTPTimeout time.Duration
}

// Default returns a Config with every setting at its default.
func Default() Config {
	return Config{
		APIURL:      DefaultAPIURL,
		Provider:    DefaultProvider,
		Network:     DefaultNetwork,
		CacheTTL:    DefaultCacheTTL,
		HTTPTimeout: DefaultHTTPTimeout,
	}
}

// Load reads .env files into the process environment and then builds a
// Config from it. If no files are given, .env and .env.local in the working
// directory are read if present. Named files must exist.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		for _, f := range defaultFiles {
			if _, err := os.Stat(f); err != nil {
				continue
			}
			if err := godotenv.Load(f); err != nil {
				return Config{}, fmt.Errorf("cannot load %s: %w", f, err)
			}
		}
	} else if err := godotenv.Load(files...); err != nil {
		return Config{}, fmt.Errorf("cannot load env files: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
	cfg := Default()
	var err error

	cfg.APIURL = getEnv(EnvAPIURL, cfg.APIURL)
	cfg.Provider = getEnv(EnvProvider, cfg.Provider)
	cfg.Network = getEnv(EnvNetwork, cfg.Network)

	if cfg.Debug, err = boolEnv(EnvDebug, cfg.Debug); err != nil {
		return Config{}, err
	}
	if cfg.DevMode, err = boolEnv(EnvDevMode, cfg.DevMode); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = durationEnv(EnvCacheTTL, cfg.CacheTTL); err != nil {
		return Config{}, err
	}
	if cfg.HTTPTimeout, err = durationEnv(EnvHTTPTimeout, cfg.HTTPTimeout); err != nil {
		return Config{}, err
	}

	if err = cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the settings can be used.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", EnvAPIURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s: scheme must be http or https", EnvAPIURL)
	}
	if strings.TrimSpace(c.Provider) == "" {
		return fmt.Errorf("%s must not be empty", EnvProvider)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("%s must be positive", EnvCacheTTL)
	}
	if c.HTTPTimeout < 0 {
		return errors.New(EnvHTTPTimeout + " must not be negative")
	}
	return nil
}

// getEnv returns the value of a variable, or fallback if it is unset or
// empty.
func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func boolEnv(key string, fallback bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
