package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/acmeid/go-libacmeid/apierror"
	"github.com/acmeid/go-libacmeid/data/model"
	"github.com/acmeid/go-libacmeid/locator"
	"github.com/acmeid/go-libacmeid/rcache"
	logging "github.com/ipfs/go-log/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	apiPath       = "api/v1"
	getDataPath   = "GetDataValue/All"
	accountParam  = "DataAccountUrl"
	jsonMediaType = "application/json; charset=utf-8"
)

var log = logging.Logger("acmeid-client")

var tracer = otel.Tracer("github.com/acmeid/go-libacmeid/data/client")

// Client is an http client for the identity-data API. Sections are cached by
// locator for the configured TTL.
//
// Safe to be used concurrently. Concurrent fetches of the same uncached
// locator are not merged; each one makes a request and the last to finish
// populates the cache.
type Client struct {
	c           *http.Client
	provider    string
	cache       *rcache.Cache[*model.Section]
	mockLatency time.Duration
	metrics     *metrics

	lock    sync.RWMutex
	baseURL *url.URL
	devMode bool
}

// Client must implement Fetcher.
var _ Fetcher = (*Client)(nil)

// New creates a new identity-data HTTP client.
func New(baseURL string, options ...Option) (*Client, error) {
	opts, err := getOpts(options)
	if err != nil {
		return nil, err
	}

	u, err := parseURL(baseURL)
	if err != nil {
		return nil, err
	}

	cache, err := rcache.New[*model.Section](rcache.WithTTL(opts.cacheTTL), rcache.WithClock(opts.now))
	if err != nil {
		return nil, err
	}

	return &Client{
		c:           opts.httpClient,
		provider:    opts.provider,
		cache:       cache,
		mockLatency: opts.mockLatency,
		metrics:     newMetrics(opts.registerer),
		baseURL:     u,
		devMode:     opts.devMode,
	}, nil
}

func parseURL(s string) (*url.URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("url must have http or https scheme: %s", s)
	}
	return u, nil
}

// FetchSection returns the display section for an identity locator. A cached
// section is returned without a request. Otherwise exactly one GET is made;
// any failure is returned as an *apierror.Error and nothing is cached.
func (c *Client) FetchSection(ctx context.Context, loc string) (*model.Section, error) {
	ctx, span := tracer.Start(ctx, "FetchSection", trace.WithAttributes(attribute.String("acmeid.locator", loc)))
	defer span.End()

	if c.DevMode() {
		span.SetAttributes(attribute.Bool("acmeid.mock", true))
		return c.mockSection(ctx, loc)
	}

	if s, ok := c.cache.Get(loc); ok {
		c.metrics.lookup(true)
		span.SetAttributes(attribute.Bool("acmeid.cache_hit", true))
		log.Debugw("Section served from cache", "locator", loc)
		return s, nil
	}
	c.metrics.lookup(false)

	s, err := c.fetch(ctx, loc)
	c.metrics.fetched(err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	c.cache.Set(loc, s)
	return s, nil
}

func (c *Client) fetch(ctx context.Context, loc string) (*model.Section, error) {
	u := c.requestURL(loc)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, apierror.New(apierror.KindTransport, err)
	}
	req.Header.Set("Accept", jsonMediaType)
	req.Header.Set("Content-Type", jsonMediaType)

	log.Debugw("Fetching identity data", "locator", loc, "url", u)
	resp, err := c.c.Do(req)
	if err != nil {
		log.Errorw("Identity data request failed", "locator", loc, "err", err)
		return nil, apierror.New(apierror.KindTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Errorw("Cannot read identity data response", "locator", loc, "err", err)
		return nil, apierror.New(apierror.KindTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warnw("Identity data request unsuccessful", "locator", loc, "status", resp.Status)
		return nil, apierror.FromResponse(resp.StatusCode, body)
	}

	s, err := model.DecodeSection(body)
	if err != nil {
		var mm *model.MissingMainError
		if errors.As(err, &mm) {
			log.Warnw("Identity data has no main section", "locator", loc, "available", mm.Names)
		} else {
			log.Errorw("Cannot decode identity data", "locator", loc, "err", err)
		}
		return nil, err
	}
	return s, nil
}

func (c *Client) requestURL(loc string) string {
	c.lock.RLock()
	u := c.baseURL.JoinPath(apiPath, c.provider, getDataPath)
	c.lock.RUnlock()

	q := url.Values{}
	q.Set(accountParam, locator.WithoutScheme(loc))
	u.RawQuery = q.Encode()
	return u.String()
}

// LogoURL returns the logo URL of the identity's main section.
func (c *Client) LogoURL(ctx context.Context, loc string) (string, error) {
	return c.field(ctx, loc, model.LogoURLKey, func(s *model.Section) string {
		return s.LogoURL
	})
}

// SectionDescription returns the cleaned description of the identity's main
// section.
func (c *Client) SectionDescription(ctx context.Context, loc string) (string, error) {
	return c.field(ctx, loc, model.DescriptionKey, func(s *model.Section) string {
		return model.CleanText(s.Description)
	})
}

// BackgroundImageURL returns the background image URL of the identity's main
// section.
func (c *Client) BackgroundImageURL(ctx context.Context, loc string) (string, error) {
	return c.field(ctx, loc, model.BackgroundImageURLKey, func(s *model.Section) string {
		return s.BackgroundImageURL
	})
}

// AllFields returns all display fields of the identity's main section. Fields
// the section lacks are empty.
func (c *Client) AllFields(ctx context.Context, loc string) (model.Fields, error) {
	s, err := c.FetchSection(ctx, loc)
	if err != nil {
		return model.Fields{}, err
	}
	return s.Fields(), nil
}

func (c *Client) field(ctx context.Context, loc, key string, get func(*model.Section) string) (string, error) {
	s, err := c.FetchSection(ctx, loc)
	if err != nil {
		return "", err
	}
	v := get(s)
	if v == "" {
		return "", apierror.Errorf(apierror.KindFieldMissing, "section has no %s", key)
	}
	return v, nil
}

// Evict removes the cached section for a locator.
func (c *Client) Evict(loc string) {
	c.cache.Delete(loc)
	log.Debugw("Evicted cached section", "locator", loc)
}

// ClearCache removes all cached sections.
func (c *Client) ClearCache() {
	c.cache.Clear()
	log.Debug("Cleared section cache")
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.baseURL.String()
}

// SetBaseURL changes the API base URL. Cached sections are kept.
func (c *Client) SetBaseURL(baseURL string) error {
	u, err := parseURL(baseURL)
	if err != nil {
		return err
	}
	c.lock.Lock()
	c.baseURL = u
	c.lock.Unlock()
	log.Infow("API base URL changed", "url", baseURL)
	return nil
}

// DevMode reports whether development mode is enabled.
func (c *Client) DevMode() bool {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.devMode
}

// SetDevMode enables or disables development mode.
func (c *Client) SetDevMode(enabled bool) {
	c.lock.Lock()
	c.devMode = enabled
	c.lock.Unlock()
	log.Infow("Development mode changed", "enabled", enabled)
}
