// Package acmeid ties the library together behind a single Service.
//
// A Service owns the network context, the partner URL builder and the
// identity-data client, and hands out one Record per identity:
//
//	cfg, err := config.Load()
//	...
//	svc, err := acmeid.New(cfg)
//	...
//	link := svc.BankOnLedgerURL("sunstream")
//	rec, err := svc.Record("sunstream")
//	...
//	logo := rec.Logo(ctx)
package acmeid

import (
	"context"
	"net/http"
	"sync"

	"github.com/acmeid/go-libacmeid/config"
	"github.com/acmeid/go-libacmeid/data/client"
	"github.com/acmeid/go-libacmeid/locator"
	"github.com/acmeid/go-libacmeid/network"
	"github.com/acmeid/go-libacmeid/partner"
	"github.com/acmeid/go-libacmeid/record"
	"github.com/hashicorp/go-multierror"
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("acmeid")

// subsystems are the loggers whose level SetDebug changes.
var subsystems = []string{"acmeid", "acmeid-client", "acmeid-record"}

// Service is the entry point of the library.
type Service struct {
	nc         *network.Context
	builder    *partner.Builder
	client     *client.Client
	recordOpts []record.Option

	lock    sync.Mutex
	records map[string]*record.Record
}

// New creates a Service from cfg.
func New(cfg config.Config, options ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := getOpts(options)
	if err != nil {
		return nil, err
	}

	httpClient := opts.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	clientOpts := append([]client.Option{
		client.WithClient(httpClient),
		client.WithProvider(cfg.Provider),
		client.WithCacheTTL(cfg.CacheTTL),
		client.WithDevMode(cfg.DevMode),
	}, opts.clientOptions()...)

	c, err := client.New(cfg.APIURL, clientOpts...)
	if err != nil {
		return nil, err
	}

	recordOpts := opts.recordOpts
	if opts.now != nil {
		recordOpts = append([]record.Option{record.WithClock(opts.now)}, recordOpts...)
	}

	nc := network.New(cfg.Network)
	s := &Service{
		nc:         nc,
		builder:    partner.NewBuilder(nc),
		client:     c,
		recordOpts: recordOpts,
		records:    make(map[string]*record.Record),
	}
	if cfg.Debug {
		s.SetDebug(true)
	}
	log.Debugw("Service created", "api", cfg.APIURL, "provider", cfg.Provider, "network", nc.Current(), "devMode", cfg.DevMode)
	return s, nil
}

// Client returns the identity-data client used by the service.
func (s *Service) Client() *client.Client {
	return s.client
}

// Normalize returns the canonical form of an identity.
func (s *Service) Normalize(raw string) (string, error) {
	return locator.Normalize(raw)
}

// Parse normalizes and parses an identity.
func (s *Service) Parse(raw string) (*locator.Parsed, error) {
	return locator.ParseRaw(raw)
}

// BankOnLedgerURL returns the BankOnLedger link for an identity, or
// partner.Invalid if the identity cannot be parsed.
func (s *Service) BankOnLedgerURL(raw string) string {
	return s.partnerURL(raw, partner.BankOnLedger)
}

// QobotoURL returns the Qoboto link for an identity, or partner.Invalid if the
// identity cannot be parsed.
func (s *Service) QobotoURL(raw string) string {
	return s.partnerURL(raw, partner.Qoboto)
}

func (s *Service) partnerURL(raw, domain string) string {
	u, err := s.builder.URLFromRaw(raw, domain)
	if err != nil {
		log.Warnw("Cannot build partner URL", "identity", raw, "domain", domain, "err", err)
		return partner.Invalid
	}
	return u
}

// Record returns the Record for an identity. The same Record is returned for
// every spelling of the same identity.
func (s *Service) Record(raw string) (*record.Record, error) {
	canonical, err := locator.Normalize(raw)
	if err != nil {
		return nil, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if r, ok := s.records[canonical]; ok {
		return r, nil
	}
	r, err := record.New(canonical, s.client, s.recordOpts...)
	if err != nil {
		return nil, err
	}
	s.records[canonical] = r
	return r, nil
}

// RecordByName returns the Record for the identity with the given root name.
func (s *Service) RecordByName(name string) (*record.Record, error) {
	loc, err := locator.FromRootName(name)
	if err != nil {
		return nil, err
	}
	return s.Record(loc)
}

// Prefetch loads the sections of several identities into the cache, one
// request at a time, so that later Record lookups are served without waiting.
// Identities that cannot be normalized or fetched are reported together; the
// rest are still fetched. Prefetch stops early only if ctx is canceled.
func (s *Service) Prefetch(ctx context.Context, identities ...string) error {
	var errs error
	locs := make([]string, 0, len(identities))
	for _, raw := range identities {
		canonical, err := locator.Normalize(raw)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		locs = append(locs, canonical)
	}
	sections, err := client.FetchMany(ctx, s.client, locs)
	log.Debugw("Prefetched identities", "requested", len(identities), "fetched", len(sections))
	if err != nil {
		errs = multierror.Append(errs, err)
	}
	return errs
}

// SetAPIBaseURL changes the identity-data API base URL. Cached data is kept.
func (s *Service) SetAPIBaseURL(baseURL string) error {
	if err := s.client.SetBaseURL(baseURL); err != nil {
		return err
	}
	log.Infow("API base URL changed", "url", baseURL)
	return nil
}

// ClearCache drops all cached sections and every Record's memoized values.
// Overrides are kept.
func (s *Service) ClearCache() {
	s.client.ClearCache()
	s.lock.Lock()
	for _, r := range s.records {
		r.ClearAllCache()
	}
	s.lock.Unlock()
	log.Debug("Cache cleared")
}

// ClearIdentity drops cached data for one identity.
func (s *Service) ClearIdentity(raw string) error {
	canonical, err := locator.Normalize(raw)
	if err != nil {
		return err
	}
	s.lock.Lock()
	r, ok := s.records[canonical]
	s.lock.Unlock()
	if ok {
		r.ClearAllCache()
	} else {
		s.client.Evict(canonical)
	}
	log.Debugw("Identity cache cleared", "identity", canonical)
	return nil
}

// SwitchNetwork changes the network named in partner URLs.
func (s *Service) SwitchNetwork(name string) {
	s.nc.SwitchTo(name)
	log.Infow("Switched network", "network", name)
}

// Network returns the current network name.
func (s *Service) Network() string {
	return s.nc.Current()
}

// SetDebug turns debug logging on or off for the library's loggers.
func (s *Service) SetDebug(enabled bool) {
	level := "info"
	if enabled {
		level = "debug"
	}
	for _, name := range subsystems {
		if err := logging.SetLogLevel(name, level); err != nil {
			log.Errorw("Cannot set log level", "logger", name, "err", err)
		}
	}
}

// SetDevMode turns development mode on or off. In development mode no
// requests are made and placeholder data is served.
func (s *Service) SetDevMode(enabled bool) {
	s.client.SetDevMode(enabled)
	log.Infow("Development mode changed", "enabled", enabled)
}

// DevMode reports whether development mode is on.
func (s *Service) DevMode() bool {
	return s.client.DevMode()
}
