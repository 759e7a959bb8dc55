package client

import (
	"errors"

	"github.com/acmeid/go-libacmeid/apierror"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK = "ok"

	cacheHit  = "hit"
	cacheMiss = "miss"
)

type metrics struct {
	fetches      *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "acmeid",
			Subsystem: "client",
			Name:      "fetch_total",
			Help:      "Identity data requests by outcome",
		}, []string{"outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "acmeid",
			Subsystem: "client",
			Name:      "cache_total",
			Help:      "Section cache lookups by result",
		}, []string{"result"}),
	}
	if reg != nil {
		m.fetches = registerOrGet(reg, m.fetches)
		m.cacheLookups = registerOrGet(reg, m.cacheLookups)
	}
	return m
}

// registerOrGet registers c with reg. If an identical collector is already
// registered, as happens when several clients share a registry, the existing
// one is returned.
func registerOrGet(reg prometheus.Registerer, c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
		log.Warnw("Cannot register metric", "err", err)
	}
	return c
}

func (m *metrics) fetched(err error) {
	m.fetches.WithLabelValues(outcomeLabel(err)).Inc()
}

func (m *metrics) lookup(hit bool) {
	if hit {
		m.cacheLookups.WithLabelValues(cacheHit).Inc()
		return
	}
	m.cacheLookups.WithLabelValues(cacheMiss).Inc()
}

func outcomeLabel(err error) string {
	if err == nil {
		return outcomeOK
	}
	switch apierror.KindOf(err) {
	case apierror.KindMalformedLocator:
		return "malformed_locator"
	case apierror.KindTransport:
		return "transport"
	case apierror.KindStatus:
		return "status"
	case apierror.KindDecode:
		return "decode"
	case apierror.KindNoMainSection:
		return "no_main_section"
	}
	return "unknown"
}
