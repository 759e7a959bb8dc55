// Package partner builds partner-site URLs for an identity.
package partner

import (
	"fmt"
	"net/url"

	"github.com/acmeid/go-libacmeid/locator"
	"github.com/acmeid/go-libacmeid/network"
)

const (
	// BankOnLedger is the BankOnLedger partner domain.
	BankOnLedger = "BankOnLedger.com"
	// Qoboto is the Qoboto partner domain.
	Qoboto = "Qoboto.com"

	// Invalid is returned by callers that collapse a build failure into a
	// display value.
	Invalid = "invalid"
)

// Builder renders partner URLs. The current network is read from the network
// context on every call, so switching networks changes the next URL built.
type Builder struct {
	nc *network.Context
}

// NewBuilder creates a Builder that reads the network name from nc.
func NewBuilder(nc *network.Context) *Builder {
	if nc == nil {
		nc = network.New(network.Mainnet)
	}
	return &Builder{
		nc: nc,
	}
}

// BuildURL renders https://<root>.<domain>/<subPath>?current-network=<network>.
// The domain is used as given.
func (b *Builder) BuildURL(parsed *locator.Parsed, domain string) string {
	return fmt.Sprintf("https://%s.%s/%s?current-network=%s",
		parsed.RootName, domain, parsed.SubPath, url.QueryEscape(b.nc.Current()))
}

// BankOnLedgerURL renders the BankOnLedger URL for parsed.
func (b *Builder) BankOnLedgerURL(parsed *locator.Parsed) string {
	return b.BuildURL(parsed, BankOnLedger)
}

// QobotoURL renders the Qoboto URL for parsed.
func (b *Builder) QobotoURL(parsed *locator.Parsed) string {
	return b.BuildURL(parsed, Qoboto)
}

// URLFromRaw normalizes and parses raw, then renders its URL for domain.
func (b *Builder) URLFromRaw(raw, domain string) (string, error) {
	parsed, err := locator.ParseRaw(raw)
	if err != nil {
		return "", err
	}
	return b.BuildURL(parsed, domain), nil
}
