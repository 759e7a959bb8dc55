// Package network holds the name of the currently selected network.
package network

import "sync/atomic"

// Mainnet is the network selected by default.
const Mainnet = "mainnet"

// Context holds the current network name. Any name is accepted, so that
// non-mainnet networks can route to differently named endpoints. The last
// write wins and no history is kept.
//
// Safe to be used concurrently.
type Context struct {
	name atomic.Pointer[string]
}

// New creates a Context set to the given network. An empty name selects
// Mainnet.
func New(initial string) *Context {
	if initial == "" {
		initial = Mainnet
	}
	c := &Context{}
	c.name.Store(&initial)
	return c
}

// Current returns the current network name.
func (c *Context) Current() string {
	p := c.name.Load()
	if p == nil {
		return Mainnet
	}
	return *p
}

// SwitchTo makes name the current network.
func (c *Context) SwitchTo(name string) {
	c.name.Store(&name)
}
