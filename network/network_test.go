package network_test

import (
	"testing"

	"github.com/acmeid/go-libacmeid/network"
	"github.com/stretchr/testify/require"
)

func TestContext(t *testing.T) {
	nc := network.New("")
	require.Equal(t, network.Mainnet, nc.Current())

	nc.SwitchTo("kermit")
	require.Equal(t, "kermit", nc.Current())

	// Any name is accepted, including an empty one.
	nc.SwitchTo("")
	require.Equal(t, "", nc.Current())

	require.Equal(t, "fozzie", network.New("fozzie").Current())
}

func TestZeroContext(t *testing.T) {
	var nc network.Context
	require.Equal(t, network.Mainnet, nc.Current())
}

func TestContextsAreIndependent(t *testing.T) {
	a := network.New("mainnet")
	b := network.New("mainnet")
	a.SwitchTo("kermit")
	require.Equal(t, "kermit", a.Current())
	require.Equal(t, "mainnet", b.Current())
}
