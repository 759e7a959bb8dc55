package rcache_test

import (
	"sync"
	"testing"
	"time"

	"github.com/acmeid/go-libacmeid/rcache"
	"github.com/acmeid/go-libacmeid/test"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	c, err := rcache.New[string]()
	require.NoError(t, err)
	require.Equal(t, rcache.DefaultTTL, c.TTL())

	_, ok := c.Get("k")
	require.False(t, ok)

	c.Set("k", "v")
	v, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, "v", v)
	require.Equal(t, 1, c.Len())
}

func TestExpiry(t *testing.T) {
	clock := test.NewClock()
	c, err := rcache.New[int](rcache.WithClock(clock.Now))
	require.NoError(t, err)

	c.Set("k", 1)

	clock.Advance(rcache.DefaultTTL - time.Second)
	v, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, 1, v)

	// Expired exactly at the TTL boundary.
	clock.Advance(time.Second)
	_, ok = c.Get("k")
	require.False(t, ok)
	require.Zero(t, c.Len(), "expired entry should be evicted by Get")

	c.Set("k", 2)
	v, ok = c.Get("k")
	require.True(t, ok)
	require.Equal(t, 2, v)

	clock.Advance(rcache.DefaultTTL - time.Second)
	v, ok = c.Get("k")
	require.True(t, ok, "fresh entry should have a full TTL")
	require.Equal(t, 2, v)
}

func TestNoProactiveSweep(t *testing.T) {
	clock := test.NewClock()
	c, err := rcache.New[int](rcache.WithClock(clock.Now), rcache.WithTTL(time.Minute))
	require.NoError(t, err)

	c.Set("a", 1)
	c.Set("b", 2)
	clock.Advance(time.Hour)
	require.Equal(t, 2, c.Len())

	_, ok := c.Get("a")
	require.False(t, ok)
	require.Equal(t, 1, c.Len())
}

func TestDeleteAndClear(t *testing.T) {
	c, err := rcache.New[string]()
	require.NoError(t, err)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")

	c.Delete("b")
	c.Delete("missing")
	_, ok := c.Get("b")
	require.False(t, ok)
	require.Equal(t, 2, c.Len())

	c.Clear()
	require.Zero(t, c.Len())
	_, ok = c.Get("a")
	require.False(t, ok)
}

func TestBadTTL(t *testing.T) {
	_, err := rcache.New[string](rcache.WithTTL(0))
	require.ErrorContains(t, err, "ttl must be positive")
}

func TestConcurrentUse(t *testing.T) {
	c, err := rcache.New[int]()
	require.NoError(t, err)

	names := test.RandomRootNames(50)
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			c.Set(name, i)
		}(i, name)
	}
	wg.Wait()
	require.Equal(t, len(names), c.Len())
	for i, name := range names {
		v, ok := c.Get(name)
		require.True(t, ok)
		require.Equal(t, i, v)
	}
}
