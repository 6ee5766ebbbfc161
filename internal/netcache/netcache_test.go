// internal/netcache/netcache_test.go
package netcache

import (
	"context"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fwtrace.io/internal/ifindex"
	"fwtrace.io/internal/models"
)

// fakeRegistry counts calls and serves canned results per address
type fakeRegistry struct {
	calls   int
	results map[string]*models.OwnershipInfo
}

func (f *fakeRegistry) Lookup(_ context.Context, addr netip.Addr) *models.OwnershipInfo {
	f.calls++
	if info, ok := f.results[addr.String()]; ok {
		return info
	}
	return &models.OwnershipInfo{Err: "lookup " + addr.String() + " failed: registry returned HTTP 404"}
}

func uztelecom() *models.OwnershipInfo {
	return &models.OwnershipInfo{
		Nets:    []netip.Prefix{netip.MustParsePrefix("213.230.86.0/24")},
		Name:    "UZTELECOM",
		Country: "UZ",
	}
}

func newTestCache(reg *fakeRegistry) *Cache {
	index := ifindex.New(ifindex.Snapshot{
		"wlp2s0": {netip.MustParsePrefix("192.168.0.0/24")},
	})
	return New(reg, index)
}

// One remote lookup must satisfy every later address inside the range it
// returned, without touching the registry again.
func TestResolveRangeAbsorption(t *testing.T) {
	reg := &fakeRegistry{results: map[string]*models.OwnershipInfo{
		"213.230.86.36": uztelecom(),
	}}
	c := newTestCache(reg)

	first := c.Resolve(context.Background(), netip.MustParseAddr("213.230.86.36"), "")
	require.NotNil(t, first)
	assert.Equal(t, "UZTELECOM", first.Name)
	assert.Equal(t, 1, reg.calls)

	// Distinct address, same range: must be a cache hit.
	second := c.Resolve(context.Background(), netip.MustParseAddr("213.230.86.99"), "")
	require.NotNil(t, second)
	assert.Same(t, first, second)
	assert.Equal(t, 1, reg.calls)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.RemoteLookups)
}

func TestResolveInterfacePartition(t *testing.T) {
	reg := &fakeRegistry{}
	c := newTestCache(reg)

	info := c.Resolve(context.Background(), netip.MustParseAddr("192.168.0.6"), "wlp2s0")
	require.NotNil(t, info)
	assert.Equal(t, "192.168.0.0/24", info.NetString())
	assert.Equal(t, 0, reg.calls, "local resolution must never call the registry")

	// Second address on the same local network hits the cached range.
	again := c.Resolve(context.Background(), netip.MustParseAddr("192.168.0.77"), "wlp2s0")
	require.NotNil(t, again)
	assert.Same(t, info, again)
}

func TestResolveInterfaceUnknownNetwork(t *testing.T) {
	reg := &fakeRegistry{}
	c := newTestCache(reg)

	assert.Nil(t, c.Resolve(context.Background(), netip.MustParseAddr("172.16.0.1"), "wlp2s0"))
	assert.Nil(t, c.Resolve(context.Background(), netip.MustParseAddr("192.168.0.6"), "eth9"))
	assert.Equal(t, 0, reg.calls)
}

// An address resolved through a local partition must not satisfy a global
// lookup for the same address, and vice versa.
func TestResolvePartitionIsolation(t *testing.T) {
	reg := &fakeRegistry{results: map[string]*models.OwnershipInfo{
		"192.168.0.6": {Nets: []netip.Prefix{netip.MustParsePrefix("192.168.0.0/16")}, Name: "BOGON"},
	}}
	c := newTestCache(reg)

	local := c.Resolve(context.Background(), netip.MustParseAddr("192.168.0.6"), "wlp2s0")
	require.NotNil(t, local)
	assert.Equal(t, 0, reg.calls)

	global := c.Resolve(context.Background(), netip.MustParseAddr("192.168.0.6"), "")
	require.NotNil(t, global)
	assert.Equal(t, 1, reg.calls, "global partition must not see local entries")
	assert.NotSame(t, local, global)
	assert.Equal(t, "BOGON", global.Name)
}

// Failures are cached like successes: the same failed address never hits
// the registry twice.
func TestResolveFailureCached(t *testing.T) {
	reg := &fakeRegistry{}
	c := newTestCache(reg)
	addr := netip.MustParseAddr("203.0.113.9")

	first := c.Resolve(context.Background(), addr, "")
	require.NotNil(t, first)
	assert.True(t, first.Failed())
	assert.Contains(t, first.Err, "404")
	assert.Equal(t, 1, reg.calls)

	second := c.Resolve(context.Background(), addr, "")
	assert.Same(t, first, second)
	assert.Equal(t, 1, reg.calls)

	// A different address is a different host route and does a fresh lookup.
	c.Resolve(context.Background(), netip.MustParseAddr("203.0.113.10"), "")
	assert.Equal(t, 2, reg.calls)
}

func TestResolveIPv6(t *testing.T) {
	reg := &fakeRegistry{results: map[string]*models.OwnershipInfo{
		"2001:db8::1": {Nets: []netip.Prefix{netip.MustParsePrefix("2001:db8::/32")}, Name: "DOC-NET"},
	}}
	c := newTestCache(reg)

	first := c.Resolve(context.Background(), netip.MustParseAddr("2001:db8::1"), "")
	require.NotNil(t, first)

	second := c.Resolve(context.Background(), netip.MustParseAddr("2001:db8:ffff::42"), "")
	assert.Same(t, first, second)
	assert.Equal(t, 1, reg.calls)
}
