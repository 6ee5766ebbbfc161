// internal/netcache/netcache.go
package netcache

import (
	"context"
	"net"
	"net/netip"
	"sync"

	"github.com/yl2chen/cidranger"

	"fwtrace.io/internal/ifindex"
	"fwtrace.io/internal/models"
)

// Registry performs the remote ownership lookup backing the global partition
type Registry interface {
	Lookup(ctx context.Context, addr netip.Addr) *models.OwnershipInfo
}

// Stats represents cache performance statistics
type Stats struct {
	Hits          int64   `json:"hits"`
	Misses        int64   `json:"misses"`
	RemoteLookups int64   `json:"remote_lookups"`
	Entries       int     `json:"entries"`
	HitRate       float64 `json:"hit_rate"`
}

// calculateHitRate computes the cache hit rate as a percentage
func (s *Stats) calculateHitRate() {
	total := s.Hits + s.Misses
	if total == 0 {
		s.HitRate = 0.0
	} else {
		s.HitRate = float64(s.Hits) / float64(total) * 100.0
	}
}

// rangeEntry is one cached (network, ownership) pair inside a partition
type rangeEntry struct {
	network net.IPNet
	info    *models.OwnershipInfo
}

// Network implements cidranger.RangerEntry
func (e *rangeEntry) Network() net.IPNet {
	return e.network
}

// Cache resolves addresses to ownership metadata with range-membership
// caching. Entries are partitioned by local interface name; the empty name
// is the global partition backed by the remote registry, every other
// partition is populated on demand from the local interface index.
//
// Lookup is by containment, not key equality: one resolved range satisfies
// every future address inside it. Entries are never evicted; unbounded
// growth over a process lifetime is the accepted trade-off.
type Cache struct {
	mu       sync.Mutex
	parts    map[string]cidranger.Ranger
	registry Registry
	index    *ifindex.Index
	stats    Stats
}

// New creates an ownership cache over the given registry and interface index
func New(registry Registry, index *ifindex.Index) *Cache {
	return &Cache{
		parts:    make(map[string]cidranger.Ranger),
		registry: registry,
		index:    index,
	}
}

// Resolve returns ownership metadata for addr. iface selects the partition:
// empty means global (remote registry on miss), otherwise the local
// interface partition (interface index on miss, no remote call). Returns
// nil only in the interface case when no configured network contains addr.
//
// The check-and-insert runs under one lock so a second resolver for the
// same uncached range cannot trigger a duplicate remote lookup.
func (c *Cache) Resolve(ctx context.Context, addr netip.Addr, iface string) *models.OwnershipInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	if info, ok := c.lookupUnlocked(addr, iface); ok {
		c.stats.Hits++
		return info
	}
	c.stats.Misses++

	if iface != "" {
		prefix, ok := c.index.NetworkFor(addr, iface)
		if !ok {
			return nil
		}
		info := &models.OwnershipInfo{Nets: []netip.Prefix{prefix}}
		c.insertUnlocked(iface, info.Nets, info)
		return info
	}

	c.stats.RemoteLookups++
	info := c.registry.Lookup(ctx, addr)
	nets := info.Nets
	if len(nets) == 0 {
		// A failed lookup carries no range; cache it under the host route
		// so repeats of the same address short-circuit to the same failure.
		nets = []netip.Prefix{netip.PrefixFrom(addr, addr.BitLen())}
	}
	c.insertUnlocked("", nets, info)
	return info
}

// Stats returns current cache statistics
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.calculateHitRate()
	return stats
}

// lookupUnlocked finds the first cached range containing addr.
// Must be called with the mutex held.
func (c *Cache) lookupUnlocked(addr netip.Addr, iface string) (*models.OwnershipInfo, bool) {
	ranger, ok := c.parts[iface]
	if !ok {
		return nil, false
	}

	entries, err := ranger.ContainingNetworks(net.IP(addr.Unmap().AsSlice()))
	if err != nil || len(entries) == 0 {
		return nil, false
	}
	return entries[0].(*rangeEntry).info, true
}

// insertUnlocked adds the (range, ownership) pairs to a partition.
// Must be called with the mutex held.
func (c *Cache) insertUnlocked(iface string, nets []netip.Prefix, info *models.OwnershipInfo) {
	ranger, ok := c.parts[iface]
	if !ok {
		ranger = cidranger.NewPCTrieRanger()
		c.parts[iface] = ranger
	}

	for _, prefix := range nets {
		entry := &rangeEntry{network: prefixToIPNet(prefix), info: info}
		if err := ranger.Insert(entry); err != nil {
			continue
		}
		c.stats.Entries++
	}
}

func prefixToIPNet(p netip.Prefix) net.IPNet {
	masked := p.Masked()
	return net.IPNet{
		IP:   masked.Addr().AsSlice(),
		Mask: net.CIDRMask(p.Bits(), p.Addr().BitLen()),
	}
}
