// internal/enrich/enricher.go
package enrich

import (
	"context"
	"net/netip"

	"golang.org/x/net/publicsuffix"

	"fwtrace.io/internal/models"
	"fwtrace.io/internal/netcache"
	"fwtrace.io/internal/scope"
)

// HostResolver answers reverse-DNS questions. May be nil on an Enricher,
// in which case host names are simply omitted.
type HostResolver interface {
	Host(ctx context.Context, addr netip.Addr) (string, error)
}

// GeoLocator supplies a country/city fallback from a local database
type GeoLocator interface {
	Locate(addr netip.Addr) (country, city string, err error)
}

// Enricher produces a full AddressInfo for one address occurrence.
// Every sub-failure degrades to an omitted field or an Err marker;
// enrichment itself never fails.
type Enricher struct {
	cache *netcache.Cache
	hosts HostResolver
	geo   GeoLocator
}

// NewEnricher creates an enricher. hosts and geo are optional.
func NewEnricher(cache *netcache.Cache, hosts HostResolver, geo GeoLocator) *Enricher {
	return &Enricher{
		cache: cache,
		hosts: hosts,
		geo:   geo,
	}
}

// Enrich classifies addr and attaches reverse-DNS and ownership metadata.
// A non-empty iface means the address sits on a local interface: the local
// network is attached and the remote registry is never consulted. Otherwise
// globally-scoped addresses go through the ownership cache.
func (e *Enricher) Enrich(ctx context.Context, addr netip.Addr, iface string) *models.AddressInfo {
	info := &models.AddressInfo{
		IP:    addr.Unmap().String(),
		Scope: scope.Classify(addr),
	}

	if e.resolvable(info) {
		if host, err := e.hosts.Host(ctx, addr); err == nil {
			info.Host = host
			if domain, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
				info.Domain = domain
			}
		}
	}

	if iface != "" {
		info.Iface = iface
		if own := e.cache.Resolve(ctx, addr, iface); own != nil {
			info.Net = own.NetString()
		}
		return info
	}

	if info.HasScope(models.ScopeGlobal) {
		own := e.cache.Resolve(ctx, addr, "")
		if own.Failed() {
			info.Err = own.Err
			return info
		}
		info.Net = own.NetString()
		info.Name = own.Name
		info.Descr = own.Descr
		info.Country = own.Country
		if info.Country == "" && e.geo != nil {
			if country, city, err := e.geo.Locate(addr); err == nil {
				info.Country = country
				info.City = city
			}
		}
	}

	return info
}

// resolvable reports whether a reverse-DNS attempt makes sense: private or
// global unicast only.
func (e *Enricher) resolvable(info *models.AddressInfo) bool {
	if e.hosts == nil || info.HasScope(models.ScopeMulticast) {
		return false
	}
	return info.HasScope(models.ScopePrivate) || info.HasScope(models.ScopeGlobal)
}
