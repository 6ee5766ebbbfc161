// internal/scope/scope.go
package scope

import (
	"net/netip"

	"fwtrace.io/internal/models"
)

// predicate pairs a scope tag with its membership test. The slice order is
// the order tags appear in a classification result.
type predicate struct {
	tag  models.ScopeTag
	test func(netip.Addr) bool
}

var predicates = []predicate{
	{models.ScopeMulticast, netip.Addr.IsMulticast},
	{models.ScopePrivate, netip.Addr.IsPrivate},
	{models.ScopeGlobal, isGlobal},
	{models.ScopeUnspecified, netip.Addr.IsUnspecified},
	{models.ScopeReserved, isReserved},
	{models.ScopeLoopback, netip.Addr.IsLoopback},
	{models.ScopeLinkLocal, isLinkLocal},
}

// Classify returns the scope tags that hold for addr, in predicate order.
// An address matching none of the standard predicates classifies as unknown.
func Classify(addr netip.Addr) []models.ScopeTag {
	var tags []models.ScopeTag
	for _, p := range predicates {
		if p.test(addr) {
			tags = append(tags, p.tag)
		}
	}
	if len(tags) == 0 {
		return []models.ScopeTag{models.ScopeUnknown}
	}
	return tags
}

var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("240.0.0.0/4"),
	netip.MustParsePrefix("100::/64"),
	netip.MustParsePrefix("2001:db8::/32"),
}

func isReserved(addr netip.Addr) bool {
	a := addr.Unmap()
	for _, p := range reservedPrefixes {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

func isLinkLocal(addr netip.Addr) bool {
	return addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast()
}

// specialPurpose lists IANA ranges that are neither globally routable nor
// claimed by any other predicate (documentation and benchmark networks).
// Addresses in here classify as unknown.
var specialPurpose = []netip.Prefix{
	netip.MustParsePrefix("192.0.2.0/24"),
	netip.MustParsePrefix("198.51.100.0/24"),
	netip.MustParsePrefix("203.0.113.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
}

// isGlobal holds for publicly routable unicast addresses: everything that
// is not claimed by one of the special-purpose predicates.
func isGlobal(addr netip.Addr) bool {
	a := addr.Unmap()
	for _, p := range specialPurpose {
		if p.Contains(a) {
			return false
		}
	}
	return !(a.IsMulticast() ||
		a.IsPrivate() ||
		a.IsLoopback() ||
		a.IsLinkLocalUnicast() ||
		a.IsLinkLocalMulticast() ||
		a.IsUnspecified() ||
		isReserved(a))
}
