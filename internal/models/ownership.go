// internal/models/ownership.go
package models

import (
	"net/netip"
	"strings"
)

// ScopeTag classifies the routing domain of an address
type ScopeTag string

const (
	ScopeMulticast   ScopeTag = "multicast"
	ScopePrivate     ScopeTag = "private"
	ScopeGlobal      ScopeTag = "global"
	ScopeUnspecified ScopeTag = "unspecified"
	ScopeReserved    ScopeTag = "reserved"
	ScopeLoopback    ScopeTag = "loopback"
	ScopeLinkLocal   ScopeTag = "link_local"
	ScopeUnknown     ScopeTag = "unknown"
)

// String returns the tag's textual form
func (t ScopeTag) String() string {
	return string(t)
}

// OwnershipInfo holds registry metadata for one or more address ranges.
// A set Err marks the whole result as a failure; the other fields are then
// not meaningful for display, but the result is still cached so repeated
// lookups short-circuit to the same failure.
type OwnershipInfo struct {
	Nets    []netip.Prefix
	Name    string
	Country string
	Descr   string
	Err     string
}

// Failed reports whether this result represents a lookup failure
func (o *OwnershipInfo) Failed() bool {
	return o.Err != ""
}

// NetString returns the ranges serialized as a comma-joined CIDR list
func (o *OwnershipInfo) NetString() string {
	if len(o.Nets) == 0 {
		return ""
	}
	parts := make([]string, 0, len(o.Nets))
	for _, p := range o.Nets {
		parts = append(parts, p.String())
	}
	return strings.Join(parts, ",")
}
