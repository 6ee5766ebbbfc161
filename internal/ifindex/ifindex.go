// internal/ifindex/ifindex.go
package ifindex

import (
	"fmt"
	"net"
	"net/netip"
)

// Snapshot maps an interface name to the networks configured on it.
// It is taken once at startup and treated as read-only afterwards.
type Snapshot map[string][]netip.Prefix

// SystemSnapshot builds a Snapshot from the host's active interfaces.
func SystemSnapshot() (Snapshot, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to list network interfaces: %w", err)
	}

	snap := make(Snapshot, len(ifaces))
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			return nil, fmt.Errorf("failed to read addresses of %s: %w", iface.Name, err)
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			prefix, err := netip.ParsePrefix(ipNet.String())
			if err != nil {
				return nil, fmt.Errorf("failed to parse network %s on %s: %w", ipNet, iface.Name, err)
			}
			snap[iface.Name] = append(snap[iface.Name], prefix.Masked())
		}
	}

	return snap, nil
}

// Index answers membership questions against a fixed interface snapshot
type Index struct {
	nets Snapshot
}

// New creates an Index over the given snapshot
func New(snap Snapshot) *Index {
	return &Index{nets: snap}
}

// NetworkFor returns the configured local network on iface that contains
// addr. The second return is false when the interface is unknown or none
// of its networks contain the address.
func (ix *Index) NetworkFor(addr netip.Addr, iface string) (netip.Prefix, bool) {
	for _, prefix := range ix.nets[iface] {
		if prefix.Contains(addr.Unmap()) {
			return prefix, true
		}
	}
	return netip.Prefix{}, false
}

// Interfaces returns the names present in the snapshot
func (ix *Index) Interfaces() []string {
	names := make([]string, 0, len(ix.nets))
	for name := range ix.nets {
		names = append(names, name)
	}
	return names
}
