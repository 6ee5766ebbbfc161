// internal/ifindex/ifindex_test.go
package ifindex

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testSnapshot() Snapshot {
	return Snapshot{
		"wlp2s0": {netip.MustParsePrefix("192.168.0.0/24"), netip.MustParsePrefix("fe80::/64")},
		"eth0":   {netip.MustParsePrefix("10.10.0.0/16")},
	}
}

func TestNetworkFor(t *testing.T) {
	ix := New(testSnapshot())

	tests := []struct {
		name   string
		addr   string
		iface  string
		want   string
		wantOK bool
	}{
		{"member", "192.168.0.6", "wlp2s0", "192.168.0.0/24", true},
		{"v6 member", "fe80::1c2a", "wlp2s0", "fe80::/64", true},
		{"wrong interface", "192.168.0.6", "eth0", "", false},
		{"unknown interface", "192.168.0.6", "bond0", "", false},
		{"outside all networks", "172.16.0.1", "wlp2s0", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefix, ok := ix.NetworkFor(netip.MustParseAddr(tt.addr), tt.iface)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, prefix.String())
			}
		})
	}
}

func TestInterfaces(t *testing.T) {
	ix := New(testSnapshot())
	assert.ElementsMatch(t, []string{"wlp2s0", "eth0"}, ix.Interfaces())
}
