// internal/scope/scope_test.go
package scope

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"

	"fwtrace.io/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want []models.ScopeTag
	}{
		{"rfc1918", "192.168.0.6", []models.ScopeTag{models.ScopePrivate}},
		{"rfc1918 10/8", "10.1.2.3", []models.ScopeTag{models.ScopePrivate}},
		{"public v4", "213.230.86.36", []models.ScopeTag{models.ScopeGlobal}},
		{"public dns", "8.8.8.8", []models.ScopeTag{models.ScopeGlobal}},
		{"loopback", "127.0.0.1", []models.ScopeTag{models.ScopeLoopback}},
		{"v6 loopback", "::1", []models.ScopeTag{models.ScopeLoopback}},
		{"unspecified", "0.0.0.0", []models.ScopeTag{models.ScopeUnspecified}},
		{"v6 unspecified", "::", []models.ScopeTag{models.ScopeUnspecified}},
		{"link local", "169.254.10.1", []models.ScopeTag{models.ScopeLinkLocal}},
		{"v6 link local", "fe80::1", []models.ScopeTag{models.ScopeLinkLocal}},
		{"reserved v4", "240.0.0.1", []models.ScopeTag{models.ScopeReserved}},
		{"multicast", "239.255.255.250", []models.ScopeTag{models.ScopeMulticast}},
		{"link local multicast", "224.0.0.251", []models.ScopeTag{models.ScopeMulticast, models.ScopeLinkLocal}},
		{"v6 multicast", "ff02::fb", []models.ScopeTag{models.ScopeMulticast, models.ScopeLinkLocal}},
		{"ula", "fd00::1", []models.ScopeTag{models.ScopePrivate}},
		{"v6 global", "2606:4700::1111", []models.ScopeTag{models.ScopeGlobal}},
		{"documentation net", "192.0.2.44", []models.ScopeTag{models.ScopeUnknown}},
		{"benchmark net", "198.18.0.9", []models.ScopeTag{models.ScopeUnknown}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := netip.MustParseAddr(tt.addr)
			assert.Equal(t, tt.want, Classify(addr))
		})
	}
}

// Tag order in the result must follow the predicate evaluation order,
// and multi-tag addresses keep every tag that holds.
func TestClassifyPreservesPredicateOrder(t *testing.T) {
	got := Classify(netip.MustParseAddr("224.0.0.1"))
	assert.Equal(t, []models.ScopeTag{models.ScopeMulticast, models.ScopeLinkLocal}, got)
}
