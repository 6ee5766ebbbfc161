// internal/revdns/revdns.go
package revdns

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// Client answers reverse-DNS questions through the system resolver
type Client struct {
	servers []string
	client  *dns.Client
}

// NewClient creates a reverse-DNS client from the host's resolver config
func NewClient() (*Client, error) {
	conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil {
		return nil, fmt.Errorf("failed to read resolver config: %w", err)
	}
	if len(conf.Servers) == 0 {
		return nil, fmt.Errorf("no nameservers configured")
	}

	servers := make([]string, 0, len(conf.Servers))
	for _, s := range conf.Servers {
		servers = append(servers, net.JoinHostPort(s, conf.Port))
	}

	return &Client{
		servers: servers,
		client:  &dns.Client{Timeout: 3 * time.Second},
	}, nil
}

// Host returns the PTR name for addr, without the trailing dot.
// Nameservers are tried in order for transport errors only; an
// authoritative "no such name" ends the search.
func (c *Client) Host(ctx context.Context, addr netip.Addr) (string, error) {
	name, err := dns.ReverseAddr(addr.String())
	if err != nil {
		return "", fmt.Errorf("cannot build reverse name for %s: %w", addr, err)
	}

	msg := new(dns.Msg)
	msg.SetQuestion(name, dns.TypePTR)
	msg.RecursionDesired = true

	var lastErr error
	for _, server := range c.servers {
		resp, _, err := c.client.ExchangeContext(ctx, msg, server)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.Rcode != dns.RcodeSuccess {
			return "", fmt.Errorf("reverse lookup of %s: %s", addr, dns.RcodeToString[resp.Rcode])
		}

		for _, rr := range resp.Answer {
			if ptr, ok := rr.(*dns.PTR); ok {
				return strings.TrimSuffix(ptr.Ptr, "."), nil
			}
		}
		return "", fmt.Errorf("no PTR record for %s", addr)
	}

	return "", fmt.Errorf("reverse lookup of %s: %w", addr, lastErr)
}
