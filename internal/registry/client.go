// internal/registry/client.go
package registry

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"fwtrace.io/internal/iprange"
	"fwtrace.io/internal/models"
)

// Config holds configuration for the registry client
type Config struct {
	// BaseURL is the RDAP endpoint; the address is appended as a path segment
	BaseURL string

	// Timeout bounds the whole request including body read
	Timeout time.Duration

	// MinTLSVersion is the lowest negotiated TLS version. Some regional
	// registries still serve with old key-exchange parameters; the floor is
	// configurable but certificate validation always stays on.
	MinTLSVersion uint16
}

// DefaultConfig returns a registry config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		BaseURL:       "https://rdap.org/ip",
		Timeout:       5 * time.Second,
		MinTLSVersion: tls.VersionTLS12,
	}
}

// Client performs ownership lookups against an RDAP registry.
// Lookup failures are values, never errors: every outcome is an
// OwnershipInfo, with Err set on failure.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a registry client
func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: config.MinTLSVersion,
		},
	}

	return &Client{
		baseURL: strings.TrimSuffix(config.BaseURL, "/"),
		http: &http.Client{
			Timeout:   config.Timeout,
			Transport: transport,
		},
	}
}

// rdapResponse is the subset of an RDAP IP network object this client reads
type rdapResponse struct {
	StartAddress string `json:"startAddress"`
	EndAddress   string `json:"endAddress"`
	Name         string `json:"name"`
	Country      string `json:"country"`
	ErrorCode    int    `json:"errorCode"`
	Title        string `json:"title"`
	Remarks      []struct {
		Description []string `json:"description"`
	} `json:"remarks"`
}

// Lookup queries the registry for the network containing addr. The start and
// end addresses are mandatory; name, country and the first remark description
// are extracted opportunistically.
func (c *Client) Lookup(ctx context.Context, addr netip.Addr) *models.OwnershipInfo {
	url := c.baseURL + "/" + addr.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return failure(addr, err.Error())
	}
	req.Header.Set("Accept", "application/rdap+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return failure(addr, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return failure(addr, fmt.Sprintf("registry returned HTTP %d", resp.StatusCode))
	}

	var body rdapResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return failure(addr, fmt.Sprintf("malformed registry response: %v", err))
	}

	if body.ErrorCode != 0 {
		return failure(addr, fmt.Sprintf("registry error %d: %s", body.ErrorCode, body.Title))
	}

	start, err := parseRangeBound(body.StartAddress)
	if err != nil {
		return failure(addr, fmt.Sprintf("bad startAddress %q", body.StartAddress))
	}
	end, err := parseRangeBound(body.EndAddress)
	if err != nil {
		return failure(addr, fmt.Sprintf("bad endAddress %q", body.EndAddress))
	}

	nets, err := iprange.Prefixes(start, end)
	if err != nil {
		return failure(addr, fmt.Sprintf("bad registry range %s-%s: %v", start, end, err))
	}

	info := &models.OwnershipInfo{
		Nets:    nets,
		Name:    body.Name,
		Country: strings.ToUpper(body.Country),
	}
	if len(body.Remarks) > 0 && len(body.Remarks[0].Description) > 0 {
		info.Descr = body.Remarks[0].Description[0]
	}
	return info
}

// parseRangeBound parses an RDAP range bound. Some registries append a
// prefix length to the bound; it carries no extra information and is dropped.
func parseRangeBound(s string) (netip.Addr, error) {
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return netip.ParseAddr(strings.TrimSpace(s))
}

func failure(addr netip.Addr, msg string) *models.OwnershipInfo {
	return &models.OwnershipInfo{
		Err: fmt.Sprintf("lookup %s failed: %s", addr, msg),
	}
}
