// internal/geoip/geoip.go
package geoip

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/oschwald/geoip2-golang"
)

// DB wraps a local GeoLite2/GeoIP2 database used as a country fallback when
// the ownership registry reports no country for a range.
type DB struct {
	reader *geoip2.Reader
}

// Open opens an MMDB file
func Open(path string) (*DB, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open geoip database %s: %w", path, err)
	}
	return &DB{reader: reader}, nil
}

// Locate returns the ISO country code and English city name for addr.
// Either may be empty when the database has no data for the address.
func (d *DB) Locate(addr netip.Addr) (country, city string, err error) {
	record, err := d.reader.City(net.IP(addr.Unmap().AsSlice()))
	if err != nil {
		return "", "", fmt.Errorf("geoip lookup of %s: %w", addr, err)
	}
	return record.Country.IsoCode, record.City.Names["en"], nil
}

// Close releases the underlying reader
func (d *DB) Close() error {
	return d.reader.Close()
}
