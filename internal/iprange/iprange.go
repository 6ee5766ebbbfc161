// internal/iprange/iprange.go
package iprange

import (
	"fmt"
	"math/big"
	"net/netip"
)

// Prefixes normalizes an inclusive start/end address range to its minimal
// covering set of CIDR prefixes, in ascending address order. Registries
// report ranges as address pairs; everything downstream works on prefixes.
func Prefixes(start, end netip.Addr) ([]netip.Prefix, error) {
	start, end = start.Unmap(), end.Unmap()
	if !start.IsValid() || !end.IsValid() {
		return nil, fmt.Errorf("invalid range bounds %s-%s", start, end)
	}
	if start.Is4() != end.Is4() {
		return nil, fmt.Errorf("mixed address families in range %s-%s", start, end)
	}
	if end.Less(start) {
		return nil, fmt.Errorf("range end %s before start %s", end, start)
	}

	bits := start.BitLen()
	cur := new(big.Int).SetBytes(start.AsSlice())
	last := new(big.Int).SetBytes(end.AsSlice())

	var prefixes []netip.Prefix
	one := big.NewInt(1)

	for cur.Cmp(last) <= 0 {
		// Widest block aligned at cur.
		length := bits
		if cur.Sign() == 0 {
			length = 0
		} else {
			tz := int(cur.TrailingZeroBits())
			if tz > bits {
				tz = bits
			}
			length = bits - tz
		}

		// Shrink until the block stays within the range.
		for {
			blockEnd := new(big.Int).Lsh(one, uint(bits-length))
			blockEnd.Add(blockEnd, cur)
			blockEnd.Sub(blockEnd, one)
			if blockEnd.Cmp(last) <= 0 {
				break
			}
			length++
		}

		addr, err := addrFromInt(cur, bits)
		if err != nil {
			return nil, err
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr, length))

		// Advance past the block.
		step := new(big.Int).Lsh(one, uint(bits-length))
		cur.Add(cur, step)
	}

	return prefixes, nil
}

func addrFromInt(v *big.Int, bits int) (netip.Addr, error) {
	buf := make([]byte, bits/8)
	v.FillBytes(buf)
	addr, ok := netip.AddrFromSlice(buf)
	if !ok {
		return netip.Addr{}, fmt.Errorf("cannot encode %s as a %d-bit address", v, bits)
	}
	return addr, nil
}
