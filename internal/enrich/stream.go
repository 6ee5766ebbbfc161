// internal/enrich/stream.go
package enrich

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"strconv"

	"fwtrace.io/internal/logline"
	"fwtrace.io/internal/models"
)

// LineSource yields raw log lines. Next blocks until a line is available,
// returns io.EOF when a finite source is exhausted, and may block forever
// on a follow-mode source.
type LineSource interface {
	Next(ctx context.Context) (string, error)
}

// Stream is the lazy, single-pass sequence of enriched firewall records.
// It follows the scanner idiom:
//
//	for stream.Next(ctx) {
//	    rec := stream.Record()
//	    ...
//	}
//	if err := stream.Err(); err != nil { ... }
//
// Enrichment results are memoized per (interface, address) pair for the
// whole stream, so a repeated address costs one map hit; only the port is
// recomputed per event on a shallow copy.
type Stream struct {
	src      LineSource
	enricher *Enricher
	memo     map[string]*models.AddressInfo
	rec      *models.ActionRecord
	err      error
}

// NewStream creates a record stream over src
func NewStream(src LineSource, enricher *Enricher) *Stream {
	return &Stream{
		src:      src,
		enricher: enricher,
		memo:     make(map[string]*models.AddressInfo),
	}
}

// Next advances to the next firewall record, skipping non-matching lines.
// Returns false when the source is exhausted, the context is cancelled, or
// a fatal error occurred; Err distinguishes the cases.
func (s *Stream) Next(ctx context.Context) bool {
	for {
		if err := ctx.Err(); err != nil {
			s.err = err
			return false
		}

		line, err := s.src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return false
		}
		if err != nil {
			s.err = err
			return false
		}

		match, ok := logline.MatchLine(line)
		if !ok {
			continue
		}

		fields, err := logline.BuildRecord(match)
		if err != nil {
			s.err = err
			return false
		}

		rec, err := s.assemble(ctx, fields)
		if err != nil {
			s.err = err
			return false
		}

		s.rec = rec
		return true
	}
}

// Record returns the record produced by the last successful Next
func (s *Stream) Record() *models.ActionRecord {
	return s.rec
}

// Err returns the error that ended the stream, if any
func (s *Stream) Err() error {
	return s.err
}

// assemble enriches both legs of one raw record. The destination is looked
// up under the inbound interface, the source under the outbound one; an
// empty interface routes the leg through the global ownership path.
func (s *Stream) assemble(ctx context.Context, fields map[string]string) (*models.ActionRecord, error) {
	srcAddr, err := netip.ParseAddr(fields["SRC"])
	if err != nil {
		return nil, fmt.Errorf("malformed SRC address %q: %w", fields["SRC"], err)
	}
	dstAddr, err := netip.ParseAddr(fields["DST"])
	if err != nil {
		return nil, fmt.Errorf("malformed DST address %q: %w", fields["DST"], err)
	}

	dst := s.cachedInfo(ctx, dstAddr, fields["IN"]).WithPort(atoiOrZero(fields["DPT"]))
	src := s.cachedInfo(ctx, srcAddr, fields["OUT"]).WithPort(atoiOrZero(fields["SPT"]))

	return &models.ActionRecord{
		TS:     fields["TS"],
		Action: fields["ACTION"],
		Proto:  fields["PROTO"],
		Src:    src,
		Dst:    dst,
	}, nil
}

// cachedInfo returns the memoized base info for a (interface, address)
// pair, enriching on first sight. The memo sits in front of the ownership
// cache and also covers reverse-DNS results.
func (s *Stream) cachedInfo(ctx context.Context, addr netip.Addr, iface string) *models.AddressInfo {
	key := iface + "|" + addr.Unmap().String()
	if info, ok := s.memo[key]; ok {
		return info
	}

	info := s.enricher.Enrich(ctx, addr, iface)
	s.memo[key] = info
	return info
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
