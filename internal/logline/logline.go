// internal/logline/logline.go
package logline

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMissingField marks a matched firewall line that lacks a mandatory
// address field. The log source guarantees these fields, so their absence
// signals corruption and processing must stop rather than skip the record.
var ErrMissingField = errors.New("firewall record missing mandatory field")

// Match is one recognized firewall kernel line split into its three parts
type Match struct {
	TS     string // everything before the kernel marker
	Action string // the bracketed uppercase action tag, e.g. "UFW BLOCK"
	Fields string // the KEY=VALUE suffix after the tag
}

// kernelLine recognizes kernel firewall events: a "kernel:" marker, an
// optional kernel uptime stamp, then a bracketed uppercase action tag.
// Groups: (1) timestamp prefix  (2) action tag  (3) fields suffix
var kernelLine = regexp.MustCompile(
	`^(.*?)\s*kernel:\s*(?:\[\s*[\d.]+\]\s*)?\[([A-Z][A-Z0-9 _-]*)\]\s*(.*)$`)

// MatchLine reports whether line is a firewall kernel line and, if so,
// returns its parts. Non-matching lines are not an error; callers drop them.
func MatchLine(line string) (Match, bool) {
	m := kernelLine.FindStringSubmatch(line)
	if m == nil {
		return Match{}, false
	}
	return Match{
		TS:     strings.TrimSpace(m[1]),
		Action: strings.TrimSpace(m[2]),
		Fields: m[3],
	}, true
}

// fieldWhitelist is the fixed set of KEY=VALUE keys a record keeps.
// Everything else in the suffix (MAC, LEN, TTL, flags, ...) is dropped.
var fieldWhitelist = map[string]bool{
	"IN":    true,
	"OUT":   true,
	"SRC":   true,
	"DST":   true,
	"PROTO": true,
	"SPT":   true,
	"DPT":   true,
}

// BuildRecord parses the fields suffix into a whitelisted key/value map and
// merges in the timestamp and action. Returns ErrMissingField when SRC or
// DST is absent.
func BuildRecord(m Match) (map[string]string, error) {
	rec := make(map[string]string, len(fieldWhitelist)+2)
	for _, tok := range strings.Fields(m.Fields) {
		key, val, ok := strings.Cut(tok, "=")
		if !ok {
			continue
		}
		if fieldWhitelist[key] {
			rec[key] = val
		}
	}

	for _, key := range []string{"SRC", "DST"} {
		if _, ok := rec[key]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, key)
		}
	}

	rec["TS"] = m.TS
	rec["ACTION"] = m.Action
	return rec, nil
}
