// internal/models/record.go
package models

// AddressInfo is the fully enriched view of one address occurrence.
// The zero Port means the event carried no port for this leg.
type AddressInfo struct {
	IP      string     `json:"ip"`
	Scope   []ScopeTag `json:"scope"`
	Host    string     `json:"host,omitempty"`
	Domain  string     `json:"domain,omitempty"`
	Iface   string     `json:"if,omitempty"`
	Port    int        `json:"port,omitempty"`
	Net     string     `json:"net,omitempty"`
	Name    string     `json:"name,omitempty"`
	Descr   string     `json:"descr,omitempty"`
	Country string     `json:"country,omitempty"`
	City    string     `json:"city,omitempty"`
	Err     string     `json:"error,omitempty"`
}

// WithPort returns a shallow copy carrying the per-event port.
// The base object stays cached and shared across occurrences of the
// same address; only the port varies per event.
func (a *AddressInfo) WithPort(port int) *AddressInfo {
	cp := *a
	cp.Port = port
	return &cp
}

// HasScope reports whether the address carries the given tag
func (a *AddressInfo) HasScope(tag ScopeTag) bool {
	for _, t := range a.Scope {
		if t == tag {
			return true
		}
	}
	return false
}

// ActionRecord is one enriched firewall event
type ActionRecord struct {
	TS     string       `json:"ts"`
	Action string       `json:"action"`
	Proto  string       `json:"proto,omitempty"`
	Src    *AddressInfo `json:"src"`
	Dst    *AddressInfo `json:"dst"`
}
