package contexts

import (
	"fmt"
	"net/netip"
	"strings"
)

// IPSet is a range of IP addresses.
type IPSet netip.Prefix

// OnlyIP returns the IPSet containing only addr.
func OnlyIP(addr netip.Addr) IPSet {
	addr = addr.Unmap()
	return IPSet(netip.PrefixFrom(addr, addr.BitLen()))
}

// ParseIPSet parses a single address or a CIDR range.
func ParseIPSet(s string) (IPSet, error) {
	if strings.Contains(s, "/") {
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return IPSet{}, err
		}
		return IPSet(p.Masked()), nil
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return IPSet{}, err
	}
	return OnlyIP(addr), nil
}

// Prefix returns s as netip.Prefix.
func (s IPSet) Prefix() netip.Prefix { return netip.Prefix(s) }

// Contains reports whether every address of other is in s.
func (s IPSet) Contains(other IPSet) bool {
	p, o := s.Prefix(), other.Prefix()
	return p.IsValid() && o.IsValid() && p.Bits() <= o.Bits() && p.Contains(o.Addr())
}

func (s IPSet) String() string {
	p := s.Prefix()
	if p.IsSingleIP() {
		return p.Addr().String()
	}
	return p.String()
}

// IPSetDefinition is a Definition of IP ranges.
// A stored range matches every active range it fully contains.
// It is meant to be embedded by definitions that derive values from a host.
type IPSetDefinition struct{ Key string }

var _ Definition[IPSet] = IPSetDefinition{}

func (d IPSetDefinition) Name() string           { return d.Key }
func (IPSetDefinition) Serialize(v IPSet) string { return v.String() }
func (IPSetDefinition) Deserialize(v string) (IPSet, error) {
	s, err := ParseIPSet(v)
	if err != nil {
		return IPSet{}, fmt.Errorf("not an address or range: %w", err)
	}
	return s, nil
}
func (IPSetDefinition) Matches(own, test IPSet) bool               { return own.Contains(test) }
func (IPSetDefinition) AccumulateFromSubject(Subject, func(IPSet)) {}
func (IPSetDefinition) SuggestValues(Subject) []IPSet              { return nil }
