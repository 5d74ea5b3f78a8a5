// Package netutil splits the addresses of virtual hosts.
package netutil

import (
	"errors"
	"net"
	"net/netip"
	"strconv"
)

// Host returns the host of net.Addr.
func Host(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	return HostStr(addr.String())
}

// HostStr returns the host of the address.
func HostStr(addr string) string {
	host, _, _ := splitHostPort(addr)
	return host
}

// Port returns the port of net.Addr.
// Zero means the port is unspecified.
func Port(addr net.Addr) uint16 {
	if addr == nil {
		return 0
	}
	_, port, _ := splitHostPort(addr.String())
	return port
}

// IP returns the IP address of net.Addr.
// The second return value is false if the host is not an IP literal,
// e.g. for virtual host names.
func IP(addr net.Addr) (netip.Addr, bool) {
	switch a := addr.(type) {
	case nil:
		return netip.Addr{}, false
	case *net.TCPAddr:
		ip, ok := netip.AddrFromSlice(a.IP)
		return ip.Unmap(), ok
	case *net.UDPAddr:
		ip, ok := netip.AddrFromSlice(a.IP)
		return ip.Unmap(), ok
	}
	ip, err := netip.ParseAddr(Host(addr))
	if err != nil {
		return netip.Addr{}, false
	}
	return ip.Unmap(), true
}

// NewAddr creates a new net.Addr without format validation.
func NewAddr(addr, network string) net.Addr {
	return &address{addr: addr, network: network}
}

func splitHostPort(addr string) (host string, port uint16, err error) {
	portInt := 0
	portStr := ""
	host, portStr, err = net.SplitHostPort(addr)
	if err == nil {
		portInt, err = strconv.Atoi(portStr)
	} else if isMissingPortErr(err) {
		host = addr
		err = nil
	}
	return host, uint16(portInt), err
}

type address struct{ network, addr string }

func (c *address) Network() string { return c.network }
func (c *address) String() string  { return c.addr }

var _ net.Addr = (*address)(nil)

func isMissingPortErr(err error) bool {
	var addrErr *net.AddrError
	return err != nil && errors.As(err, &addrErr) && addrErr.Err == "missing port in address"
}
