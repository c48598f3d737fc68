package netutil

import (
	"context"
	"errors"
	"net"
	"net/url"
)

// ErrPrivateDestination is returned for locations that resolve to private or
// reserved address space.
var ErrPrivateDestination = errors.New("destination resolves to private/reserved address")

var privateNetworks = func() []*net.IPNet {
	cidrs := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"169.254.0.0/16",
		"100.64.0.0/10",
		"::1/128",
		"fc00::/7",
		"fe80::/10",
	}
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		if _, n, err := net.ParseCIDR(cidr); err == nil {
			nets = append(nets, n)
		}
	}
	return nets
}()

// IsPrivateIP returns true if the IP is in a private, loopback, link-local or reserved range
func IsPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
		return true
	}
	for _, n := range privateNetworks {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// CheckURL rejects feed locations whose host is, or resolves to, a private
// address. Loopback stays allowed so local test servers work. Resolution
// failures are left for the HTTP client to report.
func CheckURL(ctx context.Context, u *url.URL) error {
	host := u.Hostname()
	if host == "" {
		return nil
	}
	if ip := net.ParseIP(host); ip != nil {
		if IsPrivateIP(ip) && !ip.IsLoopback() {
			return ErrPrivateDestination
		}
		return nil
	}
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil
	}
	for _, a := range addrs {
		if IsPrivateIP(a.IP) && !a.IP.IsLoopback() {
			return ErrPrivateDestination
		}
	}
	return nil
}
