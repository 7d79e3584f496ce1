package clientip

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// Ranges that are never reported as a client address when found in X-Forwarded-For,
// in addition to the ones netip classifies on its own.
var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("240.0.0.0/4"),
	netip.MustParsePrefix("::ffff:0:0/96"),
}

// GetIP returns the client's IP address for r.
// RemoteAddr is the default; X-Forwarded-For is scanned right to left and the
// first public entry replaces it.
func GetIP(r *http.Request) string {
	return Select(r.RemoteAddr, r.Header.Values("X-Forwarded-For")...)
}

// Select picks the client address from a peer address and raw X-Forwarded-For
// header values. Multiple header values are treated as one comma-joined chain.
func Select(remoteAddr string, forwardedFor ...string) string {
	best := parseIP(hostOnly(remoteAddr))

	chain := strings.Split(strings.Join(forwardedFor, ","), ",")
	for i := len(chain) - 1; i >= 0; i-- {
		addr, err := netip.ParseAddr(strings.TrimSpace(chain[i]))
		if err != nil {
			continue
		}
		if IsPublic(addr) {
			return addr.String()
		}
	}

	return best
}

// IsPublic reports whether addr is a routable public address.
func IsPublic(addr netip.Addr) bool {
	if !addr.IsValid() ||
		addr.IsPrivate() ||
		addr.IsLoopback() ||
		addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() {
		return false
	}
	for _, p := range reservedPrefixes {
		if p.Contains(addr) {
			return false
		}
	}
	return true
}

// IsLocal reports whether ip is a loopback address.
func IsLocal(ip string) bool {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	return err == nil && addr.IsLoopback()
}

func hostOnly(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		// No port, assume it is already a bare address
		return addr
	}
	return host
}

// parseIP validates and normalizes an IP address string.
// Returns empty string if the IP is invalid.
func parseIP(ipStr string) string {
	addr, err := netip.ParseAddr(strings.TrimSpace(ipStr))
	if err != nil {
		return ""
	}
	return addr.Unmap().String()
}
