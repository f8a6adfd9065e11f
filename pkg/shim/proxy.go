package shim

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
)

// ProxyMatcher decides whether a peer is a trusted reverse proxy, whose
// Forwarded, X-Forwarded-For and X-Forwarded-Proto headers may be believed.
type ProxyMatcher struct {
	ips  map[string]struct{}
	nets []*net.IPNet
}

// NewProxyMatcher builds a matcher from IPs and CIDRs. Invalid entries are
// logged and ignored. It returns nil when nothing valid remains, and a nil
// matcher trusts no one.
func NewProxyMatcher(entries []string, logger *slog.Logger) *ProxyMatcher {
	if len(entries) == 0 {
		return nil
	}

	ips := make(map[string]struct{})
	var nets []*net.IPNet

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			_, network, err := net.ParseCIDR(entry)
			if err != nil {
				if logger != nil {
					logger.Warn("invalid trusted proxy CIDR", "entry", entry, "error", err)
				}
				continue
			}
			nets = append(nets, network)
			continue
		}
		ip := net.ParseIP(entry)
		if ip == nil {
			if logger != nil {
				logger.Warn("invalid trusted proxy IP", "entry", entry)
			}
			continue
		}
		ips[ip.String()] = struct{}{}
	}

	if len(ips) == 0 && len(nets) == 0 {
		return nil
	}

	return &ProxyMatcher{ips: ips, nets: nets}
}

// IsTrusted reports whether ip belongs to a trusted proxy.
func (m *ProxyMatcher) IsTrusted(ip net.IP) bool {
	if m == nil || ip == nil {
		return false
	}
	if _, ok := m.ips[ip.String()]; ok {
		return true
	}
	for _, network := range m.nets {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// requestScheme returns "https" for TLS connections, the forwarded protocol
// when the peer is a trusted proxy, and "http" otherwise.
func requestScheme(r *http.Request, trusted *ProxyMatcher) string {
	if r.TLS != nil {
		return "https"
	}
	if trusted.IsTrusted(remoteIP(r)) {
		proto := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")))
		if i := strings.IndexByte(proto, ','); i != -1 {
			proto = strings.TrimSpace(proto[:i])
		}
		if proto == "http" || proto == "https" {
			return proto
		}
	}
	return "http"
}

// clientIP walks forwarded hops from the right and returns the first address
// that is not a trusted proxy.
func clientIP(r *http.Request, trusted *ProxyMatcher) net.IP {
	peer := remoteIP(r)
	if peer == nil {
		return nil
	}
	if !trusted.IsTrusted(peer) {
		return peer
	}

	forwarded := parseForwardedFor(r.Header.Get("Forwarded"))
	if len(forwarded) == 0 {
		forwarded = parseXForwardedFor(r.Header.Get("X-Forwarded-For"))
	}
	if len(forwarded) == 0 {
		return peer
	}

	for i := len(forwarded) - 1; i >= 0; i-- {
		if !trusted.IsTrusted(forwarded[i]) {
			return forwarded[i]
		}
	}
	return forwarded[0]
}

func remoteIP(r *http.Request) net.IP {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return nil
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if zone := strings.Index(host, "%"); zone != -1 {
		host = host[:zone]
	}
	return net.ParseIP(host)
}

func parseForwardedFor(header string) []net.IP {
	if header == "" {
		return nil
	}

	var out []net.IP
	for _, elem := range strings.Split(header, ",") {
		for _, pair := range strings.Split(elem, ";") {
			kv := strings.SplitN(strings.TrimSpace(pair), "=", 2)
			if len(kv) != 2 || !strings.EqualFold(strings.TrimSpace(kv[0]), "for") {
				continue
			}
			if ip := parseForwardedIP(kv[1]); ip != nil {
				out = append(out, ip)
			}
		}
	}
	return out
}

func parseXForwardedFor(header string) []net.IP {
	if header == "" {
		return nil
	}

	var out []net.IP
	for _, part := range strings.Split(header, ",") {
		if ip := parseForwardedIP(part); ip != nil {
			out = append(out, ip)
		}
	}
	return out
}

func parseForwardedIP(value string) net.IP {
	value = strings.Trim(strings.TrimSpace(value), "\"")
	if value == "" || strings.EqualFold(value, "unknown") {
		return nil
	}

	host := value
	if strings.HasPrefix(host, "[") {
		if end := strings.Index(host, "]"); end != -1 {
			host = host[1:end]
		}
	} else if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	if zone := strings.Index(host, "%"); zone != -1 {
		host = host[:zone]
	}
	return net.ParseIP(host)
}
