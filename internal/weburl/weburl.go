// Package weburl normalizes user-supplied company website addresses and
// classifies private network space so fetches never reach internal hosts.
package weburl

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
)

// Pre-compiled CIDR networks for private/reserved IP ranges.
// These are parsed once at package initialization.
var (
	cgnat    *net.IPNet // 100.64.0.0/10 - Carrier-grade NAT
	v6unique *net.IPNet // fc00::/7 - IPv6 unique local
	v6link   *net.IPNet // fe80::/10 - IPv6 link-local
)

// hostnamePattern validates registered-name syntax (RFC 1123 labels).
var hostnamePattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?(\.[a-z0-9]([a-z0-9-]*[a-z0-9])?)*$`)

func init() {
	var err error

	_, cgnat, err = net.ParseCIDR("100.64.0.0/10")
	if err != nil {
		panic("invalid CGNAT CIDR: " + err.Error())
	}

	_, v6unique, err = net.ParseCIDR("fc00::/7")
	if err != nil {
		panic("invalid IPv6 unique local CIDR: " + err.Error())
	}

	_, v6link, err = net.ParseCIDR("fe80::/10")
	if err != nil {
		panic("invalid IPv6 link-local CIDR: " + err.Error())
	}
}

// InvalidURLError reports input that cannot be turned into a fetchable web address.
type InvalidURLError struct {
	URL     string
	Message string
	Cause   error
}

func (e *InvalidURLError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid url %q: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid url %q: %s", e.URL, e.Message)
}

func (e *InvalidURLError) Unwrap() error {
	return e.Cause
}

// Options controls normalization behavior.
type Options struct {
	// AllowPrivateHosts permits loopback and private-range addresses.
	// Used by tests that serve fixtures from 127.0.0.1.
	AllowPrivateHosts bool
}

// Normalize canonicalizes raw input into a fetchable http(s) URL.
// It trims whitespace, defaults the scheme to https, lowercases the scheme
// and host, strips default ports and fragments, and rejects credentials,
// non-http(s) schemes, malformed hostnames, and private or loopback address
// literals. The output is a fixed point: normalizing it again returns the
// same string.
func Normalize(raw string, opts *Options) (string, error) {
	if opts == nil {
		opts = &Options{}
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", &InvalidURLError{URL: raw, Message: "empty input"}
	}

	// Bare domains are common in catalog data, so default the scheme.
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", &InvalidURLError{URL: raw, Message: "unparseable", Cause: err}
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", &InvalidURLError{URL: raw, Message: fmt.Sprintf("unsupported scheme %q", parsed.Scheme)}
	}

	if parsed.User != nil {
		return "", &InvalidURLError{URL: raw, Message: "credentials are not allowed"}
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return "", &InvalidURLError{URL: raw, Message: "missing host"}
	}

	if ip := net.ParseIP(host); ip != nil {
		if !opts.AllowPrivateHosts && IsPrivateIP(ip) {
			return "", &InvalidURLError{URL: raw, Message: "private or loopback address"}
		}
	} else {
		if !hostnamePattern.MatchString(host) {
			return "", &InvalidURLError{URL: raw, Message: fmt.Sprintf("malformed hostname %q", host)}
		}
		if !opts.AllowPrivateHosts && IsPrivateHostname(host) {
			return "", &InvalidURLError{URL: raw, Message: "private hostname"}
		}
		if !strings.Contains(host, ".") && host != "localhost" {
			return "", &InvalidURLError{URL: raw, Message: fmt.Sprintf("hostname %q is not fully qualified", host)}
		}
	}

	parsed.Scheme = scheme
	parsed.Host = joinHostPort(host, canonicalPort(scheme, parsed.Port()))
	parsed.Fragment = ""

	return parsed.String(), nil
}

// IsPrivateIP checks if an IP is in private/reserved ranges.
// It handles IPv4, IPv6, and IPv6-mapped IPv4 addresses.
func IsPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
		return true
	}

	// IPv6-mapped IPv4 addresses (::ffff:x.x.x.x) must be re-checked as IPv4.
	if v4 := ip.To4(); v4 != nil {
		ip = v4
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() {
			return true
		}
	}

	if cgnat.Contains(ip) || v6unique.Contains(ip) || v6link.Contains(ip) {
		return true
	}

	return false
}

// IsPrivateHostname reports whether a hostname names local or internal
// infrastructure rather than a public site.
func IsPrivateHostname(host string) bool {
	lowHost := strings.ToLower(host)
	if lowHost == "localhost" {
		return true
	}
	return strings.HasSuffix(lowHost, ".localhost") ||
		strings.HasSuffix(lowHost, ".local") ||
		strings.HasSuffix(lowHost, ".internal")
}

// canonicalPort drops the scheme's default port so equivalent URLs
// normalize to the same string.
func canonicalPort(scheme, port string) string {
	if port == "" {
		return ""
	}
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		return ""
	}
	return port
}

func joinHostPort(host, port string) string {
	// IPv6 literals need brackets when placed back into the authority.
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port == "" {
		return host
	}
	return host + ":" + port
}
