// Package fetch retrieves company web pages over HTTP. It enforces a
// whole-request timeout, a redirect cap, a response size cap, and guards
// against connections into private network space.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/melissa/company-intel/internal/weburl"
)

// DefaultTimeout bounds the whole request including redirects and body read.
const DefaultTimeout = 10 * time.Second

// DefaultMaxRedirects is the redirect chain limit before giving up.
const DefaultMaxRedirects = 5

// DefaultMaxBodyBytes caps how much of a response body is read.
const DefaultMaxBodyBytes = 2 << 20 // 2 MiB

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; CompanyIntelBot/1.0)"

const defaultAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

// errRedirectLimit is returned from CheckRedirect and surfaced as a RedirectError.
var errRedirectLimit = errors.New("redirect limit exceeded")

// Result holds the raw content from a URL fetch.
type Result struct {
	URL         string // URL as requested
	FinalURL    string // URL after following redirects
	HTML        string
	ContentType string
	StatusCode  int
}

// Error represents a failure to retrieve a page: connection, TLS, DNS,
// bad status, or a non-HTML response.
type Error struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// TimeoutError reports that the whole-request deadline elapsed.
type TimeoutError struct {
	URL   string
	After time.Duration
	Cause error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("fetch timeout for %s after %s", e.URL, e.After)
}

func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// RedirectError reports a redirect chain longer than the configured limit.
type RedirectError struct {
	URL   string
	Limit int
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("fetch error for %s: stopped after %d redirects", e.URL, e.Limit)
}

// Options configures the fetch behavior.
type Options struct {
	Timeout      time.Duration
	MaxRedirects int
	MaxBodyBytes int64
	UserAgent    string
	Headers      map[string]string

	// AllowPrivateHosts disables the private-network guard.
	// Used by tests that serve fixtures from 127.0.0.1.
	AllowPrivateHosts bool
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:      DefaultTimeout,
		MaxRedirects: DefaultMaxRedirects,
		MaxBodyBytes: DefaultMaxBodyBytes,
		UserAgent:    DefaultUserAgent,
	}
}

func (o *Options) withDefaults() *Options {
	out := *o
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	if out.MaxRedirects <= 0 {
		out.MaxRedirects = DefaultMaxRedirects
	}
	if out.MaxBodyBytes <= 0 {
		out.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if out.UserAgent == "" {
		out.UserAgent = DefaultUserAgent
	}
	return &out
}

// URL retrieves HTML content from a URL with a single GET request.
// Redirects are followed up to the configured limit and the returned
// Result records the final URL. No retries are attempted.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	opts = opts.withDefaults()

	// Validate URL
	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{
			URL:     urlStr,
			Message: "invalid URL",
			Cause:   err,
		}
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, &Error{
			URL:     urlStr,
			Message: fmt.Sprintf("unsupported scheme %q", parsedURL.Scheme),
		}
	}

	client := newClient(opts)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to create request",
			Cause:   err,
		}
	}

	req.Header.Set("User-Agent", opts.UserAgent)
	req.Header.Set("Accept", defaultAccept)
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, errRedirectLimit) {
			return nil, &RedirectError{URL: urlStr, Limit: opts.MaxRedirects}
		}
		if isTimeout(err) {
			return nil, &TimeoutError{URL: urlStr, After: opts.Timeout, Cause: err}
		}
		return nil, &Error{
			URL:     urlStr,
			Message: "HTTP request failed",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	// Oversized pages are truncated rather than rejected.
	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, opts.MaxBodyBytes))
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{URL: urlStr, After: opts.Timeout, Cause: err}
		}
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to read response body",
			Cause:   err,
		}
	}

	result := &Result{
		URL:         urlStr,
		FinalURL:    resp.Request.URL.String(),
		HTML:        string(bodyBytes),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return result, &Error{
			URL:        urlStr,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	if ct := normalizeContentType(result.ContentType); !isHTMLContentType(ct) {
		return result, &Error{
			URL:        urlStr,
			Message:    fmt.Sprintf("unsupported content type %q", ct),
			StatusCode: resp.StatusCode,
		}
	}

	return result, nil
}

// newClient builds an HTTP client with the redirect cap and, unless
// disabled, a dialer that refuses private and loopback destinations even
// when a public hostname resolves to one.
func newClient(opts *Options) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if !opts.AllowPrivateHosts {
		dialer := &net.Dialer{Timeout: opts.Timeout}
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, err
			}
			if weburl.IsPrivateHostname(host) {
				return nil, fmt.Errorf("refusing to connect to private host %q", host)
			}
			ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
			if err != nil {
				return nil, err
			}
			for _, ip := range ips {
				if weburl.IsPrivateIP(ip.IP) {
					return nil, fmt.Errorf("refusing to connect to private address %s", ip.IP)
				}
			}
			return dialer.DialContext(ctx, network, net.JoinHostPort(ips[0].IP.String(), port))
		}
	}

	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= opts.MaxRedirects {
				return errRedirectLimit
			}
			if !opts.AllowPrivateHosts {
				host := req.URL.Hostname()
				if weburl.IsPrivateHostname(host) {
					return fmt.Errorf("redirect to private host %q", host)
				}
				if ip := net.ParseIP(host); ip != nil && weburl.IsPrivateIP(ip) {
					return fmt.Errorf("redirect to private address %q", host)
				}
			}
			return nil
		},
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// normalizeContentType strips parameters and lowercases a Content-Type value.
func normalizeContentType(ct string) string {
	if idx := strings.Index(ct, ";"); idx != -1 {
		ct = ct[:idx]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// isHTMLContentType treats a missing Content-Type as HTML since many small
// sites omit the header.
func isHTMLContentType(ct string) bool {
	switch ct {
	case "", "text/html", "application/xhtml+xml":
		return true
	}
	return false
}
