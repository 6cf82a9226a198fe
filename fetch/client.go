// Package fetch implements the adaptive fetch pipeline: a tier-0 HTTP fetch
// with block detection, readability extraction, and optional tier-1
// escalation to a script-executing renderer.
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

	tls "github.com/refraction-networking/utls"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// ErrHostNotAllowed is returned when the client's allow-list policy rejects
// a target host (including redirect hops).
var ErrHostNotAllowed = errors.New("fetch: host not allowed by client policy")

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to http/1.1
// only. Computed once at init time and reused for every connection.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return
	}
	// Replace h2 with http/1.1 only in the ALPN extension so the server
	// never negotiates HTTP/2 (which Go's http.Transport cannot handle
	// over a utls connection).
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// ClientConfig controls Client construction.
type ClientConfig struct {
	// AllowedHosts, when non-empty, is the only set of hostnames the
	// client will connect to. Redirect hops are checked too.
	AllowedHosts []string

	// MaxRedirects bounds redirect following. Zero means the default of 5.
	MaxRedirects int
}

// Client is an HTTP client with a Chrome TLS fingerprint and an explicit,
// injectable host allow-list. Construct one per policy; there is no
// process-global state to patch.
type Client struct {
	hc           *http.Client
	allowed      map[string]struct{}
	maxRedirects int
}

// Response is the transport-level result handed to the detector.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       string
	FinalURL   string
}

// NewClient creates a Client with a Chrome-like TLS fingerprint.
// ALPN is locked to http/1.1 to avoid the HTTP/2 framing mismatch that
// occurs when utls negotiates h2 but Go's http.Transport only speaks h1.
func NewClient(cfg ClientConfig) *Client {
	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = 5
	}

	var allowed map[string]struct{}
	if len(cfg.AllowedHosts) > 0 {
		allowed = make(map[string]struct{}, len(cfg.AllowedHosts))
		for _, h := range cfg.AllowedHosts {
			allowed[strings.ToLower(h)] = struct{}{}
		}
	}

	c := &Client{
		allowed:      allowed,
		maxRedirects: maxRedirects,
	}

	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialer := &net.Dialer{Timeout: 10 * time.Second}
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			host, _, _ := net.SplitHostPort(addr)
			tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
			if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
				conn.Close()
				return nil, fmt.Errorf("fetch: apply tls spec: %w", err)
			}
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		ForceAttemptHTTP2: false,
	}

	c.hc = &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= c.maxRedirects {
				return fmt.Errorf("fetch: too many redirects")
			}
			return c.checkHost(req.URL)
		},
	}

	return c
}

// Get performs a GET with browser-like headers. The caller bounds the whole
// operation through ctx.
func (c *Client) Get(ctx context.Context, targetURL string) (*Response, error) {
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: parse url: %w", err)
	}
	if err := c.checkHost(parsed); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}

	req.Header.Set("User-Agent", chromeUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "identity") // no compression for simplicity

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// 10 MB cap to prevent unbounded memory use on hostile pages.
	const maxBody = 10 << 20
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("fetch: read body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       string(body),
		FinalURL:   resp.Request.URL.String(),
	}, nil
}

// checkHost enforces the allow-list policy. An empty policy allows all hosts.
func (c *Client) checkHost(u *url.URL) error {
	if c.allowed == nil {
		return nil
	}
	if _, ok := c.allowed[strings.ToLower(u.Hostname())]; !ok {
		return fmt.Errorf("%w: %s", ErrHostNotAllowed, u.Hostname())
	}
	return nil
}
