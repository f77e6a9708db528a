package core

import (
	"context"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout applies to each HTTPOptions field by default.
const DefaultTimeout = 180 * time.Second

// FallbackTimeout replaces any HTTPOptions field left at zero.
const FallbackTimeout = 60 * time.Second

// HTTPOptions configures the transport shared by a client's requests.
// ReadTimeout and WriteTimeout bound each individual socket read or write,
// not the whole exchange.
type HTTPOptions struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	Proxy          *ProxyOptions
}

// DefaultHTTPOptions returns options with every timeout at DefaultTimeout
// and no proxy.
func DefaultHTTPOptions() HTTPOptions {
	return HTTPOptions{
		ConnectTimeout: DefaultTimeout,
		ReadTimeout:    DefaultTimeout,
		WriteTimeout:   DefaultTimeout,
	}
}

func (o HTTPOptions) withFallbacks() HTTPOptions {
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = FallbackTimeout
	}

	if o.ReadTimeout <= 0 {
		o.ReadTimeout = FallbackTimeout
	}

	if o.WriteTimeout <= 0 {
		o.WriteTimeout = FallbackTimeout
	}

	return o
}

// ProxyOptions routes requests through an HTTP proxy, optionally with basic
// authentication. Username and Password must be given together.
type ProxyOptions struct {
	URL      string
	Username string
	Password string
}

// Validate checks the proxy URL and the credential pairing.
func (p *ProxyOptions) Validate() error {
	if err := ValidURL(p.URL, "Proxy URL"); err != nil {
		return err
	}

	if p.Username != "" || p.Password != "" {
		if err := NotBlank(p.Username, "Proxy username"); err != nil {
			return err
		}

		if p.Password == "" {
			return invalid("Proxy password", "'%s' cannot be null!")
		}
	}

	return nil
}

// BasicAuthentication returns the Proxy-Authorization value, or "" when no
// credentials are configured.
func (p *ProxyOptions) BasicAuthentication() string {
	if p.Username == "" {
		return ""
	}

	return "Basic " + base64.StdEncoding.EncodeToString([]byte(p.Username+":"+p.Password))
}

func (p *ProxyOptions) proxyURL() (*url.URL, error) {
	u, err := url.Parse(p.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing proxy URL: %w", err)
	}

	if p.Username != "" {
		u.User = url.UserPassword(p.Username, p.Password)
	}

	return u, nil
}

// NewTransport builds the base round tripper for opts. Proxy credentials are
// attached once here and sent with every proxied request.
func NewTransport(opts HTTPOptions) (*http.Transport, error) {
	opts = opts.withFallbacks()

	dialer := &net.Dialer{Timeout: opts.ConnectTimeout, KeepAlive: 30 * time.Second}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.TLSHandshakeTimeout = opts.ConnectTimeout
	tr.ResponseHeaderTimeout = opts.ReadTimeout
	tr.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}

		return &deadlineConn{Conn: conn, read: opts.ReadTimeout, write: opts.WriteTimeout}, nil
	}

	if opts.Proxy != nil {
		if err := opts.Proxy.Validate(); err != nil {
			return nil, err
		}

		u, err := opts.Proxy.proxyURL()
		if err != nil {
			return nil, err
		}

		tr.Proxy = http.ProxyURL(u)

		if auth := opts.Proxy.BasicAuthentication(); auth != "" {
			tr.ProxyConnectHeader = http.Header{"Proxy-Authorization": []string{auth}}
		}
	}

	return tr, nil
}

// deadlineConn applies the read and write timeouts to each socket operation.
type deadlineConn struct {
	net.Conn
	read  time.Duration
	write time.Duration
}

func (c *deadlineConn) Read(b []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.read)); err != nil {
		return 0, err
	}

	return c.Conn.Read(b)
}

func (c *deadlineConn) Write(b []byte) (int, error) {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(c.write)); err != nil {
		return 0, err
	}

	return c.Conn.Write(b)
}

// Middleware decorates a round tripper.
type Middleware func(http.RoundTripper) http.RoundTripper

// roundTripFunc adapts a function to http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// NewHTTPClient builds a client for opts with the middlewares applied in
// order, the first being outermost.
func NewHTTPClient(opts HTTPOptions, mw ...Middleware) (*http.Client, error) {
	tr, err := NewTransport(opts)
	if err != nil {
		return nil, err
	}

	return &http.Client{Transport: Chain(tr, mw...)}, nil
}

// Chain wraps base with mw, the first middleware being outermost.
func Chain(base http.RoundTripper, mw ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	for i := len(mw) - 1; i >= 0; i-- {
		if mw[i] != nil {
			base = mw[i](base)
		}
	}

	return base
}

// cloneRequest copies r so a round tripper can add headers without touching
// the caller's request.
func cloneRequest(r *http.Request) *http.Request {
	return r.Clone(r.Context())
}

func trimmed(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	return out
}
