package core

import (
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Options configure a service or authentication client. They are set with
// Option functions and shared by every client constructor.
type Options struct {
	HTTPClient        Doer
	HTTPOptions       HTTPOptions
	BaseURL           string
	AuthURL           string
	Environment       Environment
	Logger            *slog.Logger
	LogHTTP           bool
	RedactHeaders     []string
	DisableTelemetry  bool
	RequestsPerSecond int
	Metrics           *Metrics
	TokenStore        TokenStore
	TokenFetcher      TokenFetcher
	Clock             func() time.Time
}

// Option configures a client.
type Option func(*Options)

// NewOptions applies opts over the defaults.
func NewOptions(opts ...Option) Options {
	o := Options{
		HTTPOptions: DefaultHTTPOptions(),
		AuthURL:     AuthURL,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:       time.Now,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// WithHTTPClient sends requests through c as is. Transport options,
// HTTP logging, telemetry, rate limiting and metrics are then the caller's
// responsibility.
func WithHTTPClient(c Doer) Option {
	return func(o *Options) { o.HTTPClient = c }
}

// WithHTTPOptions sets timeouts and proxy.
func WithHTTPOptions(opts HTTPOptions) Option {
	return func(o *Options) { o.HTTPOptions = opts }
}

// WithBaseURL overrides the API root, e.g. to point at a test server.
func WithBaseURL(u string) Option {
	return func(o *Options) { o.BaseURL = u }
}

// WithAuthURL overrides the token endpoint root.
func WithAuthURL(u string) Option {
	return func(o *Options) { o.AuthURL = u }
}

// WithEnvironment selects live or sandbox. The default is sandbox.
func WithEnvironment(env Environment) Option {
	return func(o *Options) { o.Environment = env }
}

// WithLogger sets the logger. Without it nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithHTTPLogging logs every request and response, hiding the values of
// the named headers.
func WithHTTPLogging(redact ...string) Option {
	return func(o *Options) {
		o.LogHTTP = true
		o.RedactHeaders = append(o.RedactHeaders, redact...)
	}
}

// WithTelemetry toggles the Reloadly-Client header. It is on by default.
func WithTelemetry(enabled bool) Option {
	return func(o *Options) { o.DisableTelemetry = !enabled }
}

// WithRateLimit caps outgoing requests per second. Zero disables the limit.
func WithRateLimit(perSecond int) Option {
	return func(o *Options) { o.RequestsPerSecond = perSecond }
}

// WithMetrics records request and token metrics in m.
func WithMetrics(m *Metrics) Option {
	return func(o *Options) { o.Metrics = m }
}

// WithTokenStore persists access tokens across processes.
func WithTokenStore(store TokenStore) Option {
	return func(o *Options) { o.TokenStore = store }
}

// WithTokenFetcher replaces the authentication client a service client
// obtains tokens from.
func WithTokenFetcher(f TokenFetcher) Option {
	return func(o *Options) { o.TokenFetcher = f }
}

// WithClock replaces the clock used for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		if now != nil {
			o.Clock = now
		}
	}
}

// Doer returns the client requests are sent through. Unless a client was
// supplied with WithHTTPClient, one is built from HTTPOptions with the
// configured middlewares. apiVersion is reported in the telemetry header.
func (o Options) Doer(apiVersion string) (Doer, error) {
	if o.HTTPClient != nil {
		return o.HTTPClient, nil
	}

	var mw []Middleware

	if !o.DisableTelemetry {
		mw = append(mw, TelemetryMiddleware(NewTelemetry(apiVersion)))
	}

	if o.RequestsPerSecond > 0 {
		mw = append(mw, RateLimitMiddleware(NewLimiter(o.RequestsPerSecond)))
	}

	if o.LogHTTP {
		mw = append(mw, LoggingMiddleware(o.Logger, o.RedactHeaders...))
	}

	if o.Metrics != nil {
		mw = append(mw, o.Metrics.Middleware())
	}

	c, err := NewHTTPClient(o.HTTPOptions, mw...)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// SessionOptions returns the session settings carried by o.
func (o Options) SessionOptions() []SessionOption {
	return []SessionOption{
		WithStore(o.TokenStore),
		WithNow(o.Clock),
		WithSessionLogger(o.Logger),
		WithSessionMetrics(o.Metrics),
	}
}

var _ Doer = (*http.Client)(nil)
