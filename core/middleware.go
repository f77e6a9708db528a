package core

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

// Version is the SDK version reported in the telemetry header. Release
// builds set it with -ldflags "-X github.com/Reloadly/reloadly-sdk-go/core.Version=...".
var Version = "dev"

// TelemetryHeader carries base64url-encoded client information.
const TelemetryHeader = "Reloadly-Client"

const sdkName = "reloadly-sdk-go"

// redactedValue replaces the value of a redacted header in logs.
const redactedValue = "██"

// Telemetry describes the SDK to the server.
type Telemetry struct {
	Name       string            `json:"name"`
	APIVersion string            `json:"api-version,omitempty"`
	Env        map[string]string `json:"env"`
}

// NewTelemetry describes this SDK build. apiVersion may be empty.
func NewTelemetry(apiVersion string) Telemetry {
	env := map[string]string{"go": runtime.Version()}
	if Version != "" {
		env[sdkName] = Version
	}

	return Telemetry{Name: sdkName, APIVersion: apiVersion, Env: env}
}

// HeaderValue returns the encoded header value.
func (t Telemetry) HeaderValue() string {
	raw, err := json.Marshal(t)
	if err != nil {
		return ""
	}

	return base64.RawURLEncoding.EncodeToString(raw)
}

// TelemetryMiddleware sets the Reloadly-Client header on every request.
func TelemetryMiddleware(t Telemetry) Middleware {
	value := t.HeaderValue()

	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if value == "" {
				return next.RoundTrip(r)
			}

			r = cloneRequest(r)
			r.Header.Set(TelemetryHeader, value)

			return next.RoundTrip(r)
		})
	}
}

// RateLimitMiddleware makes requests wait for limiter before they are sent.
func RateLimitMiddleware(limiter *rate.Limiter) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if err := limiter.Wait(r.Context()); err != nil {
				return nil, fmt.Errorf("rate limit wait: %w", err)
			}

			return next.RoundTrip(r)
		})
	}
}

// NewLimiter returns a limiter allowing perSecond requests per second with an
// equal burst.
func NewLimiter(perSecond int) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(perSecond), perSecond)
}

// LoggingMiddleware logs every exchange at debug level, and failures at warn.
// Authorization and Proxy-Authorization are always redacted, along with the
// names in redact.
func LoggingMiddleware(logger *slog.Logger, redact ...string) Middleware {
	hidden := map[string]bool{
		"Authorization":       true,
		"Proxy-Authorization": true,
	}

	for _, h := range trimmed(redact) {
		hidden[http.CanonicalHeaderKey(h)] = true
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)
			elapsed := time.Since(start)

			attrs := []any{
				slog.String("method", r.Method),
				slog.String("url", r.URL.String()),
				slog.Duration("duration", elapsed),
				slog.Any("request_headers", redactHeaders(r.Header, hidden)),
			}

			if err != nil {
				logger.Warn("http request failed", append(attrs, slog.String("error", err.Error()))...)
				return nil, err
			}

			attrs = append(attrs,
				slog.Int("status", resp.StatusCode),
				slog.Any("response_headers", redactHeaders(resp.Header, hidden)),
			)

			if resp.StatusCode >= 400 {
				logger.Warn("http request returned error status", attrs...)
			} else {
				logger.Debug("http request", attrs...)
			}

			return resp, nil
		})
	}
}

func redactHeaders(h http.Header, hidden map[string]bool) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if hidden[http.CanonicalHeaderKey(k)] {
			out[k] = redactedValue
			continue
		}

		out[k] = strings.Join(v, ", ")
	}

	return out
}

// Metrics holds the SDK's Prometheus collectors.
type Metrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	tokenFetch  *prometheus.CounterVec
	rateLimited prometheus.Counter
}

// NewMetrics registers the SDK collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reloadly_sdk_requests_total",
				Help: "Total HTTP requests sent by method, host and status code",
			},
			[]string{"method", "host", "code"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reloadly_sdk_request_duration_seconds",
				Help:    "HTTP request latency by host",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"host"},
		),
		tokenFetch: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reloadly_sdk_token_fetches_total",
				Help: "Access tokens fetched from the token endpoint by service target and outcome",
			},
			[]string{"target", "outcome"},
		),
		rateLimited: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "reloadly_sdk_rate_limited_total",
				Help: "Responses rejected with HTTP 429",
			},
		),
	}
}

// Middleware records request counts and latency.
func (m *Metrics) Middleware() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)

			m.duration.WithLabelValues(r.URL.Host).Observe(time.Since(start).Seconds())

			code := "error"
			if err == nil {
				code = strconv.Itoa(resp.StatusCode)
				if resp.StatusCode == http.StatusTooManyRequests {
					m.rateLimited.Inc()
				}
			}

			m.requests.WithLabelValues(r.Method, r.URL.Host, code).Inc()

			return resp, err
		})
	}
}

func (m *Metrics) recordTokenFetch(target ServiceTarget, err error) {
	if m == nil {
		return
	}

	outcome := "success"
	if err != nil {
		outcome = "error"
	}

	m.tokenFetch.WithLabelValues(target.String(), outcome).Inc()
}
