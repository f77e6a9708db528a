package core

//go:generate mockgen -source=request.go -destination=mock_request_test.go -package=core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// maxResponseBytes caps how much of a response body is read. Operator
// listings with suggested amounts run to several megabytes.
var maxResponseBytes int64 = 32 << 20

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Authorizable is a request whose bearer token can be replaced.
type Authorizable interface {
	SetAuthorization(token string)
}

// NoContent is the result type of calls whose successful response carries
// no body.
type NoContent struct{}

// Request is an unexecuted HTTP call whose successful JSON response decodes
// into T. Headers and parameters can be adjusted until Execute is called.
// A Request is not safe for concurrent modification.
type Request[T any] struct {
	client Doer
	method string
	url    string

	headerKeys []string
	headers    map[string]string

	paramKeys []string
	params    map[string]any

	body any
}

// NewRequest returns a request for method and rawURL sent through client.
func NewRequest[T any](client Doer, method, rawURL string) *Request[T] {
	return &Request[T]{
		client:  client,
		method:  method,
		url:     rawURL,
		headers: make(map[string]string),
		params:  make(map[string]any),
	}
}

// Method returns the HTTP method.
func (r *Request[T]) Method() string { return r.method }

// URL returns the target URL.
func (r *Request[T]) URL() string { return r.url }

// Header returns the value set for name, or "".
func (r *Request[T]) Header(name string) string {
	return r.headers[http.CanonicalHeaderKey(name)]
}

// Parameters returns a copy of the body parameters.
func (r *Request[T]) Parameters() map[string]any {
	out := make(map[string]any, len(r.params))
	for k, v := range r.params {
		out[k] = v
	}

	return out
}

// Body returns the explicit body, or nil.
func (r *Request[T]) Body() any { return r.body }

// AddHeader sets a header. Setting the same name again replaces the value.
func (r *Request[T]) AddHeader(name, value string) *Request[T] {
	key := http.CanonicalHeaderKey(name)
	if _, ok := r.headers[key]; !ok {
		r.headerKeys = append(r.headerKeys, key)
	}

	r.headers[key] = value

	return r
}

// AddParameter adds a field to the JSON body. Parameters are ignored when an
// explicit body is set.
func (r *Request[T]) AddParameter(name string, value any) *Request[T] {
	if _, ok := r.params[name]; !ok {
		r.paramKeys = append(r.paramKeys, name)
	}

	r.params[name] = value

	return r
}

// SetBody sets the value sent as the JSON body. It takes precedence over
// parameters. A nil body clears a previously set one.
func (r *Request[T]) SetBody(body any) *Request[T] {
	r.body = body
	return r
}

// SetAuthorization implements Authorizable.
func (r *Request[T]) SetAuthorization(token string) {
	r.AddHeader("Authorization", "Bearer "+token)
}

// Execute performs the call. Each invocation sends a new request.
//
// A failure to reach the server is a *RequestError. A non-2xx response, or a
// 2xx response whose body cannot be decoded into T, is an *APIError.
func (r *Request[T]) Execute(ctx context.Context) (T, error) {
	var zero T

	req, err := r.build(ctx)
	if err != nil {
		return zero, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return zero, &RequestError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return zero, &RequestError{Err: fmt.Errorf("reading response body: %w", err)}
	}

	if int64(len(body)) > maxResponseBytes {
		return zero, &RequestError{Err: fmt.Errorf("%w: more than %d bytes from %s", ErrResponseTooLarge, maxResponseBytes, req.URL.Path)}
	}

	path := req.URL.Path
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return zero, responseError(path, resp.StatusCode, resp.Header, body)
	}

	return decodeBody[T](path, resp.StatusCode, body)
}

func decodeBody[T any](path string, status int, body []byte) (T, error) {
	var out T

	if len(bytes.TrimSpace(body)) == 0 {
		if _, ok := any(out).(NoContent); ok {
			return out, nil
		}
	}

	if err := json.Unmarshal(body, &out); err != nil {
		var zero T
		return zero, &APIError{
			Kind:       KindAPI,
			Message:    "Failed to parse json body",
			StatusCode: status,
			Path:       path,
			Err:        err,
		}
	}

	return out, nil
}

func (r *Request[T]) build(ctx context.Context) (*http.Request, error) {
	if r.client == nil {
		return nil, &RequestError{Err: fmt.Errorf("no HTTP client configured")}
	}

	if _, err := url.Parse(r.url); err != nil {
		return nil, &RequestError{Err: fmt.Errorf("parsing request URL: %w", err)}
	}

	payload, err := r.encodeBody()
	if err != nil {
		return nil, &RequestError{Err: fmt.Errorf("encoding request body: %w", err)}
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return nil, &RequestError{Err: fmt.Errorf("creating request: %w", err)}
	}

	for _, k := range r.headerKeys {
		req.Header.Set(k, r.headers[k])
	}

	if payload != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", MediaTypeJSON)
	}

	return req, nil
}

// encodeBody applies the body rule: an explicit body wins over parameters,
// and with neither there is no body.
func (r *Request[T]) encodeBody() ([]byte, error) {
	if r.body != nil {
		return json.Marshal(r.body)
	}

	if len(r.paramKeys) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, k := range r.paramKeys {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}

		val, err := json.Marshal(r.params[k])
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", k, err)
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// HeaderNames returns the header names in the order they were first set.
func (r *Request[T]) HeaderNames() []string {
	return slices.Clone(r.headerKeys)
}

// String renders the request line, for logs and debugging.
func (r *Request[T]) String() string {
	return strings.TrimSpace(r.method + " " + r.url)
}
