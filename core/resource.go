package core

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Resource is the shared state of the operations of one service client: the
// HTTP client, the API root, the versioned media type and the token source.
type Resource struct {
	client    Doer
	baseURL   *url.URL
	mediaType string
	tokens    TokenSource
}

// NewResource parses baseURL and returns a Resource.
func NewResource(client Doer, baseURL, mediaType string, tokens TokenSource) (Resource, error) {
	if err := ValidURL(baseURL, "Base URL"); err != nil {
		return Resource{}, err
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return Resource{}, fmt.Errorf("parsing base URL: %w", err)
	}

	return Resource{client: client, baseURL: u, mediaType: mediaType, tokens: tokens}, nil
}

// BaseURL returns the API root.
func (r Resource) BaseURL() string { return r.baseURL.String() }

// Endpoint joins segments onto the API root and applies the filter's
// parameters as the query string.
func (r Resource) Endpoint(f Filter, segments ...string) string {
	u := r.baseURL.JoinPath(segments...)
	QueryOf(f).Apply(u)

	return u.String()
}

func newAuthorized[T any](ctx context.Context, r Resource, method, endpoint string) (*Request[T], error) {
	token, err := r.tokens.RetrieveAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("retrieving access token: %w", err)
	}

	req := NewRequest[T](r.client, method, endpoint).
		AddHeader("Accept", r.mediaType)
	req.SetAuthorization(token)

	return req, nil
}

// Get returns an authorized GET request for endpoint.
func Get[T any](ctx context.Context, r Resource, endpoint string) (*Request[T], error) {
	return newAuthorized[T](ctx, r, http.MethodGet, endpoint)
}

// Post returns an authorized POST request for endpoint sending body as JSON.
func Post[T any](ctx context.Context, r Resource, endpoint string, body any) (*Request[T], error) {
	req, err := newAuthorized[T](ctx, r, http.MethodPost, endpoint)
	if err != nil {
		return nil, err
	}

	return req.AddHeader("Content-Type", MediaTypeJSON).SetBody(body), nil
}
