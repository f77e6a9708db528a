package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// ServiceClient is the plumbing shared by the airtime and giftcard clients:
// a session owning the access token and a Resource the operations build
// requests from.
type ServiceClient struct {
	product  Product
	session  *Session
	resource Resource
	logger   *slog.Logger
}

// NewServiceClient resolves the deployment of product from o, validates
// creds and wires a session and resource for it. fetcher may be nil when
// creds carry only an access token.
func NewServiceClient(product Product, creds Credentials, fetcher TokenFetcher, o Options) (*ServiceClient, error) {
	target := ResolveTarget(product, o.Environment)

	session, err := NewSession(creds, target, fetcher, o.SessionOptions()...)
	if err != nil {
		return nil, err
	}

	base := o.BaseURL
	if base == "" {
		base = target.BaseURL()
	}

	client, err := o.Doer(target.MediaType())
	if err != nil {
		return nil, fmt.Errorf("building HTTP client: %w", err)
	}

	res, err := NewResource(client, base, target.MediaType(), session)
	if err != nil {
		return nil, err
	}

	o.Logger.Debug("service client ready",
		slog.String("target", target.String()),
		slog.String("base_url", res.BaseURL()))

	return &ServiceClient{product: product, session: session, resource: res, logger: o.Logger}, nil
}

// Resource returns the state operations build their requests from.
func (c *ServiceClient) Resource() Resource { return c.resource }

// Session returns the session owning the access token.
func (c *ServiceClient) Session() *Session { return c.session }

// ResolveServiceTarget implements ServiceAPI.
func (c *ServiceClient) ResolveServiceTarget(env Environment) ServiceTarget {
	return ResolveTarget(c.product, env)
}

// RetrieveAccessToken implements ServiceAPI.
func (c *ServiceClient) RetrieveAccessToken(ctx context.Context) (string, error) {
	return c.session.RetrieveAccessToken(ctx)
}

// RefreshAccessToken implements ServiceAPI.
func (c *ServiceClient) RefreshAccessToken(ctx context.Context, req Authorizable) error {
	return c.session.RefreshAccessToken(ctx, req)
}

var _ ServiceAPI = (*ServiceClient)(nil)

// ExecuteRefreshing executes req and, if the server rejects its token as
// expired, refreshes the token on req through api and executes it once more.
func ExecuteRefreshing[T any](ctx context.Context, api ServiceAPI, req *Request[T]) (T, error) {
	out, err := req.Execute(ctx)
	if err == nil || !tokenRejected(err) {
		return out, err
	}

	if rerr := api.RefreshAccessToken(ctx, req); rerr != nil {
		var zero T
		return zero, fmt.Errorf("refreshing access token: %w", rerr)
	}

	return req.Execute(ctx)
}

// tokenRejected reports whether err carries the expired token error code.
// Resource servers report it with a non-OAuth path, so the kind is ignored.
func tokenRejected(err error) bool {
	apiErr, ok := AsAPIError(err)
	if !ok {
		return false
	}

	return strings.EqualFold(strings.TrimSpace(apiErr.ErrorCode), ErrorCodeTokenExpired)
}
