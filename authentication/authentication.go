// Package authentication obtains Reloadly access tokens with the OAuth 2.0
// client credentials grant.
package authentication

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"

	"github.com/Reloadly/reloadly-sdk-go/core"
)

// GrantClientCredentials is the only grant type the SDK requests.
const GrantClientCredentials = "client_credentials"

// Body parameters of the token request.
const (
	ParamClientID     = "client_id"
	ParamClientSecret = "client_secret"
	ParamGrantType    = "grant_type"
	ParamAudience     = "audience"
)

// TokenHolder is the token endpoint's response.
type TokenHolder = core.TokenHolder

// API talks to the Reloadly authentication server.
type API struct {
	client  core.Doer
	baseURL *url.URL
	logger  *slog.Logger
}

// New returns an authentication client. The token endpoint root defaults to
// https://auth.reloadly.com; WithAuthURL or WithBaseURL override it.
func New(opts ...core.Option) (*API, error) {
	o := core.NewOptions(opts...)

	base := o.AuthURL
	if o.BaseURL != "" {
		base = o.BaseURL
	}

	if err := core.ValidURL(base, "Authentication URL"); err != nil {
		return nil, err
	}

	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing authentication URL: %w", err)
	}

	client, err := o.Doer(core.MediaTypeAuthenticationV1)
	if err != nil {
		return nil, fmt.Errorf("building HTTP client: %w", err)
	}

	return &API{client: client, baseURL: u, logger: o.Logger}, nil
}

// FetcherFor returns the token source a service client built from creds and
// opts should use: the fetcher supplied with WithTokenFetcher, or else an
// authentication client rooted at the auth URL. It returns nil when creds
// carry no client id and secret.
func FetcherFor(creds core.Credentials, opts ...core.Option) (core.TokenFetcher, error) {
	o := core.NewOptions(opts...)

	if o.TokenFetcher != nil {
		return o.TokenFetcher, nil
	}

	if !creds.HasClientCredentials() {
		return nil, nil
	}

	api, err := New(append(slices.Clone(opts), core.WithBaseURL(o.AuthURL))...)
	if err != nil {
		return nil, fmt.Errorf("creating authentication client: %w", err)
	}

	return api, nil
}

// ClientCredentials returns the client credentials grant operations.
func (a *API) ClientCredentials() ClientCredentials {
	return ClientCredentials{api: a}
}

// FetchToken implements core.TokenFetcher.
func (a *API) FetchToken(ctx context.Context, clientID, clientSecret string, target core.ServiceTarget) (*TokenHolder, error) {
	req, err := a.ClientCredentials().GetAccessToken(clientID, clientSecret, target)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("requesting access token", slog.String("target", target.String()))

	return req.Execute(ctx)
}

var _ core.TokenFetcher = (*API)(nil)

// ClientCredentials builds token requests using the client credentials
// grant.
type ClientCredentials struct {
	api *API
}

// GetAccessToken returns an unexecuted request for a token valid for
// target's audience. Arguments are validated before anything is sent.
func (c ClientCredentials) GetAccessToken(clientID, clientSecret string, target core.ServiceTarget) (*TokenRequest, error) {
	if err := core.NotBlank(clientID, "Client id"); err != nil {
		return nil, err
	}

	if err := core.NotBlank(clientSecret, "Client secret"); err != nil {
		return nil, err
	}

	if !target.Valid() {
		return nil, &core.ValidationError{Field: "Service", Message: "'Service' cannot be null!"}
	}

	endpoint := c.api.baseURL.JoinPath("oauth", "token").String()

	req := core.NewRequest[TokenHolder](c.api.client, http.MethodPost, endpoint).
		AddParameter(ParamClientID, clientID).
		AddParameter(ParamClientSecret, clientSecret).
		AddParameter(ParamGrantType, GrantClientCredentials).
		AddParameter(ParamAudience, core.NormalizeAudience(target.Audience())).
		AddHeader("Accept", core.MediaTypeJSON).
		AddHeader("Content-Type", core.MediaTypeJSON)

	return &TokenRequest{Request: req}, nil
}

// TokenRequest is an unexecuted token request.
type TokenRequest struct {
	*core.Request[TokenHolder]
}

// SetAudience overrides the audience the token is requested for.
func (r *TokenRequest) SetAudience(audience string) *TokenRequest {
	r.AddParameter(ParamAudience, audience)
	return r
}

// Execute sends the request. Failures reported by the token endpoint are
// OAuth errors, see core.IsOAuthError.
func (r *TokenRequest) Execute(ctx context.Context) (*TokenHolder, error) {
	holder, err := r.Request.Execute(ctx)
	if err != nil {
		return nil, err
	}

	return &holder, nil
}
