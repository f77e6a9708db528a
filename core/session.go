package core

//go:generate mockgen -source=session.go -destination=mock_session_test.go -package=core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// TokenFetcher obtains a new access token for a deployment using the client
// credentials grant.
type TokenFetcher interface {
	FetchToken(ctx context.Context, clientID, clientSecret string, target ServiceTarget) (*TokenHolder, error)
}

// sharedFetchTimeout bounds a token fetch that outlives the caller who
// started it.
const sharedFetchTimeout = 2 * time.Minute

// StoreKey identifies a persisted token: the deployment it was issued for
// and the account that requested it. Account is a digest of the client id,
// so the id itself is never written to a store.
type StoreKey struct {
	Target  ServiceTarget
	Account string
}

// NewStoreKey returns the key tokens fetched with clientID for target are
// stored under.
func NewStoreKey(target ServiceTarget, clientID string) StoreKey {
	sum := sha256.Sum256([]byte(strings.TrimSpace(clientID)))
	return StoreKey{Target: target, Account: hex.EncodeToString(sum[:8])}
}

func (k StoreKey) String() string {
	return k.Target.String() + "/" + k.Account
}

// TokenStore persists access tokens between processes. Load returns "" with
// a nil error when nothing is stored under key.
type TokenStore interface {
	Load(ctx context.Context, key StoreKey) (string, error)
	Save(ctx context.Context, key StoreKey, token string) error
}

// Credentials authenticate a service client. Either AccessToken, or both
// ClientID and ClientSecret, must be set.
type Credentials struct {
	ClientID     string
	ClientSecret string
	AccessToken  string
}

// Validate checks that the credentials can authenticate a client.
func (c Credentials) Validate() error {
	token := strings.TrimSpace(c.AccessToken)
	id := strings.TrimSpace(c.ClientID)
	secret := strings.TrimSpace(c.ClientSecret)

	switch {
	case token == "" && id == "" && secret == "":
		return ErrCredentials
	case token == "":
		if err := NotBlank(c.ClientID, "Client id"); err != nil {
			return err
		}

		return NotBlank(c.ClientSecret, "Client secret")
	}

	return nil
}

// HasClientCredentials reports whether both id and secret are set.
func (c Credentials) HasClientCredentials() bool {
	return strings.TrimSpace(c.ClientID) != "" && strings.TrimSpace(c.ClientSecret) != ""
}

// ServiceAPI is implemented by every service client.
type ServiceAPI interface {
	// ResolveServiceTarget maps an environment to this API's deployment.
	ResolveServiceTarget(env Environment) ServiceTarget
	// RetrieveAccessToken returns a usable bearer token.
	RetrieveAccessToken(ctx context.Context) (string, error)
	// RefreshAccessToken discards the cached token, fetches a new one and
	// sets it on req.
	RefreshAccessToken(ctx context.Context, req Authorizable) error
}

// TokenSource yields bearer tokens for outgoing requests.
type TokenSource interface {
	RetrieveAccessToken(ctx context.Context) (string, error)
}

// Session owns the access token of one service client. It holds at most one
// token and hands it out until it enters the expiry margin, then fetches a
// new one. A Session is safe for concurrent use; concurrent fetches collapse
// into a single call to the token endpoint. Stored tokens are only shared
// with sessions of the same client id.
type Session struct {
	creds    Credentials
	target   ServiceTarget
	fetcher  TokenFetcher
	store    TokenStore
	storeKey StoreKey
	now     func() time.Time
	logger  *slog.Logger
	metrics *Metrics

	group singleflight.Group

	mu    sync.Mutex
	token AccessToken
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithStore persists fetched tokens and reuses stored ones.
func WithStore(store TokenStore) SessionOption {
	return func(s *Session) { s.store = store }
}

// WithNow replaces the clock used for expiry checks.
func WithNow(now func() time.Time) SessionOption {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSessionLogger sets the session logger.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSessionMetrics counts token fetches.
func WithSessionMetrics(m *Metrics) SessionOption {
	return func(s *Session) { s.metrics = m }
}

// NewSession validates creds and returns a session for target. A supplied
// access token is kept only if it is usable now; otherwise it is discarded
// and creds must carry a client id and secret. fetcher may be nil only for
// sessions built from an access token alone.
func NewSession(creds Credentials, target ServiceTarget, fetcher TokenFetcher, opts ...SessionOption) (*Session, error) {
	s := &Session{
		target:  target,
		fetcher: fetcher,
		now:     time.Now,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	if !target.Valid() {
		return nil, invalid("Service", "'%s' cannot be null!")
	}

	if strings.TrimSpace(creds.AccessToken) != "" {
		if tok, ok := ValidateAccessToken(creds.AccessToken, s.now()); ok {
			s.token = tok
		} else {
			s.logger.Debug("discarding unusable access token", slog.String("target", target.String()))
			creds.AccessToken = ""
		}
	}

	if err := creds.Validate(); err != nil {
		return nil, err
	}

	if creds.HasClientCredentials() && fetcher == nil {
		return nil, invalid("Token fetcher", "'%s' cannot be null!")
	}

	s.creds = creds

	// Token-only sessions have no account to key a stored token by.
	if creds.HasClientCredentials() {
		s.storeKey = NewStoreKey(target, creds.ClientID)
	} else {
		s.store = nil
	}

	return s, nil
}

// Target returns the deployment tokens are issued for.
func (s *Session) Target() ServiceTarget { return s.target }

// Cached reports whether the session currently holds a usable token.
func (s *Session) Cached() bool {
	_, ok := s.cached()
	return ok
}

func (s *Session) cached() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token.Usable(s.now()) {
		return s.token.Raw, true
	}

	return "", false
}

func (s *Session) set(tok AccessToken) {
	s.mu.Lock()
	s.token = tok
	s.mu.Unlock()
}

// Invalidate drops the cached token.
func (s *Session) Invalidate() {
	s.set(AccessToken{})
}

// RetrieveAccessToken returns the cached token while it is usable, and
// otherwise a stored or freshly fetched one. A session without client
// credentials returns ErrTokenExpired once its token is no longer usable.
func (s *Session) RetrieveAccessToken(ctx context.Context) (string, error) {
	if tok, ok := s.cached(); ok {
		return tok, nil
	}

	return s.shared(ctx, "retrieve", func(ctx context.Context) (string, error) {
		return s.acquire(ctx, true)
	})
}

// RefreshAccessToken discards the cached token, fetches a new one and sets
// it as the bearer token of req.
func (s *Session) RefreshAccessToken(ctx context.Context, req Authorizable) error {
	tok, err := s.shared(ctx, "refresh", func(ctx context.Context) (string, error) {
		s.Invalidate()
		return s.acquire(ctx, false)
	})
	if err != nil {
		return err
	}

	if req != nil {
		req.SetAuthorization(tok)
	}

	return nil
}

// shared runs fn once for all concurrent callers of the same kind. fn is
// detached from the cancellation of whichever caller started it; each
// caller stops waiting when its own ctx is done.
func (s *Session) shared(ctx context.Context, key string, fn func(context.Context) (string, error)) (string, error) {
	ch := s.group.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()

		return fn(fctx)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}

		return res.Val.(string), nil
	}
}

func (s *Session) acquire(ctx context.Context, reuse bool) (string, error) {
	if reuse {
		if tok, ok := s.cached(); ok {
			return tok, nil
		}

		if tok, ok := s.loadStored(ctx); ok {
			return tok, nil
		}
	}

	if !s.creds.HasClientCredentials() {
		return "", ErrTokenExpired
	}

	holder, err := s.fetcher.FetchToken(ctx, s.creds.ClientID, s.creds.ClientSecret, s.target)
	if err == nil && (holder == nil || strings.TrimSpace(holder.AccessToken) == "") {
		err = &APIError{Kind: KindOAuth, Message: "token endpoint returned no access token", Path: TokenPath}
	}

	s.metrics.recordTokenFetch(s.target, err)

	if err != nil {
		return "", fmt.Errorf("fetching access token for %s: %w", s.target, err)
	}

	tok := tokenFromHolder(holder, s.now())
	if tok.Usable(s.now()) {
		s.set(tok)
	} else {
		s.logger.Warn("fetched access token expires within the safety margin, not caching",
			slog.String("target", s.target.String()))
	}

	s.logger.Debug("fetched access token",
		slog.String("target", s.target.String()),
		slog.Time("expires_at", tok.ExpiresAt))

	if s.store != nil {
		if err := s.store.Save(ctx, s.storeKey, tok.Raw); err != nil {
			s.logger.Warn("saving access token", slog.String("target", s.target.String()), slog.String("error", err.Error()))
		}
	}

	return tok.Raw, nil
}

func (s *Session) loadStored(ctx context.Context) (string, bool) {
	if s.store == nil {
		return "", false
	}

	raw, err := s.store.Load(ctx, s.storeKey)
	if err != nil {
		s.logger.Warn("loading stored access token", slog.String("target", s.target.String()), slog.String("error", err.Error()))
		return "", false
	}

	tok, ok := ValidateAccessToken(raw, s.now())
	if !ok {
		return "", false
	}

	s.set(tok)
	s.logger.Debug("using stored access token", slog.String("target", s.target.String()))

	return tok.Raw, true
}
