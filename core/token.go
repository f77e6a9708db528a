package core

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiryMargin is how long before its exp claim a token stops being used.
const ExpiryMargin = 5 * time.Minute

// AccessToken is a bearer token together with its expiry.
type AccessToken struct {
	Raw       string
	ExpiresAt time.Time
}

// Usable reports whether the token can still be sent at now, i.e. whether
// now is strictly before ExpiresAt minus ExpiryMargin.
func (t AccessToken) Usable(now time.Time) bool {
	if t.Raw == "" || t.ExpiresAt.IsZero() {
		return false
	}

	return now.Before(t.ExpiresAt.Add(-ExpiryMargin))
}

// TokenHolder is the token endpoint's response.
type TokenHolder struct {
	AccessToken string `json:"access_token" yaml:"access_token"`
	TokenType   string `json:"token_type,omitempty" yaml:"token_type,omitempty"`
	Scope       string `json:"scope,omitempty" yaml:"scope,omitempty"`
	// ExpiresIn is the token lifetime in seconds.
	ExpiresIn int64 `json:"expires_in" yaml:"expires_in"`
}

var tokenParser = jwt.NewParser()

// ValidateAccessToken decodes raw as a JWT, without verifying its signature,
// and reports whether it is usable at now. Tokens that cannot be decoded or
// carry no exp claim are rejected.
func ValidateAccessToken(raw string, now time.Time) (AccessToken, bool) {
	exp, ok := tokenExpiry(raw)
	if !ok {
		return AccessToken{}, false
	}

	tok := AccessToken{Raw: raw, ExpiresAt: exp}
	if !tok.Usable(now) {
		return AccessToken{}, false
	}

	return tok, true
}

func tokenExpiry(raw string) (time.Time, bool) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, false
	}

	var claims jwt.RegisteredClaims
	if _, _, err := tokenParser.ParseUnverified(raw, &claims); err != nil {
		return time.Time{}, false
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}

	return claims.ExpiresAt.Time, true
}

// tokenFromHolder derives the cached form of a freshly issued token. The
// JWT exp claim wins; expires_in is the fallback for opaque tokens.
func tokenFromHolder(h *TokenHolder, now time.Time) AccessToken {
	if exp, ok := tokenExpiry(h.AccessToken); ok {
		return AccessToken{Raw: h.AccessToken, ExpiresAt: exp}
	}

	if h.ExpiresIn > 0 {
		return AccessToken{Raw: h.AccessToken, ExpiresAt: now.Add(time.Duration(h.ExpiresIn) * time.Second)}
	}

	return AccessToken{Raw: h.AccessToken}
}
