package core

import (
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// signedToken mints an HS256 JWT expiring at exp. The signature is never
// verified by the SDK, so any key will do.
func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "client-123",
		Audience:  jwt.ClaimStrings{AirtimeSandboxURL},
		ExpiresAt: jwt.NewNumericDate(exp),
	})

	raw, err := tok.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	return raw
}

// fakeClock is a settable clock shared between a test and a session.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
