package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Reloadly/reloadly-sdk-go/core"
	cerrors "github.com/Reloadly/reloadly-sdk-go/internal/errors"
)

// reloadlyStub serves the token endpoint and a few airtime and giftcard
// resources from one host.
type reloadlyStub struct {
	*httptest.Server

	mu        sync.Mutex
	paths     []string
	audiences []string
	expireOne bool
}

func (s *reloadlyStub) record(path string) {
	s.mu.Lock()
	s.paths = append(s.paths, path)
	s.mu.Unlock()
}

func (s *reloadlyStub) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.paths...)
}

func (s *reloadlyStub) Audiences() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.audiences...)
}

func newReloadlyStub(t *testing.T) *reloadlyStub {
	t.Helper()

	s := &reloadlyStub{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)

		s.mu.Lock()
		s.audiences = append(s.audiences, body["audience"])
		n := len(s.audiences)
		s.mu.Unlock()

		s.record(r.URL.Path)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "token-" + string(rune('0'+n)),
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("GET /accounts/balance", func(w http.ResponseWriter, r *http.Request) {
		s.record(r.URL.Path)

		s.mu.Lock()
		expire := s.expireOne
		s.expireOne = false
		s.mu.Unlock()

		if expire {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Token expired","errorCode":"TOKEN_EXPIRED","path":"/accounts/balance"}`))

			return
		}

		w.Write([]byte(`{"balance":550.5,"currencyCode":"USD","currencyName":"US Dollar","updatedAt":"2024-01-01 10:00:00"}`))
	})
	mux.HandleFunc("GET /countries", func(w http.ResponseWriter, r *http.Request) {
		s.record(r.URL.Path)
		w.Write([]byte(`[{"isoName":"NG","name":"Nigeria","currencyCode":"NGN"}]`))
	})
	mux.HandleFunc("GET /topups/reports/transactions", func(w http.ResponseWriter, r *http.Request) {
		s.record(r.URL.Path)
		w.Write([]byte(`{"content":[{"transactionId":1,"status":"SUCCESSFUL"}],"totalPages":1,"last":true}`))
	})
	mux.HandleFunc("GET /reports/transactions", func(w http.ResponseWriter, r *http.Request) {
		s.record(r.URL.Path)
		w.Write([]byte(`{"content":[{"transactionId":2,"status":"PENDING"}],"totalPages":1,"last":true}`))
	})

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)

	return s
}

func setEnv(t *testing.T, stub *reloadlyStub) {
	t.Helper()

	for _, key := range []string{"RELOADLY_ACCESS_TOKEN", "RELOADLY_ENVIRONMENT", "RELOADLY_PROXY_URL", "RELOADLY_LOG_HTTP", "RELOADLY_RATE_LIMIT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	t.Setenv("RELOADLY_CLIENT_ID", "client-id")
	t.Setenv("RELOADLY_CLIENT_SECRET", "client-secret")
	t.Setenv("RELOADLY_AUTH_URL", stub.URL)
	t.Setenv("RELOADLY_AIRTIME_URL", stub.URL)
	t.Setenv("RELOADLY_GIFTCARD_URL", stub.URL)
	t.Setenv("RELOADLY_STATE_PATH", filepath.Join(t.TempDir(), "state.db"))
	t.Setenv("ENVIRONMENT", "production")
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	err := execute(context.Background(), &out, args)

	return out.String(), err
}

func TestBalance(t *testing.T) {
	stub := newReloadlyStub(t)
	setEnv(t, stub)

	out, err := runCLI(t, "balance")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 550.5, got["balance"])
	assert.Equal(t, "USD", got["currencyCode"])

	assert.Equal(t, []string{"/oauth/token", "/accounts/balance"}, stub.Paths())
	assert.Equal(t, []string{"https://topups-sandbox.reloadly.com"}, stub.Audiences())
}

func TestCountries_YAML(t *testing.T) {
	stub := newReloadlyStub(t)
	setEnv(t, stub)

	out, err := runCLI(t, "countries", "-o", "yaml")
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "NG", got[0]["isoName"])
}

func TestExpiredTokenIsRefreshedOnce(t *testing.T) {
	stub := newReloadlyStub(t)
	setEnv(t, stub)
	stub.expireOne = true

	_, err := runCLI(t, "balance")
	require.NoError(t, err)

	assert.Equal(t, []string{"/oauth/token", "/accounts/balance", "/oauth/token", "/accounts/balance"}, stub.Paths())
}

func TestTopupValidationDoesNoIO(t *testing.T) {
	stub := newReloadlyStub(t)
	setEnv(t, stub)

	_, err := runCLI(t, "topup", "send", "--operator", "341", "--amount", "10", "--country", "NG")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "'Recipient phone number' cannot be null or empty!")
	assert.Empty(t, stub.Paths())
}

func TestReports_BothServices(t *testing.T) {
	stub := newReloadlyStub(t)
	setEnv(t, stub)

	out, err := runCLI(t, "reports", "--from", "2024-01-01", "--to", "2024-01-31")
	require.NoError(t, err)

	var got map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Contains(t, got, "airtime")
	assert.Contains(t, got, "giftcard")

	assert.ElementsMatch(t, []string{"https://topups-sandbox.reloadly.com", "https://giftcards-sandbox.reloadly.com"}, stub.Audiences())
}

func TestReports_HalfOpenRange(t *testing.T) {
	stub := newReloadlyStub(t)
	setEnv(t, stub)

	_, err := runCLI(t, "reports", "--service", "airtime", "--from", "2024-01-01")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestToken_ListAfterUse(t *testing.T) {
	stub := newReloadlyStub(t)
	setEnv(t, stub)

	out, err := runCLI(t, "token", "--service", "airtime")
	require.NoError(t, err)

	var fetched []tokenInfo
	require.NoError(t, json.Unmarshal([]byte(out), &fetched))
	require.Len(t, fetched, 1)
	assert.Equal(t, "AIRTIME_SANDBOX", fetched[0].Target)
	assert.Equal(t, "token-1", fetched[0].Token)

	out, err = runCLI(t, "token", "--list")
	require.NoError(t, err)

	var listed []tokenInfo
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "token-1", listed[0].Token)
	assert.NotNil(t, listed[0].SavedAt)

	out, err = runCLI(t, "token", "--clear")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestToken_NotReusedAcrossAccounts(t *testing.T) {
	stub := newReloadlyStub(t)
	setEnv(t, stub)

	_, err := runCLI(t, "token", "--service", "airtime")
	require.NoError(t, err)

	t.Setenv("RELOADLY_CLIENT_ID", "other-client-id")

	out, err := runCLI(t, "token", "--service", "airtime")
	require.NoError(t, err)

	var fetched []tokenInfo
	require.NoError(t, json.Unmarshal([]byte(out), &fetched))
	require.Len(t, fetched, 1)
	assert.Equal(t, "token-2", fetched[0].Token)
	assert.Len(t, stub.Audiences(), 2)

	out, err = runCLI(t, "token", "--list")
	require.NoError(t, err)

	var listed []tokenInfo
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	assert.Len(t, listed, 2)
}

func TestUnknownFlags(t *testing.T) {
	stub := newReloadlyStub(t)
	setEnv(t, stub)

	_, err := runCLI(t, "balance", "-o", "xml")
	assert.ErrorIs(t, err, cerrors.ErrUnknownOutput)

	_, err = runCLI(t, "token", "--service", "voice")
	assert.ErrorIs(t, err, cerrors.ErrUnknownService)
	assert.Empty(t, stub.Paths())
}

func TestMissingCredentials(t *testing.T) {
	stub := newReloadlyStub(t)
	setEnv(t, stub)
	os.Unsetenv("RELOADLY_CLIENT_SECRET")

	_, err := runCLI(t, "balance")
	assert.ErrorIs(t, err, cerrors.ErrMissingCredentials)
}
