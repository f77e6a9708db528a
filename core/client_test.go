package core

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestNewServiceClient_ResolvesTarget(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := NewMockTokenFetcher(ctrl)

	c, err := NewServiceClient(Giftcard, clientCreds, fetcher, NewOptions(WithEnvironment(Live)))
	require.NoError(t, err)

	assert.Equal(t, GiftcardLive, c.Session().Target())
	assert.Equal(t, GiftcardURL, c.Resource().BaseURL())
	assert.Equal(t, AirtimeSandbox, ResolveTarget(Airtime, Sandbox))
	assert.Equal(t, GiftcardSandbox, c.ResolveServiceTarget(Sandbox))
}

func TestNewServiceClient_BaseURLOverride(t *testing.T) {
	ctrl := gomock.NewController(t)

	c, err := NewServiceClient(Airtime, clientCreds, NewMockTokenFetcher(ctrl), NewOptions(WithBaseURL("http://127.0.0.1:8080")))
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080", c.Resource().BaseURL())
}

func TestNewServiceClient_InvalidCredentials(t *testing.T) {
	_, err := NewServiceClient(Airtime, Credentials{}, nil, NewOptions())
	assert.ErrorIs(t, err, ErrCredentials)
}

func TestServiceClient_GetSendsBearerAndMediaType(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := NewMockTokenFetcher(ctrl)

	raw := signedToken(t, testNow.Add(time.Hour))
	fetcher.EXPECT().
		FetchToken(gomock.Any(), "client-id", "client-secret", AirtimeSandbox).
		Return(&TokenHolder{AccessToken: raw}, nil)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/balance", r.URL.Path)
		assert.Equal(t, "Bearer "+raw, r.Header.Get("Authorization"))
		assert.Equal(t, MediaTypeAirtimeV1, r.Header.Get("Accept"))
		w.Write([]byte(`{"balance":550.25,"currencyCode":"USD"}`))
	}))
	defer srv.Close()

	c, err := NewServiceClient(Airtime, clientCreds, fetcher, NewOptions(
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
		WithClock(func() time.Time { return testNow }),
	))
	require.NoError(t, err)

	for range 2 {
		req, err := Get[balance](context.Background(), c.Resource(), c.Resource().Endpoint(nil, "accounts", "balance"))
		require.NoError(t, err)

		got, err := req.Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 550.25, got.Balance)
	}
}

func TestServiceClient_TokenFailureStopsBeforeRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := NewMockTokenFetcher(ctrl)
	fetcher.EXPECT().FetchToken(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, &APIError{Kind: KindOAuth, StatusCode: http.StatusUnauthorized, Path: TokenPath})

	c, err := NewServiceClient(Airtime, clientCreds, fetcher, NewOptions())
	require.NoError(t, err)

	_, err = Get[balance](context.Background(), c.Resource(), c.Resource().Endpoint(nil, "accounts", "balance"))
	require.Error(t, err)
	assert.True(t, IsOAuthError(err))
}

func TestExecuteRefreshing_RetriesOnceOnExpiredToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := NewMockServiceAPI(ctrl)

	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			assert.Equal(t, "Bearer stale", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Token expired","errorCode":"TOKEN_EXPIRED"}`))
			return
		}

		assert.Equal(t, "Bearer fresh", r.Header.Get("Authorization"))
		w.Write([]byte(`{"balance":1}`))
	}))
	defer srv.Close()

	req := NewRequest[balance](srv.Client(), http.MethodGet, srv.URL+"/accounts/balance")
	req.SetAuthorization("stale")

	api.EXPECT().RefreshAccessToken(gomock.Any(), req).
		DoAndReturn(func(_ context.Context, r Authorizable) error {
			r.SetAuthorization("fresh")
			return nil
		})

	got, err := ExecuteRefreshing(context.Background(), api, req)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Balance)
	assert.Equal(t, int32(2), calls.Load())
}

func TestExecuteRefreshing_OtherErrorsPassThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := NewMockServiceAPI(ctrl)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Invalid operator","errorCode":"INVALID_OPERATOR"}`))
	}))
	defer srv.Close()

	_, err := ExecuteRefreshing(context.Background(), api, NewRequest[balance](srv.Client(), http.MethodGet, srv.URL))
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_OPERATOR", apiErr.ErrorCode)
}

func TestExecuteRefreshing_RefreshFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := NewMockServiceAPI(ctrl)
	api.EXPECT().RefreshAccessToken(gomock.Any(), gomock.Any()).Return(ErrTokenExpired)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errorCode":"token_expired"}`))
	}))
	defer srv.Close()

	_, err := ExecuteRefreshing(context.Background(), api, NewRequest[balance](srv.Client(), http.MethodGet, srv.URL))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTokenExpired))
}
