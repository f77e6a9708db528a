package e2e_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Reloadly/reloadly-sdk-go/airtime"
	"github.com/Reloadly/reloadly-sdk-go/core"
	"github.com/Reloadly/reloadly-sdk-go/giftcard"
)

const (
	testClientID  = "e2e-client"
	otherClientID = "e2e-other-client"
	testSecret    = "e2e-secret-value"

	airtimeAudience  = "https://topups-sandbox.reloadly.com"
	giftcardAudience = "https://giftcards-sandbox.reloadly.com"
)

var testCreds = core.Credentials{ClientID: testClientID, ClientSecret: testSecret}

// harness runs a fake Reloadly deployment: a token endpoint issuing signed
// JWTs and airtime and gift card APIs that verify them.
type harness struct {
	Auth     *httptest.Server
	Airtime  *httptest.Server
	Giftcard *httptest.Server

	key []byte

	mu          sync.Mutex
	lifetime    time.Duration
	issued      map[string]int
	expireNext  bool
	rateLimited bool
	orders      []giftcard.OrderRequest
	topups      []airtime.TopupRequest
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		key:      []byte("e2e-signing-key"),
		lifetime: time.Hour,
		issued:   make(map[string]int),
	}

	h.Auth = httptest.NewServer(http.HandlerFunc(h.handleToken))
	t.Cleanup(h.Auth.Close)

	h.Airtime = httptest.NewServer(h.authorize(airtimeAudience, core.MediaTypeAirtimeV1, h.airtimeMux()))
	t.Cleanup(h.Airtime.Close)

	h.Giftcard = httptest.NewServer(h.authorize(giftcardAudience, core.MediaTypeGiftcardV1, h.giftcardMux()))
	t.Cleanup(h.Giftcard.Close)

	return h
}

func (h *harness) airtimeClient(t *testing.T, opts ...core.Option) *airtime.API {
	t.Helper()

	api, err := airtime.New(testCreds, append([]core.Option{
		core.WithAuthURL(h.Auth.URL),
		core.WithBaseURL(h.Airtime.URL),
	}, opts...)...)
	require.NoError(t, err)

	return api
}

func (h *harness) giftcardClient(t *testing.T, opts ...core.Option) *giftcard.API {
	t.Helper()

	api, err := giftcard.New(testCreds, append([]core.Option{
		core.WithAuthURL(h.Auth.URL),
		core.WithBaseURL(h.Giftcard.URL),
	}, opts...)...)
	require.NoError(t, err)

	return api
}

// Issued returns how many tokens were issued for audience.
func (h *harness) Issued(audience string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.issued[audience]
}

// expireNext makes the next authorized request fail with TOKEN_EXPIRED.
func (h *harness) expireNextRequest() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.expireNext = true
}

func (h *harness) setLifetime(d time.Duration) {
	h.mu.Lock()
	h.lifetime = d
	h.mu.Unlock()
}

func (h *harness) setRateLimited(v bool) {
	h.mu.Lock()
	h.rateLimited = v
	h.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errorBody(path, code, message string) map[string]any {
	return map[string]any{
		"timeStamp": time.Now().UTC().Format("2006-01-02 15:04:05"),
		"message":   message,
		"path":      path,
		"errorCode": code,
		"details":   []any{},
	}
}

func (h *harness) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/oauth/token" {
		writeJSON(w, http.StatusNotFound, errorBody(r.URL.Path, "NOT_FOUND", "Not Found"))
		return
	}

	var body struct {
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
		GrantType    string `json:"grant_type"`
		Audience     string `json:"audience"`
	}

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.GrantType != "client_credentials" {
		writeJSON(w, http.StatusBadRequest, errorBody("/oauth/token", "INVALID_REQUEST", "Bad Request"))
		return
	}

	known := body.ClientID == testClientID || body.ClientID == otherClientID
	if !known || body.ClientSecret != testSecret {
		writeJSON(w, http.StatusUnauthorized, errorBody("/oauth/token", "INVALID_CREDENTIALS", "Access Denied"))
		return
	}

	h.mu.Lock()
	lifetime := h.lifetime
	h.issued[body.Audience]++
	issuedAt := time.Now()
	h.mu.Unlock()

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   body.ClientID,
		Audience:  jwt.ClaimStrings{body.Audience},
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(lifetime)),
	}).SignedString(h.key)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("/oauth/token", "INTERNAL", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": raw,
		"scope":        "developer",
		"expires_in":   int64(lifetime.Seconds()),
		"token_type":   "Bearer",
	})
}

// authorize rejects requests without a valid token for audience or with the
// wrong media type.
func (h *harness) authorize(audience, mediaType string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != mediaType {
			writeJSON(w, http.StatusNotAcceptable, errorBody(r.URL.Path, "NOT_ACCEPTABLE", "Unsupported media type"))
			return
		}

		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorBody(r.URL.Path, "INVALID_TOKEN", "Full authentication is required"))
			return
		}

		_, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) { return h.key, nil },
			jwt.WithAudience(audience),
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorBody(r.URL.Path, "INVALID_TOKEN", err.Error()))
			return
		}

		h.mu.Lock()
		expired := h.expireNext
		h.expireNext = false
		h.mu.Unlock()

		if expired {
			writeJSON(w, http.StatusUnauthorized, errorBody(r.URL.Path, "TOKEN_EXPIRED", "Token expired"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *harness) airtimeMux() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /accounts/balance", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"balance":      550.75,
			"currencyCode": "USD",
			"currencyName": "US Dollar",
			"updatedAt":    "2024-06-01 08:00:00",
		})
	})

	mux.HandleFunc("GET /operators/auto-detect/phone/{phone}/countries/{iso}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("iso") != "NG" {
			writeJSON(w, http.StatusNotFound, errorBody(r.URL.Path, "COULD_NOT_AUTO_DETECT_OPERATOR", "Could not detect operator"))
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"id":               341,
			"name":             "MTN Nigeria",
			"denominationType": "RANGE",
			"country":          map[string]any{"isoName": "NG", "name": "Nigeria"},
		})
	})

	mux.HandleFunc("POST /topups", func(w http.ResponseWriter, r *http.Request) {
		var req airtime.TopupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(r.URL.Path, "INVALID_REQUEST", err.Error()))
			return
		}

		h.mu.Lock()
		h.topups = append(h.topups, req)
		id := len(h.topups)
		h.mu.Unlock()

		writeJSON(w, http.StatusOK, map[string]any{
			"transactionId":    id,
			"customIdentifier": req.CustomIdentifier,
			"operatorId":       req.OperatorID,
			"recipientPhone":   req.RecipientPhone.Number,
			"countryCode":      req.RecipientPhone.CountryCode,
			"requestedAmount":  req.Amount,
			"deliveredAmount":  req.Amount * 1500,
			"status":           "SUCCESSFUL",
			"transactionDate":  "2024-06-01 08:05:00",
		})
	})

	return mux
}

func (h *harness) giftcardMux() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		limited := h.rateLimited
		h.mu.Unlock()

		if limited {
			w.Header().Set(core.HeaderRateLimitLimit, "60")
			w.Header().Set(core.HeaderRateLimitRemaining, "0")
			w.Header().Set(core.HeaderRateLimitReset, "1717228800")
			writeJSON(w, http.StatusTooManyRequests, errorBody(r.URL.Path, "TOO_MANY_REQUESTS", "Too many requests"))

			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"content": []map[string]any{
				{"productId": 5, "productName": "Amazon US", "denominationType": "FIXED", "fixedRecipientDenominations": []float64{25, 50}},
			},
			"number":     0,
			"size":       1,
			"totalPages": 1,
			"last":       true,
			"first":      true,
		})
	})

	mux.HandleFunc("POST /orders", func(w http.ResponseWriter, r *http.Request) {
		var req giftcard.OrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(r.URL.Path, "INVALID_REQUEST", err.Error()))
			return
		}

		h.mu.Lock()
		h.orders = append(h.orders, req)
		id := 1000 + len(h.orders)
		h.mu.Unlock()

		writeJSON(w, http.StatusOK, map[string]any{
			"transactionId":          id,
			"amount":                 req.UnitPrice * float64(req.Quantity),
			"currencyCode":           "USD",
			"recipientEmail":         req.RecipientEmail,
			"customIdentifier":       req.CustomIdentifier,
			"status":                 "SUCCESSFUL",
			"transactionCreatedTime": "2024-06-01 09:00:00",
			"product":                map[string]any{"productId": req.ProductID, "quantity": req.Quantity, "unitPrice": req.UnitPrice},
		})
	})

	mux.HandleFunc("GET /orders/transactions/{id}/cards", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"cardNumber": "CARD-" + r.PathValue("id"), "pinCode": "1234"},
		})
	})

	return mux
}
