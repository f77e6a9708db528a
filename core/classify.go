package core

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Rate-limit response headers.
const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
)

// TokenPath is the path of the OAuth token endpoint. Errors reported for
// this path are OAuth errors.
const TokenPath = "/oauth/token"

// NoResponseMessage is used when a failed response carries no readable
// error payload.
const NoResponseMessage = "No response from server, please try again or contact support"

// ErrorPayload is the JSON error body returned by the Reloadly servers, e.g.
//
//	{"message":"Invalid operator id provided","path":"/operators/68695596",
//	 "errorCode":null,"timeStamp":1559108814252,"details":[]}
type ErrorPayload struct {
	Message   string
	Path      string
	ErrorCode string
	InfoLink  string
	Timestamp *time.Time
	Details   []any
}

var payloadTimeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// ParseErrorPayload reads an error body leniently. ok is false when body is
// not a JSON object.
func ParseErrorPayload(body []byte) (ErrorPayload, bool) {
	if !gjson.ValidBytes(body) {
		return ErrorPayload{}, false
	}

	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return ErrorPayload{}, false
	}

	p := ErrorPayload{
		Message:   root.Get("message").String(),
		Path:      root.Get("path").String(),
		ErrorCode: root.Get("errorCode").String(),
		InfoLink:  root.Get("infoLink").String(),
	}

	ts := root.Get("timeStamp")
	if !ts.Exists() {
		ts = root.Get("timestamp")
	}

	p.Timestamp = parsePayloadTime(ts)

	if details := root.Get("details"); details.IsArray() {
		p.Details = []any{}
		for _, d := range details.Array() {
			p.Details = append(p.Details, d.Value())
		}
	}

	return p, true
}

func parsePayloadTime(v gjson.Result) *time.Time {
	switch v.Type {
	case gjson.Number:
		t := time.UnixMilli(v.Int()).UTC()
		return &t
	case gjson.String:
		for _, layout := range payloadTimeLayouts {
			if t, err := time.Parse(layout, v.Str); err == nil {
				return &t
			}
		}
	}

	return nil
}

// Classify turns a failed response into an APIError. It is a pure function
// of its inputs:
//
//   - status 429 is a rate-limit error carrying the X-RateLimit-* headers;
//   - otherwise a payload path equal to /oauth/token (any case) is an OAuth
//     error;
//   - anything else is a generic API error.
func Classify(p ErrorPayload, status int, header http.Header) *APIError {
	e := &APIError{
		Kind:       KindAPI,
		Message:    p.Message,
		StatusCode: status,
		Path:       p.Path,
		InfoLink:   p.InfoLink,
	}

	switch {
	case status == http.StatusTooManyRequests:
		e.Kind = KindRateLimit
		e.RateLimit = &RateLimit{
			Limit:     headerInt(header, HeaderRateLimitLimit),
			Remaining: headerInt(header, HeaderRateLimitRemaining),
			ResetAt:   headerInt(header, HeaderRateLimitReset),
		}
	case isTokenPath(p.Path):
		e.Kind = KindOAuth
	}

	if strings.TrimSpace(p.ErrorCode) != "" {
		e.ErrorCode = p.ErrorCode
	}

	if p.Timestamp != nil {
		e.Timestamp = *p.Timestamp
	}

	if p.Details != nil {
		e.Details = p.Details
	}

	return e
}

func isTokenPath(path string) bool {
	path = strings.TrimSpace(path)
	return path != "" && strings.EqualFold(path, TokenPath)
}

// headerInt returns the header value as an integer, or -1 when it is
// missing, empty or not a number.
func headerInt(h http.Header, name string) int64 {
	raw := strings.TrimSpace(h.Get(name))
	if raw == "" {
		return -1
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return -1
	}

	return n
}

// responseError builds the error for a non-2xx response. When the body holds
// no usable payload the fallback message is used, and the request path
// stands in for a missing payload path.
func responseError(requestPath string, status int, header http.Header, body []byte) *APIError {
	p, ok := ParseErrorPayload(body)
	if !ok || strings.TrimSpace(p.Message) == "" {
		p.Message = NoResponseMessage
	}

	if strings.TrimSpace(p.Path) == "" {
		p.Path = requestPath
	}

	return Classify(p, status, header)
}
