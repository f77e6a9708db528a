package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Page is one page of a paginated listing.
type Page[T any] struct {
	Content          []T   `json:"content" yaml:"content"`
	Number           int   `json:"number" yaml:"number"`
	Size             int   `json:"size" yaml:"size"`
	TotalElements    int64 `json:"totalElements" yaml:"totalElements"`
	TotalPages       int   `json:"totalPages" yaml:"totalPages"`
	NumberOfElements int   `json:"numberOfElements" yaml:"numberOfElements"`
	First            bool  `json:"first" yaml:"first"`
	Last             bool  `json:"last" yaml:"last"`
	Empty            bool  `json:"empty" yaml:"empty"`
}

// HasNext reports whether a further page exists.
func (p Page[T]) HasNext() bool {
	return !p.Last && p.Number+1 < p.TotalPages
}

// NewCustomIdentifier returns a random identifier suitable for the
// customIdentifier field of topups and orders.
func NewCustomIdentifier() string {
	return uuid.NewString()
}

// Time layouts used by the Reloadly APIs.
const (
	dateTimeLayout    = "2006-01-02 15:04:05"
	utcDateTimeLayout = "2006-01-02T15:04:05Z"
)

// Time decodes the timestamp formats found in Reloadly responses:
// "yyyy-MM-dd HH:mm:ss", RFC 3339 and UNIX epoch seconds. It encodes as
// "yyyy-MM-dd HH:mm:ss".
type Time struct {
	time.Time
}

func (t *Time) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] != '"' {
		var secs int64
		if err := json.Unmarshal(data, &secs); err != nil {
			return fmt.Errorf("decoding epoch time %s: %w", data, err)
		}

		t.Time = time.Unix(secs, 0).UTC()

		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, layout := range []string{dateTimeLayout, utcDateTimeLayout, time.RFC3339Nano} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed

			return nil
		}
	}

	return fmt.Errorf("unrecognised time %q", s)
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}

	return json.Marshal(t.Format(dateTimeLayout))
}

// MarshalYAML renders the time in the same layout as JSON.
func (t Time) MarshalYAML() (any, error) {
	if t.IsZero() {
		return nil, nil
	}

	return t.Format(dateTimeLayout), nil
}
