package core

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"time"
)

// Query parameter names shared by every paged endpoint.
const (
	ParamPage = "page"
	ParamSize = "size"
)

// FilterDateLayout is the layout date range filters are sent in.
const FilterDateLayout = "2006-01-02 15:04:05"

// Filter is implemented by every resource filter.
type Filter interface {
	Query() QueryFilter
}

// QueryFilter is an ordered set of query parameters. It is a value type:
// every setter returns a new filter and leaves the receiver untouched, so a
// filter can be shared between calls without aliasing.
//
// Setters never fail. The first invalid argument is recorded and reported by
// Err, and every operation that accepts a filter checks it before any I/O.
type QueryFilter struct {
	keys   []string
	values map[string]any
	err    error
}

// NewQueryFilter returns an empty filter.
func NewQueryFilter() QueryFilter {
	return QueryFilter{}
}

// Query implements Filter.
func (f QueryFilter) Query() QueryFilter { return f }

// Err returns the first validation failure recorded by a setter.
func (f QueryFilter) Err() error { return f.err }

func (f QueryFilter) clone() QueryFilter {
	out := QueryFilter{
		keys:   slices.Clone(f.keys),
		values: make(map[string]any, len(f.values)+1),
		err:    f.err,
	}

	for k, v := range f.values {
		out.values[k] = v
	}

	return out
}

// Set stores value under key. Later calls replace the value but keep the
// key's original position.
func (f QueryFilter) Set(key string, value any) QueryFilter {
	out := f.clone()

	if _, ok := out.values[key]; !ok {
		out.keys = append(out.keys, key)
	}

	out.values[key] = value

	return out
}

// Fail records err unless an earlier failure is already recorded.
func (f QueryFilter) Fail(err error) QueryFilter {
	if err == nil || f.err != nil {
		return f
	}

	out := f.clone()
	out.err = err

	return out
}

// SetChecked stores value under key when check is nil, otherwise it records
// check as the filter's failure.
func (f QueryFilter) SetChecked(key string, value any, check error) QueryFilter {
	if check != nil {
		return f.Fail(check)
	}

	return f.Set(key, value)
}

// WithPage requests a specific page. Both arguments must be positive.
func (f QueryFilter) WithPage(page, size int) QueryFilter {
	if page <= 0 {
		return f.Fail(&ValidationError{Field: ParamPage, Message: "Filter page number must greater than zero"})
	}

	if size <= 0 {
		return f.Fail(&ValidationError{Field: ParamSize, Message: "Filter page size must greater than zero"})
	}

	return f.Set(ParamPage, page).Set(ParamSize, size)
}

// Get returns the raw value stored under key.
func (f QueryFilter) Get(key string) (any, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Keys returns the parameter names in insertion order.
func (f QueryFilter) Keys() []string {
	return slices.Clone(f.keys)
}

// Len returns the number of parameters.
func (f QueryFilter) Len() int { return len(f.keys) }

// Encode returns the parameters as url.Values.
func (f QueryFilter) Encode() url.Values {
	out := make(url.Values, len(f.keys))
	for _, k := range f.keys {
		out.Set(k, formatParam(f.values[k]))
	}

	return out
}

// Apply merges the parameters into u's query string, preserving any query
// parameters already present on u.
func (f QueryFilter) Apply(u *url.URL) {
	if len(f.keys) == 0 {
		return
	}

	q := u.Query()
	for k, vs := range f.Encode() {
		q[k] = vs
	}

	u.RawQuery = q.Encode()
}

func formatParam(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.Format(FilterDateLayout)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// DateRange validates a pair of date bounds stored under startKey and endKey.
// Both bounds must be present together and start must not be after end.
func (f QueryFilter) DateRange(startKey, endKey string) error {
	start, hasStart := f.dateValue(startKey)
	end, hasEnd := f.dateValue(endKey)

	switch {
	case hasStart != hasEnd:
		return &ValidationError{Field: startKey, Message: "If start date is set, end date must be set as well and vice-versa"}
	case hasStart && start.After(end):
		return &ValidationError{Field: startKey, Message: "The start date must NOT be greater than the end date"}
	}

	return nil
}

func (f QueryFilter) dateValue(key string) (time.Time, bool) {
	v, ok := f.values[key]
	if !ok {
		return time.Time{}, false
	}

	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case string:
		parsed, err := time.Parse(FilterDateLayout, t)
		return parsed, err == nil
	}

	return time.Time{}, false
}

// FilterError returns the deferred failure of an optional filter. A nil
// filter is valid.
func FilterError(f Filter) error {
	if f == nil {
		return nil
	}

	return f.Query().Err()
}

// QueryOf returns the parameters of an optional filter.
func QueryOf(f Filter) QueryFilter {
	if f == nil {
		return QueryFilter{}
	}

	return f.Query()
}
