package core

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"golang.org/x/text/width"
)

func invalid(field, format string) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, field)}
}

// NotBlank fails when value is empty or only whitespace.
func NotBlank(value, name string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(name, "'%s' cannot be null or empty!")
	}

	return nil
}

// Number is the set of numeric types GreaterThanZero accepts.
type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// GreaterThanZero fails when value <= 0.
func GreaterThanZero[N Number](value N, name string) error {
	if value <= 0 {
		return invalid(name, "'%s' must be greater than zero!")
	}

	return nil
}

// NotEmpty fails when the slice has no elements.
func NotEmpty[E any](value []E, name string) error {
	if value == nil {
		return invalid(name, "'%s' cannot be null!")
	}

	if len(value) == 0 {
		return invalid(name, "'%s' cannot be empty!")
	}

	return nil
}

// ValidEmail fails when value is blank or not a bare email address.
func ValidEmail(value, name string) error {
	if err := NotBlank(value, name); err != nil {
		return err
	}

	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != strings.TrimSpace(value) || !strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@"):], ".") {
		return invalid(name, "'%s' is not a valid email address!")
	}

	return nil
}

// ValidURL fails when value is blank or not an absolute http(s) URL.
func ValidURL(value, name string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(name, "'%s' must be a valid URL!")
	}

	u, err := url.Parse(value)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return invalid(name, "'%s' must be a valid URL!")
	}

	return nil
}

// NormalizePhone folds full-width digits to ASCII and removes spaces and
// '+' signs.
func NormalizePhone(number string) string {
	number = width.Fold.String(number)
	number = strings.ReplaceAll(number, "+", "")
	number = strings.ReplaceAll(number, " ", "")

	return strings.TrimSpace(number)
}

// ValidPhone fails when number is blank, or does not consist of at least
// four digits with an optional leading '+'.
func ValidPhone(number, name string) error {
	if err := NotBlank(number, name); err != nil {
		return err
	}

	digits := NormalizePhone(number)
	if len(digits) <= 3 {
		return invalid(name, "'%s' must contain only numbers and an optional leading '+' sign!")
	}

	for _, r := range digits {
		if r < '0' || r > '9' {
			return invalid(name, "'%s' must contain only numbers and an optional leading '+' sign!")
		}
	}

	return nil
}

// ValidCountryCode fails unless code is a two-letter ISO 3166-1 alpha-2 code.
func ValidCountryCode(code, name string) error {
	if err := NotBlank(code, name); err != nil {
		return err
	}

	if len(code) != 2 {
		return invalid(name, "'%s' must be an ISO 3166-1 alpha-2 code!")
	}

	for _, r := range strings.ToUpper(code) {
		if r < 'A' || r > 'Z' {
			return invalid(name, "'%s' must be an ISO 3166-1 alpha-2 code!")
		}
	}

	return nil
}
