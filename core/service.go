package core

import (
	"fmt"
	"strings"
)

// Base URLs of the Reloadly services.
const (
	AuthURL            = "https://auth.reloadly.com"
	AirtimeURL         = "https://topups.reloadly.com"
	AirtimeSandboxURL  = "https://topups-sandbox.reloadly.com"
	GiftcardURL        = "https://giftcards.reloadly.com"
	GiftcardSandboxURL = "https://giftcards-sandbox.reloadly.com"
)

// Media types sent in the Accept header of each API.
const (
	MediaTypeAirtimeV1        = "application/com.reloadly.topups-v1+json"
	MediaTypeGiftcardV1       = "application/com.reloadly.giftcards-v1+json"
	MediaTypeAuthenticationV1 = "application/com.reloadly.authentication-v1+json"
	MediaTypeJSON             = "application/json"
)

// Environment selects the live or sandbox deployment. The zero value is
// Sandbox.
type Environment int

const (
	Sandbox Environment = iota
	Live
)

func (e Environment) String() string {
	if e == Live {
		return "live"
	}

	return "sandbox"
}

// ParseEnvironment accepts "live" or "sandbox", case-insensitively. An empty
// string is Sandbox.
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sandbox":
		return Sandbox, nil
	case "live", "production":
		return Live, nil
	}

	return Sandbox, fmt.Errorf("unknown environment %q", s)
}

// UnmarshalText lets Environment be decoded from configuration.
func (e *Environment) UnmarshalText(text []byte) error {
	v, err := ParseEnvironment(string(text))
	if err != nil {
		return err
	}

	*e = v

	return nil
}

// Product is a Reloadly API family.
type Product int

const (
	Airtime Product = iota + 1
	Giftcard
)

func (p Product) String() string {
	switch p {
	case Airtime:
		return "airtime"
	case Giftcard:
		return "giftcard"
	}

	return "unknown"
}

// ServiceTarget is a concrete deployment a token is issued for. The zero
// value is invalid.
type ServiceTarget int

const (
	AirtimeLive ServiceTarget = iota + 1
	AirtimeSandbox
	GiftcardLive
	GiftcardSandbox
)

// ResolveTarget maps a product and environment to its deployment. Anything
// other than Live resolves to the sandbox.
func ResolveTarget(p Product, env Environment) ServiceTarget {
	switch p {
	case Airtime:
		if env == Live {
			return AirtimeLive
		}

		return AirtimeSandbox
	case Giftcard:
		if env == Live {
			return GiftcardLive
		}

		return GiftcardSandbox
	}

	return 0
}

// Valid reports whether t names a known deployment.
func (t ServiceTarget) Valid() bool {
	return t >= AirtimeLive && t <= GiftcardSandbox
}

// BaseURL returns the API root of the deployment.
func (t ServiceTarget) BaseURL() string {
	switch t {
	case AirtimeLive:
		return AirtimeURL
	case AirtimeSandbox:
		return AirtimeSandboxURL
	case GiftcardLive:
		return GiftcardURL
	case GiftcardSandbox:
		return GiftcardSandboxURL
	}

	return ""
}

// Audience is the OAuth audience tokens for this deployment are requested
// with. It equals the base URL.
func (t ServiceTarget) Audience() string {
	return t.BaseURL()
}

// MediaType is the versioned Accept value for the deployment's API.
func (t ServiceTarget) MediaType() string {
	switch t.Product() {
	case Airtime:
		return MediaTypeAirtimeV1
	case Giftcard:
		return MediaTypeGiftcardV1
	}

	return MediaTypeJSON
}

// Product returns the API family of the deployment.
func (t ServiceTarget) Product() Product {
	switch t {
	case AirtimeLive, AirtimeSandbox:
		return Airtime
	case GiftcardLive, GiftcardSandbox:
		return Giftcard
	}

	return 0
}

// Environment returns whether the deployment is live or sandbox.
func (t ServiceTarget) Environment() Environment {
	if t == AirtimeLive || t == GiftcardLive {
		return Live
	}

	return Sandbox
}

func (t ServiceTarget) String() string {
	switch t {
	case AirtimeLive:
		return "AIRTIME"
	case AirtimeSandbox:
		return "AIRTIME_SANDBOX"
	case GiftcardLive:
		return "GIFTCARD"
	case GiftcardSandbox:
		return "GIFTCARD_SANDBOX"
	}

	return fmt.Sprintf("ServiceTarget(%d)", int(t))
}

// NormalizeAudience forces an https:// scheme on an audience value.
func NormalizeAudience(audience string) string {
	audience = strings.TrimSpace(audience)

	switch {
	case strings.HasPrefix(audience, "https://"):
		return audience
	case strings.HasPrefix(audience, "http://"):
		return "https://" + strings.TrimPrefix(audience, "http://")
	}

	return "https://" + audience
}
