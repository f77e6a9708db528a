package giftcard

import (
	"strings"
	"time"

	"github.com/Reloadly/reloadly-sdk-go/core"
)

// Filter parameters.
const (
	ParamProductName      = "productName"
	ParamCountryCode      = "countryCode"
	ParamIncludeRange     = "includeRange"
	ParamIncludeFixed     = "includeFixed"
	ParamSimplified       = "simplified"
	ParamStatus           = "status"
	ParamBrandID          = "brandId"
	ParamBrandName        = "brandName"
	ParamProductID        = "productId"
	ParamStartDate        = "startDate"
	ParamEndDate          = "endDate"
	ParamRecipientEmail   = "recipientEmail"
	ParamCustomIdentifier = "customIdentifier"
)

// ProductFilter narrows product listings.
type ProductFilter struct {
	q core.QueryFilter
}

// NewProductFilter includes range and fixed denomination products with full
// details.
func NewProductFilter() ProductFilter {
	return ProductFilter{q: core.NewQueryFilter().
		Set(ParamIncludeRange, true).
		Set(ParamIncludeFixed, true).
		Set(ParamSimplified, false)}
}

// Query implements core.Filter.
func (f ProductFilter) Query() core.QueryFilter { return f.q }

func (f ProductFilter) WithPage(page, size int) ProductFilter {
	return ProductFilter{q: f.q.WithPage(page, size)}
}

func (f ProductFilter) ProductName(name string) ProductFilter {
	return ProductFilter{q: f.q.SetChecked(ParamProductName, strings.TrimSpace(name), core.NotBlank(name, "Product name"))}
}

func (f ProductFilter) CountryCode(code string) ProductFilter {
	return ProductFilter{q: f.q.SetChecked(ParamCountryCode, countrySegment(code), core.ValidCountryCode(code, "Country code"))}
}

func (f ProductFilter) Simplified(v bool) ProductFilter {
	return ProductFilter{q: f.q.Set(ParamSimplified, v)}
}

func (f ProductFilter) IncludeRange(v bool) ProductFilter {
	return ProductFilter{q: f.q.Set(ParamIncludeRange, v)}
}

func (f ProductFilter) IncludeFixed(v bool) ProductFilter {
	return ProductFilter{q: f.q.Set(ParamIncludeFixed, v)}
}

// TransactionFilter narrows transaction reports.
type TransactionFilter struct {
	q core.QueryFilter
}

// NewTransactionFilter returns an empty filter.
func NewTransactionFilter() TransactionFilter {
	return TransactionFilter{}
}

// Query implements core.Filter.
func (f TransactionFilter) Query() core.QueryFilter { return f.q }

func (f TransactionFilter) WithPage(page, size int) TransactionFilter {
	return TransactionFilter{q: f.q.WithPage(page, size)}
}

func (f TransactionFilter) Status(s TransactionStatus) TransactionFilter {
	return TransactionFilter{q: f.q.SetChecked(ParamStatus, string(s), s.validate())}
}

func (f TransactionFilter) BrandID(id int64) TransactionFilter {
	return TransactionFilter{q: f.q.SetChecked(ParamBrandID, id, core.GreaterThanZero(id, "Brand id"))}
}

func (f TransactionFilter) BrandName(name string) TransactionFilter {
	return TransactionFilter{q: f.q.SetChecked(ParamBrandName, strings.TrimSpace(name), core.NotBlank(name, "Brand name"))}
}

func (f TransactionFilter) ProductID(id int64) TransactionFilter {
	return TransactionFilter{q: f.q.SetChecked(ParamProductID, id, core.GreaterThanZero(id, "Product id"))}
}

func (f TransactionFilter) ProductName(name string) TransactionFilter {
	return TransactionFilter{q: f.q.SetChecked(ParamProductName, strings.TrimSpace(name), core.NotBlank(name, "Product name"))}
}

func (f TransactionFilter) RecipientEmail(email string) TransactionFilter {
	return TransactionFilter{q: f.q.SetChecked(ParamRecipientEmail, email, core.ValidEmail(email, "Recipient email"))}
}

func (f TransactionFilter) CustomIdentifier(id string) TransactionFilter {
	return TransactionFilter{q: f.q.SetChecked(ParamCustomIdentifier, id, core.NotBlank(id, "Custom identifier"))}
}

func (f TransactionFilter) StartDate(t time.Time) TransactionFilter {
	return TransactionFilter{q: f.q.SetChecked(ParamStartDate, t, notZeroTime(t, "Start date"))}
}

func (f TransactionFilter) EndDate(t time.Time) TransactionFilter {
	return TransactionFilter{q: f.q.SetChecked(ParamEndDate, t, notZeroTime(t, "End date"))}
}

func notZeroTime(t time.Time, name string) error {
	if t.IsZero() {
		return &core.ValidationError{Field: name, Message: "'" + name + "' cannot be null!"}
	}

	return nil
}
