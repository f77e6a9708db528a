package airtime

import (
	"strings"
	"time"

	"github.com/Reloadly/reloadly-sdk-go/core"
)

// Operator filter parameters.
const (
	ParamIncludePin          = "includePin"
	ParamIncludeData         = "includeData"
	ParamIncludeBundles      = "includeBundles"
	ParamSuggestedAmounts    = "suggestedAmounts"
	ParamSuggestedAmountsMap = "suggestedAmountsMap"
	ParamIncludeRange        = "includeRange"
	ParamIncludeFixed        = "includeFixed"
)

// Transaction history filter parameters.
const (
	ParamStartDate        = "startDate"
	ParamEndDate          = "endDate"
	ParamOperatorID       = "operatorId"
	ParamCountryCode      = "countryCode"
	ParamOperatorName     = "operatorName"
	ParamCustomIdentifier = "customIdentifier"
)

// OperatorFilter narrows operator listings. The zero value sends no
// parameters; NewOperatorFilter starts from the API's usual defaults.
type OperatorFilter struct {
	q core.QueryFilter
}

// NewOperatorFilter includes PIN, data, bundle, range and fixed operators
// and leaves out suggested amounts.
func NewOperatorFilter() OperatorFilter {
	return OperatorFilter{q: core.NewQueryFilter().
		Set(ParamIncludePin, true).
		Set(ParamIncludeData, true).
		Set(ParamIncludeBundles, true).
		Set(ParamSuggestedAmounts, false).
		Set(ParamSuggestedAmountsMap, false).
		Set(ParamIncludeRange, true).
		Set(ParamIncludeFixed, true)}
}

// Query implements core.Filter.
func (f OperatorFilter) Query() core.QueryFilter { return f.q }

func (f OperatorFilter) WithPage(page, size int) OperatorFilter {
	return OperatorFilter{q: f.q.WithPage(page, size)}
}

func (f OperatorFilter) IncludePin(v bool) OperatorFilter {
	return OperatorFilter{q: f.q.Set(ParamIncludePin, v)}
}

func (f OperatorFilter) IncludeData(v bool) OperatorFilter {
	return OperatorFilter{q: f.q.Set(ParamIncludeData, v)}
}

func (f OperatorFilter) IncludeBundles(v bool) OperatorFilter {
	return OperatorFilter{q: f.q.Set(ParamIncludeBundles, v)}
}

func (f OperatorFilter) IncludeSuggestedAmounts(v bool) OperatorFilter {
	return OperatorFilter{q: f.q.Set(ParamSuggestedAmounts, v)}
}

func (f OperatorFilter) IncludeSuggestedAmountsMap(v bool) OperatorFilter {
	return OperatorFilter{q: f.q.Set(ParamSuggestedAmountsMap, v)}
}

func (f OperatorFilter) IncludeRangeDenominationType(v bool) OperatorFilter {
	return OperatorFilter{q: f.q.Set(ParamIncludeRange, v)}
}

func (f OperatorFilter) IncludeFixedDenominationType(v bool) OperatorFilter {
	return OperatorFilter{q: f.q.Set(ParamIncludeFixed, v)}
}

// TransactionHistoryFilter narrows topup transaction reports. Start and end
// dates must be set together, and the start must not be after the end.
type TransactionHistoryFilter struct {
	q core.QueryFilter
}

// NewTransactionHistoryFilter returns an empty filter.
func NewTransactionHistoryFilter() TransactionHistoryFilter {
	return TransactionHistoryFilter{}
}

// Query implements core.Filter.
func (f TransactionHistoryFilter) Query() core.QueryFilter { return f.q }

func (f TransactionHistoryFilter) WithPage(page, size int) TransactionHistoryFilter {
	return TransactionHistoryFilter{q: f.q.WithPage(page, size)}
}

func (f TransactionHistoryFilter) OperatorID(id int64) TransactionHistoryFilter {
	return TransactionHistoryFilter{q: f.q.SetChecked(ParamOperatorID, id, core.GreaterThanZero(id, "Operator id"))}
}

func (f TransactionHistoryFilter) CountryCode(code string) TransactionHistoryFilter {
	return TransactionHistoryFilter{q: f.q.SetChecked(ParamCountryCode, countrySegment(code), core.ValidCountryCode(code, "Country code"))}
}

func (f TransactionHistoryFilter) OperatorName(name string) TransactionHistoryFilter {
	return TransactionHistoryFilter{q: f.q.SetChecked(ParamOperatorName, strings.TrimSpace(name), core.NotBlank(name, "Operator name"))}
}

func (f TransactionHistoryFilter) CustomIdentifier(id string) TransactionHistoryFilter {
	return TransactionHistoryFilter{q: f.q.SetChecked(ParamCustomIdentifier, id, core.NotBlank(id, "Custom identifier"))}
}

func (f TransactionHistoryFilter) StartDate(t time.Time) TransactionHistoryFilter {
	return TransactionHistoryFilter{q: f.q.SetChecked(ParamStartDate, t, notZeroTime(t, "Start date"))}
}

func (f TransactionHistoryFilter) EndDate(t time.Time) TransactionHistoryFilter {
	return TransactionHistoryFilter{q: f.q.SetChecked(ParamEndDate, t, notZeroTime(t, "End date"))}
}

func notZeroTime(t time.Time, name string) error {
	if t.IsZero() {
		return &core.ValidationError{Field: name, Message: "'" + name + "' cannot be null!"}
	}

	return nil
}
