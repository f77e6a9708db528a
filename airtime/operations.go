package airtime

import (
	"context"
	"strings"

	"github.com/Reloadly/reloadly-sdk-go/core"
)

const (
	pathAccounts    = "accounts"
	pathBalance     = "balance"
	pathCountries   = "countries"
	pathOperators   = "operators"
	pathCommissions = "commissions"
	pathFxRate      = "fx-rate"
	pathAutoDetect  = "auto-detect"
	pathPhone       = "phone"
	pathPromotions  = "promotions"
)

// AccountOperations reads account information.
type AccountOperations struct {
	res core.Resource
}

// GetBalance returns a request for the account balance.
func (o *AccountOperations) GetBalance(ctx context.Context) (*core.Request[AccountBalance], error) {
	return core.Get[AccountBalance](ctx, o.res, o.res.Endpoint(nil, pathAccounts, pathBalance))
}

// CountryOperations lists the countries served.
type CountryOperations struct {
	res core.Resource
}

func (o *CountryOperations) List(ctx context.Context) (*core.Request[[]Country], error) {
	return core.Get[[]Country](ctx, o.res, o.res.Endpoint(nil, pathCountries))
}

// GetByCode returns a request for the country with ISO 3166-1 alpha-2 code.
func (o *CountryOperations) GetByCode(ctx context.Context, code string) (*core.Request[Country], error) {
	if err := core.ValidCountryCode(code, "Country code"); err != nil {
		return nil, err
	}

	return core.Get[Country](ctx, o.res, o.res.Endpoint(nil, pathCountries, countrySegment(code)))
}

// OperatorOperations looks up mobile operators. Every filter argument may be
// nil.
type OperatorOperations struct {
	res core.Resource
}

func (o *OperatorOperations) List(ctx context.Context, f core.Filter) (*core.Request[core.Page[Operator]], error) {
	if err := core.FilterError(f); err != nil {
		return nil, err
	}

	return core.Get[core.Page[Operator]](ctx, o.res, o.res.Endpoint(f, pathOperators))
}

func (o *OperatorOperations) GetByID(ctx context.Context, id int64, f core.Filter) (*core.Request[Operator], error) {
	if err := core.GreaterThanZero(id, "Operator id"); err != nil {
		return nil, err
	}

	if err := core.FilterError(f); err != nil {
		return nil, err
	}

	return core.Get[Operator](ctx, o.res, o.res.Endpoint(f, pathOperators, idSegment(id)))
}

// AutoDetect returns a request for the operator serving phone in the
// country with the given code. A leading '+' is added when missing.
func (o *OperatorOperations) AutoDetect(ctx context.Context, phone, countryCode string, f core.Filter) (*core.Request[Operator], error) {
	if err := core.NotBlank(phone, "Phone"); err != nil {
		return nil, err
	}

	if err := core.ValidCountryCode(countryCode, "Country code"); err != nil {
		return nil, err
	}

	if err := core.FilterError(f); err != nil {
		return nil, err
	}

	endpoint := o.res.Endpoint(f, pathOperators, pathAutoDetect, pathPhone, plusPrefixed(phone), pathCountries, countrySegment(countryCode))

	return core.Get[Operator](ctx, o.res, endpoint)
}

func (o *OperatorOperations) ListByCountryCode(ctx context.Context, countryCode string, f core.Filter) (*core.Request[[]Operator], error) {
	if err := core.ValidCountryCode(countryCode, "Country code"); err != nil {
		return nil, err
	}

	if err := core.FilterError(f); err != nil {
		return nil, err
	}

	return core.Get[[]Operator](ctx, o.res, o.res.Endpoint(f, pathOperators, pathCountries, countrySegment(countryCode)))
}

type fxRateRequest struct {
	Amount float64 `json:"amount"`
}

// CalculateFxRate returns a request converting amount into the operator's
// destination currency.
func (o *OperatorOperations) CalculateFxRate(ctx context.Context, id int64, amount float64) (*core.Request[OperatorFxRate], error) {
	if err := core.GreaterThanZero(id, "Operator id"); err != nil {
		return nil, err
	}

	if err := core.GreaterThanZero(amount, "Amount"); err != nil {
		return nil, err
	}

	return core.Post[OperatorFxRate](ctx, o.res, o.res.Endpoint(nil, pathOperators, idSegment(id), pathFxRate), fxRateRequest{Amount: amount})
}

// DiscountOperations reads operator commissions.
type DiscountOperations struct {
	res core.Resource
}

func (o *DiscountOperations) List(ctx context.Context, f core.Filter) (*core.Request[core.Page[Discount]], error) {
	if err := core.FilterError(f); err != nil {
		return nil, err
	}

	return core.Get[core.Page[Discount]](ctx, o.res, o.res.Endpoint(f, pathOperators, pathCommissions))
}

func (o *DiscountOperations) GetByOperatorID(ctx context.Context, operatorID int64) (*core.Request[Discount], error) {
	if err := core.GreaterThanZero(operatorID, "Operator id"); err != nil {
		return nil, err
	}

	return core.Get[Discount](ctx, o.res, o.res.Endpoint(nil, pathOperators, idSegment(operatorID), pathCommissions))
}

// PromotionOperations reads operator promotions.
type PromotionOperations struct {
	res core.Resource
}

func (o *PromotionOperations) List(ctx context.Context, f core.Filter) (*core.Request[core.Page[Promotion]], error) {
	if err := core.FilterError(f); err != nil {
		return nil, err
	}

	return core.Get[core.Page[Promotion]](ctx, o.res, o.res.Endpoint(f, pathPromotions))
}

func (o *PromotionOperations) GetByID(ctx context.Context, id int64) (*core.Request[Promotion], error) {
	if err := core.GreaterThanZero(id, "Promotion id"); err != nil {
		return nil, err
	}

	return core.Get[Promotion](ctx, o.res, o.res.Endpoint(nil, pathPromotions, idSegment(id)))
}

func (o *PromotionOperations) GetByCountryCode(ctx context.Context, countryCode string) (*core.Request[[]Promotion], error) {
	if err := core.ValidCountryCode(countryCode, "Country code"); err != nil {
		return nil, err
	}

	return core.Get[[]Promotion](ctx, o.res, o.res.Endpoint(nil, pathPromotions, pathCountries, countrySegment(countryCode)))
}

func (o *PromotionOperations) GetByOperatorID(ctx context.Context, operatorID int64) (*core.Request[[]Promotion], error) {
	if err := core.GreaterThanZero(operatorID, "Operator id"); err != nil {
		return nil, err
	}

	return core.Get[[]Promotion](ctx, o.res, o.res.Endpoint(nil, pathPromotions, pathOperators, idSegment(operatorID)))
}

func plusPrefixed(phone string) string {
	phone = strings.TrimSpace(phone)
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}

	return phone
}
