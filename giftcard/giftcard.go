// Package giftcard is a client for the Reloadly Gift Cards API.
package giftcard

import (
	"context"
	"strconv"
	"strings"

	"github.com/Reloadly/reloadly-sdk-go/authentication"
	"github.com/Reloadly/reloadly-sdk-go/core"
)

const (
	pathProducts           = "products"
	pathCountries          = "countries"
	pathBrands             = "brands"
	pathRedeemInstructions = "redeem-instructions"
	pathDiscounts          = "discounts"
	pathReports            = "reports"
	pathTransactions       = "transactions"
	pathOrders             = "orders"
	pathCards              = "cards"
)

// API is the Gift Cards service client. It is safe for concurrent use.
type API struct {
	*core.ServiceClient
}

// New returns a Gift Cards client. creds must carry either a usable access
// token or a client id and secret.
func New(creds core.Credentials, opts ...core.Option) (*API, error) {
	fetcher, err := authentication.FetcherFor(creds, opts...)
	if err != nil {
		return nil, err
	}

	client, err := core.NewServiceClient(core.Giftcard, creds, fetcher, core.NewOptions(opts...))
	if err != nil {
		return nil, err
	}

	return &API{ServiceClient: client}, nil
}

var _ core.ServiceAPI = (*API)(nil)

func (a *API) Products() *ProductOperations {
	return &ProductOperations{res: a.Resource()}
}

func (a *API) RedeemInstructions() *RedeemInstructionOperations {
	return &RedeemInstructionOperations{res: a.Resource()}
}

func (a *API) Discounts() *DiscountOperations {
	return &DiscountOperations{res: a.Resource()}
}

func (a *API) Transactions() *TransactionOperations {
	return &TransactionOperations{res: a.Resource()}
}

func (a *API) Orders() *OrderOperations {
	return &OrderOperations{res: a.Resource()}
}

// ProductOperations lists gift card products.
type ProductOperations struct {
	res core.Resource
}

// List returns a request for a page of products. f may be nil.
func (o *ProductOperations) List(ctx context.Context, f core.Filter) (*core.Request[core.Page[Product]], error) {
	if err := core.FilterError(f); err != nil {
		return nil, err
	}

	return core.Get[core.Page[Product]](ctx, o.res, o.res.Endpoint(f, pathProducts))
}

// ListByCountryCode returns a request for the products sold in a country.
func (o *ProductOperations) ListByCountryCode(ctx context.Context, countryCode string, f core.Filter) (*core.Request[[]Product], error) {
	if err := core.ValidCountryCode(countryCode, "Country code"); err != nil {
		return nil, err
	}

	if err := core.FilterError(f); err != nil {
		return nil, err
	}

	return core.Get[[]Product](ctx, o.res, o.res.Endpoint(f, pathCountries, countrySegment(countryCode), pathProducts))
}

func (o *ProductOperations) GetByID(ctx context.Context, id int64) (*core.Request[Product], error) {
	if err := core.GreaterThanZero(id, "Product id"); err != nil {
		return nil, err
	}

	return core.Get[Product](ctx, o.res, o.res.Endpoint(nil, pathProducts, idSegment(id)))
}

// RedeemInstructionOperations reads how to redeem each brand's cards.
type RedeemInstructionOperations struct {
	res core.Resource
}

func (o *RedeemInstructionOperations) List(ctx context.Context) (*core.Request[[]RedeemInstruction], error) {
	return core.Get[[]RedeemInstruction](ctx, o.res, o.res.Endpoint(nil, pathRedeemInstructions))
}

func (o *RedeemInstructionOperations) GetByBrandID(ctx context.Context, brandID int64) (*core.Request[RedeemInstruction], error) {
	if err := core.GreaterThanZero(brandID, "Brand id"); err != nil {
		return nil, err
	}

	return core.Get[RedeemInstruction](ctx, o.res, o.res.Endpoint(nil, pathBrands, idSegment(brandID), pathRedeemInstructions))
}

// DiscountOperations reads product discounts.
type DiscountOperations struct {
	res core.Resource
}

func (o *DiscountOperations) List(ctx context.Context) (*core.Request[core.Page[Discount]], error) {
	return core.Get[core.Page[Discount]](ctx, o.res, o.res.Endpoint(nil, pathDiscounts))
}

func (o *DiscountOperations) GetByProductID(ctx context.Context, productID int64) (*core.Request[Discount], error) {
	if err := core.GreaterThanZero(productID, "Product id"); err != nil {
		return nil, err
	}

	return core.Get[Discount](ctx, o.res, o.res.Endpoint(nil, pathProducts, idSegment(productID), pathDiscounts))
}

// TransactionOperations reads past orders.
type TransactionOperations struct {
	res core.Resource
}

// List returns a request for a page of transactions. f may be nil; when it
// bounds the dates, both bounds must be set and ordered.
func (o *TransactionOperations) List(ctx context.Context, f core.Filter) (*core.Request[core.Page[Transaction]], error) {
	if err := core.FilterError(f); err != nil {
		return nil, err
	}

	if err := core.QueryOf(f).DateRange(ParamStartDate, ParamEndDate); err != nil {
		return nil, err
	}

	return core.Get[core.Page[Transaction]](ctx, o.res, o.res.Endpoint(f, pathReports, pathTransactions))
}

func (o *TransactionOperations) GetByID(ctx context.Context, id int64) (*core.Request[Transaction], error) {
	if err := core.GreaterThanZero(id, "Transaction id"); err != nil {
		return nil, err
	}

	return core.Get[Transaction](ctx, o.res, o.res.Endpoint(nil, pathReports, pathTransactions, idSegment(id)))
}

func idSegment(id int64) string {
	return strconv.FormatInt(id, 10)
}

func countrySegment(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
