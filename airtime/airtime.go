// Package airtime is a client for the Reloadly Airtime (topups) API.
package airtime

import (
	"strconv"
	"strings"

	"github.com/Reloadly/reloadly-sdk-go/authentication"
	"github.com/Reloadly/reloadly-sdk-go/core"
)

// API is the Airtime service client. It is safe for concurrent use.
type API struct {
	*core.ServiceClient
}

// New returns an Airtime client. creds must carry either a usable access
// token or a client id and secret. Tokens are requested from the
// authentication server unless WithTokenFetcher supplies another source.
func New(creds core.Credentials, opts ...core.Option) (*API, error) {
	fetcher, err := authentication.FetcherFor(creds, opts...)
	if err != nil {
		return nil, err
	}

	client, err := core.NewServiceClient(core.Airtime, creds, fetcher, core.NewOptions(opts...))
	if err != nil {
		return nil, err
	}

	return &API{ServiceClient: client}, nil
}

var _ core.ServiceAPI = (*API)(nil)

// Accounts returns the account operations.
func (a *API) Accounts() *AccountOperations {
	return &AccountOperations{res: a.Resource()}
}

// Countries returns the country operations.
func (a *API) Countries() *CountryOperations {
	return &CountryOperations{res: a.Resource()}
}

// Operators returns the operator operations.
func (a *API) Operators() *OperatorOperations {
	return &OperatorOperations{res: a.Resource()}
}

// Discounts returns the discount (commission) operations.
func (a *API) Discounts() *DiscountOperations {
	return &DiscountOperations{res: a.Resource()}
}

// Promotions returns the promotion operations.
func (a *API) Promotions() *PromotionOperations {
	return &PromotionOperations{res: a.Resource()}
}

// Topups returns the topup operations.
func (a *API) Topups() *TopupOperations {
	return &TopupOperations{res: a.Resource()}
}

// Reports returns the report operations.
func (a *API) Reports() *ReportOperations {
	return &ReportOperations{res: a.Resource()}
}

func idSegment(id int64) string {
	return strconv.FormatInt(id, 10)
}

func countrySegment(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
