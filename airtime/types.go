package airtime

import "github.com/Reloadly/reloadly-sdk-go/core"

// TransactionStatus is the processing state of a topup.
type TransactionStatus string

const (
	StatusProcessing TransactionStatus = "PROCESSING"
	StatusSuccessful TransactionStatus = "SUCCESSFUL"
	StatusRefunded   TransactionStatus = "REFUNDED"
	StatusFailed     TransactionStatus = "FAILED"
)

// DenominationType tells whether an operator accepts any amount in a range
// or only fixed amounts.
type DenominationType string

const (
	DenominationRange DenominationType = "RANGE"
	DenominationFixed DenominationType = "FIXED"
)

// AccountBalance is the balance of the Reloadly account.
type AccountBalance struct {
	Balance      float64   `json:"balance"`
	CurrencyCode string    `json:"currencyCode"`
	CurrencyName string    `json:"currencyName"`
	UpdatedAt    core.Time `json:"updatedAt"`
}

// Country is a country served by the Airtime API.
type Country struct {
	ISOName        string   `json:"isoName"`
	Name           string   `json:"name"`
	CurrencyCode   string   `json:"currencyCode"`
	CurrencyName   string   `json:"currencyName"`
	CurrencySymbol string   `json:"currencySymbol"`
	Flag           string   `json:"flag"`
	CallingCodes   []string `json:"callingCodes"`
}

// SimplifiedCountry is the country summary embedded in other resources.
type SimplifiedCountry struct {
	ISOName string `json:"isoName"`
	Name    string `json:"name"`
}

// FxRate is an operator's exchange rate.
type FxRate struct {
	Rate         float64 `json:"rate"`
	CurrencyCode string  `json:"currencyCode"`
}

// GeographicalRechargePlan lists the amounts available in one region of an
// operator that prices by location.
type GeographicalRechargePlan struct {
	LocationCode                  string            `json:"locationCode"`
	LocationName                  string            `json:"locationName"`
	FixedAmounts                  []float64         `json:"fixedAmounts,omitempty"`
	LocalAmounts                  []float64         `json:"localAmounts,omitempty"`
	FixedAmountsPlanNames         map[string]string `json:"fixedAmountsPlanNames,omitempty"`
	FixedAmountsDescriptions      map[string]string `json:"fixedAmountsDescriptions,omitempty"`
	LocalFixedAmountsPlanNames    map[string]string `json:"localFixedAmountsPlanNames,omitempty"`
	LocalFixedAmountsDescriptions map[string]string `json:"localFixedAmountsDescriptions,omitempty"`
}

// Operator is a mobile network operator.
type Operator struct {
	ID                                int64                      `json:"id"`
	Name                              string                     `json:"name"`
	Bundle                            bool                       `json:"bundle"`
	Data                              bool                       `json:"data"`
	PinBased                          bool                       `json:"pin"`
	SupportsLocalAmounts              bool                       `json:"supportsLocalAmounts"`
	SupportsGeographicalRechargePlans bool                       `json:"supportsGeographicalRechargePlans"`
	DenominationType                  DenominationType           `json:"denominationType"`
	SenderCurrencyCode                string                     `json:"senderCurrencyCode"`
	SenderCurrencySymbol              string                     `json:"senderCurrencySymbol"`
	DestinationCurrencyCode           string                     `json:"destinationCurrencyCode"`
	DestinationCurrencySymbol         string                     `json:"destinationCurrencySymbol"`
	InternationalDiscount             float64                    `json:"internationalDiscount"`
	LocalDiscount                     float64                    `json:"localDiscount"`
	MostPopularAmount                 float64                    `json:"mostPopularAmount,omitempty"`
	MostPopularLocalAmount            float64                    `json:"mostPopularLocalAmount,omitempty"`
	Country                           SimplifiedCountry          `json:"country"`
	Fx                                FxRate                     `json:"fx"`
	SuggestedAmounts                  []float64                  `json:"suggestedAmounts,omitempty"`
	SuggestedAmountsMap               map[string]float64         `json:"suggestedAmountsMap,omitempty"`
	MinAmount                         float64                    `json:"minAmount,omitempty"`
	MaxAmount                         float64                    `json:"maxAmount,omitempty"`
	LocalMinAmount                    float64                    `json:"localMinAmount,omitempty"`
	LocalMaxAmount                    float64                    `json:"localMaxAmount,omitempty"`
	FixedAmounts                      []float64                  `json:"fixedAmounts,omitempty"`
	LocalFixedAmounts                 []float64                  `json:"localFixedAmounts,omitempty"`
	FixedAmountsDescriptions          map[string]string          `json:"fixedAmountsDescriptions,omitempty"`
	LocalFixedAmountsDescriptions     map[string]string          `json:"localFixedAmountsDescriptions,omitempty"`
	GeographicalRechargePlans         []GeographicalRechargePlan `json:"geographicalRechargePlans,omitempty"`
	LogoURLs                          []string                   `json:"logoUrls,omitempty"`
	Promotions                        []Promotion                `json:"promotions,omitempty"`
}

// OperatorFxRate is the result of an FX rate calculation.
type OperatorFxRate struct {
	OperatorID   int64   `json:"id"`
	OperatorName string  `json:"name"`
	FxRate       float64 `json:"fxRate"`
	CurrencyCode string  `json:"currencyCode"`
}

// SimplifiedOperator is the operator summary embedded in other resources.
type SimplifiedOperator struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CountryCode string `json:"countryCode"`
	Data        bool   `json:"data"`
	Bundle      bool   `json:"bundle"`
}

// Discount is the commission earned on an operator's topups.
type Discount struct {
	Percentage              float64            `json:"percentage"`
	InternationalPercentage float64            `json:"internationalPercentage"`
	LocalPercentage         float64            `json:"localPercentage"`
	UpdatedAt               core.Time          `json:"updatedAt"`
	Operator                SimplifiedOperator `json:"operator"`
}

// Promotion is an operator promotion.
type Promotion struct {
	ID                 int64     `json:"id"`
	OperatorID         int64     `json:"operatorId"`
	Title              string    `json:"title"`
	Title2             string    `json:"title2"`
	Description        string    `json:"description"`
	StartDate          core.Time `json:"startDate"`
	EndDate            core.Time `json:"endDate"`
	Denominations      string    `json:"denominations"`
	LocalDenominations string    `json:"localDenominations"`
}

// TransactionBalance is the account balance before and after a topup.
type TransactionBalance struct {
	OldBalance   float64   `json:"oldBalance"`
	NewBalance   float64   `json:"newBalance"`
	CurrencyCode string    `json:"currencyCode"`
	CurrencyName string    `json:"currencyName"`
	UpdatedAt    core.Time `json:"updatedAt"`
}

// PinDetail is returned for PIN based operators.
type PinDetail struct {
	Serial   string  `json:"serial"`
	Info1    string  `json:"info1"`
	Info2    string  `json:"info2"`
	Info3    string  `json:"info3"`
	Value    float64 `json:"value"`
	Code     string  `json:"code"`
	IVR      string  `json:"ivr"`
	Validity string  `json:"validity"`
}

// TopupTransaction is a completed or pending topup.
type TopupTransaction struct {
	ID                          int64               `json:"transactionId"`
	OperatorTransactionID       string              `json:"operatorTransactionId"`
	CustomIdentifier            string              `json:"customIdentifier"`
	OperatorID                  int64               `json:"operatorId"`
	RecipientPhone              string              `json:"recipientPhone"`
	RecipientEmail              string              `json:"recipientEmail"`
	SenderPhone                 string              `json:"senderPhone"`
	CountryCode                 string              `json:"countryCode"`
	OperatorName                string              `json:"operatorName"`
	RequestedAmount             float64             `json:"requestedAmount"`
	Discount                    float64             `json:"discount"`
	DiscountCurrencyCode        string              `json:"discountCurrencyCode"`
	RequestedAmountCurrencyCode string              `json:"requestedAmountCurrencyCode"`
	DeliveredAmount             float64             `json:"deliveredAmount"`
	DeliveredAmountCurrencyCode string              `json:"deliveredAmountCurrencyCode"`
	Date                        core.Time           `json:"transactionDate"`
	BalanceInfo                 *TransactionBalance `json:"balanceInfo,omitempty"`
	PinDetail                   *PinDetail          `json:"pinDetail,omitempty"`
	Status                      TransactionStatus   `json:"status,omitempty"`
}

// AsyncTopupResponse acknowledges a topup queued with SendAsync.
type AsyncTopupResponse struct {
	TransactionID int64 `json:"transactionId"`
}

// TopupStatusResponse reports the state of a queued topup.
type TopupStatusResponse struct {
	Code        string            `json:"code"`
	Message     string            `json:"message"`
	Status      TransactionStatus `json:"status"`
	Transaction *TopupTransaction `json:"transaction,omitempty"`
}
