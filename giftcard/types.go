package giftcard

import (
	"slices"

	"github.com/Reloadly/reloadly-sdk-go/core"
)

// TransactionStatus is the processing state of an order.
type TransactionStatus string

const (
	StatusProcessing TransactionStatus = "PROCESSING"
	StatusPending    TransactionStatus = "PENDING"
	StatusSuccessful TransactionStatus = "SUCCESSFUL"
	StatusRefunded   TransactionStatus = "REFUNDED"
	StatusFailed     TransactionStatus = "FAILED"
)

var statuses = []TransactionStatus{StatusProcessing, StatusPending, StatusSuccessful, StatusRefunded, StatusFailed}

func (s TransactionStatus) validate() error {
	if !slices.Contains(statuses, s) {
		return &core.ValidationError{Field: "Status", Message: "'Status' must be one of PROCESSING, PENDING, SUCCESSFUL, REFUNDED, FAILED!"}
	}

	return nil
}

// DenominationType tells whether a product accepts any amount in a range or
// only fixed amounts.
type DenominationType string

const (
	DenominationRange DenominationType = "RANGE"
	DenominationFixed DenominationType = "FIXED"
)

// Brand is the issuer of a gift card.
type Brand struct {
	ID   int64  `json:"brandId"`
	Name string `json:"brandName"`
}

// Country is a country a product is sold in.
type Country struct {
	ISOName string `json:"isoName"`
	Name    string `json:"name"`
	FlagURL string `json:"flagUrl"`
}

// RedeemInstructionSummary is the short and long form of a redemption
// guide embedded in a product.
type RedeemInstructionSummary struct {
	Concise string `json:"concise"`
	Verbose string `json:"verbose"`
}

// RedeemInstruction explains how to redeem a brand's cards.
type RedeemInstruction struct {
	BrandID   int64  `json:"brandId"`
	BrandName string `json:"brandName"`
	Concise   string `json:"concise"`
	Verbose   string `json:"verbose"`
}

// Product is a gift card product.
type Product struct {
	ID                                     int64                     `json:"productId"`
	Name                                   string                    `json:"productName"`
	Global                                 bool                      `json:"global"`
	SenderFee                              float64                   `json:"senderFee"`
	DiscountPercentage                     float64                   `json:"discountPercentage"`
	DenominationType                       DenominationType          `json:"denominationType"`
	RecipientCurrencyCode                  string                    `json:"recipientCurrencyCode"`
	MinRecipientDenomination               float64                   `json:"minRecipientDenomination,omitempty"`
	MaxRecipientDenomination               float64                   `json:"maxRecipientDenomination,omitempty"`
	SenderCurrencyCode                     string                    `json:"senderCurrencyCode"`
	MinSenderDenomination                  float64                   `json:"minSenderDenomination,omitempty"`
	MaxSenderDenomination                  float64                   `json:"maxSenderDenomination,omitempty"`
	FixedRecipientDenominations            []float64                 `json:"fixedRecipientDenominations,omitempty"`
	FixedSenderDenominations               []float64                 `json:"fixedSenderDenominations,omitempty"`
	FixedRecipientToSenderDenominationsMap map[string]float64        `json:"fixedRecipientToSenderDenominationsMap,omitempty"`
	DenominationsInfo                      map[string]string         `json:"denominationsInfo,omitempty"`
	LogoURLs                               []string                  `json:"logoUrls,omitempty"`
	Brand                                  Brand                     `json:"brand"`
	Country                                Country                   `json:"country"`
	RedeemInstruction                      *RedeemInstructionSummary `json:"redeemInstruction,omitempty"`
}

// DiscountProduct is the product summary embedded in a discount.
type DiscountProduct struct {
	ID          int64  `json:"productId"`
	Name        string `json:"productName"`
	Global      bool   `json:"global"`
	CountryCode string `json:"countryCode"`
}

// Discount is the discount applied to a product's orders.
type Discount struct {
	Percentage float64         `json:"discountPercentage"`
	Product    DiscountProduct `json:"product"`
}

// TransactionProduct is the product summary embedded in a transaction.
type TransactionProduct struct {
	ID           int64   `json:"productId"`
	Name         string  `json:"productName"`
	Quantity     int     `json:"quantity"`
	CountryCode  string  `json:"countryCode"`
	CurrencyCode string  `json:"currencyCode"`
	UnitPrice    float64 `json:"unitPrice"`
	TotalPrice   float64 `json:"totalPrice"`
	Brand        Brand   `json:"brand"`
}

// Transaction is a placed order.
type Transaction struct {
	ID               int64              `json:"transactionId"`
	Amount           float64            `json:"amount"`
	Discount         float64            `json:"discount"`
	Fee              float64            `json:"fee"`
	SMSFee           float64            `json:"smsFee"`
	CurrencyCode     string             `json:"currencyCode"`
	RecipientEmail   string             `json:"recipientEmail"`
	RecipientPhone   string             `json:"recipientPhone"`
	CustomIdentifier string             `json:"customIdentifier"`
	Status           TransactionStatus  `json:"status"`
	Product          TransactionProduct `json:"product"`
	Date             core.Time          `json:"transactionCreatedTime"`
}

// CardInfo is a redeemed card.
type CardInfo struct {
	CardNumber string `json:"cardNumber"`
	PinCode    string `json:"pinCode"`
}
