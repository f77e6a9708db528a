package giftcard

import (
	"context"
	"strings"

	"github.com/Reloadly/reloadly-sdk-go/core"
)

// Phone is a recipient phone number with its ISO 3166-1 alpha-2 country
// code.
type Phone struct {
	PhoneNumber string `json:"phoneNumber"`
	CountryCode string `json:"countryCode"`
}

// OrderRequest places an order for gift cards. Either RecipientEmail or
// RecipientPhone must be set.
type OrderRequest struct {
	Quantity         int     `json:"quantity"`
	ProductID        int64   `json:"productId"`
	SenderName       string  `json:"senderName"`
	UnitPrice        float64 `json:"unitPrice"`
	RecipientEmail   string  `json:"recipientEmail,omitempty"`
	RecipientPhone   *Phone  `json:"recipientPhoneDetails,omitempty"`
	CustomIdentifier string  `json:"customIdentifier,omitempty"`
}

// Validate checks the order without sending it.
func (r OrderRequest) Validate() error {
	if err := core.GreaterThanZero(r.Quantity, "Quantity"); err != nil {
		return err
	}

	if err := core.GreaterThanZero(r.ProductID, "Product id"); err != nil {
		return err
	}

	if err := core.NotBlank(r.SenderName, "Sender name"); err != nil {
		return err
	}

	if err := core.GreaterThanZero(r.UnitPrice, "Unit price"); err != nil {
		return err
	}

	if r.RecipientPhone == nil && strings.TrimSpace(r.RecipientEmail) == "" {
		return &core.ValidationError{Field: "Recipient", Message: "Either recipient email or recipient phone is required"}
	}

	if r.RecipientPhone != nil {
		if err := core.ValidPhone(r.RecipientPhone.PhoneNumber, "Recipient phone number"); err != nil {
			return err
		}

		if err := core.ValidCountryCode(r.RecipientPhone.CountryCode, "Recipient phone country code"); err != nil {
			return err
		}
	}

	if strings.TrimSpace(r.RecipientEmail) != "" {
		return core.ValidEmail(r.RecipientEmail, "Recipient email")
	}

	return nil
}

// OrderOperations places and redeems gift card orders.
type OrderOperations struct {
	res core.Resource
}

// Place returns a request placing the order. A custom identifier is
// generated when the order has none.
func (o *OrderOperations) Place(ctx context.Context, req OrderRequest) (*core.Request[Transaction], error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.CustomIdentifier) == "" {
		req.CustomIdentifier = core.NewCustomIdentifier()
	}

	if req.RecipientPhone != nil {
		p := *req.RecipientPhone
		p.CountryCode = countrySegment(p.CountryCode)
		req.RecipientPhone = &p
	}

	return core.Post[Transaction](ctx, o.res, o.res.Endpoint(nil, pathOrders), req)
}

// Redeem returns a request for the codes of the cards bought in a
// transaction.
func (o *OrderOperations) Redeem(ctx context.Context, transactionID int64) (*core.Request[[]CardInfo], error) {
	if err := core.GreaterThanZero(transactionID, "Transaction id"); err != nil {
		return nil, err
	}

	return core.Get[[]CardInfo](ctx, o.res, o.res.Endpoint(nil, pathOrders, pathTransactions, idSegment(transactionID), pathCards))
}
