package airtime

import (
	"context"
	"strings"

	"github.com/Reloadly/reloadly-sdk-go/core"
)

const (
	pathTopups       = "topups"
	pathTopupsAsync  = "topups-async"
	pathStatus       = "status"
	pathReports      = "reports"
	pathTransactions = "transactions"
)

// Phone is a phone number with the ISO 3166-1 alpha-2 code of its country.
type Phone struct {
	Number      string `json:"number"`
	CountryCode string `json:"countryCode"`
}

// TopupRequest describes a topup. Exactly one recipient is expected:
// RecipientPhone for airtime, or RecipientEmail for operators that top up
// by email (e.g. Nauta Cuba).
type TopupRequest struct {
	Amount           float64 `json:"amount"`
	OperatorID       int64   `json:"operatorId"`
	RecipientPhone   *Phone  `json:"recipientPhone,omitempty"`
	RecipientEmail   string  `json:"recipientEmail,omitempty"`
	SenderPhone      *Phone  `json:"senderPhone,omitempty"`
	UseLocalAmount   bool    `json:"useLocalAmount"`
	CustomIdentifier string  `json:"customIdentifier,omitempty"`
}

// Validate checks the request the way the topup endpoint would, without
// sending it.
func (r TopupRequest) Validate() error {
	if err := core.GreaterThanZero(r.Amount, "Amount"); err != nil {
		return err
	}

	if err := core.GreaterThanZero(r.OperatorID, "Operator id"); err != nil {
		return err
	}

	if r.SenderPhone != nil {
		if err := validatePhone(r.SenderPhone, "Sender phone"); err != nil {
			return err
		}
	}

	if r.RecipientPhone == nil && strings.TrimSpace(r.RecipientEmail) != "" {
		return core.ValidEmail(r.RecipientEmail, "Recipient email")
	}

	return validatePhone(r.RecipientPhone, "Recipient phone")
}

func validatePhone(p *Phone, prefix string) error {
	if p == nil {
		return &core.ValidationError{Field: prefix, Message: "'" + prefix + "' cannot be null!"}
	}

	if err := core.ValidPhone(p.Number, prefix+" number"); err != nil {
		return err
	}

	return core.ValidCountryCode(p.CountryCode, prefix+" country code")
}

// withDefaults returns a copy carrying a generated custom identifier when
// none was set and upper-cased country codes.
func (r TopupRequest) withDefaults() TopupRequest {
	if strings.TrimSpace(r.CustomIdentifier) == "" {
		r.CustomIdentifier = core.NewCustomIdentifier()
	}

	if r.RecipientPhone != nil {
		p := *r.RecipientPhone
		p.CountryCode = countrySegment(p.CountryCode)
		r.RecipientPhone = &p
	}

	if r.SenderPhone != nil {
		p := *r.SenderPhone
		p.CountryCode = countrySegment(p.CountryCode)
		r.SenderPhone = &p
	}

	return r
}

// TopupOperations sends topups.
type TopupOperations struct {
	res core.Resource
}

// Send returns a request performing the topup synchronously. A custom
// identifier is generated when the request has none, so a retried request
// can be matched against the transaction reports.
func (o *TopupOperations) Send(ctx context.Context, req TopupRequest) (*core.Request[TopupTransaction], error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	return core.Post[TopupTransaction](ctx, o.res, o.res.Endpoint(nil, pathTopups), req.withDefaults())
}

// SendAsync returns a request queueing the topup. Poll GetStatus with the
// returned transaction id.
func (o *TopupOperations) SendAsync(ctx context.Context, req TopupRequest) (*core.Request[AsyncTopupResponse], error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	return core.Post[AsyncTopupResponse](ctx, o.res, o.res.Endpoint(nil, pathTopupsAsync), req.withDefaults())
}

// GetStatus returns a request for the state of a queued topup.
func (o *TopupOperations) GetStatus(ctx context.Context, transactionID int64) (*core.Request[TopupStatusResponse], error) {
	if err := core.GreaterThanZero(transactionID, "Transaction id"); err != nil {
		return nil, err
	}

	return core.Get[TopupStatusResponse](ctx, o.res, o.res.Endpoint(nil, pathTopups, idSegment(transactionID), pathStatus))
}

// ReportOperations groups the reporting endpoints.
type ReportOperations struct {
	res core.Resource
}

func (o *ReportOperations) Transactions() *TransactionHistoryOperations {
	return &TransactionHistoryOperations{res: o.res}
}

// TransactionHistoryOperations reads past topups.
type TransactionHistoryOperations struct {
	res core.Resource
}

// List returns a request for a page of topup transactions. f may be nil;
// when it bounds the dates, both bounds must be set and ordered.
func (o *TransactionHistoryOperations) List(ctx context.Context, f core.Filter) (*core.Request[core.Page[TopupTransaction]], error) {
	if err := core.FilterError(f); err != nil {
		return nil, err
	}

	if err := core.QueryOf(f).DateRange(ParamStartDate, ParamEndDate); err != nil {
		return nil, err
	}

	return core.Get[core.Page[TopupTransaction]](ctx, o.res, o.res.Endpoint(f, pathTopups, pathReports, pathTransactions))
}

func (o *TransactionHistoryOperations) GetByID(ctx context.Context, id int64) (*core.Request[TopupTransaction], error) {
	if err := core.GreaterThanZero(id, "Transaction id"); err != nil {
		return nil, err
	}

	return core.Get[TopupTransaction](ctx, o.res, o.res.Endpoint(nil, pathTopups, pathReports, pathTransactions, idSegment(id)))
}
