package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Reloadly/reloadly-sdk-go/airtime"
)

func newBalanceCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the airtime account balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := a.airtimeAPI()
			if err != nil {
				return err
			}

			req, err := api.Accounts().GetBalance(cmd.Context())

			return run(cmd.Context(), a, api, req, err)
		},
	}
}

func newCountriesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "countries [ISO]",
		Short: "List airtime countries, or show one by ISO code",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.airtimeAPI()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			if len(args) == 1 {
				req, err := api.Countries().GetByCode(ctx, args[0])
				return run(ctx, a, api, req, err)
			}

			req, err := api.Countries().List(ctx)

			return run(ctx, a, api, req, err)
		},
	}
}

type operatorFlags struct {
	id               int64
	country          string
	phone            string
	page             int
	size             int
	suggestedAmounts bool
	fxAmount         float64
}

func newOperatorsCommand(a *app) *cobra.Command {
	var f operatorFlags

	cmd := &cobra.Command{
		Use:   "operators",
		Short: "List, look up or auto-detect mobile operators",
		Example: `  reloadly operators --page 1 --size 20
  reloadly operators --country NG
  reloadly operators --phone 08031234567 --country NG
  reloadly operators --id 341 --fx-amount 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := a.airtimeAPI()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			ops := api.Operators()

			filter := airtime.NewOperatorFilter().
				IncludeSuggestedAmounts(f.suggestedAmounts)

			switch {
			case f.id > 0 && f.fxAmount > 0:
				req, err := ops.CalculateFxRate(ctx, f.id, f.fxAmount)
				return run(ctx, a, api, req, err)
			case f.id > 0:
				req, err := ops.GetByID(ctx, f.id, filter)
				return run(ctx, a, api, req, err)
			case f.phone != "":
				req, err := ops.AutoDetect(ctx, f.phone, f.country, filter)
				return run(ctx, a, api, req, err)
			case f.country != "":
				req, err := ops.ListByCountryCode(ctx, f.country, filter)
				return run(ctx, a, api, req, err)
			}

			if f.page > 0 || f.size > 0 {
				filter = filter.WithPage(max(f.page, 1), max(f.size, 20))
			}

			req, err := ops.List(ctx, filter)

			return run(ctx, a, api, req, err)
		},
	}

	cmd.Flags().Int64Var(&f.id, "id", 0, "Operator id")
	cmd.Flags().StringVar(&f.country, "country", "", "ISO 3166-1 alpha-2 country code")
	cmd.Flags().StringVar(&f.phone, "phone", "", "Detect the operator of this phone number (needs --country)")
	cmd.Flags().IntVar(&f.page, "page", 0, "Page number")
	cmd.Flags().IntVar(&f.size, "size", 0, "Page size")
	cmd.Flags().BoolVar(&f.suggestedAmounts, "suggested-amounts", false, "Include suggested amounts")
	cmd.Flags().Float64Var(&f.fxAmount, "fx-amount", 0, "Convert this amount with the operator's FX rate (needs --id)")

	return cmd
}

type topupFlags struct {
	operatorID     int64
	amount         float64
	phone          string
	country        string
	email          string
	senderPhone    string
	senderCountry  string
	useLocalAmount bool
	customID       string
	async          bool
}

func (f topupFlags) request() airtime.TopupRequest {
	req := airtime.TopupRequest{
		Amount:           f.amount,
		OperatorID:       f.operatorID,
		RecipientEmail:   f.email,
		UseLocalAmount:   f.useLocalAmount,
		CustomIdentifier: f.customID,
	}

	if f.phone != "" || f.email == "" {
		req.RecipientPhone = &airtime.Phone{Number: f.phone, CountryCode: f.country}
	}

	if f.senderPhone != "" {
		req.SenderPhone = &airtime.Phone{Number: f.senderPhone, CountryCode: f.senderCountry}
	}

	return req
}

func newTopupCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topup",
		Short: "Send airtime top-ups and check their status",
	}

	cmd.AddCommand(newTopupSendCommand(a), newTopupStatusCommand(a))

	return cmd
}

func newTopupSendCommand(a *app) *cobra.Command {
	var f topupFlags

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Top up a phone number or email recipient",
		Example: `  reloadly topup send --operator 341 --amount 10 --phone 08031234567 --country NG
  reloadly topup send --operator 341 --amount 10 --email jane@example.com --async`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := a.airtimeAPI()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			if f.async {
				req, err := api.Topups().SendAsync(ctx, f.request())
				return run(ctx, a, api, req, err)
			}

			req, err := api.Topups().Send(ctx, f.request())

			return run(ctx, a, api, req, err)
		},
	}

	cmd.Flags().Int64Var(&f.operatorID, "operator", 0, "Operator id")
	cmd.Flags().Float64Var(&f.amount, "amount", 0, "Amount to send")
	cmd.Flags().StringVar(&f.phone, "phone", "", "Recipient phone number")
	cmd.Flags().StringVar(&f.country, "country", "", "Recipient phone country code")
	cmd.Flags().StringVar(&f.email, "email", "", "Recipient email (instead of a phone)")
	cmd.Flags().StringVar(&f.senderPhone, "sender-phone", "", "Sender phone number")
	cmd.Flags().StringVar(&f.senderCountry, "sender-country", "", "Sender phone country code")
	cmd.Flags().BoolVar(&f.useLocalAmount, "local-amount", false, "Amount is in the recipient's currency")
	cmd.Flags().StringVar(&f.customID, "custom-id", "", "Idempotency identifier (generated when empty)")
	cmd.Flags().BoolVar(&f.async, "async", false, "Queue the top-up and return immediately")

	return cmd
}

func newTopupStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status TRANSACTION_ID",
		Short: "Show the status of an asynchronous top-up",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("parsing transaction id %q: %w", args[0], err)
			}

			api, err := a.airtimeAPI()
			if err != nil {
				return err
			}

			req, err := api.Topups().GetStatus(cmd.Context(), id)

			return run(cmd.Context(), a, api, req, err)
		},
	}
}
