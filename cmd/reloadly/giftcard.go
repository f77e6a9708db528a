package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Reloadly/reloadly-sdk-go/giftcard"
)

type productFlags struct {
	id         int64
	country    string
	name       string
	page       int
	size       int
	simplified bool
	discount   bool
	redeem     bool
}

func newProductsCommand(a *app) *cobra.Command {
	var f productFlags

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List gift card products, or show one with its discount or redeem instructions",
		Example: `  reloadly products --country US --simplified
  reloadly products --id 5
  reloadly products --id 5 --discount`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := a.giftcardAPI()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			switch {
			case f.id > 0 && f.discount:
				req, err := api.Discounts().GetByProductID(ctx, f.id)
				return run(ctx, a, api, req, err)
			case f.id > 0:
				req, err := api.Products().GetByID(ctx, f.id)
				return run(ctx, a, api, req, err)
			case f.redeem:
				req, err := api.RedeemInstructions().List(ctx)
				return run(ctx, a, api, req, err)
			case f.discount:
				req, err := api.Discounts().List(ctx)
				return run(ctx, a, api, req, err)
			}

			filter := giftcard.NewProductFilter().Simplified(f.simplified)
			if f.name != "" {
				filter = filter.ProductName(f.name)
			}

			if f.country != "" {
				req, err := api.Products().ListByCountryCode(ctx, f.country, filter)
				return run(ctx, a, api, req, err)
			}

			if f.page > 0 || f.size > 0 {
				filter = filter.WithPage(max(f.page, 1), max(f.size, 20))
			}

			req, err := api.Products().List(ctx, filter)

			return run(ctx, a, api, req, err)
		},
	}

	cmd.Flags().Int64Var(&f.id, "id", 0, "Product id")
	cmd.Flags().StringVar(&f.country, "country", "", "ISO 3166-1 alpha-2 country code")
	cmd.Flags().StringVar(&f.name, "name", "", "Filter by product name")
	cmd.Flags().IntVar(&f.page, "page", 0, "Page number")
	cmd.Flags().IntVar(&f.size, "size", 0, "Page size")
	cmd.Flags().BoolVar(&f.simplified, "simplified", false, "Return the short product form")
	cmd.Flags().BoolVar(&f.discount, "discount", false, "Show discounts instead of products")
	cmd.Flags().BoolVar(&f.redeem, "redeem-instructions", false, "Show redeem instructions of every brand")

	return cmd
}

type orderFlags struct {
	productID  int64
	quantity   int
	unitPrice  float64
	senderName string
	email      string
	phone      string
	country    string
	customID   string
}

func (f orderFlags) request() giftcard.OrderRequest {
	req := giftcard.OrderRequest{
		Quantity:         f.quantity,
		ProductID:        f.productID,
		SenderName:       f.senderName,
		UnitPrice:        f.unitPrice,
		RecipientEmail:   f.email,
		CustomIdentifier: f.customID,
	}

	if f.phone != "" {
		req.RecipientPhone = &giftcard.Phone{PhoneNumber: f.phone, CountryCode: f.country}
	}

	return req
}

func newOrderCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Order gift cards and redeem their codes",
	}

	cmd.AddCommand(newOrderPlaceCommand(a), newOrderRedeemCommand(a))

	return cmd
}

func newOrderPlaceCommand(a *app) *cobra.Command {
	var f orderFlags

	cmd := &cobra.Command{
		Use:     "place",
		Short:   "Place a gift card order",
		Example: `  reloadly order place --product 5 --quantity 1 --price 25 --sender John --email jane@example.com`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := a.giftcardAPI()
			if err != nil {
				return err
			}

			req, err := api.Orders().Place(cmd.Context(), f.request())

			return run(cmd.Context(), a, api, req, err)
		},
	}

	cmd.Flags().Int64Var(&f.productID, "product", 0, "Product id")
	cmd.Flags().IntVar(&f.quantity, "quantity", 1, "Number of cards")
	cmd.Flags().Float64Var(&f.unitPrice, "price", 0, "Unit price in the product's currency")
	cmd.Flags().StringVar(&f.senderName, "sender", "", "Sender name shown to the recipient")
	cmd.Flags().StringVar(&f.email, "email", "", "Recipient email")
	cmd.Flags().StringVar(&f.phone, "phone", "", "Recipient phone number")
	cmd.Flags().StringVar(&f.country, "country", "", "Recipient phone country code")
	cmd.Flags().StringVar(&f.customID, "custom-id", "", "Idempotency identifier (generated when empty)")

	return cmd
}

func newOrderRedeemCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "redeem TRANSACTION_ID",
		Short: "Show the card numbers and PINs of an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("parsing transaction id %q: %w", args[0], err)
			}

			api, err := a.giftcardAPI()
			if err != nil {
				return err
			}

			req, err := api.Orders().Redeem(cmd.Context(), id)

			return run(cmd.Context(), a, api, req, err)
		},
	}
}
