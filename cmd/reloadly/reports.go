package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Reloadly/reloadly-sdk-go/airtime"
	"github.com/Reloadly/reloadly-sdk-go/core"
	"github.com/Reloadly/reloadly-sdk-go/giftcard"
	cerrors "github.com/Reloadly/reloadly-sdk-go/internal/errors"
)

const dateFlagLayout = "2006-01-02"

// services selects which APIs a command queries.
type services struct {
	airtime  bool
	giftcard bool
}

func parseServices(s string) (services, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return services{airtime: true, giftcard: true}, nil
	case "airtime":
		return services{airtime: true}, nil
	case "giftcard", "giftcards":
		return services{giftcard: true}, nil
	}

	return services{}, fmt.Errorf("%w %q (want airtime, giftcard or all)", cerrors.ErrUnknownService, s)
}

type reportFlags struct {
	service string
	from    string
	to      string
	page    int
	size    int
}

type reports struct {
	Airtime  *core.Page[airtime.TopupTransaction] `json:"airtime,omitempty"`
	Giftcard *core.Page[giftcard.Transaction]     `json:"giftcard,omitempty"`
}

func parseDateFlag(name, v string) (time.Time, error) {
	t, err := time.Parse(dateFlagLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing --%s %q: want YYYY-MM-DD", name, v)
	}

	return t, nil
}

func newReportsCommand(a *app) *cobra.Command {
	var f reportFlags

	cmd := &cobra.Command{
		Use:     "reports",
		Short:   "List airtime and gift card transactions",
		Example: `  reloadly reports --from 2024-01-01 --to 2024-01-31 --service airtime`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := parseServices(f.service)
			if err != nil {
				return err
			}

			var from, to time.Time

			if f.from != "" {
				if from, err = parseDateFlag("from", f.from); err != nil {
					return err
				}
			}

			if f.to != "" {
				if to, err = parseDateFlag("to", f.to); err != nil {
					return err
				}
			}

			out, err := a.fetchReports(cmd.Context(), svc, f, from, to)
			if err != nil {
				return err
			}

			return a.render(out)
		},
	}

	cmd.Flags().StringVar(&f.service, "service", "all", "airtime, giftcard or all")
	cmd.Flags().StringVar(&f.from, "from", "", "First day, YYYY-MM-DD (needs --to)")
	cmd.Flags().StringVar(&f.to, "to", "", "Last day, YYYY-MM-DD (needs --from)")
	cmd.Flags().IntVar(&f.page, "page", 1, "Page number")
	cmd.Flags().IntVar(&f.size, "size", 20, "Page size")

	return cmd
}

// fetchReports queries the selected services concurrently.
func (a *app) fetchReports(ctx context.Context, svc services, f reportFlags, from, to time.Time) (reports, error) {
	var out reports

	g, gctx := errgroup.WithContext(ctx)

	if svc.airtime {
		filter := airtime.NewTransactionHistoryFilter().WithPage(f.page, f.size)
		if !from.IsZero() {
			filter = filter.StartDate(from)
		}

		if !to.IsZero() {
			filter = filter.EndDate(to)
		}

		api, err := a.airtimeAPI()
		if err != nil {
			return out, err
		}

		g.Go(func() error {
			req, err := api.Reports().Transactions().List(gctx, filter)
			if err != nil {
				return err
			}

			page, err := core.ExecuteRefreshing(gctx, api, req)
			if err != nil {
				return fmt.Errorf("airtime transactions: %w", err)
			}

			out.Airtime = &page

			return nil
		})
	}

	if svc.giftcard {
		filter := giftcard.NewTransactionFilter().WithPage(f.page, f.size)
		if !from.IsZero() {
			filter = filter.StartDate(from)
		}

		if !to.IsZero() {
			filter = filter.EndDate(to)
		}

		api, err := a.giftcardAPI()
		if err != nil {
			return out, err
		}

		g.Go(func() error {
			req, err := api.Transactions().List(gctx, filter)
			if err != nil {
				return err
			}

			page, err := core.ExecuteRefreshing(gctx, api, req)
			if err != nil {
				return fmt.Errorf("giftcard transactions: %w", err)
			}

			out.Giftcard = &page

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return reports{}, err
	}

	return out, nil
}
