package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Reloadly/reloadly-sdk-go/core"
)

type tokenInfo struct {
	Target    string     `json:"target"`
	Account   string     `json:"account,omitempty"`
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	SavedAt   *time.Time `json:"savedAt,omitempty"`
}

type tokenFlags struct {
	service string
	refresh bool
	clear   bool
	list    bool
}

func newTokenCommand(a *app) *cobra.Command {
	var f tokenFlags

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print, refresh or clear cached access tokens",
		Example: `  reloadly token
  reloadly token --service giftcard --refresh
  reloadly token --list
  reloadly token --clear`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f.list {
				return a.listTokens()
			}

			svc, err := parseServices(f.service)
			if err != nil {
				return err
			}

			if f.clear {
				return a.clearTokens(svc)
			}

			tokens, err := a.retrieveTokens(cmd.Context(), svc, f.refresh)
			if err != nil {
				return err
			}

			return a.render(tokens)
		},
	}

	cmd.Flags().StringVar(&f.service, "service", "all", "airtime, giftcard or all")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "Fetch new tokens even if cached ones are valid")
	cmd.Flags().BoolVar(&f.clear, "clear", false, "Remove cached tokens of the configured environment")
	cmd.Flags().BoolVar(&f.list, "list", false, "List every cached token")

	return cmd
}

func (a *app) serviceAPIs(svc services) ([]core.ServiceAPI, error) {
	var apis []core.ServiceAPI

	if svc.airtime {
		api, err := a.airtimeAPI()
		if err != nil {
			return nil, err
		}

		apis = append(apis, api)
	}

	if svc.giftcard {
		api, err := a.giftcardAPI()
		if err != nil {
			return nil, err
		}

		apis = append(apis, api)
	}

	return apis, nil
}

// retrieveTokens obtains a token for each selected service concurrently.
func (a *app) retrieveTokens(ctx context.Context, svc services, refresh bool) ([]tokenInfo, error) {
	apis, err := a.serviceAPIs(svc)
	if err != nil {
		return nil, err
	}

	out := make([]tokenInfo, len(apis))

	g, gctx := errgroup.WithContext(ctx)

	for i, api := range apis {
		target := api.ResolveServiceTarget(a.cfg.Deployment)

		g.Go(func() error {
			if refresh {
				if err := api.RefreshAccessToken(gctx, nil); err != nil {
					return fmt.Errorf("refreshing %s token: %w", target, err)
				}
			}

			raw, err := api.RetrieveAccessToken(gctx)
			if err != nil {
				return fmt.Errorf("retrieving %s token: %w", target, err)
			}

			info := tokenInfo{Target: target.String(), Token: raw}
			if a.cfg.ClientID != "" {
				info.Account = core.NewStoreKey(target, a.cfg.ClientID).Account
			}
			if tok, ok := core.ValidateAccessToken(raw, time.Now()); ok {
				info.ExpiresAt = &tok.ExpiresAt
			}

			out[i] = info

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

func (a *app) clearTokens(svc services) error {
	var targets []core.ServiceTarget

	if svc.airtime {
		targets = append(targets, core.ResolveTarget(core.Airtime, a.cfg.Deployment))
	}

	if svc.giftcard {
		targets = append(targets, core.ResolveTarget(core.Giftcard, a.cfg.Deployment))
	}

	for _, target := range targets {
		if err := a.store.Delete(core.NewStoreKey(target, a.cfg.ClientID)); err != nil {
			return fmt.Errorf("clearing %s token: %w", target, err)
		}

		a.logger.Info("cleared cached token", "target", target.String())
	}

	return a.listTokens()
}

func (a *app) listTokens() error {
	stored, err := a.store.Tokens()
	if err != nil {
		return err
	}

	out := make([]tokenInfo, 0, len(stored))

	for _, st := range stored {
		info := tokenInfo{Target: st.Target, Account: st.Account, Token: st.Token, SavedAt: &st.SavedAt}
		if tok, ok := core.ValidateAccessToken(st.Token, time.Now()); ok {
			info.ExpiresAt = &tok.ExpiresAt
		}

		out = append(out, info)
	}

	return a.render(out)
}
