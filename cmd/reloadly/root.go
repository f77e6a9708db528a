package main

import (
	"github.com/spf13/cobra"

	"github.com/Reloadly/reloadly-sdk-go/core"
)

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reloadly",
		Short: "Reloadly airtime and gift card client",
		Long: `reloadly talks to the Reloadly Airtime and Gift Cards APIs.

Credentials and settings come from RELOADLY_* environment variables or a
.env file in the working directory. Access tokens are cached between runs
in RELOADLY_STATE_PATH (default ~/.reloadly/state.db).`,
		Version:       core.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}

	cmd.PersistentFlags().StringVarP(&a.format, "output", "o", a.format, "Output format: json or yaml")

	cmd.AddCommand(
		newBalanceCommand(a),
		newCountriesCommand(a),
		newOperatorsCommand(a),
		newTopupCommand(a),
		newProductsCommand(a),
		newOrderCommand(a),
		newReportsCommand(a),
		newTokenCommand(a),
	)

	return cmd
}
