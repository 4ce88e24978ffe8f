package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/bracketbot/broker/fxopen"
	"github.com/rustyeddy/bracketbot/config"
	"github.com/rustyeddy/bracketbot/logging"
	"github.com/rustyeddy/bracketbot/market"
)

func newClient(cmd *cobra.Command, rc *RootConfig) (*fxopen.Client, *config.Config, error) {
	cfg, err := rc.load(cmd)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.RequireCredentials(); err != nil {
		return nil, nil, err
	}
	fxcfg, err := cfg.FXOpenConfig()
	if err != nil {
		return nil, nil, err
	}
	client, err := fxopen.NewClient(fxcfg, fxopen.WithLogger(logging.Discard()))
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}

func newCandlesCmd(rc *RootConfig) *cobra.Command {
	var (
		tf     string
		count  int
		symbol string
	)

	cmd := &cobra.Command{
		Use:   "candles",
		Short: "Fetch bar history and print it as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			timeframe, err := market.ParseTimeframe(tf)
			if err != nil {
				return err
			}
			if count <= 0 {
				return fmt.Errorf("--count must be positive")
			}

			client, cfg, err := newClient(cmd, rc)
			if err != nil {
				return err
			}
			if symbol == "" {
				symbol = cfg.Symbol
			}

			bars, err := client.GetCandles(cmd.Context(), symbol, timeframe, count)
			if err != nil {
				return err
			}
			_, err = market.WriteCandlesCSV(cmd.OutOrStdout(), symbol, timeframe, bars)
			return err
		},
	}

	cmd.Flags().StringVar(&tf, "tf", "M5", "Timeframe (M1, M5, M15, M30, H1, H4, D1, W1, MN1)")
	cmd.Flags().IntVar(&count, "count", 50, "Number of bars")
	cmd.Flags().StringVar(&symbol, "symbol", "", "Symbol (defaults to the configured one)")
	return cmd
}

func newAccountCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "account",
		Short: "Print account balance and equity",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(cmd, rc)
			if err != nil {
				return err
			}
			acct, err := client.GetAccount(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Balance: $%.2f | Equity: $%.2f\n", acct.Balance, acct.Equity)
			return nil
		},
	}
}
