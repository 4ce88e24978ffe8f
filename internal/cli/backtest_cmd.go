package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/bracketbot/backtest"
	"github.com/rustyeddy/bracketbot/market"
	"github.com/rustyeddy/bracketbot/strategies"
)

func newBacktestCmd(rc *RootConfig) *cobra.Command {
	var (
		entryPath  string
		higherPath string
		balance    float64
		closeEnd   bool
	)

	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Replay recorded bars (from the candles command) through the configured strategy",
		RunE: func(cmd *cobra.Command, args []string) error {
			if entryPath == "" || higherPath == "" {
				return fmt.Errorf("--entry and --higher are required")
			}
			if balance <= 0 {
				return fmt.Errorf("--balance must be positive")
			}

			cfg, err := rc.load(cmd)
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			strat, err := strategies.StrategyByName(cfg.Strategy.Name, cfg.StrategyParams())
			if err != nil {
				return err
			}

			entry, err := readCandles(entryPath)
			if err != nil {
				return err
			}
			higher, err := readCandles(higherPath)
			if err != nil {
				return err
			}

			e := &backtest.Engine{
				Strategy: strat,
				Options: backtest.Options{
					StartingBalance: balance,
					EntryWindow:     cfg.Loop.EntryCount,
					HigherWindow:    cfg.Loop.HigherCount,
					Throttle:        cfg.ThrottleConfig(),
					Location:        loc,
					CloseEnd:        closeEnd,
				},
			}
			res, err := e.Run(cfg.Symbol, entry, higher)
			if err != nil {
				return err
			}
			backtest.PrintResult(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().StringVar(&entryPath, "entry", "", "Entry timeframe candle CSV")
	cmd.Flags().StringVar(&higherPath, "higher", "", "Higher timeframe candle CSV")
	cmd.Flags().Float64Var(&balance, "balance", 10000, "Starting balance")
	cmd.Flags().BoolVar(&closeEnd, "close-end", false, "Close open trades at the last bar")
	return cmd
}

func readCandles(path string) ([]market.Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bars, err := market.ReadCandlesCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bars, nil
}
