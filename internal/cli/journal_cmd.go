package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/bracketbot/journal"
	"github.com/rustyeddy/bracketbot/market"
)

func newJournalCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Report on the order and equity journal",
	}
	cmd.AddCommand(
		newJournalOrdersCmd(rc),
		newJournalOrderCmd(rc),
		newJournalEquityCmd(rc),
	)
	return cmd
}

// openReportJournal opens the SQLite journal and resolves --day in the
// server zone. An empty day means today.
func openReportJournal(cmd *cobra.Command, rc *RootConfig, day string) (*journal.SQLite, time.Time, time.Time, error) {
	cfg, err := rc.load(cmd)
	if err != nil {
		return nil, time.Time{}, time.Time{}, err
	}
	if cfg.Journal.Type != "sqlite" {
		return nil, time.Time{}, time.Time{}, fmt.Errorf("reports need the sqlite journal (type is %q)", cfg.Journal.Type)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, time.Time{}, time.Time{}, err
	}

	d := market.DateOf(time.Now().In(loc))
	if day != "" {
		if d, err = market.ParseDate(day); err != nil {
			return nil, time.Time{}, time.Time{}, fmt.Errorf("bad --day: %w", err)
		}
	}
	start, end := d.Bounds(loc)

	j, err := journal.NewSQLite(cfg.Journal.DBPath)
	if err != nil {
		return nil, time.Time{}, time.Time{}, fmt.Errorf("open db: %w", err)
	}
	return j, start, end, nil
}

func newJournalOrdersCmd(rc *RootConfig) *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List the orders of one day as an Org table",
		RunE: func(cmd *cobra.Command, args []string) error {
			j, start, end, err := openReportJournal(cmd, rc, day)
			if err != nil {
				return err
			}
			defer j.Close()

			recs, err := j.ListOrdersBetween(start, end)
			if err != nil {
				return fmt.Errorf("query orders: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), journal.FormatOrdersOrg("Orders "+market.DateOf(start).String(), recs))
			return nil
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "Day as YYYY-MM-DD in the server zone (default today)")
	return cmd
}

func newJournalOrderCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "order <id>",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, _, _, err := openReportJournal(cmd, rc, "")
			if err != nil {
				return err
			}
			defer j.Close()

			rec, err := j.GetOrder(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), journal.FormatOrderOrg(rec))
			return nil
		},
	}
}

func newJournalEquityCmd(rc *RootConfig) *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:   "equity",
		Short: "List the equity snapshots of one day",
		RunE: func(cmd *cobra.Command, args []string) error {
			j, start, end, err := openReportJournal(cmd, rc, day)
			if err != nil {
				return err
			}
			defer j.Close()

			snaps, err := j.ListEquityBetween(start, end)
			if err != nil {
				return fmt.Errorf("query equity: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), journal.FormatEquityOrg(snaps, start.Location()))
			return nil
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "Day as YYYY-MM-DD in the server zone (default today)")
	return cmd
}
