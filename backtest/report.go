package backtest

import (
	"fmt"
	"io"
	"time"
)

func (r Result) WinRate() float64 {
	closed := r.Wins + r.Losses
	if closed == 0 {
		return 0
	}
	return float64(r.Wins) / float64(closed) * 100
}

func (r Result) NetPL() float64 { return r.Balance - r.StartBalance }

func PrintResult(w io.Writer, r Result) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, "Strategy:      %s\n", r.Strategy)
	fmt.Fprintf(w, "Start:         %s\n", r.Start.Format(time.RFC3339))
	fmt.Fprintf(w, "End:           %s\n", r.End.Format(time.RFC3339))
	fmt.Fprintf(w, "Bars:          %d\n", r.Bars)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Signals:       %d\n", r.Signals)
	fmt.Fprintf(w, "Closed:        %d\n", len(r.Trades))
	fmt.Fprintf(w, "Still open:    %d\n", r.Open)
	fmt.Fprintf(w, "Wins:          %d\n", r.Wins)
	fmt.Fprintf(w, "Losses:        %d\n", r.Losses)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", r.WinRate())

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start Balance: %.2f\n", r.StartBalance)
	fmt.Fprintf(w, "End Balance:   %.2f\n", r.Balance)
	fmt.Fprintf(w, "Net P/L:       %.2f\n", r.NetPL())
	fmt.Fprintln(w)
}
