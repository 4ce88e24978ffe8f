// Package backtest replays recorded bars through a BarStrategy with the same
// throttle the live loop uses.
//
// The fill model is simple:
//   - market entries fill at the signal bar's close
//   - every fill is an independent bracket; several may be open at once
//   - stop and take are checked against each later bar's high and low
//   - a bar that touches both exits at the stop
//
// One bar is one loop iteration, so the cooldown counts bars.
package backtest

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rustyeddy/bracketbot/journal"
	"github.com/rustyeddy/bracketbot/market"
	"github.com/rustyeddy/bracketbot/risk"
	"github.com/rustyeddy/bracketbot/strategies"
)

type Options struct {
	StartingBalance float64
	// EntryWindow and HigherWindow cap how many bars the strategy sees, like
	// the live candle counts.
	EntryWindow  int
	HigherWindow int
	Throttle     risk.ThrottleConfig
	Location     *time.Location
	// CloseEnd closes anything still open at the last close.
	CloseEnd bool
}

type Trade struct {
	EntryTime  time.Time
	ExitTime   time.Time
	Side       market.Side
	Volume     float64
	Entry      float64
	Exit       float64
	StopLoss   float64
	TakeProfit float64
	PNL        float64
	Reason     string
}

type Result struct {
	Strategy string
	Start    time.Time
	End      time.Time

	StartBalance float64
	Balance      float64

	Bars    int
	Signals int
	Trades  []Trade
	Open    int
	Wins    int
	Losses  int
}

type Engine struct {
	Strategy strategies.BarStrategy
	Options  Options
	// Journal receives one filled order per entry. Optional.
	Journal journal.Journal
}

type position struct {
	trade Trade
	sign  float64
}

func (e *Engine) Run(symbol string, entry, higher []market.Candle) (Result, error) {
	if e.Strategy == nil {
		return Result{}, errors.New("backtest: Strategy is required")
	}
	if len(entry) == 0 {
		return Result{}, errors.New("backtest: no entry bars")
	}
	opts := e.Options
	if opts.EntryWindow <= 0 {
		opts.EntryWindow = 300
	}
	if opts.HigherWindow <= 0 {
		opts.HigherWindow = 100
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	j := e.Journal
	if j == nil {
		j = journal.Nop{}
	}

	meta := market.Instrument(symbol)
	thr := risk.NewThrottle(opts.Throttle, opts.Location)

	res := Result{
		Strategy:     e.Strategy.Name(),
		Start:        entry[0].Time,
		End:          entry[len(entry)-1].Time,
		StartBalance: opts.StartingBalance,
		Balance:      opts.StartingBalance,
		Bars:         len(entry),
	}
	var open []position

	closeAt := func(p position, t time.Time, px float64, reason string) {
		tr := p.trade
		tr.ExitTime = t
		tr.Exit = px
		tr.Reason = reason
		tr.PNL = p.sign * (px - tr.Entry) * tr.Volume * meta.ContractSize
		res.Balance += tr.PNL
		switch {
		case tr.PNL > 0:
			res.Wins++
		case tr.PNL < 0:
			res.Losses++
		}
		res.Trades = append(res.Trades, tr)
	}

	for i, c := range entry {
		// 1) exits on this bar
		kept := open[:0]
		for _, p := range open {
			if px, reason, hit := checkExit(p, c); hit {
				closeAt(p, c.Time, px, reason)
				continue
			}
			kept = append(kept, p)
		}
		open = kept

		// 2) decision on the bar's close
		win := entry[max(0, i+1-opts.EntryWindow) : i+1]
		hwin := higherAsOf(higher, c.Time, opts.HigherWindow)
		thr.Observe(c.Time)

		ev := e.Strategy.Evaluate(strategies.Input{Entry: win, Higher: hwin, Throttle: thr.Check()})
		if ev.Signal != strategies.None && ev.Order != nil && ev.Order.StopLoss != nil && ev.Order.TakeProfit != nil {
			res.Signals++
			thr.RecordFill()

			sign := 1.0
			if ev.Order.Side == market.Sell {
				sign = -1
			}
			p := position{sign: sign, trade: Trade{
				EntryTime:  c.Time,
				Side:       ev.Order.Side,
				Volume:     ev.Order.Volume,
				Entry:      c.Close,
				StopLoss:   *ev.Order.StopLoss,
				TakeProfit: *ev.Order.TakeProfit,
			}}
			open = append(open, p)

			if err := j.RecordOrder(journal.OrderRecord{
				Time:       c.Time,
				Symbol:     symbol,
				Side:       ev.Order.Side,
				Volume:     ev.Order.Volume,
				StopLoss:   ev.Order.StopLoss,
				TakeProfit: ev.Order.TakeProfit,
				FillPrice:  c.Close,
				Status:     journal.StatusFilled,
				Detail:     ev.Reason,
			}); err != nil {
				return res, fmt.Errorf("backtest: journal: %w", err)
			}
		}
		thr.EndIteration()
	}

	if opts.CloseEnd {
		last := entry[len(entry)-1]
		for _, p := range open {
			closeAt(p, last.Time, last.Close, "END")
		}
		open = nil
	}
	res.Open = len(open)
	return res, nil
}

// higherAsOf returns up to n higher-timeframe bars that had opened by t.
// The newest one may still be forming, as it would be live.
func higherAsOf(higher []market.Candle, t time.Time, n int) []market.Candle {
	k := sort.Search(len(higher), func(i int) bool { return higher[i].Time.After(t) })
	return higher[max(0, k-n):k]
}

// checkExit tests stop and take on one bar, stop first.
func checkExit(p position, c market.Candle) (float64, string, bool) {
	tr := p.trade
	var stopHit, takeHit bool
	if p.sign > 0 {
		stopHit = c.Low <= tr.StopLoss
		takeHit = c.High >= tr.TakeProfit
	} else {
		stopHit = c.High >= tr.StopLoss
		takeHit = c.Low <= tr.TakeProfit
	}
	switch {
	case stopHit && takeHit:
		return tr.StopLoss, "STOP&TAKE same bar (stop-first)", true
	case stopHit:
		return tr.StopLoss, "STOP", true
	case takeHit:
		return tr.TakeProfit, "TAKE", true
	}
	return 0, "", false
}
