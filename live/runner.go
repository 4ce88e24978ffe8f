// Package live drives the decision loop against a real broker: connect,
// poll candles, evaluate, order, and publish status until cancelled.
package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rustyeddy/bracketbot/broker"
	"github.com/rustyeddy/bracketbot/journal"
	"github.com/rustyeddy/bracketbot/metrics"
	"github.com/rustyeddy/bracketbot/notify"
	"github.com/rustyeddy/bracketbot/retry"
	"github.com/rustyeddy/bracketbot/risk"
	"github.com/rustyeddy/bracketbot/status"
	"github.com/rustyeddy/bracketbot/strategies"
)

type State string

const (
	Disconnected State = "disconnected"
	Connected    State = "connected"
	Evaluating   State = "evaluating"
	Ordering     State = "ordering"
	Throttling   State = "throttling"
)

// Runner owns the throttle; nothing else may touch it while Run is active.
type Runner struct {
	Config   Config
	Broker   broker.Broker
	Strategy strategies.BarStrategy
	Throttle *risk.Throttle

	// Optional collaborators. Nil values get no-op defaults.
	Journal  journal.Journal
	Notifier notify.Notifier
	Status   status.Store
	Metrics  *metrics.Metrics
	Log      *slog.Logger

	// Now and Sleep are swapped in tests.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error

	state     State
	startedAt time.Time
	account   broker.Account
	message   string
	lastEval  strategies.Evaluation
	lastOrder string
}

// Outcome describes one iteration.
type Outcome struct {
	// Evaluated is false when the iteration stopped for lack of data.
	Evaluated  bool
	Evaluation strategies.Evaluation
	Fill       *broker.OrderFill
	OrderErr   error
	// Wait is how long the loop should pause before the next iteration.
	Wait time.Duration
}

func (r *Runner) init() error {
	if r.Broker == nil {
		return errors.New("live: Broker is required")
	}
	if r.Strategy == nil {
		return errors.New("live: Strategy is required")
	}
	if r.Throttle == nil {
		return errors.New("live: Throttle is required")
	}
	if err := r.Config.Validate(); err != nil {
		return fmt.Errorf("live: %w", err)
	}
	if r.Config.Location == nil {
		r.Config.Location = time.UTC
	}
	if r.Journal == nil {
		r.Journal = journal.Nop{}
	}
	if r.Notifier == nil {
		r.Notifier = notify.Nop{}
	}
	if r.Status == nil {
		r.Status = status.NewMemory(0)
	}
	if r.Log == nil {
		r.Log = slog.Default()
	}
	if r.Now == nil {
		r.Now = time.Now
	}
	if r.Sleep == nil {
		r.Sleep = retry.Sleep
	}
	if r.state == "" {
		r.state = Disconnected
	}
	return nil
}

// Run blocks until ctx is cancelled. Iteration failures never end it.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.init(); err != nil {
		return err
	}
	r.startedAt = r.Now()

	r.Log.Info("bot started", "symbol", r.Config.Symbol, "strategy", r.Strategy.Name())
	r.notify(ctx, "BOT STARTED", fmt.Sprintf("%s bot started, connecting...", r.Config.Symbol))
	r.setMessage(ctx, "Starting...")
	if err := r.Sleep(ctx, r.Config.StartupDelay); err != nil {
		return nil
	}

	if err := r.connect(ctx); err != nil {
		return nil
	}

	for {
		out, err := r.safeStep(ctx)
		wait := out.Wait
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.Log.Error("iteration failed", "err", err)
			r.Metrics.IterationError()
			r.setMessage(ctx, "Error: "+err.Error())
			wait = r.Config.ErrorBackoff
		}
		if err := r.Sleep(ctx, wait); err != nil {
			r.Log.Info("bot stopping")
			return nil
		}
	}
}

// connect polls the account until it answers.
func (r *Runner) connect(ctx context.Context) error {
	r.state = Disconnected
	for {
		acct, err := r.Broker.GetAccount(ctx)
		if err == nil {
			r.account = acct
			r.state = Connected
			r.Metrics.Connected(true)
			r.Metrics.Account(acct.Balance, acct.Equity)
			r.Log.Info("connected", "balance", acct.Balance, "equity", acct.Equity)
			r.notify(ctx, "BOT IS LIVE", fmt.Sprintf("Balance: $%.2f", acct.Balance))
			r.journalEquity(acct)
			r.setMessage(ctx, fmt.Sprintf("CONNECTED! Balance: $%.2f | Equity: $%.2f", acct.Balance, acct.Equity))
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		r.Metrics.Connected(false)
		r.Log.Warn("connecting...", "err", err)
		r.setMessage(ctx, "Connecting...")
		if err := r.Sleep(ctx, r.Config.ConnectBackoff); err != nil {
			return err
		}
	}
}

func (r *Runner) safeStep(ctx context.Context) (out Outcome, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("iteration panic: %v", rec)
		}
	}()
	return r.Step(ctx)
}

// Step runs one iteration without sleeping. A returned error means the
// iteration was abandoned before touching the throttle.
func (r *Runner) Step(ctx context.Context) (Outcome, error) {
	if err := r.init(); err != nil {
		return Outcome{}, err
	}
	cfg := r.Config

	entry, err := r.Broker.GetCandles(ctx, cfg.Symbol, cfg.EntryTimeframe, cfg.EntryCount)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s candles: %w", cfg.EntryTimeframe, err)
	}
	higher, err := r.Broker.GetCandles(ctx, cfg.Symbol, cfg.HigherTimeframe, cfg.HigherCount)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s candles: %w", cfg.HigherTimeframe, err)
	}

	if len(entry) < cfg.MinBars || len(higher) < 2 {
		r.Log.Info("waiting for data", "entry", len(entry), "min", cfg.MinBars, "higher", len(higher))
		r.setMessage(ctx, "Waiting for data...")
		return Outcome{Wait: cfg.DataBackoff}, nil
	}

	now := r.Now().In(cfg.Location)
	if r.Throttle.Observe(now) {
		r.Log.Info("new trading day", "date", r.Throttle.State().LastResetDate.String())
	}

	r.state = Evaluating
	ev := r.Strategy.Evaluate(strategies.Input{
		Entry:    entry,
		Higher:   higher,
		Throttle: r.Throttle.Check(),
	})
	r.lastEval = ev
	r.Metrics.Decision(string(ev.Signal))
	out := Outcome{Evaluated: true, Evaluation: ev, Wait: cfg.PollInterval}

	if ev.Signal != strategies.None && ev.Order != nil {
		r.Log.Info(strings.ToUpper(string(ev.Signal))+" SIGNAL",
			"close", ev.Close, "sl", deref(ev.Order.StopLoss), "tp", deref(ev.Order.TakeProfit),
			"rr", ev.PlannedRR, "predicates", ev.Predicates.String())
		out.Fill, out.OrderErr = r.submit(ctx, *ev.Order)
	} else {
		r.Log.Info("No signal", "reason", ev.Reason, "predicates", ev.Predicates.String())
	}

	r.Throttle.EndIteration()
	if r.Throttle.CanTrade() {
		r.state = Evaluating
	} else {
		r.state = Throttling
	}
	r.message = ev.Reason
	r.publish(ctx)
	return out, nil
}

// submit places the order. A failure leaves the throttle alone.
func (r *Runner) submit(ctx context.Context, req broker.MarketOrderRequest) (*broker.OrderFill, error) {
	r.state = Ordering
	now := r.Now()
	rec := journal.OrderRecord{
		Time:       now,
		Symbol:     req.Symbol,
		Side:       req.Side,
		Volume:     req.Volume,
		StopLoss:   req.StopLoss,
		TakeProfit: req.TakeProfit,
	}

	fill, err := r.Broker.CreateMarketOrder(ctx, req)
	if err != nil {
		r.Log.Error("order failed", "side", req.Side, "err", err)
		r.Metrics.Order(string(req.Side), "failed")
		rec.Status = journal.StatusFailed
		rec.Detail = err.Error()
		r.journalOrder(rec)
		r.lastOrder = fmt.Sprintf("%s failed: %v", req.Side, err)
		return nil, err
	}

	r.Throttle.RecordFill()
	side := strings.ToUpper(string(fill.Side))
	r.Log.Info("order filled", "side", fill.Side, "price", fill.Price, "volume", fill.Volume)
	r.Metrics.Order(string(req.Side), "filled")
	r.notify(ctx, "TRADE "+side, fmt.Sprintf("%s %s<br>Entry: %.5f<br>SL: %.5f<br>TP: %.5f",
		req.Symbol, side, fill.Price, deref(req.StopLoss), deref(req.TakeProfit)))

	rec.Time = fill.Time
	if rec.Time.IsZero() {
		rec.Time = now
	}
	rec.Status = journal.StatusFilled
	rec.FillPrice = fill.Price
	r.journalOrder(rec)
	r.lastOrder = fmt.Sprintf("%s %.2f @ %.5f", side, fill.Volume, fill.Price)
	return &fill, nil
}

// Snapshot is the current view of the loop.
func (r *Runner) Snapshot() status.Snapshot {
	var st risk.ThrottleState
	if r.Throttle != nil {
		st = r.Throttle.State()
	}
	s := status.Snapshot{
		Symbol:            r.Config.Symbol,
		State:             string(r.state),
		Message:           r.message,
		Balance:           r.account.Balance,
		Equity:            r.account.Equity,
		TradesToday:       st.TradesToday,
		CooldownRemaining: st.CooldownRemaining,
		LastResetDate:     st.LastResetDate.String(),
		LastOrder:         r.lastOrder,
		StartedAt:         r.startedAt,
	}
	if r.lastEval.Reason != "" {
		s.LastSignal = string(r.lastEval.Signal)
		s.LastDecision = r.lastEval.Reason
	}
	if r.Now != nil {
		s.UpdatedAt = r.Now()
	}
	return s
}

func (r *Runner) setMessage(ctx context.Context, msg string) {
	r.message = msg
	r.publish(ctx)
}

func (r *Runner) publish(ctx context.Context) {
	snap := r.Snapshot()
	r.Metrics.Throttle(snap.TradesToday, snap.CooldownRemaining)
	if err := r.Status.Save(ctx, snap); err != nil {
		r.Log.Warn("status save failed", "err", err)
	}
}

func (r *Runner) notify(ctx context.Context, subject, body string) {
	if err := r.Notifier.Notify(ctx, notify.Message{Subject: subject, Body: body}); err != nil {
		r.Log.Warn("notify failed", "subject", subject, "err", err)
	}
}

func (r *Runner) journalOrder(rec journal.OrderRecord) {
	if err := r.Journal.RecordOrder(rec); err != nil {
		r.Log.Warn("journal order failed", "err", err)
	}
}

func (r *Runner) journalEquity(acct broker.Account) {
	snap := journal.EquitySnapshot{Time: r.Now(), Balance: acct.Balance, Equity: acct.Equity}
	if err := r.Journal.RecordEquity(snap); err != nil {
		r.Log.Warn("journal equity failed", "err", err)
	}
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
