package strategies

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/bracketbot/broker"
	"github.com/rustyeddy/bracketbot/indicators"
	"github.com/rustyeddy/bracketbot/market"
	"github.com/rustyeddy/bracketbot/risk"
)

type Signal string

const (
	None  Signal = "none"
	Long  Signal = "long"
	Short Signal = "short"
)

// Side maps a signal to the order side; None has no side.
func (s Signal) Side() market.Side {
	switch s {
	case Long:
		return market.Buy
	case Short:
		return market.Sell
	}
	return ""
}

// Input is everything a bar strategy sees on one iteration.
type Input struct {
	Entry    []market.Candle
	Higher   []market.Candle
	Throttle risk.Decision
}

// Evaluation is the outcome of one decision. Order is set only for Long/Short.
type Evaluation struct {
	Signal     Signal
	Reason     string
	Predicates Predicates
	Close      float64
	Point      indicators.Point
	Order      *broker.MarketOrderRequest

	PlannedRR   float64
	PlannedRisk float64
}

// BarStrategy decides on the newest closed bar.
type BarStrategy interface {
	Name() string
	Evaluate(in Input) Evaluation
}

// StrategyByName builds a strategy for the run loop.
func StrategyByName(name string, cfg TrendBracketConfig) (BarStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "noop", "none":
		return NoopStrategy{}, nil
	case "", "trend-bracket", "trendbracket":
		return NewTrendBracket(cfg)
	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: trend-bracket, noop)", name)
	}
}

// NoopStrategy never trades. It lets the loop run as a monitor.
type NoopStrategy struct{}

func (NoopStrategy) Name() string { return "noop" }

func (NoopStrategy) Evaluate(in Input) Evaluation {
	_ = in
	return Evaluation{Signal: None, Reason: "noop"}
}
