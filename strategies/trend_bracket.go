package strategies

import (
	"fmt"
	"math"

	"github.com/rustyeddy/bracketbot/broker"
	"github.com/rustyeddy/bracketbot/indicators"
	"github.com/rustyeddy/bracketbot/market"
	"github.com/rustyeddy/bracketbot/risk"
)

// TrendBracket enters with the entry-timeframe candle when the EMAs and the
// higher timeframe agree, and brackets the order around the previous
// higher-timeframe swing.
type TrendBracket struct {
	TrendBracketConfig
	meta market.InstrumentMeta
}

type TrendBracketConfig struct {
	Symbol string  `json:"symbol" yaml:"symbol"`
	Volume float64 `json:"volume" yaml:"volume"`

	FastPeriod int `json:"fast_period" yaml:"fast_period"`
	SlowPeriod int `json:"slow_period" yaml:"slow_period"`
	ATRPeriod  int `json:"atr_period" yaml:"atr_period"`
	MinBars    int `json:"min_bars" yaml:"min_bars"`

	RewardRatio float64 `json:"reward_ratio" yaml:"reward_ratio"`
	// StopATR is the ATR multiple added beyond the swing.
	StopATR float64 `json:"stop_atr" yaml:"stop_atr"`
	// StopBuffer is a fixed price distance added on top of StopATR.
	StopBuffer float64 `json:"stop_buffer" yaml:"stop_buffer"`

	BodyFilter       bool    `json:"body_filter" yaml:"body_filter"`
	MinBodyFraction  float64 `json:"min_body_fraction" yaml:"min_body_fraction"`
	VWAPFilter       bool    `json:"vwap_filter" yaml:"vwap_filter"`
	VolumeFilter     bool    `json:"volume_filter" yaml:"volume_filter"`
	VolumeMultiplier float64 `json:"volume_multiplier" yaml:"volume_multiplier"`
}

func TrendBracketDefaults() TrendBracketConfig {
	return TrendBracketConfig{
		Symbol:           "XAUUSD",
		Volume:           0.10,
		FastPeriod:       9,
		SlowPeriod:       21,
		ATRPeriod:        14,
		MinBars:          50,
		RewardRatio:      2.5,
		StopATR:          0.1,
		MinBodyFraction:  0.5,
		VolumeMultiplier: 1.0,
	}
}

func (c TrendBracketConfig) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if c.Volume <= 0 {
		return fmt.Errorf("volume must be positive")
	}
	if c.FastPeriod <= 0 || c.SlowPeriod <= 0 || c.FastPeriod >= c.SlowPeriod {
		return fmt.Errorf("require 0 < fast_period < slow_period (got %d/%d)", c.FastPeriod, c.SlowPeriod)
	}
	if c.ATRPeriod <= 0 {
		return fmt.Errorf("atr_period must be positive")
	}
	if c.MinBars <= c.ATRPeriod {
		return fmt.Errorf("min_bars must exceed atr_period (got %d <= %d)", c.MinBars, c.ATRPeriod)
	}
	if c.RewardRatio <= 0 {
		return fmt.Errorf("reward_ratio must be positive")
	}
	if c.StopATR < 0 || c.StopBuffer < 0 {
		return fmt.Errorf("stop_atr and stop_buffer must not be negative")
	}
	if c.BodyFilter && (c.MinBodyFraction <= 0 || c.MinBodyFraction > 1) {
		return fmt.Errorf("min_body_fraction must be in (0, 1]")
	}
	if c.VolumeFilter && c.VolumeMultiplier <= 0 {
		return fmt.Errorf("volume_multiplier must be positive")
	}
	return nil
}

func NewTrendBracket(cfg TrendBracketConfig) (*TrendBracket, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("trend-bracket: %w", err)
	}
	return &TrendBracket{
		TrendBracketConfig: cfg,
		meta:               market.Instrument(cfg.Symbol),
	}, nil
}

func (s *TrendBracket) Name() string {
	return fmt.Sprintf("trend-bracket(%s EMA %d/%d ATR %d)", s.Symbol, s.FastPeriod, s.SlowPeriod, s.ATRPeriod)
}

// Predicates are the individual entry conditions, kept for logging.
type Predicates struct {
	ThrottleOK    bool
	Bullish       bool
	Bearish       bool
	BodyOK        bool
	EMAUp         bool
	EMADown       bool
	AboveVWAP     bool
	BelowVWAP     bool
	HigherBullish bool
	HigherBearish bool
	VolumeOK      bool
}

func (p Predicates) String() string {
	return fmt.Sprintf("throttle=%t candle=%s ema=%s htf=%s body=%t volume=%t vwap=%s",
		p.ThrottleOK,
		dir(p.Bullish, p.Bearish, "bull", "bear"),
		dir(p.EMAUp, p.EMADown, "up", "down"),
		dir(p.HigherBullish, p.HigherBearish, "bull", "bear"),
		p.BodyOK,
		p.VolumeOK,
		dir(p.AboveVWAP, p.BelowVWAP, "above", "below"),
	)
}

func dir(up, down bool, u, d string) string {
	switch {
	case up:
		return u
	case down:
		return d
	}
	return "flat"
}

func (s *TrendBracket) Evaluate(in Input) Evaluation {
	ev := Evaluation{Signal: None}

	if len(in.Entry) < s.MinBars || len(in.Higher) < 2 {
		ev.Reason = fmt.Sprintf("insufficient data (entry %d/%d, higher %d/2)", len(in.Entry), s.MinBars, len(in.Higher))
		return ev
	}

	frame, err := indicators.Compute(in.Entry, indicators.FrameParams{
		Fast:      s.FastPeriod,
		Slow:      s.SlowPeriod,
		ATRPeriod: s.ATRPeriod,
	})
	if err != nil {
		ev.Reason = err.Error()
		return ev
	}

	n := len(in.Entry)
	c := in.Entry[n-1]
	prev := in.Entry[n-2]
	htf := in.Higher[len(in.Higher)-1]
	htfPrev := in.Higher[len(in.Higher)-2]
	pt := frame.Last()

	ev.Close = c.Close
	ev.Point = pt

	p := Predicates{
		ThrottleOK:    in.Throttle.Allowed,
		Bullish:       c.Bullish(),
		Bearish:       c.Bearish(),
		BodyOK:        !s.BodyFilter || c.BodyFraction() >= s.MinBodyFraction,
		EMAUp:         pt.FastEMA > pt.SlowEMA,
		EMADown:       pt.FastEMA < pt.SlowEMA,
		AboveVWAP:     c.Close > pt.VWAP,
		BelowVWAP:     c.Close < pt.VWAP,
		HigherBullish: htf.Bullish(),
		HigherBearish: htf.Bearish(),
		VolumeOK:      !s.VolumeFilter || c.Volume >= prev.Volume*s.VolumeMultiplier,
	}
	ev.Predicates = p

	long := p.Bullish && p.BodyOK && p.EMAUp && (!s.VWAPFilter || p.AboveVWAP) && p.HigherBullish && p.VolumeOK
	short := p.Bearish && p.BodyOK && p.EMADown && (!s.VWAPFilter || p.BelowVWAP) && p.HigherBearish && p.VolumeOK

	if !p.ThrottleOK {
		ev.Reason = "throttled: " + in.Throttle.Reason()
		return ev
	}
	if !long && !short {
		ev.Reason = "no signal"
		return ev
	}
	if math.IsNaN(pt.ATR) || (s.VWAPFilter && math.IsNaN(pt.VWAP)) {
		ev.Reason = "indicators not ready"
		return ev
	}

	buffer := s.StopATR*pt.ATR + s.StopBuffer
	var sig Signal
	var sl, tp float64
	if long {
		sig = Long
		sl = htfPrev.Low - buffer
		tp = c.Close + (c.Close-sl)*s.RewardRatio
		if !(sl < c.Close && c.Close < tp) {
			ev.Reason = fmt.Sprintf("invalid long bracket (sl %.5f close %.5f)", sl, c.Close)
			return ev
		}
	} else {
		sig = Short
		sl = htfPrev.High + buffer
		tp = c.Close - (sl-c.Close)*s.RewardRatio
		if !(tp < c.Close && c.Close < sl) {
			ev.Reason = fmt.Sprintf("invalid short bracket (sl %.5f close %.5f)", sl, c.Close)
			return ev
		}
	}

	ev.Signal = sig
	ev.Reason = string(sig) + " signal"
	ev.PlannedRR = risk.RR(c.Close, sl, tp)
	ev.PlannedRisk = risk.PlannedRisk(s.Volume*s.meta.ContractSize, c.Close, sl, 1)
	ev.Order = &broker.MarketOrderRequest{
		Symbol:     s.Symbol,
		Side:       sig.Side(),
		Volume:     s.Volume,
		StopLoss:   broker.Float(sl),
		TakeProfit: broker.Float(tp),
	}
	return ev
}
