package indicators

import (
	"fmt"
	"math"

	"github.com/rustyeddy/bracketbot/market"
)

type FrameParams struct {
	Fast      int
	Slow      int
	ATRPeriod int
}

// Frame holds the derived series for one bar window. Every slice has the
// same length as the candles it was computed from.
type Frame struct {
	FastEMA []float64
	SlowEMA []float64
	ATR     []float64
	VWAP    []float64
}

// Point is the frame at one index.
type Point struct {
	FastEMA float64
	SlowEMA float64
	ATR     float64
	VWAP    float64
}

// Compute derives the full frame from scratch.
func Compute(candles []market.Candle, p FrameParams) (Frame, error) {
	if p.Fast <= 0 || p.Slow <= 0 || p.ATRPeriod <= 0 {
		return Frame{}, fmt.Errorf("periods must be positive (fast=%d slow=%d atr=%d)", p.Fast, p.Slow, p.ATRPeriod)
	}

	closes := Closes(candles)
	fast, err := EMASeries(closes, p.Fast)
	if err != nil {
		return Frame{}, fmt.Errorf("fast ema: %w", err)
	}
	slow, err := EMASeries(closes, p.Slow)
	if err != nil {
		return Frame{}, fmt.Errorf("slow ema: %w", err)
	}
	atr, err := ATRSeries(candles, p.ATRPeriod)
	if err != nil {
		return Frame{}, fmt.Errorf("atr: %w", err)
	}

	return Frame{
		FastEMA: fast,
		SlowEMA: slow,
		ATR:     atr,
		VWAP:    VWAPSeries(candles),
	}, nil
}

func (f Frame) Len() int { return len(f.FastEMA) }

// At returns the values at index i. Out of range yields all NaN.
func (f Frame) At(i int) Point {
	if i < 0 || i >= f.Len() {
		nan := math.NaN()
		return Point{nan, nan, nan, nan}
	}
	return Point{
		FastEMA: f.FastEMA[i],
		SlowEMA: f.SlowEMA[i],
		ATR:     f.ATR[i],
		VWAP:    f.VWAP[i],
	}
}

// Last returns the values for the newest bar.
func (f Frame) Last() Point {
	return f.At(f.Len() - 1)
}
