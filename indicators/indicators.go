// Package indicators provides the technical indicators the trend strategy
// reads: exponential moving averages, average true range and a daily VWAP.
//
// Every batch series is produced by feeding the matching streaming type, so a
// caller that keeps incremental state gets bit-identical values.
package indicators

import "github.com/rustyeddy/bracketbot/market"

// Indicator computes a single streaming value from candles.
type Indicator interface {
	// Name returns a stable identifier like "EMA(9)" or "ATR(14)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next closed candle.
	Update(c market.Candle)

	// Ready reports whether Value() is meaningful.
	Ready() bool

	// Value returns NaN until Ready.
	Value() float64
}

// Series feeds candles through ind and records Value after each one.
func Series(ind Indicator, candles []market.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		ind.Update(c)
		out[i] = ind.Value()
	}
	return out
}

// Closes extracts close prices.
func Closes(candles []market.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}
