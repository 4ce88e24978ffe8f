package indicators

import (
	"math"

	"github.com/rustyeddy/bracketbot/market"
)

// VWAP is a session VWAP that restarts whenever the bar's calendar date changes.
type VWAP struct {
	day    market.Date
	cumPV  float64
	cumVol float64
}

func NewVWAP() *VWAP { return &VWAP{} }

func (v *VWAP) Name() string { return "VWAP" }

func (v *VWAP) Warmup() int { return 1 }

func (v *VWAP) Reset() {
	*v = VWAP{}
}

func (v *VWAP) Update(c market.Candle) {
	if d := c.Date(); d != v.day {
		v.day = d
		v.cumPV = 0
		v.cumVol = 0
	}
	v.cumPV += c.TypicalPrice() * c.Volume
	v.cumVol += c.Volume
}

// Ready is false until the current day has traded volume.
func (v *VWAP) Ready() bool {
	return v.cumVol > 0
}

func (v *VWAP) Value() float64 {
	if !v.Ready() {
		return math.NaN()
	}
	return v.cumPV / v.cumVol
}

// VWAPSeries returns the daily VWAP aligned with candles.
func VWAPSeries(candles []market.Candle) []float64 {
	return Series(NewVWAP(), candles)
}
