package indicators

import (
	"fmt"
	"math"

	"github.com/rustyeddy/bracketbot/market"
)

// ATR is a streaming average true range using a simple rolling mean. It is
// undefined for the first period bars.
type ATR struct {
	period      int
	window      []float64
	next        int
	sum         float64
	count       int
	prevClose   float64
	hasPrevious bool
}

// NewATR creates an ATR over period bars.
func NewATR(period int) *ATR {
	return &ATR{
		period: period,
		window: make([]float64, period),
	}
}

func (a *ATR) Name() string {
	return fmt.Sprintf("ATR(%d)", a.period)
}

// Warmup needs period+1 candles because the first has no previous close.
func (a *ATR) Warmup() int {
	return a.period + 1
}

func (a *ATR) Reset() {
	for i := range a.window {
		a.window[i] = 0
	}
	a.next = 0
	a.sum = 0
	a.count = 0
	a.hasPrevious = false
}

func (a *ATR) Update(c market.Candle) {
	if !a.hasPrevious {
		a.prevClose = c.Close
		a.hasPrevious = true
		a.count++
		return
	}

	tr := TrueRange(c, a.prevClose)
	a.sum += tr - a.window[a.next]
	a.window[a.next] = tr
	a.next = (a.next + 1) % a.period
	a.prevClose = c.Close
	a.count++
}

func (a *ATR) Ready() bool {
	return a.count > a.period
}

func (a *ATR) Value() float64 {
	if !a.Ready() {
		return math.NaN()
	}
	return a.sum / float64(a.period)
}

// TrueRange is max(high-low, |high-prevClose|, |low-prevClose|).
func TrueRange(c market.Candle, prevClose float64) float64 {
	highLow := c.High - c.Low
	highClose := math.Abs(c.High - prevClose)
	lowClose := math.Abs(c.Low - prevClose)
	return math.Max(highLow, math.Max(highClose, lowClose))
}

// ATRSeries returns ATR values aligned with candles; indices below period are NaN.
func ATRSeries(candles []market.Candle, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("period must be positive, got %d", period)
	}
	return Series(NewATR(period), candles), nil
}
