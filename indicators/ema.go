package indicators

import (
	"fmt"
	"math"

	"github.com/rustyeddy/bracketbot/market"
)

// ExponentialMA is a streaming EMA over closes seeded by the first value.
type ExponentialMA struct {
	period     int
	multiplier float64
	ema        float64
	count      int
}

// NewEMA creates an EMA with smoothing factor 2/(period+1).
func NewEMA(period int) *ExponentialMA {
	return &ExponentialMA{
		period:     period,
		multiplier: 2.0 / float64(period+1),
	}
}

func (e *ExponentialMA) Name() string {
	return fmt.Sprintf("EMA(%d)", e.period)
}

// Warmup is one: the first value seeds the average.
func (e *ExponentialMA) Warmup() int {
	return 1
}

func (e *ExponentialMA) Reset() {
	e.ema = 0
	e.count = 0
}

func (e *ExponentialMA) Update(c market.Candle) {
	e.Add(c.Close)
}

// Add feeds a raw value.
func (e *ExponentialMA) Add(v float64) {
	if e.count == 0 {
		e.ema = v
	} else {
		e.ema = e.multiplier*v + (1-e.multiplier)*e.ema
	}
	e.count++
}

func (e *ExponentialMA) Ready() bool {
	return e.count > 0
}

func (e *ExponentialMA) Value() float64 {
	if !e.Ready() {
		return math.NaN()
	}
	return e.ema
}

// EMASeries returns the EMA of values, aligned 1:1 with the input.
func EMASeries(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("period must be positive, got %d", period)
	}
	e := NewEMA(period)
	out := make([]float64, len(values))
	for i, v := range values {
		e.Add(v)
		out[i] = e.Value()
	}
	return out, nil
}

// EMA returns the latest EMA of candle closes.
func EMA(candles []market.Candle, period int) (float64, error) {
	if len(candles) == 0 {
		return 0, fmt.Errorf("not enough candles: need 1, got 0")
	}
	s, err := EMASeries(Closes(candles), period)
	if err != nil {
		return 0, err
	}
	return s[len(s)-1], nil
}
