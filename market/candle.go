package market

import "time"

// Candle is one OHLCV bar. Time is the bar open in the server time zone.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

func (c Candle) Bullish() bool { return c.Close > c.Open }

func (c Candle) Bearish() bool { return c.Close < c.Open }

// Range is high minus low.
func (c Candle) Range() float64 { return c.High - c.Low }

// BodyFraction is |close-open| / (high-low). A zero range bar has no body.
func (c Candle) BodyFraction() float64 {
	r := c.Range()
	if r <= 0 {
		return 0
	}
	body := c.Close - c.Open
	if body < 0 {
		body = -body
	}
	return body / r
}

// TypicalPrice is (high+low+close)/3.
func (c Candle) TypicalPrice() float64 {
	return (c.High + c.Low + c.Close) / 3
}

// Date returns the civil date of the bar in its own location.
func (c Candle) Date() Date {
	return DateOf(c.Time)
}
