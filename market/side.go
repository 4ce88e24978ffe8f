package market

import "fmt"

type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

func (s Side) Valid() bool { return s == Buy || s == Sell }

// ParseSide accepts buy/sell in any case.
func ParseSide(s string) (Side, error) {
	switch s {
	case "buy", "Buy", "BUY":
		return Buy, nil
	case "sell", "Sell", "SELL":
		return Sell, nil
	}
	return "", fmt.Errorf("invalid side: %q", s)
}
