package market

import (
	"fmt"
	"strings"
	"time"
)

// Timeframe is a bar interval in the broker's notation.
type Timeframe string

const (
	M1  Timeframe = "M1"
	M5  Timeframe = "M5"
	M15 Timeframe = "M15"
	M30 Timeframe = "M30"
	H1  Timeframe = "H1"
	H4  Timeframe = "H4"
	D1  Timeframe = "D1"
	W1  Timeframe = "W1"
	MN1 Timeframe = "MN1"
)

var timeframeSeconds = map[Timeframe]int64{
	M1:  60,
	M5:  300,
	M15: 900,
	M30: 1800,
	H1:  3600,
	H4:  14400,
	D1:  86400,
	W1:  604800,
	MN1: 2592000,
}

// Duration returns the nominal bar length.
func (tf Timeframe) Duration() (time.Duration, error) {
	sec, ok := timeframeSeconds[tf]
	if !ok {
		return 0, fmt.Errorf("unsupported timeframe: %s", tf)
	}
	return time.Duration(sec) * time.Second, nil
}

func (tf Timeframe) Valid() bool {
	_, ok := timeframeSeconds[tf]
	return ok
}

// ParseTimeframe validates a string such as "M5". Case is ignored.
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(strings.ToUpper(strings.TrimSpace(s)))
	if !tf.Valid() {
		return "", fmt.Errorf("unsupported timeframe: %s", s)
	}
	return tf, nil
}
