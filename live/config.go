package live

import (
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/bracketbot/market"
)

// Config is the loop's immutable settings.
type Config struct {
	Symbol string

	EntryTimeframe  market.Timeframe
	EntryCount      int
	HigherTimeframe market.Timeframe
	HigherCount     int
	MinBars         int

	StartupDelay   time.Duration
	ConnectBackoff time.Duration
	DataBackoff    time.Duration
	PollInterval   time.Duration
	ErrorBackoff   time.Duration

	// Location is the server zone used for the trading day.
	Location *time.Location
}

func DefaultConfig() Config {
	return Config{
		Symbol:          "XAUUSD",
		EntryTimeframe:  market.M5,
		EntryCount:      300,
		HigherTimeframe: market.M30,
		HigherCount:     100,
		MinBars:         50,
		StartupDelay:    15 * time.Second,
		ConnectBackoff:  20 * time.Second,
		DataBackoff:     10 * time.Second,
		PollInterval:    10 * time.Second,
		ErrorBackoff:    10 * time.Second,
	}
}

func (c Config) Validate() error {
	if c.Symbol == "" {
		return errors.New("symbol is required")
	}
	if !c.EntryTimeframe.Valid() {
		return fmt.Errorf("invalid entry timeframe %q", c.EntryTimeframe)
	}
	if !c.HigherTimeframe.Valid() {
		return fmt.Errorf("invalid higher timeframe %q", c.HigherTimeframe)
	}
	if c.EntryCount <= 0 || c.HigherCount <= 0 {
		return errors.New("candle counts must be positive")
	}
	if c.MinBars <= 1 {
		return errors.New("min bars must be at least 2")
	}
	if c.EntryCount < c.MinBars {
		return fmt.Errorf("entry count %d is below min bars %d", c.EntryCount, c.MinBars)
	}
	for name, d := range map[string]time.Duration{
		"startup delay":   c.StartupDelay,
		"connect backoff": c.ConnectBackoff,
		"data backoff":    c.DataBackoff,
		"poll interval":   c.PollInterval,
		"error backoff":   c.ErrorBackoff,
	} {
		if d < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}
