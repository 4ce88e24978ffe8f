// Package journal keeps an audit trail of order attempts and account equity.
// It is write-mostly; the bot never reads its own state back from it.
package journal

import (
	"errors"
	"time"

	"github.com/rustyeddy/bracketbot/market"
)

var ErrNotFound = errors.New("journal: not found")

type OrderStatus string

const (
	StatusFilled OrderStatus = "filled"
	StatusFailed OrderStatus = "failed"
)

// OrderRecord is one submission attempt.
type OrderRecord struct {
	ID         string
	Time       time.Time
	Symbol     string
	Side       market.Side
	Volume     float64
	StopLoss   *float64
	TakeProfit *float64
	// FillPrice is zero for failed attempts.
	FillPrice float64
	Status    OrderStatus
	Detail    string
}

type EquitySnapshot struct {
	Time    time.Time
	Balance float64
	Equity  float64
}

type Journal interface {
	RecordOrder(OrderRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordOrder(OrderRecord) error     { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) Close() error                      { return nil }
