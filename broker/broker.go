// Package broker defines what the bot needs from a trading venue.
package broker

import (
	"context"
	"errors"
	"time"

	"github.com/rustyeddy/bracketbot/market"
)

var (
	// ErrUnavailable means a remote call failed on every permitted attempt.
	ErrUnavailable = errors.New("broker unavailable")

	// ErrOrderRejected means the order endpoint answered without a fill price.
	ErrOrderRejected = errors.New("order rejected")
)

// AccountSource reads the account balance.
type AccountSource interface {
	GetAccount(ctx context.Context) (Account, error)
}

// MarketData reads the account and bar history.
type MarketData interface {
	AccountSource
	GetCandles(ctx context.Context, symbol string, tf market.Timeframe, count int) ([]market.Candle, error)
}

// Executor submits orders.
type Executor interface {
	CreateMarketOrder(ctx context.Context, req MarketOrderRequest) (OrderFill, error)
}

type Broker interface {
	MarketData
	Executor
}

// Account is a point-in-time read. Callers must not cache it.
type Account struct {
	Balance float64 `json:"balance"`
	Equity  float64 `json:"equity"`
}

type MarketOrderRequest struct {
	Symbol     string
	Side       market.Side
	Volume     float64
	StopLoss   *float64
	TakeProfit *float64
}

// OrderFill is a successful market order.
type OrderFill struct {
	Symbol string
	Side   market.Side
	Volume float64
	Price  float64
	Time   time.Time
}

// RejectedError carries the raw response of a rejected order.
type RejectedError struct {
	Status int
	Detail string
}

func (e *RejectedError) Error() string {
	return "order rejected: " + e.Detail
}

func (e *RejectedError) Unwrap() error { return ErrOrderRejected }

// Float returns a pointer to v, for optional order fields.
func Float(v float64) *float64 { return &v }
