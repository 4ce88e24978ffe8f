// Package status holds the read-mostly view of the bot that the dashboard
// renders: the latest snapshot and a tail of log lines. The run loop is the
// only writer.
package status

import (
	"context"
	"time"
)

// Snapshot is what the dashboard shows. All fields are copies.
type Snapshot struct {
	Symbol            string    `json:"symbol"`
	State             string    `json:"state"`
	Message           string    `json:"message"`
	Balance           float64   `json:"balance"`
	Equity            float64   `json:"equity"`
	TradesToday       int       `json:"trades_today"`
	CooldownRemaining int       `json:"cooldown_remaining"`
	LastResetDate     string    `json:"last_reset_date,omitempty"`
	LastSignal        string    `json:"last_signal,omitempty"`
	LastDecision      string    `json:"last_decision,omitempty"`
	LastOrder         string    `json:"last_order,omitempty"`
	StartedAt         time.Time `json:"started_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type Store interface {
	Save(ctx context.Context, s Snapshot) error
	Load(ctx context.Context) (Snapshot, error)
	AppendLog(ctx context.Context, line string) error
	// Tail returns up to n of the newest lines, oldest first.
	Tail(ctx context.Context, n int) ([]string, error)
}
