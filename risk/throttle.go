package risk

import (
	"fmt"
	"time"

	"github.com/rustyeddy/bracketbot/market"
)

// ThrottleConfig limits how often the bot may enter.
type ThrottleConfig struct {
	MaxTradesPerDay int
	CooldownBars    int
}

// Throttle tracks trades taken today and the post-trade cooldown. It is owned
// by a single run loop and is not safe for concurrent use.
type Throttle struct {
	cfg ThrottleConfig
	loc *time.Location

	tradesToday       int
	lastResetDate     market.Date
	cooldownRemaining int
	filledThisBar     bool
}

// ThrottleState is a copy of the counters for display.
type ThrottleState struct {
	TradesToday       int
	LastResetDate     market.Date
	CooldownRemaining int
}

// NewThrottle starts with an unset date so the first Observe resets it.
func NewThrottle(cfg ThrottleConfig, loc *time.Location) *Throttle {
	if loc == nil {
		loc = time.UTC
	}
	return &Throttle{cfg: cfg, loc: loc}
}

// Observe resets the counters when the date of now, in the throttle's zone,
// differs from the last reset. It reports whether a reset happened.
func (t *Throttle) Observe(now time.Time) bool {
	today := market.DateOf(now.In(t.loc))
	if today == t.lastResetDate {
		return false
	}
	t.tradesToday = 0
	t.cooldownRemaining = 0
	t.lastResetDate = today
	return true
}

// CanTrade reports whether a new entry is permitted.
func (t *Throttle) CanTrade() bool {
	return t.Check().Allowed
}

// Check explains why entries are blocked, if they are.
func (t *Throttle) Check() Decision {
	d := Decision{Allowed: true}
	if t.cooldownRemaining > 0 {
		d.add("COOLDOWN", fmt.Sprintf("cooldown %d bars remaining", t.cooldownRemaining))
	}
	if t.tradesToday >= t.cfg.MaxTradesPerDay {
		d.add("DAILY_CAP", fmt.Sprintf("trades today %d >= max %d", t.tradesToday, t.cfg.MaxTradesPerDay))
	}
	return d
}

// RecordFill counts a successful order and arms the cooldown.
func (t *Throttle) RecordFill() {
	t.tradesToday++
	t.cooldownRemaining = t.cfg.CooldownBars
	t.filledThisBar = true
}

// EndIteration advances the cooldown by one bar. The iteration that armed
// the cooldown does not count toward it.
func (t *Throttle) EndIteration() {
	if t.filledThisBar {
		t.filledThisBar = false
		return
	}
	if t.cooldownRemaining > 0 {
		t.cooldownRemaining--
	}
}

func (t *Throttle) State() ThrottleState {
	return ThrottleState{
		TradesToday:       t.tradesToday,
		LastResetDate:     t.lastResetDate,
		CooldownRemaining: t.cooldownRemaining,
	}
}
