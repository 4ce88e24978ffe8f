package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/bracketbot/market"
)

var msk = time.FixedZone("MSK", 3*3600)

func day(d, h int) time.Time {
	return time.Date(2025, 3, d, h, 0, 0, 0, msk)
}

func TestThrottleFirstObserveResets(t *testing.T) {
	th := NewThrottle(ThrottleConfig{MaxTradesPerDay: 8, CooldownBars: 12}, msk)
	assert.True(t, th.State().LastResetDate.IsZero())

	assert.True(t, th.Observe(day(3, 10)))
	assert.Equal(t, market.Date{Year: 2025, Month: time.March, Day: 3}, th.State().LastResetDate)
	assert.False(t, th.Observe(day(3, 11)))
	assert.True(t, th.CanTrade())
}

func TestThrottleDailyCap(t *testing.T) {
	th := NewThrottle(ThrottleConfig{MaxTradesPerDay: 2, CooldownBars: 0}, msk)
	th.Observe(day(3, 10))

	th.RecordFill()
	th.EndIteration()
	assert.True(t, th.CanTrade())

	th.RecordFill()
	th.EndIteration()
	d := th.Check()
	assert.False(t, d.Allowed)
	assert.True(t, d.Has("DAILY_CAP"))
	assert.Contains(t, d.Reason(), "trades today 2 >= max 2")
}

func TestThrottleDateChangeResetsEverything(t *testing.T) {
	th := NewThrottle(ThrottleConfig{MaxTradesPerDay: 2, CooldownBars: 10}, msk)
	th.Observe(day(3, 10))
	th.RecordFill()
	th.RecordFill()
	require.False(t, th.CanTrade())

	assert.True(t, th.Observe(day(4, 0)))
	st := th.State()
	assert.Equal(t, 0, st.TradesToday)
	assert.Equal(t, 0, st.CooldownRemaining)
	assert.True(t, th.CanTrade())
}

func TestThrottleUsesConfiguredZone(t *testing.T) {
	th := NewThrottle(ThrottleConfig{MaxTradesPerDay: 1}, msk)
	// 20:30 and 21:30 UTC straddle midnight in Moscow.
	th.Observe(time.Date(2025, 3, 3, 20, 30, 0, 0, time.UTC))
	th.RecordFill()
	assert.False(t, th.CanTrade())

	assert.True(t, th.Observe(time.Date(2025, 3, 3, 21, 30, 0, 0, time.UTC)))
	assert.True(t, th.CanTrade())
}

func TestThrottleCooldownRejectsExactlyN(t *testing.T) {
	const n = 10
	th := NewThrottle(ThrottleConfig{MaxTradesPerDay: 100, CooldownBars: n}, msk)
	th.Observe(day(3, 10))

	// Fill iteration.
	require.True(t, th.CanTrade())
	th.RecordFill()
	th.EndIteration()

	rejected := 0
	for i := 0; i < n; i++ {
		if !th.CanTrade() {
			rejected++
		}
		th.EndIteration()
	}
	assert.Equal(t, n, rejected)
	assert.True(t, th.CanTrade(), "the 11th iteration accepts")
}

func TestThrottleCooldownFloorsAtZero(t *testing.T) {
	th := NewThrottle(ThrottleConfig{MaxTradesPerDay: 1, CooldownBars: 1}, msk)
	th.Observe(day(3, 10))
	for i := 0; i < 5; i++ {
		th.EndIteration()
	}
	assert.Equal(t, 0, th.State().CooldownRemaining)
}

func TestThrottleNilLocation(t *testing.T) {
	th := NewThrottle(ThrottleConfig{MaxTradesPerDay: 1}, nil)
	assert.True(t, th.Observe(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestDecisionReasonAllowed(t *testing.T) {
	d := Decision{Allowed: true}
	assert.Equal(t, "", d.Reason())
	assert.False(t, d.Has("COOLDOWN"))
}

func TestRR(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		entry, stop, take float64
		want              float64
	}{
		{"long", 101, 99, 106, 2.5},
		{"short", 100, 102, 95, 2.5},
		{"zero risk", 100, 100, 110, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, RR(tt.entry, tt.stop, tt.take), 1e-12)
		})
	}
}

func TestPlannedRisk(t *testing.T) {
	// 0.10 lot of gold is 10 oz; a 2.5 stop costs 25 USD.
	assert.InDelta(t, 25.0, PlannedRisk(10, 2650, 2647.5, 1), 1e-9)
	assert.InDelta(t, 25.0, PlannedRisk(10, 2647.5, 2650, 1), 1e-9)
}
