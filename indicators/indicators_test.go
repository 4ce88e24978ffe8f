package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/rustyeddy/bracketbot/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)

func bars(closes ...float64) []market.Candle {
	out := make([]market.Candle, len(closes))
	for i, c := range closes {
		out[i] = market.Candle{
			Time:   baseTime.Add(time.Duration(i) * 5 * time.Minute),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1,
		}
	}
	return out
}

func TestEMASeries(t *testing.T) {
	t.Run("constant input stays constant", func(t *testing.T) {
		s, err := EMASeries([]float64{10, 10, 10, 10}, 3)
		require.NoError(t, err)
		require.Len(t, s, 4)
		for _, v := range s {
			assert.InDelta(t, 10.0, v, 1e-12)
		}
	})

	t.Run("seeded with first value", func(t *testing.T) {
		s, err := EMASeries([]float64{2, 4, 8}, 3)
		require.NoError(t, err)
		// alpha = 0.5
		assert.Equal(t, 2.0, s[0])
		assert.InDelta(t, 3.0, s[1], 1e-12)
		assert.InDelta(t, 5.5, s[2], 1e-12)
	})

	t.Run("invalid period", func(t *testing.T) {
		_, err := EMASeries([]float64{1}, 0)
		assert.Error(t, err)
	})

	t.Run("empty input", func(t *testing.T) {
		s, err := EMASeries(nil, 9)
		require.NoError(t, err)
		assert.Empty(t, s)
	})
}

func TestEMALatest(t *testing.T) {
	v, err := EMA(bars(2, 4, 8), 3)
	require.NoError(t, err)
	assert.InDelta(t, 5.5, v, 1e-12)

	_, err = EMA(nil, 3)
	assert.Error(t, err)
}

func TestExponentialMAStreaming(t *testing.T) {
	e := NewEMA(9)
	assert.Equal(t, "EMA(9)", e.Name())
	assert.Equal(t, 1, e.Warmup())
	assert.False(t, e.Ready())
	assert.True(t, math.IsNaN(e.Value()))

	in := bars(100, 101, 103, 102, 105)
	got := Series(e, in)
	want, err := EMASeries(Closes(in), 9)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	e.Reset()
	assert.False(t, e.Ready())
}

func TestATRSeries(t *testing.T) {
	t.Run("flat series is zero once defined", func(t *testing.T) {
		in := bars(5, 5, 5, 5, 5, 5, 5, 5)
		s, err := ATRSeries(in, 3)
		require.NoError(t, err)
		require.Len(t, s, len(in))
		for i := 0; i < 3; i++ {
			assert.True(t, math.IsNaN(s[i]), "index %d should be undefined", i)
		}
		for i := 3; i < len(s); i++ {
			assert.Equal(t, 0.0, s[i])
		}
	})

	t.Run("rolling mean of true range", func(t *testing.T) {
		in := []market.Candle{
			{Time: baseTime, High: 10, Low: 9, Close: 9.5},
			{Time: baseTime.Add(time.Minute), High: 11, Low: 10, Close: 10.5},  // TR 1.5
			{Time: baseTime.Add(2 * time.Minute), High: 10.6, Low: 10, Close: 10}, // TR 0.6
			{Time: baseTime.Add(3 * time.Minute), High: 12, Low: 11, Close: 11}, // TR 2
		}
		s, err := ATRSeries(in, 2)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(s[0]))
		assert.True(t, math.IsNaN(s[1]))
		assert.InDelta(t, (1.5+0.6)/2, s[2], 1e-12)
		assert.InDelta(t, (0.6+2.0)/2, s[3], 1e-12)
	})

	t.Run("invalid period", func(t *testing.T) {
		_, err := ATRSeries(bars(1, 2), 0)
		assert.Error(t, err)
	})
}

func TestTrueRange(t *testing.T) {
	c := market.Candle{High: 105, Low: 100}
	assert.Equal(t, 5.0, TrueRange(c, 102))
	assert.Equal(t, 10.0, TrueRange(c, 95))
	assert.Equal(t, 7.0, TrueRange(c, 112))
}

func TestATRStreamingReset(t *testing.T) {
	a := NewATR(2)
	assert.Equal(t, "ATR(2)", a.Name())
	assert.Equal(t, 3, a.Warmup())

	for _, c := range bars(1, 2, 3) {
		a.Update(c)
	}
	assert.True(t, a.Ready())
	assert.InDelta(t, 1.0, a.Value(), 1e-12)

	a.Reset()
	assert.False(t, a.Ready())
	assert.True(t, math.IsNaN(a.Value()))
}

func TestVWAPResetsPerDay(t *testing.T) {
	day1 := time.Date(2025, 3, 3, 22, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 4, 0, 5, 0, 0, time.UTC)

	in := []market.Candle{
		{Time: day1, High: 12, Low: 8, Close: 10, Volume: 100},              // tp 10
		{Time: day1.Add(5 * time.Minute), High: 22, Low: 18, Close: 20, Volume: 300}, // tp 20
		{Time: day2, High: 33, Low: 27, Close: 30, Volume: 50},              // tp 30
	}

	s := VWAPSeries(in)
	require.Len(t, s, 3)
	assert.InDelta(t, 10.0, s[0], 1e-12)
	assert.InDelta(t, (10*100+20*300)/400.0, s[1], 1e-12)
	assert.InDelta(t, 30.0, s[2], 1e-12)
}

func TestVWAPZeroVolumeIsUndefined(t *testing.T) {
	in := []market.Candle{{Time: baseTime, High: 2, Low: 1, Close: 1.5}}
	s := VWAPSeries(in)
	assert.True(t, math.IsNaN(s[0]))
}

func TestVWAPUsesBarZone(t *testing.T) {
	loc := time.FixedZone("MSK", 3*3600)
	// Same UTC day, different server days.
	a := time.Date(2025, 3, 3, 20, 0, 0, 0, time.UTC).In(loc)
	b := time.Date(2025, 3, 3, 21, 30, 0, 0, time.UTC).In(loc)

	in := []market.Candle{
		{Time: a, High: 10, Low: 10, Close: 10, Volume: 1},
		{Time: b, High: 20, Low: 20, Close: 20, Volume: 1},
	}
	s := VWAPSeries(in)
	assert.InDelta(t, 20.0, s[1], 1e-12)
}

func TestCompute(t *testing.T) {
	in := bars(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)

	f, err := Compute(in, FrameParams{Fast: 3, Slow: 5, ATRPeriod: 4})
	require.NoError(t, err)

	assert.Equal(t, len(in), f.Len())
	assert.Len(t, f.SlowEMA, len(in))
	assert.Len(t, f.ATR, len(in))
	assert.Len(t, f.VWAP, len(in))

	last := f.Last()
	assert.Greater(t, last.FastEMA, last.SlowEMA)
	assert.InDelta(t, 1.0, last.ATR, 1e-12)
	assert.True(t, math.IsNaN(f.At(2).ATR))
	assert.True(t, math.IsNaN(f.At(99).FastEMA))

	_, err = Compute(in, FrameParams{Fast: 0, Slow: 5, ATRPeriod: 4})
	assert.Error(t, err)
}
