package fxopen

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rustyeddy/bracketbot/market"
)

type candlesResp struct {
	Candles []struct {
		Time   int64   `json:"time"`
		Open   float64 `json:"open"`
		High   float64 `json:"high"`
		Low    float64 `json:"low"`
		Close  float64 `json:"close"`
		Volume float64 `json:"volume"`
	} `json:"candles"`
}

// GetCandles returns up to count of the latest bars, oldest first, with
// timestamps in the server time zone. The endpoint may return fewer.
func (c *Client) GetCandles(ctx context.Context, symbol string, tf market.Timeframe, count int) ([]market.Candle, error) {
	if symbol == "" {
		return nil, fmt.Errorf("fxopen: missing symbol")
	}
	if !tf.Valid() {
		return nil, fmt.Errorf("fxopen: unsupported timeframe %q", tf)
	}
	if count <= 0 {
		return nil, fmt.Errorf("fxopen: count must be positive, got %d", count)
	}

	var out []market.Candle
	op := "candles " + string(tf)
	err := c.call(ctx, op, func(ctx context.Context) error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetPathParams(map[string]string{
				"symbol": symbol,
				"tf":     string(tf),
			}).
			SetQueryParam("count", strconv.Itoa(count)).
			Get("/history/candles/{symbol}/{tf}")
		if err != nil {
			return fmt.Errorf("get candles: %w", err)
		}
		if err := checkStatus(resp); err != nil {
			return err
		}

		var cr candlesResp
		if err := json.Unmarshal(resp.Body(), &cr); err != nil {
			return fmt.Errorf("decode candles: %w", err)
		}
		if cr.Candles == nil {
			return fmt.Errorf("decode candles: missing candles in %s", truncate(resp.String(), 200))
		}

		out = make([]market.Candle, 0, len(cr.Candles))
		for _, cd := range cr.Candles {
			out = append(out, market.Candle{
				Time:   time.Unix(cd.Time, 0).In(c.loc),
				Open:   cd.Open,
				High:   cd.High,
				Low:    cd.Low,
				Close:  cd.Close,
				Volume: cd.Volume,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return normalize(out), nil
}

// normalize sorts bars by time and keeps the last bar for a repeated timestamp.
func normalize(in []market.Candle) []market.Candle {
	sort.SliceStable(in, func(i, j int) bool { return in[i].Time.Before(in[j].Time) })

	out := in[:0]
	for _, c := range in {
		if n := len(out); n > 0 && out[n-1].Time.Equal(c.Time) {
			out[n-1] = c
			continue
		}
		out = append(out, c)
	}
	return out
}
