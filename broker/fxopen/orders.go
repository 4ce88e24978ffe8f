package fxopen

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/bracketbot/broker"
	"github.com/rustyeddy/bracketbot/market"
	"github.com/rustyeddy/bracketbot/retry"
)

type orderReq struct {
	Symbol     string   `json:"symbol"`
	Side       string   `json:"side"`
	Volume     float64  `json:"volume"`
	StopLoss   *float64 `json:"stopLoss,omitempty"`
	TakeProfit *float64 `json:"takeProfit,omitempty"`
}

type orderResp struct {
	Price *float64 `json:"price"`
}

// CreateMarketOrder submits a market order with an optional bracket. It
// succeeds only when the endpoint reports a fill price. A timed out attempt
// may still have filled; the retry can therefore duplicate the order.
func (c *Client) CreateMarketOrder(ctx context.Context, req broker.MarketOrderRequest) (broker.OrderFill, error) {
	if req.Symbol == "" {
		return broker.OrderFill{}, fmt.Errorf("fxopen: missing symbol")
	}
	if !req.Side.Valid() {
		return broker.OrderFill{}, fmt.Errorf("fxopen: invalid side %q", req.Side)
	}
	if req.Volume <= 0 {
		return broker.OrderFill{}, fmt.Errorf("fxopen: volume must be positive")
	}

	body := buildOrder(req)

	var fill broker.OrderFill
	err := c.call(ctx, "order", func(ctx context.Context) error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(body).
			Post("/trading/orders/market")
		if err != nil {
			return fmt.Errorf("post order: %w", err)
		}
		if err := checkStatus(resp); err != nil {
			return err
		}

		var or orderResp
		if err := json.Unmarshal(resp.Body(), &or); err != nil || or.Price == nil || *or.Price <= 0 {
			return retry.Permanent(&broker.RejectedError{
				Status: resp.StatusCode(),
				Detail: truncate(resp.String(), 500),
			})
		}

		fill = broker.OrderFill{
			Symbol: req.Symbol,
			Side:   req.Side,
			Volume: body.Volume,
			Price:  *or.Price,
			Time:   c.now().In(c.loc),
		}
		return nil
	})
	if err != nil {
		return broker.OrderFill{}, err
	}
	return fill, nil
}

// buildOrder rounds prices and volume to what the instrument accepts.
func buildOrder(req broker.MarketOrderRequest) orderReq {
	meta := market.Instrument(req.Symbol)

	out := orderReq{
		Symbol: req.Symbol,
		Side:   string(req.Side),
		Volume: round(req.Volume, meta.VolumeDigits),
	}
	if req.StopLoss != nil {
		v := round(*req.StopLoss, meta.PriceDigits)
		out.StopLoss = &v
	}
	if req.TakeProfit != nil {
		v := round(*req.TakeProfit, meta.PriceDigits)
		out.TakeProfit = &v
	}
	return out
}

func round(v float64, digits int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(digits).Float64()
	return f
}
