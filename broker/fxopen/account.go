package fxopen

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rustyeddy/bracketbot/broker"
)

type accountResp struct {
	Balance *float64 `json:"balance"`
	Equity  *float64 `json:"equity"`
}

// GetAccount fetches balance and equity. It is never cached.
func (c *Client) GetAccount(ctx context.Context) (broker.Account, error) {
	var acct broker.Account
	err := c.call(ctx, "account", func(ctx context.Context) error {
		resp, err := c.http.R().SetContext(ctx).Get("/account")
		if err != nil {
			return fmt.Errorf("get account: %w", err)
		}
		if err := checkStatus(resp); err != nil {
			return err
		}

		var ar accountResp
		if err := json.Unmarshal(resp.Body(), &ar); err != nil {
			return fmt.Errorf("decode account: %w", err)
		}
		if ar.Balance == nil {
			return fmt.Errorf("decode account: missing balance in %s", truncate(resp.String(), 200))
		}
		acct.Balance = *ar.Balance
		acct.Equity = acct.Balance
		if ar.Equity != nil {
			acct.Equity = *ar.Equity
		}
		return nil
	})
	if err != nil {
		return broker.Account{}, err
	}
	return acct, nil
}
