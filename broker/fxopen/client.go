// Package fxopen talks to the FXOpen TickTrader web API: account reads, bar
// history and market orders, each under a bounded retry policy.
package fxopen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/rustyeddy/bracketbot/broker"
	"github.com/rustyeddy/bracketbot/internal/httpx"
	"github.com/rustyeddy/bracketbot/retry"
)

const DefaultBaseURL = "https://ttdemomarginal.fxopen.net/api/v2"

type Config struct {
	BaseURL  string
	TokenID  string
	TokenKey string
	// Timeout bounds each attempt, not the whole retried call.
	Timeout  time.Duration
	Location *time.Location
	Retry    retry.Policy
}

type Client struct {
	http    *resty.Client
	loc     *time.Location
	policy  retry.Policy
	log     *slog.Logger
	onRetry func(op string, attempt int, err error)
	now     func() time.Time
}

type Option func(*Client)

// WithLogger sets the logger used for retry warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithRetryHook is called after every failed attempt that will be retried.
func WithRetryHook(fn func(op string, attempt int, err error)) Option {
	return func(c *Client) { c.onRetry = fn }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.TokenID == "" {
		return nil, errors.New("fxopen: token id is required")
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	rc := resty.NewWithClient(httpx.NewHTTPClient(timeout)).
		SetBaseURL(base).
		SetAuthToken(cfg.TokenID).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.TokenKey != "" {
		rc.SetHeader("X-Token-Key", cfg.TokenKey)
	}

	c := &Client{
		http:   rc,
		loc:    loc,
		policy: cfg.Retry,
		log:    slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Location is the server time zone bars are converted into.
func (c *Client) Location() *time.Location { return c.loc }

// call runs op under the retry policy and maps exhaustion to ErrUnavailable.
func (c *Client) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	p := c.policy
	p.OnRetry = func(attempt int, err error) {
		c.log.Warn("api attempt failed", "op", op, "attempt", attempt, "err", err)
		if c.onRetry != nil {
			c.onRetry(op, attempt, err)
		}
	}

	err := p.Do(ctx, fn)
	if err == nil {
		return nil
	}
	if errors.Is(err, broker.ErrOrderRejected) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", broker.ErrUnavailable, op, err)
}

// StatusError is a response outside 200/201.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.Status, e.Body)
}

func checkStatus(resp *resty.Response) error {
	switch resp.StatusCode() {
	case http.StatusOK, http.StatusCreated:
		return nil
	}
	return &StatusError{Status: resp.StatusCode(), Body: truncate(resp.String(), 200)}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}
