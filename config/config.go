package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/bracketbot/broker/fxopen"
	"github.com/rustyeddy/bracketbot/dashboard"
	"github.com/rustyeddy/bracketbot/live"
	"github.com/rustyeddy/bracketbot/market"
	"github.com/rustyeddy/bracketbot/notify"
	"github.com/rustyeddy/bracketbot/retry"
	"github.com/rustyeddy/bracketbot/risk"
	"github.com/rustyeddy/bracketbot/strategies"
)

// Config is the complete bot configuration. It is built once at startup and
// passed by value from then on.
type Config struct {
	Symbol    string          `json:"symbol" yaml:"symbol"`
	Broker    BrokerConfig    `json:"broker" yaml:"broker"`
	Strategy  StrategyConfig  `json:"strategy" yaml:"strategy"`
	Throttle  ThrottleConfig  `json:"throttle" yaml:"throttle"`
	Loop      LoopConfig      `json:"loop" yaml:"loop"`
	Retry     RetryConfig     `json:"retry" yaml:"retry"`
	Dashboard DashboardConfig `json:"dashboard" yaml:"dashboard"`
	Notify    NotifyConfig    `json:"notify" yaml:"notify"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
	Status    StatusConfig    `json:"status" yaml:"status"`
	Log       LogConfig       `json:"log" yaml:"log"`
}

// BrokerConfig holds the endpoint and the already-issued API tokens.
type BrokerConfig struct {
	BaseURL  string `json:"base_url" yaml:"base_url"`
	TokenID  string `json:"token_id,omitempty" yaml:"token_id,omitempty"`
	TokenKey string `json:"token_key,omitempty" yaml:"token_key,omitempty"`
	Timezone string `json:"timezone" yaml:"timezone"`
}

type StrategyConfig struct {
	Name   string                        `json:"name" yaml:"name"`
	Params strategies.TrendBracketConfig `json:"params" yaml:"params"`
}

type ThrottleConfig struct {
	MaxTradesPerDay int `json:"max_trades_per_day" yaml:"max_trades_per_day"`
	CooldownBars    int `json:"cooldown_bars" yaml:"cooldown_bars"`
}

// LoopConfig durations are strings such as "10s" or "1m".
type LoopConfig struct {
	EntryTimeframe  string `json:"entry_timeframe" yaml:"entry_timeframe"`
	EntryCount      int    `json:"entry_count" yaml:"entry_count"`
	HigherTimeframe string `json:"higher_timeframe" yaml:"higher_timeframe"`
	HigherCount     int    `json:"higher_count" yaml:"higher_count"`
	StartupDelay    string `json:"startup_delay" yaml:"startup_delay"`
	ConnectBackoff  string `json:"connect_backoff" yaml:"connect_backoff"`
	DataBackoff     string `json:"data_backoff" yaml:"data_backoff"`
	PollInterval    string `json:"poll_interval" yaml:"poll_interval"`
	ErrorBackoff    string `json:"error_backoff" yaml:"error_backoff"`
}

type RetryConfig struct {
	Attempts int    `json:"attempts" yaml:"attempts"`
	Delay    string `json:"delay" yaml:"delay"`
	Step     string `json:"step,omitempty" yaml:"step,omitempty"`
	Timeout  string `json:"timeout" yaml:"timeout"`
}

type DashboardConfig struct {
	Enabled     bool `json:"enabled" yaml:"enabled"`
	Port        int  `json:"port" yaml:"port"`
	TailLines   int  `json:"tail_lines" yaml:"tail_lines"`
	LiveAccount bool `json:"live_account" yaml:"live_account"`
}

type NotifyConfig struct {
	Enabled        bool   `json:"enabled" yaml:"enabled"`
	SMTPHost       string `json:"smtp_host" yaml:"smtp_host"`
	SMTPPort       int    `json:"smtp_port" yaml:"smtp_port"`
	SenderEmail    string `json:"sender_email,omitempty" yaml:"sender_email,omitempty"`
	SenderPassword string `json:"sender_password,omitempty" yaml:"sender_password,omitempty"`
	ReceiverEmail  string `json:"receiver_email,omitempty" yaml:"receiver_email,omitempty"`
	QueueSize      int    `json:"queue_size" yaml:"queue_size"`
}

type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "sqlite", "csv" or "none"
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	OrdersFile string `json:"orders_file,omitempty" yaml:"orders_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
}

type StatusConfig struct {
	Backend       string `json:"backend" yaml:"backend"` // "memory" or "redis"
	RedisAddr     string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`
	RedisPassword string `json:"redis_password,omitempty" yaml:"redis_password,omitempty"`
	RedisDB       int    `json:"redis_db,omitempty" yaml:"redis_db,omitempty"`
	Prefix        string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	MaxLines      int    `json:"max_lines" yaml:"max_lines"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
	File  string `json:"file" yaml:"file"`
}

// LoadFromFile parses path over Default, YAML first with a JSON fallback,
// and validates the result.
func LoadFromFile(path string) (*Config, error) {
	cfg, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func parseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}
	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks everything except credentials, which may still arrive
// from the environment.
func (c *Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if c.Broker.BaseURL == "" {
		return fmt.Errorf("broker.base_url is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := strategies.StrategyByName(c.Strategy.Name, c.StrategyParams()); err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	if c.Throttle.MaxTradesPerDay <= 0 {
		return fmt.Errorf("throttle.max_trades_per_day must be positive")
	}
	if c.Throttle.CooldownBars < 0 {
		return fmt.Errorf("throttle.cooldown_bars must not be negative")
	}
	lc, err := c.LiveConfig()
	if err != nil {
		return err
	}
	if err := lc.Validate(); err != nil {
		return fmt.Errorf("loop: %w", err)
	}
	if _, err := c.RetryPolicy(); err != nil {
		return err
	}
	if _, err := Duration("retry.timeout", c.Retry.Timeout); err != nil {
		return err
	}
	if c.Retry.Attempts <= 0 {
		return fmt.Errorf("retry.attempts must be positive")
	}

	switch c.Journal.Type {
	case "none", "":
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "csv":
		if c.Journal.OrdersFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal orders_file and equity_file required for CSV type")
		}
	default:
		return fmt.Errorf("journal.type must be 'sqlite', 'csv' or 'none'")
	}

	switch c.Status.Backend {
	case "memory", "":
	case "redis":
		if c.Status.RedisAddr == "" {
			return fmt.Errorf("status.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("status.backend must be 'memory' or 'redis'")
	}

	if c.Dashboard.Enabled && (c.Dashboard.Port <= 0 || c.Dashboard.Port > 65535) {
		return fmt.Errorf("dashboard.port must be between 1 and 65535")
	}
	if c.Notify.Enabled {
		if err := c.SMTPConfig().Validate(); err != nil {
			return fmt.Errorf("notify: %w", err)
		}
	}
	return nil
}

// RequireCredentials is checked by commands that talk to the broker.
func (c *Config) RequireCredentials() error {
	if c.Broker.TokenID == "" {
		return fmt.Errorf("broker.token_id is required (or set FXOPEN_TOKEN_ID)")
	}
	return nil
}

// Default mirrors the production XAUUSD setup.
func Default() *Config {
	params := strategies.TrendBracketDefaults()
	return &Config{
		Symbol: params.Symbol,
		Broker: BrokerConfig{
			BaseURL:  fxopen.DefaultBaseURL,
			Timezone: "Europe/Moscow",
		},
		Strategy: StrategyConfig{
			Name:   "trend-bracket",
			Params: params,
		},
		Throttle: ThrottleConfig{
			MaxTradesPerDay: 8,
			CooldownBars:    12,
		},
		Loop: LoopConfig{
			EntryTimeframe:  string(market.M5),
			EntryCount:      300,
			HigherTimeframe: string(market.M30),
			HigherCount:     100,
			StartupDelay:    "15s",
			ConnectBackoff:  "20s",
			DataBackoff:     "10s",
			PollInterval:    "10s",
			ErrorBackoff:    "10s",
		},
		Retry: RetryConfig{
			Attempts: 8,
			Delay:    "4s",
			Timeout:  "20s",
		},
		Dashboard: DashboardConfig{
			Enabled:     true,
			Port:        dashboard.DefaultPort,
			TailLines:   dashboard.DefaultTailLines,
			LiveAccount: true,
		},
		Notify: NotifyConfig{
			SMTPHost:  notify.DefaultSMTPHost,
			SMTPPort:  notify.DefaultSMTPPort,
			QueueSize: notify.DefaultQueueSize,
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./bracketbot.db",
		},
		Status: StatusConfig{
			Backend:  "memory",
			Prefix:   "bracketbot",
			MaxLines: 500,
		},
		Log: LogConfig{
			Level: "info",
			File:  "log.txt",
		},
	}
}

// Duration parses a config duration. Empty means zero.
func Duration(field, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", field, s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", field)
	}
	return d, nil
}

func (c *Config) Location() (*time.Location, error) {
	if c.Broker.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Broker.Timezone)
	if err != nil {
		return nil, fmt.Errorf("broker.timezone: %w", err)
	}
	return loc, nil
}

// StrategyParams returns the strategy settings with the top-level symbol.
func (c *Config) StrategyParams() strategies.TrendBracketConfig {
	p := c.Strategy.Params
	p.Symbol = c.Symbol
	return p
}

func (c *Config) ThrottleConfig() risk.ThrottleConfig {
	return risk.ThrottleConfig{
		MaxTradesPerDay: c.Throttle.MaxTradesPerDay,
		CooldownBars:    c.Throttle.CooldownBars,
	}
}

func (c *Config) LiveConfig() (live.Config, error) {
	loc, err := c.Location()
	if err != nil {
		return live.Config{}, err
	}
	lc := live.Config{
		Symbol:          c.Symbol,
		EntryTimeframe:  market.Timeframe(strings.ToUpper(c.Loop.EntryTimeframe)),
		EntryCount:      c.Loop.EntryCount,
		HigherTimeframe: market.Timeframe(strings.ToUpper(c.Loop.HigherTimeframe)),
		HigherCount:     c.Loop.HigherCount,
		MinBars:         c.Strategy.Params.MinBars,
		Location:        loc,
	}
	for _, d := range []struct {
		field string
		value string
		dst   *time.Duration
	}{
		{"loop.startup_delay", c.Loop.StartupDelay, &lc.StartupDelay},
		{"loop.connect_backoff", c.Loop.ConnectBackoff, &lc.ConnectBackoff},
		{"loop.data_backoff", c.Loop.DataBackoff, &lc.DataBackoff},
		{"loop.poll_interval", c.Loop.PollInterval, &lc.PollInterval},
		{"loop.error_backoff", c.Loop.ErrorBackoff, &lc.ErrorBackoff},
	} {
		v, err := Duration(d.field, d.value)
		if err != nil {
			return live.Config{}, err
		}
		*d.dst = v
	}
	return lc, nil
}

func (c *Config) RetryPolicy() (retry.Policy, error) {
	delay, err := Duration("retry.delay", c.Retry.Delay)
	if err != nil {
		return retry.Policy{}, err
	}
	step, err := Duration("retry.step", c.Retry.Step)
	if err != nil {
		return retry.Policy{}, err
	}
	return retry.Policy{MaxAttempts: c.Retry.Attempts, Delay: delay, Step: step}, nil
}

func (c *Config) FXOpenConfig() (fxopen.Config, error) {
	loc, err := c.Location()
	if err != nil {
		return fxopen.Config{}, err
	}
	policy, err := c.RetryPolicy()
	if err != nil {
		return fxopen.Config{}, err
	}
	timeout, err := Duration("retry.timeout", c.Retry.Timeout)
	if err != nil {
		return fxopen.Config{}, err
	}
	return fxopen.Config{
		BaseURL:  c.Broker.BaseURL,
		TokenID:  c.Broker.TokenID,
		TokenKey: c.Broker.TokenKey,
		Timeout:  timeout,
		Location: loc,
		Retry:    policy,
	}, nil
}

func (c *Config) SMTPConfig() notify.SMTPConfig {
	var to []string
	for _, addr := range strings.Split(c.Notify.ReceiverEmail, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}
	return notify.SMTPConfig{
		Host:     c.Notify.SMTPHost,
		Port:     c.Notify.SMTPPort,
		From:     c.Notify.SenderEmail,
		Password: c.Notify.SenderPassword,
		To:       to,
	}
}

func (c *Config) DashboardConfig() dashboard.Config {
	return dashboard.Config{
		Port:      c.Dashboard.Port,
		TailLines: c.Dashboard.TailLines,
	}
}
