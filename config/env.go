package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Load builds the runtime config: defaults or the file at path, then .env,
// then process environment overrides, then validation.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = parseFile(path); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment. Unset variables leave the
// field alone.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"FXOPEN_TOKEN_ID":  &c.Broker.TokenID,
		"FXOPEN_TOKEN_KEY": &c.Broker.TokenKey,
		"FXOPEN_BASE_URL":  &c.Broker.BaseURL,
		"SYMBOL":           &c.Symbol,
		"SENDER_EMAIL":     &c.Notify.SenderEmail,
		"SENDER_PASSWORD":  &c.Notify.SenderPassword,
		"RECEIVER_EMAIL":   &c.Notify.ReceiverEmail,
		"LOG_LEVEL":        &c.Log.Level,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Dashboard.Port = port
	}
	if v, ok := lookup("REDIS_ADDR"); ok && v != "" {
		c.Status.RedisAddr = v
		c.Status.Backend = "redis"
	}
	// Mail credentials present means the operator wants mail.
	if c.Notify.SenderEmail != "" && c.Notify.SenderPassword != "" && c.Notify.ReceiverEmail != "" {
		c.Notify.Enabled = true
	}
	return nil
}
