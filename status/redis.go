package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Redis keeps the snapshot and log tail in Redis so a dashboard in another
// process can read them.
type Redis struct {
	rdb      *redis.Client
	prefix   string
	maxLines int64
}

func NewRedis(rdb *redis.Client, prefix string, maxLines int) *Redis {
	if prefix == "" {
		prefix = "bracketbot"
	}
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	return &Redis{rdb: rdb, prefix: prefix, maxLines: int64(maxLines)}
}

// NewRedisClient connects and pings.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("redis connection failed", "address", addr, "err", err)
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	slog.Info("redis connected", "address", addr)
	return rdb, nil
}

func (r *Redis) snapshotKey() string { return r.prefix + ":snapshot" }
func (r *Redis) logKey() string      { return r.prefix + ":log" }

func (r *Redis) Save(ctx context.Context, s Snapshot) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return r.rdb.Set(ctx, r.snapshotKey(), b, 0).Err()
}

// Load returns an empty snapshot when none has been saved.
func (r *Redis) Load(ctx context.Context) (Snapshot, error) {
	b, err := r.rdb.Get(ctx, r.snapshotKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, err
	}

	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}

func (r *Redis) AppendLog(ctx context.Context, line string) error {
	if err := r.rdb.RPush(ctx, r.logKey(), line).Err(); err != nil {
		return err
	}
	return r.rdb.LTrim(ctx, r.logKey(), -r.maxLines, -1).Err()
}

func (r *Redis) Tail(ctx context.Context, n int) ([]string, error) {
	if n <= 0 || int64(n) > r.maxLines {
		n = int(r.maxLines)
	}
	return r.rdb.LRange(ctx, r.logKey(), int64(-n), -1).Result()
}
