package helpers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient initializes a redis client and pings it
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

// TokenVersions keeps a per-user counter embedded in issued tokens. Bumping
// the counter invalidates every token issued before. A nil client disables
// the store: every version reads as 0.
type TokenVersions struct {
	rdb *redis.Client
}

func NewTokenVersions(rdb *redis.Client) *TokenVersions {
	return &TokenVersions{rdb: rdb}
}

func KeyTokenVersion(uid string) string {
	return "user:token:version:" + uid
}

func (v *TokenVersions) Enabled() bool { return v != nil && v.rdb != nil }

func (v *TokenVersions) Current(ctx context.Context, uid string) (int64, error) {
	if !v.Enabled() {
		return 0, nil
	}
	n, err := v.rdb.Get(ctx, KeyTokenVersion(uid)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (v *TokenVersions) Bump(ctx context.Context, uid string) error {
	if !v.Enabled() {
		return nil
	}
	return v.rdb.Incr(ctx, KeyTokenVersion(uid)).Err()
}
