package helpers

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenVersions_Disabled(t *testing.T) {
	v := NewTokenVersions(nil)
	ctx := context.Background()

	assert.False(t, v.Enabled())
	require.NoError(t, v.Bump(ctx, "u1"))
	n, err := v.Current(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTokenVersions_Bump(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	v := NewTokenVersions(rdb)
	ctx := context.Background()

	n, err := v.Current(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, v.Bump(ctx, "u1"))
	require.NoError(t, v.Bump(ctx, "u1"))

	n, err = v.Current(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	other, err := v.Current(ctx, "u2")
	require.NoError(t, err)
	assert.Zero(t, other)
}

func TestNewRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := NewRedisClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	_ = rdb.Close()

	mr.Close()
	_, err = NewRedisClient(context.Background(), mr.Addr(), "", 0)
	assert.Error(t, err)
}
