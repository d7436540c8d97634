//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/doctorconnect/internal/domain/providers"
	redisclient "github.com/zatekoja/doctorconnect/internal/infrastructure/clients/redis"
)

func TestRedisAdapter_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	raw := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := raw.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not available at %s: %v", addr, err)
	}
	defer raw.Close()

	adapter := NewRedisAdapter(redisclient.NewFromRedis(raw), "doctorconnect-test:")
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "doctors", []byte(`[{"id":"d1"}]`), time.Minute))
	got, err := adapter.Get(ctx, "doctors")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"d1"}]`, string(got))

	require.NoError(t, adapter.Delete(ctx, "doctors"))
	_, err = adapter.Get(ctx, "doctors")
	assert.ErrorIs(t, err, providers.ErrCacheMiss)
}
