package metadata

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisKey(t *testing.T) {
	assert.Equal(t, "signpanel:profile:default", RedisKey(""))
	assert.Equal(t, "signpanel:profile:ops", RedisKey("ops"))
}

// Runs against a live server only when SIGNPANEL_TEST_REDIS_ADDR is set.
func TestRedisRepository_RoundTrip(t *testing.T) {
	addr := os.Getenv("SIGNPANEL_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SIGNPANEL_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	r := NewRedisRepository(redis.NewClient(&redis.Options{Addr: addr}), "test-"+t.Name())
	t.Cleanup(func() {
		_ = r.Clear(ctx)
		_ = r.Close()
	})

	require.NoError(t, r.Set(ctx, "a", []byte("1")))
	require.NoError(t, r.Update(ctx, map[string][]byte{"b": []byte("2")}, []string{"a"}))

	v, err := r.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, v)

	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"b": []byte("2")}, all)
}
