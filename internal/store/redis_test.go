package store_test

import (
	"context"
	"os"
	"testing"

	"cgpa-backend/internal/store"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

// Runs against a real server: REDIS_ADDR=127.0.0.1:6379 go test ./internal/store
// The test flushes database 15.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	require.NoError(t, client.Ping(ctx).Err())
	require.NoError(t, client.FlushDB(ctx).Err())

	st := store.NewRedisStore(client)
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		_ = st.Close()
	})

	exerciseStore(t, st)
}
