package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

// NewRedisClientWithCleanup returns a new redis client backed by an in-memory
// server. Both are closed automatically when the test and its subtests finish.
func NewRedisClientWithCleanup(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	rsClient := redis.NewClient(&redis.Options{
		Addr: server.Addr(),
	})
	t.Cleanup(func() {
		if err := rsClient.Close(); err != nil {
			t.Errorf("failed to close redis client: %v", err)
		}
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	status := rsClient.Ping(ctx)
	if err := status.Err(); err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	return rsClient, server
}
