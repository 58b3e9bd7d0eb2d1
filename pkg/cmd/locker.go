package cmd

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/vendaflow/vendaflow/pkg/lock"
)

// NewDealLocker builds the per-deal locker. An empty redis URL falls back
// to the in-process locker, which is only safe with a single worker.
func NewDealLocker(redisURL string) lock.DealLocker {
	if redisURL == "" {
		return lock.NewMemoryLocker()
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		panic(fmt.Errorf("invalid redis URL: %w", err))
	}

	return lock.NewRedisLocker(redis.NewClient(opts))
}
