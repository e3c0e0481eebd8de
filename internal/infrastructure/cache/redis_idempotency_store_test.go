package cache

import (
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestNewRedisIdempotencyStoreWithClient_DefaultPrefix(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	store := NewRedisIdempotencyStoreWithClient(client, "")
	defer store.Close()

	assert.Equal(t, DefaultKeyPrefix, store.keyPrefix)

	custom := NewRedisIdempotencyStoreWithClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), "test:")
	defer custom.Close()
	assert.Equal(t, "test:", custom.keyPrefix)
}
