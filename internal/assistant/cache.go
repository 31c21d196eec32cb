package assistant

//go:generate mockgen -destination=./cache_mock_test.go -package=assistant -source=cache.go ReplyCache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "partselect:reply:"

// ReplyCache defines the contract for remembering replies to identical prompts.
type ReplyCache interface {
	// Get returns the cached reply and whether there was one.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, reply string) error
}

// NewRedisClient connects to redis and checks the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return client, nil
}

// redisReplyCache stores replies as plain strings with a TTL.
type redisReplyCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisReplyCache creates a cache on the given client.
func NewRedisReplyCache(rdb *redis.Client, ttl time.Duration) ReplyCache {
	return &redisReplyCache{
		rdb: rdb,
		ttl: ttl,
	}
}

func (c *redisReplyCache) Get(ctx context.Context, key string) (string, bool, error) {
	reply, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("could not read cached reply: %w", err)
	}
	return reply, true, nil
}

func (c *redisReplyCache) Set(ctx context.Context, key, reply string) error {
	if err := c.rdb.Set(ctx, key, reply, c.ttl).Err(); err != nil {
		return fmt.Errorf("could not cache reply: %w", err)
	}
	return nil
}

// noopReplyCache never remembers anything.
type noopReplyCache struct{}

// NewNoopReplyCache is used when no redis is configured.
func NewNoopReplyCache() ReplyCache {
	return noopReplyCache{}
}

func (noopReplyCache) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, nil
}

func (noopReplyCache) Set(ctx context.Context, key, reply string) error {
	return nil
}

// cacheKey identifies a prompt by everything the model sees.
func cacheKey(p Prompt) string {
	h := sha256.New()
	h.Write([]byte(p.System))
	for _, turn := range p.History {
		h.Write([]byte{0})
		h.Write([]byte(turn.Role))
		h.Write([]byte{':'})
		h.Write([]byte(turn.Content))
	}
	h.Write([]byte{0})
	h.Write([]byte(p.User))
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}
