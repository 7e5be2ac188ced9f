package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// GroupScoreCache holds rendered group aggregate payloads. The scoring
// engine itself is pure; callers cache its output here and invalidate on
// any profile or answer mutation in the group.
type GroupScoreCache interface {
	Get(groupName string) ([]byte, bool)
	Set(groupName string, payload []byte, ttl time.Duration)
	Invalidate(groupName string)
}

type memoryScoreCache struct {
	mu    sync.Mutex
	items map[string]scoreCacheItem
}

type scoreCacheItem struct {
	payload []byte
	expires time.Time
}

func NewMemoryScoreCache() GroupScoreCache {
	return &memoryScoreCache{items: make(map[string]scoreCacheItem)}
}

func (c *memoryScoreCache) Get(groupName string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[groupName]
	if !ok {
		return nil, false
	}
	if time.Now().UTC().After(item.expires) {
		delete(c.items, groupName)
		return nil, false
	}
	return item.payload, true
}

func (c *memoryScoreCache) Set(groupName string, payload []byte, ttl time.Duration) {
	if strings.TrimSpace(groupName) == "" || ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[groupName] = scoreCacheItem{
		payload: payload,
		expires: time.Now().UTC().Add(ttl),
	}
}

func (c *memoryScoreCache) Invalidate(groupName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, groupName)
}

type redisScoreCacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisScoreCache struct {
	client redisScoreCacheClient
	prefix string
}

func NewRedisScoreCache(client *redis.Client) GroupScoreCache {
	if client == nil {
		return nil
	}
	return &redisScoreCache{
		client: client,
		prefix: "scores:group:",
	}
}

func (c *redisScoreCache) Get(groupName string) ([]byte, bool) {
	if strings.TrimSpace(groupName) == "" {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	data, err := c.client.Get(ctx, c.prefix+groupName).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *redisScoreCache) Set(groupName string, payload []byte, ttl time.Duration) {
	if strings.TrimSpace(groupName) == "" || ttl <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_ = c.client.Set(ctx, c.prefix+groupName, payload, ttl).Err()
}

func (c *redisScoreCache) Invalidate(groupName string) {
	if strings.TrimSpace(groupName) == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_ = c.client.Del(ctx, c.prefix+groupName).Err()
}
