package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestMemoryScoreCache(t *testing.T) {
	cache := NewMemoryScoreCache()

	payload := []byte(`{"aggregate":{"Attention":1.5}}`)
	cache.Set("Year 1", payload, time.Minute)

	got, ok := cache.Get("Year 1")
	if !ok || !bytes.Equal(got, payload) {
		t.Fatalf("expected cached payload back, ok=%v", ok)
	}

	cache.Invalidate("Year 1")
	if _, ok := cache.Get("Year 1"); ok {
		t.Fatalf("expected entry invalidated")
	}
}

func TestMemoryScoreCache_Expiry(t *testing.T) {
	cache := NewMemoryScoreCache()

	cache.Set("Year 1", []byte(`{}`), -time.Second)
	if _, ok := cache.Get("Year 1"); ok {
		t.Fatalf("expected expired entry to miss")
	}
}

func TestMemoryScoreCache_IgnoresEmptyKeyAndTTL(t *testing.T) {
	cache := NewMemoryScoreCache()

	cache.Set("", []byte(`{}`), time.Minute)
	cache.Set("Year 1", []byte(`{}`), 0)
	if _, ok := cache.Get(""); ok {
		t.Fatalf("empty key must not cache")
	}
	if _, ok := cache.Get("Year 1"); ok {
		t.Fatalf("zero ttl must not cache")
	}
}

type fakeRedisScoreKV struct {
	values map[string][]byte
}

func newFakeRedisScoreKV() *fakeRedisScoreKV {
	return &fakeRedisScoreKV{values: make(map[string][]byte)}
}

func (f *fakeRedisScoreKV) Get(_ context.Context, key string) *redis.StringCmd {
	data, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(data), nil)
}

func (f *fakeRedisScoreKV) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.values[key] = value.([]byte)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedisScoreKV) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisScoreCache(t *testing.T) {
	kv := newFakeRedisScoreKV()
	cache := &redisScoreCache{client: kv, prefix: "scores:group:"}

	payload := []byte(`{"aggregate":{"Attention":2}}`)
	cache.Set("Year 1", payload, time.Minute)
	if _, ok := kv.values["scores:group:Year 1"]; !ok {
		t.Fatalf("expected key under prefix, got %v", kv.values)
	}

	got, ok := cache.Get("Year 1")
	if !ok || !bytes.Equal(got, payload) {
		t.Fatalf("expected cached payload back, ok=%v", ok)
	}

	cache.Invalidate("Year 1")
	if _, ok := cache.Get("Year 1"); ok {
		t.Fatalf("expected entry invalidated")
	}
}

func TestRedisScoreCache_MissReturnsFalse(t *testing.T) {
	cache := &redisScoreCache{client: newFakeRedisScoreKV(), prefix: "scores:group:"}

	if _, ok := cache.Get("nothing"); ok {
		t.Fatalf("expected a miss")
	}
}
