package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testRedisCache(t *testing.T) (Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCacheFromClient(client)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c, _ := testRedisCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "board:abc", []byte("payload"), time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	data, found, err := c.Get(ctx, "board:abc")
	if err != nil || !found {
		t.Fatalf("Get = found=%v err=%v", found, err)
	}
	if string(data) != "payload" {
		t.Errorf("data = %q", data)
	}
}

func TestRedisCacheMiss(t *testing.T) {
	c, _ := testRedisCache(t)

	_, found, err := c.Get(context.Background(), "never-set")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("absent key should miss")
	}
}

func TestRedisCacheExpiry(t *testing.T) {
	c, mr := testRedisCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, found, _ := c.Get(ctx, "k"); found {
		t.Error("expired entry should miss")
	}
}

func TestRedisCacheDelete(t *testing.T) {
	c, _ := testRedisCache(t)
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), 0)
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found, _ := c.Get(ctx, "k"); found {
		t.Error("deleted entry should miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("double Delete failed: %v", err)
	}
}
