package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const rateKeyPrefix = "fx:rate:"

// RateCache хранит курсы валют к базовой валюте
type RateCache interface {
	Get(ctx context.Context, currency string) (decimal.Decimal, bool)
	Set(ctx context.Context, currency string, rate decimal.Decimal, ttl time.Duration) error
}

type RedisRateCache struct {
	client *redis.Client
}

func NewRedisRateCache(addr string) *RedisRateCache {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisRateCache{client: rdb}
}

func (c *RedisRateCache) Get(ctx context.Context, currency string) (decimal.Decimal, bool) {
	val, err := c.client.Get(ctx, rateKeyPrefix+currency).Result()
	if err != nil {
		return decimal.Zero, false
	}
	rate, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false
	}
	return rate, true
}

func (c *RedisRateCache) Set(ctx context.Context, currency string, rate decimal.Decimal, ttl time.Duration) error {
	return c.client.Set(ctx, rateKeyPrefix+currency, rate.String(), ttl).Err()
}

func (c *RedisRateCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisRateCache) Close() error {
	return c.client.Close()
}

type memoryRate struct {
	rate    decimal.Decimal
	expires time.Time
}

// MemoryRateCache используется, когда Redis не настроен, и в тестах
type MemoryRateCache struct {
	mu    sync.RWMutex
	rates map[string]memoryRate
	now   func() time.Time
}

func NewMemoryRateCache() *MemoryRateCache {
	return &MemoryRateCache{rates: make(map[string]memoryRate), now: time.Now}
}

func (c *MemoryRateCache) Get(_ context.Context, currency string) (decimal.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.rates[currency]
	if !ok || (!r.expires.IsZero() && c.now().After(r.expires)) {
		return decimal.Zero, false
	}
	return r.rate, true
}

func (c *MemoryRateCache) Set(_ context.Context, currency string, rate decimal.Decimal, ttl time.Duration) error {
	if currency == "" {
		return errors.New("empty currency code")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := memoryRate{rate: rate}
	if ttl > 0 {
		entry.expires = c.now().Add(ttl)
	}
	c.rates[currency] = entry
	return nil
}
