package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/academia/backend/internal/domain/ledger"
	"github.com/academia/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// RedisReportCache implements ledger.ReportCache using Redis.
// Summaries are stored as JSON under one key per calendar month, so a
// mutation invalidates exactly the month it touched.
type RedisReportCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisReportCache creates a new Redis-based report cache
func NewRedisReportCache(cfg config.RedisConfig) (*RedisReportCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisReportCache{
		client:    client,
		keyPrefix: "report:summary:",
	}, nil
}

// NewRedisReportCacheWithClient creates a cache with an existing Redis client
// This is useful for testing or when sharing a client across components
func NewRedisReportCacheWithClient(client *redis.Client, keyPrefix string) *RedisReportCache {
	if keyPrefix == "" {
		keyPrefix = "report:summary:"
	}
	return &RedisReportCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (c *RedisReportCache) monthKey(month time.Month, year int) string {
	return fmt.Sprintf("%s%04d-%02d", c.keyPrefix, year, int(month))
}

// GetMonthlySummary returns the cached summary for the month, or nil on a miss
func (c *RedisReportCache) GetMonthlySummary(ctx context.Context, month time.Month, year int) (*ledger.MonthlySummary, error) {
	payload, err := c.client.Get(ctx, c.monthKey(month, year)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cached summary: %w", err)
	}

	var summary ledger.MonthlySummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		// A corrupt entry is treated as a miss; the next Set overwrites it.
		return nil, nil
	}
	return &summary, nil
}

// SetMonthlySummary stores a summary with the given TTL
func (c *RedisReportCache) SetMonthlySummary(ctx context.Context, summary *ledger.MonthlySummary, ttl time.Duration) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	if err := c.client.Set(ctx, c.monthKey(summary.Month, summary.Year), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache summary: %w", err)
	}
	return nil
}

// InvalidateMonth drops the cached summary for the month
func (c *RedisReportCache) InvalidateMonth(ctx context.Context, month time.Month, year int) error {
	if err := c.client.Del(ctx, c.monthKey(month, year)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached summary: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisReportCache) Close() error {
	return c.client.Close()
}

// Ensure RedisReportCache implements ReportCache
var _ ledger.ReportCache = (*RedisReportCache)(nil)
