package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/academia/backend/internal/domain/ledger"
)

// summaryEntry is a cached summary with expiration
type summaryEntry struct {
	summary   ledger.MonthlySummary
	expiresAt time.Time
}

// InMemoryReportCache implements ReportCache using an in-memory map
// This is suitable for single-instance deployments and testing
type InMemoryReportCache struct {
	mu      sync.RWMutex
	entries map[string]summaryEntry
}

// NewInMemoryReportCache creates a new in-memory report cache
func NewInMemoryReportCache() *InMemoryReportCache {
	return &InMemoryReportCache{
		entries: make(map[string]summaryEntry),
	}
}

func monthKey(month time.Month, year int) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// GetMonthlySummary returns the cached summary for the month, or nil on a miss
func (c *InMemoryReportCache) GetMonthlySummary(ctx context.Context, month time.Month, year int) (*ledger.MonthlySummary, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[monthKey(month, year)]
	if !exists {
		return nil, nil
	}
	if time.Now().After(e.expiresAt) {
		return nil, nil
	}

	summary := e.summary
	return &summary, nil
}

// SetMonthlySummary stores a summary with the given TTL
func (c *InMemoryReportCache) SetMonthlySummary(ctx context.Context, summary *ledger.MonthlySummary, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[monthKey(summary.Month, summary.Year)] = summaryEntry{
		summary:   *summary,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// InvalidateMonth drops the cached summary for the month
func (c *InMemoryReportCache) InvalidateMonth(ctx context.Context, month time.Month, year int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, monthKey(month, year))
	return nil
}

// Close releases resources; a no-op for the in-memory cache
func (c *InMemoryReportCache) Close() error {
	return nil
}

// Ensure InMemoryReportCache implements ReportCache
var _ ledger.ReportCache = (*InMemoryReportCache)(nil)
