package cache

import (
	"context"
	"testing"
	"time"

	"github.com/academia/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSummary(month time.Month, year int) *ledger.MonthlySummary {
	return &ledger.MonthlySummary{
		Month:            month,
		Year:             year,
		Income:           decimal.NewFromInt(12000),
		Expenses:         decimal.NewFromInt(4000),
		Balance:          decimal.NewFromInt(8000),
		TodayIncome:      decimal.NewFromInt(500),
		OutstandingTotal: decimal.NewFromInt(30000),
	}
}

func TestInMemoryReportCache(t *testing.T) {
	ctx := context.Background()

	t.Run("miss returns nil without error", func(t *testing.T) {
		cache := NewInMemoryReportCache()

		summary, err := cache.GetMonthlySummary(ctx, time.March, 2026)

		assert.NoError(t, err)
		assert.Nil(t, summary)
	})

	t.Run("set then get round-trips the summary", func(t *testing.T) {
		cache := NewInMemoryReportCache()

		err := cache.SetMonthlySummary(ctx, sampleSummary(time.March, 2026), time.Minute)
		require.NoError(t, err)

		summary, err := cache.GetMonthlySummary(ctx, time.March, 2026)
		require.NoError(t, err)
		require.NotNil(t, summary)
		assert.Equal(t, time.March, summary.Month)
		assert.True(t, summary.Income.Equal(decimal.NewFromInt(12000)))
	})

	t.Run("months are cached independently", func(t *testing.T) {
		cache := NewInMemoryReportCache()

		require.NoError(t, cache.SetMonthlySummary(ctx, sampleSummary(time.March, 2026), time.Minute))

		summary, err := cache.GetMonthlySummary(ctx, time.April, 2026)
		require.NoError(t, err)
		assert.Nil(t, summary)
	})

	t.Run("invalidation drops only the affected month", func(t *testing.T) {
		cache := NewInMemoryReportCache()

		require.NoError(t, cache.SetMonthlySummary(ctx, sampleSummary(time.March, 2026), time.Minute))
		require.NoError(t, cache.SetMonthlySummary(ctx, sampleSummary(time.April, 2026), time.Minute))

		require.NoError(t, cache.InvalidateMonth(ctx, time.March, 2026))

		march, err := cache.GetMonthlySummary(ctx, time.March, 2026)
		require.NoError(t, err)
		assert.Nil(t, march)

		april, err := cache.GetMonthlySummary(ctx, time.April, 2026)
		require.NoError(t, err)
		assert.NotNil(t, april)
	})

	t.Run("expired entries are misses", func(t *testing.T) {
		cache := NewInMemoryReportCache()

		require.NoError(t, cache.SetMonthlySummary(ctx, sampleSummary(time.March, 2026), -time.Second))

		summary, err := cache.GetMonthlySummary(ctx, time.March, 2026)
		require.NoError(t, err)
		assert.Nil(t, summary)
	})
}
