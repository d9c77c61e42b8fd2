package ledger

import (
	"context"
	"time"
)

// ReportCache caches computed monthly summaries. Implementations must
// treat a miss as (nil, nil); errors are reserved for backend failures.
// Mutating services invalidate the affected month so staleness is bounded
// by the TTL only between a mutation and its invalidation call.
type ReportCache interface {
	// GetMonthlySummary returns the cached summary for the month, or nil
	// on a miss.
	GetMonthlySummary(ctx context.Context, month time.Month, year int) (*MonthlySummary, error)

	// SetMonthlySummary stores a summary with the given TTL.
	SetMonthlySummary(ctx context.Context, summary *MonthlySummary, ttl time.Duration) error

	// InvalidateMonth drops the cached summary for the month.
	InvalidateMonth(ctx context.Context, month time.Month, year int) error

	// Close releases any backend resources.
	Close() error
}
