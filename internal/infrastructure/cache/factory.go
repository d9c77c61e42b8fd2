package cache

import (
	"github.com/academia/backend/internal/domain/ledger"
	"github.com/academia/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewReportCache creates the report cache for the given configuration.
// When Redis is configured it is tried first; on failure (or when no Redis
// host is configured at all) the in-memory cache is used instead, which is
// correct for a single-instance deployment.
func NewReportCache(cfg config.RedisConfig, logger *zap.Logger) ledger.ReportCache {
	if logger == nil {
		logger = zap.NewNop()
	}

	if !cfg.Enabled() {
		logger.Info("redis not configured, using in-memory report cache")
		return NewInMemoryReportCache()
	}

	redisCache, err := NewRedisReportCache(cfg)
	if err != nil {
		logger.Warn("redis unavailable, falling back to in-memory report cache",
			zap.String("addr", cfg.Addr()),
			zap.Error(err),
		)
		return NewInMemoryReportCache()
	}

	logger.Info("using redis report cache", zap.String("addr", cfg.Addr()))
	return redisCache
}
