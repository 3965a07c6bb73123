package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/crewlink/crewlink-api/internal/models"
	appErrors "github.com/crewlink/crewlink-api/pkg/errors"
)

const statsCacheKey = "stats:snapshot"

type statsReader interface {
	Snapshot(ctx context.Context) (*models.SystemStats, error)
}

// StatsService serves the dashboard counters. The snapshot is a pure read
// over the stores; the cache is strictly an optimisation and every workflow
// write invalidates it synchronously, so readers never see a stale count
// that a completed write should have changed.
type StatsService struct {
	repo     statsReader
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewStatsService constructs the service.
func NewStatsService(repo statsReader, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &StatsService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Snapshot returns current counters and whether the cache served them.
func (s *StatsService) Snapshot(ctx context.Context) (*models.SystemStats, bool, error) {
	if s.cache.Enabled() {
		var cached models.SystemStats
		if hit, err := s.cache.Get(ctx, statsCacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	stats, err := s.repo.Snapshot(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to compute stats")
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, statsCacheKey, stats, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache stats snapshot", zap.Error(err))
		}
	}
	return stats, false, nil
}

// Invalidate drops the cached snapshot after a workflow write.
func (s *StatsService) Invalidate(ctx context.Context) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, statsCacheKey); err != nil {
		s.logger.Warn("failed to invalidate stats cache", zap.Error(err))
	}
}
