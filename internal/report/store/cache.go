package store

import (
	"context"
	"log/slog"

	"riskboard/internal/platform/config"
	platformredis "riskboard/internal/platform/redis"
	"riskboard/internal/report/models"
)

const (
	cacheKeyAll    = "reports:all"
	cacheKeyPrefix = "reports:"
)

// CachedStore is a read-through cache over a report store. Unfiltered lists
// and single gets are cached for config.CacheTTL; every write invalidates
// the list key and the record's key.
type CachedStore struct {
	next   Store
	cache  *platformredis.Client
	logger *slog.Logger
}

// NewCached decorates next with a Redis read-through cache.
func NewCached(next Store, cache *platformredis.Client, logger *slog.Logger) *CachedStore {
	return &CachedStore{next: next, cache: cache, logger: logger}
}

func (s *CachedStore) List(ctx context.Context, filters models.ReportFilters) ([]models.Report, error) {
	if filters != (models.ReportFilters{}) {
		return s.next.List(ctx, filters)
	}

	var cached []models.Report
	hit, err := platformredis.GetJSON(ctx, s.cache, cacheKeyAll, &cached)
	if err != nil {
		s.logger.Warn("report cache read failed", "key", cacheKeyAll, "error", err)
	} else if hit {
		return cached, nil
	}

	reports, err := s.next.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	if err := platformredis.SetJSON(ctx, s.cache, cacheKeyAll, reports, config.CacheTTL); err != nil {
		s.logger.Warn("report cache write failed", "key", cacheKeyAll, "error", err)
	}
	return reports, nil
}

func (s *CachedStore) Get(ctx context.Context, id string) (models.Report, error) {
	key := cacheKeyPrefix + id
	var cached models.Report
	hit, err := platformredis.GetJSON(ctx, s.cache, key, &cached)
	if err != nil {
		s.logger.Warn("report cache read failed", "key", key, "error", err)
	} else if hit {
		return cached, nil
	}

	report, err := s.next.Get(ctx, id)
	if err != nil {
		return models.Report{}, err
	}
	if err := platformredis.SetJSON(ctx, s.cache, key, report, config.CacheTTL); err != nil {
		s.logger.Warn("report cache write failed", "key", key, "error", err)
	}
	return report, nil
}

func (s *CachedStore) Create(ctx context.Context, report models.Report) error {
	if err := s.next.Create(ctx, report); err != nil {
		return err
	}
	s.invalidate(ctx, report.ID)
	return nil
}

func (s *CachedStore) Update(ctx context.Context, report models.Report) error {
	if err := s.next.Update(ctx, report); err != nil {
		return err
	}
	s.invalidate(ctx, report.ID)
	return nil
}

func (s *CachedStore) invalidate(ctx context.Context, id string) {
	if err := platformredis.Invalidate(ctx, s.cache, cacheKeyAll, cacheKeyPrefix+id); err != nil {
		s.logger.Warn("report cache invalidation failed", "id", id, "error", err)
	}
}
