package store

import (
	"context"
	"log/slog"

	"riskboard/internal/platform/config"
	platformredis "riskboard/internal/platform/redis"
	"riskboard/internal/risk/models"
)

const (
	cacheKeyAll    = "risks:all"
	cacheKeyPrefix = "risks:"
)

// CachedStore is a read-through cache over a risk store. Unfiltered lists
// and single gets are cached for config.CacheTTL; every write invalidates
// the list key and the record's key. Cache failures degrade to the
// underlying store.
type CachedStore struct {
	next   Store
	cache  *platformredis.Client
	logger *slog.Logger
}

// NewCached decorates next with a Redis read-through cache.
func NewCached(next Store, cache *platformredis.Client, logger *slog.Logger) *CachedStore {
	return &CachedStore{next: next, cache: cache, logger: logger}
}

func (s *CachedStore) List(ctx context.Context, filters models.RiskFilters) ([]models.Risk, error) {
	// Filtered listings bypass the cache; only the canonical list is cached.
	if filters != (models.RiskFilters{}) {
		return s.next.List(ctx, filters)
	}

	var cached []models.Risk
	hit, err := platformredis.GetJSON(ctx, s.cache, cacheKeyAll, &cached)
	if err != nil {
		s.logger.Warn("risk cache read failed", "key", cacheKeyAll, "error", err)
	} else if hit {
		return cached, nil
	}

	risks, err := s.next.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	if err := platformredis.SetJSON(ctx, s.cache, cacheKeyAll, risks, config.CacheTTL); err != nil {
		s.logger.Warn("risk cache write failed", "key", cacheKeyAll, "error", err)
	}
	return risks, nil
}

func (s *CachedStore) Get(ctx context.Context, id string) (models.Risk, error) {
	key := cacheKeyPrefix + id
	var cached models.Risk
	hit, err := platformredis.GetJSON(ctx, s.cache, key, &cached)
	if err != nil {
		s.logger.Warn("risk cache read failed", "key", key, "error", err)
	} else if hit {
		return cached, nil
	}

	risk, err := s.next.Get(ctx, id)
	if err != nil {
		return models.Risk{}, err
	}
	if err := platformredis.SetJSON(ctx, s.cache, key, risk, config.CacheTTL); err != nil {
		s.logger.Warn("risk cache write failed", "key", key, "error", err)
	}
	return risk, nil
}

func (s *CachedStore) Create(ctx context.Context, risk models.Risk) error {
	if err := s.next.Create(ctx, risk); err != nil {
		return err
	}
	s.invalidate(ctx, risk.ID)
	return nil
}

func (s *CachedStore) Update(ctx context.Context, risk models.Risk) error {
	if err := s.next.Update(ctx, risk); err != nil {
		return err
	}
	s.invalidate(ctx, risk.ID)
	return nil
}

func (s *CachedStore) ListFollowUps(ctx context.Context, filters models.FollowUpFilters) ([]models.FollowUp, error) {
	return s.next.ListFollowUps(ctx, filters)
}

func (s *CachedStore) CreateFollowUp(ctx context.Context, followUp models.FollowUp) error {
	return s.next.CreateFollowUp(ctx, followUp)
}

func (s *CachedStore) invalidate(ctx context.Context, id string) {
	if err := platformredis.Invalidate(ctx, s.cache, cacheKeyAll, cacheKeyPrefix+id); err != nil {
		s.logger.Warn("risk cache invalidation failed", "id", id, "error", err)
	}
}
