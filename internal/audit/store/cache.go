package store

import (
	"context"
	"log/slog"

	"riskboard/internal/audit/models"
	"riskboard/internal/platform/config"
	platformredis "riskboard/internal/platform/redis"
)

const (
	cacheKeyAll    = "audits:all"
	cacheKeyPrefix = "audits:"
)

// CachedStore is a read-through cache over an audit store. Unfiltered
// engagement lists and single gets are cached for config.CacheTTL; every
// engagement write invalidates the list key and the record's key.
// Timesheets, working papers, and feedback bypass the cache.
type CachedStore struct {
	next   Store
	cache  *platformredis.Client
	logger *slog.Logger
}

// NewCached decorates next with a Redis read-through cache.
func NewCached(next Store, cache *platformredis.Client, logger *slog.Logger) *CachedStore {
	return &CachedStore{next: next, cache: cache, logger: logger}
}

func (s *CachedStore) List(ctx context.Context, filters models.EngagementFilters) ([]models.Engagement, error) {
	if filters != (models.EngagementFilters{}) {
		return s.next.List(ctx, filters)
	}

	var cached []models.Engagement
	hit, err := platformredis.GetJSON(ctx, s.cache, cacheKeyAll, &cached)
	if err != nil {
		s.logger.Warn("audit cache read failed", "key", cacheKeyAll, "error", err)
	} else if hit {
		return cached, nil
	}

	engagements, err := s.next.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	if err := platformredis.SetJSON(ctx, s.cache, cacheKeyAll, engagements, config.CacheTTL); err != nil {
		s.logger.Warn("audit cache write failed", "key", cacheKeyAll, "error", err)
	}
	return engagements, nil
}

func (s *CachedStore) Get(ctx context.Context, id string) (models.Engagement, error) {
	key := cacheKeyPrefix + id
	var cached models.Engagement
	hit, err := platformredis.GetJSON(ctx, s.cache, key, &cached)
	if err != nil {
		s.logger.Warn("audit cache read failed", "key", key, "error", err)
	} else if hit {
		return cached, nil
	}

	engagement, err := s.next.Get(ctx, id)
	if err != nil {
		return models.Engagement{}, err
	}
	if err := platformredis.SetJSON(ctx, s.cache, key, engagement, config.CacheTTL); err != nil {
		s.logger.Warn("audit cache write failed", "key", key, "error", err)
	}
	return engagement, nil
}

func (s *CachedStore) Create(ctx context.Context, engagement models.Engagement) error {
	if err := s.next.Create(ctx, engagement); err != nil {
		return err
	}
	s.invalidate(ctx, engagement.ID)
	return nil
}

func (s *CachedStore) Update(ctx context.Context, engagement models.Engagement) error {
	if err := s.next.Update(ctx, engagement); err != nil {
		return err
	}
	s.invalidate(ctx, engagement.ID)
	return nil
}

func (s *CachedStore) ListTimesheets(ctx context.Context, filters models.TimesheetFilters) ([]models.Timesheet, error) {
	return s.next.ListTimesheets(ctx, filters)
}

func (s *CachedStore) CreateTimesheet(ctx context.Context, timesheet models.Timesheet) error {
	return s.next.CreateTimesheet(ctx, timesheet)
}

func (s *CachedStore) ListWorkingPapers(ctx context.Context, filters models.WorkingPaperFilters) ([]models.WorkingPaper, error) {
	return s.next.ListWorkingPapers(ctx, filters)
}

func (s *CachedStore) GetWorkingPaper(ctx context.Context, id string) (models.WorkingPaper, error) {
	return s.next.GetWorkingPaper(ctx, id)
}

func (s *CachedStore) CreateWorkingPaper(ctx context.Context, paper models.WorkingPaper) error {
	return s.next.CreateWorkingPaper(ctx, paper)
}

func (s *CachedStore) UpdateWorkingPaper(ctx context.Context, paper models.WorkingPaper) error {
	return s.next.UpdateWorkingPaper(ctx, paper)
}

func (s *CachedStore) CreateFeedback(ctx context.Context, feedback models.Feedback) error {
	return s.next.CreateFeedback(ctx, feedback)
}

func (s *CachedStore) invalidate(ctx context.Context, id string) {
	if err := platformredis.Invalidate(ctx, s.cache, cacheKeyAll, cacheKeyPrefix+id); err != nil {
		s.logger.Warn("audit cache invalidation failed", "id", id, "error", err)
	}
}
