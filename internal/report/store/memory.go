package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"riskboard/internal/report/models"
	"riskboard/pkg/platform/sentinel"
)

// MemoryStore is a mutex-guarded map store for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string]models.Report
}

// NewMemory constructs an empty in-memory report store.
func NewMemory() *MemoryStore {
	return &MemoryStore{reports: make(map[string]models.Report)}
}

func (s *MemoryStore) List(ctx context.Context, filters models.ReportFilters) ([]models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Report, 0, len(s.reports))
	for _, r := range s.reports {
		if filters.Status != "" && r.Status != filters.Status {
			continue
		}
		if filters.Owner != "" && !strings.Contains(strings.ToLower(r.Owner), strings.ToLower(filters.Owner)) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[id]
	if !ok {
		return models.Report{}, sentinel.ErrNotFound
	}
	return r, nil
}

func (s *MemoryStore) Create(ctx context.Context, report models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reports[report.ID]; exists {
		return sentinel.ErrConflict
	}
	s.reports[report.ID] = report
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, report models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reports[report.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.reports[report.ID] = report
	return nil
}
