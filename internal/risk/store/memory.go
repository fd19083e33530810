package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"riskboard/internal/risk/models"
	"riskboard/pkg/platform/sentinel"
)

// MemoryStore is a mutex-guarded map store for development and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	risks     map[string]models.Risk
	followUps map[string]models.FollowUp
}

// NewMemory constructs an empty in-memory risk store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		risks:     make(map[string]models.Risk),
		followUps: make(map[string]models.FollowUp),
	}
}

func (s *MemoryStore) List(ctx context.Context, filters models.RiskFilters) ([]models.Risk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Risk, 0, len(s.risks))
	for _, risk := range s.risks {
		if filters.Status != "" && risk.Status != filters.Status {
			continue
		}
		if filters.Owner != "" && !strings.Contains(strings.ToLower(risk.Owner), strings.ToLower(filters.Owner)) {
			continue
		}
		out = append(out, cloneRisk(risk))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (models.Risk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	risk, ok := s.risks[id]
	if !ok {
		return models.Risk{}, sentinel.ErrNotFound
	}
	return cloneRisk(risk), nil
}

func (s *MemoryStore) Create(ctx context.Context, risk models.Risk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.risks[risk.ID]; exists {
		return sentinel.ErrConflict
	}
	s.risks[risk.ID] = cloneRisk(risk)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, risk models.Risk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.risks[risk.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.risks[risk.ID] = cloneRisk(risk)
	return nil
}

func (s *MemoryStore) ListFollowUps(ctx context.Context, filters models.FollowUpFilters) ([]models.FollowUp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.FollowUp, 0, len(s.followUps))
	for _, fu := range s.followUps {
		if filters.RiskID != "" && fu.RiskID != filters.RiskID {
			continue
		}
		out = append(out, fu)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DueDate != out[j].DueDate {
			return out[i].DueDate < out[j].DueDate
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) CreateFollowUp(ctx context.Context, followUp models.FollowUp) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.followUps[followUp.ID]; exists {
		return sentinel.ErrConflict
	}
	s.followUps[followUp.ID] = followUp
	return nil
}

// cloneRisk copies the embedded controls slice so callers cannot mutate
// stored state through the returned value.
func cloneRisk(risk models.Risk) models.Risk {
	if len(risk.Controls) > 0 {
		controls := make([]models.Control, len(risk.Controls))
		copy(controls, risk.Controls)
		risk.Controls = controls
	}
	return risk
}
