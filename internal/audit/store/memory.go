package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"riskboard/internal/audit/models"
	"riskboard/pkg/platform/sentinel"
)

// MemoryStore is a mutex-guarded map store for development and tests.
type MemoryStore struct {
	mu          sync.RWMutex
	engagements map[string]models.Engagement
	timesheets  map[string]models.Timesheet
	papers      map[string]models.WorkingPaper
	feedback    map[string]models.Feedback
}

// NewMemory constructs an empty in-memory audit store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		engagements: make(map[string]models.Engagement),
		timesheets:  make(map[string]models.Timesheet),
		papers:      make(map[string]models.WorkingPaper),
		feedback:    make(map[string]models.Feedback),
	}
}

func (s *MemoryStore) List(ctx context.Context, filters models.EngagementFilters) ([]models.Engagement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Engagement, 0, len(s.engagements))
	for _, e := range s.engagements {
		if filters.Status != "" && e.Status != filters.Status {
			continue
		}
		if filters.Owner != "" && !strings.Contains(strings.ToLower(e.Owner), strings.ToLower(filters.Owner)) {
			continue
		}
		out = append(out, cloneEngagement(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate != out[j].StartDate {
			return out[i].StartDate > out[j].StartDate
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (models.Engagement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.engagements[id]
	if !ok {
		return models.Engagement{}, sentinel.ErrNotFound
	}
	return cloneEngagement(e), nil
}

func (s *MemoryStore) Create(ctx context.Context, engagement models.Engagement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.engagements[engagement.ID]; exists {
		return sentinel.ErrConflict
	}
	s.engagements[engagement.ID] = cloneEngagement(engagement)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, engagement models.Engagement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.engagements[engagement.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.engagements[engagement.ID] = cloneEngagement(engagement)
	return nil
}

func (s *MemoryStore) ListTimesheets(ctx context.Context, filters models.TimesheetFilters) ([]models.Timesheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Timesheet, 0, len(s.timesheets))
	for _, ts := range s.timesheets {
		if filters.Auditor != "" && !strings.EqualFold(ts.Auditor, filters.Auditor) {
			continue
		}
		out = append(out, ts)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) CreateTimesheet(ctx context.Context, timesheet models.Timesheet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.timesheets[timesheet.ID]; exists {
		return sentinel.ErrConflict
	}
	s.timesheets[timesheet.ID] = timesheet
	return nil
}

func (s *MemoryStore) ListWorkingPapers(ctx context.Context, filters models.WorkingPaperFilters) ([]models.WorkingPaper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.WorkingPaper, 0, len(s.papers))
	for _, wp := range s.papers {
		if filters.AuditID != "" && wp.AuditID != filters.AuditID {
			continue
		}
		out = append(out, wp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) GetWorkingPaper(ctx context.Context, id string) (models.WorkingPaper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wp, ok := s.papers[id]
	if !ok {
		return models.WorkingPaper{}, sentinel.ErrNotFound
	}
	return wp, nil
}

func (s *MemoryStore) CreateWorkingPaper(ctx context.Context, paper models.WorkingPaper) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.papers[paper.ID]; exists {
		return sentinel.ErrConflict
	}
	s.papers[paper.ID] = paper
	return nil
}

func (s *MemoryStore) UpdateWorkingPaper(ctx context.Context, paper models.WorkingPaper) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.papers[paper.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.papers[paper.ID] = paper
	return nil
}

func (s *MemoryStore) CreateFeedback(ctx context.Context, feedback models.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.feedback[feedback.ID]; exists {
		return sentinel.ErrConflict
	}
	s.feedback[feedback.ID] = feedback
	return nil
}

// cloneEngagement copies the embedded slices so callers cannot mutate stored
// state through the returned value.
func cloneEngagement(e models.Engagement) models.Engagement {
	if len(e.RiskIDs) > 0 {
		riskIDs := make([]string, len(e.RiskIDs))
		copy(riskIDs, e.RiskIDs)
		e.RiskIDs = riskIDs
	}
	if len(e.Findings) > 0 {
		findings := make([]models.Finding, len(e.Findings))
		copy(findings, e.Findings)
		e.Findings = findings
	}
	return e
}
