package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"riskboard/internal/audit/models"
	"riskboard/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *MemoryStore
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemory()
	s.ctx = context.Background()
}

func (s *MemoryStoreSuite) seed(id, startDate string, status models.EngagementStatus) models.Engagement {
	now := time.Now().UTC()
	e := models.Engagement{
		ID:        id,
		Code:      "AUD-202603-" + id,
		Title:     "Engagement " + id,
		Owner:     "Lead",
		StartDate: startDate,
		EndDate:   startDate,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Require().NoError(s.store.Create(s.ctx, e))
	return e
}

func (s *MemoryStoreSuite) TestListOrdersByStartDate() {
	s.seed("e1", "2026-01-10", models.EngagementPlanned)
	s.seed("e2", "2026-03-10", models.EngagementPlanned)
	s.seed("e3", "2026-02-10", models.EngagementCompleted)

	all, err := s.store.List(s.ctx, models.EngagementFilters{})
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("e2", all[0].ID)
	s.Equal("e3", all[1].ID)
	s.Equal("e1", all[2].ID)

	planned, err := s.store.List(s.ctx, models.EngagementFilters{Status: models.EngagementPlanned})
	s.Require().NoError(err)
	s.Len(planned, 2)
}

func (s *MemoryStoreSuite) TestGetAndUpdateUnknownID() {
	_, err := s.store.Get(s.ctx, "missing")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	err = s.store.Update(s.ctx, models.Engagement{ID: "missing"})
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestReturnedFindingsAreCopies() {
	e := s.seed("e1", "2026-01-10", models.EngagementInProgress)
	e.Findings = []models.Finding{{ID: "f1", Title: "Gap", Severity: models.SeverityHigh, Status: models.FindingOpen}}
	s.Require().NoError(s.store.Update(s.ctx, e))

	got, err := s.store.Get(s.ctx, "e1")
	s.Require().NoError(err)
	got.Findings[0].Title = "tampered"

	again, err := s.store.Get(s.ctx, "e1")
	s.Require().NoError(err)
	s.Equal("Gap", again.Findings[0].Title)
}

func (s *MemoryStoreSuite) TestTimesheetsOrderAndFilter() {
	now := time.Now().UTC()
	for _, ts := range []models.Timesheet{
		{ID: "t1", Auditor: "Ana", Date: "2026-03-01", Hours: 4, Engagement: "ENG-1", CreatedAt: now},
		{ID: "t2", Auditor: "Ben", Date: "2026-03-03", Hours: 8, Engagement: "ENG-1", CreatedAt: now},
		{ID: "t3", Auditor: "ana", Date: "2026-03-02", Hours: 2, Engagement: "ENG-2", CreatedAt: now},
	} {
		s.Require().NoError(s.store.CreateTimesheet(s.ctx, ts))
	}

	all, err := s.store.ListTimesheets(s.ctx, models.TimesheetFilters{})
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("t2", all[0].ID, "most recent entry first")

	// Auditor filter matches case-insensitively.
	mine, err := s.store.ListTimesheets(s.ctx, models.TimesheetFilters{Auditor: "ANA"})
	s.Require().NoError(err)
	s.Len(mine, 2)
}

func (s *MemoryStoreSuite) TestWorkingPaperLifecycle() {
	wp := models.WorkingPaper{ID: "w1", AuditID: "e1", Name: "Walkthrough", Owner: "Ana", Status: models.PaperDraft, UpdatedAt: time.Now().UTC()}
	s.Require().NoError(s.store.CreateWorkingPaper(s.ctx, wp))

	got, err := s.store.GetWorkingPaper(s.ctx, "w1")
	s.Require().NoError(err)
	s.Equal(models.PaperDraft, got.Status)

	got.Status = models.PaperApproved
	s.Require().NoError(s.store.UpdateWorkingPaper(s.ctx, got))

	papers, err := s.store.ListWorkingPapers(s.ctx, models.WorkingPaperFilters{AuditID: "e1"})
	s.Require().NoError(err)
	s.Require().Len(papers, 1)
	s.Equal(models.PaperApproved, papers[0].Status)

	err = s.store.UpdateWorkingPaper(s.ctx, models.WorkingPaper{ID: "missing"})
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestCreateFeedback() {
	fb := models.Feedback{ID: "fb1", EngagementID: "e1", Rating: 4, CreatedAt: time.Now().UTC()}
	s.Require().NoError(s.store.CreateFeedback(s.ctx, fb))
	s.Require().ErrorIs(s.store.CreateFeedback(s.ctx, fb), sentinel.ErrConflict)
}
