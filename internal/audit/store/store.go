package store

import (
	"context"

	"riskboard/internal/audit/models"
)

// Store persists engagements and the records that ride with them:
// timesheets, working papers, and feedback. Implementations return
// sentinel.ErrNotFound when an id does not resolve.
type Store interface {
	List(ctx context.Context, filters models.EngagementFilters) ([]models.Engagement, error)
	Get(ctx context.Context, id string) (models.Engagement, error)
	Create(ctx context.Context, engagement models.Engagement) error
	// Update replaces the stored record with the already-merged engagement.
	Update(ctx context.Context, engagement models.Engagement) error

	ListTimesheets(ctx context.Context, filters models.TimesheetFilters) ([]models.Timesheet, error)
	CreateTimesheet(ctx context.Context, timesheet models.Timesheet) error

	ListWorkingPapers(ctx context.Context, filters models.WorkingPaperFilters) ([]models.WorkingPaper, error)
	GetWorkingPaper(ctx context.Context, id string) (models.WorkingPaper, error)
	CreateWorkingPaper(ctx context.Context, paper models.WorkingPaper) error
	UpdateWorkingPaper(ctx context.Context, paper models.WorkingPaper) error

	CreateFeedback(ctx context.Context, feedback models.Feedback) error
}
