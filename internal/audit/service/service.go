// Package service implements the audit engine: engagement planning with
// readiness and coverage scoring, fieldwork records, and the reactive
// planning rule that answers elevated risks with a focused review.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"riskboard/internal/audit/models"
	"riskboard/internal/audit/store"
	"riskboard/internal/events"
	"riskboard/internal/platform/metrics"
	riskmodels "riskboard/internal/risk/models"
	dErrors "riskboard/pkg/domain-errors"
	"riskboard/pkg/platform/sentinel"
)

// focusedReviewWindow is the duration of an auto-planned engagement.
const focusedReviewWindow = 14 * 24 * time.Hour

// RiskLister exposes the risk register to coverage scoring and reactive
// planning. Satisfied by the risk service.
type RiskLister interface {
	ListRisks(ctx context.Context, filters riskmodels.RiskFilters) ([]riskmodels.Risk, error)
}

// Service coordinates engagement persistence, derived scoring, and event
// publication.
type Service struct {
	store   store.Store
	risks   RiskLister
	bus     *events.Bus
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics wires operation counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source, used by planning tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New constructs the audit service and registers the reactive planning
// subscriber on the bus.
func New(st store.Store, risks RiskLister, bus *events.Bus, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:  st,
		risks:  risks,
		bus:    bus,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	bus.Subscribe(events.RiskUpdated, s.onRiskUpdated)
	return s
}

// ListAudits returns engagements, most recently started first.
func (s *Service) ListAudits(ctx context.Context, filters models.EngagementFilters) ([]models.Engagement, error) {
	if err := filters.Validate(); err != nil {
		return nil, err
	}
	return s.store.List(ctx, filters)
}

// PlanAudit validates, scores, persists, and announces a new engagement.
func (s *Service) PlanAudit(ctx context.Context, input models.EngagementInput) (models.Engagement, error) {
	engagement, err := models.NewEngagement(input)
	if err != nil {
		return models.Engagement{}, err
	}

	now := s.now()
	engagement.ID = uuid.NewString()
	engagement.Code = s.engagementCode(now)
	engagement.CreatedAt = now
	engagement.UpdatedAt = now
	engagement.ReadinessScore = models.Readiness(engagement)
	engagement.Coverage = s.computeCoverage(ctx, engagement)

	if err := s.store.Create(ctx, engagement); err != nil {
		return models.Engagement{}, dErrors.Wrap(err, dErrors.CodeInternal, "store audit")
	}

	if s.metrics != nil {
		s.metrics.AuditsPlanned.Inc()
	}
	s.publish(events.AuditPlanned, engagement)
	s.logger.Info("audit planned", "id", engagement.ID, "code", engagement.Code, "coverage", engagement.Coverage)
	return engagement, nil
}

// UpdateAudit merges a partial update into an engagement, refreshes the
// derived scores, and announces the change.
func (s *Service) UpdateAudit(ctx context.Context, id string, update models.EngagementUpdate) (models.Engagement, error) {
	engagement, err := s.store.Get(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Engagement{}, dErrors.Newf(dErrors.CodeNotFound, "audit %s not found", id)
	}
	if err != nil {
		return models.Engagement{}, dErrors.Wrap(err, dErrors.CodeInternal, "load audit")
	}

	if err := engagement.Apply(update); err != nil {
		return models.Engagement{}, err
	}
	engagement.ReadinessScore = models.Readiness(engagement)
	engagement.Coverage = s.computeCoverage(ctx, engagement)
	engagement.UpdatedAt = s.now()

	if err := s.store.Update(ctx, engagement); err != nil {
		return models.Engagement{}, dErrors.Wrap(err, dErrors.CodeInternal, "store audit")
	}

	s.publish(events.AuditUpdated, engagement)
	return engagement, nil
}

// AddFinding appends a finding to an engagement and refreshes its readiness.
func (s *Service) AddFinding(ctx context.Context, auditID string, input models.FindingInput) (models.Engagement, error) {
	engagement, err := s.store.Get(ctx, auditID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Engagement{}, dErrors.Newf(dErrors.CodeNotFound, "audit %s not found", auditID)
	}
	if err != nil {
		return models.Engagement{}, dErrors.Wrap(err, dErrors.CodeInternal, "load audit")
	}

	finding, err := models.NewFinding(input)
	if err != nil {
		return models.Engagement{}, err
	}
	finding.ID = uuid.NewString()

	engagement.Findings = append(engagement.Findings, finding)
	engagement.ReadinessScore = models.Readiness(engagement)
	engagement.UpdatedAt = s.now()

	if err := s.store.Update(ctx, engagement); err != nil {
		return models.Engagement{}, dErrors.Wrap(err, dErrors.CodeInternal, "store audit")
	}
	s.logger.Info("finding added", "auditId", engagement.ID, "severity", finding.Severity, "readiness", engagement.ReadinessScore)
	return engagement, nil
}

// ListTimesheets returns time entries, most recent entry date first.
func (s *Service) ListTimesheets(ctx context.Context, filters models.TimesheetFilters) ([]models.Timesheet, error) {
	return s.store.ListTimesheets(ctx, filters)
}

// RecordTimesheet validates, persists, and announces a time entry.
func (s *Service) RecordTimesheet(ctx context.Context, input models.TimesheetInput) (models.Timesheet, error) {
	timesheet, err := models.NewTimesheet(input)
	if err != nil {
		return models.Timesheet{}, err
	}
	timesheet.ID = uuid.NewString()
	timesheet.CreatedAt = s.now()

	if err := s.store.CreateTimesheet(ctx, timesheet); err != nil {
		return models.Timesheet{}, dErrors.Wrap(err, dErrors.CodeInternal, "store timesheet")
	}
	s.publish(events.TimesheetRecorded, timesheet)
	return timesheet, nil
}

// ListWorkingPapers returns papers, most recently touched first.
func (s *Service) ListWorkingPapers(ctx context.Context, filters models.WorkingPaperFilters) ([]models.WorkingPaper, error) {
	return s.store.ListWorkingPapers(ctx, filters)
}

// CreateWorkingPaper validates and persists a fieldwork paper.
func (s *Service) CreateWorkingPaper(ctx context.Context, input models.WorkingPaperInput) (models.WorkingPaper, error) {
	paper, err := models.NewWorkingPaper(input)
	if err != nil {
		return models.WorkingPaper{}, err
	}
	paper.ID = uuid.NewString()
	paper.UpdatedAt = s.now()

	if err := s.store.CreateWorkingPaper(ctx, paper); err != nil {
		return models.WorkingPaper{}, dErrors.Wrap(err, dErrors.CodeInternal, "store working paper")
	}
	return paper, nil
}

// UpdateWorkingPaper moves a paper through its review states and announces
// the change.
func (s *Service) UpdateWorkingPaper(ctx context.Context, id string, update models.WorkingPaperStatusUpdate) (models.WorkingPaper, error) {
	if err := update.Validate(); err != nil {
		return models.WorkingPaper{}, err
	}

	paper, err := s.store.GetWorkingPaper(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.WorkingPaper{}, dErrors.Newf(dErrors.CodeNotFound, "working paper %s not found", id)
	}
	if err != nil {
		return models.WorkingPaper{}, dErrors.Wrap(err, dErrors.CodeInternal, "load working paper")
	}

	paper.Status = update.Status
	paper.UpdatedAt = s.now()

	if err := s.store.UpdateWorkingPaper(ctx, paper); err != nil {
		return models.WorkingPaper{}, dErrors.Wrap(err, dErrors.CodeInternal, "store working paper")
	}
	s.publish(events.WorkingPaperUpdated, paper)
	return paper, nil
}

// onRiskUpdated is the reactive planning rule: a risk whose residual reaches
// the high threshold gets a focused review engagement, deduplicated by exact
// title.
func (s *Service) onRiskUpdated(payload any) {
	risk, ok := payload.(riskmodels.Risk)
	if !ok {
		return
	}
	if risk.ResidualRisk < riskmodels.HighResidualThreshold {
		return
	}

	ctx := context.Background()
	title := fmt.Sprintf("Focused review: %s", risk.Title)

	engagements, err := s.store.List(ctx, models.EngagementFilters{})
	if err != nil {
		s.logger.Error("reactive planning: list audits failed", "error", err)
		return
	}
	for _, e := range engagements {
		if e.Title == title {
			return
		}
	}

	owner := risk.Owner
	if owner == "" {
		owner = "Risk Office"
	}
	now := s.now()
	engagement, err := s.PlanAudit(ctx, models.EngagementInput{
		Title:     title,
		Owner:     owner,
		Scope:     fmt.Sprintf("Auto-generated engagement responding to elevated risk %s.", risk.Title),
		StartDate: now.Format("2006-01-02"),
		EndDate:   now.Add(focusedReviewWindow).Format("2006-01-02"),
		Status:    models.EngagementPlanned,
		RiskIDs:   []string{risk.ID},
	})
	if err != nil {
		s.logger.Error("reactive planning: plan audit failed", "risk", risk.ID, "error", err)
		return
	}
	s.logger.Info("focused review planned", "auditId", engagement.ID, "riskId", risk.ID, "residual", risk.ResidualRisk)
}

// computeCoverage is the share of known risks targeted by the engagement,
// rounded to whole percent. An empty register scores zero.
func (s *Service) computeCoverage(ctx context.Context, engagement models.Engagement) int {
	if s.risks == nil {
		return 0
	}
	risks, err := s.risks.ListRisks(ctx, riskmodels.RiskFilters{})
	if err != nil {
		s.logger.Warn("coverage: list risks failed", "error", err)
		return 0
	}
	if len(risks) == 0 {
		return 0
	}
	targeted := 0
	for _, risk := range risks {
		for _, id := range engagement.RiskIDs {
			if risk.ID == id {
				targeted++
				break
			}
		}
	}
	return int(math.Round(float64(targeted) / float64(len(risks)) * 100))
}

func (s *Service) engagementCode(now time.Time) string {
	return fmt.Sprintf("AUD-%s-%d", now.Format("200601"), now.UnixMilli()%100000)
}

func (s *Service) publish(event string, payload any) {
	s.bus.Publish(event, payload)
	if s.metrics != nil {
		s.metrics.EventsPublished.WithLabelValues(event).Inc()
	}
}
