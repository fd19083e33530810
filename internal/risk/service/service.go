// Package service implements the risk engine: register CRUD, questionnaire
// intake, and the register summary used by reports.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"riskboard/internal/events"
	"riskboard/internal/platform/metrics"
	"riskboard/internal/risk/models"
	"riskboard/internal/risk/store"
	dErrors "riskboard/pkg/domain-errors"
	"riskboard/pkg/platform/sentinel"
)

// Service coordinates risk persistence, derived scoring, and event
// publication. All mutations publish after the store write succeeds.
type Service struct {
	store   store.Store
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

// WithClock overrides the time source, used by trend tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New constructs the risk service.
func New(st store.Store, bus *events.Bus, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:  st,
		bus:    bus,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListRisks returns the register, newest first.
func (s *Service) ListRisks(ctx context.Context, filters models.RiskFilters) ([]models.Risk, error) {
	if err := filters.Validate(); err != nil {
		return nil, err
	}
	return s.store.List(ctx, filters)
}

// CreateRisk validates, scores, persists, and announces a new risk.
func (s *Service) CreateRisk(ctx context.Context, input models.RiskInput) (models.Risk, error) {
	risk, err := models.NewRisk(input)
	if err != nil {
		return models.Risk{}, err
	}

	now := s.now()
	risk.ID = uuid.NewString()
	risk.CreatedAt = now
	risk.UpdatedAt = now

	if err := s.store.Create(ctx, risk); err != nil {
		return models.Risk{}, dErrors.Wrap(err, dErrors.CodeInternal, "store risk")
	}

	if s.metrics != nil {
		s.metrics.RisksCreated.Inc()
	}
	s.publish(events.RiskCreated, risk)
	s.logger.Info("risk created", "id", risk.ID, "severity", risk.Severity, "residual", risk.ResidualRisk)
	return risk, nil
}

// UpdateRisk merges a partial update into an existing risk, recomputes the
// derived fields, and announces the change.
func (s *Service) UpdateRisk(ctx context.Context, id string, update models.RiskUpdate) (models.Risk, error) {
	risk, err := s.store.Get(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Risk{}, dErrors.Newf(dErrors.CodeNotFound, "risk %s not found", id)
	}
	if err != nil {
		return models.Risk{}, dErrors.Wrap(err, dErrors.CodeInternal, "load risk")
	}

	if err := risk.Apply(update); err != nil {
		return models.Risk{}, err
	}
	risk.Recompute()
	risk.UpdatedAt = s.now()

	if err := s.store.Update(ctx, risk); err != nil {
		return models.Risk{}, dErrors.Wrap(err, dErrors.CodeInternal, "store risk")
	}

	if s.metrics != nil {
		s.metrics.RisksUpdated.Inc()
	}
	s.publish(events.RiskUpdated, risk)
	s.logger.Info("risk updated", "id", risk.ID, "severity", risk.Severity, "residual", risk.ResidualRisk)
	return risk, nil
}

// SubmitQuestionnaire turns questionnaire answers into a risk. With a target
// id the derived fields merge into that risk; otherwise a new risk is created
// and announced. The created flag tells handlers whether to answer 201.
func (s *Service) SubmitQuestionnaire(ctx context.Context, submission models.QuestionnaireSubmission) (models.Risk, bool, error) {
	input, err := models.RiskFromQuestionnaire(submission)
	if err != nil {
		return models.Risk{}, false, err
	}

	if submission.RiskID != "" {
		update := models.RiskUpdate{
			Title:        &input.Title,
			Category:     &input.Category,
			Owner:        &input.Owner,
			Description:  &input.Description,
			InherentRisk: &input.InherentRisk,
			ResidualRisk: &input.ResidualRisk,
		}
		risk, err := s.UpdateRisk(ctx, submission.RiskID, update)
		if err != nil {
			return models.Risk{}, false, err
		}
		return risk, false, nil
	}

	risk, err := s.CreateRisk(ctx, input)
	if err != nil {
		return models.Risk{}, false, err
	}
	s.publish(events.RiskQuestionnaireSubmitted, risk)
	return risk, true, nil
}

// Summary buckets the register by severity and builds the trailing six-month
// intake trend. Bucket counts always sum to the total; the trend is keyed by
// reportedOn, falling back to createdAt, with zero-filled months.
func (s *Service) Summary(ctx context.Context) (models.Summary, error) {
	risks, err := s.store.List(ctx, models.RiskFilters{})
	if err != nil {
		return models.Summary{}, dErrors.Wrap(err, dErrors.CodeInternal, "load risks")
	}

	summary := models.Summary{TotalRisks: len(risks)}
	for _, risk := range risks {
		switch models.ClassifyScore(risk.ResidualRisk) {
		case models.SeverityHigh:
			summary.HighRisks++
		case models.SeverityMedium:
			summary.MediumRisks++
		default:
			summary.LowRisks++
		}
	}

	now := s.now()
	counts := make(map[string]int, 6)
	for _, risk := range risks {
		reported := risk.CreatedAt
		if risk.ReportedOn != "" {
			if t, err := models.ParseDate(risk.ReportedOn); err == nil {
				reported = t
			}
		}
		counts[reported.Format("2006-01")]++
	}
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	summary.Trend = make([]models.TrendPoint, 0, 6)
	for i := 5; i >= 0; i-- {
		month := monthStart.AddDate(0, -i, 0).Format("2006-01")
		summary.Trend = append(summary.Trend, models.TrendPoint{Month: month, Count: counts[month]})
	}
	return summary, nil
}

// ListFollowUps returns follow-up actions ordered by due date.
func (s *Service) ListFollowUps(ctx context.Context, filters models.FollowUpFilters) ([]models.FollowUp, error) {
	return s.store.ListFollowUps(ctx, filters)
}

// CreateFollowUp validates and persists a remediation action.
func (s *Service) CreateFollowUp(ctx context.Context, input models.FollowUpInput) (models.FollowUp, error) {
	followUp, err := models.NewFollowUp(input)
	if err != nil {
		return models.FollowUp{}, err
	}
	followUp.ID = uuid.NewString()
	followUp.CreatedAt = s.now()

	if err := s.store.CreateFollowUp(ctx, followUp); err != nil {
		return models.FollowUp{}, dErrors.Wrap(err, dErrors.CodeInternal, "store follow-up")
	}
	s.logger.Info("follow-up created", "id", followUp.ID, "riskId", followUp.RiskID)
	return followUp, nil
}

func (s *Service) publish(event string, payload any) {
	s.bus.Publish(event, payload)
	if s.metrics != nil {
		s.metrics.EventsPublished.WithLabelValues(event).Inc()
	}
}
