// Package service aggregates the risk register and audit plan into report
// snapshots, the backend of the reporting dashboard.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	auditmodels "riskboard/internal/audit/models"
	"riskboard/internal/platform/metrics"
	"riskboard/internal/report/models"
	"riskboard/internal/report/store"
	riskmodels "riskboard/internal/risk/models"
	dErrors "riskboard/pkg/domain-errors"
	"riskboard/pkg/platform/sentinel"
)

// RiskSource exposes the risk register to aggregation. Satisfied by the risk
// service.
type RiskSource interface {
	ListRisks(ctx context.Context, filters riskmodels.RiskFilters) ([]riskmodels.Risk, error)
	Summary(ctx context.Context) (riskmodels.Summary, error)
}

// AuditSource exposes the audit plan to aggregation. Satisfied by the audit
// service.
type AuditSource interface {
	ListAudits(ctx context.Context, filters auditmodels.EngagementFilters) ([]auditmodels.Engagement, error)
}

// Service generates and persists aggregated report snapshots.
type Service struct {
	store   store.Store
	risks   RiskSource
	audits  AuditSource
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

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New constructs the report service.
func New(st store.Store, risks RiskSource, audits AuditSource, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:  st,
		risks:  risks,
		audits: audits,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateRiskReport assembles the aggregated snapshot. The register summary,
// the register itself, and the audit plan are fetched concurrently.
func (s *Service) GenerateRiskReport(ctx context.Context) (models.RiskReport, error) {
	ctx, span := otel.Tracer("riskboard/report").Start(ctx, "report.generate")
	defer span.End()

	var (
		summary riskmodels.Summary
		risks   []riskmodels.Risk
		audits  []auditmodels.Engagement
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.risks.Summary(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		risks, err = s.risks.ListRisks(gctx, riskmodels.RiskFilters{})
		return err
	})
	g.Go(func() error {
		var err error
		audits, err = s.audits.ListAudits(gctx, auditmodels.EngagementFilters{})
		return err
	})
	if err := g.Wait(); err != nil {
		return models.RiskReport{}, dErrors.Wrap(err, dErrors.CodeInternal, "aggregate report")
	}

	byStatus := map[string]int{
		string(auditmodels.EngagementPlanned):    0,
		string(auditmodels.EngagementInProgress): 0,
		string(auditmodels.EngagementCompleted):  0,
	}
	var readinessTotal, completed int
	for _, a := range audits {
		byStatus[string(a.Status)]++
		readinessTotal += a.ReadinessScore
		if a.Status == auditmodels.EngagementCompleted {
			completed++
		}
	}

	var residualTotal, open int
	for _, r := range risks {
		residualTotal += r.ResidualRisk
		if r.Status == riskmodels.RiskStatusOpen {
			open++
		}
	}

	report := models.RiskReport{
		GeneratedAt: s.now(),
		RiskSummary: summary,
		AuditOverview: models.AuditOverview{
			Total:    len(audits),
			ByStatus: byStatus,
		},
		OpenRisks:       open,
		CompletedAudits: completed,
	}
	if len(risks) > 0 {
		report.AverageResidualScore = round2(float64(residualTotal) / float64(len(risks)))
	}
	if len(audits) > 0 {
		report.AverageAuditReadiness = round2(float64(readinessTotal) / float64(len(audits)))
	}
	return report, nil
}

// ReportInput names a stored snapshot. Both fields are optional.
type ReportInput struct {
	Title string `json:"title"`
	Owner string `json:"owner"`
}

// GenerateAndStore generates a snapshot and persists it as a draft report.
func (s *Service) GenerateAndStore(ctx context.Context, input ReportInput) (models.Report, error) {
	snapshot, err := s.GenerateRiskReport(ctx)
	if err != nil {
		return models.Report{}, err
	}
	content, err := json.Marshal(snapshot)
	if err != nil {
		return models.Report{}, dErrors.Wrap(err, dErrors.CodeInternal, "encode report")
	}

	now := s.now()
	report := models.Report{
		ID:        uuid.NewString(),
		Title:     input.Title,
		Owner:     input.Owner,
		Status:    models.ReportDraft,
		Content:   string(content),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if report.Title == "" {
		report.Title = "Risk and audit report " + now.Format("2006-01-02")
	}
	if report.Owner == "" {
		report.Owner = "Risk Office"
	}

	if err := s.store.Create(ctx, report); err != nil {
		return models.Report{}, dErrors.Wrap(err, dErrors.CodeInternal, "store report")
	}
	if s.metrics != nil {
		s.metrics.ReportsStored.Inc()
	}
	s.logger.Info("report stored", "id", report.ID, "title", report.Title)
	return report, nil
}

// GenerateFor regenerates the content of an existing report and issues it.
// The issued date is stamped once; regenerating an issued report refreshes
// the content in place.
func (s *Service) GenerateFor(ctx context.Context, id string) (models.Report, error) {
	report, err := s.store.Get(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Report{}, dErrors.Newf(dErrors.CodeNotFound, "report %s not found", id)
	}
	if err != nil {
		return models.Report{}, dErrors.Wrap(err, dErrors.CodeInternal, "load report")
	}

	snapshot, err := s.GenerateRiskReport(ctx)
	if err != nil {
		return models.Report{}, err
	}
	content, err := json.Marshal(snapshot)
	if err != nil {
		return models.Report{}, dErrors.Wrap(err, dErrors.CodeInternal, "encode report")
	}

	now := s.now()
	report.Content = string(content)
	report.Status = models.ReportIssued
	if report.IssuedDate == "" {
		report.IssuedDate = now.Format("2006-01-02")
	}
	report.UpdatedAt = now

	if err := s.store.Update(ctx, report); err != nil {
		return models.Report{}, dErrors.Wrap(err, dErrors.CodeInternal, "store report")
	}
	s.logger.Info("report issued", "id", report.ID, "issuedDate", report.IssuedDate)
	return report, nil
}

// ListReports returns stored reports, newest first.
func (s *Service) ListReports(ctx context.Context, filters models.ReportFilters) ([]models.Report, error) {
	if err := filters.Validate(); err != nil {
		return nil, err
	}
	return s.store.List(ctx, filters)
}

// GetReport returns one stored report.
func (s *Service) GetReport(ctx context.Context, id string) (models.Report, error) {
	report, err := s.store.Get(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Report{}, dErrors.Newf(dErrors.CodeNotFound, "report %s not found", id)
	}
	if err != nil {
		return models.Report{}, dErrors.Wrap(err, dErrors.CodeInternal, "load report")
	}
	return report, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
