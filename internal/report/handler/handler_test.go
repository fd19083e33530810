package handler

import (
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditservice "riskboard/internal/audit/service"
	auditstore "riskboard/internal/audit/store"
	"riskboard/internal/events"
	"riskboard/internal/report/models"
	"riskboard/internal/report/service"
	"riskboard/internal/report/store"
	riskmodels "riskboard/internal/risk/models"
	riskservice "riskboard/internal/risk/service"
	riskstore "riskboard/internal/risk/store"
	"riskboard/pkg/testutil"
)

func newReportRouter(t *testing.T) (http.Handler, *riskservice.Service) {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	bus := events.NewBus(logger)
	risks := riskservice.New(riskstore.NewMemory(), bus, logger)
	audits := auditservice.New(auditstore.NewMemory(), risks, bus, logger)
	svc := service.New(store.NewMemory(), risks, audits, logger)

	r := chi.NewRouter()
	New(svc, logger).Register(r)
	return r, risks
}

func seedRisk(t *testing.T, risks *riskservice.Service, impact, likelihood int) {
	t.Helper()
	_, err := risks.CreateRisk(t.Context(), riskmodels.RiskInput{
		Title:              "seeded",
		Category:           "operational",
		Owner:              "Ana",
		InherentImpact:     riskmodels.Score(impact),
		InherentLikelihood: riskmodels.Score(likelihood),
	})
	require.NoError(t, err)
}

func TestReportSummaryEndpoint(t *testing.T) {
	router, risks := newReportRouter(t)
	seedRisk(t, risks, 5, 4)
	seedRisk(t, risks, 2, 2)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/reports/summary"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	report := testutil.UnmarshalResponse[models.RiskReport](t, rr)
	assert.Equal(t, 2, report.RiskSummary.TotalRisks)
	assert.Equal(t, 2, report.OpenRisks)
	assert.InDelta(t, 12.0, report.AverageResidualScore, 0.001)
	assert.Equal(t, 0, report.AuditOverview.Total)
}

func TestCreateAndIssueReport(t *testing.T) {
	router, risks := newReportRouter(t)
	seedRisk(t, risks, 3, 3)

	input := service.ReportInput{Title: "Q3 committee pack", Owner: "Risk Office"}
	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/reports", input))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	created := testutil.UnmarshalResponse[models.Report](t, rr)
	assert.Equal(t, models.ReportDraft, created.Status)
	assert.NotEmpty(t, created.Content)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodPost, "/reports/"+created.ID+"/generate"))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	issued := testutil.UnmarshalResponse[models.Report](t, rr)
	assert.Equal(t, models.ReportIssued, issued.Status)
	assert.NotEmpty(t, issued.IssuedDate)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/reports/"+created.ID))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/reports?status=issued"))
	reports := testutil.UnmarshalResponse[[]models.Report](t, rr)
	require.Len(t, *reports, 1)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/reports?status=bogus"))
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
}

func TestGenerateUnknownReport(t *testing.T) {
	router, _ := newReportRouter(t)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodPost, "/reports/missing/generate"))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/reports/missing"))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
}
