package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskboard/internal/audit/models"
	"riskboard/internal/audit/service"
	"riskboard/internal/audit/store"
	"riskboard/internal/events"
	riskservice "riskboard/internal/risk/service"
	riskstore "riskboard/internal/risk/store"
	"riskboard/pkg/testutil"
)

func newAuditRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	bus := events.NewBus(logger)
	st := store.NewMemory()
	risks := riskservice.New(riskstore.NewMemory(), bus, logger)
	svc := service.New(st, risks, bus, logger)
	feedback := service.NewFeedback(st, bus, logger)

	r := chi.NewRouter()
	New(svc, feedback, logger).Register(r)
	return r
}

func planEngagement(t *testing.T, router http.Handler) models.Engagement {
	t.Helper()
	input := models.EngagementInput{
		Title:     "SOX walkthrough",
		Owner:     "Lead Auditor",
		StartDate: "2026-09-01",
		EndDate:   "2026-09-15",
	}
	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/audits", input))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	return *testutil.UnmarshalResponse[models.Engagement](t, rr)
}

func TestPlanAndListAudits(t *testing.T) {
	router := newAuditRouter(t)

	created := planEngagement(t, router)
	assert.NotEmpty(t, created.ID)
	assert.True(t, strings.HasPrefix(created.Code, "AUD-"))
	assert.Equal(t, models.EngagementPlanned, created.Status)
	assert.Equal(t, 10, created.ReadinessScore)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/audits"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	audits := testutil.UnmarshalResponse[[]models.Engagement](t, rr)
	require.Len(t, *audits, 1)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/audits?status=completed"))
	audits = testutil.UnmarshalResponse[[]models.Engagement](t, rr)
	assert.Empty(t, *audits)
}

func TestPlanAuditRejectsInvalidDates(t *testing.T) {
	router := newAuditRouter(t)

	input := models.EngagementInput{
		Title:     "Backwards window",
		Owner:     "Lead Auditor",
		StartDate: "2026-09-15",
		EndDate:   "2026-09-01",
	}
	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/audits", input))
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
}

func TestUpdateAudit(t *testing.T) {
	router := newAuditRouter(t)
	created := planEngagement(t, router)

	completed := models.EngagementCompleted
	update := models.EngagementUpdate{Status: &completed}
	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPatch, "/audits/"+created.ID, update))
	testutil.AssertStatus(t, rr, http.StatusOK)
	updated := testutil.UnmarshalResponse[models.Engagement](t, rr)
	assert.Equal(t, models.EngagementCompleted, updated.Status)
	assert.Equal(t, 30, updated.ReadinessScore)

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPatch, "/audits/missing", update))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
}

func TestAddFinding(t *testing.T) {
	router := newAuditRouter(t)
	created := planEngagement(t, router)

	finding := models.FindingInput{Title: "Stale access grants", Severity: models.SeverityHigh}
	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/audits/"+created.ID+"/findings", finding))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	updated := testutil.UnmarshalResponse[models.Engagement](t, rr)
	require.Len(t, updated.Findings, 1)
	assert.Equal(t, 7, updated.ReadinessScore)

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/audits/missing/findings", finding))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
}

func TestTimesheetRoutes(t *testing.T) {
	router := newAuditRouter(t)

	input := models.TimesheetInput{
		Auditor:    "Dana",
		Date:       "2026-08-20",
		Hours:      6.5,
		Engagement: "SOX walkthrough",
	}
	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/audits/timesheets", input))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	created := testutil.UnmarshalResponse[models.Timesheet](t, rr)
	assert.Equal(t, 6.5, created.Hours)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/audits/timesheets?auditor=dana"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	timesheets := testutil.UnmarshalResponse[[]models.Timesheet](t, rr)
	require.Len(t, *timesheets, 1)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/audits/timesheets?auditor=dan"))
	timesheets = testutil.UnmarshalResponse[[]models.Timesheet](t, rr)
	assert.Empty(t, *timesheets)
}

func TestWorkingPaperRoutes(t *testing.T) {
	router := newAuditRouter(t)

	input := models.WorkingPaperInput{AuditID: "a-1", Name: "Walkthrough notes", Owner: "Dana"}
	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/audits/working-papers", input))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	created := testutil.UnmarshalResponse[models.WorkingPaper](t, rr)
	assert.Equal(t, models.PaperDraft, created.Status)

	update := models.WorkingPaperStatusUpdate{Status: models.PaperReview}
	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPatch, "/audits/working-papers/"+created.ID, update))
	testutil.AssertStatus(t, rr, http.StatusOK)
	updated := testutil.UnmarshalResponse[models.WorkingPaper](t, rr)
	assert.Equal(t, models.PaperReview, updated.Status)

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPatch, "/audits/working-papers/missing", update))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/audits/working-papers?auditId=a-1"))
	papers := testutil.UnmarshalResponse[[]models.WorkingPaper](t, rr)
	require.Len(t, *papers, 1)
}

func TestFeedbackRoute(t *testing.T) {
	router := newAuditRouter(t)
	created := planEngagement(t, router)

	input := models.FeedbackInput{Rating: 4, Comment: "Clear scoping"}
	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/audits/"+created.ID+"/feedback", input))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	feedback := testutil.UnmarshalResponse[models.Feedback](t, rr)
	assert.Equal(t, created.ID, feedback.EngagementID)

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/audits/missing/feedback", input))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")

	bad := models.FeedbackInput{Rating: 9}
	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/audits/"+created.ID+"/feedback", bad))
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
}
