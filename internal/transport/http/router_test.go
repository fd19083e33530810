package httptransport

import (
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditservice "riskboard/internal/audit/service"
	auditstore "riskboard/internal/audit/store"
	authservice "riskboard/internal/auth/service"
	"riskboard/internal/events"
	reportservice "riskboard/internal/report/service"
	reportstore "riskboard/internal/report/store"
	riskmodels "riskboard/internal/risk/models"
	riskservice "riskboard/internal/risk/service"
	riskstore "riskboard/internal/risk/store"
	"riskboard/pkg/testutil"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	bus := events.NewBus(logger)

	risks := riskservice.New(riskstore.NewMemory(), bus, logger)
	auditSt := auditstore.NewMemory()
	audits := auditservice.New(auditSt, risks, bus, logger)
	feedback := auditservice.NewFeedback(auditSt, bus, logger)
	reports := reportservice.New(reportstore.NewMemory(), risks, audits, logger)
	auth, err := authservice.New("router-test-key", logger)
	require.NoError(t, err)

	return NewRouter(Deps{
		Risks:    risks,
		Audits:   audits,
		Feedback: feedback,
		Reports:  reports,
		Auth:     auth,
		Verifier: auth,
		Logger:   logger,
	})
}

func bearer(t *testing.T, router http.Handler) string {
	t.Helper()
	creds := authservice.Credentials{Username: "admin", Password: "admin123"}
	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/login", creds))
	testutil.AssertStatus(t, rr, http.StatusOK)
	session := testutil.UnmarshalResponse[authservice.Session](t, rr)
	return session.Token
}

func TestOperationalEndpointsArePublic(t *testing.T) {
	router := newTestRouter(t)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/openapi.json"))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestAPIRequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/risks", "/audits", "/reports"} {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, path))
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	}
}

func TestAuthenticatedRiskFlow(t *testing.T) {
	router := newTestRouter(t)
	token := bearer(t, router)

	input := riskmodels.RiskInput{
		Title:              "Cloud region dependency",
		Category:           "operational",
		Owner:              "Ana",
		InherentImpact:     4,
		InherentLikelihood: 4,
	}
	req := testutil.NewJSONRequest(t, http.MethodPost, "/risks", input)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)

	req = testutil.NewRequest(t, http.MethodGet, "/risks")
	req.Header.Set("Authorization", "Bearer "+token)
	rr = testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	risks := testutil.UnmarshalResponse[[]riskmodels.Risk](t, rr)
	require.Len(t, *risks, 1)
	assert.Equal(t, "Cloud region dependency", (*risks)[0].Title)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestContentTypeEnforcedOnMutations(t *testing.T) {
	router := newTestRouter(t)
	token := bearer(t, router)

	req := testutil.NewRequestWithBody(t, http.MethodPost, "/risks", `{"title":"x"}`)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "text/plain")
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusUnsupportedMediaType)
}
