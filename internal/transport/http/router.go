// Package httptransport assembles the HTTP surface: middleware stack, public
// auth and operational endpoints, and the authenticated API routes.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	audithandler "riskboard/internal/audit/handler"
	authhandler "riskboard/internal/auth/handler"
	"riskboard/internal/openapi"
	"riskboard/internal/platform/metrics"
	"riskboard/internal/platform/middleware"
	reporthandler "riskboard/internal/report/handler"
	riskhandler "riskboard/internal/risk/handler"
)

const requestTimeout = 30 * time.Second

// Deps carries everything the router mounts.
type Deps struct {
	Risks    riskhandler.Service
	Audits   audithandler.Service
	Feedback audithandler.FeedbackService
	Reports  reporthandler.Service
	Auth     authhandler.Service
	Verifier middleware.TokenVerifier
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// NewRouter wires the full route tree. Auth endpoints and operational probes
// stay public; everything else requires a bearer token.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(requestTimeout))
	if deps.Metrics != nil {
		r.Use(middleware.Latency(deps.Metrics))
	}

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/openapi.json", openapi.Handler())

	authhandler.New(deps.Auth, deps.Logger).Register(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.Verifier, deps.Logger))
		r.Use(middleware.ContentTypeJSON)

		riskhandler.New(deps.Risks, deps.Logger).Register(r)
		audithandler.New(deps.Audits, deps.Feedback, deps.Logger).Register(r)
		reporthandler.New(deps.Reports, deps.Logger).Register(r)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
