// Package handler exposes stored reports and on-demand aggregation.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"riskboard/internal/report/models"
	"riskboard/internal/report/service"
	"riskboard/pkg/platform/httputil"
)

// Service defines the report operations the handler exposes.
type Service interface {
	GenerateRiskReport(ctx context.Context) (models.RiskReport, error)
	GenerateAndStore(ctx context.Context, input service.ReportInput) (models.Report, error)
	GenerateFor(ctx context.Context, id string) (models.Report, error)
	ListReports(ctx context.Context, filters models.ReportFilters) ([]models.Report, error)
	GetReport(ctx context.Context, id string) (models.Report, error)
}

// Handler serves the /reports routes.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a report handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the report endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/summary", h.handleSummary)
		r.Get("/{id}", h.handleGet)
		r.Post("/{id}/generate", h.handleGenerate)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filters := models.ReportFilters{
		Status: models.ReportStatus(r.URL.Query().Get("status")),
		Owner:  r.URL.Query().Get("owner"),
	}
	reports, err := h.service.ListReports(r.Context(), filters)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reports)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	input, ok := httputil.Decode[service.ReportInput](w, r, h.logger)
	if !ok {
		return
	}
	report, err := h.service.GenerateAndStore(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, report)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.GetReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

// handleGenerate refreshes a stored report's content and issues it.
func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.GenerateFor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, report)
}

// handleSummary aggregates the live register and engagement book without
// persisting anything.
func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.GenerateRiskReport(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}
