// Package handler wires the risk engine to its REST surface.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"riskboard/internal/risk/models"
	"riskboard/pkg/platform/httputil"
)

// Service defines the risk operations the handler exposes.
type Service interface {
	ListRisks(ctx context.Context, filters models.RiskFilters) ([]models.Risk, error)
	CreateRisk(ctx context.Context, input models.RiskInput) (models.Risk, error)
	UpdateRisk(ctx context.Context, id string, update models.RiskUpdate) (models.Risk, error)
	SubmitQuestionnaire(ctx context.Context, submission models.QuestionnaireSubmission) (models.Risk, bool, error)
	Summary(ctx context.Context) (models.Summary, error)
	ListFollowUps(ctx context.Context, filters models.FollowUpFilters) ([]models.FollowUp, error)
	CreateFollowUp(ctx context.Context, input models.FollowUpInput) (models.FollowUp, error)
}

// Handler serves the /risks routes.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a risk handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the risk endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Route("/risks", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/summary", h.handleSummary)
		r.Get("/follow-ups", h.handleListFollowUps)
		r.Post("/follow-ups", h.handleCreateFollowUp)
		r.Put("/{id}", h.handleUpdate)
		r.Patch("/{id}", h.handleUpdate)
		r.Post("/{id}/questionnaire", h.handleQuestionnaire)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filters := models.RiskFilters{
		Status: models.RiskStatus(r.URL.Query().Get("status")),
		Owner:  r.URL.Query().Get("owner"),
	}
	risks, err := h.service.ListRisks(r.Context(), filters)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, risks)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	input, ok := httputil.Decode[models.RiskInput](w, r, h.logger)
	if !ok {
		return
	}
	risk, err := h.service.CreateRisk(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, risk)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	update, ok := httputil.Decode[models.RiskUpdate](w, r, h.logger)
	if !ok {
		return
	}
	risk, err := h.service.UpdateRisk(r.Context(), chi.URLParam(r, "id"), update)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, risk)
}

// handleQuestionnaire accepts the identification questionnaire. The body's
// riskId selects update-in-place; without it a new risk is created and the
// response is 201.
func (h *Handler) handleQuestionnaire(w http.ResponseWriter, r *http.Request) {
	submission, ok := httputil.Decode[models.QuestionnaireSubmission](w, r, h.logger)
	if !ok {
		return
	}
	risk, created, err := h.service.SubmitQuestionnaire(r.Context(), submission)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httputil.WriteJSON(w, status, risk)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleListFollowUps(w http.ResponseWriter, r *http.Request) {
	followUps, err := h.service.ListFollowUps(r.Context(), models.FollowUpFilters{
		RiskID: r.URL.Query().Get("riskId"),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, followUps)
}

func (h *Handler) handleCreateFollowUp(w http.ResponseWriter, r *http.Request) {
	input, ok := httputil.Decode[models.FollowUpInput](w, r, h.logger)
	if !ok {
		return
	}
	followUp, err := h.service.CreateFollowUp(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, followUp)
}
