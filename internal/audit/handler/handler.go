// Package handler exposes audit engagements, timesheets, working papers,
// and engagement feedback over REST.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"riskboard/internal/audit/models"
	"riskboard/pkg/platform/httputil"
)

// Service defines the engagement operations the handler exposes.
type Service interface {
	ListAudits(ctx context.Context, filters models.EngagementFilters) ([]models.Engagement, error)
	PlanAudit(ctx context.Context, input models.EngagementInput) (models.Engagement, error)
	UpdateAudit(ctx context.Context, id string, update models.EngagementUpdate) (models.Engagement, error)
	AddFinding(ctx context.Context, auditID string, input models.FindingInput) (models.Engagement, error)
	ListTimesheets(ctx context.Context, filters models.TimesheetFilters) ([]models.Timesheet, error)
	RecordTimesheet(ctx context.Context, input models.TimesheetInput) (models.Timesheet, error)
	ListWorkingPapers(ctx context.Context, filters models.WorkingPaperFilters) ([]models.WorkingPaper, error)
	CreateWorkingPaper(ctx context.Context, input models.WorkingPaperInput) (models.WorkingPaper, error)
	UpdateWorkingPaper(ctx context.Context, id string, update models.WorkingPaperStatusUpdate) (models.WorkingPaper, error)
}

// FeedbackService accepts post-engagement feedback.
type FeedbackService interface {
	Submit(ctx context.Context, input models.FeedbackInput) (models.Feedback, error)
}

// Handler serves the /audits routes.
type Handler struct {
	service  Service
	feedback FeedbackService
	logger   *slog.Logger
}

// New constructs an audit handler.
func New(service Service, feedback FeedbackService, logger *slog.Logger) *Handler {
	return &Handler{service: service, feedback: feedback, logger: logger}
}

// Register mounts the audit endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Route("/audits", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handlePlan)
		r.Get("/timesheets", h.handleListTimesheets)
		r.Post("/timesheets", h.handleRecordTimesheet)
		r.Get("/working-papers", h.handleListWorkingPapers)
		r.Post("/working-papers", h.handleCreateWorkingPaper)
		r.Patch("/working-papers/{id}", h.handleUpdateWorkingPaper)
		r.Put("/{id}", h.handleUpdate)
		r.Patch("/{id}", h.handleUpdate)
		r.Post("/{id}/findings", h.handleAddFinding)
		r.Post("/{id}/feedback", h.handleFeedback)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filters := models.EngagementFilters{
		Status: models.EngagementStatus(r.URL.Query().Get("status")),
		Owner:  r.URL.Query().Get("owner"),
	}
	audits, err := h.service.ListAudits(r.Context(), filters)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, audits)
}

func (h *Handler) handlePlan(w http.ResponseWriter, r *http.Request) {
	input, ok := httputil.Decode[models.EngagementInput](w, r, h.logger)
	if !ok {
		return
	}
	audit, err := h.service.PlanAudit(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, audit)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	update, ok := httputil.Decode[models.EngagementUpdate](w, r, h.logger)
	if !ok {
		return
	}
	audit, err := h.service.UpdateAudit(r.Context(), chi.URLParam(r, "id"), update)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, audit)
}

func (h *Handler) handleAddFinding(w http.ResponseWriter, r *http.Request) {
	input, ok := httputil.Decode[models.FindingInput](w, r, h.logger)
	if !ok {
		return
	}
	audit, err := h.service.AddFinding(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, audit)
}

func (h *Handler) handleListTimesheets(w http.ResponseWriter, r *http.Request) {
	timesheets, err := h.service.ListTimesheets(r.Context(), models.TimesheetFilters{
		Auditor: r.URL.Query().Get("auditor"),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, timesheets)
}

func (h *Handler) handleRecordTimesheet(w http.ResponseWriter, r *http.Request) {
	input, ok := httputil.Decode[models.TimesheetInput](w, r, h.logger)
	if !ok {
		return
	}
	timesheet, err := h.service.RecordTimesheet(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, timesheet)
}

func (h *Handler) handleListWorkingPapers(w http.ResponseWriter, r *http.Request) {
	papers, err := h.service.ListWorkingPapers(r.Context(), models.WorkingPaperFilters{
		AuditID: r.URL.Query().Get("auditId"),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, papers)
}

func (h *Handler) handleCreateWorkingPaper(w http.ResponseWriter, r *http.Request) {
	input, ok := httputil.Decode[models.WorkingPaperInput](w, r, h.logger)
	if !ok {
		return
	}
	paper, err := h.service.CreateWorkingPaper(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, paper)
}

func (h *Handler) handleUpdateWorkingPaper(w http.ResponseWriter, r *http.Request) {
	update, ok := httputil.Decode[models.WorkingPaperStatusUpdate](w, r, h.logger)
	if !ok {
		return
	}
	paper, err := h.service.UpdateWorkingPaper(r.Context(), chi.URLParam(r, "id"), update)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, paper)
}

// handleFeedback accepts feedback for the engagement in the path. A body
// engagementId is overridden by the path id.
func (h *Handler) handleFeedback(w http.ResponseWriter, r *http.Request) {
	input, ok := httputil.Decode[models.FeedbackInput](w, r, h.logger)
	if !ok {
		return
	}
	input.EngagementID = chi.URLParam(r, "id")
	feedback, err := h.feedback.Submit(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, feedback)
}
