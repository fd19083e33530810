// Package handler exposes login, token refresh, and the current-user probe.
package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"riskboard/internal/auth/service"
	dErrors "riskboard/pkg/domain-errors"
	"riskboard/pkg/platform/httputil"
)

// Service defines the session operations the handler exposes.
type Service interface {
	Login(creds service.Credentials) (service.Session, error)
	Refresh(token string) (service.Session, error)
	CurrentUser(token string) (service.User, error)
}

// Handler serves the /auth routes.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an auth handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the auth endpoints. These stay outside the authenticated
// router group; refresh and me authenticate via their bearer token directly.
func (h *Handler) Register(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.handleLogin)
		r.Post("/refresh", h.handleRefresh)
		r.Get("/me", h.handleMe)
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	creds, ok := httputil.Decode[service.Credentials](w, r, h.logger)
	if !ok {
		return
	}
	session, err := h.service.Login(creds)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, session)
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	token, err := bearerToken(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	session, err := h.service.Refresh(token)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, session)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	token, err := bearerToken(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	user, err := h.service.CurrentUser(token)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func bearerToken(r *http.Request) (string, error) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "missing bearer token")
	}
	return token, nil
}
