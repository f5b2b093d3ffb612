package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/floodwatch/apiserver/internal/logging"
	"github.com/floodwatch/apiserver/internal/services"
)

// AdminHandler provides the aggregated listings reviewed by administrators.
type AdminHandler struct {
	userService   *services.UserService
	reportService *services.ReportService
	log           logging.Logger
}

func NewAdminHandler(userService *services.UserService, reportService *services.ReportService, log logging.Logger) *AdminHandler {
	return &AdminHandler{
		userService:   userService,
		reportService: reportService,
		log:           log,
	}
}

// AdminRouter registers admin routes; every route requires the admin role.
func AdminRouter(r chi.Router, handler *AdminHandler, authMiddleware func(http.Handler) http.Handler) {
	r.Use(authMiddleware, RequireAdmin)
	r.Get("/reports", handler.ListReports)
	r.Get("/users", handler.ListUsers)
}

// ListReports returns all submitted reports, newest first.
func (h *AdminHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reportService.List(r.Context())
	if err != nil {
		h.log.Error(r.Context(), "failed to list reports", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

// ListUsers returns all registered users, newest first.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		h.log.Error(r.Context(), "failed to list users", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}
