package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/floodwatch/apiserver/internal/logging"
	"github.com/floodwatch/apiserver/internal/services"
)

// AlertHandler exposes the flood-alert broadcast endpoint.
type AlertHandler struct {
	alertService *services.AlertService
	log          logging.Logger
}

func NewAlertHandler(alertService *services.AlertService, log logging.Logger) *AlertHandler {
	return &AlertHandler{alertService: alertService, log: log}
}

// AlertRouter registers alert routes on the given router.
//
// notify-users is left unauthenticated to preserve the documented
// contract; gate it with RequireAuth if that turns out to be wrong.
func AlertRouter(r chi.Router, handler *AlertHandler) {
	r.Post("/notify-users", handler.NotifyUsers)
}

// NotifyUsers validates the alert parameters and broadcasts an SMS to
// every user whose location matches.
func (h *AlertHandler) NotifyUsers(w http.ResponseWriter, r *http.Request) {
	var req NotifyUsersRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(req.Location) == "" || req.Percentage == nil || strings.TrimSpace(req.Date) == "" {
		writeError(w, http.StatusBadRequest, "location, percentage, and date are required")
		return
	}

	attempted, err := h.alertService.NotifyUsers(r.Context(), services.AlertRequest{
		Location:   req.Location,
		Percentage: *req.Percentage,
		Date:       req.Date,
	})
	if err != nil {
		var validationErr *services.ValidationError
		switch {
		case errors.As(err, &validationErr):
			writeError(w, http.StatusBadRequest, validationErr.Reason)
		case errors.Is(err, services.ErrNoRecipients):
			writeError(w, http.StatusNotFound, "no users found for the given location")
		default:
			h.log.Error(r.Context(), "alert broadcast failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to send alerts")
		}
		return
	}

	writeJSON(w, http.StatusOK, NotifyUsersResponse{
		Message:       "alerts dispatched",
		UsersNotified: attempted,
	})
}

type NotifyUsersRequest struct {
	Location   string   `json:"location"`
	Percentage *float64 `json:"percentage"`
	Date       string   `json:"date"`
}

// NotifyUsersResponse reports the number of attempted sends, which may
// include deliveries that failed and were only logged.
type NotifyUsersResponse struct {
	Message       string `json:"message"`
	UsersNotified int    `json:"usersNotified"`
}
