package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/floodwatch/apiserver/internal/logging"
	"github.com/floodwatch/apiserver/internal/services"
	"github.com/floodwatch/apiserver/types"
)

// ReportHandler provides disaster-report submission endpoints.
type ReportHandler struct {
	reportService *services.ReportService
	uploader      ImageUploader
	log           logging.Logger
}

func NewReportHandler(reportService *services.ReportService, uploader ImageUploader, log logging.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		uploader:      uploader,
		log:           log,
	}
}

// ReportRouter registers report routes on the given router.
func ReportRouter(r chi.Router, handler *ReportHandler, authMiddleware func(http.Handler) http.Handler) {
	r.With(authMiddleware).Post("/", handler.CreateReport)
}

// CreateReport stores a new incident report owned by the caller.
func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		writeError(w, http.StatusForbidden, "invalid or expired token")
		return
	}

	if err := parseForm(r); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	disasterType := formValue(r, "disaster_type")
	title := formValue(r, "title")
	description := formValue(r, "description")
	location := formValue(r, "location")
	if disasterType == "" || title == "" || description == "" || location == "" {
		writeError(w, http.StatusBadRequest, "disaster_type, title, description, and location are required")
		return
	}

	imagePath, err := saveUploadedImage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid image upload")
		return
	}
	imageURL, err := h.uploader.UploadImage(r.Context(), imagePath)
	if err != nil {
		h.log.Error(r.Context(), "failed to upload report image", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to upload image")
		return
	}

	report, err := h.reportService.Create(r.Context(), types.Report{
		UserID:       userID,
		DisasterType: disasterType,
		Title:        title,
		Description:  description,
		Location:     location,
		ContactInfo:  formValue(r, "contact_info"),
		ImageURL:     imageURL,
	})
	if err != nil {
		h.log.Error(r.Context(), "failed to create report", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create report")
		return
	}

	writeJSON(w, http.StatusCreated, CreateReportResponse{
		Message: "report submitted",
		Report:  report,
	})
}

type CreateReportResponse struct {
	Message string       `json:"message"`
	Report  types.Report `json:"report"`
}
