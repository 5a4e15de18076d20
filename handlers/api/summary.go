package api

import (
	"io"
	"net/http"
	"time"

	"github.com/nijaru/yt-summarizer/middleware"
	"github.com/nijaru/yt-summarizer/models"
	"github.com/nijaru/yt-summarizer/services/summary"
	"github.com/nijaru/yt-summarizer/validation"
)

type SummaryHandler struct {
	service      summary.Service
	validator    *validation.Validator
	maxBodyBytes int64
}

func NewSummaryHandler(service summary.Service, validator *validation.Validator, maxBodyBytes int64) *SummaryHandler {
	return &SummaryHandler{
		service:      service,
		validator:    validator,
		maxBodyBytes: maxBodyBytes,
	}
}

// HandleGenerateSummary handles POST /generate_summary
func (h *SummaryHandler) HandleGenerateSummary(w http.ResponseWriter, r *http.Request) {
	if err := h.validator.ValidateRequest(r, validation.RequestValidationOpts{
		MaxContentLength: h.maxBodyBytes,
		AllowedMethods:   []string{http.MethodPost},
	}); err != nil {
		respondError(w, r, err)
		return
	}

	var req models.SummaryRequest
	if err := readJSON(w, r, h.maxBodyBytes, &req); err != nil {
		respondError(w, r, err)
		return
	}

	result, err := h.service.Generate(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, result)
}

// HandleAudio handles GET /audio/{filename}
func (h *SummaryHandler) HandleAudio(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")

	rc, err := h.service.OpenAudio(r.Context(), filename)
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "audio/mpeg")

	// Local files support range requests; bucket streams are copied as-is.
	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(w, r, filename, time.Time{}, rs)
		return
	}

	if _, err := io.Copy(w, rc); err != nil {
		middleware.GetLogger(r.Context()).WithError(err).Warn("Failed to stream audio")
	}
}
