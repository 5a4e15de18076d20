package api

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-summarizer/errors"
	"github.com/nijaru/yt-summarizer/middleware"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		middleware.GetLogger(r.Context()).WithError(err).Error("Failed to encode response")
	}
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.CodeOf(err)
	msg := "Internal server error"

	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}

	entry := middleware.GetLogger(r.Context()).WithFields(logrus.Fields{
		"error":  err.Error(),
		"status": code,
	})
	if appErr != nil {
		entry = entry.WithField("op", appErr.Op)
	}
	if code >= http.StatusInternalServerError {
		entry.Error("Request error")
	} else {
		entry.Info("Request rejected")
	}

	respondJSON(w, r, code, errorResponse{Error: msg})
}

func readJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, v interface{}) error {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.InvalidInput("readJSON", err, "Invalid JSON format")
	}
	return nil
}
