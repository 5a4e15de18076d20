package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/nijaru/yt-summarizer/errors"
	"github.com/nijaru/yt-summarizer/services/metadata"
	"github.com/nijaru/yt-summarizer/services/transcript"
	"github.com/nijaru/yt-summarizer/validation"
)

const thumbnailFallback = "https://img.youtube.com/vi/%s/maxresdefault.jpg"

type VideoHandler struct {
	metadata    metadata.Service
	transcripts transcript.Service
}

func NewVideoHandler(metadataSvc metadata.Service, transcriptSvc transcript.Service) *VideoHandler {
	return &VideoHandler{
		metadata:    metadataSvc,
		transcripts: transcriptSvc,
	}
}

// HandleVideoInfo handles GET /get_video_info?url=...
func (h *VideoHandler) HandleVideoInfo(w http.ResponseWriter, r *http.Request) {
	const op = "VideoHandler.HandleVideoInfo"

	url := strings.TrimSpace(r.URL.Query().Get("url"))
	if url == "" {
		respondError(w, r, errors.InvalidInput(op, nil, "URL parameter is required"))
		return
	}

	meta, err := h.metadata.Resolve(r.Context(), url)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if meta.VideoID == "" {
		meta.VideoID = validation.ExtractVideoID(url)
	}
	if meta.Thumbnail == "" && meta.VideoID != "" {
		meta.Thumbnail = fmt.Sprintf(thumbnailFallback, meta.VideoID)
	}

	respondJSON(w, r, http.StatusOK, meta)
}

// HandleTranscript handles GET /get_transcript?url=...&lang=...
func (h *VideoHandler) HandleTranscript(w http.ResponseWriter, r *http.Request) {
	const op = "VideoHandler.HandleTranscript"

	query := r.URL.Query()
	url := strings.TrimSpace(query.Get("url"))
	if url == "" {
		respondError(w, r, errors.InvalidInput(op, nil, "URL parameter is required"))
		return
	}

	result, err := h.transcripts.Fetch(r.Context(), url, query.Get("lang"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, result)
}
