package models

import (
	"bytes"
	"encoding/json"
	"time"
)

type SummaryFormat string

const (
	FormatText     SummaryFormat = "text"
	FormatBullet   SummaryFormat = "bullet"
	FormatDetailed SummaryFormat = "detailed"
)

type SummaryRequest struct {
	Transcript    string        `json:"transcript"`
	Format        SummaryFormat `json:"format,omitempty"`
	GenerateAudio bool          `json:"generate_audio,omitempty"`
}

// UnmarshalJSON accepts the transcript in any shape /get_transcript returns
// it: a string, a structured record (its transcriptionAsText is used), or any
// other JSON value, which is passed on as its JSON text.
func (r *SummaryRequest) UnmarshalJSON(data []byte) error {
	var wire struct {
		Transcript    json.RawMessage `json:"transcript"`
		Format        SummaryFormat   `json:"format"`
		GenerateAudio bool            `json:"generate_audio"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	r.Format = wire.Format
	r.GenerateAudio = wire.GenerateAudio
	r.Transcript = transcriptText(wire.Transcript)
	return nil
}

func transcriptText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}

	var structured struct {
		TranscriptionAsText *string `json:"transcriptionAsText"`
	}
	if err := json.Unmarshal(raw, &structured); err == nil && structured.TranscriptionAsText != nil {
		return *structured.TranscriptionAsText
	}

	return string(raw)
}

type SummaryResult struct {
	Summary   string        `json:"summary"`
	AudioURL  *string       `json:"audio_url"`
	Format    SummaryFormat `json:"format"`
	Timestamp time.Time     `json:"timestamp"`
}
