package models

import (
	"encoding/json"
)

const (
	SourceRapidAPI = "rapidapi"
	SourceCaptions = "youtube_transcript_api"
)

// TranscriptContent holds a transcript in one of the shapes providers
// deliver it: plain text, a structured record with caption segments, or an
// arbitrary JSON value passed through untouched.
type TranscriptContent struct {
	Text string

	// Segments marks a structured record when non-nil. Each segment is kept
	// exactly as the provider sent it.
	Segments []json.RawMessage

	// Raw is used when the provider returned a non-string transcript value.
	Raw json.RawMessage
}

type structuredTranscript struct {
	TranscriptionAsText string            `json:"transcriptionAsText"`
	Transcription       []json.RawMessage `json:"transcription"`
}

func TextTranscript(text string) TranscriptContent {
	return TranscriptContent{Text: text}
}

func StructuredTranscript(text string, segments []json.RawMessage) TranscriptContent {
	if segments == nil {
		segments = []json.RawMessage{}
	}
	return TranscriptContent{Text: text, Segments: segments}
}

func (c TranscriptContent) IsStructured() bool {
	return c.Segments != nil
}

// String returns the readable text of the transcript.
func (c TranscriptContent) String() string {
	if c.Raw != nil {
		var s string
		if err := json.Unmarshal(c.Raw, &s); err == nil {
			return s
		}
		return string(c.Raw)
	}
	return c.Text
}

func (c TranscriptContent) MarshalJSON() ([]byte, error) {
	switch {
	case c.Raw != nil:
		return c.Raw, nil
	case c.Segments != nil:
		return json.Marshal(structuredTranscript{
			TranscriptionAsText: c.Text,
			Transcription:       c.Segments,
		})
	default:
		return json.Marshal(c.Text)
	}
}

// TranscriptResult is the body of a successful /get_transcript response.
type TranscriptResult struct {
	Transcript TranscriptContent `json:"transcript"`
	Source     string            `json:"source"`
}
