package summary

import (
	"context"
	"io"

	"github.com/nijaru/yt-summarizer/models"
)

type Service interface {
	Generate(ctx context.Context, req models.SummaryRequest) (*models.SummaryResult, error)
	// OpenAudio returns a previously synthesized audio file by name.
	OpenAudio(ctx context.Context, filename string) (io.ReadCloser, error)
}

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Speaker renders text as MP3 audio.
type Speaker interface {
	Speak(ctx context.Context, text string) ([]byte, error)
}

type Config struct {
	// AudioRoute prefixes stored audio names in returned URLs.
	AudioRoute string
}
