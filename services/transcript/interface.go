package transcript

import (
	"context"
	"time"

	"github.com/nijaru/yt-summarizer/cache"
	"github.com/nijaru/yt-summarizer/models"
)

type Service interface {
	Fetch(ctx context.Context, url, lang string) (*models.TranscriptResult, error)
	CacheStats() cache.Stats
}

// PrimaryProvider returns (nil, nil) when the provider positively reports
// that no transcript exists.
type PrimaryProvider interface {
	FetchTranscript(ctx context.Context, videoID, lang string) (*models.TranscriptContent, error)
}

// CaptionsProvider reads the platform's own caption track as plain text.
type CaptionsProvider interface {
	FetchCaptions(ctx context.Context, videoID, lang string) (string, error)
}

type Config struct {
	ProviderTimeout time.Duration
	DefaultLanguage string
	CacheSize       int
}
