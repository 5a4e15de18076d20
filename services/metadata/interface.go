package metadata

import (
	"context"
	"time"

	"github.com/nijaru/yt-summarizer/cache"
	"github.com/nijaru/yt-summarizer/models"
)

// Service resolves descriptive metadata for a video URL. It only fails when
// no video identifier can be derived from the URL.
type Service interface {
	Resolve(ctx context.Context, url string) (*models.VideoMetadata, error)
	CacheStats() cache.Stats
}

// PageProvider reads metadata from the public watch page of a URL.
type PageProvider interface {
	FetchByURL(ctx context.Context, url string) (*models.VideoMetadata, error)
}

// IDProvider looks metadata up by video identifier.
type IDProvider interface {
	FetchByID(ctx context.Context, id string) (*models.VideoMetadata, error)
}

type Config struct {
	ProviderTimeout time.Duration
	ThumbnailBase   string
	CacheSize       int
}
