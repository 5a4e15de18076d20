package metadata

import (
	"context"
	"fmt"
	"net/url"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-summarizer/cache"
	"github.com/nijaru/yt-summarizer/errors"
	"github.com/nijaru/yt-summarizer/models"
	"github.com/nijaru/yt-summarizer/validation"
)

const (
	watchURL             = "https://www.youtube.com/watch?v="
	defaultThumbnailBase = "https://img.youtube.com/vi"
)

type service struct {
	page   PageProvider
	byID   IDProvider
	memo   *cache.Memo[*models.VideoMetadata]
	config Config
	logger *logrus.Logger
	now    func() time.Time
}

// NewService builds the resolver chain. byID may be nil, in which case the
// chain goes straight from the page provider to the synthesized record.
func NewService(page PageProvider, byID IDProvider, config Config, logger *logrus.Logger) (Service, error) {
	if config.ProviderTimeout <= 0 {
		config.ProviderTimeout = 10 * time.Second
	}
	if config.CacheSize <= 0 {
		config.CacheSize = 100
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	memo, err := cache.New[*models.VideoMetadata](config.CacheSize)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "create metadata cache")
	}

	return &service{
		page:   page,
		byID:   byID,
		memo:   memo,
		config: config,
		logger: logger,
		now:    time.Now,
	}, nil
}

func (s *service) Resolve(ctx context.Context, rawURL string) (*models.VideoMetadata, error) {
	const op = "MetadataService.Resolve"
	logger := s.logger.WithField("url", rawURL)

	// Providers accept looser input than the URL shapes recognised here, so
	// nothing goes upstream without an extracted id.
	id := validation.ExtractVideoID(rawURL)
	if id == "" {
		return nil, errors.InvalidURL(op, nil)
	}
	logger = logger.WithField("video_id", id)

	if cached, ok := s.memo.Get(id); ok {
		logger.Debug("Metadata cache hit")
		return cached.Clone(), nil
	}

	for _, a := range s.attempts(rawURL, id) {
		meta, err := a.run(ctx)
		if err == nil {
			withDefaults(meta)
			s.remember(id, meta)
			return meta.Clone(), nil
		}
		logger.WithError(err).WithField("provider", a.name).Warn("Metadata provider failed, falling back")
	}

	meta, err := s.synthesize(id)
	if err != nil {
		logger.WithError(err).Warn("Synthesizing metadata failed, using minimal record")
		return minimal(id), nil
	}

	logger.Info("Using synthesized metadata")
	return meta, nil
}

// attempt is one provider lookup in the fallback chain.
type attempt struct {
	name string
	run  func(ctx context.Context) (*models.VideoMetadata, error)
}

// attempts lists the configured real providers in order.
func (s *service) attempts(rawURL, id string) []attempt {
	var list []attempt
	if s.page != nil {
		list = append(list, attempt{"page", func(ctx context.Context) (*models.VideoMetadata, error) {
			return s.attemptPage(ctx, rawURL)
		}})
	}
	if s.byID != nil {
		list = append(list, attempt{"data api", func(ctx context.Context) (*models.VideoMetadata, error) {
			return s.attemptByID(ctx, id)
		}})
	}
	return list
}

func (s *service) CacheStats() cache.Stats {
	return s.memo.Stats()
}

func (s *service) attemptPage(ctx context.Context, rawURL string) (*models.VideoMetadata, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.ProviderTimeout)
	defer cancel()

	meta, err := s.page.FetchByURL(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if meta == nil || meta.Title == "" {
		return nil, pkgerrors.New("page provider returned no title")
	}
	return meta, nil
}

func (s *service) attemptByID(ctx context.Context, id string) (*models.VideoMetadata, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.ProviderTimeout)
	defer cancel()

	meta, err := s.byID.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if meta == nil || meta.Title == "" {
		return nil, pkgerrors.New("data api returned no title")
	}
	return meta, nil
}

func (s *service) remember(id string, meta *models.VideoMetadata) {
	s.memo.Add(id, meta.Clone())
}

// synthesize builds a placeholder record from the identifier alone.
func (s *service) synthesize(id string) (*models.VideoMetadata, error) {
	base := s.config.ThumbnailBase
	if base == "" {
		base = defaultThumbnailBase
	}

	parsed, err := url.Parse(base)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "parse thumbnail base")
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, pkgerrors.Errorf("thumbnail base %q is not absolute", base)
	}

	thumbnail := parsed.JoinPath(id, "maxresdefault.jpg").String()

	return &models.VideoMetadata{
		Title:       fmt.Sprintf("YouTube Video (ID: %s)", id),
		Author:      "Content Creator",
		Views:       0,
		PublishDate: s.now().Format("2006-01-02"),
		Description: "Description not available due to API limitations.",
		Thumbnail:   thumbnail,
		VideoID:     id,
		URL:         watchURL + id,
	}, nil
}

// withDefaults fills the descriptive fields a provider left empty.
func withDefaults(meta *models.VideoMetadata) {
	if meta.Author == "" {
		meta.Author = "Unknown"
	}
	if meta.PublishDate == "" {
		meta.PublishDate = "Unknown"
	}
	if meta.Description == "" {
		meta.Description = "No description available"
	}
}

func minimal(id string) *models.VideoMetadata {
	return &models.VideoMetadata{
		Title:       "Video " + id,
		Author:      "Unknown",
		Views:       0,
		PublishDate: "Unknown",
		Description: "No description available",
		Thumbnail:   fmt.Sprintf("%s/%s/default.jpg", defaultThumbnailBase, id),
		VideoID:     id,
		URL:         watchURL + id,
	}
}
