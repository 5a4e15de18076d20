package transcript

import (
	"context"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-summarizer/cache"
	"github.com/nijaru/yt-summarizer/errors"
	"github.com/nijaru/yt-summarizer/models"
	"github.com/nijaru/yt-summarizer/validation"
)

const notFoundMessage = "Could not retrieve transcript. The video might not have captions available."

type service struct {
	primary   PrimaryProvider
	captions  CaptionsProvider
	validator *validation.Validator
	memo      *cache.Memo[string]
	config    Config
	logger    *logrus.Logger
}

func NewService(
	primary PrimaryProvider,
	captions CaptionsProvider,
	validator *validation.Validator,
	config Config,
	logger *logrus.Logger,
) (Service, error) {
	if config.ProviderTimeout <= 0 {
		config.ProviderTimeout = 10 * time.Second
	}
	if config.DefaultLanguage == "" {
		config.DefaultLanguage = "en"
	}
	if config.CacheSize <= 0 {
		config.CacheSize = 100
	}
	if validator == nil {
		validator = validation.NewValidator(nil)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	memo, err := cache.New[string](config.CacheSize)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "create transcript cache")
	}

	return &service{
		primary:   primary,
		captions:  captions,
		validator: validator,
		memo:      memo,
		config:    config,
		logger:    logger,
	}, nil
}

func (s *service) Fetch(ctx context.Context, url, lang string) (*models.TranscriptResult, error) {
	const op = "TranscriptService.Fetch"

	id, err := s.validator.VideoID(url)
	if err != nil {
		return nil, err
	}

	lang = strings.TrimSpace(lang)
	if lang == "" {
		lang = s.config.DefaultLanguage
	}

	logger := s.logger.WithFields(logrus.Fields{
		"video_id": id,
		"lang":     lang,
	})

	if content := s.fromPrimary(ctx, logger, id, lang); content != nil {
		return &models.TranscriptResult{
			Transcript: *content,
			Source:     models.SourceRapidAPI,
		}, nil
	}

	text, err := s.fromCaptions(ctx, id, lang)
	if err != nil {
		logger.WithError(err).Error("All transcript providers failed")
		return nil, errors.NotFound(op, err, notFoundMessage)
	}

	return &models.TranscriptResult{
		Transcript: models.TextTranscript(text),
		Source:     models.SourceCaptions,
	}, nil
}

func (s *service) CacheStats() cache.Stats {
	return s.memo.Stats()
}

// fromPrimary never fails: any error is logged and reported as no result.
func (s *service) fromPrimary(ctx context.Context, logger *logrus.Entry, id, lang string) *models.TranscriptContent {
	if s.primary == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.ProviderTimeout)
	defer cancel()

	content, err := s.primary.FetchTranscript(ctx, id, lang)
	if err != nil {
		logger.WithError(err).Warn("Primary transcript provider failed, falling back to captions")
		return nil
	}
	if content == nil {
		logger.Info("Primary transcript provider has no transcript, falling back to captions")
	}
	return content
}

func (s *service) fromCaptions(ctx context.Context, id, lang string) (string, error) {
	memoize := lang == s.config.DefaultLanguage
	if memoize {
		if text, ok := s.memo.Get(id); ok {
			return text, nil
		}
	}

	if s.captions == nil {
		return "", pkgerrors.New("captions provider not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.ProviderTimeout)
	defer cancel()

	text, err := s.captions.FetchCaptions(ctx, id, lang)
	if err != nil {
		return "", err
	}

	if memoize {
		s.memo.Add(id, text)
	}
	return text, nil
}
