package summary

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-summarizer/errors"
	"github.com/nijaru/yt-summarizer/models"
	"github.com/nijaru/yt-summarizer/storage"
)

type service struct {
	generator Generator
	speaker   Speaker
	store     storage.Store
	config    Config
	logger    *logrus.Logger
	now       func() time.Time
}

// NewService creates a new summary service. speaker and store may be nil when
// audio generation is not configured.
func NewService(
	generator Generator,
	speaker Speaker,
	store storage.Store,
	config Config,
	logger *logrus.Logger,
) Service {
	if config.AudioRoute == "" {
		config.AudioRoute = "/audio/"
	}
	if !strings.HasSuffix(config.AudioRoute, "/") {
		config.AudioRoute += "/"
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &service{
		generator: generator,
		speaker:   speaker,
		store:     store,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *service) Generate(ctx context.Context, req models.SummaryRequest) (*models.SummaryResult, error) {
	const op = "SummaryService.Generate"

	if strings.TrimSpace(req.Transcript) == "" {
		return nil, errors.MissingInput(op, "Transcript")
	}

	format := req.Format
	if format == "" {
		format = models.FormatText
	}

	logger := s.logger.WithFields(logrus.Fields{
		"format":         format,
		"generate_audio": req.GenerateAudio,
		"chars":          len(req.Transcript),
	})

	if s.generator == nil {
		return nil, errors.GenerationFailure(op, pkgerrors.New("text generation is not configured"))
	}

	summary, err := s.generator.Generate(ctx, buildPrompt(format, req.Transcript))
	if err != nil {
		logger.WithError(err).Error("Summary generation failed")
		return nil, errors.GenerationFailure(op, err)
	}

	result := &models.SummaryResult{
		Summary:   summary,
		Format:    format,
		Timestamp: s.now().UTC(),
	}

	if req.GenerateAudio {
		audioURL, err := s.synthesize(ctx, summary)
		if err != nil {
			logger.WithError(err).Error("Audio generation failed")
			return nil, errors.GenerationFailure(op, err)
		}
		result.AudioURL = &audioURL
	}

	logger.Info("Summary generated")
	return result, nil
}

func (s *service) synthesize(ctx context.Context, text string) (string, error) {
	if s.speaker == nil || s.store == nil {
		return "", pkgerrors.New("audio generation is not configured")
	}

	audio, err := s.speaker.Speak(ctx, text)
	if err != nil {
		return "", err
	}

	name := storage.NewAudioName()
	if err := s.store.Save(ctx, name, bytes.NewReader(audio)); err != nil {
		return "", pkgerrors.Wrap(err, "store audio")
	}

	return s.config.AudioRoute + name, nil
}

func (s *service) OpenAudio(ctx context.Context, filename string) (io.ReadCloser, error) {
	const op = "SummaryService.OpenAudio"

	if !storage.ValidAudioName(filename) || s.store == nil {
		return nil, errors.NotFound(op, nil, "Audio file not found")
	}

	return s.store.Open(ctx, filename)
}
