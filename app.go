package main

import (
	"context"
	"net/http"
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-summarizer/config"
	"github.com/nijaru/yt-summarizer/errors"
	"github.com/nijaru/yt-summarizer/logger"
	"github.com/nijaru/yt-summarizer/services/metadata"
	"github.com/nijaru/yt-summarizer/services/summary"
	"github.com/nijaru/yt-summarizer/services/transcript"
	"github.com/nijaru/yt-summarizer/storage"
	"github.com/nijaru/yt-summarizer/validation"
)

// app holds the wired services shared by the server and the CLI commands.
type app struct {
	config      *config.Config
	logger      *logrus.Logger
	metadata    metadata.Service
	transcripts transcript.Service
	summaries   summary.Service
	validator   *validation.Validator
}

// newApp loads configuration and wires every service. CLI runs log warnings
// to stderr only, keeping stdout for command output.
func newApp(ctx context.Context, cli bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to load configuration")
	}

	log, err := logger.New(cfg.LogDir, cfg.Debug)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to initialize logger")
	}
	if cli && !cfg.Debug {
		log.SetOutput(os.Stderr)
		log.SetLevel(logrus.WarnLevel)
	}
	validator := validation.NewValidator(cfg)

	httpClient := &http.Client{Timeout: cfg.YouTube.ProviderTimeout}

	var byID metadata.IDProvider
	if cfg.YouTube.MetadataAPIEnabled {
		dataAPI, err := metadata.NewDataAPIClient(ctx, cfg.YouTube.APIKey)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "failed to initialize YouTube Data API client")
		}
		byID = dataAPI
	}

	metadataSvc, err := metadata.NewService(
		metadata.NewPageClient(httpClient),
		byID,
		metadata.Config{
			ProviderTimeout: cfg.YouTube.ProviderTimeout,
			ThumbnailBase:   cfg.YouTube.ThumbnailBase,
			CacheSize:       cfg.YouTube.MetadataCacheSize,
		},
		log,
	)
	if err != nil {
		return nil, err
	}

	transcriptSvc, err := transcript.NewService(
		transcript.NewRapidAPIClient(cfg.RapidAPI, httpClient),
		transcript.NewCaptionsClient(httpClient),
		validator,
		transcript.Config{
			ProviderTimeout: cfg.YouTube.ProviderTimeout,
			DefaultLanguage: cfg.YouTube.DefaultLanguage,
			CacheSize:       cfg.YouTube.TranscriptCacheSize,
		},
		log,
	)
	if err != nil {
		return nil, err
	}

	summarySvc, err := newSummaryService(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	return &app{
		config:      cfg,
		logger:      log,
		metadata:    metadataSvc,
		transcripts: transcriptSvc,
		summaries:   summarySvc,
		validator:   validator,
	}, nil
}

func newSummaryService(ctx context.Context, cfg *config.Config, log *logrus.Logger) (summary.Service, error) {
	var generator summary.Generator
	if cfg.LLM.APIKey != "" {
		generator = summary.NewOpenAIGenerator(cfg.LLM)
	} else {
		log.Warn("GOOGLE_API_KEY is not set, summary generation is disabled")
	}

	var speaker summary.Speaker
	if cfg.TTS.APIKey != "" {
		speaker = summary.NewOpenAISpeaker(cfg.TTS)
	}

	var store storage.Store
	switch cfg.Storage.Backend {
	case config.StorageS3:
		spaces, err := storage.NewSpacesStore(ctx, cfg.Storage)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "failed to initialize audio storage")
		}
		store = spaces
	default:
		local, err := storage.NewLocalStore(cfg.Storage.AudioDir)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "failed to initialize audio storage")
		}
		store = local
	}

	return summary.NewService(generator, speaker, store, summary.Config{}, log), nil
}

// describe turns a service error into the message a client would see.
func describe(err error) error {
	var appErr *errors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return pkgerrors.New(appErr.Message)
	}
	return err
}
